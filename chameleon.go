// Package chameleon is an HTTP client that disguises its network-level
// fingerprint as a real browser and adaptively swaps disguises when it gets
// blocked. A session pins one fingerprint profile (TLS ClientHello shape,
// header order and casing, HTTP/2 settings, User-Agent) and, on detecting a
// block or challenge page, rotates its profile and proxy with exponential
// backoff before retrying.
package chameleon

import (
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/chameleon-net/chameleon/internal/cookies"
	"github.com/chameleon-net/chameleon/internal/detect"
	"github.com/chameleon-net/chameleon/internal/headers"
	"github.com/chameleon-net/chameleon/internal/profiles"
	"github.com/chameleon-net/chameleon/internal/rotation"
	"github.com/chameleon-net/chameleon/internal/transport"
)

// Block policies, selecting what rotates when a block is detected.
const (
	OnBlockNone   = rotation.PolicyNone
	OnBlockRotate = rotation.PolicyProfile
	OnBlockProxy  = rotation.PolicyProxy
	OnBlockBoth   = rotation.PolicyBoth
)

// Options configures a session. The zero value is usable: default profile,
// profile rotation on block, no proxy.
type Options struct {
	// Fingerprint names the initial profile. Unknown or empty names fall
	// back to the catalog default instead of erroring.
	Fingerprint string

	// RotateProfiles is an explicit rotation list. Empty means rotation
	// picks randomly from the whole catalog.
	RotateProfiles []string

	// Proxy is the initial proxy URL. ProxyPool enables proxy rotation;
	// the cursor starts before the first entry.
	Proxy     string
	ProxyPool []string

	// OnBlock selects the rotation policy. Empty means OnBlockRotate.
	OnBlock rotation.Policy

	// MaxRetries bounds retries after the initial attempt. Zero or
	// negative selects the default of 2; use OnBlockNone to disable
	// retries entirely.
	MaxRetries int
	// BackoffBase and Jitter shape the retry delay. Zero values take the
	// defaults (1s base, 300ms jitter).
	BackoffBase time.Duration
	Jitter      time.Duration

	// BlockDetector, when set, is the authoritative block classifier. A
	// panic inside it is swallowed and the built-in rules apply.
	BlockDetector func(*Response) bool

	// Site applies a named preset ("cloudflare", "akamai") that fills in
	// rotation list, retry floors, HTTP/2 and header order, but never
	// overrides fields the caller set explicitly.
	Site string

	// Headers are session-level header overrides sent on every request.
	Headers map[string]string
	// HeaderOrder overrides the profile's header order.
	HeaderOrder []string

	// HTTP2 toggles HTTP/2; nil means on. Verify toggles TLS certificate
	// verification; nil means on.
	HTTP2  *bool
	Verify *bool

	// Randomize applies per-attempt profile variance within the profile's
	// randomization bounds. RandomizeCiphers additionally permits cipher
	// shuffling for profiles that allow it.
	Randomize        bool
	RandomizeCiphers bool

	// Timeout bounds each attempt. Zero means 30s.
	Timeout time.Duration

	// Engine names the transport engine. Empty selects cycletls.
	Engine string

	// Transport injects a ready transport, bypassing engine resolution.
	Transport transport.Transport

	Logger *log.Logger
}

// Session is the orchestrator: it owns the active profile, rotation
// cursors, sticky proxy, session headers, cookie jar and transport handle.
// A session is single-owner; callers needing concurrent requests should use
// one session per goroutine. Internal state is still mutex-guarded so a
// stray concurrent call corrupts nothing.
type Session struct {
	mu sync.Mutex

	id     string
	engine string
	logger *log.Logger

	profile    profiles.Profile
	randomize  bool
	randomizeC bool

	ctrl   *rotation.Controller
	policy rotation.Policy
	retry  rotation.RetryPolicy

	classifier    detect.Classifier
	blockDetector func(*Response) bool

	headers     *headers.Ordered
	headerOrder []string

	stickyProxy string
	http2       bool
	verify      bool
	timeout     time.Duration

	jar map[string]*http.Cookie

	tr     transport.Transport
	closed bool

	// sleep is swappable so retry tests run instantly.
	sleep func(time.Duration)
}

// NewSession builds a session from opts. The only failure mode is transport
// resolution; everything else degrades to defaults.
func NewSession(opts Options) (*Session, error) {
	applySitePreset(&opts)

	profile, ok := profiles.Lookup(opts.Fingerprint)
	if !ok {
		profile = profiles.Default()
	}

	policy := opts.OnBlock
	if !policy.Valid() {
		policy = OnBlockRotate
	}

	retry := rotation.RetryPolicy{
		MaxRetries:  opts.MaxRetries,
		BackoffBase: opts.BackoffBase,
		Jitter:      opts.Jitter,
	}
	if retry.MaxRetries <= 0 {
		retry.MaxRetries = 2
	}
	if retry.BackoffBase == 0 {
		retry.BackoffBase = time.Second
	}
	if retry.Jitter == 0 {
		retry.Jitter = 300 * time.Millisecond
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	tr := opts.Transport
	if tr == nil {
		var err error
		tr, err = transport.Resolve(transport.Config{
			Engine: opts.Engine,
			Require: transport.Capabilities{
				TLSFingerprint: true,
				HTTP2Control:   true,
				Proxy:          opts.Proxy != "" || len(opts.ProxyPool) > 0,
			},
		}, transport.WithLogger(logger))
		if err != nil {
			return nil, err
		}
	}

	engine := opts.Engine
	if engine == "" {
		engine = transport.EngineCycleTLS
	}

	s := &Session{
		id:            uuid.NewString(),
		engine:        engine,
		logger:        logger,
		profile:       profile,
		randomize:     opts.Randomize,
		randomizeC:    opts.RandomizeCiphers,
		ctrl:          rotation.NewController(opts.RotateProfiles, opts.ProxyPool),
		policy:        policy,
		retry:         retry,
		blockDetector: opts.BlockDetector,
		headers:       headers.FromMap(opts.Headers),
		headerOrder:   append([]string(nil), opts.HeaderOrder...),
		stickyProxy:   opts.Proxy,
		http2:         opts.HTTP2 == nil || *opts.HTTP2,
		verify:        opts.Verify == nil || *opts.Verify,
		timeout:       opts.Timeout,
		jar:           make(map[string]*http.Cookie),
		tr:            tr,
		sleep:         time.Sleep,
	}
	if s.timeout == 0 {
		s.timeout = 30 * time.Second
	}
	s.syncProfileHeaders()

	s.logger.Debug("session created",
		"session_id", s.id,
		"profile", s.profile.Name,
		"policy", string(s.policy),
		"max_retries", s.retry.MaxRetries,
	)
	return s, nil
}

// syncProfileHeaders keeps session headers that mirror the active profile
// (User-Agent, client hints) in step after rotation. Caller-set values are
// replaced: a stale UA contradicting the TLS fingerprint is worse than
// overriding the caller.
func (s *Session) syncProfileHeaders() {
	s.headers.Set("User-Agent", s.profile.UserAgent)
	if s.profile.SecChUA != "" {
		s.headers.Set("sec-ch-ua", s.profile.SecChUA)
		s.headers.Set("sec-ch-ua-mobile", s.profile.SecChUAMobile)
		s.headers.Set("sec-ch-ua-platform", s.profile.SecChUAPlatform)
	} else {
		s.headers.Del("sec-ch-ua")
		s.headers.Del("sec-ch-ua-mobile")
		s.headers.Del("sec-ch-ua-platform")
	}
}

// setProfile swaps the active profile and reinitializes the transport so
// the next connection negotiates the new ClientHello.
func (s *Session) setProfile(p profiles.Profile) {
	s.profile = p
	s.syncProfileHeaders()
	if err := s.tr.Reinit(); err != nil {
		s.logger.Debug("transport reinit failed", "error", err)
	}
	s.logger.Debug("profile switched", "session_id", s.id, "profile", p.Name)
}

// ActiveProfile returns the name of the profile currently applied.
func (s *Session) ActiveProfile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Name
}

// Close releases the transport. Safe to call repeatedly.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Debug("session closed", "session_id", s.id)
	return s.tr.Close()
}

// Diagnostic is the introspection snapshot returned by Fingerprint.
type Diagnostic struct {
	Profile       string `json:"profile"`
	UserAgent     string `json:"user_agent"`
	JA3           string `json:"ja3"`
	JA3Hash       string `json:"ja3_hash"`
	Impersonate   string `json:"impersonate"`
	Randomization bool   `json:"randomization"`
	HTTP2         bool   `json:"http2"`
}

// Fingerprint reports what the session currently looks like on the wire,
// for logging and debugging. Nothing internal consumes it.
func (s *Session) Fingerprint() Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Diagnostic{
		Profile:       s.profile.Name,
		UserAgent:     s.profile.UserAgent,
		JA3:           s.profile.JA3(),
		JA3Hash:       s.profile.JA3Hash,
		Impersonate:   s.profile.Impersonate,
		Randomization: s.randomize,
		HTTP2:         s.http2,
	}
}

// SaveCookies writes the session jar to path; format follows the file
// extension (.json or .txt).
func (s *Session) SaveCookies(path string) error {
	s.mu.Lock()
	list := make([]*http.Cookie, 0, len(s.jar))
	for _, c := range s.jar {
		list = append(list, c)
	}
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return cookies.Save(path, cookies.FromHTTP(list))
}

// LoadCookies merges cookies from path into the session jar.
func (s *Session) LoadCookies(path string) error {
	records, err := cookies.Load(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cookies.ToHTTP(records) {
		s.jar[c.Name] = c
	}
	return nil
}

// Cookies returns a snapshot of the session jar, sorted by name.
func (s *Session) Cookies() []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*http.Cookie, 0, len(s.jar))
	for _, c := range s.jar {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// cookieHeader renders the jar as a Cookie header value. Names sort for a
// stable wire shape.
func (s *Session) cookieHeader() string {
	if len(s.jar) == 0 {
		return ""
	}
	names := make([]string, 0, len(s.jar))
	for n := range s.jar {
		names = append(names, n)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, n := range names {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(s.jar[n].Value)
	}
	return b.String()
}
