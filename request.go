package chameleon

import (
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"github.com/chameleon-net/chameleon/internal/detect"
	"github.com/chameleon-net/chameleon/internal/extract"
	"github.com/chameleon-net/chameleon/internal/headers"
	"github.com/chameleon-net/chameleon/internal/profiles"
	"github.com/chameleon-net/chameleon/internal/transport"
)

// Form submission errors.
var (
	ErrNoForms   = errors.New("chameleon: no forms found on page")
	ErrFormIndex = errors.New("chameleon: form index out of range")
)

type requestOptions struct {
	body       string
	headers    *headers.Ordered
	timeout    time.Duration
	mimic      bool
	noRedirect bool
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

// WithBody sets the request body.
func WithBody(body string) RequestOption {
	return func(o *requestOptions) { o.body = body }
}

// WithHeader adds one per-request header. Per-request headers win over
// session headers on name collision.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = &headers.Ordered{}
		}
		o.headers.Set(key, value)
	}
}

// WithHeaders adds a map of per-request headers.
func WithHeaders(h map[string]string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = headers.FromMap(h)
			return
		}
		for k, v := range h {
			o.headers.Set(k, v)
		}
	}
}

// WithTimeout overrides the session timeout for this request.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = d }
}

// WithMimicAssets fetches the page's static assets in the background after
// a successful response, imitating a browser's follow-up traffic.
func WithMimicAssets() RequestOption {
	return func(o *requestOptions) { o.mimic = true }
}

// WithoutRedirects disables redirect following for this request.
func WithoutRedirects() RequestOption {
	return func(o *requestOptions) { o.noRedirect = true }
}

// Request performs method on rawURL with the full pipeline: header
// morphing, fingerprint application, block classification, WAF adaptation,
// and rotation with backoff on block. It returns the final response even
// when still blocked after all retries; a transport error is returned only
// once retries are exhausted without any response.
func (s *Session) Request(method, rawURL string, opts ...RequestOption) (*Response, error) {
	var ro requestOptions
	for _, o := range opts {
		o(&ro)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, transport.ErrClosed
	}

	attempt := 0
	for {
		resp, err := s.do(method, rawURL, &ro)
		if err != nil {
			s.logger.Debug("attempt failed",
				"session_id", s.id, "attempt", attempt, "error", err)
		}

		var page *detect.Page
		if resp != nil {
			page = &detect.Page{Status: resp.StatusCode, Headers: resp.Headers, Body: resp.Body}
			s.adaptWAF(resp)
		}

		cls := detect.Classifier{}
		if s.blockDetector != nil {
			cls.Predicate = func(*detect.Page) bool { return s.blockDetector(resp) }
		}
		blocked := cls.IsBlocked(page)

		if !blocked || s.policy == OnBlockNone || attempt >= s.retry.MaxRetries {
			if resp == nil {
				return nil, err
			}
			if ro.mimic && resp.OK() {
				s.mimicAssets(resp.Body, rawURL)
			}
			return resp, nil
		}

		attempt++
		s.logger.Debug("blocked, rotating",
			"session_id", s.id,
			"attempt", attempt,
			"policy", string(s.policy),
			"profile", s.profile.Name,
		)
		if s.policy.RotatesProfile() {
			s.setProfile(s.ctrl.NextProfile(s.profile.Name))
		}
		if s.policy.RotatesProxy() {
			if p := s.ctrl.NextProxy(); p != "" {
				s.stickyProxy = p
			}
		}
		s.sleep(s.retry.Backoff(attempt))
	}
}

// do executes one attempt with the active profile. Caller holds s.mu.
func (s *Session) do(method, rawURL string, ro *requestOptions) (*Response, error) {
	prof := s.profile
	if s.randomize {
		if s.randomizeC {
			prof.Randomization.CipherShuffle = true
		}
		prof = profiles.Variant(prof)
	}

	sess := s.headers.Clone()
	if cookie := s.cookieHeader(); cookie != "" {
		sess.Set("Cookie", cookie)
	}

	order := s.headerOrder
	if len(order) == 0 {
		order = prof.HeaderOrder
	}
	morphed := headers.Morph(ro.headers, sess, order, prof.HeaderCase)

	timeout := ro.timeout
	if timeout == 0 {
		timeout = s.timeout
	}

	resp, err := s.tr.Do(transport.Request{
		Method:      method,
		URL:         rawURL,
		Body:        ro.body,
		Headers:     morphed.Map(),
		HeaderOrder: morphed.Keys(),
		JA3:         prof.JA3(),
		UserAgent:   prof.UserAgent,
		Proxy:       s.stickyProxy,
		Timeout:     timeout,
		InsecureTLS: !s.verify,
		ForceHTTP1:  !s.http2,
		NoRedirect:  ro.noRedirect,
	})
	if err != nil {
		return nil, err
	}

	for _, c := range resp.Cookies {
		s.jar[c.Name] = c
	}

	return &Response{
		StatusCode: resp.Status,
		Headers:    resp.Headers,
		Body:       resp.Body,
		FinalURL:   resp.FinalURL,
		cookies:    resp.Cookies,
	}, nil
}

// adaptWAF inspects response headers for WAF fingerprints and tunes the
// session for the product it finds. Runs on every response, blocked or
// not. Caller holds s.mu.
func (s *Session) adaptWAF(resp *Response) {
	sig := detect.DetectWAF(resp.Headers)
	if sig == detect.SigNone {
		return
	}
	s.logger.Debug("waf detected", "session_id", s.id, "waf", string(sig))

	// Cloudflare scores the TLS and HTTP/2 fingerprint together; Chromium
	// hellos over HTTP/2 pass most consistently. Other products are
	// recognized but drive no adaptation yet.
	if sig == detect.SigCloudflare {
		s.http2 = true
		if s.profile.Browser != "chrome" && s.profile.Browser != "edge" {
			s.setProfile(profiles.RandomOf("chrome", ""))
		}
	}
}

// Get issues a GET request.
func (s *Session) Get(url string, opts ...RequestOption) (*Response, error) {
	return s.Request("GET", url, opts...)
}

// Post issues a POST request.
func (s *Session) Post(url string, opts ...RequestOption) (*Response, error) {
	return s.Request("POST", url, opts...)
}

// Put issues a PUT request.
func (s *Session) Put(url string, opts ...RequestOption) (*Response, error) {
	return s.Request("PUT", url, opts...)
}

// Delete issues a DELETE request.
func (s *Session) Delete(url string, opts ...RequestOption) (*Response, error) {
	return s.Request("DELETE", url, opts...)
}

// Head issues a HEAD request.
func (s *Session) Head(url string, opts ...RequestOption) (*Response, error) {
	return s.Request("HEAD", url, opts...)
}

// Patch issues a PATCH request.
func (s *Session) Patch(url string, opts ...RequestOption) (*Response, error) {
	return s.Request("PATCH", url, opts...)
}

// Options issues an OPTIONS request.
func (s *Session) Options(url string, opts ...RequestOption) (*Response, error) {
	return s.Request("OPTIONS", url, opts...)
}

// SubmitForm fetches rawURL, picks the index-th form, merges data over the
// form's pre-filled inputs, and submits to the form's action with its
// method. GET forms encode the payload as query parameters, POST forms as
// a urlencoded body.
func (s *Session) SubmitForm(rawURL string, data map[string]string, index int, opts ...RequestOption) (*Response, error) {
	resp, err := s.Get(rawURL, opts...)
	if err != nil {
		return nil, err
	}

	forms := resp.Forms()
	if len(forms) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoForms, rawURL)
	}
	if index < 0 || index >= len(forms) {
		return nil, fmt.Errorf("%w: %d of %d", ErrFormIndex, index, len(forms))
	}
	form := forms[index]

	payload := url.Values{}
	for k, v := range form.Inputs {
		payload.Set(k, v)
	}
	for k, v := range data {
		payload.Set(k, v)
	}

	target := rawURL
	if form.Action != "" {
		base, err := url.Parse(rawURL)
		if err != nil {
			return nil, err
		}
		action, err := url.Parse(form.Action)
		if err != nil {
			return nil, err
		}
		target = base.ResolveReference(action).String()
	}

	if form.Method == "POST" {
		opts = append(opts,
			WithBody(payload.Encode()),
			WithHeader("Content-Type", "application/x-www-form-urlencoded"))
		return s.Post(target, opts...)
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	for k, vs := range payload {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return s.Get(u.String(), opts...)
}

// HumanDelay sleeps for a span plausible for a human reading the page
// before the next action. speed is "fast", "normal" or "slow".
func (s *Session) HumanDelay(speed string) {
	base := time.Second
	switch speed {
	case "fast":
		base = 500 * time.Millisecond
	case "slow":
		base = 2500 * time.Millisecond
	}
	d := base + time.Duration(rand.Int63n(int64(base)))
	s.sleep(d)
}

// mimicAssetLimit bounds background asset fan-out.
const mimicAssetLimit = 20

// mimicAssets fires detached HEAD requests at the page's static assets,
// imitating the follow-up traffic a browser generates after parsing HTML.
// Fetches are best effort: failures are discarded and nothing is awaited.
// Caller holds s.mu; the goroutines touch only the transport, which guards
// itself.
func (s *Session) mimicAssets(body, baseURL string) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return
	}

	assets := extract.Assets(body)
	if len(assets) > mimicAssetLimit {
		assets = assets[:mimicAssetLimit]
	}

	prof := s.profile
	proxy := s.stickyProxy
	cookie := s.cookieHeader()
	tr := s.tr

	for _, asset := range assets {
		ref, err := url.Parse(asset)
		if err != nil {
			continue
		}
		target := base.ResolveReference(ref).String()
		go func(target string) {
			hdrs := map[string]string{"User-Agent": prof.UserAgent}
			if cookie != "" {
				hdrs["Cookie"] = cookie
			}
			tr.Do(transport.Request{
				Method:    "HEAD",
				URL:       target,
				Headers:   hdrs,
				JA3:       prof.JA3(),
				UserAgent: prof.UserAgent,
				Proxy:     proxy,
				Timeout:   5 * time.Second,
			})
		}(target)
	}
}
