package chameleon

import (
	"encoding/json"
	"time"

	"github.com/chameleon-net/chameleon/internal/headers"
	"github.com/chameleon-net/chameleon/internal/profiles"
	"github.com/chameleon-net/chameleon/internal/rotation"
)

// State is a JSON-roundtrippable snapshot of a session's mutable
// configuration: enough to reconstruct the same disguise in a fresh
// session, but not the transport's live connections or cookie jar (cookies
// persist separately via SaveCookies).
type State struct {
	Profile        string            `json:"profile"`
	Engine         string            `json:"engine"`
	RotateProfiles []string          `json:"rotate_profiles,omitempty"`
	ProfileCursor  int               `json:"profile_cursor"`
	ProxyPool      []string          `json:"proxy_pool,omitempty"`
	ProxyCursor    int               `json:"proxy_cursor"`
	StickyProxy    string            `json:"sticky_proxy,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	HeaderOrder    []string          `json:"header_order,omitempty"`
	OnBlock        string            `json:"on_block"`
	MaxRetries     int               `json:"max_retries"`
	BackoffBase    time.Duration     `json:"backoff_base"`
	Jitter         time.Duration     `json:"jitter"`
	HTTP2          bool              `json:"http2"`
	Verify         bool              `json:"verify"`
	Randomize      bool              `json:"randomize"`
}

// ExportState serializes the session's disguise configuration.
func (s *Session) ExportState() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profileCursor, proxyCursor := s.ctrl.Cursors()
	st := State{
		Profile:        s.profile.Name,
		Engine:         s.engine,
		RotateProfiles: append([]string(nil), s.ctrl.ProfileList...),
		ProfileCursor:  profileCursor,
		ProxyPool:      append([]string(nil), s.ctrl.ProxyPool...),
		ProxyCursor:    proxyCursor,
		StickyProxy:    s.stickyProxy,
		Headers:        s.headers.Map(),
		HeaderOrder:    append([]string(nil), s.headerOrder...),
		OnBlock:        string(s.policy),
		MaxRetries:     s.retry.MaxRetries,
		BackoffBase:    s.retry.BackoffBase,
		Jitter:         s.retry.Jitter,
		HTTP2:          s.http2,
		Verify:         s.verify,
		Randomize:      s.randomize,
	}
	return json.MarshalIndent(st, "", "  ")
}

// ImportState applies an exported snapshot to the session, replacing its
// disguise configuration and reinitializing the transport for the restored
// profile. Unknown profile names fall back to the default.
func (s *Session) ImportState(data []byte) error {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := profiles.Lookup(st.Profile)
	if !ok {
		profile = profiles.Default()
	}

	s.ctrl = rotation.NewController(st.RotateProfiles, st.ProxyPool)
	s.ctrl.SetCursors(st.ProfileCursor, st.ProxyCursor)

	if st.OnBlock != "" && rotation.Policy(st.OnBlock).Valid() {
		s.policy = rotation.Policy(st.OnBlock)
	}
	if st.MaxRetries > 0 {
		s.retry.MaxRetries = st.MaxRetries
	}
	if st.BackoffBase > 0 {
		s.retry.BackoffBase = st.BackoffBase
	}
	if st.Jitter > 0 {
		s.retry.Jitter = st.Jitter
	}

	s.stickyProxy = st.StickyProxy
	s.http2 = st.HTTP2
	s.verify = st.Verify
	s.randomize = st.Randomize
	s.headerOrder = append([]string(nil), st.HeaderOrder...)
	s.headers = headers.FromMap(st.Headers)
	s.engine = st.Engine

	s.setProfile(profile)
	return nil
}
