// Package transport abstracts the fingerprint-capable HTTP engine behind a
// small interface so the session layer never touches a concrete TLS stack.
// Engines are enumerated and resolved at construction: asking for one that
// is missing or that lacks a required capability fails fast instead of
// degrading to a transport with a detectable fingerprint.
package transport

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnavailable is returned when no configured engine satisfies the
// required capabilities.
var ErrUnavailable = errors.New("transport: no engine with required capabilities")

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("transport: closed")

// Capabilities describes what an engine can control on the wire.
type Capabilities struct {
	// TLSFingerprint means the engine applies a caller-supplied JA3 or
	// impersonation target to its ClientHello.
	TLSFingerprint bool
	// HTTP2Control means the engine can be switched between HTTP/1.1 and
	// HTTP/2 per request.
	HTTP2Control bool
	// Proxy means the engine routes through a caller-supplied proxy URL.
	Proxy bool
}

// Request carries everything an engine needs for one attempt. Headers is
// the flattened header set; HeaderOrder hints the wire order for engines
// that honor it.
type Request struct {
	Method      string
	URL         string
	Body        string
	Headers     map[string]string
	HeaderOrder []string

	JA3         string
	UserAgent   string
	Proxy       string
	Timeout     time.Duration
	InsecureTLS bool
	ForceHTTP1  bool
	NoRedirect  bool
}

// Response is the engine-neutral result of one attempt.
type Response struct {
	Status   int
	Headers  map[string]string
	Body     string
	FinalURL string
	Cookies  []*http.Cookie
}

// Transport is a fingerprint-capable HTTP engine. Do blocks for the
// duration of one attempt; Reinit tears down connection state so the next
// attempt negotiates a fresh ClientHello (required after profile rotation,
// since TLS parameters are fixed at connect time); Close is idempotent.
type Transport interface {
	Do(req Request) (*Response, error)
	Reinit() error
	Close() error
	Capabilities() Capabilities
}

// EngineCycleTLS is the default engine name.
const EngineCycleTLS = "cycletls"

// Config selects and constrains engine resolution.
type Config struct {
	// Engine names the engine to use. Empty selects EngineCycleTLS.
	Engine string
	// Require lists capabilities that must be present. Resolution fails
	// with ErrUnavailable when the selected engine lacks any of them.
	Require Capabilities
}

// Resolve returns a ready transport for cfg.
func Resolve(cfg Config, opts ...Option) (Transport, error) {
	name := cfg.Engine
	if name == "" {
		name = EngineCycleTLS
	}

	var t Transport
	switch name {
	case EngineCycleTLS:
		t = NewCycleTLS(opts...)
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrUnavailable, name)
	}

	caps := t.Capabilities()
	if cfg.Require.TLSFingerprint && !caps.TLSFingerprint ||
		cfg.Require.HTTP2Control && !caps.HTTP2Control ||
		cfg.Require.Proxy && !caps.Proxy {
		t.Close()
		return nil, fmt.Errorf("%w: engine %q lacks a required capability", ErrUnavailable, name)
	}
	return t, nil
}
