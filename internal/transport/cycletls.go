package transport

import (
	"io"
	"sync"
	"time"

	"github.com/Danny-Dasilva/CycleTLS/cycletls"
	"github.com/charmbracelet/log"
)

const defaultTimeout = 30 * time.Second

// CycleTLS drives requests through the CycleTLS engine, which replays a
// caller-supplied JA3 at the TLS layer. It tracks usage for diagnostics and
// guards its lifecycle with a mutex; request execution itself happens
// outside the lock.
type CycleTLS struct {
	mu           sync.Mutex
	underlying   *cycletls.CycleTLS
	closed       bool
	createdAt    time.Time
	lastUsedAt   time.Time
	requestCount int
	logger       *log.Logger
}

// Option configures a CycleTLS transport.
type Option func(*CycleTLS)

// WithLogger attaches a structured logger. The default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(t *CycleTLS) { t.logger = logger }
}

// NewCycleTLS returns a started CycleTLS transport.
func NewCycleTLS(opts ...Option) *CycleTLS {
	client := cycletls.Init()
	now := time.Now()
	t := &CycleTLS{
		underlying: &client,
		createdAt:  now,
		lastUsedAt: now,
		logger:     log.New(io.Discard),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Capabilities reports the engine's full feature set: JA3 replay, per
// request HTTP/1-vs-2 switching, and proxy routing.
func (t *CycleTLS) Capabilities() Capabilities {
	return Capabilities{TLSFingerprint: true, HTTP2Control: true, Proxy: true}
}

// Do performs one attempt.
func (t *CycleTLS) Do(req Request) (*Response, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrClosed
	}
	t.lastUsedAt = time.Now()
	t.requestCount++
	requestNum := t.requestCount
	engine := t.underlying
	t.mu.Unlock()

	timeout := req.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	options := cycletls.Options{
		Ja3:                req.JA3,
		UserAgent:          req.UserAgent,
		Proxy:              req.Proxy,
		Timeout:            int(timeout / time.Second),
		Headers:            req.Headers,
		HeaderOrder:        req.HeaderOrder,
		Body:               req.Body,
		InsecureSkipVerify: req.InsecureTLS,
		ForceHTTP1:         req.ForceHTTP1,
		DisableRedirect:    req.NoRedirect,
	}

	t.logger.Debug("request",
		"num", requestNum,
		"method", req.Method,
		"url", req.URL,
		"http1", req.ForceHTTP1,
		"has_proxy", req.Proxy != "",
	)

	start := time.Now()
	resp, err := engine.Do(req.URL, options, req.Method)
	duration := time.Since(start)

	if err != nil {
		t.logger.Debug("request failed",
			"num", requestNum,
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		return nil, err
	}

	t.logger.Debug("request done",
		"num", requestNum,
		"status", resp.Status,
		"duration_ms", duration.Milliseconds(),
		"size", len(resp.Body),
	)

	return &Response{
		Status:   resp.Status,
		Headers:  resp.Headers,
		Body:     resp.Body,
		FinalURL: resp.FinalUrl,
		Cookies:  resp.Cookies,
	}, nil
}

// Reinit replaces the underlying engine so the next request opens a fresh
// connection with the active profile's TLS parameters.
func (t *CycleTLS) Reinit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	t.underlying.Close()
	client := cycletls.Init()
	t.underlying = &client
	t.logger.Debug("engine reinitialized", "requests_served", t.requestCount)
	return nil
}

// RequestCount returns the number of attempts served, including failures.
func (t *CycleTLS) RequestCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.requestCount
}

// Age returns time since the transport was created.
func (t *CycleTLS) Age() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return time.Since(t.createdAt)
}

// Close shuts the engine down. Safe to call repeatedly.
func (t *CycleTLS) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.logger.Debug("closing transport",
		"age_seconds", time.Since(t.createdAt).Seconds(),
		"requests_served", t.requestCount,
	)
	t.underlying.Close()
	t.closed = true
	return nil
}
