package chameleon

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chameleon-net/chameleon/internal/transport"
)

// fakeTransport scripts responses and records every request it serves.
type fakeTransport struct {
	mu       sync.Mutex
	requests []transport.Request
	respond  func(n int, req transport.Request) (*transport.Response, error)
	reinits  int
	closed   bool
}

func (f *fakeTransport) Do(req transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	f.mu.Unlock()
	if f.respond == nil {
		return &transport.Response{Status: 200, Body: "ok"}, nil
	}
	return f.respond(n, req)
}

func (f *fakeTransport) Reinit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reinits++
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) Capabilities() transport.Capabilities {
	return transport.Capabilities{TLSFingerprint: true, HTTP2Control: true, Proxy: true}
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeTransport) request(i int) transport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

func newTestSession(t *testing.T, opts Options, ft *fakeTransport) *Session {
	t.Helper()
	opts.Transport = ft
	s, err := NewSession(opts)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.sleep = func(time.Duration) {}
	t.Cleanup(func() { s.Close() })
	return s
}

func blockedResponse() *transport.Response {
	return &transport.Response{Status: 403, Body: "Access Denied"}
}

func TestRequestSuccessFirstAttempt(t *testing.T) {
	ft := &fakeTransport{}
	s := newTestSession(t, Options{}, ft)

	resp, err := s.Get("https://example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !resp.OK() || resp.Body != "ok" {
		t.Errorf("resp = %+v", resp)
	}
	if ft.count() != 1 {
		t.Errorf("attempts = %d, want 1", ft.count())
	}
}

func TestExactlyThreeAttemptsWhenAlwaysBlocked(t *testing.T) {
	ft := &fakeTransport{
		respond: func(int, transport.Request) (*transport.Response, error) {
			return blockedResponse(), nil
		},
	}
	s := newTestSession(t, Options{
		OnBlock:       OnBlockRotate,
		MaxRetries:    2,
		BlockDetector: func(*Response) bool { return true },
	}, ft)

	resp, err := s.Get("https://example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ft.count() != 3 {
		t.Errorf("attempts = %d, want exactly 3 (1 initial + 2 retries)", ft.count())
	}
	if resp.StatusCode != 403 {
		t.Errorf("final response status = %d, want last blocked response", resp.StatusCode)
	}
}

func TestPolicyNoneReturnsBlockedWithoutRetry(t *testing.T) {
	ft := &fakeTransport{
		respond: func(int, transport.Request) (*transport.Response, error) {
			return blockedResponse(), nil
		},
	}
	s := newTestSession(t, Options{OnBlock: OnBlockNone, MaxRetries: 5}, ft)

	resp, err := s.Get("https://example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ft.count() != 1 {
		t.Errorf("attempts = %d, want 1 with policy none", ft.count())
	}
	if resp.StatusCode != 403 {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestTransportErrorRetriedThenSurfaced(t *testing.T) {
	netErr := errors.New("connection reset by peer")
	ft := &fakeTransport{
		respond: func(int, transport.Request) (*transport.Response, error) {
			return nil, netErr
		},
	}
	s := newTestSession(t, Options{MaxRetries: 2}, ft)

	_, err := s.Get("https://example.com")
	if !errors.Is(err, netErr) {
		t.Errorf("err = %v, want the transport error", err)
	}
	if ft.count() != 3 {
		t.Errorf("attempts = %d, want 3", ft.count())
	}
}

func TestRecoveryAfterBlockedAttempt(t *testing.T) {
	ft := &fakeTransport{
		respond: func(n int, _ transport.Request) (*transport.Response, error) {
			if n == 1 {
				return blockedResponse(), nil
			}
			return &transport.Response{Status: 200, Body: "welcome"}, nil
		},
	}
	s := newTestSession(t, Options{MaxRetries: 3}, ft)

	resp, err := s.Get("https://example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ft.count() != 2 {
		t.Errorf("attempts = %d, want 2", ft.count())
	}
	if !resp.OK() {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestProfileRotatesOnBlock(t *testing.T) {
	ft := &fakeTransport{
		respond: func(int, transport.Request) (*transport.Response, error) {
			return blockedResponse(), nil
		},
	}
	s := newTestSession(t, Options{
		Fingerprint:    "chrome_120_win11",
		RotateProfiles: []string{"firefox_120_win11", "safari_ios17"},
		MaxRetries:     2,
	}, ft)

	s.Get("https://example.com")

	// Attempt 2 uses the first rotation entry, attempt 3 the second.
	if ua := ft.request(1).UserAgent; !strings.Contains(ua, "Firefox") {
		t.Errorf("attempt 2 UA = %q, want Firefox", ua)
	}
	if ua := ft.request(2).UserAgent; !strings.Contains(ua, "iPhone") {
		t.Errorf("attempt 3 UA = %q, want Safari iOS", ua)
	}
	if ft.reinits < 2 {
		t.Errorf("transport reinits = %d, want >= 2 after two profile switches", ft.reinits)
	}
}

func TestProxyRotationSticky(t *testing.T) {
	ft := &fakeTransport{
		respond: func(n int, _ transport.Request) (*transport.Response, error) {
			if n <= 2 {
				return blockedResponse(), nil
			}
			return &transport.Response{Status: 200, Body: "ok"}, nil
		},
	}
	s := newTestSession(t, Options{
		OnBlock:    OnBlockProxy,
		ProxyPool:  []string{"http://p1:8080", "http://p2:8080", "http://p3:8080"},
		MaxRetries: 4,
	}, ft)

	s.Get("https://example.com")

	if p := ft.request(0).Proxy; p != "" {
		t.Errorf("attempt 1 proxy = %q, want none before first rotation", p)
	}
	if p := ft.request(1).Proxy; p != "http://p1:8080" {
		t.Errorf("attempt 2 proxy = %q, want p1", p)
	}
	if p := ft.request(2).Proxy; p != "http://p2:8080" {
		t.Errorf("attempt 3 proxy = %q, want p2", p)
	}

	// Sticky: the rotated proxy carries into later requests.
	s.Get("https://example.com/next")
	if p := ft.request(3).Proxy; p != "http://p2:8080" {
		t.Errorf("followup proxy = %q, want sticky p2", p)
	}
}

func TestUnknownFingerprintFallsBack(t *testing.T) {
	s := newTestSession(t, Options{Fingerprint: "mosaic_1993"}, &fakeTransport{})
	if got := s.ActiveProfile(); got != "chrome_120_win11" {
		t.Errorf("ActiveProfile = %q, want default", got)
	}
}

func TestPredicatePanicFallsThroughToRules(t *testing.T) {
	ft := &fakeTransport{}
	s := newTestSession(t, Options{
		BlockDetector: func(*Response) bool { panic("boom") },
	}, ft)

	resp, err := s.Get("https://example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !resp.OK() || ft.count() != 1 {
		t.Errorf("clean page after predicate panic: status %d, attempts %d",
			resp.StatusCode, ft.count())
	}
}

func TestCloudflarePresetDefaults(t *testing.T) {
	s := newTestSession(t, Options{Site: "cloudflare"}, &fakeTransport{})

	if len(s.ctrl.ProfileList) == 0 {
		t.Error("cloudflare preset left rotation list empty")
	}
	if s.retry.MaxRetries < 3 {
		t.Errorf("MaxRetries = %d, want >= 3", s.retry.MaxRetries)
	}
	if !s.http2 {
		t.Error("cloudflare preset should enable HTTP/2")
	}
	if len(s.headerOrder) == 0 {
		t.Error("cloudflare preset should set a header order")
	}
}

func TestPresetNeverOverridesCallerValues(t *testing.T) {
	s := newTestSession(t, Options{
		Site:           "cloudflare",
		RotateProfiles: []string{"firefox_120_win11"},
		MaxRetries:     7,
	}, &fakeTransport{})

	if len(s.ctrl.ProfileList) != 1 || s.ctrl.ProfileList[0] != "firefox_120_win11" {
		t.Errorf("preset replaced caller rotation list: %v", s.ctrl.ProfileList)
	}
	if s.retry.MaxRetries != 7 {
		t.Errorf("preset lowered caller MaxRetries to %d", s.retry.MaxRetries)
	}
}

func TestWAFAdaptationCloudflare(t *testing.T) {
	ft := &fakeTransport{
		respond: func(int, transport.Request) (*transport.Response, error) {
			return &transport.Response{
				Status:  200,
				Headers: map[string]string{"CF-RAY": "abc123"},
				Body:    "a page served through the edge",
			}, nil
		},
	}
	off := false
	s := newTestSession(t, Options{Fingerprint: "firefox_120_win11", HTTP2: &off}, ft)

	if _, err := s.Get("https://example.com"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if !s.http2 {
		t.Error("cloudflare signature should force HTTP/2 on")
	}
	fp := s.Fingerprint()
	if !strings.Contains(fp.UserAgent, "Chrome") {
		t.Errorf("active profile after adaptation = %s, want a Chrome profile", fp.Profile)
	}
}

func TestCookieHarvestAndReplay(t *testing.T) {
	ft := &fakeTransport{
		respond: func(n int, _ transport.Request) (*transport.Response, error) {
			if n == 1 {
				return &transport.Response{
					Status:  200,
					Body:    "ok",
					Cookies: []*http.Cookie{{Name: "sid", Value: "abc123"}},
				}, nil
			}
			return &transport.Response{Status: 200, Body: "ok"}, nil
		},
	}
	s := newTestSession(t, Options{}, ft)

	s.Get("https://example.com/login")
	s.Get("https://example.com/account")

	second := ft.request(1)
	if got := second.Headers["cookie"]; got != "sid=abc123" {
		t.Errorf("replayed Cookie header = %q, want sid=abc123", got)
	}
}

func TestHeaderCasingFollowsProfile(t *testing.T) {
	ft := &fakeTransport{}
	s := newTestSession(t, Options{
		Fingerprint: "firefox_120_win11",
		Headers:     map[string]string{"x-custom-token": "v"},
	}, ft)

	s.Get("https://example.com")

	req := ft.request(0)
	found := false
	for k := range req.Headers {
		if k == "X-Custom-Token" {
			found = true
		}
		if k != "Cookie" && strings.ToLower(k) == k && strings.Contains(k, "-") {
			t.Errorf("firefox profile emitted lowercase header %q", k)
		}
	}
	if !found {
		t.Errorf("headers = %v, want title-cased X-Custom-Token", req.Headers)
	}
}

func TestRequestHeadersWinOverSession(t *testing.T) {
	ft := &fakeTransport{}
	s := newTestSession(t, Options{
		Headers: map[string]string{"Accept-Language": "en-US"},
	}, ft)

	s.Get("https://example.com", WithHeader("Accept-Language", "de-DE"))

	if got := ft.request(0).Headers["accept-language"]; got != "de-DE" {
		t.Errorf("accept-language = %q, want per-request value", got)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ft := &fakeTransport{}
	s := newTestSession(t, Options{
		Fingerprint:    "firefox_124_win11",
		RotateProfiles: []string{"chrome_124_win11", "firefox_124_win11"},
		ProxyPool:      []string{"http://p1:1", "http://p2:2"},
		Proxy:          "http://p1:1",
		OnBlock:        OnBlockBoth,
		MaxRetries:     4,
		Headers:        map[string]string{"Accept-Language": "sv-SE"},
	}, ft)

	exported, err := s.ExportState()
	if err != nil {
		t.Fatalf("ExportState: %v", err)
	}

	fresh := newTestSession(t, Options{}, &fakeTransport{})
	if err := fresh.ImportState(exported); err != nil {
		t.Fatalf("ImportState: %v", err)
	}

	if fresh.ActiveProfile() != "firefox_124_win11" {
		t.Errorf("profile = %q", fresh.ActiveProfile())
	}
	if fresh.engine != s.engine {
		t.Errorf("engine = %q, want %q", fresh.engine, s.engine)
	}
	if fresh.stickyProxy != "http://p1:1" {
		t.Errorf("sticky proxy = %q", fresh.stickyProxy)
	}
	if fresh.policy != OnBlockBoth || fresh.retry.MaxRetries != 4 {
		t.Errorf("policy/retries = %s/%d", fresh.policy, fresh.retry.MaxRetries)
	}
	if got := fresh.headers.Get("Accept-Language"); got != "sv-SE" {
		t.Errorf("Accept-Language = %q", got)
	}

	reexported, err := fresh.ExportState()
	if err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if string(reexported) != string(exported) {
		t.Errorf("state not stable across round trip:\n%s\nvs\n%s", exported, reexported)
	}
}

func TestCloseIdempotentAndBlocksRequests(t *testing.T) {
	ft := &fakeTransport{}
	s := newTestSession(t, Options{}, ft)

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if !ft.closed {
		t.Error("transport not closed")
	}

	if _, err := s.Get("https://example.com"); !errors.Is(err, transport.ErrClosed) {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
}

func TestSubmitForm(t *testing.T) {
	page := `<form action="/login" method="post">
<input type="hidden" name="csrf" value="tok42">
<input type="text" name="user" value="">
</form>`
	ft := &fakeTransport{
		respond: func(n int, req transport.Request) (*transport.Response, error) {
			if req.Method == "GET" {
				return &transport.Response{Status: 200, Body: page}, nil
			}
			return &transport.Response{Status: 200, Body: "logged in"}, nil
		},
	}
	s := newTestSession(t, Options{}, ft)

	resp, err := s.SubmitForm("https://example.com/account", map[string]string{"user": "kim"}, 0)
	if err != nil {
		t.Fatalf("SubmitForm: %v", err)
	}
	if resp.Body != "logged in" {
		t.Errorf("body = %q", resp.Body)
	}

	post := ft.request(1)
	if post.Method != "POST" {
		t.Fatalf("method = %s, want POST", post.Method)
	}
	if post.URL != "https://example.com/login" {
		t.Errorf("action resolved to %q", post.URL)
	}
	if !strings.Contains(post.Body, "csrf=tok42") || !strings.Contains(post.Body, "user=kim") {
		t.Errorf("payload = %q, want merged inputs", post.Body)
	}
	if got := post.Headers["content-type"]; got != "application/x-www-form-urlencoded" {
		t.Errorf("content-type = %q", got)
	}
}

func TestSubmitFormErrors(t *testing.T) {
	ft := &fakeTransport{
		respond: func(int, transport.Request) (*transport.Response, error) {
			return &transport.Response{Status: 200, Body: `<form action="/a"><input name="q"></form>`}, nil
		},
	}
	s := newTestSession(t, Options{}, ft)

	if _, err := s.SubmitForm("https://example.com", nil, 5); !errors.Is(err, ErrFormIndex) {
		t.Errorf("index 5 = %v, want ErrFormIndex", err)
	}

	empty := newTestSession(t, Options{}, &fakeTransport{})
	if _, err := empty.SubmitForm("https://example.com", nil, 0); !errors.Is(err, ErrNoForms) {
		t.Errorf("formless page = %v, want ErrNoForms", err)
	}
}

func TestFingerprintDiagnostics(t *testing.T) {
	s := newTestSession(t, Options{Fingerprint: "chrome_124_win11", Randomize: true}, &fakeTransport{})

	fp := s.Fingerprint()
	if fp.Profile != "chrome_124_win11" {
		t.Errorf("Profile = %q", fp.Profile)
	}
	if !strings.Contains(fp.UserAgent, "Chrome/124") {
		t.Errorf("UserAgent = %q, want Chrome/124", fp.UserAgent)
	}
	if !strings.HasPrefix(fp.JA3, "771,") {
		t.Errorf("JA3 = %q", fp.JA3)
	}
	if fp.Impersonate == "" || !fp.Randomization || !fp.HTTP2 {
		t.Errorf("diagnostic = %+v", fp)
	}
}

func TestMimicAssetsFiresBackgroundFetches(t *testing.T) {
	page := `<html>
<link rel="stylesheet" href="/site.css">
<script src="/app.js"></script>
<img src="/logo.png">
</html>`
	done := make(chan string, 8)
	ft := &fakeTransport{}
	ft.respond = func(n int, req transport.Request) (*transport.Response, error) {
		if req.Method == "HEAD" {
			done <- req.URL
			return &transport.Response{Status: 200}, nil
		}
		return &transport.Response{Status: 200, Body: page}, nil
	}
	s := newTestSession(t, Options{}, ft)

	if _, err := s.Get("https://example.com/page", WithMimicAssets()); err != nil {
		t.Fatalf("Get: %v", err)
	}

	seen := map[string]bool{}
	timeout := time.After(2 * time.Second)
	for len(seen) < 3 {
		select {
		case u := <-done:
			seen[u] = true
		case <-timeout:
			t.Fatalf("asset fetches seen: %v, want 3", seen)
		}
	}
	if !seen["https://example.com/site.css"] {
		t.Errorf("relative asset not resolved against base: %v", seen)
	}
}

func TestVerbsUseTheirMethods(t *testing.T) {
	ft := &fakeTransport{}
	s := newTestSession(t, Options{}, ft)

	s.Post("https://example.com", WithBody("x=1"))
	s.Put("https://example.com")
	s.Delete("https://example.com")
	s.Head("https://example.com")
	s.Patch("https://example.com")
	s.Options("https://example.com")

	want := []string{"POST", "PUT", "DELETE", "HEAD", "PATCH", "OPTIONS"}
	for i, m := range want {
		if got := ft.request(i).Method; got != m {
			t.Errorf("verb %d method = %s, want %s", i, got, m)
		}
	}
	if ft.request(0).Body != "x=1" {
		t.Errorf("Post body = %q", ft.request(0).Body)
	}
}
