package detect

import "testing"

func TestIsBlockedStatuses(t *testing.T) {
	var c Classifier

	tests := []struct {
		status int
		want   bool
	}{
		{200, false},
		{301, false},
		{403, true},
		{404, false},
		{429, true},
		{500, false},
		{1020, true},
	}
	for _, tt := range tests {
		page := &Page{Status: tt.status, Body: "regular page content"}
		if got := c.IsBlocked(page); got != tt.want {
			t.Errorf("IsBlocked(status %d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestIsBlockedNilPage(t *testing.T) {
	var c Classifier
	if !c.IsBlocked(nil) {
		t.Error("nil page (transport failure) must classify as blocked")
	}
}

func TestIsBlockedBodyMarkers(t *testing.T) {
	var c Classifier

	tests := []struct {
		body string
		want bool
	}{
		{"<h1>Welcome to the shop</h1>", false},
		{"<title>Attention Required! | Cloudflare</title>", true},
		{"ACCESS DENIED", true},
		{"our system thinks you might be a Bot Detected hmm", true},
		{"Error 1020: access rules violation", true},
		{"Please verify you are a human to continue", true},
		{"", false},
	}
	for _, tt := range tests {
		page := &Page{Status: 200, Body: tt.body}
		if got := c.IsBlocked(page); got != tt.want {
			t.Errorf("IsBlocked(body %q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}

func TestPredicateIsAuthoritative(t *testing.T) {
	// Predicate overrides the status rule in both directions.
	allow := Classifier{Predicate: func(*Page) bool { return false }}
	if allow.IsBlocked(&Page{Status: 403}) {
		t.Error("predicate returning false should override status 403")
	}

	deny := Classifier{Predicate: func(*Page) bool { return true }}
	if !deny.IsBlocked(&Page{Status: 200, Body: "fine"}) {
		t.Error("predicate returning true should override a clean page")
	}
}

func TestPredicatePanicFallsThrough(t *testing.T) {
	c := Classifier{Predicate: func(*Page) bool { panic("bad predicate") }}

	if !c.IsBlocked(&Page{Status: 403}) {
		t.Error("after predicate panic, status rule should still apply")
	}
	if c.IsBlocked(&Page{Status: 200, Body: "fine"}) {
		t.Error("after predicate panic, clean page should classify clean")
	}
}

func TestPageHeader(t *testing.T) {
	p := &Page{Headers: map[string]string{"Content-Type": "text/html"}}
	if got := p.Header("content-type"); got != "text/html" {
		t.Errorf("Header(content-type) = %q", got)
	}
	if got := p.Header("missing"); got != "" {
		t.Errorf("Header(missing) = %q, want empty", got)
	}
	var nilPage *Page
	if got := nilPage.Header("anything"); got != "" {
		t.Errorf("nil page Header = %q, want empty", got)
	}
}

func TestDetectWAF(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    Signature
	}{
		{"cf-ray header", map[string]string{"CF-RAY": "abc123"}, SigCloudflare},
		{"cloudflare server", map[string]string{"Server": "cloudflare"}, SigCloudflare},
		{"akamai transform", map[string]string{"X-Akamai-Transformed": "9"}, SigAkamai},
		{"akamai server", map[string]string{"server": "AkamaiGHost"}, SigAkamai},
		{"datadome", map[string]string{"X-DataDome": "protected"}, SigDataDome},
		{"cloudfront", map[string]string{"X-Amz-Cf-Id": "xyz"}, SigCloudFront},
		{"plain apache", map[string]string{"Server": "Apache"}, SigNone},
		{"empty", nil, SigNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectWAF(tt.headers); got != tt.want {
				t.Errorf("DetectWAF = %q, want %q", got, tt.want)
			}
		})
	}
}

func BenchmarkIsBlocked(b *testing.B) {
	var c Classifier
	page := &Page{Status: 200, Body: "a perfectly ordinary page body with nothing suspicious in it"}
	for i := 0; i < b.N; i++ {
		c.IsBlocked(page)
	}
}
