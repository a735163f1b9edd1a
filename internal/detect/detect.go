// Package detect classifies responses as blocked or clean and recognizes
// the WAF product that produced them. Detection is heuristic: status codes
// and body keywords, with an optional caller predicate taking precedence.
package detect

import "strings"

// Page is the slice of a response the classifier inspects. A nil *Page
// stands for a transport failure with no response at all.
type Page struct {
	Status  int
	Headers map[string]string
	Body    string
}

// Header returns the value for name, matching case-insensitively.
func (p *Page) Header(name string) string {
	if p == nil {
		return ""
	}
	if v, ok := p.Headers[name]; ok {
		return v
	}
	for k, v := range p.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// blockStatuses are status codes that indicate a block regardless of body.
// 1020 is Cloudflare's non-standard "access rules violation" code.
var blockStatuses = map[int]bool{
	403:  true,
	429:  true,
	1020: true,
}

// blockMarkers are lowercase substrings whose presence in a body marks a
// challenge or denial page. A legitimate page discussing these terms will
// be misclassified; that false-positive rate is the accepted cost of a
// keyword heuristic.
var blockMarkers = []string{
	"access denied",
	"attention required",
	"bot detected",
	"cloudflare",
	"error 1020",
	"captcha",
	"please verify you are a human",
	"ddos protection by",
}

// Classifier decides whether a response represents an anti-bot block. The
// zero value uses only the built-in rules.
type Classifier struct {
	// Predicate, when set, is authoritative: its result is returned
	// directly. A panic inside it is swallowed and evaluation falls
	// through to the built-in rules.
	Predicate func(*Page) bool
}

// IsBlocked reports whether page should be treated as a block. A nil page
// (transport failure) is always a block: retrying a network error through
// rotation is preferred over surfacing it early, at the cost of conflating
// outages with blocking.
func (c *Classifier) IsBlocked(page *Page) bool {
	if page == nil {
		return true
	}

	if c.Predicate != nil {
		if verdict, ok := c.runPredicate(page); ok {
			return verdict
		}
	}

	if blockStatuses[page.Status] {
		return true
	}

	body := strings.ToLower(page.Body)
	for _, marker := range blockMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

func (c *Classifier) runPredicate(page *Page) (verdict, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return c.Predicate(page), true
}

// Signature names a recognized WAF product.
type Signature string

const (
	SigNone       Signature = ""
	SigCloudflare Signature = "cloudflare"
	SigAkamai     Signature = "akamai"
	SigDataDome   Signature = "datadome"
	SigCloudFront Signature = "cloudfront"
)

// DetectWAF inspects response headers for known WAF fingerprints. Header
// names match case-insensitively. Returns SigNone when nothing matches.
func DetectWAF(headers map[string]string) Signature {
	lower := make(map[string]string, len(headers))
	for k, v := range headers {
		lower[strings.ToLower(k)] = strings.ToLower(v)
	}

	server := lower["server"]
	switch {
	case hasKey(lower, "cf-ray") || strings.Contains(server, "cloudflare"):
		return SigCloudflare
	case hasKey(lower, "x-akamai-transformed") || strings.Contains(server, "akamai"):
		return SigAkamai
	case hasKey(lower, "x-datadome") || hasKey(lower, "datadome"):
		return SigDataDome
	case hasKey(lower, "x-amz-cf-id"):
		return SigCloudFront
	}
	return SigNone
}

func hasKey(m map[string]string, k string) bool {
	_, ok := m[k]
	return ok
}
