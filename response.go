package chameleon

import (
	"net/http"
	"strings"

	"github.com/chameleon-net/chameleon/internal/extract"
)

// Response is the result of a session request, with extraction helpers for
// pulling structured data out of the body.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
	FinalURL   string

	cookies []*http.Cookie
}

// Header returns the value for name, matching case-insensitively.
func (r *Response) Header(name string) string {
	if r == nil {
		return ""
	}
	if v, ok := r.Headers[name]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Links returns every href target in the body.
func (r *Response) Links() []string { return extract.Links(r.Body) }

// Emails returns every email address in the body.
func (r *Response) Emails() []string { return extract.Emails(r.Body) }

// Forms returns every HTML form with its pre-filled inputs.
func (r *Response) Forms() []extract.Form { return extract.Forms(r.Body) }

// Tables returns every HTML table as rows of cell text.
func (r *Response) Tables() [][][]string { return extract.Tables(r.Body) }

// JSONLD returns every parseable JSON-LD block in the body.
func (r *Response) JSONLD() []map[string]any { return extract.JSONLD(r.Body) }

// DeepScan hunts the body for embedded tokens, API keys, hidden inputs and
// inline config objects.
func (r *Response) DeepScan() extract.Deep { return extract.DeepScan(r.Body) }

// FuzzyJSON parses the body as JSON, tolerating JSONP padding and trailing
// commas.
func (r *Response) FuzzyJSON() (any, error) { return extract.FuzzyJSON(r.Body) }
