// Package extract pulls structured data out of fetched page bodies with
// regular expressions: links, emails, JSON-LD blocks, tables, forms, and a
// deep scan for tokens buried in markup and inline scripts. Regex over HTML
// is deliberately lossy; it trades robustness for zero parse dependencies
// and works well enough on the mostly-regular markup bot targets serve.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	emailRe  = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	hrefRe   = regexp.MustCompile(`href=["']([^"']*)["']`)
	jsonLDRe = regexp.MustCompile(`(?s)<script type="application/ld\+json">(.*?)</script>`)

	jwtRe    = regexp.MustCompile(`ey[a-zA-Z0-9_\-]{10,}\.ey[a-zA-Z0-9_\-]{10,}\.[a-zA-Z0-9_\-]{10,}`)
	apiKeyRe = regexp.MustCompile(`(?:key|api|token|secret|auth|cid|sid)["']?\s*[:=]\s*["']([a-zA-Z0-9\-_]{20,})["']`)
	googleRe = regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`)

	hiddenInputRe = regexp.MustCompile(`(?i)<input[^>]*type=["']hidden["'][^>]*>`)
	jsConfigRe    = regexp.MustCompile(`(?s)(?:var|const|let)\s+(?:\w+Config|config|appData|initialState)\s*=\s*(\{.*?\});`)
	lineCommentRe = regexp.MustCompile(`//[^\n]*\n`)

	tableRe = regexp.MustCompile(`(?s)<table[^>]*>(.*?)</table>`)
	trRe    = regexp.MustCompile(`(?s)<tr[^>]*>(.*?)</tr>`)
	cellRe  = regexp.MustCompile(`(?s)<(?:td|th)[^>]*>(.*?)</(?:td|th)>`)
	tagRe   = regexp.MustCompile(`(?s)<[^>]*>`)

	formRe      = regexp.MustCompile(`(?is)<form([^>]*)>(.*?)</form>`)
	inputRe     = regexp.MustCompile(`(?i)<input([^>]*)>`)
	nameAttrRe  = regexp.MustCompile(`(?i)name=["']([^"']*)["']`)
	valueAttrRe = regexp.MustCompile(`(?i)value=["']([^"']*)["']`)
	actionRe    = regexp.MustCompile(`(?i)action=["']([^"']*)["']`)
	methodRe    = regexp.MustCompile(`(?i)method=["']([^"']*)["']`)
)

// Form is an HTML form with its pre-filled input values.
type Form struct {
	Action string
	Method string
	Inputs map[string]string
}

// Deep is the result of a deep scan for embedded secrets and state.
type Deep struct {
	JWTs         []string
	APIKeys      []string
	HiddenInputs map[string]string
	JSConfigs    []string
}

// Emails returns every email address in content, deduplicated in first
// occurrence order.
func Emails(content string) []string {
	return dedup(emailRe.FindAllString(content, -1))
}

// Links returns every href target, deduplicated in first occurrence order.
func Links(content string) []string {
	var out []string
	for _, m := range hrefRe.FindAllStringSubmatch(content, -1) {
		out = append(out, m[1])
	}
	return dedup(out)
}

// JSONLD returns every parseable JSON-LD script block. Blocks that fail to
// parse are skipped.
func JSONLD(content string) []map[string]any {
	var out []map[string]any
	for _, m := range jsonLDRe.FindAllStringSubmatch(content, -1) {
		var doc map[string]any
		if err := json.Unmarshal([]byte(m[1]), &doc); err == nil {
			out = append(out, doc)
		}
	}
	return out
}

// Tables returns every HTML table as rows of cell text with inner tags
// stripped. Rows with no cells are dropped.
func Tables(content string) [][][]string {
	var tables [][][]string
	for _, tm := range tableRe.FindAllStringSubmatch(content, -1) {
		var rows [][]string
		for _, rm := range trRe.FindAllStringSubmatch(tm[1], -1) {
			var cols []string
			for _, cm := range cellRe.FindAllStringSubmatch(rm[1], -1) {
				cols = append(cols, strings.TrimSpace(tagRe.ReplaceAllString(cm[1], "")))
			}
			if len(cols) > 0 {
				rows = append(rows, cols)
			}
		}
		if len(rows) > 0 {
			tables = append(tables, rows)
		}
	}
	return tables
}

// Forms returns every form with its action, method (GET when unspecified)
// and named input values.
func Forms(content string) []Form {
	var forms []Form
	for _, fm := range formRe.FindAllStringSubmatch(content, -1) {
		attrs, inner := fm[1], fm[2]
		f := Form{Method: "GET", Inputs: map[string]string{}}
		if m := actionRe.FindStringSubmatch(attrs); m != nil {
			f.Action = m[1]
		}
		if m := methodRe.FindStringSubmatch(attrs); m != nil {
			f.Method = strings.ToUpper(m[1])
		}
		for _, im := range inputRe.FindAllStringSubmatch(inner, -1) {
			name := nameAttrRe.FindStringSubmatch(im[1])
			if name == nil {
				continue
			}
			value := ""
			if v := valueAttrRe.FindStringSubmatch(im[1]); v != nil {
				value = v[1]
			}
			f.Inputs[name[1]] = value
		}
		forms = append(forms, f)
	}
	return forms
}

// DeepScan hunts for data that pages do not surface directly: JWTs anywhere
// in the body, API-key-shaped strings in key/value position, hidden form
// inputs, and inline-script config objects (comment-stripped, parse not
// attempted since they are rarely pure JSON).
func DeepScan(content string) Deep {
	d := Deep{HiddenInputs: map[string]string{}}

	d.JWTs = dedup(jwtRe.FindAllString(content, -1))

	var keys []string
	for _, m := range apiKeyRe.FindAllStringSubmatch(content, -1) {
		keys = append(keys, m[1])
	}
	keys = append(keys, googleRe.FindAllString(content, -1)...)
	d.APIKeys = dedup(keys)

	for _, tag := range hiddenInputRe.FindAllString(content, -1) {
		name := nameAttrRe.FindStringSubmatch(tag)
		if name == nil {
			continue
		}
		value := ""
		if v := valueAttrRe.FindStringSubmatch(tag); v != nil {
			value = v[1]
		}
		d.HiddenInputs[name[1]] = value
	}

	for _, m := range jsConfigRe.FindAllStringSubmatch(content, -1) {
		d.JSConfigs = append(d.JSConfigs, strings.TrimSpace(lineCommentRe.ReplaceAllString(m[1], "")))
	}

	return d
}

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
