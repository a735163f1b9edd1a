package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonpRe         = regexp.MustCompile(`(?s)^\w+\((.*)\);?$`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

	linkHrefRe  = regexp.MustCompile(`<link[^>]*href=["']([^"']*)["']`)
	scriptSrcRe = regexp.MustCompile(`<script[^>]*src=["']([^"']*)["']`)
	imgSrcRe    = regexp.MustCompile(`<img[^>]*src=["']([^"']*)["']`)
)

// FuzzyJSON parses bodies that are almost JSON: JSONP padding
// ("callback({...});") is stripped, and if a strict parse still fails,
// trailing commas before closing braces are removed and the parse retried.
func FuzzyJSON(body string) (any, error) {
	t := strings.TrimSpace(body)
	if m := jsonpRe.FindStringSubmatch(t); m != nil {
		t = m[1]
	}

	var v any
	if err := json.Unmarshal([]byte(t), &v); err == nil {
		return v, nil
	}
	t = trailingCommaRe.ReplaceAllString(t, "$1")
	if err := json.Unmarshal([]byte(t), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Assets returns the static resource URLs a browser would fetch after
// parsing the page: stylesheet hrefs, script srcs and image srcs,
// deduplicated in first occurrence order.
func Assets(content string) []string {
	var out []string
	for _, re := range []*regexp.Regexp{linkHrefRe, scriptSrcRe, imgSrcRe} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			if m[1] != "" {
				out = append(out, m[1])
			}
		}
	}
	return dedup(out)
}
