// Package headers shapes outgoing request headers to match a fingerprint
// profile: merging session and per-request headers, ordering them to the
// profile's navigation order, and rewriting name casing.
package headers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/chameleon-net/chameleon/internal/profiles"
)

type entry struct {
	key   string
	value string
}

// Ordered is a header collection that preserves insertion order and exact
// key casing, unlike http.Header which canonicalizes keys into an unordered
// map. Servers that fingerprint clients inspect both the casing
// ("sec-ch-ua-platform" vs "Sec-Ch-Ua-Platform") and relative order of
// headers, so both must survive until the transport consumes them.
//
// Ordered is not safe for concurrent use. Each session builds one per
// attempt and hands it to the transport synchronously.
type Ordered struct {
	entries []entry
}

// Add appends key/value, preserving the exact casing of key. Repeated keys
// produce repeated entries, matching http.Header.Add.
func (h *Ordered) Add(key, value string) {
	h.entries = append(h.entries, entry{key: key, value: value})
}

// Set replaces the first case-insensitive match with the new key/value and
// drops later duplicates; with no match it appends. The surviving entry
// takes key's casing, so Set can recase as well as revalue.
func (h *Ordered) Set(key, value string) {
	canon := http.CanonicalHeaderKey(key)
	replaced := false
	out := h.entries[:0]
	for _, e := range h.entries {
		if http.CanonicalHeaderKey(e.key) == canon {
			if !replaced {
				out = append(out, entry{key: key, value: value})
				replaced = true
			}
			continue
		}
		out = append(out, e)
	}
	if !replaced {
		out = append(out, entry{key: key, value: value})
	}
	h.entries = out
}

// Del removes every entry matching key case-insensitively.
func (h *Ordered) Del(key string) {
	canon := http.CanonicalHeaderKey(key)
	out := h.entries[:0]
	for _, e := range h.entries {
		if http.CanonicalHeaderKey(e.key) != canon {
			out = append(out, e)
		}
	}
	h.entries = out
}

// Get returns the first value matching key case-insensitively, or "".
func (h *Ordered) Get(key string) string {
	canon := http.CanonicalHeaderKey(key)
	for _, e := range h.entries {
		if http.CanonicalHeaderKey(e.key) == canon {
			return e.value
		}
	}
	return ""
}

// Len returns the number of entries, duplicates included.
func (h *Ordered) Len() int { return len(h.entries) }

// Keys returns the keys in order, with their stored casing.
func (h *Ordered) Keys() []string {
	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.key
	}
	return out
}

// Map flattens the collection into a plain map keyed by the stored casing.
// Insertion order is lost; later duplicates win.
func (h *Ordered) Map() map[string]string {
	out := make(map[string]string, len(h.entries))
	for _, e := range h.entries {
		out[e.key] = e.value
	}
	return out
}

// Clone returns an independent copy.
func (h *Ordered) Clone() *Ordered {
	c := &Ordered{entries: make([]entry, len(h.entries))}
	copy(c.entries, h.entries)
	return c
}

// ApplyCase rewrites the key for name according to mode.
func ApplyCase(name string, mode profiles.CaseMode) string {
	switch mode {
	case profiles.CaseLower:
		return strings.ToLower(name)
	case profiles.CaseTitle:
		return titleCase(name)
	default:
		return name
	}
}

// titleCase capitalizes each hyphen-delimited segment: "accept-language"
// becomes "Accept-Language".
func titleCase(name string) string {
	segs := strings.Split(name, "-")
	for i, s := range segs {
		if s == "" {
			continue
		}
		segs[i] = strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	}
	return strings.Join(segs, "-")
}

// Morph merges session-level headers with per-request headers (request wins
// on case-insensitive collision), orders the result by order (falling back
// to no ordering when order is empty), and recases every emitted name per
// mode. Names in order are emitted first, in order position; the remainder
// follow in their merge order. The result is a hint to the transport, which
// owns the final wire order.
func Morph(request, session *Ordered, order []string, mode profiles.CaseMode) *Ordered {
	merged := &Ordered{}
	if session != nil {
		for _, e := range session.entries {
			merged.Add(e.key, e.value)
		}
	}
	if request != nil {
		for _, e := range request.entries {
			merged.Set(e.key, e.value)
		}
	}

	out := &Ordered{entries: make([]entry, 0, len(merged.entries))}
	if len(order) > 0 {
		for _, want := range order {
			canon := http.CanonicalHeaderKey(want)
			rest := merged.entries[:0]
			for _, e := range merged.entries {
				if http.CanonicalHeaderKey(e.key) == canon {
					out.entries = append(out.entries, entry{key: ApplyCase(e.key, mode), value: e.value})
					continue
				}
				rest = append(rest, e)
			}
			merged.entries = rest
		}
	}
	for _, e := range merged.entries {
		out.entries = append(out.entries, entry{key: ApplyCase(e.key, mode), value: e.value})
	}
	return out
}

// FromMap builds an Ordered from a plain map. Map iteration order is not
// deterministic, so keys are inserted sorted to keep results stable.
func FromMap(m map[string]string) *Ordered {
	if len(m) == 0 {
		return &Ordered{}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := &Ordered{entries: make([]entry, 0, len(m))}
	for _, k := range keys {
		h.entries = append(h.entries, entry{key: k, value: m[k]})
	}
	return h
}
