// Package profiles provides the browser fingerprint catalog used to shape
// outgoing connections. Each profile bundles the correlated signals that
// anti-bot systems cross-check: the TLS ClientHello (cipher and extension
// ordering, summarized as JA3), HTTP header casing and ordering, the HTTP/2
// SETTINGS frame, and the User-Agent / client-hint headers.
//
// The catalog is populated once at package init from static definitions and
// is read-only afterwards, so lookups are safe for unsynchronized concurrent
// use across sessions.
package profiles

import (
	"crypto/rand"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// CaseMode controls how header names are written on the wire.
type CaseMode string

const (
	// CaseLower emits every header name lowercased (Chromium family).
	CaseLower CaseMode = "lower"
	// CaseTitle capitalizes each hyphen-delimited segment (Firefox, Safari).
	CaseTitle CaseMode = "title"
	// CaseAsIs leaves header names untouched.
	CaseAsIs CaseMode = "as-is"
)

// HTTP/2 SETTINGS parameter identifiers (RFC 7540 §6.5.2).
const (
	SettingHeaderTableSize      uint16 = 1
	SettingEnablePush           uint16 = 2
	SettingMaxConcurrentStreams uint16 = 3
	SettingInitialWindowSize    uint16 = 4
	SettingMaxFrameSize         uint16 = 5
	SettingMaxHeaderListSize    uint16 = 6
)

// HTTP2Setting is a single SETTINGS frame entry. Order is significant:
// browsers emit these parameters in a fixed, fingerprintable order.
type HTTP2Setting struct {
	ID    uint16
	Value uint32
}

// Randomization describes which variations a real instance of the browser
// could plausibly produce. Variations outside these bounds would themselves
// be an automation signal, so the randomizer never exceeds them.
type Randomization struct {
	// UAMinorVariance allows bumping the trailing version components of the
	// User-Agent string.
	UAMinorVariance bool

	// ExtensionVariance is the maximum number of adjacent-pair swaps applied
	// to the TLS extension list. Zero means the order is fixed (Chrome).
	ExtensionVariance int

	// CipherShuffle permits a full permutation of the cipher list. Real
	// browsers use a fixed cipher order, so this is off everywhere in the
	// bundled catalog and exists for explicitly opted-in experimentation.
	CipherShuffle bool
}

// Profile is an immutable fingerprint record identified by Name.
type Profile struct {
	Name    string
	Browser string // chrome, firefox, safari, edge
	OS      string // win11, win10, macos, linux, ios, android

	UserAgent string

	// Impersonate is the opaque target handed to the transport, naming which
	// browser's TLS behavior it should reproduce (e.g. "chrome120").
	Impersonate string

	// Ordered TLS ClientHello parameters. CipherIDs and ExtensionIDs are
	// never empty for a valid profile; their order is semantically
	// significant and preserved unless randomization is requested.
	CipherIDs    []uint16
	ExtensionIDs []uint16
	Curves       []uint16
	PointFormats []uint8

	HeaderCase  CaseMode
	HeaderOrder []string

	HTTP2Settings []HTTP2Setting

	// Client-hint headers (Sec-CH-UA family). Empty for non-Chromium
	// browsers, which do not send them.
	SecChUA         string
	SecChUAMobile   string
	SecChUAPlatform string

	// JA3Hash is the MD5 of the canonical JA3 string, carried for
	// diagnostics and logging only.
	JA3Hash string

	Randomization Randomization
}

// JA3 assembles the JA3 ClientHello descriptor for the profile:
// tlsVersion,ciphers,extensions,curves,pointFormats with dash-joined id
// lists. Because it is derived from the ordered id slices, a randomized
// variant yields a JA3 that matches the order it will actually send.
func (p Profile) JA3() string {
	var b strings.Builder
	b.WriteString("771,")
	writeIDs16(&b, p.CipherIDs)
	b.WriteByte(',')
	writeIDs16(&b, p.ExtensionIDs)
	b.WriteByte(',')
	writeIDs16(&b, p.Curves)
	b.WriteByte(',')
	for i, f := range p.PointFormats {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.Itoa(int(f)))
	}
	return b.String()
}

func writeIDs16(b *strings.Builder, ids []uint16) {
	for i, id := range ids {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.Itoa(int(id)))
	}
}

// clone returns a deep copy so variants never alias catalog-owned slices.
func (p Profile) clone() Profile {
	c := p
	c.CipherIDs = append([]uint16(nil), p.CipherIDs...)
	c.ExtensionIDs = append([]uint16(nil), p.ExtensionIDs...)
	c.Curves = append([]uint16(nil), p.Curves...)
	c.PointFormats = append([]uint8(nil), p.PointFormats...)
	c.HeaderOrder = append([]string(nil), p.HeaderOrder...)
	c.HTTP2Settings = append([]HTTP2Setting(nil), p.HTTP2Settings...)
	return c
}

// DefaultName is the profile substituted whenever a requested name is
// unknown or a filter matches nothing. Falling back instead of erroring is a
// deliberate policy: a session must always have a coherent fingerprint.
const DefaultName = "chrome_120_win11"

var (
	catalog   map[string]Profile
	aliases   map[string]string
	byBrowser map[string][]string
	byOS      map[string][]string
	names     []string
)

func init() {
	catalog = make(map[string]Profile)
	byBrowser = make(map[string][]string)
	byOS = make(map[string][]string)

	for _, p := range buildCatalog() {
		catalog[p.Name] = p
		byBrowser[p.Browser] = append(byBrowser[p.Browser], p.Name)
		byOS[p.OS] = append(byOS[p.OS], p.Name)
		names = append(names, p.Name)
	}
	sort.Strings(names)
	for _, v := range byBrowser {
		sort.Strings(v)
	}
	for _, v := range byOS {
		sort.Strings(v)
	}

	aliases = buildAliases()
}

// Lookup returns the profile registered under name, resolving aliases.
func Lookup(name string) (Profile, bool) {
	if p, ok := catalog[name]; ok {
		return p.clone(), true
	}
	if canonical, ok := aliases[name]; ok {
		return catalog[canonical].clone(), true
	}
	return Profile{}, false
}

// Default returns the catalog's fallback profile.
func Default() Profile {
	return catalog[DefaultName].clone()
}

// Names returns all canonical profile names in sorted order. Aliases are
// excluded.
func Names() []string {
	return append([]string(nil), names...)
}

// ByBrowser returns the sorted names of every profile in family (e.g.
// "chrome"). The result is empty for unknown families.
func ByBrowser(family string) []string {
	return append([]string(nil), byBrowser[strings.ToLower(family)]...)
}

// ByOS returns the sorted names of every profile for the given OS tag
// (e.g. "win11", "macos", "ios").
func ByOS(tag string) []string {
	return append([]string(nil), byOS[strings.ToLower(tag)]...)
}

// RandomOf picks a uniformly random profile matching the optional browser
// and OS filters. An empty filter matches everything; a filter combination
// matching nothing falls back to the default profile rather than returning
// an error.
func RandomOf(browser, os string) Profile {
	candidates := names
	if browser != "" || os != "" {
		candidates = nil
		b := strings.ToLower(browser)
		o := strings.ToLower(os)
		for _, n := range names {
			p := catalog[n]
			if b != "" && p.Browser != b {
				continue
			}
			if o != "" && p.OS != o {
				continue
			}
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return Default()
	}
	return catalog[candidates[intn(len(candidates))]].clone()
}

// RandomExcluding picks a uniformly random profile whose name differs from
// current. With a single-entry catalog it returns that entry.
func RandomExcluding(current string) Profile {
	candidates := make([]string, 0, len(names))
	for _, n := range names {
		if n != current {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return Default()
	}
	return catalog[candidates[intn(len(candidates))]].clone()
}

// intn returns a uniform int in [0, n) using crypto/rand. Falls back to 0
// if the system source fails, which only biases toward the first candidate.
func intn(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
