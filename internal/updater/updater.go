// Package updater refreshes fingerprint data from public JA3 databases and
// caches it on disk with a TTL. It is strictly optional: the bundled
// catalog works with no network access, and every failure path here falls
// back to cached or bundled data instead of erroring the caller's request
// flow.
package updater

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/valyala/fasthttp"
)

// DefaultTTL is how long cached feed data stays fresh.
const DefaultTTL = 7 * 24 * time.Hour

const fetchTimeout = 30 * time.Second

// Sources are the public fingerprint feeds the updater knows about.
var Sources = map[string]string{
	"ja3er":      "https://ja3er.com/getAllHashesJson",
	"ja4db":      "https://ja4db.com/api/read/",
	"github_ja3": "https://raw.githubusercontent.com/salesforce/ja3/master/lists/osx-nix-ja3.json",
}

// ErrUnknownSource is returned for a source name not in Sources.
var ErrUnknownSource = errors.New("updater: unknown fingerprint source")

// Feed is one cached fetch result.
type Feed struct {
	Data      json.RawMessage `json:"data"`
	FetchedAt int64           `json:"fetched_at"`
}

// Updater fetches and caches fingerprint feeds.
type Updater struct {
	cacheDir string
	ttl      time.Duration
	logger   *log.Logger

	// fetch is swappable for tests.
	fetch func(url string) ([]byte, error)
}

// Option configures an Updater.
type Option func(*Updater)

// WithTTL overrides the cache freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(u *Updater) { u.ttl = ttl }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *log.Logger) Option {
	return func(u *Updater) { u.logger = logger }
}

// WithFetcher replaces the HTTP fetch function.
func WithFetcher(fetch func(url string) ([]byte, error)) Option {
	return func(u *Updater) { u.fetch = fetch }
}

// New returns an updater caching under cacheDir. An empty cacheDir selects
// ~/.chameleon/cache. The directory is created eagerly; creation failure is
// tolerated and only disables caching.
func New(cacheDir string, opts ...Option) *Updater {
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cacheDir = filepath.Join(home, ".chameleon", "cache")
	}
	os.MkdirAll(cacheDir, 0o755)

	u := &Updater{
		cacheDir: cacheDir,
		ttl:      DefaultTTL,
		logger:   log.New(io.Discard),
		fetch:    httpFetch,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

func httpFetch(url string) ([]byte, error) {
	status, body, err := fasthttp.GetTimeout(nil, url, fetchTimeout)
	if err != nil {
		return nil, err
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("updater: feed returned status %d", status)
	}
	return body, nil
}

func (u *Updater) cachePath(source string) string {
	return filepath.Join(u.cacheDir, source+".json")
}

func (u *Updater) cacheValid(source string) bool {
	info, err := os.Stat(u.cachePath(source))
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < u.ttl
}

func (u *Updater) readCache(source string) (*Feed, bool) {
	data, err := os.ReadFile(u.cachePath(source))
	if err != nil {
		return nil, false
	}
	var feed Feed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, false
	}
	return &feed, true
}

func (u *Updater) writeCache(source string, feed *Feed) {
	data, err := json.MarshalIndent(feed, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(u.cachePath(source), data, 0o644); err != nil {
		u.logger.Debug("cache write failed", "source", source, "error", err)
	}
}

// Fetch returns the feed for source, serving fresh cache when available and
// falling back to stale cache when the network fetch fails. forceRefresh
// skips the freshness check but still falls back on failure.
func (u *Updater) Fetch(source string, forceRefresh bool) (*Feed, error) {
	if _, ok := Sources[source]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	if !forceRefresh && u.cacheValid(source) {
		if feed, ok := u.readCache(source); ok {
			return feed, nil
		}
	}

	body, err := u.fetch(Sources[source])
	if err != nil {
		u.logger.Debug("feed fetch failed", "source", source, "error", err)
		if feed, ok := u.readCache(source); ok {
			return feed, nil
		}
		return nil, err
	}

	feed := &Feed{Data: body, FetchedAt: time.Now().Unix()}
	u.writeCache(source, feed)
	u.logger.Debug("feed refreshed", "source", source, "bytes", len(body))
	return feed, nil
}

// ja3erEntry is one record of the ja3er feed.
type ja3erEntry struct {
	UserAgent string `json:"User-Agent"`
	JA3Hash   string `json:"JA3 Hash"`
	JA3HashLC string `json:"ja3_hash"`
}

// LatestJA3Hash returns the first JA3 hash in the ja3er feed whose
// User-Agent mentions browser. Returns "" when the feed is unavailable or
// has no match.
func (u *Updater) LatestJA3Hash(browser string) string {
	feed, err := u.Fetch("ja3er", false)
	if err != nil {
		return ""
	}
	var entries []ja3erEntry
	if err := json.Unmarshal(feed.Data, &entries); err != nil {
		return ""
	}
	needle := strings.ToLower(browser)
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.UserAgent), needle) {
			if e.JA3Hash != "" {
				return e.JA3Hash
			}
			if e.JA3HashLC != "" {
				return e.JA3HashLC
			}
		}
	}
	return ""
}

// SourceInfo describes one source's cache state.
type SourceInfo struct {
	Cached bool          `json:"cached"`
	Age    time.Duration `json:"age"`
	Valid  bool          `json:"valid"`
}

// CacheInfo reports the cache state of every known source.
func (u *Updater) CacheInfo() map[string]SourceInfo {
	out := make(map[string]SourceInfo, len(Sources))
	for source := range Sources {
		info, err := os.Stat(u.cachePath(source))
		if err != nil {
			out[source] = SourceInfo{}
			continue
		}
		age := time.Since(info.ModTime())
		out[source] = SourceInfo{Cached: true, Age: age, Valid: age < u.ttl}
	}
	return out
}

// ClearCache removes every cached feed file.
func (u *Updater) ClearCache() {
	for source := range Sources {
		os.Remove(u.cachePath(source))
	}
}
