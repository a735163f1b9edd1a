package chameleon

import (
	"strings"
	"time"
)

// applySitePreset fills in defaults tuned for a named target before the
// session is built. Presets only touch fields the caller left unset:
// retries get a floor, backoff base a cap, jitter a floor, and rotation
// list / HTTP/2 / header order only apply when absent.
func applySitePreset(opts *Options) {
	switch strings.ToLower(opts.Site) {
	case "cloudflare":
		if len(opts.RotateProfiles) == 0 {
			opts.RotateProfiles = []string{"chrome_124", "chrome_120", "mobile_safari_17"}
		}
		if opts.MaxRetries < 3 {
			opts.MaxRetries = 3
		}
		if opts.BackoffBase == 0 || opts.BackoffBase > 800*time.Millisecond {
			opts.BackoffBase = 800 * time.Millisecond
		}
		if opts.Jitter < 400*time.Millisecond {
			opts.Jitter = 400 * time.Millisecond
		}
		if opts.HTTP2 == nil {
			on := true
			opts.HTTP2 = &on
		}
		if len(opts.HeaderOrder) == 0 {
			opts.HeaderOrder = []string{
				"User-Agent", "Accept", "Accept-Language", "Accept-Encoding", "Connection",
			}
		}

	case "akamai":
		if len(opts.RotateProfiles) == 0 {
			opts.RotateProfiles = []string{"chrome_124", "firefox_120", "mobile_safari_17"}
		}
		if opts.MaxRetries < 3 {
			opts.MaxRetries = 3
		}
		if opts.BackoffBase == 0 || opts.BackoffBase > time.Second {
			opts.BackoffBase = time.Second
		}
		if opts.Jitter < 500*time.Millisecond {
			opts.Jitter = 500 * time.Millisecond
		}
		if opts.HTTP2 == nil {
			on := true
			opts.HTTP2 = &on
		}
	}
}
