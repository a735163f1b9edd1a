// Package rotation implements the on-block state machine: advancing the
// active fingerprint profile and proxy through their configured pools and
// computing retry backoff.
package rotation

import (
	"math/rand"
	"time"

	"github.com/chameleon-net/chameleon/internal/profiles"
)

// Policy selects which axes rotate when a block is detected.
type Policy string

const (
	// PolicyNone reports the block to the caller without retrying.
	PolicyNone Policy = "none"
	// PolicyProfile rotates the fingerprint profile only.
	PolicyProfile Policy = "rotate"
	// PolicyProxy rotates the proxy only.
	PolicyProxy Policy = "proxy"
	// PolicyBoth rotates profile and proxy together.
	PolicyBoth Policy = "both"
)

// RotatesProfile reports whether the policy advances the profile axis.
func (p Policy) RotatesProfile() bool { return p == PolicyProfile || p == PolicyBoth }

// RotatesProxy reports whether the policy advances the proxy axis.
func (p Policy) RotatesProxy() bool { return p == PolicyProxy || p == PolicyBoth }

// Valid reports whether p is a recognized policy name.
func (p Policy) Valid() bool {
	switch p {
	case PolicyNone, PolicyProfile, PolicyProxy, PolicyBoth:
		return true
	}
	return false
}

// RetryPolicy bounds the retry loop. MaxRetries counts retries after the
// initial attempt, so the attempt total is MaxRetries+1.
type RetryPolicy struct {
	MaxRetries  int
	BackoffBase time.Duration
	Jitter      time.Duration
}

// DefaultRetryPolicy matches a polite interactive client: three retries
// with sub-second initial delays.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:  3,
	BackoffBase: 500 * time.Millisecond,
	Jitter:      300 * time.Millisecond,
}

// Backoff returns the sleep before retry number attempt (counted from 1):
// base doubled per prior retry plus uniform jitter in [0, Jitter).
func (r RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := r.BackoffBase << uint(attempt-1)
	if r.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(r.Jitter)))
	}
	return d
}

// Controller tracks the rotation cursors for one session. Cursors start at
// -1 (nothing selected) and advance round-robin with wraparound. The
// controller is single-owner state, guarded by the session that holds it.
type Controller struct {
	// ProfileList is the explicit rotation list. When empty, profile
	// rotation falls back to a uniform random pick from the catalog
	// excluding the current profile.
	ProfileList []string
	ProxyPool   []string

	profileCursor int
	proxyCursor   int
}

// NewController returns a controller with both cursors uninitialized.
func NewController(profileList, proxyPool []string) *Controller {
	return &Controller{
		ProfileList:   append([]string(nil), profileList...),
		ProxyPool:     append([]string(nil), proxyPool...),
		profileCursor: -1,
		proxyCursor:   -1,
	}
}

// NextProfile advances the profile axis and returns the new active profile.
// With a rotation list the advance is round-robin; without one it is a
// random catalog pick excluding current. Unknown names in the rotation list
// resolve to the default profile rather than failing mid-retry.
func (c *Controller) NextProfile(current string) profiles.Profile {
	if len(c.ProfileList) == 0 {
		return profiles.RandomExcluding(current)
	}
	c.profileCursor = (c.profileCursor + 1) % len(c.ProfileList)
	name := c.ProfileList[c.profileCursor]
	p, ok := profiles.Lookup(name)
	if !ok {
		return profiles.Default()
	}
	return p
}

// NextProxy advances the proxy axis round-robin and returns the selected
// proxy. Returns "" when no pool is configured.
func (c *Controller) NextProxy() string {
	if len(c.ProxyPool) == 0 {
		return ""
	}
	c.proxyCursor = (c.proxyCursor + 1) % len(c.ProxyPool)
	return c.ProxyPool[c.proxyCursor]
}

// Cursors returns the current cursor positions, for state export.
func (c *Controller) Cursors() (profile, proxy int) {
	return c.profileCursor, c.proxyCursor
}

// SetCursors restores cursor positions from an earlier export. Out-of-range
// values reset to -1.
func (c *Controller) SetCursors(profile, proxy int) {
	if profile < 0 || profile >= len(c.ProfileList) {
		profile = -1
	}
	if proxy < 0 || proxy >= len(c.ProxyPool) {
		proxy = -1
	}
	c.profileCursor = profile
	c.proxyCursor = proxy
}
