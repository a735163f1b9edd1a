package profiles

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	chromeUAVersion  = regexp.MustCompile(`Chrome/(\d+)\.(\d+)\.(\d+)\.(\d+)`)
	firefoxUAVersion = regexp.MustCompile(`Firefox/(\d+)\.(\d+)`)
	firefoxUARv      = regexp.MustCompile(`rv:(\d+)\.(\d+)`)
)

// Variant returns a copy of p with plausible per-session noise applied
// within the profile's randomization bounds. The major browser version and
// everything a WAF cross-checks against it stay fixed; only the signals real
// installs genuinely vary (build/patch numbers, limited extension order) are
// touched. Profiles with an empty Randomization come back as plain clones.
func Variant(p Profile) Profile {
	v := p.clone()

	if v.Randomization.UAMinorVariance {
		v.UserAgent = varyUserAgent(v.UserAgent)
	}

	if n := v.Randomization.ExtensionVariance; n > 0 && len(v.ExtensionIDs) > 1 {
		swaps := intn(n + 1)
		for i := 0; i < swaps; i++ {
			j := intn(len(v.ExtensionIDs) - 1)
			v.ExtensionIDs[j], v.ExtensionIDs[j+1] = v.ExtensionIDs[j+1], v.ExtensionIDs[j]
		}
	}

	if v.Randomization.CipherShuffle {
		shuffle16(v.CipherIDs)
	}

	return v
}

// varyUserAgent bumps the trailing version components of a Chrome or Firefox
// UA string. Chrome's third component is the build number (varies widely
// across update channels) and the fourth is the patch level; Firefox only
// carries major.minor. Unrecognized UAs are returned unchanged.
func varyUserAgent(ua string) string {
	if m := chromeUAVersion.FindStringSubmatch(ua); m != nil {
		build, _ := strconv.Atoi(m[3])
		patch, _ := strconv.Atoi(m[4])
		build += intn(151) - 50 // -50..+100
		patch += intn(71) - 20  // -20..+50
		if build < 0 {
			build = 0
		}
		if patch < 0 {
			patch = 0
		}
		return chromeUAVersion.ReplaceAllString(ua,
			fmt.Sprintf("Chrome/%s.%s.%d.%d", m[1], m[2], build, patch))
	}
	if m := firefoxUAVersion.FindStringSubmatch(ua); m != nil {
		minor, _ := strconv.Atoi(m[2])
		minor += intn(3) // 0..+2
		// rv: mirrors the Firefox/ token and the two must agree.
		ua = firefoxUARv.ReplaceAllString(ua,
			fmt.Sprintf("rv:%s.%d", m[1], minor))
		return firefoxUAVersion.ReplaceAllString(ua,
			fmt.Sprintf("Firefox/%s.%d", m[1], minor))
	}
	return ua
}

func shuffle16(ids []uint16) {
	for i := len(ids) - 1; i > 0; i-- {
		j := intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}
