package profiles

// Static fingerprint data for the bundled catalog. Values are captured from
// real browser traffic (cipher/extension ordering verified against JA3
// databases); profiles sharing a browser engine across OSes intentionally
// share the same technical signature and differ only in cosmetic fields.

// Chrome 120+ ClientHello: TLS 1.3 suites first, then the fixed ECDHE list.
var chromeCiphers = []uint16{
	4865, 4866, 4867, // TLS_AES_128_GCM_SHA256, TLS_AES_256_GCM_SHA384, TLS_CHACHA20_POLY1305_SHA256
	49195, 49199, 49196, 49200, 52393, 52392,
	49171, 49172, 156, 157, 47, 53,
}

var chromeExtensions = []uint16{0, 23, 65281, 10, 11, 35, 16, 5, 13, 18, 51, 45, 43, 27, 17513, 21}

var chromeCurves = []uint16{29, 23, 24}

var chromeHTTP2 = []HTTP2Setting{
	{SettingHeaderTableSize, 65536},
	{SettingEnablePush, 0},
	{SettingMaxConcurrentStreams, 1000},
	{SettingInitialWindowSize, 6291456},
	{SettingMaxFrameSize, 16384},
	{SettingMaxHeaderListSize, 262144},
}

var chromeHeaderOrder = []string{
	"host", "connection", "cache-control", "sec-ch-ua", "sec-ch-ua-mobile",
	"sec-ch-ua-platform", "upgrade-insecure-requests", "user-agent", "accept",
	"sec-fetch-site", "sec-fetch-mode", "sec-fetch-user", "sec-fetch-dest",
	"accept-encoding", "accept-language",
}

// Chrome 124+ appends the priority header to the navigation order.
var chrome124HeaderOrder = append(append([]string(nil), chromeHeaderOrder...), "priority")

var chromeRandomization = Randomization{
	UAMinorVariance:   true,
	ExtensionVariance: 0, // Chrome's extension order is fixed
	CipherShuffle:     false,
}

var firefoxCiphers = []uint16{
	4865, 4867, 4866,
	49195, 49199, 52393, 52392, 49196, 49200,
	49162, 49161, 49171, 49172, 156, 157, 47, 53,
}

var firefoxExtensions = []uint16{0, 23, 65281, 10, 11, 35, 16, 5, 34, 51, 43, 13, 45, 28, 21}

var firefoxCurves = []uint16{29, 23, 24, 25, 256, 257}

var firefoxHTTP2 = []HTTP2Setting{
	{SettingHeaderTableSize, 65536},
	{SettingEnablePush, 1},
	{SettingMaxConcurrentStreams, 100},
	{SettingInitialWindowSize, 131072},
	{SettingMaxFrameSize, 16384},
	{SettingMaxHeaderListSize, 65536},
}

var firefoxHeaderOrder = []string{
	"Host", "User-Agent", "Accept", "Accept-Language", "Accept-Encoding",
	"Connection", "Upgrade-Insecure-Requests", "Sec-Fetch-Dest",
	"Sec-Fetch-Mode", "Sec-Fetch-Site", "Sec-Fetch-User",
}

var firefoxRandomization = Randomization{
	UAMinorVariance:   true,
	ExtensionVariance: 2, // Firefox tolerates limited extension reordering
	CipherShuffle:     false,
}

var safariCiphers = []uint16{
	4865, 4866, 4867,
	49196, 49195, 52393, 49200, 49199, 52392,
	49188, 49187, 49162, 49161, 49172, 49171,
	157, 156, 53, 47, 255,
}

var safariExtensions = []uint16{0, 23, 65281, 10, 11, 16, 5, 13, 18, 51, 45, 43, 27, 21}

var safariCurves = []uint16{29, 23, 24, 25}

var safariHTTP2 = []HTTP2Setting{
	{SettingHeaderTableSize, 4096},
	{SettingEnablePush, 0},
	{SettingMaxConcurrentStreams, 100},
	{SettingInitialWindowSize, 65535},
	{SettingMaxFrameSize, 16384},
	{SettingMaxHeaderListSize, 16384},
}

var safariHeaderOrder = []string{
	"Host", "Accept", "Accept-Language", "User-Agent", "Accept-Encoding", "Connection",
}

// Safari variance is locked down entirely: WebKit ships the same hello on
// every launch and its UA version tracks the OS.
var safariRandomization = Randomization{}

var pointFormats = []uint8{0}

const (
	chromeJA3Hash  = "cd08e31494f9531f560d64c695473da9"
	firefoxJA3Hash = "579ccef312e5ce0e367e8d1a9a11add4"
	safariJA3Hash  = "773906b0efdefa24a7f2b8eb6985bf37"
)

func chromeProfile(name, osTag, impersonate, ua, secChUA, platform string, headerOrder []string) Profile {
	return Profile{
		Name:            name,
		Browser:         "chrome",
		OS:              osTag,
		UserAgent:       ua,
		Impersonate:     impersonate,
		CipherIDs:       chromeCiphers,
		ExtensionIDs:    chromeExtensions,
		Curves:          chromeCurves,
		PointFormats:    pointFormats,
		HeaderCase:      CaseLower,
		HeaderOrder:     headerOrder,
		HTTP2Settings:   chromeHTTP2,
		SecChUA:         secChUA,
		SecChUAMobile:   "?0",
		SecChUAPlatform: platform,
		JA3Hash:         chromeJA3Hash,
		Randomization:   chromeRandomization,
	}
}

func firefoxProfile(name, osTag, ua string) Profile {
	return Profile{
		Name:          name,
		Browser:       "firefox",
		OS:            osTag,
		UserAgent:     ua,
		Impersonate:   "firefox120",
		CipherIDs:     firefoxCiphers,
		ExtensionIDs:  firefoxExtensions,
		Curves:        firefoxCurves,
		PointFormats:  pointFormats,
		HeaderCase:    CaseTitle,
		HeaderOrder:   firefoxHeaderOrder,
		HTTP2Settings: firefoxHTTP2,
		JA3Hash:       firefoxJA3Hash,
		Randomization: firefoxRandomization,
	}
}

func safariProfile(name, osTag, impersonate, ua string) Profile {
	return Profile{
		Name:          name,
		Browser:       "safari",
		OS:            osTag,
		UserAgent:     ua,
		Impersonate:   impersonate,
		CipherIDs:     safariCiphers,
		ExtensionIDs:  safariExtensions,
		Curves:        safariCurves,
		PointFormats:  pointFormats,
		HeaderCase:    CaseTitle,
		HeaderOrder:   safariHeaderOrder,
		HTTP2Settings: safariHTTP2,
		JA3Hash:       safariJA3Hash,
		Randomization: safariRandomization,
	}
}

func edgeProfile(name, osTag, ua, secChUA string, headerOrder []string) Profile {
	p := chromeProfile(name, osTag, "edge120", ua, secChUA, `"Windows"`, headerOrder)
	p.Browser = "edge"
	return p
}

const (
	uaChrome120Win   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaChrome120Mac   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaChrome120Linux = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaChrome124Win   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	uaChrome124Mac   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	uaChrome124Linux = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	uaChrome125Win   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"
	uaChrome125Mac   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"
	uaChrome125Linux = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

	secChUA120 = `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`
	secChUA124 = `"Chromium";v="124", "Google Chrome";v="124", "Not-A.Brand";v="99"`
	secChUA125 = `"Chromium";v="125", "Google Chrome";v="125", "Not-A.Brand";v="24"`
)

func buildCatalog() []Profile {
	out := []Profile{
		// Chrome 120
		chromeProfile("chrome_120_win11", "win11", "chrome120", uaChrome120Win, secChUA120, `"Windows"`, chromeHeaderOrder),
		chromeProfile("chrome_120_win10", "win10", "chrome120", uaChrome120Win, secChUA120, `"Windows"`, chromeHeaderOrder),
		chromeProfile("chrome_120_macos", "macos", "chrome120", uaChrome120Mac, secChUA120, `"macOS"`, chromeHeaderOrder),
		chromeProfile("chrome_120_linux", "linux", "chrome120", uaChrome120Linux, secChUA120, `"Linux"`, chromeHeaderOrder),

		// Chrome 124
		chromeProfile("chrome_124_win11", "win11", "chrome124", uaChrome124Win, secChUA124, `"Windows"`, chrome124HeaderOrder),
		chromeProfile("chrome_124_win10", "win10", "chrome124", uaChrome124Win, secChUA124, `"Windows"`, chrome124HeaderOrder),
		chromeProfile("chrome_124_macos", "macos", "chrome124", uaChrome124Mac, secChUA124, `"macOS"`, chrome124HeaderOrder),
		chromeProfile("chrome_124_linux", "linux", "chrome124", uaChrome124Linux, secChUA124, `"Linux"`, chrome124HeaderOrder),

		// Chrome 125 (impersonation target stays chrome124 until the
		// transport grows a dedicated 125 parrot)
		chromeProfile("chrome_125_win11", "win11", "chrome124", uaChrome125Win, secChUA125, `"Windows"`, chrome124HeaderOrder),
		chromeProfile("chrome_125_win10", "win10", "chrome124", uaChrome125Win, secChUA125, `"Windows"`, chrome124HeaderOrder),
		chromeProfile("chrome_125_macos", "macos", "chrome124", uaChrome125Mac, secChUA125, `"macOS"`, chrome124HeaderOrder),
		chromeProfile("chrome_125_linux", "linux", "chrome124", uaChrome125Linux, secChUA125, `"Linux"`, chrome124HeaderOrder),

		// Firefox 120 / 124
		firefoxProfile("firefox_120_win11", "win11", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0"),
		firefoxProfile("firefox_120_win10", "win10", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0"),
		firefoxProfile("firefox_120_macos", "macos", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:120.0) Gecko/20100101 Firefox/120.0"),
		firefoxProfile("firefox_120_linux", "linux", "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"),
		firefoxProfile("firefox_124_win11", "win11", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0"),
		firefoxProfile("firefox_124_win10", "win10", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0"),
		firefoxProfile("firefox_124_macos", "macos", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:124.0) Gecko/20100101 Firefox/124.0"),
		firefoxProfile("firefox_124_linux", "linux", "Mozilla/5.0 (X11; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0"),

		// Safari
		safariProfile("safari_ios16", "ios", "safari16", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"),
		safariProfile("safari_ios17", "ios", "safari17_0", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"),
		safariProfile("safari_macos13", "macos", "safari16", "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Safari/605.1.15"),
		safariProfile("safari_macos14", "macos", "safari17_0", "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"),

		// Edge
		edgeProfile("edge_120_win11", "win11",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
			`"Not_A Brand";v="8", "Chromium";v="120", "Microsoft Edge";v="120"`, chromeHeaderOrder),
		edgeProfile("edge_120_win10", "win10",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
			`"Not_A Brand";v="8", "Chromium";v="120", "Microsoft Edge";v="120"`, chromeHeaderOrder),
		edgeProfile("edge_124_win11", "win11",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
			`"Chromium";v="124", "Microsoft Edge";v="124", "Not-A.Brand";v="99"`, chrome124HeaderOrder),
		edgeProfile("edge_124_win10", "win10",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
			`"Chromium";v="124", "Microsoft Edge";v="124", "Not-A.Brand";v="99"`, chrome124HeaderOrder),
	}

	// Android Chrome shares the desktop hello; only the UA and hints differ.
	android120 := chromeProfile("chrome_android_120", "android", "chrome120_android",
		"Mozilla/5.0 (Linux; Android 14; SM-S918B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.144 Mobile Safari/537.36",
		secChUA120, `"Android"`, chromeHeaderOrder)
	android120.SecChUAMobile = "?1"
	android124 := chromeProfile("chrome_android_124", "android", "chrome124_android",
		"Mozilla/5.0 (Linux; Android 14; SM-S918B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.6367.82 Mobile Safari/537.36",
		secChUA124, `"Android"`, chromeHeaderOrder)
	android124.SecChUAMobile = "?1"

	return append(out, android120, android124)
}

// buildAliases maps the short and historical names accepted by Lookup onto
// canonical catalog entries.
func buildAliases() map[string]string {
	return map[string]string{
		"chrome_120":          "chrome_120_win11",
		"chrome_124":          "chrome_124_win11",
		"firefox_120":         "firefox_120_win11",
		"mobile_safari_17":    "safari_ios17",
		"ios_safari_17":       "safari_ios17",
		"chrome_latest":       "chrome_125_win11",
		"chrome_latest_win10": "chrome_125_win10",
		"chrome_latest_macos": "chrome_125_macos",
		"chrome_latest_linux": "chrome_125_linux",
		"firefox_latest":      "firefox_124_win11",
		"firefox_latest_linux": "firefox_124_linux",
		"safari_latest":       "safari_ios17",
		"edge_latest":         "edge_124_win11",
		"mobile_safari":       "safari_ios17",
		"mobile_chrome":       "chrome_android_124",
	}
}
