package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	chameleon "github.com/chameleon-net/chameleon"
	"github.com/chameleon-net/chameleon/internal/profiles"
)

var (
	// Build-time variables set by ldflags
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"

	// Color palette inspired by charmbracelet/crush
	primaryColor   = lipgloss.Color("#FF6B9D")
	secondaryColor = lipgloss.Color("#C678DD")
	accentColor    = lipgloss.Color("#61DAFB")
	successColor   = lipgloss.Color("#98D8C8")
	errorColor     = lipgloss.Color("#E06C75")
	mutedColor     = lipgloss.Color("#6C7B7F")
)

// headerList collects repeatable -H "Name: value" flags.
type headerList []string

func (h *headerList) String() string { return strings.Join(*h, ", ") }

func (h *headerList) Set(v string) error {
	if !strings.Contains(v, ":") {
		return fmt.Errorf("header must be %q, got %q", "Name: value", v)
	}
	*h = append(*h, v)
	return nil
}

func main() {
	var headerFlags headerList

	profileName := flag.String("profile", "", "fingerprint profile name (empty uses the catalog default)")
	site := flag.String("site", "", "site preset: cloudflare, akamai")
	method := flag.String("method", "GET", "HTTP method")
	data := flag.String("data", "", "request body")
	proxyURL := flag.String("proxy", "", "proxy URL (http://, socks5://)")
	proxyPool := flag.String("proxy-pool", "", "comma-separated proxy rotation pool")
	rotate := flag.String("rotate", "", "comma-separated profile rotation list")
	onBlock := flag.String("on-block", "", "block policy: none, rotate, proxy, both")
	retries := flag.Int("retries", 0, "max retries after a detected block (0 uses the default)")
	randomize := flag.Bool("randomize", false, "apply per-request fingerprint variance")
	insecure := flag.Bool("insecure", false, "skip TLS certificate verification")
	http1 := flag.Bool("http1", false, "force HTTP/1.1")
	timeout := flag.Duration("timeout", 0, "per-attempt timeout (0 uses the default)")
	output := flag.String("output", "", "write response body to file instead of stdout")
	cookieFile := flag.String("cookies", "", "cookie jar to load before and save after (.json or .txt)")
	fingerprint := flag.Bool("fingerprint", false, "print the session fingerprint diagnostics as JSON and exit")
	listProfiles := flag.Bool("profiles", false, "list catalog profiles and exit")
	interactive := flag.Bool("interactive", false, "open the interactive profile browser")
	listenPort := flag.String("listen", "", "run a local header echo server on this port instead of sending a request")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Var(&headerFlags, "H", `request header as "Name: value" (repeatable)`)
	flag.Parse()

	if *showVersion {
		fmt.Printf("chameleon %s\n", version)
		fmt.Printf("Build time: %s\n", buildTime)
		fmt.Printf("Git commit: %s\n", gitCommit)
		fmt.Printf("Go version: %s\n", runtime.Version())
		fmt.Printf("Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		return
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "🦎 chameleon",
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	if *listProfiles {
		displayProfileList()
		return
	}

	if *interactive {
		if err := runProfileBrowser(); err != nil {
			logger.Fatal("Profile browser failed", "error", err)
		}
		return
	}

	if *listenPort != "" {
		runEchoServer(*listenPort, logger)
		return
	}

	targetURL := flag.Arg(0)
	if targetURL == "" && !*fingerprint {
		fmt.Fprintln(os.Stderr, "usage: chameleon [flags] <url>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if targetURL != "" && !strings.Contains(targetURL, "://") {
		targetURL = "https://" + targetURL
	}

	opts := chameleon.Options{
		Fingerprint:    *profileName,
		RotateProfiles: splitList(*rotate),
		Proxy:          *proxyURL,
		ProxyPool:      splitList(*proxyPool),
		MaxRetries:     *retries,
		Site:           *site,
		Randomize:      *randomize,
		Timeout:        *timeout,
		Logger:         logger,
	}
	if *onBlock != "" {
		opts.OnBlock = chameleon.OnBlockNone
		switch *onBlock {
		case "none":
		case "rotate":
			opts.OnBlock = chameleon.OnBlockRotate
		case "proxy":
			opts.OnBlock = chameleon.OnBlockProxy
		case "both":
			opts.OnBlock = chameleon.OnBlockBoth
		default:
			logger.Fatal("Unknown block policy", "policy", *onBlock)
		}
	}
	if *insecure {
		off := false
		opts.Verify = &off
	}
	if *http1 {
		off := false
		opts.HTTP2 = &off
	}

	session, err := chameleon.NewSession(opts)
	if err != nil {
		logger.Fatal("Failed to create session", "error", err)
	}
	defer session.Close()

	if *cookieFile != "" {
		if _, statErr := os.Stat(*cookieFile); statErr == nil {
			if err := session.LoadCookies(*cookieFile); err != nil {
				logger.Fatal("Failed to load cookies", "file", *cookieFile, "error", err)
			}
		}
	}

	if *fingerprint {
		out, _ := json.MarshalIndent(session.Fingerprint(), "", "  ")
		fmt.Println(string(out))
		return
	}

	reqOpts := make([]chameleon.RequestOption, 0, len(headerFlags)+1)
	if *data != "" {
		reqOpts = append(reqOpts, chameleon.WithBody(*data))
	}
	for _, h := range headerFlags {
		name, value, _ := strings.Cut(h, ":")
		reqOpts = append(reqOpts, chameleon.WithHeader(strings.TrimSpace(name), strings.TrimSpace(value)))
	}

	start := time.Now()
	resp, err := session.Request(strings.ToUpper(*method), targetURL, reqOpts...)
	if err != nil {
		logger.Fatal("Request failed", "url", targetURL, "error", err)
	}
	elapsed := time.Since(start)

	displaySummary(session, resp, elapsed)

	if *output != "" {
		if err := os.WriteFile(*output, []byte(resp.Body), 0o644); err != nil {
			logger.Fatal("Failed to write output", "file", *output, "error", err)
		}
		logger.Info("Body written", "file", *output, "bytes", len(resp.Body))
	} else if resp.Body != "" {
		fmt.Println(resp.Body)
	}

	if *cookieFile != "" {
		if err := session.SaveCookies(*cookieFile); err != nil {
			logger.Error("Failed to save cookies", "file", *cookieFile, "error", err)
		}
	}
}

// displaySummary prints a boxed overview of the response and the disguise
// that produced it to stderr, keeping stdout clean for the body.
func displaySummary(session *chameleon.Session, resp *chameleon.Response, elapsed time.Duration) {
	statusStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	if !resp.OK() {
		statusStyle = statusStyle.Foreground(errorColor)
	}

	labelStyle := lipgloss.NewStyle().Foreground(mutedColor)
	valueStyle := lipgloss.NewStyle().Foreground(accentColor)

	diag := session.Fingerprint()
	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("Status:"), statusStyle.Render(fmt.Sprintf("%d", resp.StatusCode))),
		fmt.Sprintf("%s %s", labelStyle.Render("URL:"), valueStyle.Render(resp.FinalURL)),
		fmt.Sprintf("%s %s", labelStyle.Render("Profile:"), valueStyle.Render(diag.Profile)),
		fmt.Sprintf("%s %s", labelStyle.Render("JA3:"), valueStyle.Render(diag.JA3Hash)),
		fmt.Sprintf("%s %s", labelStyle.Render("Time:"), valueStyle.Render(elapsed.Round(time.Millisecond).String())),
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))

	fmt.Fprintln(os.Stderr, box)
}

// displayProfileList prints the fingerprint catalog grouped by browser.
func displayProfileList() {
	browserStyle := lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	nameStyle := lipgloss.NewStyle().Foreground(accentColor)
	uaStyle := lipgloss.NewStyle().Foreground(mutedColor)

	byBrowser := map[string][]profiles.Profile{}
	var order []string
	for _, name := range profiles.Names() {
		p, _ := profiles.Lookup(name)
		if _, seen := byBrowser[p.Browser]; !seen {
			order = append(order, p.Browser)
		}
		byBrowser[p.Browser] = append(byBrowser[p.Browser], p)
	}

	for _, browser := range order {
		fmt.Println(browserStyle.Render(strings.ToUpper(browser)))
		for _, p := range byBrowser[browser] {
			fmt.Printf("  %s %s\n", nameStyle.Render(fmt.Sprintf("%-22s", p.Name)), uaStyle.Render(p.UserAgent))
		}
		fmt.Println()
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
