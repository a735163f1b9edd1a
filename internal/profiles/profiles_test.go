package profiles

import (
	"strings"
	"testing"
)

func TestCatalogStructure(t *testing.T) {
	all := Names()
	if len(all) == 0 {
		t.Fatal("catalog is empty")
	}

	for _, name := range all {
		name := name
		t.Run(name, func(t *testing.T) {
			p, ok := Lookup(name)
			if !ok {
				t.Fatalf("Names() entry %q not found by Lookup", name)
			}
			if p.Name != name {
				t.Errorf("Name = %q, want %q", p.Name, name)
			}
			if p.UserAgent == "" {
				t.Error("empty UserAgent")
			}
			if p.Impersonate == "" {
				t.Error("empty Impersonate target")
			}
			if len(p.CipherIDs) == 0 {
				t.Error("empty cipher list")
			}
			if len(p.ExtensionIDs) == 0 {
				t.Error("empty extension list")
			}
			if len(p.HeaderOrder) == 0 {
				t.Error("empty header order")
			}
			if len(p.HTTP2Settings) == 0 {
				t.Error("empty HTTP/2 settings")
			}

			// Chromium-family profiles must carry client hints, others
			// must not.
			switch p.Browser {
			case "chrome", "edge":
				if p.SecChUA == "" || p.SecChUAPlatform == "" {
					t.Error("chromium profile missing sec-ch-ua hints")
				}
				if p.HeaderCase != CaseLower {
					t.Errorf("chromium profile uses %q header case", p.HeaderCase)
				}
			case "firefox", "safari":
				if p.SecChUA != "" {
					t.Error("non-chromium profile carries sec-ch-ua")
				}
				if p.HeaderCase != CaseTitle {
					t.Errorf("%s profile uses %q header case", p.Browser, p.HeaderCase)
				}
			default:
				t.Errorf("unexpected browser family %q", p.Browser)
			}
		})
	}
}

func TestJA3Format(t *testing.T) {
	p := Default()
	ja3 := p.JA3()

	parts := strings.Split(ja3, ",")
	if len(parts) != 5 {
		t.Fatalf("JA3 has %d comma fields, want 5: %s", len(parts), ja3)
	}
	if parts[0] != "771" {
		t.Errorf("JA3 TLS version field = %s, want 771", parts[0])
	}
	if got := len(strings.Split(parts[1], "-")); got != len(p.CipherIDs) {
		t.Errorf("JA3 cipher field has %d ids, want %d", got, len(p.CipherIDs))
	}
	if got := len(strings.Split(parts[2], "-")); got != len(p.ExtensionIDs) {
		t.Errorf("JA3 extension field has %d ids, want %d", got, len(p.ExtensionIDs))
	}
	if parts[4] != "0" {
		t.Errorf("JA3 point formats field = %s, want 0", parts[4])
	}
}

func TestLookupAliases(t *testing.T) {
	tests := []struct {
		alias string
		want  string
	}{
		{"chrome_120", "chrome_120_win11"},
		{"chrome_latest", "chrome_125_win11"},
		{"firefox_latest", "firefox_124_win11"},
		{"mobile_safari", "safari_ios17"},
		{"mobile_chrome", "chrome_android_124"},
		{"edge_latest", "edge_124_win11"},
	}

	for _, tt := range tests {
		p, ok := Lookup(tt.alias)
		if !ok {
			t.Errorf("Lookup(%q) not found", tt.alias)
			continue
		}
		if p.Name != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.alias, p.Name, tt.want)
		}
	}

	if _, ok := Lookup("netscape_4"); ok {
		t.Error("Lookup accepted an unknown name")
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	a, _ := Lookup(DefaultName)
	b, _ := Lookup(DefaultName)

	a.ExtensionIDs[0] = 9999
	a.HeaderOrder[0] = "x-mutated"

	if b.ExtensionIDs[0] == 9999 {
		t.Error("mutating a lookup result leaked into the catalog")
	}
	if b.HeaderOrder[0] == "x-mutated" {
		t.Error("mutating header order leaked into the catalog")
	}
}

func TestRandomOfFilters(t *testing.T) {
	for i := 0; i < 20; i++ {
		p := RandomOf("firefox", "")
		if p.Browser != "firefox" {
			t.Fatalf("RandomOf(firefox) returned %s profile %s", p.Browser, p.Name)
		}
	}
	for i := 0; i < 20; i++ {
		p := RandomOf("chrome", "macos")
		if p.Browser != "chrome" || p.OS != "macos" {
			t.Fatalf("RandomOf(chrome, macos) returned %s/%s", p.Browser, p.OS)
		}
	}

	// Impossible filter falls back to the default instead of failing.
	p := RandomOf("safari", "win11")
	if p.Name != DefaultName {
		t.Errorf("impossible filter returned %s, want default %s", p.Name, DefaultName)
	}
}

func TestRandomExcluding(t *testing.T) {
	for i := 0; i < 30; i++ {
		p := RandomExcluding(DefaultName)
		if p.Name == DefaultName {
			t.Fatalf("RandomExcluding returned the excluded profile on try %d", i)
		}
	}
}

func TestByBrowserAndByOS(t *testing.T) {
	chrome := ByBrowser("chrome")
	if len(chrome) == 0 {
		t.Fatal("no chrome profiles")
	}
	for _, n := range chrome {
		p, _ := Lookup(n)
		if p.Browser != "chrome" {
			t.Errorf("ByBrowser(chrome) included %s (%s)", n, p.Browser)
		}
	}

	ios := ByOS("ios")
	if len(ios) == 0 {
		t.Fatal("no ios profiles")
	}
	for _, n := range ios {
		p, _ := Lookup(n)
		if p.OS != "ios" {
			t.Errorf("ByOS(ios) included %s (%s)", n, p.OS)
		}
	}

	if got := ByBrowser("lynx"); len(got) != 0 {
		t.Errorf("ByBrowser(lynx) = %v, want empty", got)
	}
}

func BenchmarkLookup(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, ok := Lookup(DefaultName); !ok {
			b.Fatal("default profile missing")
		}
	}
}
