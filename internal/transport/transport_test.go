package transport

import (
	"errors"
	"testing"
)

func TestResolveDefaultEngine(t *testing.T) {
	tr, err := Resolve(Config{})
	if err != nil {
		t.Fatalf("Resolve default: %v", err)
	}
	defer tr.Close()

	caps := tr.Capabilities()
	if !caps.TLSFingerprint || !caps.HTTP2Control || !caps.Proxy {
		t.Errorf("cycletls capabilities = %+v, want all true", caps)
	}
}

func TestResolveUnknownEngine(t *testing.T) {
	_, err := Resolve(Config{Engine: "netscape"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Resolve(netscape) error = %v, want ErrUnavailable", err)
	}
}

func TestResolveRequiredCapabilities(t *testing.T) {
	tr, err := Resolve(Config{
		Engine:  EngineCycleTLS,
		Require: Capabilities{TLSFingerprint: true, HTTP2Control: true, Proxy: true},
	})
	if err != nil {
		t.Fatalf("cycletls should satisfy all capabilities: %v", err)
	}
	tr.Close()
}

func TestDoAfterClose(t *testing.T) {
	tr := NewCycleTLS()
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, err := tr.Do(Request{Method: "GET", URL: "https://example.com"})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Do after Close = %v, want ErrClosed", err)
	}
	if err := tr.Reinit(); !errors.Is(err, ErrClosed) {
		t.Errorf("Reinit after Close = %v, want ErrClosed", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	tr := NewCycleTLS()
	for i := 0; i < 3; i++ {
		if err := tr.Close(); err != nil {
			t.Fatalf("Close call %d: %v", i+1, err)
		}
	}
}

func TestFreshTransportCounters(t *testing.T) {
	tr := NewCycleTLS()
	defer tr.Close()

	if got := tr.RequestCount(); got != 0 {
		t.Errorf("RequestCount = %d, want 0", got)
	}
	if tr.Age() < 0 {
		t.Error("Age went backwards")
	}
}
