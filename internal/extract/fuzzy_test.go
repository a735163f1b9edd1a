package extract

import (
	"reflect"
	"testing"
)

func TestFuzzyJSONStrict(t *testing.T) {
	v, err := FuzzyJSON(`{"ok": true, "n": 3}`)
	if err != nil {
		t.Fatalf("FuzzyJSON: %v", err)
	}
	m := v.(map[string]any)
	if m["ok"] != true || m["n"] != float64(3) {
		t.Errorf("got %v", m)
	}
}

func TestFuzzyJSONJSONP(t *testing.T) {
	v, err := FuzzyJSON(`jQuery12345_cb({"status": "done"});`)
	if err != nil {
		t.Fatalf("FuzzyJSON: %v", err)
	}
	if v.(map[string]any)["status"] != "done" {
		t.Errorf("got %v", v)
	}
}

func TestFuzzyJSONTrailingComma(t *testing.T) {
	v, err := FuzzyJSON(`{"a": 1, "b": [1, 2,],}`)
	if err != nil {
		t.Fatalf("FuzzyJSON: %v", err)
	}
	m := v.(map[string]any)
	if len(m["b"].([]any)) != 2 {
		t.Errorf("got %v", m)
	}
}

func TestFuzzyJSONHopeless(t *testing.T) {
	if _, err := FuzzyJSON(`<html>not json</html>`); err == nil {
		t.Error("expected error for non-JSON body")
	}
}

func TestAssets(t *testing.T) {
	page := `
<link rel="stylesheet" href="/css/site.css">
<script src="/js/app.js"></script>
<script>inline()</script>
<img src="/img/logo.png" alt="">
<img src="/img/logo.png">
`
	got := Assets(page)
	want := []string{"/css/site.css", "/js/app.js", "/img/logo.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Assets = %v, want %v", got, want)
	}
}
