package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// capture redirects stdout for the duration of fn and returns what was
// written. Output is environment-dependent (colors), so tests only assert
// on substrings.
func capture(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestLevelsCarryTag(t *testing.T) {
	out := capture(t, func() {
		Info("Intel", "generated")
		Success("Intel", "purchased")
		Warn("Intel", "no unlocked commodities")
		Error("DB", "save failed")
	})
	for _, want := range []string{"Intel", "DB", "generated", "save failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestBanner(t *testing.T) {
	out := capture(t, func() {
		Banner("v1.0.0")
		Banner("")
	})
	if !strings.Contains(out, "v1.0.0") {
		t.Errorf("banner missing version: %q", out)
	}
}

func TestSectionStatsServer(t *testing.T) {
	out := capture(t, func() {
		Section("World")
		Stats("Credits", int64(10000))
		Server("127.0.0.1:13380")
	})
	for _, want := range []string{"World", "Credits", "10000", "127.0.0.1:13380"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
