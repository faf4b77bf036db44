package id

import (
	"strings"
	"testing"
)

func TestNewCarriesPrefix(t *testing.T) {
	got := New("session")
	if !strings.HasPrefix(got, "session-") {
		t.Fatalf("expected session- prefix, got %q", got)
	}
	if got2 := New(""); !strings.HasPrefix(got2, "id-") {
		t.Fatalf("expected default prefix, got %q", got2)
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		v := New("log")
		if seen[v] {
			t.Fatalf("duplicate id %q", v)
		}
		seen[v] = true
	}
}

func TestNewEmbedsTimestamp(t *testing.T) {
	old := NowMs
	defer func() { NowMs = old }()
	NowMs = func() int64 { return 0x1234 }
	got := New("x")
	parts := strings.Split(got, "-")
	if len(parts) != 3 {
		t.Fatalf("unexpected shape %q", got)
	}
	if parts[1] != "1234" {
		t.Fatalf("want hex timestamp 1234, got %q", parts[1])
	}
}
