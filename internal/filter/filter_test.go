package filter

import (
	"strconv"
	"testing"
	"time"

	"github.com/rzbill/siphon/internal/model"
)

func mustBuild(t *testing.T, opts Options) func(*model.LogEntry) bool {
	t.Helper()
	f, err := Build(opts)
	if err != nil {
		t.Fatalf("build filter: %v", err)
	}
	return f
}

func entry(level model.Level, clientID, sessionID, ts string) *model.LogEntry {
	return &model.LogEntry{Level: level, ClientID: clientID, SessionID: sessionID, Timestamp: ts}
}

func TestEmptyOptionsMatchEverything(t *testing.T) {
	f := mustBuild(t, Options{})
	if !f(entry(model.LevelTrace, "c1", "s1", "2026-01-01T00:00:00.000Z")) {
		t.Fatalf("empty filter rejected an entry")
	}
}

func TestLevelSetMembershipNotThreshold(t *testing.T) {
	f := mustBuild(t, Options{Levels: []model.Level{model.LevelError, model.LevelFatal}})
	if !f(entry(model.LevelError, "", "", "")) || !f(entry(model.LevelFatal, "", "", "")) {
		t.Fatalf("matching level rejected")
	}
	// warn is below error, but also not in the set; membership, not order.
	if f(entry(model.LevelWarn, "", "", "")) {
		t.Fatalf("non-member level passed")
	}
}

func TestClientAndSessionExactMatch(t *testing.T) {
	f := mustBuild(t, Options{ClientID: "c1", SessionID: "s1"})
	if !f(entry(model.LevelInfo, "c1", "s1", "")) {
		t.Fatalf("exact match rejected")
	}
	if f(entry(model.LevelInfo, "c2", "s1", "")) || f(entry(model.LevelInfo, "c1", "s2", "")) {
		t.Fatalf("mismatch passed")
	}
}

func TestSinceEpochMillisAndTimestamp(t *testing.T) {
	cutoff := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	before := "2026-01-31T23:59:59.000Z"
	after := "2026-02-01T00:00:01.000Z"

	byMs := mustBuild(t, Options{Since: strconv.FormatInt(cutoff.UnixMilli(), 10)})
	if byMs(entry(model.LevelInfo, "", "", before)) {
		t.Fatalf("entry before since passed (ms form)")
	}
	if !byMs(entry(model.LevelInfo, "", "", after)) {
		t.Fatalf("entry after since rejected (ms form)")
	}

	byTs := mustBuild(t, Options{Since: "2026-02-01T00:00:00Z"})
	if byTs(entry(model.LevelInfo, "", "", before)) || !byTs(entry(model.LevelInfo, "", "", after)) {
		t.Fatalf("timestamp form behaved differently")
	}
}

func TestUnparsableSinceFailsOpen(t *testing.T) {
	f := mustBuild(t, Options{Since: "last tuesday"})
	if !f(entry(model.LevelInfo, "", "", "2026-01-01T00:00:00.000Z")) {
		t.Fatalf("malformed since must not hide logs")
	}
}

func TestConditionsAndTogether(t *testing.T) {
	f := mustBuild(t, Options{Levels: []model.Level{model.LevelWarn}, ClientID: "c1"})
	if !f(entry(model.LevelWarn, "c1", "", "")) {
		t.Fatalf("conjunction rejected a full match")
	}
	if f(entry(model.LevelWarn, "c2", "", "")) || f(entry(model.LevelInfo, "c1", "", "")) {
		t.Fatalf("partial match passed")
	}
}
