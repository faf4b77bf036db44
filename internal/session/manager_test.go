package session

import (
	"testing"
)

func TestNewManagerStartsDefaultSession(t *testing.T) {
	m := NewManager()
	cur := m.CurrentSession()
	if cur.Label != DefaultLabel {
		t.Fatalf("want default label, got %q", cur.Label)
	}
	if cur.StartedAt == "" || cur.EndedAt != "" {
		t.Fatalf("unexpected lifecycle stamps: %+v", cur)
	}
}

func TestStartSessionEndsPrevious(t *testing.T) {
	m := NewManager()
	a := m.StartSession("a")
	m.RecordEntry("")
	m.RecordEntry("")

	b := m.StartSession("b")
	m.RecordEntry("")

	list := m.ListSessions()
	if len(list) != 3 {
		t.Fatalf("want 3 sessions, got %d", len(list))
	}
	aIdx, bIdx := -1, -1
	for i := range list {
		switch list[i].ID {
		case a.ID:
			aIdx = i
		case b.ID:
			bIdx = i
		}
	}
	if aIdx < 0 || bIdx < 0 {
		t.Fatalf("sessions missing from list")
	}
	if list[aIdx].EndedAt == "" {
		t.Fatalf("previous session not ended")
	}
	if list[aIdx].EntryCount != 2 {
		t.Fatalf("previous count not frozen: %d", list[aIdx].EntryCount)
	}
	if list[bIdx].EntryCount != 1 {
		t.Fatalf("current count wrong: %d", list[bIdx].EntryCount)
	}
	if m.CurrentSession().ID != b.ID {
		t.Fatalf("current session not switched")
	}
}

func TestRecordEntryUnknownSessionIsNoop(t *testing.T) {
	m := NewManager()
	before := m.CurrentSession().EntryCount
	m.RecordEntry("no-such-session")
	if got := m.CurrentSession().EntryCount; got != before {
		t.Fatalf("unknown session affected current count: %d", got)
	}
}

func TestListSessionsCreationOrder(t *testing.T) {
	m := NewManager()
	m.StartSession("one")
	m.StartSession("two")
	list := m.ListSessions()
	if len(list) != 3 {
		t.Fatalf("want 3 sessions, got %d", len(list))
	}
	if list[0].Label != DefaultLabel || list[1].Label != "one" || list[2].Label != "two" {
		t.Fatalf("creation order lost: %v", []string{list[0].Label, list[1].Label, list[2].Label})
	}
}

func TestEmptyLabelDefaults(t *testing.T) {
	m := NewManager()
	s := m.StartSession("")
	if s.Label != "session" {
		t.Fatalf("want fallback label, got %q", s.Label)
	}
}
