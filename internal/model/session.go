package model

// Session is a logical grouping of log entries bounded by explicit start
// and clear operations. Exactly one session is current at any time;
// starting a new one stamps EndedAt on its predecessor but never
// reassigns already-stored entries.
type Session struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	StartedAt  string `json:"startedAt"`
	EndedAt    string `json:"endedAt,omitempty"`
	EntryCount uint64 `json:"entryCount"`
}
