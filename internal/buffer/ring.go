package buffer

import (
	"strconv"
	"sync"
	"time"

	"github.com/rzbill/siphon/internal/model"
)

// Filter decides whether a stored entry is visible to a read.
type Filter func(*model.LogEntry) bool

// Stats is a read-only snapshot of the buffer's counters.
type Stats struct {
	Size     int    `json:"size"`
	Count    int    `json:"count"`
	Dropped  uint64 `json:"dropped"`
	Sequence uint32 `json:"sequence"`
}

// ReadResult carries a page of entries plus the cursor to resume from.
type ReadResult struct {
	Entries    []model.LogEntry `json:"entries"`
	NextCursor uint32           `json:"nextCursor"`
}

// Ring is a fixed-capacity circular log store. All methods are safe for
// concurrent use; mutations serialize on one mutex and reads copy a
// consistent snapshot under the same lock.
type Ring struct {
	mu       sync.Mutex
	size     int
	entries  []model.LogEntry
	head     int
	count    int
	sequence uint32
	dropped  uint64
}

// New returns a Ring with the given capacity. Capacities below 1 are
// clamped to 1 rather than rejected.
func New(size int) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{size: size, entries: make([]model.LogEntry, size)}
}

// Append assigns the next sequence number, normalizes the timestamp,
// defaults the id, and stores the entry. When the buffer is full the
// logically oldest slot is overwritten and dropped is incremented. Append
// always succeeds and returns the stored, normalized entry.
func (r *Ring) Append(e model.LogEntry, now time.Time) model.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Unsigned increment: wraps at 2^32 without ever repeating a live
	// sequence (the buffer holds far fewer than 2^32 entries).
	r.sequence++
	e.Sequence = r.sequence
	e.Timestamp = model.NormalizeTimestamp(e.Timestamp, now)
	if e.ID == "" {
		e.ID = "log-" + strconv.FormatUint(uint64(e.Sequence), 10)
	}

	if r.count < r.size {
		r.entries[(r.head+r.count)%r.size] = e
		r.count++
	} else {
		r.entries[r.head] = e
		r.head = (r.head + 1) % r.size
		r.dropped++
	}
	return e
}

// Clear discards all stored entries and resets count and dropped. The
// sequence counter is intentionally preserved so cursors observed before
// the clear stay behind the next entry, never ahead of it.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make([]model.LogEntry, r.size)
	r.head = 0
	r.count = 0
	r.dropped = 0
}

// Read returns up to limit entries with sequence >= max(cursor, oldest
// retained). A cursor referencing evicted entries silently resumes from
// the oldest retained entry. Best-effort catch-up, not a strict
// continuation guarantee. NextCursor is the sequence just past the last
// entry considered, whether or not it passed the filter, so callers can
// resume without re-scanning skipped entries.
func (r *Ring) Read(cursor uint32, limit int, filter Filter) ReadResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		return ReadResult{Entries: []model.LogEntry{}, NextCursor: cursor}
	}

	startSeq := r.sequence - uint32(r.count)
	if cursor > startSeq {
		startSeq = cursor
	}

	entries := make([]model.LogEntry, 0, min(limit, r.count))
	nextCursor := r.sequence
	for i := 0; i < r.count; i++ {
		e := &r.entries[(r.head+i)%r.size]
		if e.Sequence < startSeq {
			continue
		}
		if filter == nil || filter(e) {
			entries = append(entries, *e)
			if len(entries) >= limit {
				nextCursor = e.Sequence + 1
				break
			}
		}
		nextCursor = e.Sequence + 1
	}
	return ReadResult{Entries: entries, NextCursor: nextCursor}
}

// Stats returns a snapshot of the buffer counters. No side effects.
func (r *Ring) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{Size: r.size, Count: r.count, Dropped: r.dropped, Sequence: r.sequence}
}
