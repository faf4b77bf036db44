package filter

import (
	"strconv"
	"time"

	"github.com/rzbill/siphon/internal/buffer"
	"github.com/rzbill/siphon/internal/model"
)

// Options describes a log query's filter conditions.
type Options struct {
	// Levels, when non-empty, requires exact set membership, not a
	// threshold comparison.
	Levels []model.Level `json:"levels,omitempty"`
	// ClientID and SessionID require exact string matches when set.
	ClientID  string `json:"clientId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	// Since accepts an epoch-millisecond count or a parseable timestamp;
	// entries pass when their timestamp is >= since.
	Since string `json:"since,omitempty"`
	// Expr is an optional CEL expression evaluated per entry.
	Expr string `json:"filter,omitempty"`
	// Limit, when > 0, caps the read when no explicit limit is given.
	Limit int `json:"limit,omitempty"`
}

// Build compiles the options into a single predicate. The only failure
// mode is a CEL expression that does not compile.
func Build(opts Options) (buffer.Filter, error) {
	var levelSet map[model.Level]struct{}
	if len(opts.Levels) > 0 {
		levelSet = make(map[model.Level]struct{}, len(opts.Levels))
		for _, l := range opts.Levels {
			levelSet[l] = struct{}{}
		}
	}
	since, hasSince := sinceMs(opts.Since)

	expr, err := newExprFilter(opts.Expr)
	if err != nil {
		return nil, err
	}

	return func(e *model.LogEntry) bool {
		if levelSet != nil {
			if _, ok := levelSet[e.Level]; !ok {
				return false
			}
		}
		if opts.ClientID != "" && e.ClientID != opts.ClientID {
			return false
		}
		if opts.SessionID != "" && e.SessionID != opts.SessionID {
			return false
		}
		if hasSince && entryMs(e.Timestamp) < since {
			return false
		}
		return expr.Eval(e)
	}, nil
}

// sinceMs normalizes a since value to epoch milliseconds. Unparsable
// input yields no constraint.
func sinceMs(value string) (int64, bool) {
	if value == "" {
		return 0, false
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return ms, true
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UnixMilli(), true
	}
	return 0, false
}

// entryMs parses a stored (already normalized) entry timestamp.
func entryMs(ts string) int64 {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
