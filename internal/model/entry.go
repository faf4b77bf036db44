package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is the canonical wire format for instants: RFC3339 with
// millisecond precision, always UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrNotObject rejects append payloads that are not JSON objects.
var ErrNotObject = errors.New("log payload must be an object")

// LogEntry is a single stored log record. Entries are immutable once
// stored; Sequence and Timestamp are server-assigned at append time.
type LogEntry struct {
	ID        string `json:"id"`
	Sequence  uint32 `json:"sequence"`
	Timestamp string `json:"timestamp"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	ClientID  string `json:"clientId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Incoming is a producer-supplied entry before sequencing and
// normalization. Zero-value fields mean "absent".
type Incoming struct {
	ID        string
	Timestamp string
	Level     string
	Message   string
	ClientID  string
	SessionID string
	Data      any
	Source    string
}

// DecodeIncoming parses a raw JSON payload into an Incoming, applying the
// relay's lenient coercion rules: any non-object payload is rejected,
// scalar fields are stringified, unknown levels pass through to be coerced
// at append time, and Data is normalized via NormalizeData.
func DecodeIncoming(raw []byte) (Incoming, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Incoming{}, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return Incoming{}, ErrNotObject
	}

	in := Incoming{
		ID:        coerceString(obj["id"]),
		Timestamp: coerceTimestampValue(obj["timestamp"]),
		Level:     coerceString(obj["level"]),
		Message:   coerceString(obj["message"]),
		ClientID:  coerceString(obj["clientId"]),
		SessionID: coerceString(obj["sessionId"]),
		Source:    coerceString(obj["source"]),
	}
	if data, present := obj["data"]; present && data != nil {
		in.Data = NormalizeData(data)
	}
	return in, nil
}

// NormalizeData shapes the opaque data attachment: strings become
// {"message": s}, objects and arrays pass through, any other scalar
// becomes {"value": v}.
func NormalizeData(data any) any {
	switch v := data.(type) {
	case string:
		return map[string]any{"message": v}
	case map[string]any, []any:
		return v
	default:
		return map[string]any{"value": v}
	}
}

// NormalizeTimestamp parses value as an RFC3339 instant or an epoch
// millisecond count and renders it in the canonical layout. Unparsable or
// empty input yields now; a bad clock on a producer must not produce an
// unsortable entry.
func NormalizeTimestamp(value string, now time.Time) string {
	if value != "" {
		if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
			return t.UTC().Format(TimestampLayout)
		}
		if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC().Format(TimestampLayout)
		}
	}
	return now.UTC().Format(TimestampLayout)
}

// NowISO renders now in the canonical timestamp layout.
func NowISO() string {
	return time.Now().UTC().Format(TimestampLayout)
}

// coerceString stringifies scalar JSON values; nil and composites yield "".
func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers arrive as float64; render integers without a
		// trailing ".0" so numeric client ids round-trip cleanly.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// coerceTimestampValue accepts a string or an epoch-millisecond number.
func coerceTimestampValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	default:
		return ""
	}
}
