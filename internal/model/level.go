package model

// Level is a canonical log severity carried on the wire as a lowercase
// string.
type Level string

// Canonical levels, in ascending severity.
const (
	LevelTrace Level = "trace"
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Levels lists the canonical levels in ascending severity order.
var Levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal}

var levelIndex = func() map[Level]int {
	m := make(map[Level]int, len(Levels))
	for i, l := range Levels {
		m[l] = i
	}
	return m
}()

// Valid reports whether l is one of the canonical levels.
func (l Level) Valid() bool {
	_, ok := levelIndex[l]
	return ok
}

// Index returns the severity index of l, or -1 for unknown levels.
func (l Level) Index() int {
	if i, ok := levelIndex[l]; ok {
		return i
	}
	return -1
}

// CoerceLevel maps unrecognized level names to info so a misbehaving
// producer can never smuggle an out-of-enum level into the buffer.
func CoerceLevel(s string) Level {
	if l := Level(s); l.Valid() {
		return l
	}
	return LevelInfo
}
