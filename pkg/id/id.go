package id

import (
	"crypto/rand"
	"strconv"
	"time"
)

// randomBytes is the number of random bytes appended to each identifier.
// 4 bytes (8 hex digits) keeps collisions within the same millisecond
// vanishingly unlikely for a single process.
const randomBytes = 4

// NowMs returns current time in milliseconds since the Unix epoch.
// Overridable in tests.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// New returns a fresh identifier with the given prefix. An empty prefix
// defaults to "id".
func New(prefix string) string {
	if prefix == "" {
		prefix = "id"
	}
	var rnd [randomBytes]byte
	_, _ = rand.Read(rnd[:])
	return prefix + "-" + strconv.FormatInt(NowMs(), 16) + "-" + fmtHex(rnd[:])
}

// fmtHex is a small, allocation-lean hex encoder for fixed-size suffixes.
func fmtHex(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexdigits[v>>4]
		out[i*2+1] = hexdigits[v&0x0f]
	}
	return string(out)
}
