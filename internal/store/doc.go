// Package store provides the LogStore, the single mutation funnel over
// the ring buffer, session manager, and broadcaster. Every append, clear,
// and session transition flows through one exclusive lock so sequence
// assignment and session bookkeeping can never interleave, and events are
// emitted in exactly the order mutations were applied.
package store
