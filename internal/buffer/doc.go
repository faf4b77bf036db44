// Package buffer implements the relay's fixed-capacity log store: a
// circular buffer that assigns monotonically increasing sequence numbers
// at append time and evicts the oldest entry under capacity pressure.
//
// Eviction is the backpressure policy: appends never block and
// never fail; loss under sustained overflow is surfaced through the
// dropped counter rather than raised as an error. Sequence numbers survive
// Clear so cursors handed out before a clear are never reinterpreted.
package buffer
