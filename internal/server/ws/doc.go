// Package wsserver provides the primary delivery transport: a WebSocket
// hub that sends each connected consumer a bootstrap snapshot followed by
// live append, clear, and session events, and accepts clear/session
// control messages from the consumer.
package wsserver
