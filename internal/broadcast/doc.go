// Package broadcast is a synchronous in-process event bus. Handlers for an
// event run in registration order on the emitting goroutine; each dispatch
// runs inside its own recover boundary so one failing subscriber can never
// prevent delivery to the others or destabilize the emitter.
package broadcast
