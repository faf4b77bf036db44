package broadcast

import (
	"testing"
)

func TestEmitInvokesHandlersInRegistrationOrder(t *testing.T) {
	b := New()
	var order []int
	b.On(EventAppend, func(any) { order = append(order, 1) })
	b.On(EventAppend, func(any) { order = append(order, 2) })
	b.On(EventAppend, func(any) { order = append(order, 3) })

	b.Emit(EventAppend, nil)
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("wrong dispatch order: %v", order)
	}
}

func TestEmitOnlyMatchingEvent(t *testing.T) {
	b := New()
	var got string
	b.On(EventClear, func(any) { got = "clear" })
	b.Emit(EventAppend, nil)
	if got != "" {
		t.Fatalf("handler for other event invoked")
	}
	b.Emit(EventClear, nil)
	if got != "clear" {
		t.Fatalf("handler not invoked for its event")
	}
}

func TestPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	b := New()
	var secondPayload any
	b.On(EventAppend, func(any) { panic("subscriber bug") })
	b.On(EventAppend, func(p any) { secondPayload = p })

	b.Emit(EventAppend, "payload")
	if secondPayload != "payload" {
		t.Fatalf("second handler missed payload after first panicked")
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	b := New()
	calls := 0
	off := b.On(EventAppend, func(any) { calls++ })
	keep := 0
	b.On(EventAppend, func(any) { keep++ })

	off()
	off() // second call must be harmless
	b.Emit(EventAppend, nil)
	if calls != 0 {
		t.Fatalf("unsubscribed handler ran")
	}
	if keep != 1 {
		t.Fatalf("surviving handler should still run, got %d", keep)
	}
}

func TestUnsubscribeDuringEmit(t *testing.T) {
	b := New()
	var off func()
	ran := 0
	off = b.On(EventAppend, func(any) {
		ran++
		off() // self-unsubscribe mid-dispatch
	})
	after := 0
	b.On(EventAppend, func(any) { after++ })

	b.Emit(EventAppend, nil)
	b.Emit(EventAppend, nil)
	if ran != 1 {
		t.Fatalf("self-unsubscribed handler ran %d times", ran)
	}
	if after != 2 {
		t.Fatalf("later handler disrupted: %d", after)
	}
}
