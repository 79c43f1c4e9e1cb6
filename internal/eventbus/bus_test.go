package eventbus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	t.Parallel()
	b := New()
	ch, unsub := b.Subscribe(4)
	defer unsub()

	b.Publish(Event{Type: TypeScheduled, Data: RoutineEvent{Name: "patrol", Trigger: "nightly"}})

	select {
	case e := <-ch:
		if e.Type != TypeScheduled {
			t.Fatalf("Type = %q, want %q", e.Type, TypeScheduled)
		}
		if e.Time.IsZero() {
			t.Fatal("Publish should stamp a zero Time")
		}
		p, ok := e.Data.(RoutineEvent)
		if !ok || p.Name != "patrol" || p.Trigger != "nightly" {
			t.Fatalf("Data = %#v, want the routine payload", e.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()
	b := New()
	ch, unsub := b.Subscribe(1)
	defer unsub()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			b.Publish(Event{Type: TypeTick})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	if n := len(ch); n > 1 {
		t.Fatalf("buffered events = %d, want <= 1", n)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()
	b := New()
	_, unsub := b.Subscribe(1)
	unsub()
	unsub() // must not panic
	b.Publish(Event{Type: TypeFinished})
}
