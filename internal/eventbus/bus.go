// Package eventbus carries the scheduler's lifecycle signals between the
// tick loop, the trigger service and any observer (tests, future surfaces).
package eventbus

import (
	"sync"
	"time"
)

// Event types published by the host loop and trigger service.
const (
	TypeScheduled = "routine.scheduled"
	TypeFinished  = "routine.finished"
	TypeStopped   = "routine.stopped"
	TypeTriggered = "trigger.fired"
	TypeTick      = "loop.tick"
)

// RoutineEvent is the payload for TypeScheduled, TypeFinished and
// TypeStopped. Ticks is zero until the run ends.
type RoutineEvent struct {
	Name    string
	Trigger string
	Ticks   uint64
}

// TriggerEvent is the payload for TypeTriggered.
type TriggerEvent struct {
	Trigger string
}

// TickEvent is the payload for TypeTick (sampled, see the loop config).
type TickEvent struct {
	Tick   uint64
	Active int
}

// Event is one lifecycle signal. Data holds the typed payload matching Type.
//
// Contract:
//   - Publish never blocks.
//   - Slow subscribers drop events (bounded backpressure).
type Event struct {
	Type string
	Time time.Time
	Data any
}

type Bus interface {
	Publish(e Event)
	Subscribe(buffer int) (ch <-chan Event, unsubscribe func())
}

// New returns an in-memory fanout bus. It owns no background goroutines.
func New() Bus {
	return &memBus{}
}

type subscriber struct {
	ch chan Event
}

type memBus struct {
	// mu orders sends against channel close: Publish sends under the read
	// lock, unsubscribe closes under the write lock, so a send can never hit
	// a closed channel.
	mu   sync.RWMutex
	subs []*subscriber
}

func (b *memBus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		select {
		case sub.ch <- e:
		default:
			// Full buffer; the subscriber misses this event.
		}
	}
}

func (b *memBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	sub := &subscriber{ch: make(chan Event, buffer)}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s == sub {
					last := len(b.subs) - 1
					b.subs[i] = b.subs[last]
					b.subs[last] = nil
					b.subs = b.subs[:last]
					break
				}
			}
			close(sub.ch)
		})
	}
	return sub.ch, unsub
}
