// Package host runs the fixed-step tick loop that drives a routine.Runner.
//
// The loop is the single goroutine allowed to touch the runner. Each tick it
// drains the trigger inbox, schedules the requested routines, advances the
// runner by the configured dt, and journals every run that ended since the
// previous tick. Tick is exposed separately from Run so tests can drive the
// loop without wall-clock time.
package host

import (
	"context"
	"time"

	"tickrun/internal/config"
	"tickrun/internal/eventbus"
	"tickrun/internal/journal"
	"tickrun/internal/services/trigger"
	"tickrun/pkg/logx"
	"tickrun/pkg/routine"
)

// entry tracks one scheduled routine from Schedule until it is journaled.
type entry struct {
	h           routine.Handle
	name        string
	trig        string
	scheduledAt time.Time
	startTick   uint64
	outcome     string
}

// Loop owns the runner and the per-tick bookkeeping.
type Loop struct {
	cfg   config.LoopConfig
	rn    *routine.Runner
	trig  *trigger.Service
	store journal.Store
	bus   eventbus.Bus
	log   logx.Logger

	tick    uint64
	entries []*entry
}

// New builds a loop. trig may be nil when no wall-clock triggers are wired;
// store may be journal.Disabled().
func New(cfg config.LoopConfig, trig *trigger.Service, store journal.Store, bus eventbus.Bus, log logx.Logger) *Loop {
	if store == nil {
		store = journal.Disabled()
	}
	if bus == nil {
		bus = eventbus.New()
	}
	return &Loop{
		cfg:   cfg,
		rn:    routine.NewRunner(),
		trig:  trig,
		store: store,
		bus:   bus,
		log:   log,
	}
}

// Ticks reports the number of completed ticks.
func (l *Loop) Ticks() uint64 { return l.tick }

// Active reports the number of routines currently scheduled.
func (l *Loop) Active() int { return l.rn.Count() }

// Schedule registers a routine under a display name and tracks it for the
// journal. The trigger label is empty for programmatic schedules.
func (l *Loop) Schedule(name string, r *routine.Routine, delay float64) routine.Handle {
	return l.schedule(name, "", r, delay)
}

func (l *Loop) schedule(name, trig string, r *routine.Routine, delay float64) routine.Handle {
	h := l.rn.Schedule(r, delay)
	l.entries = append(l.entries, &entry{
		h:           h,
		name:        name,
		trig:        trig,
		scheduledAt: time.Now(),
		startTick:   l.tick,
		outcome:     journal.OutcomeFinished,
	})
	l.bus.Publish(eventbus.Event{
		Type: eventbus.TypeScheduled,
		Data: eventbus.RoutineEvent{Name: name, Trigger: trig},
	})
	l.log.Debug("routine scheduled",
		logx.String("name", name), logx.String("trigger", trig), logx.Float64("delay", delay))
	return h
}

// Stop stops a tracked routine and marks its journal outcome as stopped.
// Untracked handles are stopped all the same.
func (l *Loop) Stop(h routine.Handle) bool {
	for _, e := range l.entries {
		if e.h == h {
			e.outcome = journal.OutcomeStopped
			break
		}
	}
	return h.Stop()
}

// StopAll stops every active routine. The stopped runs are journaled on the
// next Tick (or by Drain during shutdown).
func (l *Loop) StopAll() {
	for _, e := range l.entries {
		if e.h.Running() {
			e.outcome = journal.OutcomeStopped
		}
	}
	l.rn.StopAll()
}

// Tick executes one scheduler step and returns false once the loop should
// stop: the tick budget is spent or, with StopWhenIdle, nothing is left to
// run. A panic inside a routine body is logged with the tick number and then
// re-raised; the failed slot stays registered.
func (l *Loop) Tick(ctx context.Context) bool {
	if l.trig != nil {
		for _, req := range l.trig.Drain() {
			l.schedule(req.Name, req.Trigger, req.Build(), req.Delay)
		}
	}

	l.advance()
	l.tick++

	if l.cfg.TickLogEvery > 0 && l.tick%l.cfg.TickLogEvery == 0 {
		l.bus.Publish(eventbus.Event{
			Type: eventbus.TypeTick,
			Data: eventbus.TickEvent{Tick: l.tick, Active: l.rn.Count()},
		})
		l.log.Debug("tick", logx.Uint64("tick", l.tick), logx.Int("active", l.rn.Count()))
	}

	l.reap(ctx)

	if l.cfg.MaxTicks > 0 && l.tick >= l.cfg.MaxTicks {
		l.log.Info("tick budget spent", logx.Uint64("ticks", l.tick))
		return false
	}
	if l.cfg.StopWhenIdle && l.rn.Count() == 0 && (l.trig == nil || l.trig.Len() == 0) {
		l.log.Info("loop idle", logx.Uint64("ticks", l.tick))
		return false
	}
	return true
}

func (l *Loop) advance() {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("routine panicked", logx.Uint64("tick", l.tick), logx.Any("panic", r))
			panic(r)
		}
	}()
	l.rn.Advance(l.cfg.Dt())
}

// reap journals every tracked routine that stopped running since the last
// tick and drops it from the entry list.
func (l *Loop) reap(ctx context.Context) {
	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.h.Running() {
			kept = append(kept, e)
			continue
		}
		l.finish(ctx, e)
	}
	l.entries = kept
}

func (l *Loop) finish(ctx context.Context, e *entry) {
	rec := journal.Entry{
		Name:        e.name,
		Trigger:     e.trig,
		ScheduledAt: e.scheduledAt,
		FinishedAt:  time.Now(),
		Ticks:       l.tick - e.startTick,
		Outcome:     e.outcome,
	}
	if err := l.store.Append(ctx, rec); err != nil {
		l.log.Warn("journal append failed", logx.String("name", e.name), logx.Err(err))
	}
	evType := eventbus.TypeFinished
	if e.outcome == journal.OutcomeStopped {
		evType = eventbus.TypeStopped
	}
	l.bus.Publish(eventbus.Event{Type: evType, Data: eventbus.RoutineEvent{Name: e.name, Trigger: e.trig, Ticks: rec.Ticks}})
	l.log.Info("routine done",
		logx.String("name", e.name), logx.String("outcome", e.outcome), logx.Uint64("ticks", rec.Ticks))
}

// Drain stops everything still active and journals it. Called once on
// shutdown, after the ticker loop has exited.
func (l *Loop) Drain(ctx context.Context) {
	l.StopAll()
	for _, e := range l.entries {
		l.finish(ctx, e)
	}
	l.entries = nil
}

// Run drives Tick on a wall-clock ticker until the context is cancelled or
// Tick signals completion. It starts and stops the trigger service around
// the loop and drains on the way out.
func (l *Loop) Run(ctx context.Context) error {
	if l.trig != nil {
		l.trig.Start()
		defer l.trig.Stop()
	}
	l.log.Info("loop started",
		logx.Float64("tick_rate", l.cfg.TickRate), logx.Float64("dt", l.cfg.Dt()))

	ticker := time.NewTicker(l.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Drain(context.Background())
			return ctx.Err()
		case <-ticker.C:
			if !l.Tick(ctx) {
				l.Drain(ctx)
				return nil
			}
		}
	}
}
