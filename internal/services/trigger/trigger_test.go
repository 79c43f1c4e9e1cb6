package trigger

import (
	"testing"

	"tickrun/internal/eventbus"
	"tickrun/pkg/logx"
	"tickrun/pkg/routine"
)

func nopBuild() *routine.Routine {
	return routine.New(func(yield func(routine.Item) bool) {})
}

func TestAddValidatesDefinition(t *testing.T) {
	t.Parallel()
	s := New(8, eventbus.New(), logx.Nop())

	cases := []struct {
		label string
		name  string
		spec  string
		delay float64
		build func() *routine.Routine
		ok    bool
	}{
		{"five field", "a", "*/5 * * * *", 0, nopBuild, true},
		{"six field", "b", "*/10 * * * * *", 0, nopBuild, true},
		{"descriptor", "c", "@hourly", 1.5, nopBuild, true},
		{"empty name", "", "@hourly", 0, nopBuild, false},
		{"bad spec", "d", "not a cron spec", 0, nopBuild, false},
		{"negative delay", "e", "@hourly", -1, nopBuild, false},
		{"nil builder", "f", "@hourly", 0, nil, false},
	}
	for _, tc := range cases {
		err := s.Add(tc.name, tc.spec, tc.delay, tc.build)
		if tc.ok && err != nil {
			t.Errorf("%s: Add: %v", tc.label, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: Add accepted invalid definition", tc.label)
		}
	}
}

func TestFireAndDrain(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	events, unsub := bus.Subscribe(8)
	defer unsub()

	s := New(8, bus, logx.Nop())
	for _, name := range []string{"first", "second"} {
		if !s.Fire(name, 0.5, nopBuild) {
			t.Fatalf("Fire(%q) dropped with room in the inbox", name)
		}
	}

	got := s.Drain()
	if len(got) != 2 || got[0].Name != "first" || got[1].Name != "second" {
		t.Fatalf("Drain = %+v, want first then second", got)
	}
	if got[0].Delay != 0.5 {
		t.Fatalf("Delay = %v, want 0.5", got[0].Delay)
	}
	if got[0].Build == nil {
		t.Fatal("drained request lost its builder")
	}
	if more := s.Drain(); more != nil {
		t.Fatalf("second Drain = %+v, want nil", more)
	}

	ev := <-events
	if ev.Type != eventbus.TypeTriggered {
		t.Fatalf("event type = %q, want %q", ev.Type, eventbus.TypeTriggered)
	}
}

func TestFireDropsWhenInboxFull(t *testing.T) {
	t.Parallel()
	s := New(1, eventbus.New(), logx.Nop())

	if !s.Fire("keep", 0, nopBuild) {
		t.Fatal("first Fire should fit")
	}
	if s.Fire("drop", 0, nopBuild) {
		t.Fatal("second Fire should be dropped, inbox is full")
	}
	if got := s.Drain(); len(got) != 1 || got[0].Name != "keep" {
		t.Fatalf("Drain = %+v, want only the kept request", got)
	}
}

func TestStartStopIdempotent(t *testing.T) {
	t.Parallel()
	s := New(8, eventbus.New(), logx.Nop())
	if err := s.Add("tick", "@every 1h", 0, nopBuild); err != nil {
		t.Fatalf("Add: %v", err)
	}

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	// Definitions survive a stop; a later Add while stopped still validates.
	if err := s.Add("late", "@every 2h", 0, nopBuild); err != nil {
		t.Fatalf("Add after Stop: %v", err)
	}
	s.Start()
	s.Stop()
}
