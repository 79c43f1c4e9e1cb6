package script

import (
	"testing"

	"tickrun/pkg/logx"
	"tickrun/pkg/routine"
)

func drain(t *testing.T, rn *routine.Runner, dt float64, maxTicks int) int {
	t.Helper()
	ticks := 0
	for rn.Count() > 0 {
		if ticks >= maxTicks {
			t.Fatalf("runner did not drain within %d ticks", maxTicks)
		}
		rn.Advance(dt)
		ticks++
	}
	return ticks
}

func TestStepsRunsAllSteps(t *testing.T) {
	t.Parallel()
	rn := routine.NewRunner()
	var got []int
	rn.Schedule(Steps(3, 1.0, func(i int) { got = append(got, i) }), 0)

	drain(t, rn, 1.0, 10)
	if len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Fatalf("steps = %v, want [0 1 2]", got)
	}
}

func TestSequenceOrdersChildren(t *testing.T) {
	t.Parallel()
	rn := routine.NewRunner()
	var log []string
	mark := func(label string) *routine.Routine {
		return Steps(2, 1.0, func(int) { log = append(log, label) })
	}
	rn.Schedule(Sequence(mark("a"), mark("b"), mark("c")), 0)

	drain(t, rn, 1.0, 20)
	want := []string{"a", "a", "b", "b", "c", "c"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
}

func TestRepeatBuildsFreshChildren(t *testing.T) {
	t.Parallel()
	rn := routine.NewRunner()
	builds := 0
	runs := 0
	rn.Schedule(Repeat(3, func() *routine.Routine {
		builds++
		return Steps(1, 1.0, func(int) { runs++ })
	}), 0)

	drain(t, rn, 1.0, 20)
	if builds != 3 || runs != 3 {
		t.Fatalf("builds = %d, runs = %d, want 3 each", builds, runs)
	}
}

func TestAfterWaitsForHandle(t *testing.T) {
	t.Parallel()
	rn := routine.NewRunner()
	var log []string
	target := rn.Schedule(Steps(2, 1.0, func(int) { log = append(log, "t") }), 0)
	rn.Schedule(After(target, Steps(1, 1.0, func(int) { log = append(log, "after") })), 0)

	drain(t, rn, 1.0, 20)
	if log[len(log)-1] != "after" {
		t.Fatalf("log = %v, want trailing %q", log, "after")
	}
	for _, l := range log[:len(log)-1] {
		if l == "after" {
			t.Fatalf("follower ran before target drained: %v", log)
		}
	}
}

func TestRegistryScripts(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"steps", "pulse", "patrol"} {
		b, ok := Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%q) missing", name)
		}
		rn := routine.NewRunner()
		rn.Schedule(b(Params{Name: name, Steps: 2, StepSeconds: 1.0, Log: logx.Nop()}), 0)
		drain(t, rn, 1.0, 50)
	}
	if _, ok := Lookup("missing"); ok {
		t.Fatal("Lookup should miss unknown scripts")
	}
}
