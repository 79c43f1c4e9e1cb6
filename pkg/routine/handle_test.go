package routine

import (
	"errors"
	"testing"
)

func TestNewHandleValidation(t *testing.T) {
	t.Parallel()
	rn := NewRunner()
	r := New(func(yield func(Item) bool) {})

	if _, err := NewHandle(nil, r); !errors.Is(err, ErrNilRunner) {
		t.Fatalf("err = %v, want ErrNilRunner", err)
	}
	if _, err := NewHandle(rn, nil); !errors.Is(err, ErrNilRoutine) {
		t.Fatalf("err = %v, want ErrNilRoutine", err)
	}
	h, err := NewHandle(rn, r)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	if h.Running() {
		t.Fatal("handle for an unscheduled routine should report not-running")
	}
}

func TestZeroHandleIsInert(t *testing.T) {
	t.Parallel()
	var h Handle
	if h.Running() {
		t.Fatal("zero handle should not report running")
	}
	if h.Stop() {
		t.Fatal("zero handle Stop should report false")
	}
}

func TestHandleDelegates(t *testing.T) {
	t.Parallel()
	rn := NewRunner()
	var log []string
	h := rn.Schedule(steps(&log, "a", 3, 1.0), 0)

	if !h.Running() {
		t.Fatal("handle should report running for an active routine")
	}
	if !h.Stop() {
		t.Fatal("handle Stop should report true for an active routine")
	}
	if h.Stop() {
		t.Fatal("second handle Stop should report false")
	}
	if h.Running() {
		t.Fatal("handle should report not-running after Stop")
	}
}

func TestHandleWaitSequencesIndependentRoutines(t *testing.T) {
	t.Parallel()
	rn := NewRunner()
	var log []string
	target := rn.Schedule(steps(&log, "t", 2, 1.0), 0)

	follower := New(func(yield func(Item) bool) {
		if !yield(Run(target.Wait())) {
			return
		}
		log = append(log, "after")
	})
	rn.Schedule(follower, 0)

	// Target takes 3 ticks to drain (two steps plus exhaustion); "after"
	// must not appear before then.
	for i := 0; i < 2; i++ {
		rn.Advance(1.0)
		for _, l := range log {
			if l == "after" {
				t.Fatalf("follower ran before target finished: %v", log)
			}
		}
	}
	rn.Advance(1.0)
	want := []string{"t", "t", "after"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
	if rn.Count() != 0 {
		t.Fatalf("Count = %d, want 0 once both routines drained", rn.Count())
	}
}

func TestHandleWaitCompletesWhenTargetStopped(t *testing.T) {
	t.Parallel()
	rn := NewRunner()
	var log []string
	target := rn.Schedule(steps(&log, "t", 100, 1.0), 0)

	follower := New(func(yield func(Item) bool) {
		if !yield(Run(target.Wait())) {
			return
		}
		log = append(log, "after")
	})
	rn.Schedule(follower, 0)

	rn.Advance(1.0)
	target.Stop()
	rn.Advance(1.0)

	found := false
	for _, l := range log {
		if l == "after" {
			found = true
		}
	}
	if !found {
		t.Fatalf("follower did not resume after target was stopped: %v", log)
	}
}
