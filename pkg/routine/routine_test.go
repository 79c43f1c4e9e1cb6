package routine

import "testing"

func TestScriptMatchesGeneratorSemantics(t *testing.T) {
	t.Parallel()
	rn := NewRunner()
	var log []string
	r := Script(func(y *Yield) {
		for i := 0; i < 3; i++ {
			log = append(log, "step")
			if y.Sleep(1.0) {
				return
			}
		}
	})
	rn.Schedule(r, 0)

	for i := 0; i < 3; i++ {
		rn.Advance(1.0)
	}
	if len(log) != 3 {
		t.Fatalf("steps = %d, want 3", len(log))
	}
	rn.Advance(1.0) // exhaustion pass
	if rn.Running(r) {
		t.Fatal("script routine should have drained")
	}
}

func TestScriptNesting(t *testing.T) {
	t.Parallel()
	rn := NewRunner()
	var log []string
	r := Script(func(y *Yield) {
		if y.Do(steps(&log, "inner", 2, 1.0)) {
			return
		}
		log = append(log, "outer")
	})
	rn.Schedule(r, 0)

	for i := 0; i < 4; i++ {
		rn.Advance(1.0)
	}
	want := []string{"inner", "inner", "outer"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
}

func TestScriptObservesStopAndUnwinds(t *testing.T) {
	t.Parallel()
	rn := NewRunner()
	cleaned := false
	stopped := false
	r := Script(func(y *Yield) {
		defer func() { cleaned = true }()
		for {
			if y.Sleep(1.0) {
				stopped = true
				return
			}
		}
	})
	h := rn.Schedule(r, 0)

	rn.Advance(1.0) // body reaches its first Sleep
	if !h.Stop() {
		t.Fatal("Stop should report true")
	}
	if !stopped {
		t.Fatal("body should observe the stop at its suspension point")
	}
	if !cleaned {
		t.Fatal("deferred cleanup should run when the routine is stopped")
	}
}

func TestPassYieldsEveryTick(t *testing.T) {
	t.Parallel()
	rn := NewRunner()
	n := 0
	r := New(func(yield func(Item) bool) {
		for i := 0; i < 3; i++ {
			n++
			if !yield(Pass()) {
				return
			}
		}
	})
	rn.Schedule(r, 0)

	rn.Advance(10.0)
	if n != 1 {
		t.Fatalf("resumes after one tick = %d, want 1 (Pass suspends until the next tick)", n)
	}
	rn.Advance(10.0)
	rn.Advance(10.0)
	if n != 3 {
		t.Fatalf("resumes = %d, want 3", n)
	}
}

func TestRunRejectsNilChild(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatal("Run(nil) should panic")
		}
	}()
	_ = Run(nil)
}

func TestReleaseIsIdempotent(t *testing.T) {
	t.Parallel()
	r := New(func(yield func(Item) bool) {
		yield(Pass())
	})
	r.release()
	r.release()
	if _, ok := r.resume(); ok {
		t.Fatal("released routine should read as exhausted")
	}
}
