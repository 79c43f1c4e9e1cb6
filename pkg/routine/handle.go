package routine

import "errors"

var (
	ErrNilRunner  = errors.New("routine: handle requires a runner")
	ErrNilRoutine = errors.New("routine: handle requires a routine")
)

// Handle is a lightweight, copyable reference to one routine scheduled on a
// specific Runner. It stays valid after the routine finishes or is stopped
// (it then reports not-running) and is never reused for another routine.
type Handle struct {
	runner *Runner
	r      *Routine
}

// NewHandle builds a Handle for a routine tracked on rn. Schedule already
// returns a Handle; NewHandle exists for code that wires references on its
// own. Construction with a missing runner or routine fails immediately.
func NewHandle(rn *Runner, r *Routine) (Handle, error) {
	if rn == nil {
		return Handle{}, ErrNilRunner
	}
	if r == nil {
		return Handle{}, ErrNilRoutine
	}
	return Handle{runner: rn, r: r}, nil
}

// Running reports whether the tracked routine is still active on its runner.
func (h Handle) Running() bool {
	if h.runner == nil {
		return false
	}
	return h.runner.Running(h.r)
}

// Stop stops the tracked routine. It returns true only if the routine was
// active at the time of the call.
func (h Handle) Stop() bool {
	if h.runner == nil {
		return false
	}
	return h.runner.Stop(h.r)
}

// Wait returns a routine that yields Pass for as long as the tracked
// routine is running, then completes. It is how one routine blocks on the
// completion of another scheduled independently, as opposed to nesting it
// directly with Run.
func (h Handle) Wait() *Routine {
	return New(func(yield func(Item) bool) {
		for h.Running() {
			if !yield(Pass()) {
				return
			}
		}
	})
}
