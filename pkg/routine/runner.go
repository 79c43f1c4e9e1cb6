package routine

// slot is one active top-level registration: the routine plus its pending
// delay in seconds. Slots are heap-allocated so the delay cell stays
// addressable even while a routine body grows the registry during its own
// resumption.
type slot struct {
	r     *Routine
	delay float64
}

// Runner owns the set of currently active top-level routines. It is
// confined to a single goroutine; see the package documentation for the
// reentrancy rules.
type Runner struct {
	slots []*slot

	// gen is bumped by StopAll so Advance can tell that the registry was
	// cleared out from under it mid-resumption.
	gen uint64
}

func NewRunner() *Runner {
	return &Runner{}
}

// Schedule registers r with an initial pending delay in seconds and returns
// a Handle for it. It never fails for a well-formed routine. Routines
// scheduled from inside a resumption first run on the following tick.
func (rn *Runner) Schedule(r *Routine, delay float64) Handle {
	rn.slots = append(rn.slots, &slot{r: r, delay: delay})
	return Handle{runner: rn, r: r}
}

// Stop neutralizes the slot holding r and reports whether r was active.
// The slot is emptied in place rather than removed, so stopping is safe
// from inside a resumption, including a routine stopping itself; the empty
// slot is pruned on the next Advance. The stopped routine's body observes
// the stop and can unwind; for a self-stop that happens as soon as the body
// next suspends.
func (rn *Runner) Stop(r *Routine) bool {
	if r == nil {
		return false
	}
	for _, s := range rn.slots {
		if s.r == r {
			r.release()
			s.r = exhausted()
			s.delay = 0
			return true
		}
	}
	return false
}

// StopAll releases and clears every slot immediately. Outstanding Handles
// report not-running afterwards. Safe from inside a resumption: the calling
// routine's own release is finished once its body suspends.
func (rn *Runner) StopAll() {
	for _, s := range rn.slots {
		s.r.release()
	}
	rn.slots = nil
	rn.gen++
}

// Running reports whether an active slot currently references r.
func (rn *Runner) Running(r *Routine) bool {
	if r == nil {
		return false
	}
	for _, s := range rn.slots {
		if s.r == r {
			return true
		}
	}
	return false
}

// Count returns the number of active slots.
func (rn *Runner) Count() int {
	return len(rn.slots)
}

// Advance is the sole scheduling point. The host calls it once per tick
// with the elapsed scheduler time in seconds (non-negative). It returns
// false only when there were zero active slots on entry.
//
// Slots are visited in registration order. A pending delay is decremented
// first and must reach <= 0 before the slot resumes; a dt larger than the
// remaining delay resumes the slot on the same call. Slots whose routine
// exhausts are removed without skipping the successor that shifts into
// their index. Slots appended during the call are not visited until the
// next tick.
func (rn *Runner) Advance(dt float64) bool {
	n := len(rn.slots)
	if n == 0 {
		return false
	}
	gen := rn.gen
	for i := 0; i < n; {
		s := rn.slots[i]
		if s.delay > 0 {
			s.delay -= dt
			if s.delay > 0 {
				i++
				continue
			}
		}
		active := step(s.r, &s.delay)
		if rn.gen != gen {
			// StopAll ran inside the resumption: every slot present at entry
			// is gone, and anything scheduled since waits for the next tick.
			break
		}
		if active {
			i++
			continue
		}
		rn.slots = append(rn.slots[:i], rn.slots[i+1:]...)
		n--
	}
	return true
}

// step drives r forward by at most one effective resumption, recursing
// through nested children. Any Wait yielded along the chain lands in the
// top-level slot's delay cell. It returns false once r is exhausted.
//
// When a child drains, the parent is resumed in the same call; a Wait the
// parent then yields is stored but not counted down until the next tick.
// A freshly yielded child likewise gets its first resumption immediately.
func step(r *Routine, delay *float64) bool {
	if r.hasCur && r.cur.kind == kindChild {
		if step(r.cur.child, delay) {
			// Child still running; the parent does not advance this tick.
			return true
		}
		*delay = 0
	}
	it, ok := r.resume()
	if !ok {
		return false
	}
	switch it.kind {
	case kindWait:
		*delay = it.seconds
	case kindChild:
		return step(r, delay)
	}
	return true
}
