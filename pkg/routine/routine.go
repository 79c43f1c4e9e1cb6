package routine

import "iter"

// Routine is the pull side of a lazily produced Item sequence. The runner
// resumes it one suspension point at a time and reads the latest yielded
// Item; it never looks inside the body. Identity is pointer identity: the
// same *Routine can be scheduled, queried and stopped by reference.
type Routine struct {
	next func() (Item, bool)
	stop func()

	cur    Item
	hasCur bool
	done   bool

	// resuming is true while the body is executing inside next(). A release
	// issued in that window (the body stopping itself) is recorded in
	// stopPending and performed once the body suspends; calling the
	// iterator's stop from inside its own next would park the coroutine
	// forever and skip the body's deferred cleanup.
	resuming    bool
	stopPending bool
}

// New builds a Routine from a generator-style sequence. The sequence runs
// lazily: nothing executes until the routine is first resumed.
func New(seq iter.Seq[Item]) *Routine {
	next, stop := iter.Pull(seq)
	return &Routine{next: next, stop: stop}
}

// Yield is handed to Script bodies. Each method suspends the body at the
// corresponding Item and reports whether the runner has abandoned the
// routine; on true the body should return promptly so deferred cleanup runs.
type Yield struct {
	emit func(Item) bool
}

// Sleep suspends the body for at least the given seconds of scheduler time.
func (y *Yield) Sleep(seconds float64) (stopped bool) {
	return !y.emit(Wait(seconds))
}

// Do suspends the body until child has run to completion.
func (y *Yield) Do(child *Routine) (stopped bool) {
	return !y.emit(Run(child))
}

// Pass suspends the body until the next eligible tick.
func (y *Yield) Pass() (stopped bool) {
	return !y.emit(Pass())
}

// Script builds a Routine from an imperative body. It is sugar over New for
// code that reads better as straight-line steps than as a generator.
func Script(fn func(*Yield)) *Routine {
	return New(func(yield func(Item) bool) {
		fn(&Yield{emit: yield})
	})
}

// resume pulls the next item, recording it as the routine's current
// suspension point. ok is false once the sequence is exhausted. A release
// requested by the body itself mid-resumption is honored here, after the
// body has suspended: the routine reports exhausted and the body is
// unwound so its deferred cleanup runs.
func (r *Routine) resume() (it Item, ok bool) {
	if r.done {
		return Item{}, false
	}
	r.resuming = true
	it, ok = r.next()
	r.resuming = false
	if r.stopPending {
		r.stopPending = false
		r.release()
		return Item{}, false
	}
	if !ok {
		r.done = true
		r.hasCur = false
		return Item{}, false
	}
	r.cur = it
	r.hasCur = true
	return it, true
}

// release abandons the routine: the suspended body observes a false yield
// (so it can unwind and run deferred cleanup) and the routine reads as
// exhausted from then on. Safe to call more than once. When the routine is
// currently inside its own resumption the release is deferred to resume.
func (r *Routine) release() {
	if r.done {
		return
	}
	if r.resuming {
		r.stopPending = true
		return
	}
	r.done = true
	r.hasCur = false
	if r.stop != nil {
		r.stop()
	}
}

// exhausted returns a routine with no remaining items. Used to neutralize
// slots in place when a routine is stopped mid-tick.
func exhausted() *Routine {
	return &Routine{done: true}
}
