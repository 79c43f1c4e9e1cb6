// Package routine is a cooperative, single-goroutine scheduler for routines:
// units of work expressed as a lazy sequence of suspension points.
//
// # Overview
//
// A routine yields one Item at each suspension point: Wait(seconds) to sleep
// in scheduler time, Run(child) to hand control to a nested routine until it
// drains, or Pass() to resume at the next eligible tick. The host owns the
// clock and drives everything through Runner.Advance(dt), which attempts at
// most one effective resumption per scheduled routine per call.
//
// # Authoring modes
//
// Routines can be written generator style with New and an iter.Seq:
//
//	r := routine.New(func(yield func(routine.Item) bool) {
//		for i := 0; i < 3; i++ {
//			if !yield(routine.Wait(1.0)) {
//				return
//			}
//		}
//	})
//
// or imperative style with Script, where each Yield method suspends the body
// and reports whether the runner abandoned it:
//
//	r := routine.Script(func(y *routine.Yield) {
//		for i := 0; i < 3; i++ {
//			if y.Sleep(1.0) {
//				return
//			}
//		}
//	})
//
// Both modes share the same core; they differ only in construction.
//
// # Nesting and sequencing
//
// Yielding Run(child) suspends the parent until the child has fully drained,
// honoring the child's own delays tick by tick. A routine scheduled
// independently is awaited through its Handle: Handle.Wait returns a routine
// that completes once the tracked routine is no longer running.
//
// # Concurrency
//
// A Runner is confined to a single goroutine. Advance is not reentrant: a
// routine body may call Schedule, Stop or StopAll on its own runner while
// being resumed, but must not call Advance. Panics raised by routine bodies
// propagate out of Advance untouched.
package routine
