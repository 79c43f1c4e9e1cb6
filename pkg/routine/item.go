package routine

// itemKind discriminates what a routine asked for at its latest suspension
// point.
type itemKind uint8

const (
	kindPass  itemKind = iota // resume at the next eligible tick
	kindWait                  // resume once the yielded delay has elapsed
	kindChild                 // resume once the nested routine has drained
)

// Item is the tagged value a routine produces at each suspension point.
// The zero Item is equivalent to Pass().
type Item struct {
	kind    itemKind
	seconds float64
	child   *Routine
}

// Wait suspends the yielding routine for at least the given number of
// seconds of scheduler time. The delay lands in the top-level slot that is
// driving the routine, so a nested child's Wait delays the whole slot.
func Wait(seconds float64) Item {
	return Item{kind: kindWait, seconds: seconds}
}

// Run suspends the yielding routine until child has run to completion.
// The child is driven by the same slot and honors its own delays.
// A nil child is an authoring error and panics immediately rather than
// being misread as a plain pass.
func Run(child *Routine) Item {
	if child == nil {
		panic("routine: Run with nil child")
	}
	return Item{kind: kindChild, child: child}
}

// Pass suspends the yielding routine until the next eligible tick.
func Pass() Item {
	return Item{}
}
