// Package script provides reusable routine builders: step sequences,
// ordered composition and handle-based sequencing, plus a small registry so
// config-driven triggers can refer to scripts by name.
package script

import (
	"tickrun/pkg/logx"
	"tickrun/pkg/routine"
)

// Steps returns a routine performing n steps, calling fn with the step
// index and sleeping secs of scheduler time after each step.
func Steps(n int, secs float64, fn func(i int)) *routine.Routine {
	return routine.New(func(yield func(routine.Item) bool) {
		for i := 0; i < n; i++ {
			if fn != nil {
				fn(i)
			}
			if !yield(routine.Wait(secs)) {
				return
			}
		}
	})
}

// Sequence runs children to completion in order, each as a nested routine.
func Sequence(children ...*routine.Routine) *routine.Routine {
	return routine.New(func(yield func(routine.Item) bool) {
		for _, c := range children {
			if !yield(routine.Run(c)) {
				return
			}
		}
	})
}

// Repeat builds and drains a fresh child n times in a row. The builder is
// called lazily so each iteration gets an unstarted routine.
func Repeat(n int, build func() *routine.Routine) *routine.Routine {
	return routine.New(func(yield func(routine.Item) bool) {
		for i := 0; i < n; i++ {
			if !yield(routine.Run(build())) {
				return
			}
		}
	})
}

// After waits for the routine tracked by h to finish, then runs then to
// completion.
func After(h routine.Handle, then *routine.Routine) *routine.Routine {
	return routine.New(func(yield func(routine.Item) bool) {
		if !yield(routine.Run(h.Wait())) {
			return
		}
		yield(routine.Run(then))
	})
}

// Params parameterize registry scripts.
type Params struct {
	Name        string
	Steps       int
	StepSeconds float64
	Log         logx.Logger
}

func (p Params) steps() int {
	if p.Steps <= 0 {
		return 1
	}
	return p.Steps
}

// Builder constructs a fresh routine for one scheduled run.
type Builder func(p Params) *routine.Routine

var registry = map[string]Builder{
	// "steps": n timed steps.
	"steps": func(p Params) *routine.Routine {
		return Steps(p.steps(), p.StepSeconds, func(i int) {
			p.Log.Debug("script step", logx.String("script", p.Name), logx.Int("step", i))
		})
	},
	// "pulse": n steps, one per tick, no delays.
	"pulse": func(p Params) *routine.Routine {
		n := p.steps()
		return routine.New(func(yield func(routine.Item) bool) {
			for i := 0; i < n; i++ {
				p.Log.Debug("script pulse", logx.String("script", p.Name), logx.Int("step", i))
				if !yield(routine.Pass()) {
					return
				}
			}
		})
	},
	// "patrol": out-and-back, two nested step children.
	"patrol": func(p Params) *routine.Routine {
		leg := func(dir string) *routine.Routine {
			return Steps(p.steps(), p.StepSeconds, func(i int) {
				p.Log.Debug("script patrol", logx.String("script", p.Name), logx.String("leg", dir), logx.Int("step", i))
			})
		}
		return Sequence(leg("out"), leg("back"))
	},
}

// Lookup resolves a registry script by name.
func Lookup(name string) (Builder, bool) {
	b, ok := registry[name]
	return b, ok
}

// Names lists the registered script names; handy for config error messages.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}
