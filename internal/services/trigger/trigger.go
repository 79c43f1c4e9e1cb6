// Package trigger bridges wall-clock cron schedules into the tick loop.
//
// Cron callbacks run on the cron runner's own goroutine and must never touch
// the routine runner directly; instead they push a Request into a bounded
// inbox. The host drains the inbox at the top of each tick, on the loop
// goroutine, and schedules the built routines there.
package trigger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"tickrun/internal/eventbus"
	"tickrun/pkg/logx"
	"tickrun/pkg/routine"
)

// Request is one pending scheduling demand produced by a fired trigger.
type Request struct {
	Name    string // routine name, usually the script name
	Trigger string // trigger that fired
	Build   func() *routine.Routine
	Delay   float64 // initial scheduler-time delay in seconds
}

type def struct {
	name  string
	spec  string
	delay float64
	build func() *routine.Routine
}

// Service owns a cron runner and the inbox between cron time and tick time.
type Service struct {
	mu sync.Mutex

	log logx.Logger
	bus eventbus.Bus

	parser cron.Parser
	c      *cron.Cron
	defs   []def

	inbox chan Request
}

// New builds a stopped service with an inbox of the given capacity.
func New(inboxSize int, bus eventbus.Bus, log logx.Logger) *Service {
	if inboxSize <= 0 {
		inboxSize = 64
	}
	return &Service{
		log: log,
		bus: bus,
		// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
		parser: cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		inbox:  make(chan Request, inboxSize),
	}
}

// Add registers a cron-driven trigger. The spec is validated immediately so a
// bad config surfaces at startup, not at first fire. Safe to call before or
// after Start.
func (s *Service) Add(name, spec string, delay float64, build func() *routine.Routine) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("trigger: name is required")
	}
	if build == nil {
		return fmt.Errorf("trigger %q: nil builder", name)
	}
	if delay < 0 {
		return fmt.Errorf("trigger %q: negative delay", name)
	}
	if _, err := s.parser.Parse(spec); err != nil {
		return fmt.Errorf("trigger %q: bad schedule %q: %w", name, spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := def{name: name, spec: spec, delay: delay, build: build}
	s.defs = append(s.defs, d)
	if s.c != nil {
		return s.addLocked(d)
	}
	return nil
}

func (s *Service) addLocked(d def) error {
	_, err := s.c.AddFunc(d.spec, func() { s.Fire(d.name, d.delay, d.build) })
	return err
}

// Fire enqueues one run request directly, bypassing cron. Used by cron
// callbacks and by hosts that want an immediate run at startup. Returns false
// when the inbox is full and the request was dropped.
func (s *Service) Fire(name string, delay float64, build func() *routine.Routine) bool {
	req := Request{Name: name, Trigger: name, Build: build, Delay: delay}
	select {
	case s.inbox <- req:
		s.bus.Publish(eventbus.Event{
			Type: eventbus.TypeTriggered,
			Time: time.Now(),
			Data: eventbus.TriggerEvent{Trigger: name},
		})
		return true
	default:
		s.log.Warn("trigger inbox full, dropping request", logx.String("trigger", name))
		return false
	}
}

// Drain removes and returns every request currently in the inbox without
// blocking. Called by the host at the top of each tick.
func (s *Service) Drain() []Request {
	var out []Request
	for {
		select {
		case req := <-s.inbox:
			out = append(out, req)
		default:
			return out
		}
	}
}

// Start brings up the cron runner and registers all known definitions.
// Idempotent.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	s.c = cron.New(cron.WithParser(s.parser))
	for _, d := range s.defs {
		// Specs were validated in Add, re-registration cannot fail.
		_ = s.addLocked(d)
	}
	s.c.Start()
	s.log.Info("trigger service started", logx.Int("triggers", len(s.defs)))
}

// Stop halts the cron runner and waits for in-flight callbacks. Definitions
// survive so a later Start resumes them. Idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.log.Info("trigger service stopped")
}

// Len reports how many requests are waiting in the inbox.
func (s *Service) Len() int { return len(s.inbox) }
