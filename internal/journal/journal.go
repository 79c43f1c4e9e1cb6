// Package journal records completed routine runs so operators can inspect
// what the scheduler did and when. It is write-mostly observability data:
// nothing in here ever feeds state back into the runner.
package journal

import (
	"context"
	"errors"
	"time"
)

// ErrDisabled is returned by the no-op store.
var ErrDisabled = errors.New("journal: disabled")

// Outcome of one routine run.
const (
	OutcomeFinished = "finished"
	OutcomeStopped  = "stopped"
)

// Entry is one completed routine run.
type Entry struct {
	Name        string
	Trigger     string // trigger name, empty for directly scheduled routines
	ScheduledAt time.Time
	FinishedAt  time.Time
	Ticks       uint64 // ticks the routine was active
	Outcome     string
}

type Store interface {
	Append(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
	Close() error
}

// Config for the journal store.
type Config struct {
	Path        string
	BusyTimeout time.Duration
	// Retention controls automatic pruning piggybacked on appends.
	// Zero keeps everything.
	Retention time.Duration
}

// Disabled returns a store whose reads report ErrDisabled and whose writes
// are silently dropped, so call sites need no enabled checks.
func Disabled() Store { return noopStore{} }

type noopStore struct{}

func (noopStore) Append(context.Context, Entry) error { return nil }

func (noopStore) Recent(context.Context, int) ([]Entry, error) { return nil, ErrDisabled }

func (noopStore) Prune(context.Context, time.Time) (int64, error) { return 0, ErrDisabled }

func (noopStore) Close() error { return nil }
