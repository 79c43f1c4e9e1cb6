package config

import (
	"fmt"
	"strings"
	"time"

	"tickrun/pkg/logx"
)

type Config struct {
	Logging logx.Config `json:"logging"`
	Loop    LoopConfig  `json:"loop"`

	// Journal records completed routine runs for inspection. It never
	// feeds state back into the scheduler.
	Journal JournalConfig `json:"journal,omitempty"`

	// Triggers register scripted routines on wall-clock cron schedules.
	Triggers []TriggerConfig `json:"triggers,omitempty"`
}

// LoopConfig controls the fixed-step tick loop.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type LoopConfig struct {
	// TickRate is ticks per second. Defaults to 30.
	TickRate float64 `json:"tick_rate,omitempty"`

	// TimeScale multiplies the dt passed to the runner each tick.
	// 1.0 is real time; defaults to 1.0.
	TimeScale float64 `json:"time_scale,omitempty"`

	// MaxTicks stops the loop after this many ticks. Zero means unbounded.
	MaxTicks uint64 `json:"max_ticks,omitempty"`

	// StopWhenIdle stops the loop once every routine has drained and no
	// trigger can schedule more.
	StopWhenIdle bool `json:"stop_when_idle,omitempty"`

	// TickLogEvery emits a debug tick event every N ticks. Zero disables.
	TickLogEvery uint64 `json:"tick_log_every,omitempty"`
}

type JournalConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`

	// Retention is how long completed rows are kept. Unset keeps everything.
	Retention Duration `json:"retention,omitempty"`

	// BusyTimeout is the SQLite busy_timeout.
	BusyTimeout Duration `json:"busy_timeout,omitempty"`
}

// TriggerConfig binds a cron schedule to a named script from the script
// registry.
type TriggerConfig struct {
	// Name identifies the trigger in logs and journal rows.
	Name string `json:"name"`

	// Schedule is a cron expression: 5-field, 6-field with seconds, or a
	// descriptor such as "@every 10s".
	Schedule string `json:"schedule"`

	// Script is the registry name of the routine to schedule.
	Script string `json:"script"`

	// Steps / StepSeconds parameterize step-based scripts.
	Steps       int     `json:"steps,omitempty"`
	StepSeconds float64 `json:"step_seconds,omitempty"`

	// Delay is the initial pending delay, in scheduler seconds.
	Delay float64 `json:"delay,omitempty"`
}

// Normalize fills defaults and validates the parts that cannot be healed.
func (c *Config) Normalize() error {
	if c.Loop.TickRate <= 0 {
		c.Loop.TickRate = 30
	}
	if c.Loop.TimeScale <= 0 {
		c.Loop.TimeScale = 1.0
	}
	seen := map[string]bool{}
	for i := range c.Triggers {
		t := &c.Triggers[i]
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return fmt.Errorf("triggers[%d]: name required", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("triggers[%d]: duplicate name %q", i, t.Name)
		}
		seen[t.Name] = true
		if strings.TrimSpace(t.Schedule) == "" {
			return fmt.Errorf("trigger %q: schedule required", t.Name)
		}
		if strings.TrimSpace(t.Script) == "" {
			return fmt.Errorf("trigger %q: script required", t.Name)
		}
		if t.Delay < 0 {
			return fmt.Errorf("trigger %q: delay must be >= 0", t.Name)
		}
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return fmt.Errorf("journal: path required when enabled")
	}
	// Surface bad duration fields at load, not when the journal opens.
	if _, err := c.JournalRetention(); err != nil {
		return err
	}
	if _, err := c.JournalBusyTimeout(); err != nil {
		return err
	}
	return nil
}

// JournalRetention resolves the journal retention duration, zero when unset.
func (c *Config) JournalRetention() (time.Duration, error) {
	return c.Journal.Retention.Parse("journal.retention")
}

// JournalBusyTimeout resolves the SQLite busy timeout with a default.
func (c *Config) JournalBusyTimeout() (time.Duration, error) {
	return c.Journal.BusyTimeout.ParseOr("journal.busy_timeout", 5*time.Second)
}

// TickInterval is the wall-clock duration of one tick.
func (l LoopConfig) TickInterval() time.Duration {
	rate := l.TickRate
	if rate <= 0 {
		rate = 30
	}
	return time.Duration(float64(time.Second) / rate)
}

// Dt is the scheduler time advanced per tick.
func (l LoopConfig) Dt() float64 {
	rate := l.TickRate
	if rate <= 0 {
		rate = 30
	}
	scale := l.TimeScale
	if scale <= 0 {
		scale = 1.0
	}
	return scale / rate
}
