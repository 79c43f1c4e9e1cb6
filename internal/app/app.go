// Package app wires config, logging, journal, triggers and the tick loop
// into one runnable unit.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tickrun/internal/config"
	"tickrun/internal/eventbus"
	"tickrun/internal/host"
	"tickrun/internal/journal"
	"tickrun/internal/script"
	"tickrun/internal/services/trigger"
	"tickrun/pkg/logx"
	"tickrun/pkg/routine"
)

type App struct {
	cfgm *config.Manager

	logs *logx.Service
	log  logx.Logger

	bus   eventbus.Bus
	store journal.Store
	trig  *trigger.Service
	loop  *host.Loop
}

// New loads the config at cfgPath and builds every component. Nothing runs
// until Run.
func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logs, log := logx.New(cfg.Logging)
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	store := journal.Disabled()
	if cfg.Journal.Enabled {
		retention, err := cfg.JournalRetention()
		if err != nil {
			return nil, err
		}
		busy, err := cfg.JournalBusyTimeout()
		if err != nil {
			return nil, err
		}
		store, err = journal.Open(journal.Config{
			Path:        cfg.Journal.Path,
			BusyTimeout: busy,
			Retention:   retention,
		}, log.With(logx.String("comp", "journal")))
		if err != nil {
			return nil, err
		}
	}

	bus := eventbus.New()
	trig := trigger.New(64, bus, log.With(logx.String("comp", "trigger")))
	if err := registerTriggers(trig, cfg, log); err != nil {
		_ = store.Close()
		return nil, err
	}

	loop := host.New(cfg.Loop, trig, store, bus, log.With(logx.String("comp", "loop")))

	return &App{
		cfgm:  cfgm,
		logs:  logs,
		log:   log.With(logx.String("comp", "app")),
		bus:   bus,
		store: store,
		trig:  trig,
		loop:  loop,
	}, nil
}

func registerTriggers(trig *trigger.Service, cfg *config.Config, log logx.Logger) error {
	for _, tc := range cfg.Triggers {
		builder, ok := script.Lookup(tc.Script)
		if !ok {
			return fmt.Errorf("trigger %q: unknown script %q (known: %s)",
				tc.Name, tc.Script, strings.Join(script.Names(), ", "))
		}
		p := script.Params{
			Name:        tc.Name,
			Steps:       tc.Steps,
			StepSeconds: tc.StepSeconds,
			Log:         log.With(logx.String("comp", "script")),
		}
		if err := trig.Add(tc.Name, tc.Schedule, tc.Delay, func() *routine.Routine { return builder(p) }); err != nil {
			return err
		}
	}
	return nil
}

// Run drives the loop until ctx is cancelled or it completes on its own.
// Config file changes are watched in the background; logging updates apply
// live, everything else takes effect on the next start.
func (a *App) Run(ctx context.Context) error {
	watchCtx, cancelWatch := context.WithCancel(ctx)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = a.cfgm.Watch(watchCtx)
	}()

	sub := a.cfgm.Subscribe(4)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-watchCtx.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				a.logs.Apply(newCfg.Logging)
				a.log.Info("config reloaded; logging settings applied",
					logx.String("level", newCfg.Logging.Level))
			}
		}
	}()

	err := a.loop.Run(ctx)

	cancelWatch()
	a.cfgm.Unsubscribe(sub)
	wg.Wait()

	if cerr := a.store.Close(); cerr != nil {
		a.log.Warn("journal close failed", logx.Err(cerr))
	}
	a.log.Info("app stopped")
	_ = a.logs.Close()

	if err == context.Canceled {
		return nil
	}
	return err
}
