package trigger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// CronRegistrar implements the periodic-trigger registrar on top of a
// cron runner holding at most one entry. Arm and Disarm are idempotent;
// re-arming at a different interval replaces the entry.
type CronRegistrar struct {
	run  func(context.Context)
	cron *cron.Cron
	log  *slog.Logger

	mu       sync.Mutex
	entry    cron.EntryID
	armed    bool
	interval time.Duration
}

func NewCronRegistrar(run func(context.Context), log *slog.Logger) *CronRegistrar {
	if log == nil {
		log = slog.Default()
	}
	return &CronRegistrar{
		run:  run,
		cron: cron.New(),
		log:  log.With(slog.String("component", "trigger")),
	}
}

// Start begins dispatching armed ticks.
func (r *CronRegistrar) Start() {
	r.cron.Start()
}

// Stop halts dispatch and waits for a running tick to finish.
func (r *CronRegistrar) Stop() {
	<-r.cron.Stop().Done()
}

func (r *CronRegistrar) Arm(interval time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.armed && r.interval == interval {
		return nil
	}
	if r.armed {
		r.cron.Remove(r.entry)
	}

	r.entry = r.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		r.run(context.Background())
	}))
	r.armed = true
	r.interval = interval
	r.log.Info("periodic trigger armed", slog.Duration("interval", interval))
	return nil
}

func (r *CronRegistrar) Disarm() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.armed {
		return
	}
	r.cron.Remove(r.entry)
	r.armed = false
	r.log.Info("periodic trigger disarmed")
}
