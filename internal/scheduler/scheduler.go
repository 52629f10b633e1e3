// Package scheduler runs the two periodic reconciliation jobs for the
// credit view: a balance refresh and a monthly-credit pass. The jobs
// are independent timers; neither is synchronized with the other or
// with in-flight mutations, so a tick can briefly surface stale data.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one periodic reconciliation task.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron   *cron.Cron
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(log *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddEvery schedules job at a fixed interval. Failures are logged and
// the tick ends; the next tick retries from scratch.
func (s *Scheduler) AddEvery(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("scheduler: interval for %q must be positive", name)
	}
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		if err := job(s.ctx); err != nil {
			s.log.Warn("reconciliation job failed", "job", name, "err", err)
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.cancel()
}
