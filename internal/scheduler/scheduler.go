// Package scheduler triggers reminder runs in-process on a cron schedule.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one unit of scheduled work. It receives the scheduler's context.
type Job func(ctx context.Context)

// Scheduler runs a Job on a cron spec. A tick that fires while the previous run
// is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	job     Job
	log     *zap.Logger
	running sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
}

// New parses spec (standard five fields or descriptors such as "@hourly") in the given zone.
func New(spec, timeZone string, job Job, log *zap.Logger) (*Scheduler, error) {
	opts := []cron.Option{}
	if timeZone != "" {
		loc, err := time.LoadLocation(timeZone)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cron.WithLocation(loc))
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron.New(opts...),
		job:    job,
		log:    log.Named("scheduler"),
		ctx:    ctx,
		cancel: cancel,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

// tick runs the job unless a previous run still holds the lock.
func (s *Scheduler) tick() {
	if !s.running.TryLock() {
		s.log.Warn("previous run still in progress, skipping tick")
		return
	}
	defer s.running.Unlock()
	s.job(s.ctx)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("entries", len(s.cron.Entries())))
}

// Stop cancels the running job's context and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}
