package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/account-lifecycle-server/internal/metrics"
)

type SchedulerConfig struct {
	// LockTTL bounds how long a crashed run can hold its job lock.
	LockTTL time.Duration
	// RunTimeout cancels a run that takes too long.
	RunTimeout time.Duration
}

type scheduledJob struct {
	job      Job
	interval time.Duration
}

// Scheduler triggers registered jobs on their interval. A trigger that finds the
// job's lock held is dropped, never queued.
type Scheduler struct {
	locker  Locker
	cfg     SchedulerConfig
	metrics metrics.Collector
	log     *logrus.Logger

	mu   sync.Mutex
	jobs map[string]scheduledJob

	loops  sync.WaitGroup
	runs   sync.WaitGroup
	cancel context.CancelFunc
}

func NewScheduler(locker Locker, cfg SchedulerConfig, collector metrics.Collector, log *logrus.Logger) *Scheduler {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 55 * time.Minute
	}
	return &Scheduler{
		locker:  locker,
		cfg:     cfg,
		metrics: collector,
		log:     log,
		jobs:    make(map[string]scheduledJob),
	}
}

// Register adds a job. It must be called before Start.
func (s *Scheduler) Register(job Job, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name()] = scheduledJob{job: job, interval: interval}
}

// Start runs one ticker loop per registered job until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	jobs := make([]scheduledJob, 0, len(s.jobs))
	for _, sj := range s.jobs {
		jobs = append(jobs, sj)
	}
	s.mu.Unlock()

	for _, sj := range jobs {
		s.loops.Add(1)
		go s.loop(ctx, sj)
	}
	s.log.WithField("jobs", len(jobs)).Info("Scheduler.Start")
}

func (s *Scheduler) loop(ctx context.Context, sj scheduledJob) {
	defer s.loops.Done()
	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Trigger(ctx, sj.job.Name())
		}
	}
}

// Trigger starts the named job in the background and reports whether it started.
func (s *Scheduler) Trigger(ctx context.Context, name string) bool {
	s.mu.Lock()
	sj, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		s.log.WithField("job", name).Error("Scheduler.Trigger.UnknownJob")
		return false
	}

	release, acquired, err := s.locker.TryLock(ctx, name, s.cfg.LockTTL)
	if err != nil {
		s.log.WithError(err).WithField("job", name).Error("Scheduler.Trigger.LockError")
		return false
	}
	if !acquired {
		s.metrics.RecordJobSkipped(name)
		s.log.WithField("job", name).Info("Scheduler.Trigger.Skipped")
		return false
	}

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		defer release()
		s.run(context.WithoutCancel(ctx), sj.job)
	}()
	return true
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	fields := logrus.Fields{"job": job.Name()}
	s.log.WithFields(fields).Info("Scheduler.Run.Start")

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
			}
		}()
		return job.Run(ctx)
	}()

	duration := time.Since(start)
	fields["duration"] = duration.String()
	if err != nil {
		s.metrics.RecordJobRun(job.Name(), "error", duration)
		s.log.WithError(err).WithFields(fields).Error("Scheduler.Run.Error")
		return
	}
	s.metrics.RecordJobRun(job.Name(), "success", duration)
	s.log.WithFields(fields).Info("Scheduler.Run.Complete")
}

// Stop ends the ticker loops and waits for in-flight runs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.loops.Wait()
	s.runs.Wait()
}

// Wait blocks until every in-flight run has finished.
func (s *Scheduler) Wait() {
	s.runs.Wait()
}
