package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Job represents a scheduled job
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single execution. Zero leaves it bounded only by Stop.
	Timeout time.Duration
	Fn      func(ctx context.Context) error

	running atomic.Bool
}

type JobOption func(*Job)

// WithTimeout bounds each execution of the job.
func WithTimeout(d time.Duration) JobOption {
	return func(j *Job) {
		j.Timeout = d
	}
}

// ErrJobRunning is returned when a job is triggered while its previous execution is still going.
var ErrJobRunning = errors.New("job still running")

// Scheduler manages scheduled jobs
type Scheduler struct {
	jobs   []*Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]*Job, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error, opts ...JobOption) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := &Job{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	}
	for _, opt := range opts {
		opt(job)
	}
	s.jobs = append(s.jobs, job)
	slog.Info("Cron job registered", "name", name, "interval", interval, "timeout", job.Timeout)
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels running executions and waits for every job loop to return.
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) runJob(job *Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.logResult(job, s.execute(s.ctx, job))

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.logResult(job, s.execute(s.ctx, job))
		}
	}
}

// execute runs job once unless a previous execution is still in progress.
func (s *Scheduler) execute(ctx context.Context, job *Job) error {
	if !job.running.CompareAndSwap(false, true) {
		return ErrJobRunning
	}
	defer job.running.Store(false)

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}
	return job.Fn(ctx)
}

func (s *Scheduler) logResult(job *Job, err error) {
	switch {
	case errors.Is(err, ErrJobRunning):
		slog.Warn("Cron job skipped, previous run still in progress", "name", job.Name)
	case err != nil:
		slog.Error("Cron job failed", "name", job.Name, "error", err)
	default:
		slog.Debug("Cron job completed", "name", job.Name)
	}
}

// RunOnce runs every job once and returns their joined errors.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	jobs := append([]*Job(nil), s.jobs...)
	s.mu.Unlock()

	var errs []error
	for _, job := range jobs {
		if err := s.execute(ctx, job); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", job.Name, err))
		}
	}
	return errors.Join(errs...)
}
