package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of scheduled work
type Job interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
}

// JobResult is the outcome of one run
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// Scheduler runs jobs on cron schedules. Runs of the same job never overlap;
// a tick that fires while the previous run is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	logger  zerolog.Logger
	timeout time.Duration

	mu   sync.RWMutex
	jobs map[string]Job
	last map[string]JobResult
}

// New creates a scheduler. timeout bounds a single job run; zero means none.
func New(logger zerolog.Logger, timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger.With().Str("component", "scheduler").Logger(),
		timeout: timeout,
		jobs:    make(map[string]Job),
		last:    make(map[string]JobResult),
	}
}

// AddJob registers job under its schedule
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	if _, err := s.cron.AddFunc(job.Schedule(), func() { s.runJob(job) }); err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	s.jobs[name] = job

	s.logger.Info().Str("job", name).Str("schedule", job.Schedule()).Msg("Job added to scheduler")
	return nil
}

// Start starts the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.logger.Info().Msg("Starting scheduler")
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.logger.Info().Msg("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// RunNow runs a registered job synchronously, outside its schedule
func (s *Scheduler) RunNow(name string) (JobResult, error) {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return JobResult{}, fmt.Errorf("job %s not found", name)
	}
	return s.runJob(job), nil
}

// LastResult returns the most recent result of a job
func (s *Scheduler) LastResult(name string) (JobResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.last[name]
	return r, ok
}

func (s *Scheduler) runJob(job Job) JobResult {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := job.Run(ctx)
	result := JobResult{
		JobName:   job.Name(),
		StartTime: start,
		Duration:  time.Since(start),
		Success:   err == nil,
	}

	if err != nil {
		result.Error = err.Error()
		s.logger.Error().Err(err).Str("job", job.Name()).Dur("duration", result.Duration).Msg("Job failed")
	} else {
		s.logger.Debug().Str("job", job.Name()).Dur("duration", result.Duration).Msg("Job completed")
	}

	s.mu.Lock()
	s.last[job.Name()] = result
	s.mu.Unlock()

	return result
}
