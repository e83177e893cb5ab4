// Package scheduler runs named periodic jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultJobTimeout bounds a single job run
const DefaultJobTimeout = 30 * time.Minute

// Job is a scheduled task
type Job func(ctx context.Context) error

// Scheduler manages periodic jobs. Each job is self-exclusive: a tick that
// fires while the previous run is still going is skipped, not queued.
type Scheduler struct {
	cron       *cron.Cron
	jobs       map[string]cron.EntryID
	logger     *logrus.Logger
	jobTimeout time.Duration
}

// New creates a Scheduler
func New(logger *logrus.Logger) *Scheduler {
	cronLog := &cronLogAdapter{logger: logger}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cronLog),
			cron.Recover(cronLog),
		)),
		jobs:       make(map[string]cron.EntryID),
		logger:     logger,
		jobTimeout: DefaultJobTimeout,
	}
}

// AddJob registers a job under a cron schedule (standard 5-field spec or
// @every syntax)
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	entryID, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		log := s.logger.WithField("job", name)
		start := time.Now()
		log.Info("Starting scheduled job")

		if err := job(ctx); err != nil {
			log.WithError(err).WithField("elapsed", time.Since(start).String()).Error("Scheduled job failed")
			return
		}
		log.WithField("elapsed", time.Since(start).String()).Info("Scheduled job completed")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	s.logger.WithFields(logrus.Fields{
		"job":      name,
		"schedule": schedule,
	}).Info("Job registered")

	return nil
}

// RemoveJob unregisters a job
func (s *Scheduler) RemoveJob(name string) {
	if entryID, ok := s.jobs[name]; ok {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		s.logger.WithField("job", name).Info("Job removed")
	}
}

// Start begins firing scheduled jobs
func (s *Scheduler) Start() {
	s.logger.Info("Scheduler started")
	s.cron.Start()
}

// Stop halts scheduling. The returned context is done once in-flight jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Scheduler stopping")
	return s.cron.Stop()
}

// JobInfo describes a registered job's schedule state
type JobInfo struct {
	Name    string
	NextRun time.Time
	LastRun time.Time
}

// ListJobs returns schedule state for every registered job
func (s *Scheduler) ListJobs() []JobInfo {
	entries := s.cron.Entries()
	infos := make([]JobInfo, 0, len(s.jobs))

	for name, entryID := range s.jobs {
		for _, entry := range entries {
			if entry.ID == entryID {
				infos = append(infos, JobInfo{
					Name:    name,
					NextRun: entry.Next,
					LastRun: entry.Prev,
				})
				break
			}
		}
	}
	return infos
}

// cronLogAdapter bridges cron's logger interface onto logrus
type cronLogAdapter struct {
	logger *logrus.Logger
}

func (a *cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.WithField("cron", keysAndValues).Debug(msg)
}

func (a *cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.WithError(err).WithField("cron", keysAndValues).Error(msg)
}
