package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	cron *cron.Cron
	jobs *Jobs
	log  *zap.Logger
}

func NewScheduler(jobs *Jobs, log *zap.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(log))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))
	return &Scheduler{cron: c, jobs: jobs, log: log}
}

// Start registers the jobs and starts the cron scheduler. An empty schedule disables its job.
func (s *Scheduler) Start(pruneSchedule, reconcileSchedule string) error {
	if err := s.add("prune caches", pruneSchedule, s.jobs.PruneCaches); err != nil {
		return err
	}
	if err := s.add("reconcile stale uploads", reconcileSchedule, s.jobs.ReconcileStaleUploads); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) add(name, spec string, fn func()) error {
	if spec == "" {
		s.log.Info("job disabled", zap.String("job", name))
		return nil
	}
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		return err
	}
	s.log.Info("scheduled job", zap.String("job", name), zap.String("schedule", spec))
	return nil
}

// Stop stops scheduling; the returned context is done when running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
