package wotd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalambet/lexis/internal/netmon"
	"github.com/kalambet/lexis/internal/storage"
)

// JobStore abstracts the job queue operations.
type JobStore interface {
	ClaimNextJob(types []string) (*storage.Job, error)
	CompleteJob(id string) error
	FailJob(id string, errMsg string) error
	MarkJobFailed(id string, errMsg string) error
}

// Runner runs one word-of-the-day computation.
type Runner interface {
	Run(ctx context.Context) Result
}

// Worker claims due word-of-the-day jobs from the queue and runs them while
// the network is reachable.
type Worker struct {
	store     JobStore
	runner    Runner
	scheduler *Scheduler
	network   netmon.Status
	wake      <-chan bool
	poll      time.Duration
	logger    *slog.Logger
}

// NewWorker creates a Worker with the given dependencies.
// If pollInterval is <= 0, it defaults to one minute.
func NewWorker(store JobStore, runner Runner, scheduler *Scheduler, network netmon.Status, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &Worker{
		store:     store,
		runner:    runner,
		scheduler: scheduler,
		network:   network,
		poll:      pollInterval,
		logger:    slog.Default(),
	}
}

// WakeOn makes Run poll as soon as ch reports the network back online.
func (w *Worker) WakeOn(ch <-chan bool) {
	w.wake = ch
}

// Run reconciles the schedule and then polls for due jobs until ctx is
// cancelled.
func (w *Worker) Run(ctx context.Context) {
	if _, _, err := w.scheduler.Reconcile(); err != nil {
		w.logger.Error("reconciling word of the day schedule", "error", err)
	}

	wake := w.wake
	for {
		if ctx.Err() != nil {
			return
		}

		if _, err := w.RunOnce(ctx); err != nil {
			w.logger.Error("worker iteration failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.poll):
		case online, ok := <-wake:
			if !ok {
				wake = nil
			} else if !online {
				continue
			}
		}
	}
}

// RunOnce claims and processes a single due job. It returns true if a job was
// processed, regardless of its outcome. Nothing is claimed while offline.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	if w.network != nil && !w.network.Online() {
		return false, nil
	}

	job, err := w.store.ClaimNextJob([]string{JobType})
	if err != nil {
		return false, fmt.Errorf("claiming job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	res := w.runner.Run(ctx)
	w.logger.Info("word of the day run finished", "job_id", job.ID, "outcome", res.Outcome, "attempts", res.Attempts)

	switch res.Outcome {
	case OutcomeSuccess:
		err = w.store.CompleteJob(job.ID)
	case OutcomeFailure:
		err = w.store.MarkJobFailed(job.ID, res.Error)
	default:
		err = w.store.FailJob(job.ID, res.Error)
	}
	if err != nil {
		return true, fmt.Errorf("recording outcome of job %s: %w", job.ID, err)
	}

	if _, _, err := w.scheduler.Reconcile(); err != nil {
		return true, err
	}
	return true, nil
}
