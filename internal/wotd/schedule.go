package wotd

import (
	"fmt"
	"time"

	"github.com/kalambet/lexis/internal/storage"
)

const (
	// JobID is the fixed identity of the periodic job; there is never more
	// than one row for it.
	JobID = "word_of_the_day"
	// JobType is the job queue type claimed by Worker.
	JobType = "word_of_the_day"

	DefaultHour = 8
	// Period between anchored runs.
	Period = 24 * time.Hour
	// DefaultLease is how long a running job is trusted before a reconcile
	// treats it as abandoned.
	DefaultLease = 10 * time.Minute
	// retryBudget bounds consecutive OutcomeRetry runs before the job is
	// marked failed and waits for the next anchored run.
	retryBudget = 3
)

// NextRun returns the first time at hour:00 in now's location that is not
// before now.
func NextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// JobScheduler upserts a job by id.
type JobScheduler interface {
	ScheduleJob(job storage.Job, staleBefore time.Time) (storage.Job, bool, error)
}

// Scheduler keeps exactly one word-of-the-day job queued.
type Scheduler struct {
	store JobScheduler
	hour  int
	lease time.Duration
	now   func() time.Time
}

// NewScheduler creates a Scheduler anchored at hour (local time).
func NewScheduler(store JobScheduler, hour int) (*Scheduler, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("invalid word of the day hour %d", hour)
	}
	return &Scheduler{store: store, hour: hour, lease: DefaultLease, now: time.Now}, nil
}

// Reconcile makes sure a run is queued. An active run (pending, or running
// within its lease) is kept. A finished or abandoned run is replaced by one
// at the next anchored hour. It is safe to call any number of times.
func (s *Scheduler) Reconcile() (storage.Job, bool, error) {
	now := s.now()
	job := storage.Job{
		ID:          JobID,
		Type:        JobType,
		PayloadJSON: "{}",
		MaxAttempts: retryBudget,
		RunAfter:    NextRun(now, s.hour).UTC(),
	}
	stored, scheduled, err := s.store.ScheduleJob(job, now.Add(-s.lease).UTC())
	if err != nil {
		return storage.Job{}, false, fmt.Errorf("scheduling word of the day: %w", err)
	}
	return stored, scheduled, nil
}
