package wotd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalambet/lexis/internal/dictionary"
	"github.com/kalambet/lexis/internal/model"
	"github.com/kalambet/lexis/internal/notify"
	"github.com/kalambet/lexis/internal/resource"
)

// DefaultMaxAttempts bounds the candidate words tried in one run.
const DefaultMaxAttempts = 5

// Outcome tells the scheduler what to do after a run.
type Outcome int

const (
	// OutcomeSuccess means a pair was stored and announced.
	OutcomeSuccess Outcome = iota
	// OutcomeFailure means every attempt was rejected. The run is over.
	OutcomeFailure
	// OutcomeRetry means the run broke unexpectedly and should be retried.
	OutcomeRetry
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeRetry:
		return "retry"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result describes one run.
type Result struct {
	Outcome  Outcome `json:"-"`
	Status   string  `json:"outcome"`
	Pair     Pair    `json:"pair,omitzero"`
	Attempts int     `json:"attempts"`
	Err      error   `json:"-"`
	Error    string  `json:"error,omitempty"`
}

func newResult(o Outcome, attempts int, p Pair, err error) Result {
	r := Result{Outcome: o, Status: o.String(), Pair: p, Attempts: attempts, Err: err}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// RandomSource yields candidate words.
type RandomSource interface {
	RandomWord(ctx context.Context) (string, error)
}

// WordResolver resolves a candidate to dictionary entries.
type WordResolver interface {
	Resolve(ctx context.Context, word string, recordRecent bool) <-chan resource.Resource[[]model.WordInfo]
}

// SlotWriter persists the accepted pair.
type SlotWriter interface {
	Save(word, meaning string) (Pair, error)
}

// ErrExhausted is returned in a failure Result.
var ErrExhausted = errors.New("no word with a definition found")

// Job is a single word-of-the-day computation:
// fetch a random word, resolve it, accept or try again, persist, notify.
type Job struct {
	random      RandomSource
	resolver    WordResolver
	slot        SlotWriter
	notifier    notify.Notifier
	maxAttempts int
	logger      *slog.Logger
}

// NewJob creates a Job. maxAttempts <= 0 uses DefaultMaxAttempts.
func NewJob(random RandomSource, resolver WordResolver, slot SlotWriter, notifier notify.Notifier, maxAttempts int) *Job {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Job{
		random:      random,
		resolver:    resolver,
		slot:        slot,
		notifier:    notifier,
		maxAttempts: maxAttempts,
		logger:      slog.Default(),
	}
}

// Run executes the job once. Panics and cancellation are reported as
// OutcomeRetry.
func (j *Job) Run(ctx context.Context) (res Result) {
	attempt := 0
	defer func() {
		if p := recover(); p != nil {
			j.logger.Error("word of the day run panicked", "panic", p)
			res = newResult(OutcomeRetry, attempt, Pair{}, fmt.Errorf("panic: %v", p))
		}
	}()

	for attempt = 1; attempt <= j.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return newResult(OutcomeRetry, attempt-1, Pair{}, err)
		}

		word, meaning, ok := j.candidate(ctx, attempt)
		if !ok {
			continue
		}

		pair, err := j.slot.Save(word, meaning)
		if err != nil {
			return newResult(OutcomeRetry, attempt, Pair{}, err)
		}
		err = j.notifier.Notify(ctx, notify.Notification{
			Title:   "Word of the Day: " + word,
			Body:    meaning,
			Payload: word,
		})
		if err != nil {
			// The pair is stored; notifying is best effort.
			j.logger.Warn("word of the day notification failed", "word", word, "error", err)
		}
		j.logger.Info("word of the day selected", "word", word, "attempts", attempt)
		return newResult(OutcomeSuccess, attempt, pair, nil)
	}

	if err := ctx.Err(); err != nil {
		return newResult(OutcomeRetry, j.maxAttempts, Pair{}, err)
	}
	j.logger.Error("no valid word of the day", "attempts", j.maxAttempts)
	return newResult(OutcomeFailure, j.maxAttempts, Pair{}, ErrExhausted)
}

// candidate performs one fetch-and-resolve attempt.
func (j *Job) candidate(ctx context.Context, attempt int) (word, meaning string, ok bool) {
	word, err := j.random.RandomWord(ctx)
	if err != nil {
		j.logger.Warn("fetching random word failed", "attempt", attempt, "error", err)
		return "", "", false
	}

	infos, err := resource.Collect(j.resolver.Resolve(ctx, word, false))
	if err != nil {
		j.logger.Warn("resolving word failed", "attempt", attempt, "word", word, "error", err)
		return "", "", false
	}
	if len(infos) > 0 {
		meaning = infos[0].FirstDefinition()
	}
	if !Acceptable(word, meaning) {
		j.logger.Debug("rejecting candidate", "attempt", attempt, "word", word, "meaning", meaning)
		return "", "", false
	}
	return word, meaning, true
}

// Acceptable reports whether a resolved candidate can become the word of the
// day: it needs a real definition, not a placeholder or not-found text.
func Acceptable(word, meaning string) bool {
	if strings.TrimSpace(word) == "" || word == dictionary.MissingWord {
		return false
	}
	return !dictionary.IsPlaceholder(meaning)
}
