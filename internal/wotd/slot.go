// Package wotd produces the daily word of the day: a bounded-retry job,
// its anchored schedule, the worker that runs it and the durable slot it
// writes.
package wotd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kalambet/lexis/internal/storage"
)

const (
	keyWord      = "wotd.word"
	keyMeaning   = "wotd.meaning"
	keyUpdatedAt = "wotd.updated_at"
)

// Pair is the persisted word of the day. The zero Pair means none has been
// computed yet.
type Pair struct {
	Word      string    `json:"word"`
	Meaning   string    `json:"meaning"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Empty reports whether no word of the day has been stored.
func (p Pair) Empty() bool {
	return p.Word == ""
}

// KV is the durable key/value store backing the slot.
type KV interface {
	SetValues(values map[string]string) error
	GetValue(key string) (string, error)
}

// Slot holds the single word-of-the-day pair. Writes are last-writer-wins.
type Slot struct {
	kv     KV
	now    func() time.Time
	logger *slog.Logger

	mu       sync.Mutex
	watchers map[chan Pair]struct{}
}

func NewSlot(kv KV) *Slot {
	return &Slot{
		kv:       kv,
		now:      time.Now,
		logger:   slog.Default(),
		watchers: make(map[chan Pair]struct{}),
	}
}

// Save overwrites the pair and notifies watchers.
func (s *Slot) Save(word, meaning string) (Pair, error) {
	p := Pair{Word: word, Meaning: meaning, UpdatedAt: s.now().UTC().Truncate(time.Second)}
	err := s.kv.SetValues(map[string]string{
		keyWord:      p.Word,
		keyMeaning:   p.Meaning,
		keyUpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return Pair{}, fmt.Errorf("saving word of the day: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- p
	}
	return p, nil
}

// Load returns the stored pair, or the zero Pair when none exists.
func (s *Slot) Load() (Pair, error) {
	var p Pair
	for key, dst := range map[string]*string{keyWord: &p.Word, keyMeaning: &p.Meaning} {
		v, err := s.kv.GetValue(key)
		if errors.Is(err, storage.ErrNotFound) {
			return Pair{}, nil
		}
		if err != nil {
			return Pair{}, fmt.Errorf("loading word of the day: %w", err)
		}
		*dst = v
	}
	if v, err := s.kv.GetValue(keyUpdatedAt); err == nil {
		p.UpdatedAt, _ = time.Parse(time.RFC3339, v)
	}
	return p, nil
}

// Watch streams the current pair, when one exists, followed by every saved
// pair until ctx is done. A slow reader only sees the latest pair.
func (s *Slot) Watch(ctx context.Context) <-chan Pair {
	ch := make(chan Pair, 1)

	s.mu.Lock()
	current, err := s.Load()
	if err != nil {
		s.logger.Warn("reading word of the day for watcher", "error", err)
	} else if !current.Empty() {
		ch <- current
	}
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, ch)
		close(ch)
		s.mu.Unlock()
	}()
	return ch
}
