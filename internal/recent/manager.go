// Package recent keeps the newest-first history of searched words.
package recent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kalambet/lexis/internal/resource"
	"github.com/kalambet/lexis/internal/storage"
)

// Store is the subset of the local store used for history.
type Store interface {
	AddRecentWord(word string, at time.Time) error
	RecentWords(prefix string) ([]storage.RecentWord, error)
	DeleteRecentWord(word string) error
	ClearRecentWords() error
}

// Manager records, lists and evicts recent words.
type Manager struct {
	store Store
	now   func() time.Time
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Record adds word to the history or refreshes its timestamp.
func (m *Manager) Record(ctx context.Context, word string) <-chan resource.Resource[struct{}] {
	return unit(ctx, func() error {
		word = strings.TrimSpace(word)
		if word == "" {
			return nil
		}
		if err := m.store.AddRecentWord(word, m.now()); err != nil {
			return fmt.Errorf("recording %q: %w", word, err)
		}
		return nil
	})
}

// List streams history words starting with prefix, newest first.
func (m *Manager) List(ctx context.Context, prefix string) <-chan resource.Resource[[]string] {
	return resource.Run(ctx, func(ctx context.Context, emit resource.Emitter[[]string]) {
		rows, err := m.store.RecentWords(strings.TrimSpace(prefix))
		if err != nil {
			emit(resource.FromError[[]string](resource.Wrap(resource.KindStorage, fmt.Errorf("listing recent words: %w", err))))
			return
		}
		words := make([]string, 0, len(rows))
		for _, r := range rows {
			words = append(words, r.Word)
		}
		emit(resource.Success(words))
	})
}

// Delete removes word from the history. An empty word clears everything.
func (m *Manager) Delete(ctx context.Context, word string) <-chan resource.Resource[struct{}] {
	if word == "" {
		return m.Clear(ctx)
	}
	return unit(ctx, func() error {
		if err := m.store.DeleteRecentWord(word); err != nil {
			return fmt.Errorf("deleting recent word %q: %w", word, err)
		}
		return nil
	})
}

// Clear removes the whole history.
func (m *Manager) Clear(ctx context.Context) <-chan resource.Resource[struct{}] {
	return unit(ctx, func() error {
		if err := m.store.ClearRecentWords(); err != nil {
			return fmt.Errorf("clearing recent words: %w", err)
		}
		return nil
	})
}

func unit(ctx context.Context, fn func() error) <-chan resource.Resource[struct{}] {
	return resource.Run(ctx, func(ctx context.Context, emit resource.Emitter[struct{}]) {
		if err := fn(); err != nil {
			emit(resource.FromError[struct{}](resource.Wrap(resource.KindStorage, err)))
			return
		}
		emit(resource.Success(struct{}{}))
	})
}
