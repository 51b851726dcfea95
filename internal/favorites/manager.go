// Package favorites persists liked dictionary entries.
package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalambet/lexis/internal/model"
	"github.com/kalambet/lexis/internal/resource"
)

// Store is the subset of the local store used for favorites.
type Store interface {
	SaveWordInfos(infos []model.WordInfo) error
	DeleteFavorites(words []string) (int, error)
	FavoriteWords(prefix string) ([]string, error)
}

// Manager adds, removes and lists favorites. Each write is one transaction
// covering the entries with all their meanings and definitions.
type Manager struct {
	store  Store
	logger *slog.Logger
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, logger: slog.Default()}
}

// Like stores entries as favorites.
func (m *Manager) Like(ctx context.Context, entries []model.WordInfo) <-chan resource.Resource[struct{}] {
	return resource.Run(ctx, func(ctx context.Context, emit resource.Emitter[struct{}]) {
		if err := m.store.SaveWordInfos(entries); err != nil {
			emit(resource.FromError[struct{}](resource.Wrap(resource.KindStorage, fmt.Errorf("saving favorites: %w", err))))
			return
		}
		m.logger.Debug("liked", "words", model.Words(entries))
		emit(resource.Success(struct{}{}))
	})
}

// Unlike removes every favorited entry for each of words.
func (m *Manager) Unlike(ctx context.Context, words []string) <-chan resource.Resource[struct{}] {
	return resource.Run(ctx, func(ctx context.Context, emit resource.Emitter[struct{}]) {
		cleaned := make([]string, 0, len(words))
		for _, w := range words {
			if w = strings.TrimSpace(w); w != "" {
				cleaned = append(cleaned, w)
			}
		}
		n, err := m.store.DeleteFavorites(cleaned)
		if err != nil {
			emit(resource.FromError[struct{}](resource.Wrap(resource.KindStorage, fmt.Errorf("deleting favorites: %w", err))))
			return
		}
		m.logger.Debug("unliked", "words", cleaned, "entries", n)
		emit(resource.Success(struct{}{}))
	})
}

// List streams the distinct favorited words starting with prefix.
func (m *Manager) List(ctx context.Context, prefix string) <-chan resource.Resource[[]string] {
	return resource.Run(ctx, func(ctx context.Context, emit resource.Emitter[[]string]) {
		words, err := m.store.FavoriteWords(strings.TrimSpace(prefix))
		if err != nil {
			emit(resource.FromError[[]string](resource.Wrap(resource.KindStorage, fmt.Errorf("listing favorites: %w", err))))
			return
		}
		if words == nil {
			words = []string{}
		}
		emit(resource.Success(words))
	})
}
