// Package lookup resolves words to dictionary entries, preferring favorites
// over the remote dictionary.
package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kalambet/lexis/internal/dictionary"
	"github.com/kalambet/lexis/internal/model"
	"github.com/kalambet/lexis/internal/resource"
)

// DefaultTimeout bounds a single remote lookup.
const DefaultTimeout = 10 * time.Second

// FavoriteSource returns persisted favorites matching a case-insensitive prefix.
type FavoriteSource interface {
	FavoritesByPrefix(prefix string) ([]model.WordInfo, error)
}

// Dictionary fetches entries from the remote service.
type Dictionary interface {
	Lookup(ctx context.Context, word string) ([]dictionary.WordInfoDTO, error)
}

// RecentRecorder adds a word to the search history.
type RecentRecorder interface {
	AddRecentWord(word string, at time.Time) error
}

// Resolver implements the favorites-first lookup policy.
type Resolver struct {
	favorites FavoriteSource
	remote    Dictionary
	recent    RecentRecorder
	timeout   time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewResolver creates a Resolver. A timeout <= 0 uses DefaultTimeout.
func NewResolver(favorites FavoriteSource, remote Dictionary, recent RecentRecorder, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		favorites: favorites,
		remote:    remote,
		recent:    recent,
		timeout:   timeout,
		now:       time.Now,
		logger:    slog.Default(),
	}
}

// Resolve streams the entries for word. Favorited entries are returned with
// Liked set and are never re-fetched. Remote results are recorded in the
// history only when recordRecent is true. A failed favorites read is emitted
// as a storage Error before the remote fallback.
func (r *Resolver) Resolve(ctx context.Context, word string, recordRecent bool) <-chan resource.Resource[[]model.WordInfo] {
	return resource.Run(ctx, func(ctx context.Context, emit resource.Emitter[[]model.WordInfo]) {
		infos, err := r.resolve(ctx, word, recordRecent, false, emit)
		if err != nil {
			emit(resource.FromError[[]model.WordInfo](err))
			return
		}
		emit(resource.Success(infos))
	})
}

// ResolveExact is Resolve restricted to favorites whose word equals word,
// ignoring case. Prefix-only favorite matches fall through to the remote
// lookup, so callers acting on one word never get a longer one back.
func (r *Resolver) ResolveExact(ctx context.Context, word string, recordRecent bool) <-chan resource.Resource[[]model.WordInfo] {
	return resource.Run(ctx, func(ctx context.Context, emit resource.Emitter[[]model.WordInfo]) {
		infos, err := r.resolve(ctx, word, recordRecent, true, emit)
		if err != nil {
			emit(resource.FromError[[]model.WordInfo](err))
			return
		}
		emit(resource.Success(infos))
	})
}

func (r *Resolver) resolve(ctx context.Context, word string, recordRecent, exact bool, emit resource.Emitter[[]model.WordInfo]) ([]model.WordInfo, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, resource.Wrap(resource.KindNotFound, dictionary.ErrNotFound)
	}

	liked, err := r.favorites.FavoritesByPrefix(word)
	if exact {
		liked = sameWord(liked, word)
	}
	if err != nil {
		// Favorites are a cache over the remote dictionary.
		r.logger.Warn("reading favorites failed, falling back to remote", "word", word, "error", err)
		emit(resource.Error[[]model.WordInfo](resource.KindStorage, fmt.Sprintf("reading favorites for %q: %v", word, err)))
	} else if len(liked) > 0 {
		r.logger.Debug("resolved from favorites", "word", word, "entries", len(liked))
		return liked, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	entries, err := r.remote.Lookup(fetchCtx, word)
	if err != nil {
		return nil, fmt.Errorf("looking up %q: %w", word, err)
	}
	infos := dictionary.ToWordInfos(entries)

	if recordRecent {
		if err := r.recent.AddRecentWord(word, r.now()); err != nil {
			r.logger.Warn("recording recent word failed", "word", word, "error", err)
		}
	}
	return infos, nil
}

func sameWord(infos []model.WordInfo, word string) []model.WordInfo {
	var out []model.WordInfo
	for _, wi := range infos {
		if strings.EqualFold(wi.Word, word) {
			out = append(out, wi)
		}
	}
	return out
}
