// Package words owns the bundled word index: the one-time bootstrap import
// and cached prefix suggestions over it.
package words

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/kalambet/lexis/internal/resource"
	"github.com/kalambet/lexis/internal/storage"
)

// SuggestLimit bounds the number of words returned for one prefix.
const SuggestLimit = 50

// IndexStore is the slice of the local store the word index needs.
type IndexStore interface {
	HasWords() (bool, error)
	ImportWords(ctx context.Context, chunks <-chan []string) (int, error)
	SearchWords(prefix string, limit int) ([]string, error)
}

// Index answers prefix queries over the word index. Rows are immutable once
// imported, so results are cached until the next import.
type Index struct {
	store  IndexStore
	cache  *ristretto.Cache[string, []string]
	logger *slog.Logger
}

// NewIndex creates an Index. maxCost is the number of cached words across
// all prefixes.
func NewIndex(store IndexStore, maxPrefixes, maxCost int64) (*Index, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []string]{
		NumCounters: maxPrefixes * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating suggestion cache: %w", err)
	}
	return &Index{store: store, cache: c, logger: slog.Default()}, nil
}

// Close releases the cache.
func (ix *Index) Close() {
	ix.cache.Close()
}

// Suggest streams up to SuggestLimit indexed words starting with prefix.
func (ix *Index) Suggest(ctx context.Context, prefix string) <-chan resource.Resource[[]string] {
	return resource.Run(ctx, func(ctx context.Context, emit resource.Emitter[[]string]) {
		words, err := ix.Lookup(prefix)
		if err != nil {
			emit(resource.FromError[[]string](err))
			return
		}
		emit(resource.Success(words))
	})
}

// Lookup is the synchronous form of Suggest.
func (ix *Index) Lookup(prefix string) ([]string, error) {
	key := storage.NormalizeWord(prefix)
	if words, ok := ix.cache.Get(key); ok {
		return words, nil
	}

	words, err := ix.store.SearchWords(key, SuggestLimit)
	if err != nil {
		return nil, resource.Wrap(resource.KindStorage, fmt.Errorf("searching words: %w", err))
	}
	if words == nil {
		words = []string{}
	}
	ix.cache.Set(key, words, int64(len(words))+1)
	return words, nil
}

// Invalidate drops every cached suggestion.
func (ix *Index) Invalidate() {
	ix.cache.Clear()
}

// Wait blocks until pending cache writes are applied.
func (ix *Index) Wait() {
	ix.cache.Wait()
}
