// Package session debounces interactive requests the way a UI issues them:
// keystroke-driven queries and like/unlike toggles.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kalambet/lexis/internal/debounce"
	"github.com/kalambet/lexis/internal/model"
	"github.com/kalambet/lexis/internal/resource"
)

const (
	DefaultQueryDelay  = 500 * time.Millisecond
	DefaultToggleDelay = time.Second

	updateBuffer = 64
	toggleKey    = "toggle"
)

// Kind names the logical operation an Update belongs to.
type Kind string

const (
	KindSuggest   Kind = "suggest"
	KindFavorites Kind = "favorites"
	KindRecent    Kind = "recent"
	KindLike      Kind = "like"
	KindUnlike    Kind = "unlike"
)

// ParseKind returns the query kind named by s.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSuggest, KindFavorites, KindRecent:
		return k, true
	}
	return "", false
}

// Update is one stream value published by the session.
type Update struct {
	Kind    Kind     `json:"kind"`
	Query   string   `json:"query,omitempty"`
	State   string   `json:"state"`
	Active  bool     `json:"active,omitempty"`
	Words   []string `json:"words,omitempty"`
	Error   string   `json:"error,omitempty"`
	Message string   `json:"message,omitempty"`
}

func toUpdate[T any](kind Kind, query string, r resource.Resource[T], words func(T) []string) Update {
	u := Update{Kind: kind, Query: query, State: r.State.String(), Active: r.Active}
	switch r.State {
	case resource.StateSuccess:
		if words != nil {
			u.Words = words(r.Value)
		}
	case resource.StateError:
		u.Error = r.Kind.String()
		u.Message = r.Message
	}
	return u
}

// Suggester lists index words by prefix.
type Suggester interface {
	Suggest(ctx context.Context, prefix string) <-chan resource.Resource[[]string]
}

// Favorites lists and toggles favorites.
type Favorites interface {
	Like(ctx context.Context, entries []model.WordInfo) <-chan resource.Resource[struct{}]
	Unlike(ctx context.Context, words []string) <-chan resource.Resource[struct{}]
	List(ctx context.Context, prefix string) <-chan resource.Resource[[]string]
}

// Recents lists history words by prefix.
type Recents interface {
	List(ctx context.Context, prefix string) <-chan resource.Resource[[]string]
}

// Options tune the debounce delays. Zero values use the defaults.
type Options struct {
	QueryDelay  time.Duration
	ToggleDelay time.Duration
}

// Session owns the debounce state of one interactive client.
type Session struct {
	index     Suggester
	favorites Favorites
	recents   Recents

	queryDelay  time.Duration
	toggleDelay time.Duration

	group   *debounce.Group
	updates chan Update
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
	logger  *slog.Logger
}

func New(index Suggester, favorites Favorites, recents Recents, opts Options) *Session {
	if opts.QueryDelay <= 0 {
		opts.QueryDelay = DefaultQueryDelay
	}
	if opts.ToggleDelay <= 0 {
		opts.ToggleDelay = DefaultToggleDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		index:       index,
		favorites:   favorites,
		recents:     recents,
		queryDelay:  opts.QueryDelay,
		toggleDelay: opts.ToggleDelay,
		group:       debounce.New(),
		updates:     make(chan Update, updateBuffer),
		ctx:         ctx,
		cancel:      cancel,
		logger:      slog.Default(),
	}
}

// Updates returns the channel every debounced result is published on. It is
// closed by Close.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// Query schedules a list query of the given kind. A newer query of the same
// kind replaces a pending or running one.
func (s *Session) Query(kind Kind, text string) {
	var run func(ctx context.Context) <-chan resource.Resource[[]string]
	switch kind {
	case KindSuggest:
		run = func(ctx context.Context) <-chan resource.Resource[[]string] { return s.index.Suggest(ctx, text) }
	case KindFavorites:
		run = func(ctx context.Context) <-chan resource.Resource[[]string] { return s.favorites.List(ctx, text) }
	case KindRecent:
		run = func(ctx context.Context) <-chan resource.Resource[[]string] { return s.recents.List(ctx, text) }
	default:
		s.logger.Warn("ignoring unknown query kind", "kind", kind)
		return
	}

	s.group.Do(s.ctx, string(kind), s.queryDelay, func(ctx context.Context) {
		for r := range run(ctx) {
			s.publish(ctx, toUpdate(kind, text, r, func(w []string) []string { return w }))
		}
	})
}

// Like schedules storing entries as favorites. Like and Unlike share one
// debounce key, so the last toggle in a burst wins.
func (s *Session) Like(entries []model.WordInfo) {
	words := model.Words(entries)
	s.group.Do(s.ctx, toggleKey, s.toggleDelay, func(ctx context.Context) {
		s.forward(ctx, KindLike, words, s.favorites.Like(ctx, entries))
	})
}

// Unlike schedules removing the favorites for words.
func (s *Session) Unlike(words []string) {
	s.group.Do(s.ctx, toggleKey, s.toggleDelay, func(ctx context.Context) {
		s.forward(ctx, KindUnlike, words, s.favorites.Unlike(ctx, words))
	})
}

func (s *Session) forward(ctx context.Context, kind Kind, words []string, stream <-chan resource.Resource[struct{}]) {
	query := strings.Join(words, ",")
	for r := range stream {
		s.publish(ctx, toUpdate(kind, query, r, func(struct{}) []string { return words }))
	}
}

func (s *Session) publish(ctx context.Context, u Update) {
	select {
	case s.updates <- u:
	case <-ctx.Done():
	}
}

// Close cancels pending work, waits for running work and closes Updates.
func (s *Session) Close() {
	s.once.Do(func() {
		s.cancel()
		s.group.Stop()
		close(s.updates)
	})
}
