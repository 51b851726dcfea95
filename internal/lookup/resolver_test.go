package lookup

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kalambet/lexis/internal/dictionary"
	"github.com/kalambet/lexis/internal/model"
	"github.com/kalambet/lexis/internal/resource"
	"github.com/kalambet/lexis/internal/storage"
)

type mockFavorites struct {
	byPrefix func(prefix string) ([]model.WordInfo, error)
}

func (m *mockFavorites) FavoritesByPrefix(prefix string) ([]model.WordInfo, error) {
	if m.byPrefix == nil {
		return nil, nil
	}
	return m.byPrefix(prefix)
}

type mockDictionary struct {
	calls  atomic.Int32
	lookup func(ctx context.Context, word string) ([]dictionary.WordInfoDTO, error)
}

func (m *mockDictionary) Lookup(ctx context.Context, word string) ([]dictionary.WordInfoDTO, error) {
	m.calls.Add(1)
	return m.lookup(ctx, word)
}

type mockRecent struct {
	words []string
	err   error
}

func (m *mockRecent) AddRecentWord(word string, at time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.words = append(m.words, word)
	return nil
}

func ptr(s string) *string { return &s }

func runEntry(word string) dictionary.WordInfoDTO {
	return dictionary.WordInfoDTO{
		Word: ptr(word),
		Meanings: []dictionary.MeaningDTO{{
			PartOfSpeech: ptr("verb"),
			Definitions:  []dictionary.DefinitionDTO{{Definition: ptr("To move swiftly.")}},
		}},
	}
}

func okDictionary() *mockDictionary {
	return &mockDictionary{lookup: func(_ context.Context, word string) ([]dictionary.WordInfoDTO, error) {
		return []dictionary.WordInfoDTO{runEntry(word)}, nil
	}}
}

func TestResolveRemote(t *testing.T) {
	remote := okDictionary()
	recent := &mockRecent{}
	r := NewResolver(&mockFavorites{}, remote, recent, 0)

	states := resource.Drain(r.Resolve(context.Background(), "run", true))
	if len(states) != 3 {
		t.Fatalf("got %d states, want 3: %+v", len(states), states)
	}
	if states[0].State != resource.StateLoading || !states[0].Active {
		t.Errorf("first state = %+v, want Loading(true)", states[0])
	}
	if states[2].State != resource.StateLoading || states[2].Active {
		t.Errorf("last state = %+v, want Loading(false)", states[2])
	}

	got := states[1]
	if got.State != resource.StateSuccess {
		t.Fatalf("state = %v, want success", got.State)
	}
	if len(got.Value) != 1 || got.Value[0].Word != "run" || got.Value[0].Liked {
		t.Errorf("value = %+v", got.Value)
	}
	if got.Value[0].ID == "" {
		t.Error("remote entries must get fresh ids")
	}
	if len(recent.words) != 1 || recent.words[0] != "run" {
		t.Errorf("recent = %v, want [run]", recent.words)
	}
}

func TestResolveWithoutRecording(t *testing.T) {
	recent := &mockRecent{}
	r := NewResolver(&mockFavorites{}, okDictionary(), recent, 0)

	if _, err := resource.Collect(r.Resolve(context.Background(), "run", false)); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(recent.words) != 0 {
		t.Errorf("recent = %v, want nothing recorded", recent.words)
	}
}

func TestResolveFavoritesAreAuthoritative(t *testing.T) {
	var gotPrefix string
	favorites := &mockFavorites{byPrefix: func(prefix string) ([]model.WordInfo, error) {
		gotPrefix = prefix
		return []model.WordInfo{{ID: "fav-1", Word: "Run", Liked: true}}, nil
	}}
	remote := okDictionary()
	recent := &mockRecent{}
	r := NewResolver(favorites, remote, recent, 0)

	for i := 0; i < 3; i++ {
		infos, err := resource.Collect(r.Resolve(context.Background(), " run ", true))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if len(infos) != 1 || !infos[0].Liked || infos[0].ID != "fav-1" {
			t.Errorf("infos = %+v", infos)
		}
	}
	if gotPrefix != "run" {
		t.Errorf("prefix = %q, want trimmed word", gotPrefix)
	}
	if n := remote.calls.Load(); n != 0 {
		t.Errorf("remote called %d times, want 0", n)
	}
	if len(recent.words) != 0 {
		t.Errorf("favorite hits must not touch history: %v", recent.words)
	}
}

func TestResolveExactSkipsLongerFavorites(t *testing.T) {
	favorites := &mockFavorites{byPrefix: func(string) ([]model.WordInfo, error) {
		return []model.WordInfo{
			{ID: "fav-1", Word: "category", Liked: true},
			{ID: "fav-2", Word: "Cat", Liked: true},
		}, nil
	}}
	remote := okDictionary()
	r := NewResolver(favorites, remote, &mockRecent{}, 0)

	infos, err := resource.Collect(r.ResolveExact(context.Background(), "cat", false))
	if err != nil {
		t.Fatalf("ResolveExact: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != "fav-2" {
		t.Errorf("infos = %+v, want only the exact favorite", infos)
	}
	if remote.calls.Load() != 0 {
		t.Error("exact favorite went to the dictionary")
	}

	favorites.byPrefix = func(string) ([]model.WordInfo, error) {
		return []model.WordInfo{{ID: "fav-1", Word: "category", Liked: true}}, nil
	}
	infos, err = resource.Collect(r.ResolveExact(context.Background(), "cat", false))
	if err != nil {
		t.Fatalf("ResolveExact: %v", err)
	}
	if len(infos) != 1 || infos[0].Word != "cat" || infos[0].Liked {
		t.Errorf("infos = %+v, want the remote entry for cat", infos)
	}
	if remote.calls.Load() != 1 {
		t.Errorf("remote calls = %d, want 1", remote.calls.Load())
	}
}

func TestResolveFavoritesAgainstStore(t *testing.T) {
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	saved := dictionary.ToWordInfos([]dictionary.WordInfoDTO{runEntry("Running")})
	if err := s.SaveWordInfos(saved); err != nil {
		t.Fatalf("SaveWordInfos: %v", err)
	}

	remote := okDictionary()
	r := NewResolver(s, remote, s, 0)

	infos, err := resource.Collect(r.Resolve(context.Background(), "RUN", true))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != saved[0].ID || !infos[0].Liked {
		t.Errorf("infos = %+v", infos)
	}
	if remote.calls.Load() != 0 {
		t.Error("remote must not be called for a favorited prefix")
	}

	// A miss goes remote and is recorded.
	if _, err := resource.Collect(r.Resolve(context.Background(), "walk", true)); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if remote.calls.Load() != 1 {
		t.Errorf("remote calls = %d, want 1", remote.calls.Load())
	}
	recent, err := s.RecentWords("")
	if err != nil {
		t.Fatalf("RecentWords: %v", err)
	}
	if len(recent) != 1 || recent[0].Word != "walk" {
		t.Errorf("recent = %+v", recent)
	}
}

func TestResolveFavoritesErrorFallsBack(t *testing.T) {
	favorites := &mockFavorites{byPrefix: func(string) ([]model.WordInfo, error) {
		return nil, errors.New("database is locked")
	}}
	remote := okDictionary()
	r := NewResolver(favorites, remote, &mockRecent{}, 0)

	states := resource.Drain(r.Resolve(context.Background(), "run", false))
	if len(states) != 4 {
		t.Fatalf("states = %+v, want loading, error, success, loading", states)
	}
	if states[0].State != resource.StateLoading || !states[0].Active {
		t.Errorf("first = %+v, want Loading(true)", states[0])
	}
	if states[1].State != resource.StateError || states[1].Kind != resource.KindStorage {
		t.Errorf("second = %+v, want a storage error", states[1])
	}
	if !strings.Contains(states[1].Message, "database is locked") {
		t.Errorf("message = %q", states[1].Message)
	}
	if states[2].State != resource.StateSuccess || len(states[2].Value) == 0 {
		t.Errorf("third = %+v, want the remote entries", states[2])
	}
	if states[3].State != resource.StateLoading || states[3].Active {
		t.Errorf("last = %+v, want Loading(false)", states[3])
	}
	if remote.calls.Load() != 1 {
		t.Errorf("remote calls = %d, want 1", remote.calls.Load())
	}

	infos, err := resource.Collect(r.Resolve(context.Background(), "run", false))
	if err != nil || len(infos) == 0 {
		t.Errorf("Collect = %v, %v; the fallback success should win", infos, err)
	}
}

func TestResolveNotFound(t *testing.T) {
	remote := &mockDictionary{lookup: func(context.Context, string) ([]dictionary.WordInfoDTO, error) {
		return nil, resource.Wrap(resource.KindNotFound, dictionary.ErrNotFound)
	}}
	recent := &mockRecent{}
	r := NewResolver(&mockFavorites{}, remote, recent, 0)

	states := resource.Drain(r.Resolve(context.Background(), "qwxz", true))
	if len(states) != 3 {
		t.Fatalf("states = %+v", states)
	}
	if states[1].State != resource.StateError || states[1].Kind != resource.KindNotFound {
		t.Errorf("state = %+v, want not_found error", states[1])
	}
	if !strings.Contains(states[1].Message, dictionary.ErrNotFound.Error()) {
		t.Errorf("message = %q", states[1].Message)
	}
	if len(recent.words) != 0 {
		t.Errorf("failed lookups must not be recorded: %v", recent.words)
	}
}

func TestResolveTimeout(t *testing.T) {
	remote := &mockDictionary{lookup: func(ctx context.Context, _ string) ([]dictionary.WordInfoDTO, error) {
		<-ctx.Done()
		return nil, resource.Wrap(resource.KindTimeout, dictionary.ErrTimeout)
	}}
	r := NewResolver(&mockFavorites{}, remote, &mockRecent{}, 20*time.Millisecond)

	start := time.Now()
	_, err := resource.Collect(r.Resolve(context.Background(), "run", false))
	if resource.KindOf(err) != resource.KindTimeout {
		t.Fatalf("error = %v, want timeout", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("timeout was not applied")
	}
}

func TestResolveEmptyWord(t *testing.T) {
	remote := okDictionary()
	r := NewResolver(&mockFavorites{byPrefix: func(string) ([]model.WordInfo, error) {
		t.Error("favorites must not be queried for an empty word")
		return nil, nil
	}}, remote, &mockRecent{}, 0)

	_, err := resource.Collect(r.Resolve(context.Background(), "  ", true))
	if resource.KindOf(err) != resource.KindNotFound {
		t.Errorf("error = %v, want not_found", err)
	}
	if remote.calls.Load() != 0 {
		t.Error("remote must not be called for an empty word")
	}
}

func TestResolveRecordFailureStillSucceeds(t *testing.T) {
	r := NewResolver(&mockFavorites{}, okDictionary(), &mockRecent{err: errors.New("readonly")}, 0)

	infos, err := resource.Collect(r.Resolve(context.Background(), "run", true))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(infos) != 1 {
		t.Errorf("infos = %+v", infos)
	}
}
