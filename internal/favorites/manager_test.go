package favorites

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kalambet/lexis/internal/model"
	"github.com/kalambet/lexis/internal/resource"
	"github.com/kalambet/lexis/internal/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(id, word string) model.WordInfo {
	return model.WordInfo{
		ID:   id,
		Word: word,
		Meanings: []model.Meaning{{
			ID:           id + "-m",
			WordInfoID:   id,
			PartOfSpeech: "noun",
			Synonyms:     []string{"alias"},
			Definitions:  []model.Definition{{Text: "a definition of " + word}},
		}},
	}
}

func TestLikeListUnlike(t *testing.T) {
	s := openTestStore(t)
	m := NewManager(s)
	ctx := context.Background()

	states := resource.Drain(m.Like(ctx, []model.WordInfo{entry("1", "bank"), entry("2", "bank"), entry("3", "banana")}))
	if len(states) != 3 || states[1].State != resource.StateSuccess {
		t.Fatalf("Like states = %+v", states)
	}

	words, err := resource.Collect(m.List(ctx, "ban"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if want := []string{"banana", "bank"}; !reflect.DeepEqual(words, want) {
		t.Errorf("List = %v, want %v", words, want)
	}

	if _, err := resource.Collect(m.Unlike(ctx, []string{"BANK", " "})); err != nil {
		t.Fatalf("Unlike: %v", err)
	}
	words, _ = resource.Collect(m.List(ctx, ""))
	if want := []string{"banana"}; !reflect.DeepEqual(words, want) {
		t.Errorf("after unlike = %v, want %v", words, want)
	}

	infos, meanings, defs, err := s.CountFavorites()
	if err != nil {
		t.Fatalf("CountFavorites: %v", err)
	}
	if infos != 1 || meanings != 1 || defs != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", infos, meanings, defs)
	}
}

func TestListEmpty(t *testing.T) {
	m := NewManager(openTestStore(t))

	words, err := resource.Collect(m.List(context.Background(), "zzz"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if words == nil || len(words) != 0 {
		t.Errorf("List = %#v, want empty non-nil slice", words)
	}
}

func TestLikeRejectsIncompleteEntry(t *testing.T) {
	s := openTestStore(t)
	m := NewManager(s)

	bad := entry("", "orphan")
	_, err := resource.Collect(m.Like(context.Background(), []model.WordInfo{entry("1", "ok"), bad}))
	if resource.KindOf(err) != resource.KindStorage {
		t.Fatalf("error = %v, want storage error", err)
	}

	infos, _, _, _ := s.CountFavorites()
	if infos != 0 {
		t.Errorf("partial write left %d entries", infos)
	}
}

type failingStore struct{}

func (failingStore) SaveWordInfos([]model.WordInfo) error   { return errors.New("disk full") }
func (failingStore) DeleteFavorites([]string) (int, error)  { return 0, errors.New("disk full") }
func (failingStore) FavoriteWords(string) ([]string, error) { return nil, errors.New("disk full") }

func TestStorageErrors(t *testing.T) {
	m := NewManager(failingStore{})
	ctx := context.Background()

	if _, err := resource.Collect(m.Unlike(ctx, []string{"x"})); resource.KindOf(err) != resource.KindStorage {
		t.Errorf("Unlike error = %v", err)
	}
	if _, err := resource.Collect(m.List(ctx, "")); resource.KindOf(err) != resource.KindStorage {
		t.Errorf("List error = %v", err)
	}
}
