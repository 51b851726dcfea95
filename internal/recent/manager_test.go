package recent

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/kalambet/lexis/internal/resource"
	"github.com/kalambet/lexis/internal/storage"
)

func newTestManager(t *testing.T) (*Manager, *storage.Store) {
	t.Helper()
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	m := NewManager(s)
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return m, s
}

func record(t *testing.T, m *Manager, words ...string) {
	t.Helper()
	for _, w := range words {
		if _, err := resource.Collect(m.Record(context.Background(), w)); err != nil {
			t.Fatalf("Record(%q): %v", w, err)
		}
	}
}

func list(t *testing.T, m *Manager, prefix string) []string {
	t.Helper()
	words, err := resource.Collect(m.List(context.Background(), prefix))
	if err != nil {
		t.Fatalf("List(%q): %v", prefix, err)
	}
	return words
}

func TestRecordRefreshesTimestamp(t *testing.T) {
	m, _ := newTestManager(t)

	record(t, m, "apple", "banana", "apricot", "apple")

	if got, want := list(t, m, ""), []string{"apple", "apricot", "banana"}; !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
	if got, want := list(t, m, "AP"), []string{"apple", "apricot"}; !reflect.DeepEqual(got, want) {
		t.Errorf("List(AP) = %v, want %v", got, want)
	}
}

func TestDeleteAndClear(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	record(t, m, "one", "two", "three")

	if _, err := resource.Collect(m.Delete(ctx, "two")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, want := list(t, m, ""), []string{"three", "one"}; !reflect.DeepEqual(got, want) {
		t.Errorf("after delete = %v, want %v", got, want)
	}

	// Deleting a word that is not there is fine.
	if _, err := resource.Collect(m.Delete(ctx, "missing")); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}

	if _, err := resource.Collect(m.Delete(ctx, "")); err != nil {
		t.Fatalf("Delete(\"\"): %v", err)
	}
	if got := list(t, m, ""); len(got) != 0 {
		t.Errorf("empty delete should clear, got %v", got)
	}

	record(t, m, "again")
	if _, err := resource.Collect(m.Clear(ctx)); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := list(t, m, ""); len(got) != 0 {
		t.Errorf("after Clear = %v", got)
	}
}

func TestRecordIgnoresBlank(t *testing.T) {
	m, _ := newTestManager(t)

	record(t, m, "  ")
	if got := list(t, m, ""); len(got) != 0 {
		t.Errorf("List = %v, want empty", got)
	}
}

func TestStreamShape(t *testing.T) {
	m, _ := newTestManager(t)

	states := resource.Drain(m.Clear(context.Background()))
	if len(states) != 3 {
		t.Fatalf("states = %+v", states)
	}
	if states[0] != resource.Loading[struct{}](true) || states[2] != resource.Loading[struct{}](false) {
		t.Errorf("stream not wrapped in loading states: %+v", states)
	}
}
