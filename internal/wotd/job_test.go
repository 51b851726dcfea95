package wotd

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kalambet/lexis/internal/dictionary"
	"github.com/kalambet/lexis/internal/model"
	"github.com/kalambet/lexis/internal/notify"
	"github.com/kalambet/lexis/internal/resource"
)

type mockRandom struct {
	mu    sync.Mutex
	calls int
	next  func(call int) (string, error)
}

func (m *mockRandom) RandomWord(context.Context) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.mu.Unlock()
	return m.next(call)
}

type mockResolver struct {
	records []bool
	resolve func(word string) ([]model.WordInfo, error)
}

func (m *mockResolver) Resolve(ctx context.Context, word string, recordRecent bool) <-chan resource.Resource[[]model.WordInfo] {
	m.records = append(m.records, recordRecent)
	return resource.Run(ctx, func(ctx context.Context, emit resource.Emitter[[]model.WordInfo]) {
		infos, err := m.resolve(word)
		if err != nil {
			emit(resource.FromError[[]model.WordInfo](err))
			return
		}
		emit(resource.Success(infos))
	})
}

type mockSlot struct {
	saved []Pair
	err   error
}

func (m *mockSlot) Save(word, meaning string) (Pair, error) {
	if m.err != nil {
		return Pair{}, m.err
	}
	p := Pair{Word: word, Meaning: meaning}
	m.saved = append(m.saved, p)
	return p, nil
}

type mockNotifier struct {
	sent []notify.Notification
	err  error
}

func (m *mockNotifier) Notify(_ context.Context, n notify.Notification) error {
	m.sent = append(m.sent, n)
	return m.err
}

func defined(word, text string) []model.WordInfo {
	return []model.WordInfo{{
		ID:   "id-" + word,
		Word: word,
		Meanings: []model.Meaning{{
			PartOfSpeech: "noun",
			Definitions:  []model.Definition{{Text: text}},
		}},
	}}
}

func numbered(call int) (string, error) {
	return []string{"", "alpha", "beta", "gamma", "delta", "epsilon", "zeta"}[call], nil
}

func TestRunAllNotFoundIsFailure(t *testing.T) {
	random := &mockRandom{next: numbered}
	resolver := &mockResolver{resolve: func(string) ([]model.WordInfo, error) {
		return nil, resource.Wrap(resource.KindNotFound, dictionary.ErrNotFound)
	}}
	slot := &mockSlot{}
	notifier := &mockNotifier{}

	res := NewJob(random, resolver, slot, notifier, 0).Run(context.Background())

	if res.Outcome != OutcomeFailure {
		t.Fatalf("outcome = %v, want failure", res.Outcome)
	}
	if !errors.Is(res.Err, ErrExhausted) {
		t.Errorf("err = %v, want ErrExhausted", res.Err)
	}
	if random.calls != 5 || len(resolver.records) != 5 {
		t.Errorf("random calls = %d, resolves = %d, want 5 each", random.calls, len(resolver.records))
	}
	if len(slot.saved) != 0 || len(notifier.sent) != 0 {
		t.Errorf("failure must not write or notify: %+v %+v", slot.saved, notifier.sent)
	}
}

func TestRunAcceptsThirdAttempt(t *testing.T) {
	random := &mockRandom{next: numbered}
	resolver := &mockResolver{resolve: func(word string) ([]model.WordInfo, error) {
		switch word {
		case "alpha":
			return nil, resource.Wrap(resource.KindNotFound, dictionary.ErrNotFound)
		case "beta":
			return defined(word, ""), nil
		default:
			return defined(word, "The third letter of the Greek alphabet."), nil
		}
	}}
	slot := &mockSlot{}
	notifier := &mockNotifier{}

	res := NewJob(random, resolver, slot, notifier, 5).Run(context.Background())

	if res.Outcome != OutcomeSuccess || res.Attempts != 3 {
		t.Fatalf("result = %+v, want success on attempt 3", res)
	}
	want := Pair{Word: "gamma", Meaning: "The third letter of the Greek alphabet."}
	if len(slot.saved) != 1 || slot.saved[0] != want {
		t.Errorf("saved = %+v, want %+v", slot.saved, want)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("notifications = %d, want exactly 1", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.Payload != "gamma" || n.Body != want.Meaning || n.Title != "Word of the Day: gamma" {
		t.Errorf("notification = %+v", n)
	}
	for i, rec := range resolver.records {
		if rec {
			t.Errorf("resolve %d recorded history", i)
		}
	}
}

func TestRunRejectsPlaceholders(t *testing.T) {
	random := &mockRandom{next: numbered}
	texts := map[string]string{
		"alpha": dictionary.MissingDefinition,
		"beta":  dictionary.ErrNotFound.Error(),
		"gamma": "   ",
		"delta": dictionary.MissingWord,
	}
	resolver := &mockResolver{resolve: func(word string) ([]model.WordInfo, error) {
		if text, ok := texts[word]; ok {
			return defined(word, text), nil
		}
		return defined(word, "fifth"), nil
	}}
	slot := &mockSlot{}

	res := NewJob(random, resolver, slot, nil, 5).Run(context.Background())
	if res.Outcome != OutcomeSuccess || res.Pair.Word != "epsilon" || res.Attempts != 5 {
		t.Errorf("result = %+v, want epsilon on attempt 5", res)
	}
}

func TestRunRandomErrorsConsumeAttempts(t *testing.T) {
	random := &mockRandom{next: func(int) (string, error) { return "", errors.New("service down") }}
	resolver := &mockResolver{resolve: func(string) ([]model.WordInfo, error) {
		t.Error("resolve should not be called without a candidate")
		return nil, nil
	}}

	res := NewJob(random, resolver, &mockSlot{}, nil, 3).Run(context.Background())
	if res.Outcome != OutcomeFailure || random.calls != 3 {
		t.Errorf("result = %+v after %d calls", res, random.calls)
	}
}

func TestRunStorageErrorRequestsRetry(t *testing.T) {
	random := &mockRandom{next: numbered}
	resolver := &mockResolver{resolve: func(word string) ([]model.WordInfo, error) { return defined(word, "text"), nil }}
	notifier := &mockNotifier{}

	res := NewJob(random, resolver, &mockSlot{err: errors.New("disk full")}, notifier, 5).Run(context.Background())
	if res.Outcome != OutcomeRetry {
		t.Errorf("outcome = %v, want retry", res.Outcome)
	}
	if len(notifier.sent) != 0 {
		t.Error("must not notify when the pair was not stored")
	}
}

func TestRunNotifyErrorKeepsSavedPair(t *testing.T) {
	random := &mockRandom{next: numbered}
	resolver := &mockResolver{resolve: func(word string) ([]model.WordInfo, error) { return defined(word, "text"), nil }}
	slot := &mockSlot{}
	notifier := &mockNotifier{err: errors.New("no bus")}

	res := NewJob(random, resolver, slot, notifier, 5).Run(context.Background())
	if res.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %v, want success", res.Outcome)
	}
	if len(slot.saved) != 1 || res.Pair != slot.saved[0] {
		t.Errorf("saved = %+v, pair = %+v; want the one stored pair", slot.saved, res.Pair)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("notifications = %d, want 1", len(notifier.sent))
	}
}

func TestRunPanicRequestsRetry(t *testing.T) {
	random := &mockRandom{next: func(int) (string, error) { panic("boom") }}

	res := NewJob(random, &mockResolver{}, &mockSlot{}, nil, 5).Run(context.Background())
	if res.Outcome != OutcomeRetry || res.Err == nil {
		t.Errorf("result = %+v, want retry with error", res)
	}
}

func TestRunCancelledRequestsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	random := &mockRandom{next: numbered}
	res := NewJob(random, &mockResolver{}, &mockSlot{}, nil, 5).Run(ctx)
	if res.Outcome != OutcomeRetry {
		t.Errorf("outcome = %v, want retry", res.Outcome)
	}
	if random.calls != 0 {
		t.Errorf("random calls = %d, want 0", random.calls)
	}
}

func TestAcceptable(t *testing.T) {
	cases := []struct {
		word, meaning string
		want          bool
	}{
		{"run", "To move swiftly.", true},
		{"run", "", false},
		{"", "text", false},
		{"run", dictionary.MissingDefinition, false},
		{"run", dictionary.ErrNotFound.Error(), false},
		{dictionary.MissingWord, "text", false},
	}
	for _, c := range cases {
		if got := Acceptable(c.word, c.meaning); got != c.want {
			t.Errorf("Acceptable(%q, %q) = %v, want %v", c.word, c.meaning, got, c.want)
		}
	}
}
