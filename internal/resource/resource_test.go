package resource

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestRunWrapsWithLoading(t *testing.T) {
	s := Run(context.Background(), func(ctx context.Context, emit Emitter[int]) {
		emit(Success(42))
	})

	got := Drain(s)
	if len(got) != 3 {
		t.Fatalf("got %d values, want 3: %+v", len(got), got)
	}
	if got[0].State != StateLoading || !got[0].Active {
		t.Errorf("first = %+v, want Loading(true)", got[0])
	}
	if got[1].State != StateSuccess || got[1].Value != 42 {
		t.Errorf("second = %+v, want Success(42)", got[1])
	}
	if got[2].State != StateLoading || got[2].Active {
		t.Errorf("last = %+v, want Loading(false)", got[2])
	}
}

func TestRunEmptyProducer(t *testing.T) {
	s := Run(context.Background(), func(ctx context.Context, emit Emitter[string]) {})

	got := Drain(s)
	if len(got) != 2 {
		t.Fatalf("got %d values, want 2", len(got))
	}
	if got[1].State != StateLoading || got[1].Active {
		t.Errorf("last = %+v, want Loading(false)", got[1])
	}
}

func TestCollectSuccess(t *testing.T) {
	s := Run(context.Background(), func(ctx context.Context, emit Emitter[string]) {
		emit(Error[string](KindStorage, "favorites unavailable"))
		emit(Success("ok"))
	})

	v, err := Collect(s)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if v != "ok" {
		t.Errorf("value = %q, want %q", v, "ok")
	}
}

func TestCollectFailure(t *testing.T) {
	s := Run(context.Background(), func(ctx context.Context, emit Emitter[string]) {
		emit(Error[string](KindStorage, "first"))
		emit(Error[string](KindNotFound, "second"))
	})

	_, err := Collect(s)
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("error = %v, want *Failure", err)
	}
	if f.Kind != KindNotFound {
		t.Errorf("Kind = %v, want %v", f.Kind, KindNotFound)
	}
	if len(f.Messages) != 2 {
		t.Errorf("Messages = %v, want 2 entries", f.Messages)
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("KindOf(failure) = %v, want %v", KindOf(err), KindNotFound)
	}
}

func TestCollectNoResult(t *testing.T) {
	s := Run(context.Background(), func(ctx context.Context, emit Emitter[int]) {})
	if _, err := Collect(s); !errors.Is(err, ErrNoResult) {
		t.Errorf("error = %v, want ErrNoResult", err)
	}
}

func TestKindOf(t *testing.T) {
	base := errors.New("boom")
	cases := []struct {
		err  error
		want Kind
	}{
		{nil, KindUnknown},
		{base, KindUnknown},
		{Wrap(KindParse, base), KindParse},
		{fmt.Errorf("outer: %w", Wrap(KindStorage, base)), KindStorage},
		{fmt.Errorf("call: %w", context.DeadlineExceeded), KindTimeout},
	}
	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Errorf("KindOf(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(KindStorage, nil) != nil {
		t.Error("Wrap(kind, nil) should be nil")
	}
}

func TestRunCancelledDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := Run(ctx, func(ctx context.Context, emit Emitter[int]) {
		for i := 0; i < 100; i++ {
			emit(Error[int](KindUnknown, "spam"))
		}
	})

	// The producer must finish even though nobody reads past the buffer.
	for range s {
	}
}
