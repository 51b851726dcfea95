package resource

import "context"

// streamBuffer covers Loading(true), two errors and Loading(false) so that
// typical producers never block on a slow consumer.
const streamBuffer = 4

// Emitter sends intermediate values of a stream.
type Emitter[T any] func(Resource[T])

// Run starts fn on its own goroutine and returns the stream it produces.
// Run emits Loading(true) before fn and Loading(false) after it, then closes
// the channel. fn emits Success and Error values in between.
//
// When ctx is cancelled, values that cannot be delivered immediately are
// dropped so the producer never leaks.
func Run[T any](ctx context.Context, fn func(ctx context.Context, emit Emitter[T])) <-chan Resource[T] {
	ch := make(chan Resource[T], streamBuffer)
	send := func(r Resource[T]) {
		select {
		case ch <- r:
			return
		default:
		}
		select {
		case ch <- r:
		case <-ctx.Done():
		}
	}
	go func() {
		defer close(ch)
		send(Loading[T](true))
		defer send(Loading[T](false))
		fn(ctx, send)
	}()
	return ch
}

// Collect drains s and returns the Success value. If the stream carried only
// errors, the returned error is a *Failure describing the last one.
func Collect[T any](s <-chan Resource[T]) (T, error) {
	var (
		value   T
		ok      bool
		failure *Failure
	)
	for r := range s {
		switch r.State {
		case StateSuccess:
			value, ok = r.Value, true
		case StateError:
			if failure == nil {
				failure = &Failure{}
			}
			failure.Kind = r.Kind
			failure.Message = r.Message
			failure.Messages = append(failure.Messages, r.Message)
		}
	}
	if ok {
		return value, nil
	}
	if failure != nil {
		return value, failure
	}
	return value, ErrNoResult
}

// Drain reads s to completion and returns every value received.
func Drain[T any](s <-chan Resource[T]) []Resource[T] {
	var out []Resource[T]
	for r := range s {
		out = append(out, r)
	}
	return out
}
