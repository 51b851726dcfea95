// Package debounce runs keyed single-flight work after a quiet period.
//
// Scheduling work under a key cancels the pending timer and the in-flight
// run of any earlier work under the same key, so at most one run per key is
// active at a time.
package debounce

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

// Group holds the pending and running work of every key.
type Group struct {
	mu      sync.Mutex
	seq     uint64
	entries map[string]*entry
	wg      sync.WaitGroup
	closed  bool
}

func New() *Group {
	return &Group{entries: make(map[string]*entry)}
}

// Do schedules fn to run under key after delay. fn receives a context that is
// cancelled when ctx is done, when newer work is scheduled under key, or when
// the group is stopped. Do returns immediately.
func (g *Group) Do(ctx context.Context, key string, delay time.Duration, fn func(ctx context.Context)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}

	g.cancelLocked(key)

	runCtx, cancel := context.WithCancel(ctx)
	g.seq++
	e := &entry{seq: g.seq, cancel: cancel}
	g.entries[key] = e

	g.wg.Add(1)
	e.timer = time.AfterFunc(delay, func() {
		defer g.wg.Done()
		defer g.finish(key, e.seq)
		if runCtx.Err() != nil {
			return
		}
		fn(runCtx)
	})
}

// Cancel drops pending or running work under key.
func (g *Group) Cancel(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked(key)
}

// Pending reports whether work is scheduled or running under key.
func (g *Group) Pending(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.entries[key]
	return ok
}

// Stop cancels all work and waits for running callbacks to return.
func (g *Group) Stop() {
	g.mu.Lock()
	g.closed = true
	for key := range g.entries {
		g.cancelLocked(key)
	}
	g.mu.Unlock()
	g.wg.Wait()
}

func (g *Group) cancelLocked(key string) {
	e, ok := g.entries[key]
	if !ok {
		return
	}
	e.cancel()
	if e.timer.Stop() {
		// The callback will never run; release its slot.
		g.wg.Done()
	}
	delete(g.entries, key)
}

func (g *Group) finish(key string, seq uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.entries[key]; ok && e.seq == seq {
		e.cancel()
		delete(g.entries, key)
	}
}
