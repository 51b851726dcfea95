// Package netmon tracks whether the network is reachable.
package netmon

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	DefaultInterval = 30 * time.Second
	probeTimeout    = 5 * time.Second
)

// Status reports network reachability. The scheduler depends on this rather
// than on a concrete Monitor.
type Status interface {
	Online() bool
}

// Prober performs one reachability check.
type Prober func(ctx context.Context) bool

// HTTPProber treats any response below 500 from url as reachable.
func HTTPProber(client *http.Client, url string) Prober {
	if client == nil {
		client = &http.Client{}
	}
	return func(ctx context.Context) bool {
		ctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode < http.StatusInternalServerError
	}
}

// Monitor probes on an interval and publishes changes to subscribers.
type Monitor struct {
	probe    Prober
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	online bool
	known  bool
	subs   []chan bool
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Monitor. An interval <= 0 uses DefaultInterval.
func New(probe Prober, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{probe: probe, interval: interval, logger: slog.Default()}
}

// Online returns the result of the latest probe. It is false until the
// first probe completes.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe returns a channel that receives the current state, once known,
// and every change after it. The channel is closed by Stop. A slow subscriber
// only sees the latest state.
func (m *Monitor) Subscribe() <-chan bool {
	ch := make(chan bool, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.known {
		ch <- m.online
	}
	m.subs = append(m.subs, ch)
	return ch
}

// Check probes once and records the result.
func (m *Monitor) Check(ctx context.Context) bool {
	online := m.probe(ctx)
	m.set(online)
	return online
}

// Start probes immediately and then every interval until Stop or ctx is done.
// Calling Start on a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			m.Check(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends monitoring and closes every subscription.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = nil
	m.cancel = nil
}

func (m *Monitor) set(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.known && m.online == online {
		return
	}
	m.known = true
	m.online = online
	m.logger.Info("network status changed", "online", online)
	for _, ch := range m.subs {
		// Replace a stale unread value with the newest one.
		select {
		case <-ch:
		default:
		}
		ch <- online
	}
}
