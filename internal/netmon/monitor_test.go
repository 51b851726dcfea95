package netmon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPProber(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusNoContent)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	probe := HTTPProber(srv.Client(), srv.URL)
	if !probe(context.Background()) {
		t.Error("204 should count as online")
	}

	status.Store(http.StatusNotFound)
	if !probe(context.Background()) {
		t.Error("404 still proves the network is reachable")
	}

	status.Store(http.StatusBadGateway)
	if probe(context.Background()) {
		t.Error("502 should count as offline")
	}

	srv.Close()
	if probe(context.Background()) {
		t.Error("closed server should count as offline")
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	var up atomic.Bool
	m := New(func(context.Context) bool { return up.Load() }, time.Hour)

	sub := m.Subscribe()
	if m.Online() {
		t.Error("monitor should start offline")
	}

	up.Store(true)
	m.Check(context.Background())
	if got := <-sub; !got {
		t.Error("want online notification")
	}

	// Unchanged state is not re-published.
	m.Check(context.Background())
	select {
	case v := <-sub:
		t.Errorf("unexpected notification %v", v)
	default:
	}

	up.Store(false)
	m.Check(context.Background())
	if got := <-sub; got {
		t.Error("want offline notification")
	}

	late := m.Subscribe()
	if got := <-late; got {
		t.Error("late subscriber should receive the current state")
	}

	m.Stop()
	if _, ok := <-sub; ok {
		t.Error("subscription should be closed by Stop")
	}
}

func TestSlowSubscriberSeesLatest(t *testing.T) {
	var up atomic.Bool
	m := New(func(context.Context) bool { return up.Load() }, time.Hour)
	sub := m.Subscribe()

	for _, v := range []bool{true, false, true} {
		up.Store(v)
		m.Check(context.Background())
	}
	if got := <-sub; !got {
		t.Error("want latest state true")
	}
	select {
	case v := <-sub:
		t.Errorf("only the latest state should be buffered, got extra %v", v)
	default:
	}
}

func TestStartProbesImmediately(t *testing.T) {
	var probes atomic.Int32
	m := New(func(context.Context) bool {
		probes.Add(1)
		return true
	}, 10*time.Millisecond)

	sub := m.Subscribe()
	m.Start(context.Background())
	m.Start(context.Background())

	select {
	case v := <-sub:
		if !v {
			t.Error("want online")
		}
	case <-time.After(time.Second):
		t.Fatal("no probe after Start")
	}

	time.Sleep(50 * time.Millisecond)
	m.Stop()
	n := probes.Load()
	if n < 2 {
		t.Errorf("probes = %d, want periodic probing", n)
	}

	time.Sleep(30 * time.Millisecond)
	if probes.Load() != n {
		t.Error("probing continued after Stop")
	}
	if !m.Online() {
		t.Error("Online should keep the last result")
	}
}
