//go:build linux
// +build linux

// File: reactor/reactor_linux_test.go
// Author: momentics <momentics@gmail.com>
//
// End-to-end test against the real kernel: timerfd handles multiplexed by
// epoll, dispatched through a live hub.

package reactor_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/statemux/api"
	"github.com/momentics/statemux/hub"
	"github.com/momentics/statemux/internal/log"
	"github.com/momentics/statemux/observable"
	"github.com/momentics/statemux/reactor"
	"github.com/momentics/statemux/timer"
)

func TestPeriodicTimersEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("wall-clock test")
	}

	h := hub.New(hub.Options{Logger: log.Noop})
	defer h.Close()
	r := reactor.New(h, reactor.Options{Logger: log.Noop})
	defer r.Close()
	if !r.Running() {
		t.Fatal("reactor failed to start on linux")
	}

	resA, err := timer.New(10*time.Millisecond, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("timer a: %v", err)
	}
	defer resA.Close()
	resB, err := timer.New(50*time.Millisecond, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("timer b: %v", err)
	}
	defer resB.Close()

	dotA := observable.New("timers.a", h, resA)
	dotB := observable.New("timers.b", h, resB)

	var firedA, firedB atomic.Int64
	if err := h.Link("count-a", dotA, func(api.Observable) { firedA.Add(1) }); err != nil {
		t.Fatalf("link a: %v", err)
	}
	if err := h.Link("count-b", dotB, func(api.Observable) { firedB.Add(1) }); err != nil {
		t.Fatalf("link b: %v", err)
	}

	// Concurrent registration from two goroutines.
	var wg sync.WaitGroup
	for _, dot := range []*observable.Object[*timer.Resource]{dotA, dotB} {
		wg.Add(1)
		go func(dot *observable.Object[*timer.Resource]) {
			defer wg.Done()
			if err := r.Register(dot); err != nil {
				t.Errorf("register %s: %v", dot.Name(), err)
			}
		}(dot)
	}
	wg.Wait()

	time.Sleep(120 * time.Millisecond)

	if err := r.Unregister(dotA); err != nil {
		t.Errorf("unregister a: %v", err)
	}
	if err := r.Unregister(dotB); err != nil {
		t.Errorf("unregister b: %v", err)
	}
	// Let queued notifications drain.
	time.Sleep(20 * time.Millisecond)

	a, b := firedA.Load(), firedB.Load()
	if a < 5 || a > 24 {
		t.Errorf("10ms timer fired %d times in ~120ms, expected roughly 12", a)
	}
	if b < 1 || b > 6 {
		t.Errorf("50ms timer fired %d times in ~120ms, expected roughly 2", b)
	}
	if a <= b {
		t.Errorf("fast timer (%d) should outpace slow timer (%d)", a, b)
	}
}
