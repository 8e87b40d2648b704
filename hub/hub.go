// File: hub/hub.go
// Author: momentics <momentics@gmail.com>
//
// Central notification dispatcher for observable containers.

// Package hub implements the notification hub. Trigger is cheap and
// synchronous on the caller's thread: it appends the container to a FIFO and
// wakes the dispatch workers. Observer callbacks run on the hub's own named
// worker threads, which hold a real-time priority strictly above the timer
// reactor's service thread so dispatch is never starved by timer servicing.
package hub

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/momentics/statemux/api"
	"github.com/momentics/statemux/internal/log"
	"github.com/momentics/statemux/internal/sched"
)

// DefaultPriority is the SCHED_FIFO priority of the dispatch workers. The
// timer reactor defaults to one level below.
const DefaultPriority = 32

// LinkFn is an observer callback. It runs on a hub worker thread and must not
// block indefinitely.
type LinkFn func(src api.Observable)

// Options configures a Hub.
type Options struct {
	// Workers is the number of dispatch threads. Defaults to 2.
	Workers int
	// Priority is the SCHED_FIFO priority of the workers. Defaults to
	// DefaultPriority. Failure to apply it is logged and non-fatal.
	Priority int
	// Logger defaults to the package console logger.
	Logger *slog.Logger
}

// Hub tracks containers and their observer links and dispatches change
// notifications.
type Hub struct {
	logger *slog.Logger
	prio   int

	mu   sync.Mutex // guards pending
	pend *queue.Queue

	wake   chan struct{}
	stop   chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool

	lmu   sync.RWMutex // guards links
	links map[api.Observable]map[string]LinkFn
}

// New creates a hub and starts its dispatch workers.
func New(opts Options) *Hub {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.Priority <= 0 {
		opts.Priority = DefaultPriority
	}
	if opts.Logger == nil {
		opts.Logger = log.Def
	}
	h := &Hub{
		logger: opts.Logger,
		prio:   opts.Priority,
		pend:   queue.New(),
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		links:  make(map[api.Observable]map[string]LinkFn),
	}
	h.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go h.worker(i)
	}
	return h
}

// Link registers fn under name as an observer of src. Names are unique per
// container.
func (h *Hub) Link(name string, src api.Observable, fn LinkFn) error {
	h.lmu.Lock()
	defer h.lmu.Unlock()
	m, ok := h.links[src]
	if !ok {
		m = make(map[string]LinkFn)
		h.links[src] = m
	}
	if _, dup := m[name]; dup {
		return api.ErrAlreadyExists
	}
	m[name] = fn
	return nil
}

// Unlink removes the named observer of src.
func (h *Hub) Unlink(name string, src api.Observable) error {
	h.lmu.Lock()
	defer h.lmu.Unlock()
	m, ok := h.links[src]
	if !ok {
		return api.ErrNotFound
	}
	if _, ok := m[name]; !ok {
		return api.ErrNotFound
	}
	delete(m, name)
	if len(m) == 0 {
		delete(h.links, src)
	}
	return nil
}

// Trigger queues a change notification for o and returns immediately. Calls
// after Close are dropped.
func (h *Hub) Trigger(o api.Observable) {
	if h.closed.Load() {
		h.logger.Debug("trigger after close dropped", "container", o.Name())
		return
	}
	h.mu.Lock()
	h.pend.Add(o)
	h.mu.Unlock()

	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Close stops the dispatch workers and waits for them to exit. Notifications
// still queued are dispatched before shutdown completes.
func (h *Hub) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return api.ErrClosed
	}
	close(h.stop)
	h.wg.Wait()
	return nil
}

func (h *Hub) worker(id int) {
	defer h.wg.Done()

	runtime.LockOSThread()
	name := fmt.Sprintf("HUB-THRD-%d", id)
	if err := sched.SetName(name); err != nil {
		h.logger.Warn("could not set hub thread name", "name", name, "error", err)
	}
	if err := sched.SetRealtime(h.prio); err != nil {
		h.logger.Warn("could not set hub thread priority", "name", name, "priority", h.prio, "error", err)
	}
	h.logger.Info("hub worker started", "name", name)

	for {
		select {
		case <-h.stop:
			h.drain()
			h.logger.Info("hub worker stopped", "name", name)
			return
		case <-h.wake:
			h.drain()
		}
	}
}

func (h *Hub) drain() {
	for {
		h.mu.Lock()
		if h.pend.Length() == 0 {
			h.mu.Unlock()
			return
		}
		o := h.pend.Remove().(api.Observable)
		h.mu.Unlock()
		h.dispatch(o)
	}
}

// dispatch runs o's observers outside the links lock.
func (h *Hub) dispatch(o api.Observable) {
	h.lmu.RLock()
	fns := make([]LinkFn, 0, len(h.links[o]))
	for _, fn := range h.links[o] {
		fns = append(fns, fn)
	}
	h.lmu.RUnlock()

	for _, fn := range fns {
		fn(o)
	}
}
