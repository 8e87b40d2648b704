// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Timer reactor: registration protocol, lifecycle and the service loop.

package reactor

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"braces.dev/errtrace"
	"github.com/qmuntal/stateless"

	"github.com/momentics/statemux/api"
	"github.com/momentics/statemux/internal/log"
	"github.com/momentics/statemux/internal/poll"
	"github.com/momentics/statemux/internal/sched"
	"github.com/momentics/statemux/observable"
	"github.com/momentics/statemux/timer"
)

const (
	// DefaultMaxEvents bounds the number of readiness events reported per
	// wait. The kernel-imposed ceiling varies by platform; on Linux see
	// /proc/sys/fs/epoll/max_user_watches.
	DefaultMaxEvents = 256

	// DefaultPriority is the SCHED_FIFO priority of the service thread, one
	// level below the hub's dispatch workers and above default scheduling.
	DefaultPriority = 31

	// threadName is the service thread's kernel name.
	threadName = "TMX-THRD-0"
)

// Lifecycle states and triggers.
const (
	stateUninitialized = "uninitialized"
	stateRunning       = "running"
	stateStopped       = "stopped"

	triggerStart = "start"
	triggerStop  = "stop"
)

// Options configures a TimerReactor.
type Options struct {
	// MaxEvents bounds simultaneously reported readiness events. Defaults to
	// DefaultMaxEvents.
	MaxEvents int
	// Priority is the service thread's SCHED_FIFO priority. Must stay below
	// the hub's dispatch priority. Defaults to DefaultPriority. Failure to
	// apply it is logged and non-fatal.
	Priority int
	// Logger defaults to the package console logger.
	Logger *slog.Logger
	// Kernel overrides the readiness surface, mainly for tests. Defaults to
	// the native host kernel.
	Kernel api.TimerKernel
}

// Stats is a point-in-time view of reactor internals.
type Stats struct {
	// Watched is the number of currently registered timer handles.
	Watched int
	// Dropped counts fires that raced a concurrent unregister and were
	// silently discarded.
	Dropped uint64
}

// TimerReactor multiplexes kernel timer handles on one dedicated service
// thread and notifies the hub when they fire. A construction failure leaves
// the reactor permanently inert: every operation returns api.ErrNotRunning
// and Close is a safe no-op.
type TimerReactor struct {
	logger    *slog.Logger
	kernel    api.TimerKernel
	sink      api.Trigger
	maxEvents int
	prio      int

	lifecycle *stateless.StateMachine

	stopH api.Handle
	muxH  api.Handle

	mu    sync.Mutex // guards watch; never held across the sink call
	watch map[api.Handle]api.Observable

	done    chan struct{}
	dropped atomic.Uint64
}

// New creates a reactor delivering into sink and starts its service thread.
// The returned reactor is never nil; if any construction step fails the
// failure is logged and the reactor is inert.
func New(sink api.Trigger, opts Options) *TimerReactor {
	if opts.MaxEvents <= 0 {
		opts.MaxEvents = DefaultMaxEvents
	}
	if opts.Priority <= 0 {
		opts.Priority = DefaultPriority
	}
	if opts.Logger == nil {
		opts.Logger = log.Def
	}

	r := &TimerReactor{
		logger:    opts.Logger,
		kernel:    opts.Kernel,
		sink:      sink,
		maxEvents: opts.MaxEvents,
		prio:      opts.Priority,
		lifecycle: newLifecycle(),
		stopH:     api.InvalidHandle,
		muxH:      api.InvalidHandle,
		watch:     make(map[api.Handle]api.Observable),
		done:      make(chan struct{}),
	}

	if r.kernel == nil {
		k, err := poll.Native()
		if err != nil {
			r.logger.Error("timer reactor unavailable on this platform", "error", err)
			return r
		}
		r.kernel = k
	}

	stopH, err := r.kernel.NewSignal()
	if err != nil {
		r.logger.Error("could not create stop signal handle", "error", err)
		return r
	}
	muxH, err := r.kernel.NewMultiplexer()
	if err != nil {
		r.logger.Error("could not create readiness multiplexer", "error", err)
		r.kernel.Close(stopH)
		return r
	}
	// Arm the stop handle first so destruction can always interrupt the wait.
	if err := r.kernel.Arm(muxH, stopH); err != nil {
		r.logger.Error("could not arm stop signal handle", "error", err)
		r.kernel.Close(muxH)
		r.kernel.Close(stopH)
		return r
	}

	r.stopH = stopH
	r.muxH = muxH
	if err := r.lifecycle.Fire(triggerStart); err != nil {
		// Unreachable: start is always permitted from uninitialized.
		r.logger.Error("lifecycle start rejected", "error", err)
		return r
	}
	go r.run()
	return r
}

func newLifecycle() *stateless.StateMachine {
	sm := stateless.NewStateMachine(stateUninitialized)
	sm.Configure(stateUninitialized).Permit(triggerStart, stateRunning)
	sm.Configure(stateRunning).Permit(triggerStop, stateStopped)
	return sm
}

// Running reports whether the service thread is active.
func (r *TimerReactor) Running() bool {
	return r.lifecycle.MustState() == stateRunning
}

// Register arms dot's timer handle with the multiplexer. The map entry is
// inserted before arming so the service loop can never observe an armed
// handle missing from the map; a failed arming rolls the entry back.
func (r *TimerReactor) Register(dot *observable.Object[*timer.Resource]) error {
	if !r.Running() {
		return api.ErrNotRunning
	}
	h := observable.Get(dot, func(t *timer.Resource) api.Handle { return t.Handle() })

	r.mu.Lock()
	if _, dup := r.watch[h]; dup {
		r.mu.Unlock()
		return api.ErrAlreadyExists
	}
	r.watch[h] = dot
	r.mu.Unlock()

	if err := r.kernel.Arm(r.muxH, h); err != nil {
		r.mu.Lock()
		delete(r.watch, h)
		r.mu.Unlock()
		r.logger.Error("could not arm timer handle", "handle", int(h), "error", err)
		return errtrace.Wrap(err)
	}
	return nil
}

// Unregister disarms dot's timer handle and removes its map entry. The entry
// is erased even when disarming fails: a stale map reference is worse than a
// leaked kernel arming.
func (r *TimerReactor) Unregister(dot *observable.Object[*timer.Resource]) error {
	if !r.Running() {
		return api.ErrNotRunning
	}
	h := observable.Get(dot, func(t *timer.Resource) api.Handle { return t.Handle() })

	var err error
	if derr := r.kernel.Disarm(r.muxH, h); derr != nil {
		r.logger.Error("could not disarm timer handle", "handle", int(h), "error", derr)
		err = errtrace.Wrap(derr)
	}
	r.mu.Lock()
	delete(r.watch, h)
	r.mu.Unlock()
	return err
}

// Stats returns current registration and drop counters.
func (r *TimerReactor) Stats() Stats {
	r.mu.Lock()
	watched := len(r.watch)
	r.mu.Unlock()
	return Stats{
		Watched: watched,
		Dropped: r.dropped.Load(),
	}
}

// Close writes the stop sentinel, blocks until the service thread exits and
// releases both kernel handles. It never returns while the thread is alive.
// Closing an inert reactor is a no-op.
func (r *TimerReactor) Close() error {
	if r.stopH == api.InvalidHandle {
		return nil
	}
	if err := r.lifecycle.Fire(triggerStop); err != nil {
		return api.ErrClosed
	}
	if err := r.kernel.WriteCounter(r.stopH, 1); err != nil {
		r.logger.Error("stop signal write failed", "error", err)
	}
	<-r.done
	r.kernel.Close(r.stopH)
	r.kernel.Close(r.muxH)
	r.logger.Info("timer reactor stopped")
	return nil
}

// run is the service loop. It executes only on the dedicated thread and
// suspends only inside the bounded kernel wait.
func (r *TimerReactor) run() {
	defer close(r.done)

	runtime.LockOSThread()
	if err := sched.SetName(threadName); err != nil {
		r.logger.Warn("could not set service thread name", "name", threadName, "error", err)
	}
	if err := sched.SetRealtime(r.prio); err != nil {
		r.logger.Warn("could not set service thread priority", "priority", r.prio, "error", err)
	}
	r.logger.Info("timer reactor service thread started", "name", threadName)

	events := make([]api.Ready, r.maxEvents)
	for {
		n, err := r.kernel.Wait(r.muxH, events)
		if err != nil {
			r.logger.Error("readiness wait failed", "error", err)
			continue
		}

		for i := 0; i < n; i++ {
			h := events[i].Handle

			count, err := r.kernel.ReadCounter(h)
			if err != nil {
				// Transient: skip this event, keep servicing.
				r.logger.Error("counter read failed", "handle", int(h), "error", err)
				continue
			}

			if h == r.stopH {
				if count > 0 {
					r.logger.Info("timer reactor received stop signal")
					return
				}
				// Spurious wakeup on the stop handle; not a timer fire.
				continue
			}

			r.mu.Lock()
			o, ok := r.watch[h]
			r.mu.Unlock()
			if !ok {
				// Fire raced a concurrent unregister: drop silently.
				r.dropped.Add(1)
				r.logger.Debug("dropped fire for unregistered handle", "handle", int(h))
				continue
			}
			r.sink.Trigger(o)
		}
	}
}
