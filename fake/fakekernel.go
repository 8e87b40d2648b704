// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package fake provides hand-written test doubles for the statemux contracts.
package fake

import (
	"errors"
	"sort"
	"sync"

	"github.com/momentics/statemux/api"
)

// Kernel is a scriptable api.TimerKernel. Readiness is driven by Fire and
// WriteCounter; arm/disarm failures and short reads can be injected per
// handle. A single multiplexer per kernel is supported, which is all the
// reactor ever creates.
type Kernel struct {
	mu     sync.Mutex
	next   api.Handle
	armed  map[api.Handle]bool
	count  map[api.Handle]uint64
	closed map[api.Handle]bool

	armErr    map[api.Handle]error
	disarmErr map[api.Handle]error
	shortRead map[api.Handle]int // remaining one-shot short reads

	// FailSignal / FailMultiplexer make the next creation call fail.
	FailSignal      bool
	FailMultiplexer bool

	ready   chan api.Handle
	waitErr chan error

	gated   bool
	release chan struct{}
}

// NewKernel creates an idle fake kernel.
func NewKernel() *Kernel {
	return &Kernel{
		next:      1,
		armed:     make(map[api.Handle]bool),
		count:     make(map[api.Handle]uint64),
		closed:    make(map[api.Handle]bool),
		armErr:    make(map[api.Handle]error),
		disarmErr: make(map[api.Handle]error),
		shortRead: make(map[api.Handle]int),
		ready:     make(chan api.Handle, 128),
		waitErr:   make(chan error, 16),
		release:   make(chan struct{}, 128),
	}
}

// NewHandle allocates a handle without arming it, standing in for an
// externally created timer descriptor.
func (k *Kernel) NewHandle() api.Handle {
	k.mu.Lock()
	defer k.mu.Unlock()
	h := k.next
	k.next++
	return h
}

func (k *Kernel) NewSignal() (api.Handle, error) {
	if k.FailSignal {
		return api.InvalidHandle, errors.New("fake: signal creation refused")
	}
	return k.NewHandle(), nil
}

func (k *Kernel) NewMultiplexer() (api.Handle, error) {
	if k.FailMultiplexer {
		return api.InvalidHandle, errors.New("fake: multiplexer creation refused")
	}
	return k.NewHandle(), nil
}

func (k *Kernel) Arm(mux, h api.Handle) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.armErr[h]; err != nil {
		return err
	}
	k.armed[h] = true
	return nil
}

func (k *Kernel) Disarm(mux, h api.Handle) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	err := k.disarmErr[h]
	if err == nil {
		delete(k.armed, h)
	}
	return err
}

func (k *Kernel) Wait(mux api.Handle, events []api.Ready) (int, error) {
	var (
		h  api.Handle
		ok bool
	)
	select {
	case err := <-k.waitErr:
		return 0, err
	case h, ok = <-k.ready:
	}
	if !ok {
		return 0, errors.New("fake: kernel torn down")
	}
	k.mu.Lock()
	gated := k.gated
	k.mu.Unlock()
	if gated {
		<-k.release
	}
	events[0] = api.Ready{Handle: h}
	n := 1
	for n < len(events) {
		select {
		case h := <-k.ready:
			events[n] = api.Ready{Handle: h}
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

func (k *Kernel) ReadCounter(h api.Handle) (uint64, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.shortRead[h] > 0 {
		k.shortRead[h]--
		return 0, api.ErrShortRead
	}
	c := k.count[h]
	k.count[h] = 0
	return c, nil
}

func (k *Kernel) WriteCounter(h api.Handle, v uint64) error {
	k.mu.Lock()
	k.count[h] += v
	k.mu.Unlock()
	k.ready <- h
	return nil
}

func (k *Kernel) Close(h api.Handle) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed[h] {
		return api.ErrClosed
	}
	k.closed[h] = true
	return nil
}

// Fire simulates n expirations of h, exactly like the kernel bumping a timer
// counter: the count accumulates and one readiness event is queued. Firing is
// unconditional so tests can model events still pending after a disarm.
func (k *Kernel) Fire(h api.Handle, n uint64) {
	k.WriteCounter(h, n)
}

// SetArmError makes Arm fail for h until cleared with a nil err.
func (k *Kernel) SetArmError(h api.Handle, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err == nil {
		delete(k.armErr, h)
		return
	}
	k.armErr[h] = err
}

// SetDisarmError makes Disarm fail for h until cleared with a nil err.
func (k *Kernel) SetDisarmError(h api.Handle, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err == nil {
		delete(k.disarmErr, h)
		return
	}
	k.disarmErr[h] = err
}

// SetWaitError makes one pending or future Wait call fail with err, waking a
// blocked waiter if there is one.
func (k *Kernel) SetWaitError(err error) {
	k.waitErr <- err
}

// SetShortRead schedules n one-shot short counter reads for h.
func (k *Kernel) SetShortRead(h api.Handle, n int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.shortRead[h] = n
}

// SetGated stalls every Wait delivery until ReleaseGate or OpenGate. Tests
// use it to act between an event becoming pending and its delivery.
func (k *Kernel) SetGated(gated bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.gated = gated
}

// ReleaseGate lets one stalled Wait delivery through.
func (k *Kernel) ReleaseGate() {
	k.release <- struct{}{}
}

// OpenGate permanently releases the gate.
func (k *Kernel) OpenGate() {
	close(k.release)
}

// Armed returns the currently armed handles in ascending order.
func (k *Kernel) Armed() []api.Handle {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]api.Handle, 0, len(k.armed))
	for h := range k.armed {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsArmed reports whether h is in the multiplexer's interest set.
func (k *Kernel) IsArmed(h api.Handle) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.armed[h]
}

// IsClosed reports whether h has been released.
func (k *Kernel) IsClosed(h api.Handle) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.closed[h]
}
