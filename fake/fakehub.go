// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"
	"time"

	"github.com/momentics/statemux/api"
)

// TriggerRecorder is an api.Trigger that records every call.
type TriggerRecorder struct {
	mu    sync.Mutex
	calls []api.Observable
	ch    chan api.Observable
}

// NewTriggerRecorder creates an empty recorder.
func NewTriggerRecorder() *TriggerRecorder {
	return &TriggerRecorder{
		ch: make(chan api.Observable, 128),
	}
}

// Trigger records o.
func (t *TriggerRecorder) Trigger(o api.Observable) {
	t.mu.Lock()
	t.calls = append(t.calls, o)
	t.mu.Unlock()
	t.ch <- o
}

// Calls returns a copy of the recorded containers in call order.
func (t *TriggerRecorder) Calls() []api.Observable {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]api.Observable, len(t.calls))
	copy(out, t.calls)
	return out
}

// Len returns the number of recorded calls.
func (t *TriggerRecorder) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

// WaitFor blocks until n calls have been recorded or the timeout elapses and
// reports whether the count was reached.
func (t *TriggerRecorder) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for t.Len() < n {
		select {
		case <-t.ch:
		case <-deadline:
			return t.Len() >= n
		}
	}
	return true
}
