//go:build !linux
// +build !linux

// File: timer/timer_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without kernel timer handles.

package timer

import (
	"time"

	"github.com/momentics/statemux/api"
)

// New reports kernel timers as unavailable on this platform.
func New(offset, period time.Duration) (*Resource, error) {
	return nil, api.ErrNotSupported
}

// Close is a no-op on unsupported platforms.
func (r *Resource) Close() error {
	return api.ErrNotSupported
}
