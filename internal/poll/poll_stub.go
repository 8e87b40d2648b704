//go:build !linux
// +build !linux

// File: internal/poll/poll_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without the required readiness primitives.

package poll

import "github.com/momentics/statemux/api"

// Native reports the host kernel surface as unavailable.
func Native() (api.TimerKernel, error) {
	return nil, api.ErrNotSupported
}
