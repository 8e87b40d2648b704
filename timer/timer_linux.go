//go:build linux
// +build linux

// File: timer/timer_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux timerfd(2) implementation.

package timer

import (
	"time"

	"braces.dev/errtrace"
	"golang.org/x/sys/unix"

	"github.com/momentics/statemux/api"
)

// New creates a periodic timer firing first after the given offset and then
// every period. A zero offset starts the cadence one full period out. The
// descriptor is non-blocking so a spurious wakeup never stalls the reactor's
// service thread on the counter read.
func New(offset, period time.Duration) (*Resource, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	if offset <= 0 {
		offset = period
	}
	spec := unix.ItimerSpec{
		Interval: unix.NsecToTimespec(period.Nanoseconds()),
		Value:    unix.NsecToTimespec(offset.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		unix.Close(fd)
		return nil, errtrace.Wrap(err)
	}
	return &Resource{h: api.Handle(fd)}, nil
}

// Close releases the kernel handle. The resource must be unregistered from
// the reactor first.
func (r *Resource) Close() error {
	if r.h == api.InvalidHandle {
		return api.ErrClosed
	}
	err := unix.Close(int(r.h))
	r.h = api.InvalidHandle
	return errtrace.Wrap(err)
}
