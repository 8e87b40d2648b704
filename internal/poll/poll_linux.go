//go:build linux
// +build linux

// File: internal/poll/poll_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll/eventfd implementation of api.TimerKernel.

package poll

import (
	"encoding/binary"

	"braces.dev/errtrace"
	"golang.org/x/sys/unix"

	"github.com/momentics/statemux/api"
)

// counterSize is the fixed width of eventfd/timerfd counter reads.
const counterSize = 8

type nativeKernel struct{}

// Native returns the host kernel surface.
func Native() (api.TimerKernel, error) {
	return nativeKernel{}, nil
}

func (nativeKernel) NewSignal() (api.Handle, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC)
	if err != nil {
		return api.InvalidHandle, errtrace.Wrap(err)
	}
	return api.Handle(fd), nil
}

func (nativeKernel) NewMultiplexer() (api.Handle, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return api.InvalidHandle, errtrace.Wrap(err)
	}
	return api.Handle(fd), nil
}

func (nativeKernel) Arm(mux, h api.Handle) error {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(h),
	}
	return errtrace.Wrap(unix.EpollCtl(int(mux), unix.EPOLL_CTL_ADD, int(h), &ev))
}

func (nativeKernel) Disarm(mux, h api.Handle) error {
	return errtrace.Wrap(unix.EpollCtl(int(mux), unix.EPOLL_CTL_DEL, int(h), nil))
}

func (nativeKernel) Wait(mux api.Handle, events []api.Ready) (int, error) {
	raw := make([]unix.EpollEvent, len(events))
	n, err := unix.EpollWait(int(mux), raw, -1)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, errtrace.Wrap(err)
	}
	for i := 0; i < n; i++ {
		events[i] = api.Ready{Handle: api.Handle(raw[i].Fd)}
	}
	return n, nil
}

func (nativeKernel) ReadCounter(h api.Handle) (uint64, error) {
	var buf [counterSize]byte
	n, err := unix.Read(int(h), buf[:])
	if err != nil {
		return 0, errtrace.Wrap(err)
	}
	if n != counterSize {
		return 0, errtrace.Wrap(api.ErrShortRead)
	}
	return binary.NativeEndian.Uint64(buf[:]), nil
}

func (nativeKernel) WriteCounter(h api.Handle, v uint64) error {
	var buf [counterSize]byte
	binary.NativeEndian.PutUint64(buf[:], v)
	n, err := unix.Write(int(h), buf[:])
	if err != nil {
		return errtrace.Wrap(err)
	}
	if n != counterSize {
		return errtrace.Wrap(api.ErrShortRead)
	}
	return nil
}

func (nativeKernel) Close(h api.Handle) error {
	return errtrace.Wrap(unix.Close(int(h)))
}
