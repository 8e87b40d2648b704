//go:build linux
// +build linux

// File: internal/sched/sched_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux implementation on prctl(2) and sched_setattr(2). Pure Go via
// golang.org/x/sys; no CGO needed.

package sched

import (
	"unsafe"

	"braces.dev/errtrace"
	"golang.org/x/sys/unix"
)

// maxThreadName is the kernel limit including the terminating NUL.
const maxThreadName = 16

func setNamePlatform(name string) error {
	if len(name) >= maxThreadName {
		name = name[:maxThreadName-1]
	}
	buf, err := unix.BytePtrFromString(name)
	if err != nil {
		return errtrace.Wrap(err)
	}
	return errtrace.Wrap(unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(buf)), 0, 0, 0))
}

func setRealtimePlatform(priority int) error {
	attr := unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   unix.SCHED_FIFO,
		Priority: uint32(priority),
	}
	// pid 0 targets the calling thread.
	return errtrace.Wrap(unix.SchedSetAttr(0, &attr, 0))
}
