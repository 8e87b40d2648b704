// File: internal/sched/sched.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for naming and scheduling the calling OS thread.
// Platform-specific implementations live in separate files guarded by build
// tags (sched_linux.go, sched_stub.go).

// Package sched applies a name and a real-time scheduling class to the
// calling OS thread. Callers must hold runtime.LockOSThread for the settings
// to stay attached to their goroutine.
package sched

// SetName names the calling OS thread. Kernel thread names are capped at 15
// bytes; longer names are truncated.
func SetName(name string) error {
	return setNamePlatform(name)
}

// SetRealtime moves the calling OS thread to the fixed-priority FIFO
// real-time class at the given priority. Requires CAP_SYS_NICE or an
// appropriate rtprio limit; failures are reported, not fatal.
func SetRealtime(priority int) error {
	return setRealtimePlatform(priority)
}
