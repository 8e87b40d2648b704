// File: internal/poll/poll.go
// Author: momentics <momentics@gmail.com>
//
// Native kernel readiness surface for the timer reactor. The Linux
// implementation multiplexes timer handles with epoll(7), uses eventfd(2) as
// the cross-thread stop signal, and reads the 64-bit expiration counters that
// timerfd(2) and eventfd expose. Other platforms get a failing constructor so
// the reactor degrades to an inert object instead of breaking the build.

// Package poll implements api.TimerKernel on the host kernel.
package poll
