// File: api/interfaces.go
// Author: momentics <momentics@gmail.com>
//
// Core contracts shared across statemux packages.

package api

// Handle is an opaque kernel-level identifier for a timer or signal resource.
// On Linux it is a file descriptor; fakes may use any value space.
type Handle int

// InvalidHandle marks a handle that was never created or has been released.
const InvalidHandle Handle = -1

// Ready is one readiness notification reported by a TimerKernel wait call.
type Ready struct {
	Handle Handle
}

// Observable is the identity surface of a thread-safe value container as seen
// by the notification hub and the timer reactor. Typed access stays on the
// concrete generic container; dispatch only needs identity.
type Observable interface {
	// Name returns the container's unique, human-readable name.
	Name() string
}

// Trigger is the sink for change notifications. The hub implements it; the
// timer reactor and container mutation both call it. Trigger must return
// promptly: its latency directly delays every other timer sharing the
// reactor's service thread.
type Trigger interface {
	Trigger(o Observable)
}

// TimerKernel abstracts the kernel readiness primitives the timer reactor
// consumes. The native Linux implementation multiplexes timer handles via
// epoll with eventfd as the stop signal; fakes script the same surface for
// tests. On platforms without native support the constructor fails and the
// reactor degrades to an inert object.
type TimerKernel interface {
	// NewSignal creates a cross-thread signal handle carrying a 64-bit counter.
	NewSignal() (Handle, error)

	// NewMultiplexer creates a bounded readiness multiplexer handle.
	NewMultiplexer() (Handle, error)

	// Arm registers h with the multiplexer so its readiness is reported.
	Arm(mux, h Handle) error

	// Disarm removes h from the multiplexer's interest set.
	Disarm(mux, h Handle) error

	// Wait blocks until at least one watched handle is ready and fills events.
	// It returns the number of entries written.
	Wait(mux Handle, events []Ready) (int, error)

	// ReadCounter consumes h's 64-bit counter. A short read yields
	// ErrShortRead and must be treated as transient.
	ReadCounter(h Handle) (uint64, error)

	// WriteCounter adds v to h's 64-bit counter, waking waiters.
	WriteCounter(h Handle, v uint64) error

	// Close releases a handle created by this kernel.
	Close(h Handle) error
}
