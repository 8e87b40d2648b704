// File: timer/timer.go
// Author: momentics <momentics@gmail.com>
//
// Kernel-backed periodic timer resource.

// Package timer provides the kernel timer resource held by an observable
// container. A Resource owns exactly one kernel handle, created at
// construction and never reassigned; firing is consumed by the timer reactor,
// not by the resource itself. Construct resources only as payload of an
// observable container so the reactor can resolve firings back to state.
package timer

import "github.com/momentics/statemux/api"

// Resource is a single kernel timer: an opaque handle plus the periodic
// firing programmed at construction. Immutable once created.
type Resource struct {
	h api.Handle
}

// FromHandle adopts an externally created kernel handle. Ownership moves to
// the resource; Close releases it. Used by adapters and test kernels.
func FromHandle(h api.Handle) *Resource {
	return &Resource{h: h}
}

// Handle returns the kernel handle for (de)registration with the reactor.
func (r *Resource) Handle() api.Handle {
	return r.h
}
