// File: observable/observable.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe typed value container with change notification.

// Package observable provides the guarded value container application state
// lives in. All access to the value goes through the container's guard;
// mutation notifies the hub after the guard is released. Independent
// containers never block each other and no cross-container ordering is
// promised.
package observable

import (
	"sync"

	"braces.dev/errtrace"

	"github.com/momentics/statemux/api"
)

// Object is a thread-safe holder of one value of type T. It is shared by
// reference with the hub and, when T carries a kernel timer resource, with
// the timer reactor. Validation belongs inside the caller's transform and
// mutator functions; the container itself raises no errors.
type Object[T any] struct {
	name string
	sink api.Trigger

	mu    sync.Mutex
	value T
	snap  []byte

	encode func(T) ([]byte, error)
	decode func([]byte) (T, error)
}

// Option configures an Object at construction.
type Option[T any] func(*Object[T])

// WithSnapshot attaches the optional serialize/deserialize hook pair. When
// present, every mutation refreshes the container's serialized form and the
// container becomes visible to the serialize registry.
func WithSnapshot[T any](encode func(T) ([]byte, error), decode func([]byte) (T, error)) Option[T] {
	return func(o *Object[T]) {
		o.encode = encode
		o.decode = decode
	}
}

// New creates a container owned by the calling module. sink receives a
// notification after every mutation; a nil sink disables notification.
func New[T any](name string, sink api.Trigger, initial T, opts ...Option[T]) *Object[T] {
	o := &Object[T]{
		name:  name,
		sink:  sink,
		value: initial,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.encode != nil {
		o.snap, _ = o.encode(o.value)
	}
	return o
}

// Name returns the container's name.
func (o *Object[T]) Name() string {
	return o.name
}

// Get applies fn to the current value under the guard. fn must not call back
// into this container.
func (o *Object[T]) Get(fn func(T)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(o.value)
}

// Get applies transform to o's current value under the guard and returns the
// result. The free-function form exists because methods cannot introduce
// type parameters.
func Get[T, R any](o *Object[T], transform func(T) R) R {
	o.mu.Lock()
	defer o.mu.Unlock()
	return transform(o.value)
}

// Set replaces the value with mutate's result under the guard, refreshes the
// serialized form when hooks are attached, releases the guard and then
// notifies the sink.
func (o *Object[T]) Set(mutate func(T) T) {
	o.mu.Lock()
	o.value = mutate(o.value)
	if o.encode != nil {
		o.snap, _ = o.encode(o.value)
	}
	o.mu.Unlock()

	if o.sink != nil {
		o.sink.Trigger(o)
	}
}

// Snapshot returns the serialized form of the current value.
func (o *Object[T]) Snapshot() ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.encode == nil {
		return nil, api.ErrNoSnapshot
	}
	if o.snap != nil {
		out := make([]byte, len(o.snap))
		copy(out, o.snap)
		return out, nil
	}
	return errtrace.Wrap2(o.encode(o.value))
}

// Restore replaces the value from its serialized form and notifies the sink
// like any other mutation.
func (o *Object[T]) Restore(data []byte) error {
	if o.decode == nil {
		return api.ErrNoSnapshot
	}
	v, err := o.decode(data)
	if err != nil {
		return errtrace.Wrap(err)
	}
	o.Set(func(T) T { return v })
	return nil
}
