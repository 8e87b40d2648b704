// File: serialize/serialize.go
// Author: momentics <momentics@gmail.com>
//
// Whole-system JSON snapshots of named observable containers.

// Package serialize collects the serialized forms of registered observable
// containers into one JSON document and restores them from it. Only
// containers constructed with snapshot hooks can join the registry.
// Registered names are JSON paths: dots nest, so "engine.rpm" lands under an
// "engine" object in the dump.
package serialize

import (
	"errors"
	"sync"

	"braces.dev/errtrace"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/momentics/statemux/api"
)

// Snapshotable is the container surface the registry works with.
type Snapshotable interface {
	api.Observable
	Snapshot() ([]byte, error)
	Restore(data []byte) error
}

// Registry holds named snapshotable containers.
type Registry struct {
	mu   sync.RWMutex
	objs map[string]Snapshotable
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		objs: make(map[string]Snapshotable),
	}
}

// Add registers o under its container name. Containers without snapshot
// hooks are rejected with api.ErrNoSnapshot.
func (r *Registry) Add(o Snapshotable) error {
	if _, err := o.Snapshot(); errors.Is(err, api.ErrNoSnapshot) {
		return api.ErrNoSnapshot
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.objs[o.Name()]; dup {
		return api.ErrAlreadyExists
	}
	r.objs[o.Name()] = o
	return nil
}

// Remove drops the named container from the registry.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.objs[name]; !ok {
		return api.ErrNotFound
	}
	delete(r.objs, name)
	return nil
}

// Dump serializes every registered container into one JSON document.
func (r *Registry) Dump() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc := []byte(`{}`)
	for name, o := range r.objs {
		raw, err := o.Snapshot()
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		doc, err = sjson.SetRawBytes(doc, name, raw)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
	}
	return doc, nil
}

// Load restores every registered container that has an entry in doc.
// Containers absent from doc keep their current value.
func (r *Registry) Load(doc []byte) error {
	if !gjson.ValidBytes(doc) {
		return errtrace.New("serialize: invalid JSON document")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, o := range r.objs {
		res := gjson.GetBytes(doc, name)
		if !res.Exists() {
			continue
		}
		if err := o.Restore([]byte(res.Raw)); err != nil {
			return errtrace.Wrap(err)
		}
	}
	return nil
}

// Names returns the registered container names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.objs))
	for name := range r.objs {
		out = append(out, name)
	}
	return out
}
