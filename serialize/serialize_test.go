// File: serialize/serialize_test.go
// Author: momentics <momentics@gmail.com>

package serialize_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/momentics/statemux/api"
	"github.com/momentics/statemux/observable"
	"github.com/momentics/statemux/serialize"
)

func jsonHooks[T any]() observable.Option[T] {
	return observable.WithSnapshot(
		func(v T) ([]byte, error) { return json.Marshal(v) },
		func(data []byte) (T, error) {
			var v T
			err := json.Unmarshal(data, &v)
			return v, err
		},
	)
}

func TestDumpNestsDottedNames(t *testing.T) {
	reg := serialize.NewRegistry()

	rpm := observable.New("engine.rpm", nil, 1200, jsonHooks[int]())
	gear := observable.New("engine.gear", nil, "N", jsonHooks[string]())
	if err := reg.Add(rpm); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := reg.Add(gear); err != nil {
		t.Fatalf("add: %v", err)
	}

	doc, err := reg.Dump()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if got := gjson.GetBytes(doc, "engine.rpm").Int(); got != 1200 {
		t.Errorf("engine.rpm = %d, want 1200", got)
	}
	if got := gjson.GetBytes(doc, "engine.gear").String(); got != "N" {
		t.Errorf("engine.gear = %q, want N", got)
	}
}

func TestLoadRestoresRegisteredContainers(t *testing.T) {
	reg := serialize.NewRegistry()

	rpm := observable.New("engine.rpm", nil, 0, jsonHooks[int]())
	gear := observable.New("engine.gear", nil, "N", jsonHooks[string]())
	if err := reg.Add(rpm); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := reg.Add(gear); err != nil {
		t.Fatalf("add: %v", err)
	}

	doc := []byte(`{"engine":{"rpm":4500},"unrelated":true}`)
	if err := reg.Load(doc); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := observable.Get(rpm, func(v int) int { return v }); got != 4500 {
		t.Errorf("rpm = %d, want 4500", got)
	}
	// Absent from the document: keeps its value.
	if got := observable.Get(gear, func(v string) string { return v }); got != "N" {
		t.Errorf("gear = %q, want unchanged N", got)
	}

	if err := reg.Load([]byte(`{not json`)); err == nil {
		t.Error("load accepted invalid JSON")
	}
}

func TestRoundTrip(t *testing.T) {
	reg := serialize.NewRegistry()
	rpm := observable.New("engine.rpm", nil, 3000, jsonHooks[int]())
	if err := reg.Add(rpm); err != nil {
		t.Fatalf("add: %v", err)
	}

	doc, err := reg.Dump()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	rpm.Set(func(int) int { return 0 })
	if err := reg.Load(doc); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := observable.Get(rpm, func(v int) int { return v }); got != 3000 {
		t.Errorf("rpm = %d after round trip, want 3000", got)
	}
}

func TestAddRejectsHooklessAndDuplicates(t *testing.T) {
	reg := serialize.NewRegistry()

	bare := observable.New("bare", nil, 1)
	if err := reg.Add(bare); !errors.Is(err, api.ErrNoSnapshot) {
		t.Errorf("add hookless = %v, want ErrNoSnapshot", err)
	}

	o := observable.New("x", nil, 1, jsonHooks[int]())
	if err := reg.Add(o); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := reg.Add(o); !errors.Is(err, api.ErrAlreadyExists) {
		t.Errorf("duplicate add = %v, want ErrAlreadyExists", err)
	}

	if err := reg.Remove("x"); err != nil {
		t.Errorf("remove: %v", err)
	}
	if err := reg.Remove("x"); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("second remove = %v, want ErrNotFound", err)
	}
}
