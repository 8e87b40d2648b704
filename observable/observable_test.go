// File: observable/observable_test.go
// Author: momentics <momentics@gmail.com>

package observable_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/momentics/statemux/api"
	"github.com/momentics/statemux/fake"
	"github.com/momentics/statemux/observable"
)

type reading struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

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

func TestGetAppliesTransformUnderGuard(t *testing.T) {
	o := observable.New("r", nil, reading{Value: 21.5, Unit: "C"})

	var got reading
	o.Get(func(v reading) { got = v })
	if diff := cmp.Diff(reading{Value: 21.5, Unit: "C"}, got); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}

	unit := observable.Get(o, func(v reading) string { return v.Unit })
	if unit != "C" {
		t.Errorf("transform result = %q, want C", unit)
	}
}

func TestSetNotifiesSinkAfterMutation(t *testing.T) {
	rec := fake.NewTriggerRecorder()
	o := observable.New("counter", rec, 0)

	o.Set(func(v int) int { return v + 41 })
	o.Set(func(v int) int { return v + 1 })

	if got := observable.Get(o, func(v int) int { return v }); got != 42 {
		t.Errorf("value = %d, want 42", got)
	}
	if got := rec.Len(); got != 2 {
		t.Fatalf("sink notified %d times, want 2", got)
	}
	for _, call := range rec.Calls() {
		if call.Name() != "counter" {
			t.Errorf("notification carried %q, want counter", call.Name())
		}
	}
}

func TestParallelSetsAreMutuallyExclusive(t *testing.T) {
	o := observable.New("n", nil, 0)

	const workers, perWorker = 16, 500
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				o.Set(func(v int) int { return v + 1 })
			}
		}()
	}
	wg.Wait()

	if got := observable.Get(o, func(v int) int { return v }); got != workers*perWorker {
		t.Errorf("value = %d, want %d: lost updates", got, workers*perWorker)
	}
}

func TestSnapshotWithoutHooks(t *testing.T) {
	o := observable.New("bare", nil, 1)
	if _, err := o.Snapshot(); !errors.Is(err, api.ErrNoSnapshot) {
		t.Errorf("snapshot = %v, want ErrNoSnapshot", err)
	}
	if err := o.Restore([]byte(`2`)); !errors.Is(err, api.ErrNoSnapshot) {
		t.Errorf("restore = %v, want ErrNoSnapshot", err)
	}
}

func TestSnapshotTracksMutation(t *testing.T) {
	o := observable.New("r", nil, reading{Value: 1, Unit: "C"}, jsonHooks[reading]())

	o.Set(func(v reading) reading { v.Value = 2.5; return v })
	snap, err := o.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var got reading
	if err := json.Unmarshal(snap, &got); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if diff := cmp.Diff(reading{Value: 2.5, Unit: "C"}, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestRestoreNotifiesLikeMutation(t *testing.T) {
	rec := fake.NewTriggerRecorder()
	o := observable.New("r", rec, reading{}, jsonHooks[reading]())

	if err := o.Restore([]byte(`{"value":3.5,"unit":"K"}`)); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := observable.Get(o, func(v reading) reading { return v }); got != (reading{Value: 3.5, Unit: "K"}) {
		t.Errorf("restored value = %+v", got)
	}
	if rec.Len() != 1 {
		t.Errorf("restore notified %d times, want 1", rec.Len())
	}

	if err := o.Restore([]byte(`{`)); err == nil {
		t.Error("restore accepted malformed input")
	}
}
