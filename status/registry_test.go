package status

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMetricMapReturnsSamePointer(t *testing.T) {
	m := NewMetricMap[AtomicFloat]()
	a := m.Get("x")
	b := m.Get("x")
	if a != b {
		t.Fatalf("expected cached pointer for repeated key")
	}
	if !m.Has("x") || m.Has("y") {
		t.Errorf("Has mismatch")
	}
}

func TestMetricMapConcurrentGet(t *testing.T) {
	m := NewMetricMap[AtomicFloat]()
	ptrs := make([]*AtomicFloat, 8)
	var wg sync.WaitGroup
	for i := range ptrs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ptrs[i] = m.Get("engine.sim_seconds")
			ptrs[i].Set(float64(i))
		}(i)
	}
	wg.Wait()
	for _, p := range ptrs {
		if p != ptrs[0] {
			t.Fatalf("concurrent Get created more than one cell")
		}
	}
	if m.Count() != 1 {
		t.Errorf("expected 1 cell, got %d", m.Count())
	}
}

func TestAtomicStringTruncates(t *testing.T) {
	var s AtomicString
	if s.Load() != "" {
		t.Fatalf("zero value should read empty")
	}
	long := "0123456789012345678901234567890123456789"
	s.Store(long)
	if got := s.Load(); got != long[:MaxStringLen] {
		t.Errorf("expected truncation to %d bytes, got %q", MaxStringLen, got)
	}
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get(KeyTicks).Store(12)
	r.Ints.Get(KeyPopulation).Store(3)
	r.Floats.Get(KeySimSeconds).Set(1.2)
	r.Strings.Get(KeyRunID).Store("run-1")
	r.Bools.Get(KeyFinished).Store(true)

	want := Snapshot{
		Bools:   map[string]bool{KeyFinished: true},
		Ints:    map[string]int64{KeyTicks: 12, KeyPopulation: 3},
		Floats:  map[string]float64{KeySimSeconds: 1.2},
		Strings: map[string]string{KeyRunID: "run-1"},
	}
	if diff := cmp.Diff(want, r.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if r.TotalCount() != 5 {
		t.Errorf("expected 5 metrics, got %d", r.TotalCount())
	}
}
