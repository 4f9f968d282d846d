package store

import (
	"fmt"
	"testing"

	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/report"
)

func makeReport(id string, ts int64) *report.HandoffReport {
	return &report.HandoffReport{
		ID:        id,
		Timestamp: ts,
		ExecutiveSummary: report.ExecutiveSummary{
			ImmediatePriorities: []string{"SAGA: " + id},
		},
		ContextMetrics:  report.ContextMetrics{FillPercentage: 0.9},
		TransitionNotes: report.TransitionNotes{HandoffReason: "context_limit"},
	}
}

func TestMemory_PutGet(t *testing.T) {
	m := NewMemory(10)
	r := makeReport("01A", 100)
	if err := m.Put(r); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := m.Get("01A")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != "01A" || got.Timestamp != 100 {
		t.Errorf("Get = %+v", got)
	}

	// Idempotence: a second Get returns identical content.
	again, err := m.Get("01A")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if again != got {
		t.Error("Get should return the same stored report")
	}
}

func TestMemory_Get_NotFound(t *testing.T) {
	m := NewMemory(10)
	_, err := m.Get("missing")
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestMemory_Put_Validation(t *testing.T) {
	m := NewMemory(10)
	if err := m.Put(nil); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("nil report: err = %v, want INVALID_REQUEST", err)
	}
	if err := m.Put(&report.HandoffReport{}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("empty id: err = %v, want INVALID_REQUEST", err)
	}

	if err := m.Put(makeReport("01A", 100)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := m.Put(makeReport("01A", 200)); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("duplicate id: err = %v, want INVALID_REQUEST", err)
	}
}

func TestMemory_ListRecent_TimestampDescending(t *testing.T) {
	m := NewMemory(10)
	if err := m.Put(makeReport("01A", 100)); err != nil {
		t.Fatal(err)
	}
	if err := m.Put(makeReport("01B", 200)); err != nil {
		t.Fatal(err)
	}

	got, err := m.ListRecent(2)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListRecent returned %d entries, want 2", len(got))
	}
	if got[0].ID != "01B" || got[1].ID != "01A" {
		t.Errorf("order = [%s %s], want [01B 01A]", got[0].ID, got[1].ID)
	}
}

func TestMemory_ListRecent_LimitOne(t *testing.T) {
	m := NewMemory(10)
	if err := m.Put(makeReport("01A", 100)); err != nil {
		t.Fatal(err)
	}
	if err := m.Put(makeReport("01B", 200)); err != nil {
		t.Fatal(err)
	}

	got, err := m.ListRecent(1)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "01B" {
		t.Errorf("ListRecent(1) = %v, want just 01B", got)
	}
}

func TestMemory_ListRecent_ProjectsSummaryFields(t *testing.T) {
	m := NewMemory(10)
	r := makeReport("01A", 100)
	r.ExecutiveSummary.ImmediatePriorities = []string{"p1", "p2", "p3", "p4"}
	if err := m.Put(r); err != nil {
		t.Fatal(err)
	}

	got, err := m.ListRecent(0)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("entries = %d", len(got))
	}
	s := got[0]
	if s.HandoffReason != "context_limit" {
		t.Errorf("HandoffReason = %q", s.HandoffReason)
	}
	if s.FillPercentage != 0.9 {
		t.Errorf("FillPercentage = %v", s.FillPercentage)
	}
	if len(s.TopPriorities) != 3 {
		t.Errorf("TopPriorities = %v, want top 3", s.TopPriorities)
	}
}

func TestMemory_CapEvictsOldest(t *testing.T) {
	m := NewMemory(3)
	for i := 0; i < 5; i++ {
		r := makeReport(fmt.Sprintf("01%c", 'A'+i), int64(100+i))
		if err := m.Put(r); err != nil {
			t.Fatalf("Put %d failed: %v", i, err)
		}
	}

	if m.Len() != 3 {
		t.Fatalf("Len = %d, want 3", m.Len())
	}
	if _, err := m.Get("01A"); !errors.Is(err, errors.ErrNotFound) {
		t.Error("oldest report should be evicted")
	}
	if _, err := m.Get("01E"); err != nil {
		t.Errorf("newest report missing: %v", err)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultListLimit},
		{-5, DefaultListLimit},
		{7, 7},
		{1000, MaxListLimit},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
