package db

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/report"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func sampleReport(id string, ts int64) *report.HandoffReport {
	return &report.HandoffReport{
		ID:                id,
		Timestamp:         ts,
		PreviousSessionID: "session-1",
		ContextMetrics: report.ContextMetrics{
			TokenUsage:     108_800,
			MaxTokens:      128_000,
			FillPercentage: 0.85,
		},
		ExecutiveSummary: report.ExecutiveSummary{
			CurrentPhase:        "Mission: ship the ledger",
			ImmediatePriorities: []string{"SAGA: finish ledger", "BLOCKED: waiting on uploads", "SAGA: review prompts", "SAGA: extras"},
			UrgentItems:         []string{},
			NextSteps:           []string{"review the report"},
		},
		ConversationHistory: report.ConversationContext{
			Summary:         "User asked about the ledger.",
			CurrentTopic:    "ledger",
			LastUserRequest: "Show me the ledger",
		},
		TransitionNotes: report.TransitionNotes{
			HandoffReason: "context_limit",
		},
	}
}

func TestInsertGetByID_RoundTrip(t *testing.T) {
	database := testDB(t)

	want := sampleReport("01HROUNDTRIP", 1700000000000)
	if err := Insert(database, want); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := GetByID(database, "01HROUNDTRIP")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.ID != want.ID {
		t.Errorf("ID = %q", got.ID)
	}
	if got.PreviousSessionID != "session-1" {
		t.Errorf("PreviousSessionID = %q", got.PreviousSessionID)
	}
	if got.ContextMetrics.FillPercentage != 0.85 {
		t.Errorf("FillPercentage = %v", got.ContextMetrics.FillPercentage)
	}
	if got.ExecutiveSummary.CurrentPhase != "Mission: ship the ledger" {
		t.Errorf("CurrentPhase = %q", got.ExecutiveSummary.CurrentPhase)
	}
	if got.ConversationHistory.LastUserRequest != "Show me the ledger" {
		t.Errorf("LastUserRequest = %q", got.ConversationHistory.LastUserRequest)
	}

	// Idempotence: fetching twice returns identical content.
	again, err := GetByID(database, "01HROUNDTRIP")
	if err != nil {
		t.Fatalf("second GetByID failed: %v", err)
	}
	if again.ID != got.ID || again.Timestamp != got.Timestamp ||
		again.ConversationHistory.Summary != got.ConversationHistory.Summary {
		t.Error("repeated GetByID returned different content")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	database := testDB(t)
	_, err := GetByID(database, "missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestInsert_DuplicateID(t *testing.T) {
	database := testDB(t)
	r := sampleReport("01HDUP", 100)
	if err := Insert(database, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := Insert(database, r); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("duplicate insert err = %v, want INVALID_REQUEST", err)
	}
}

func TestListRecent_OrderAndProjection(t *testing.T) {
	database := testDB(t)
	if err := Insert(database, sampleReport("01HA", 100)); err != nil {
		t.Fatal(err)
	}
	if err := Insert(database, sampleReport("01HB", 200)); err != nil {
		t.Fatal(err)
	}

	got, err := ListRecent(database, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].ID != "01HB" || got[1].ID != "01HA" {
		t.Errorf("order = [%s %s], want [01HB 01HA]", got[0].ID, got[1].ID)
	}
	if got[0].HandoffReason != "context_limit" {
		t.Errorf("HandoffReason = %q", got[0].HandoffReason)
	}
	if len(got[0].TopPriorities) != 3 {
		t.Errorf("TopPriorities = %v, want top 3", got[0].TopPriorities)
	}
}

func TestListRecent_Limit(t *testing.T) {
	database := testDB(t)
	for i := 0; i < 5; i++ {
		if err := Insert(database, sampleReport(fmt.Sprintf("01H%c", 'A'+i), int64(100+i))); err != nil {
			t.Fatal(err)
		}
	}

	got, err := ListRecent(database, 1)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "01HE" {
		t.Errorf("ListRecent(1) = %v, want just the newest", got)
	}
}

func TestPurge_RemovesOldReports(t *testing.T) {
	database := testDB(t)

	old := sampleReport("01HOLD", time.Now().AddDate(0, 0, -30).UnixMilli())
	fresh := sampleReport("01HNEW", time.Now().UnixMilli())
	if err := Insert(database, old); err != nil {
		t.Fatal(err)
	}
	if err := Insert(database, fresh); err != nil {
		t.Fatal(err)
	}

	purged, err := Purge(database, 7)
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}

	if _, err := GetByID(database, "01HOLD"); !errors.Is(err, errors.ErrNotFound) {
		t.Error("old report should be purged")
	}
	if _, err := GetByID(database, "01HNEW"); err != nil {
		t.Errorf("fresh report should remain: %v", err)
	}
}

func TestPurge_NegativeDays(t *testing.T) {
	database := testDB(t)
	if _, err := Purge(database, -1); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestStore_ImplementsContract(t *testing.T) {
	database := testDB(t)
	s := NewStore(database)

	r := sampleReport("01HSTORE", 500)
	if err := s.Put(r); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get("01HSTORE")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != "01HSTORE" {
		t.Errorf("ID = %q", got.ID)
	}

	summaries, err := s.ListRecent(0)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Errorf("summaries = %d, want 1", len(summaries))
	}
}
