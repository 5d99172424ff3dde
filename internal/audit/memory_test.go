package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func testEntry(id, org string) Entry {
	return Entry{
		ID:        id,
		OrgID:     org,
		Expense:   json.RawMessage(`{"expense_id":"e1"}`),
		Result:    json.RawMessage(`{"matched_rules":[]}`),
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemorySink_NewestFirst(t *testing.T) {
	sink := NewMemorySink(10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := sink.Record(ctx, testEntry(fmt.Sprintf("aud_%d", i), "org1")); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := sink.Recent(ctx, "org1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"aud_2", "aud_1", "aud_0"} {
		if entries[i].ID != want {
			t.Fatalf("entries[%d].ID = %q, want %q (newest first)", i, entries[i].ID, want)
		}
	}
}

func TestMemorySink_EvictsOldestPastCap(t *testing.T) {
	sink := NewMemorySink(2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = sink.Record(ctx, testEntry(fmt.Sprintf("aud_%d", i), "org1"))
	}

	if sink.Len() != 2 {
		t.Fatalf("retained %d entries, want 2", sink.Len())
	}
	entries, _ := sink.Recent(ctx, "org1", 10)
	if entries[0].ID != "aud_4" || entries[1].ID != "aud_3" {
		t.Fatalf("expected the two newest entries, got %+v", entries)
	}
}

func TestMemorySink_RecentFiltersByOrgAndLimit(t *testing.T) {
	sink := NewMemorySink(10)
	ctx := context.Background()

	_ = sink.Record(ctx, testEntry("a1", "org1"))
	_ = sink.Record(ctx, testEntry("b1", "org2"))
	_ = sink.Record(ctx, testEntry("a2", "org1"))
	_ = sink.Record(ctx, testEntry("a3", "org1"))

	entries, err := sink.Recent(ctx, "org1", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "a3" || entries[1].ID != "a2" {
		t.Fatalf("expected [a3 a2], got %+v", entries)
	}
}

func TestMemorySink_ZeroCapFallsBackToDefault(t *testing.T) {
	sink := NewMemorySink(0)
	if sink.max != DefaultMaxEntries {
		t.Fatalf("max = %d, want %d", sink.max, DefaultMaxEntries)
	}
}
