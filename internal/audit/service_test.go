package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// mockSink is a test implementation of Sink.
type mockSink struct {
	mu      sync.Mutex
	entries []Entry
	gate    chan struct{} // when set, Record blocks until the gate closes
}

func (m *mockSink) Record(ctx context.Context, entry Entry) error {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockSink) Recent(ctx context.Context, orgID string, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Entry, len(m.entries))
	copy(result, m.entries)
	return result, nil
}

func (m *mockSink) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// mockClock is a test implementation of Clock.
type mockClock struct {
	now time.Time
}

func (m *mockClock) Now() time.Time { return m.now }

// mockIDGen is a test implementation of IDGenerator.
type mockIDGen struct {
	id string
}

func (m *mockIDGen) Generate() string { return m.id }

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestService_RecordDeliversToSink(t *testing.T) {
	sink := &mockSink{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(sink, &mockClock{now: now}, &mockIDGen{id: "aud_test"}, zerolog.Nop(), 8)
	defer svc.Close()

	svc.Record("org1", map[string]any{"expense_id": "e1"}, map[string]any{"actions": []string{"flag"}})

	waitFor(t, time.Second, func() bool { return sink.len() == 1 })

	entries, _ := sink.Recent(context.Background(), "org1", 10)
	entry := entries[0]
	if entry.ID != "aud_test" {
		t.Errorf("ID = %q, want aud_test", entry.ID)
	}
	if entry.OrgID != "org1" {
		t.Errorf("OrgID = %q, want org1", entry.OrgID)
	}
	if !entry.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", entry.CreatedAt, now)
	}
	if string(entry.Expense) != `{"expense_id":"e1"}` {
		t.Errorf("Expense = %s", entry.Expense)
	}
}

func TestService_DropsWhenQueueFull(t *testing.T) {
	gate := make(chan struct{})
	sink := &mockSink{gate: gate}
	svc := NewService(sink, nil, nil, zerolog.Nop(), 1)
	defer svc.Close()

	// first entry occupies the worker (blocked on the gate), second fills
	// the queue, the rest must be dropped without blocking.
	for i := 0; i < 5; i++ {
		svc.Record("org1", map[string]any{"n": i}, nil)
	}
	close(gate)

	waitFor(t, time.Second, func() bool { return sink.len() >= 1 })
	time.Sleep(50 * time.Millisecond)
	if got := sink.len(); got > 2 {
		t.Fatalf("delivered %d entries, want at most 2 (rest dropped)", got)
	}
}

func TestService_RecordSkipsUnmarshalableSnapshots(t *testing.T) {
	sink := &mockSink{}
	svc := NewService(sink, nil, nil, zerolog.Nop(), 8)
	defer svc.Close()

	svc.Record("org1", func() {}, nil) // functions cannot be marshaled

	time.Sleep(50 * time.Millisecond)
	if sink.len() != 0 {
		t.Fatalf("unmarshalable snapshot must be skipped, got %d entries", sink.len())
	}
}

func TestService_CloseIsIdempotent(t *testing.T) {
	svc := NewService(&mockSink{}, nil, nil, zerolog.Nop(), 8)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("second Close must be a no-op: %v", err)
	}
}
