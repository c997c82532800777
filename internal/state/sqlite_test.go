package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "state.db"))
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return store
}

func TestSlotWriteReadDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.ReadSlot(ctx, SlotKey)
	if err != nil {
		t.Fatalf("read empty slot: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing slot, got %q", got)
	}

	if err := store.WriteSlot(ctx, SlotKey, []byte(`{"xp":1}`), time.Time{}); err != nil {
		t.Fatalf("write slot: %v", err)
	}
	// Last writer wins.
	if err := store.WriteSlot(ctx, SlotKey, []byte(`{"xp":2}`), time.Time{}); err != nil {
		t.Fatalf("overwrite slot: %v", err)
	}
	got, err = store.ReadSlot(ctx, SlotKey)
	if err != nil {
		t.Fatalf("read slot: %v", err)
	}
	if string(got) != `{"xp":2}` {
		t.Fatalf("expected overwritten value, got %q", got)
	}

	if err := store.DeleteSlot(ctx, SlotKey); err != nil {
		t.Fatalf("delete slot: %v", err)
	}
	got, err = store.ReadSlot(ctx, SlotKey)
	if err != nil || got != nil {
		t.Fatalf("expected slot gone, got %q (%v)", got, err)
	}
}

func TestWriteSlotRequiresKey(t *testing.T) {
	store := newTestStore(t)
	if err := store.WriteSlot(context.Background(), "  ", []byte("{}"), time.Time{}); err == nil {
		t.Fatalf("expected error for blank key")
	}
}

func TestAttemptSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	empty, err := store.GetSummary(ctx)
	if err != nil {
		t.Fatalf("summary on empty table: %v", err)
	}
	if empty.Attempts != 0 || !empty.LastTS.IsZero() {
		t.Fatalf("expected empty summary, got %#v", empty)
	}

	base := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	attempts := []Attempt{
		{SessionID: "s1", CourseID: "python", Correct: false, RetryCount: 0, TS: base},
		{SessionID: "s1", CourseID: "python", Correct: true, XPAwarded: 0, RetryCount: 1, TS: base.Add(time.Minute)},
		{SessionID: "s2", CourseID: "python", LessonIndex: 1, Correct: true, XPAwarded: 5, HintUsed: true, TS: base.Add(time.Hour)},
	}
	for _, a := range attempts {
		if err := store.RecordAttempt(ctx, a); err != nil {
			t.Fatalf("record attempt: %v", err)
		}
	}

	sum, err := store.GetSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Attempts != 3 || sum.Correct != 2 || sum.HintsUsed != 1 || sum.XPAwarded != 5 || sum.Sessions != 2 {
		t.Fatalf("unexpected summary %#v", sum)
	}
	if !sum.LastTS.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected last ts %v, got %v", base.Add(time.Hour), sum.LastTS)
	}

	if err := store.ClearAttempts(ctx); err != nil {
		t.Fatalf("clear attempts: %v", err)
	}
	sum, err = store.GetSummary(ctx)
	if err != nil {
		t.Fatalf("summary after clear: %v", err)
	}
	if sum.Attempts != 0 {
		t.Fatalf("expected no attempts after clear, got %d", sum.Attempts)
	}
}
