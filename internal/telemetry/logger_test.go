package telemetry

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()
	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			t.Fatalf("decode line %q: %v", sc.Text(), err)
		}
		out = append(out, entry)
	}
	return out
}

func TestJournalWritesTypedEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.jsonl")
	l, err := NewJSONLogger(path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	l.SetSession("s-1")
	l.SessionStarted(3, "home")
	l.AnswerGraded(LessonRef{CourseID: "python", UnitIndex: 0, LessonIndex: 1}, Grade{Correct: true, XPAwarded: 5, HintUsed: true})
	l.StateFallback(errors.New("bad json"))
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries := readEntries(t, path)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	graded := entries[1]
	if graded["msg"] != EventAnswerGraded || graded["course"] != "python" || graded["xp"] != float64(5) {
		t.Fatalf("unexpected graded entry %#v", graded)
	}
	if graded["session"] != "s-1" {
		t.Fatalf("expected session stamp, got %#v", graded["session"])
	}
	if entries[2]["level"] != "error" || entries[2]["error"] != "bad json" {
		t.Fatalf("unexpected fallback entry %#v", entries[2])
	}
}

func TestJournalAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	for i := 0; i < 2; i++ {
		l, err := NewJSONLogger(path)
		if err != nil {
			t.Fatal(err)
		}
		l.ProgressReset()
		_ = l.Close()
	}
	if n := len(readEntries(t, path)); n != 2 {
		t.Fatalf("expected 2 entries after reopen, got %d", n)
	}
}

func TestEmptyPathDiscards(t *testing.T) {
	l, err := NewJSONLogger("")
	if err != nil {
		t.Fatal(err)
	}
	l.BadgeEarned("first_steps")
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	var nilLogger *JSONLogger
	nilLogger.Info("ignored", nil)
}
