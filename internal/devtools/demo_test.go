package devtools

import (
	"errors"
	"testing"
	"time"

	"codelingo/internal/catalog"
	"codelingo/internal/state"
)

func defaultState(t *testing.T) *state.AppState {
	t.Helper()
	cat, err := catalog.Builtin()
	if err != nil {
		t.Fatalf("builtin catalog: %v", err)
	}
	return state.Default(cat)
}

func TestResolveUnknownScenario(t *testing.T) {
	m := NewManager()
	if _, err := m.Resolve("nope"); !errors.Is(err, ErrUnknownScenario) {
		t.Fatalf("expected ErrUnknownScenario, got %v", err)
	}
}

func TestNamesSorted(t *testing.T) {
	names := NewManager().Names()
	if len(names) < 5 {
		t.Fatalf("expected builtin scenarios, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}

func TestScenariosKeepProgressInvariants(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	m := NewManager()
	for _, name := range m.Names() {
		s, err := m.Resolve(name)
		if err != nil {
			t.Fatalf("resolve %s: %v", name, err)
		}
		st := defaultState(t)
		s.Apply(st, now)
		for id, cp := range st.Courses {
			if cp.UnlockedUnitCount < 1 || cp.UnlockedUnitCount > len(cp.Units) {
				t.Fatalf("%s: %s unlocked count %d out of range", name, id, cp.UnlockedUnitCount)
			}
			for _, u := range cp.Units {
				if u.CompletedLessonCount < 0 || u.CompletedLessonCount > len(u.Lessons) {
					t.Fatalf("%s: %s unit %d completed %d of %d", name, id, u.Index, u.CompletedLessonCount, len(u.Lessons))
				}
			}
			if cp.LastUnitIndex >= cp.UnlockedUnitCount {
				t.Fatalf("%s: %s last unit %d is locked", name, id, cp.LastUnitIndex)
			}
		}
	}
}

func TestUnitUnlockedScenario(t *testing.T) {
	s, err := NewManager().Resolve("unit_unlocked")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	st := defaultState(t)
	s.Apply(st, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	cp := st.Courses[st.SelectedCourseID]
	if !cp.Units[0].Complete() || cp.UnlockedUnitCount != 2 {
		t.Fatalf("expected unit 0 complete and 2 unlocked, got %+v", cp)
	}
	if st.LastPlayedDate != "2024-03-10" || st.StreakDays != 2 {
		t.Fatalf("unexpected streak fields: %d %q", st.StreakDays, st.LastPlayedDate)
	}
}
