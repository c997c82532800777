package devtools

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"codelingo/internal/router"
	"codelingo/internal/state"
)

var ErrUnknownScenario = errors.New("unknown demo scenario")

type Manager struct {
	scenarios map[string]Scenario
}

func NewManager() *Manager {
	m := &Manager{scenarios: map[string]Scenario{}}
	for _, s := range builtinScenarios() {
		m.scenarios[s.Name] = s
	}
	return m
}

func (m *Manager) Resolve(name string) (Scenario, error) {
	s, ok := m.scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return s, nil
}

func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.scenarios))
	for name := range m.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func builtinScenarios() []Scenario {
	return []Scenario{
		{
			Name:        "fresh",
			Description: "first launch, nothing played",
			Route:       router.Home,
		},
		{
			Name:        "first_lesson",
			Description: "one lesson of the selected course answered",
			Route:       router.Home,
			apply: func(st *state.AppState, now time.Time) {
				cp := selected(st)
				if cp == nil {
					return
				}
				completeLessons(cp, 0, 1)
				cp.LastLessonIndex = 1
				st.XP = 10
				played(st, now, 1)
			},
		},
		{
			Name:        "unit_unlocked",
			Description: "first unit finished, second unit unlocked",
			Route:       router.Map,
			apply: func(st *state.AppState, now time.Time) {
				cp := selected(st)
				if cp == nil {
					return
				}
				completeLessons(cp, 0, len(cp.Units[0].Lessons))
				cp.UnlockedUnitCount = min(2, len(cp.Units))
				cp.LastUnitIndex = cp.UnlockedUnitCount - 1
				cp.LastLessonIndex = 0
				st.XP = 10 * len(cp.Units[0].Lessons)
				played(st, now, 2)
			},
		},
		{
			Name:        "streak",
			Description: "six day streak that continues today",
			Route:       router.Profile,
			apply: func(st *state.AppState, now time.Time) {
				st.XP = 40
				st.StreakDays = 6
				st.LastPlayedDate = now.AddDate(0, 0, -1).Format(state.DateLayout)
			},
		},
		{
			Name:        "out_of_hearts",
			Description: "no hearts left (only matters with hearts enabled)",
			Route:       router.Home,
			apply: func(st *state.AppState, now time.Time) {
				st.Hearts = 0
				played(st, now, 1)
			},
		},
		{
			Name:        "course_complete",
			Description: "every unit of the selected course finished",
			Route:       router.Map,
			apply: func(st *state.AppState, now time.Time) {
				cp := selected(st)
				if cp == nil {
					return
				}
				xp := 0
				for i := range cp.Units {
					completeLessons(cp, i, len(cp.Units[i].Lessons))
					xp += 10 * len(cp.Units[i].Lessons)
				}
				cp.UnlockedUnitCount = len(cp.Units)
				cp.LastUnitIndex = len(cp.Units) - 1
				cp.LastLessonIndex = 0
				st.XP = xp
				played(st, now, 3)
			},
		},
		{
			Name:        "dark",
			Description: "fresh state with the dark theme",
			Route:       router.Courses,
			apply: func(st *state.AppState, _ time.Time) {
				st.Theme = state.ThemeDark
			},
		},
	}
}

func selected(st *state.AppState) *state.CourseProgress {
	cp := st.Courses[st.SelectedCourseID]
	if cp == nil || len(cp.Units) == 0 {
		return nil
	}
	return cp
}

func completeLessons(cp *state.CourseProgress, unit, n int) {
	u := &cp.Units[unit]
	u.CompletedLessonCount = min(n, len(u.Lessons))
}

func played(st *state.AppState, now time.Time, streak int) {
	st.StreakDays = streak
	st.LastPlayedDate = now.Format(state.DateLayout)
}
