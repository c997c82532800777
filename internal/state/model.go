package state

import (
	"codelingo/internal/catalog"
	"codelingo/internal/lesson"
)

const (
	SchemaVersion = 2

	ThemeLight = "light"
	ThemeDark  = "dark"

	DefaultHearts = 5

	// DateLayout is the calendar-day format used for LastPlayedDate.
	DateLayout = "2006-01-02"
)

// AppState is everything that survives a restart. Lesson content inside
// units is rehydrated from the catalog and never serialized.
type AppState struct {
	Version          int                        `json:"version"`
	Theme            string                     `json:"theme"`
	SelectedCourseID string                     `json:"selectedCourseId"`
	XP               int                        `json:"xp"`
	Hearts           int                        `json:"hearts"`
	StreakDays       int                        `json:"streakDays"`
	LastPlayedDate   string                     `json:"lastPlayedDate,omitempty"`
	Courses          map[string]*CourseProgress `json:"courses"`
	Badges           []string                   `json:"badges"`
}

type CourseProgress struct {
	CourseID          string         `json:"courseId"`
	Units             []UnitProgress `json:"units"`
	LastUnitIndex     int            `json:"lastUnitIndex"`
	LastLessonIndex   int            `json:"lastLessonIndex"`
	UnlockedUnitCount int            `json:"unlockedUnitCount"`
}

type UnitProgress struct {
	Index                int             `json:"index"`
	Title                string          `json:"title"`
	Lessons              []lesson.Lesson `json:"-"`
	CompletedLessonCount int             `json:"completedLessonCount"`
}

func (u UnitProgress) Complete() bool {
	return len(u.Lessons) > 0 && u.CompletedLessonCount >= len(u.Lessons)
}

// Default builds the first-run state for every course in the catalog.
func Default(cat *catalog.Catalog) *AppState {
	st := &AppState{
		Version:          SchemaVersion,
		Theme:            ThemeLight,
		SelectedCourseID: cat.DefaultCourseID(),
		Hearts:           DefaultHearts,
		Courses:          map[string]*CourseProgress{},
		Badges:           []string{},
	}
	for _, c := range cat.Courses() {
		st.Courses[c.ID] = newCourseProgress(c)
	}
	return st
}

func newCourseProgress(c catalog.Course) *CourseProgress {
	cp := &CourseProgress{
		CourseID:          c.ID,
		Units:             make([]UnitProgress, 0, len(c.Units)),
		UnlockedUnitCount: 1,
	}
	for _, u := range c.Units {
		cp.Units = append(cp.Units, UnitProgress{Index: u.Index, Title: u.Title, Lessons: u.Lessons})
	}
	return cp
}

// Clone returns a deep copy. Lesson values are shared since they are
// immutable.
func (s *AppState) Clone() *AppState {
	if s == nil {
		return nil
	}
	out := *s
	out.Badges = append([]string(nil), s.Badges...)
	out.Courses = make(map[string]*CourseProgress, len(s.Courses))
	for id, c := range s.Courses {
		cp := *c
		cp.Units = append([]UnitProgress(nil), c.Units...)
		out.Courses[id] = &cp
	}
	return &out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
