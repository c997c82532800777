package state

import (
	"encoding/json"
	"fmt"

	"codelingo/internal/catalog"
)

type courseRecord struct {
	Units             []unitRecord `json:"units"`
	LastUnitIndex     *int         `json:"lastUnitIndex"`
	LastLessonIndex   *int         `json:"lastLessonIndex"`
	UnlockedUnitCount *int         `json:"unlockedUnitCount"`
}

type unitRecord struct {
	Index                int `json:"index"`
	CompletedLessonCount int `json:"completedLessonCount"`
}

// decode merges a persisted document over base, a freshly generated default.
// Top-level fields override the defaults one by one; courses are merged by
// course id and units by unit index so that catalog growth keeps saved
// progress and adds the new units with default progress.
func decode(raw []byte, base *AppState, cat *catalog.Catalog) (*AppState, error) {
	st := base
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	courses := fields["courses"]
	delete(fields, "courses")
	rest, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rest, st); err != nil {
		return nil, err
	}
	if len(courses) > 0 && string(courses) != "null" {
		var records map[string]courseRecord
		if err := json.Unmarshal(courses, &records); err != nil {
			return nil, fmt.Errorf("courses: %w", err)
		}
		for id, rec := range records {
			if cp, ok := st.Courses[id]; ok {
				mergeCourse(cp, rec)
			}
		}
	}
	normalize(st, cat)
	return st, nil
}

func mergeCourse(cp *CourseProgress, rec courseRecord) {
	for _, u := range rec.Units {
		if u.Index < 0 || u.Index >= len(cp.Units) {
			continue
		}
		unit := &cp.Units[u.Index]
		unit.CompletedLessonCount = clamp(u.CompletedLessonCount, 0, len(unit.Lessons))
	}
	if rec.UnlockedUnitCount != nil {
		cp.UnlockedUnitCount = *rec.UnlockedUnitCount
	}
	if rec.LastUnitIndex != nil {
		cp.LastUnitIndex = *rec.LastUnitIndex
	}
	if rec.LastLessonIndex != nil {
		cp.LastLessonIndex = *rec.LastLessonIndex
	}
}

// normalize pulls every field back inside its invariant range.
func normalize(st *AppState, cat *catalog.Catalog) {
	st.Version = SchemaVersion
	if st.Theme != ThemeLight && st.Theme != ThemeDark {
		st.Theme = ThemeLight
	}
	if !cat.Has(st.SelectedCourseID) {
		st.SelectedCourseID = cat.DefaultCourseID()
	}
	st.XP = max(0, st.XP)
	st.Hearts = max(0, st.Hearts)
	st.StreakDays = max(0, st.StreakDays)
	if st.Badges == nil {
		st.Badges = []string{}
	}
	for _, cp := range st.Courses {
		n := len(cp.Units)
		if n == 0 {
			continue
		}
		cp.UnlockedUnitCount = clamp(cp.UnlockedUnitCount, 1, n)
		// Units appended to the catalog after the frontier was finished
		// open up the same way finishing the frontier would have.
		for cp.UnlockedUnitCount < n && cp.Units[cp.UnlockedUnitCount-1].Complete() {
			cp.UnlockedUnitCount++
		}
		cp.LastUnitIndex = clamp(cp.LastUnitIndex, 0, n-1)
		lessons := len(cp.Units[cp.LastUnitIndex].Lessons)
		cp.LastLessonIndex = clamp(cp.LastLessonIndex, 0, max(0, lessons-1))
	}
}
