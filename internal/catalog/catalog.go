package catalog

import (
	"errors"
	"fmt"

	"codelingo/internal/lesson"
)

var (
	ErrUnknownCourse  = errors.New("unknown course")
	ErrUnitOutOfRange = errors.New("unit index out of range")
)

// Catalog is the read-only set of courses. Units and lessons are generated
// once at load time and never change afterwards.
type Catalog struct {
	courses []Course
	byID    map[string]int
}

type Course struct {
	ID    string
	Name  string
	Units []Unit
}

type Unit struct {
	Index   int
	Title   string
	Lessons []lesson.Lesson
}

func New(packs []Pack) (*Catalog, error) {
	c := &Catalog{byID: map[string]int{}}
	for _, p := range packs {
		if _, ok := c.byID[p.CourseID]; ok {
			return nil, fmt.Errorf("duplicate course_id %q", p.CourseID)
		}
		c.byID[p.CourseID] = len(c.courses)
		c.courses = append(c.courses, generateCourse(p))
	}
	if len(c.courses) == 0 {
		return nil, errors.New("catalog has no courses")
	}
	return c, nil
}

func generateCourse(p Pack) Course {
	course := Course{ID: p.CourseID, Name: p.Name, Units: make([]Unit, 0, len(p.Units))}
	for i, title := range p.Units {
		u := Unit{Index: i, Title: title, Lessons: make([]lesson.Lesson, 0, len(p.Lessons))}
		for _, tmpl := range p.Lessons {
			u.Lessons = append(u.Lessons, tmpl.Build(title))
		}
		course.Units = append(course.Units, u)
	}
	return course
}

func (c *Catalog) Courses() []Course {
	return append([]Course(nil), c.courses...)
}

func (c *Catalog) Has(courseID string) bool {
	_, ok := c.byID[courseID]
	return ok
}

func (c *Catalog) Course(courseID string) (Course, error) {
	idx, ok := c.byID[courseID]
	if !ok {
		return Course{}, fmt.Errorf("%w: %q", ErrUnknownCourse, courseID)
	}
	return c.courses[idx], nil
}

// DefaultCourseID is the first course in catalog order.
func (c *Catalog) DefaultCourseID() string {
	return c.courses[0].ID
}

func (c *Catalog) LessonsFor(courseID string, unitIndex int) ([]lesson.Lesson, error) {
	course, err := c.Course(courseID)
	if err != nil {
		return nil, err
	}
	if unitIndex < 0 || unitIndex >= len(course.Units) {
		return nil, fmt.Errorf("%w: %s unit %d (have %d)", ErrUnitOutOfRange, courseID, unitIndex, len(course.Units))
	}
	return course.Units[unitIndex].Lessons, nil
}

// Label returns the display name of a course, falling back to its id.
func (c *Catalog) Label(courseID string) string {
	course, err := c.Course(courseID)
	if err != nil {
		return courseID
	}
	return course.Name
}
