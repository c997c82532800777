// Package router parses navigation tokens of the form
// route[/courseId[/unitIndex/lessonIndex]] into routes, redirecting
// anything it cannot honour.
package router

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Name string

const (
	Home    Name = "home"
	Courses Name = "courses"
	Map     Name = "map"
	Lesson  Name = "lesson"
	Profile Name = "profile"
)

var ErrInvalidNavigation = errors.New("invalid navigation")

// CourseSet reports which course ids exist.
type CourseSet interface {
	Has(courseID string) bool
}

type Route struct {
	Name        Name
	CourseID    string
	UnitIndex   int
	LessonIndex int
	// Redirected is set when the token could not be honoured and Name is the
	// fallback; Reason says why.
	Redirected bool
	Reason     string
}

// Parse resolves token. A nil course set accepts every course id.
func Parse(token string, courses CourseSet) Route {
	parts := split(token)
	if len(parts) == 0 {
		return Route{Name: Home}
	}
	switch Name(parts[0]) {
	case Home, Courses, Profile:
		return Route{Name: Name(parts[0])}
	case Map:
		if len(parts) < 2 {
			return redirect(Courses, "map needs a course")
		}
		if !known(courses, parts[1]) {
			return redirect(Courses, fmt.Sprintf("unknown course %q", parts[1]))
		}
		return Route{Name: Map, CourseID: parts[1]}
	case Lesson:
		if len(parts) < 4 {
			return redirect(Home, "lesson needs course, unit and lesson")
		}
		if !known(courses, parts[1]) {
			return redirect(Home, fmt.Sprintf("unknown course %q", parts[1]))
		}
		unit, err1 := index(parts[2])
		les, err2 := index(parts[3])
		if err := errors.Join(err1, err2); err != nil {
			return redirect(Home, err.Error())
		}
		return Route{Name: Lesson, CourseID: parts[1], UnitIndex: unit, LessonIndex: les}
	default:
		return redirect(Home, fmt.Sprintf("unknown route %q", parts[0]))
	}
}

// Err returns an error wrapping ErrInvalidNavigation for redirected routes.
func (r Route) Err() error {
	if !r.Redirected {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidNavigation, r.Reason)
}

// String formats the route back into a token that Parse accepts.
func (r Route) String() string {
	switch r.Name {
	case Map:
		return string(Map) + "/" + r.CourseID
	case Lesson:
		return fmt.Sprintf("%s/%s/%d/%d", Lesson, r.CourseID, r.UnitIndex, r.LessonIndex)
	case "":
		return string(Home)
	default:
		return string(r.Name)
	}
}

func MapOf(courseID string) Route { return Route{Name: Map, CourseID: courseID} }

func LessonAt(courseID string, unitIndex, lessonIndex int) Route {
	return Route{Name: Lesson, CourseID: courseID, UnitIndex: unitIndex, LessonIndex: lessonIndex}
}

func split(token string) []string {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "#")
	token = strings.Trim(token, "/")
	if token == "" {
		return nil
	}
	return strings.Split(token, "/")
}

func known(courses CourseSet, id string) bool {
	if id == "" {
		return false
	}
	return courses == nil || courses.Has(id)
}

func index(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("index %q is not a number", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("index %d is negative", n)
	}
	return n, nil
}

func redirect(to Name, reason string) Route {
	return Route{Name: to, Redirected: true, Reason: reason}
}
