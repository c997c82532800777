package router

import (
	"errors"
	"testing"
)

type courseSet map[string]bool

func (c courseSet) Has(id string) bool { return c[id] }

func TestParse(t *testing.T) {
	courses := courseSet{"python": true, "cpp": true, "java": true}
	cases := []struct {
		token      string
		want       Route
		redirected bool
	}{
		{token: "", want: Route{Name: Home}},
		{token: "#home", want: Route{Name: Home}},
		{token: "#/courses", want: Route{Name: Courses}},
		{token: "profile", want: Route{Name: Profile}},
		{token: "map/python", want: Route{Name: Map, CourseID: "python"}},
		{token: "map", want: Route{Name: Courses}, redirected: true},
		{token: "map/cobol", want: Route{Name: Courses}, redirected: true},
		{token: "lesson/cpp/3/2", want: Route{Name: Lesson, CourseID: "cpp", UnitIndex: 3, LessonIndex: 2}},
		{token: "lesson/cpp/3", want: Route{Name: Home}, redirected: true},
		{token: "lesson/cobol/0/0", want: Route{Name: Home}, redirected: true},
		{token: "lesson/cpp/x/0", want: Route{Name: Home}, redirected: true},
		{token: "lesson/cpp/0/-1", want: Route{Name: Home}, redirected: true},
		{token: "settings", want: Route{Name: Home}, redirected: true},
	}
	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			got := Parse(tc.token, courses)
			if got.Redirected != tc.redirected {
				t.Fatalf("expected redirected=%v, got %#v", tc.redirected, got)
			}
			got.Redirected, got.Reason = false, ""
			if got != tc.want {
				t.Fatalf("expected %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestRedirectErrorWrapsSentinel(t *testing.T) {
	r := Parse("nowhere", nil)
	if !errors.Is(r.Err(), ErrInvalidNavigation) {
		t.Fatalf("expected ErrInvalidNavigation, got %v", r.Err())
	}
	if Parse("courses", nil).Err() != nil {
		t.Fatalf("valid route should not carry an error")
	}
}

func TestStringRoundTrips(t *testing.T) {
	for _, r := range []Route{
		{Name: Home},
		{Name: Profile},
		MapOf("java"),
		LessonAt("python", 12, 1),
	} {
		if got := Parse(r.String(), nil); got != r {
			t.Fatalf("round trip of %q gave %#v", r.String(), got)
		}
	}
	if (Route{}).String() != "home" {
		t.Fatalf("zero route should format as home")
	}
}
