package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"codelingo/internal/lesson"
)

func TestBuiltinCatalogShape(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("load builtin: %v", err)
	}
	courses := c.Courses()
	got := make([]string, 0, len(courses))
	for _, course := range courses {
		got = append(got, course.ID)
		if len(course.Units) != 20 {
			t.Fatalf("%s: expected 20 units, got %d", course.ID, len(course.Units))
		}
		for _, u := range course.Units {
			if len(u.Lessons) != 3 {
				t.Fatalf("%s unit %d: expected 3 lessons, got %d", course.ID, u.Index, len(u.Lessons))
			}
		}
	}
	want := []string{"python", "cpp", "java"}
	if len(got) != len(want) {
		t.Fatalf("expected courses %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("course order mismatch at %d: got %q want %q", i, got[i], want[i])
		}
	}
	if c.DefaultCourseID() != "python" {
		t.Fatalf("expected python as default course, got %q", c.DefaultCourseID())
	}
	if c.Label("cpp") != "C++" {
		t.Fatalf("expected C++ label, got %q", c.Label("cpp"))
	}
}

func TestLessonsForGeneratesUnitContent(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("load builtin: %v", err)
	}
	lessons, err := c.LessonsFor("python", 0)
	if err != nil {
		t.Fatalf("lessons for: %v", err)
	}
	mcq, ok := lessons[0].(lesson.MultipleChoice)
	if !ok {
		t.Fatalf("expected first lesson to be multiple choice, got %T", lessons[0])
	}
	if mcq.CorrectOptionIndex != 1 {
		t.Fatalf("expected correct option 1, got %d", mcq.CorrectOptionIndex)
	}
	if mcq.Prompt() != "Intro & Tooling: Pick the correct answer" {
		t.Fatalf("unexpected prompt %q", mcq.Prompt())
	}
	fill, ok := lessons[1].(lesson.FillBlank)
	if !ok || fill.ExpectedAnswer != `"Hello"` {
		t.Fatalf("unexpected fill lesson %#v", lessons[1])
	}
	if _, ok := lessons[2].(lesson.TrueFalse); !ok {
		t.Fatalf("expected third lesson to be true/false, got %T", lessons[2])
	}
}

func TestLessonsForErrors(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("load builtin: %v", err)
	}
	if _, err := c.LessonsFor("cobol", 0); !errors.Is(err, ErrUnknownCourse) {
		t.Fatalf("expected ErrUnknownCourse, got %v", err)
	}
	if _, err := c.LessonsFor("java", 20); !errors.Is(err, ErrUnitOutOfRange) {
		t.Fatalf("expected ErrUnitOutOfRange, got %v", err)
	}
	if _, err := c.LessonsFor("java", -1); !errors.Is(err, ErrUnitOutOfRange) {
		t.Fatalf("expected ErrUnitOutOfRange for negative index, got %v", err)
	}
}

func TestLoadDirRejectsInvalidPack(t *testing.T) {
	dir := t.TempDir()
	body := `kind: course
schema_version: 1
course_id: go
name: Go
units: [Basics]
lessons:
  - kind: multiple_choice
    prompt: "{{unit}}: pick"
    options: [A, B]
    correct_option_index: 5
`
	if err := os.WriteFile(filepath.Join(dir, "go.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDir(dir); err == nil {
		t.Fatalf("expected validation error for out of range option")
	}
}

func TestLoadDirCustomCourse(t *testing.T) {
	dir := t.TempDir()
	body := `kind: course
schema_version: 1
course_id: go
name: Go
units: [Basics, Goroutines]
lessons:
  - kind: true_false
    prompt: "{{unit}}: true?"
    statement: "{{unit}} matter."
    expected_bool: false
`
	if err := os.WriteFile(filepath.Join(dir, "go.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	lessons, err := c.LessonsFor("go", 1)
	if err != nil {
		t.Fatalf("lessons for: %v", err)
	}
	tf := lessons[0].(lesson.TrueFalse)
	if tf.Statement != "Goroutines matter." || tf.ExpectedAnswer {
		t.Fatalf("unexpected generated lesson %#v", tf)
	}
}

func TestPackValidateRejectsUnsupportedSchemaVersion(t *testing.T) {
	idx := 0
	p := Pack{
		Kind:          CourseKind,
		SchemaVersion: SupportedSchemaVersion + 1,
		CourseID:      "python",
		Name:          "Python",
		Units:         []string{"x"},
		Lessons:       []LessonTemplate{{Kind: "multiple_choice", Options: []string{"a", "b"}, CorrectOptionIndex: &idx}},
	}
	if err := p.Validate(); err == nil {
		t.Fatalf("expected unsupported schema version error")
	}
}

func TestNewRejectsDuplicateCourse(t *testing.T) {
	yes := true
	p := Pack{
		Kind: CourseKind, SchemaVersion: 1, CourseID: "python", Name: "Python",
		Units:   []string{"x"},
		Lessons: []LessonTemplate{{Kind: "true_false", Statement: "s", ExpectedBool: &yes}},
	}
	if _, err := New([]Pack{p, p}); err == nil {
		t.Fatalf("expected duplicate course error")
	}
}
