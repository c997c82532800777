package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"codelingo/internal/lesson"
)

const (
	CourseKind             = "course"
	SupportedSchemaVersion = 1

	unitPlaceholder = "{{unit}}"
)

var idPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{1,31}$`)

// Pack is the on-disk shape of one course file.
type Pack struct {
	Kind          string           `yaml:"kind"`
	SchemaVersion int              `yaml:"schema_version"`
	CourseID      string           `yaml:"course_id"`
	Name          string           `yaml:"name"`
	Order         int              `yaml:"order"`
	Units         []string         `yaml:"units"`
	Lessons       []LessonTemplate `yaml:"lessons"`

	Path string `yaml:"-"`
}

// LessonTemplate is a lesson with an optional {{unit}} placeholder in its
// text fields. Which answer fields apply depends on Kind.
type LessonTemplate struct {
	Kind               string   `yaml:"kind"`
	Prompt             string   `yaml:"prompt"`
	Hint               string   `yaml:"hint"`
	Options            []string `yaml:"options"`
	CorrectOptionIndex *int     `yaml:"correct_option_index"`
	CodeTemplate       string   `yaml:"code_template"`
	ExpectedText       *string  `yaml:"expected_text"`
	Statement          string   `yaml:"statement"`
	ExpectedBool       *bool    `yaml:"expected_bool"`
}

func (p Pack) Validate() error {
	if p.Kind != CourseKind {
		return fmt.Errorf("kind must be %q", CourseKind)
	}
	if p.SchemaVersion == 0 {
		return fmt.Errorf("schema_version is required")
	}
	if p.SchemaVersion > SupportedSchemaVersion {
		return fmt.Errorf("unsupported course schema_version %d (max supported %d)", p.SchemaVersion, SupportedSchemaVersion)
	}
	if !idPattern.MatchString(p.CourseID) {
		return fmt.Errorf("invalid course_id %q", p.CourseID)
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(p.Units) == 0 {
		return fmt.Errorf("units must contain at least one title")
	}
	seen := map[string]struct{}{}
	for i, title := range p.Units {
		title = strings.TrimSpace(title)
		if title == "" {
			return fmt.Errorf("units[%d] title is required", i)
		}
		if _, ok := seen[title]; ok {
			return fmt.Errorf("duplicate unit title %q", title)
		}
		seen[title] = struct{}{}
	}
	if len(p.Lessons) == 0 {
		return fmt.Errorf("lessons must contain at least one template")
	}
	for i, l := range p.Lessons {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("lessons[%d]: %w", i, err)
		}
	}
	return nil
}

func (t LessonTemplate) Validate() error {
	switch lesson.Kind(t.Kind) {
	case lesson.KindMultipleChoice:
		if len(t.Options) < 2 {
			return fmt.Errorf("multiple_choice needs at least two options")
		}
		if t.CorrectOptionIndex == nil {
			return fmt.Errorf("multiple_choice requires correct_option_index")
		}
		if *t.CorrectOptionIndex < 0 || *t.CorrectOptionIndex >= len(t.Options) {
			return fmt.Errorf("correct_option_index %d out of range", *t.CorrectOptionIndex)
		}
	case lesson.KindFillBlank:
		if t.ExpectedText == nil {
			return fmt.Errorf("fill_blank requires expected_text")
		}
		if strings.TrimSpace(*t.ExpectedText) != *t.ExpectedText || *t.ExpectedText == "" {
			return fmt.Errorf("expected_text must be non-empty without surrounding whitespace")
		}
	case lesson.KindTrueFalse:
		if t.ExpectedBool == nil {
			return fmt.Errorf("true_false requires expected_bool")
		}
		if t.Statement == "" {
			return fmt.Errorf("true_false requires statement")
		}
	default:
		return fmt.Errorf("unknown lesson kind %q", t.Kind)
	}
	return nil
}

// Build renders the template for one unit.
func (t LessonTemplate) Build(unitTitle string) lesson.Lesson {
	fill := func(s string) string { return strings.ReplaceAll(s, unitPlaceholder, unitTitle) }
	switch lesson.Kind(t.Kind) {
	case lesson.KindMultipleChoice:
		return lesson.MultipleChoice{
			Text:               fill(t.Prompt),
			Options:            append([]string(nil), t.Options...),
			CorrectOptionIndex: *t.CorrectOptionIndex,
			HintText:           fill(t.Hint),
		}
	case lesson.KindFillBlank:
		return lesson.FillBlank{
			Text:           fill(t.Prompt),
			CodeTemplate:   t.CodeTemplate,
			ExpectedAnswer: *t.ExpectedText,
			HintText:       fill(t.Hint),
		}
	default:
		return lesson.TrueFalse{
			Text:           fill(t.Prompt),
			Statement:      fill(t.Statement),
			ExpectedAnswer: *t.ExpectedBool,
			HintText:       fill(t.Hint),
		}
	}
}
