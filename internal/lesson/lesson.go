package lesson

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindFillBlank      Kind = "fill_blank"
	KindTrueFalse      Kind = "true_false"
)

var ErrResponseKind = errors.New("response does not match lesson kind")

// Lesson is one gradable exercise. The set of implementations is closed:
// MultipleChoice, FillBlank and TrueFalse.
type Lesson interface {
	Kind() Kind
	Prompt() string
	Hint() string
	isLesson()
}

type MultipleChoice struct {
	Text               string
	Options            []string
	CorrectOptionIndex int
	HintText           string
}

func (MultipleChoice) Kind() Kind       { return KindMultipleChoice }
func (l MultipleChoice) Prompt() string { return l.Text }
func (l MultipleChoice) Hint() string   { return l.HintText }
func (MultipleChoice) isLesson()        {}

type FillBlank struct {
	Text           string
	CodeTemplate   string
	ExpectedAnswer string
	HintText       string
}

func (FillBlank) Kind() Kind       { return KindFillBlank }
func (l FillBlank) Prompt() string { return l.Text }
func (l FillBlank) Hint() string   { return l.HintText }
func (FillBlank) isLesson()        {}

type TrueFalse struct {
	Text           string
	Statement      string
	ExpectedAnswer bool
	HintText       string
}

func (TrueFalse) Kind() Kind       { return KindTrueFalse }
func (l TrueFalse) Prompt() string { return l.Text }
func (l TrueFalse) Hint() string   { return l.HintText }
func (TrueFalse) isLesson()        {}

// Response is a submitted answer. OptionResponse answers MultipleChoice,
// TextResponse answers FillBlank, BoolResponse answers TrueFalse.
type Response interface {
	isResponse()
}

type OptionResponse int

type TextResponse string

type BoolResponse bool

func (OptionResponse) isResponse() {}
func (TextResponse) isResponse()   {}
func (BoolResponse) isResponse()   {}

type Verdict int

const (
	Incorrect Verdict = iota
	Correct
)

func (v Verdict) String() string {
	if v == Correct {
		return "correct"
	}
	return "incorrect"
}

// Check grades r against l. It has no side effects.
func Check(l Lesson, r Response) (Verdict, error) {
	switch l := l.(type) {
	case MultipleChoice:
		got, ok := r.(OptionResponse)
		if !ok {
			return Incorrect, mismatch(l, r)
		}
		return verdict(int(got) == l.CorrectOptionIndex), nil
	case FillBlank:
		got, ok := r.(TextResponse)
		if !ok {
			return Incorrect, mismatch(l, r)
		}
		return verdict(strings.TrimSpace(string(got)) == l.ExpectedAnswer), nil
	case TrueFalse:
		got, ok := r.(BoolResponse)
		if !ok {
			return Incorrect, mismatch(l, r)
		}
		return verdict(bool(got) == l.ExpectedAnswer), nil
	default:
		return Incorrect, fmt.Errorf("unsupported lesson type %T", l)
	}
}

func verdict(ok bool) Verdict {
	if ok {
		return Correct
	}
	return Incorrect
}

func mismatch(l Lesson, r Response) error {
	return fmt.Errorf("%w: %s lesson got %T", ErrResponseKind, l.Kind(), r)
}

// ParseResponse converts raw player input into the response type l expects.
// Multiple choice accepts a 0-based index, true/false accepts t/f, true/false,
// y/n or 1/0.
func ParseResponse(l Lesson, raw string) (Response, error) {
	switch l := l.(type) {
	case MultipleChoice:
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("option index %q: %w", raw, err)
		}
		return OptionResponse(idx), nil
	case FillBlank:
		return TextResponse(raw), nil
	case TrueFalse:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "t", "true", "y", "yes", "1":
			return BoolResponse(true), nil
		case "f", "false", "n", "no", "0":
			return BoolResponse(false), nil
		}
		return nil, fmt.Errorf("true/false answer %q not recognized", raw)
	default:
		return nil, fmt.Errorf("unsupported lesson type %T", l)
	}
}
