package ui

import "codelingo/internal/lesson"

// Controller receives player intents. Calls are dispatched off the UI
// goroutine; the controller answers by pushing state back through View.
type Controller interface {
	OnNavigate(token string)
	OnContinue()
	OnSelectCourse(courseID string)
	OnOpenUnit(courseID string, unitIndex int)
	OnSubmit(answer string)
	OnHint()
	OnSkip()
	OnNext()
	OnToggleTheme()
	OnRefillHearts()
	OnReset()
	OnQuit()
}

type View interface {
	Run() error
	Stop()
	SetController(Controller)
	SetScreen(screen Screen)
	SetSnapshot(Snapshot)
	SetLesson(LessonState)
	SetFeedback(Feedback)
	SetResetConfirmOpen(open bool)
	FlashStatus(msg string)
}

type Screen int

const (
	ScreenHome Screen = iota
	ScreenCourses
	ScreenMap
	ScreenLesson
	ScreenProfile
)

func (s Screen) Title() string {
	switch s {
	case ScreenCourses:
		return "Courses"
	case ScreenMap:
		return "Map"
	case ScreenLesson:
		return "Lesson"
	case ScreenProfile:
		return "Profile"
	default:
		return "Home"
	}
}

type LayoutMode int

const (
	LayoutWide LayoutMode = iota
	LayoutCompact
	LayoutTooSmall
)

// Snapshot is an immutable copy of everything the screens render besides
// the active lesson.
type Snapshot struct {
	Theme          string
	XP             int
	Hearts         int
	HeartsEnabled  bool
	MaxHearts      int
	Streak         int
	Badges         []string
	SelectedCourse string
	Courses        []CourseSummary
	Continue       ContinueCard
	Stats          StatsSummary
}

func (s Snapshot) Course(id string) (CourseSummary, bool) {
	for _, c := range s.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return CourseSummary{}, false
}

type CourseSummary struct {
	ID            string
	Name          string
	Units         []UnitSummary
	UnlockedUnits int
	LastUnit      int
	LastLesson    int
}

type UnitSummary struct {
	Index     int
	Title     string
	Completed int
	Total     int
	Unlocked  bool
}

type ContinueCard struct {
	CourseName  string
	UnitIndex   int
	UnitTitle   string
	LessonIndex int
	Completed   int
	Total       int
}

type StatsSummary struct {
	Attempts  int
	Correct   int
	HintsUsed int
	Sessions  int
}

type LessonState struct {
	CourseID     string
	CourseName   string
	UnitIndex    int
	UnitTitle    string
	LessonIndex  int
	LessonCount  int
	Completed    int
	Kind         lesson.Kind
	Prompt       string
	Options      []string
	CodeTemplate string
	Statement    string
	// Hint is empty until the player asks for it.
	Hint       string
	RetryCount int
	Resolved   bool
}

func (l LessonState) sameLesson(o LessonState) bool {
	return l.CourseID == o.CourseID && l.UnitIndex == o.UnitIndex && l.LessonIndex == o.LessonIndex
}

type Feedback struct {
	Visible  bool
	Correct  bool
	Message  string
	XPGained int
	Details  []string
}
