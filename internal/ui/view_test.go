package ui

import (
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"codelingo/internal/lesson"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

type mockController struct {
	mu    sync.Mutex
	calls []string
}

func (m *mockController) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockController) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockController) OnNavigate(token string)  { m.record("navigate:" + token) }
func (m *mockController) OnContinue()              { m.record("continue") }
func (m *mockController) OnSelectCourse(id string) { m.record("course:" + id) }
func (m *mockController) OnOpenUnit(id string, u int) {
	m.record("unit:" + id + ":" + string(rune('0'+u)))
}
func (m *mockController) OnSubmit(answer string) { m.record("submit:" + answer) }
func (m *mockController) OnHint()                { m.record("hint") }
func (m *mockController) OnSkip()                { m.record("skip") }
func (m *mockController) OnNext()                { m.record("next") }
func (m *mockController) OnToggleTheme()         { m.record("theme") }
func (m *mockController) OnRefillHearts()        { m.record("refill") }
func (m *mockController) OnReset()               { m.record("reset") }
func (m *mockController) OnQuit()                { m.record("quit") }

func press(v *Root, code rune, mod tea.KeyMod, text string) {
	_, _ = v.Update(tea.KeyPressMsg{Code: code, Mod: mod, Text: text})
}

func typeText(v *Root, s string) {
	for _, ch := range s {
		press(v, ch, 0, string(ch))
	}
}

// waitForCall polls because controller calls are dispatched on goroutines.
func waitForCall(t *testing.T, ctrl *mockController, want string) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if slices.Contains(ctrl.snapshot(), want) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected controller call %q, got %v", want, ctrl.snapshot())
}

func expectNoCalls(t *testing.T, ctrl *mockController) {
	t.Helper()
	time.Sleep(30 * time.Millisecond)
	if calls := ctrl.snapshot(); len(calls) != 0 {
		t.Fatalf("expected no controller calls, got %v", calls)
	}
}

func newTestRoot() (*Root, *mockController) {
	v := New(Options{MotionLevel: "off"})
	ctrl := &mockController{}
	v.SetController(ctrl)
	v.SetSnapshot(testSnapshot())
	return v, ctrl
}

func testSnapshot() Snapshot {
	units := []UnitSummary{
		{Index: 0, Title: "Hello World", Completed: 3, Total: 3, Unlocked: true},
		{Index: 1, Title: "Variables", Completed: 1, Total: 3, Unlocked: true},
		{Index: 2, Title: "Types", Total: 3},
	}
	return Snapshot{
		Theme:          "light",
		XP:             30,
		Hearts:         5,
		MaxHearts:      5,
		Streak:         2,
		Badges:         []string{"First Steps"},
		SelectedCourse: "python",
		Courses: []CourseSummary{
			{ID: "cpp", Name: "C++", Units: units[:1], UnlockedUnits: 1},
			{ID: "python", Name: "Python", Units: units, UnlockedUnits: 2, LastUnit: 1, LastLesson: 1},
		},
		Continue: ContinueCard{CourseName: "Python", UnitIndex: 1, UnitTitle: "Variables", LessonIndex: 1, Completed: 1, Total: 3},
	}
}

func mcqLesson() LessonState {
	return LessonState{
		CourseID: "python", CourseName: "Python", UnitIndex: 1, UnitTitle: "Variables",
		LessonIndex: 0, LessonCount: 3, Kind: lesson.KindMultipleChoice,
		Prompt:  "Pick the right option.",
		Options: []string{"Alpha", "Bravo", "Charlie"},
	}
}

func TestHomeEnterContinues(t *testing.T) {
	v, ctrl := newTestRoot()
	v.SetScreen(ScreenHome)

	press(v, tea.KeyEnter, 0, "")
	waitForCall(t, ctrl, "continue")
}

func TestHomeMenuNavigatesToCourses(t *testing.T) {
	v, ctrl := newTestRoot()
	press(v, tea.KeyDown, 0, "")
	press(v, tea.KeyEnter, 0, "")
	waitForCall(t, ctrl, "navigate:courses")
}

func TestCoursesSelectionStartsOnCurrentCourse(t *testing.T) {
	v, ctrl := newTestRoot()
	v.SetScreen(ScreenCourses)
	if v.courseIndex != 1 {
		t.Fatalf("expected selected course highlighted, got index %d", v.courseIndex)
	}
	press(v, tea.KeyUp, 0, "")
	press(v, tea.KeyEnter, 0, "")
	waitForCall(t, ctrl, "course:cpp")
}

func TestMapRefusesLockedUnit(t *testing.T) {
	v, ctrl := newTestRoot()
	v.SetScreen(ScreenMap)
	if v.mapIndex != 1 {
		t.Fatalf("expected map cursor on last unit, got %d", v.mapIndex)
	}
	press(v, tea.KeyDown, 0, "")
	press(v, tea.KeyEnter, 0, "")
	expectNoCalls(t, ctrl)
	if !strings.Contains(v.statusFlash, "locked") {
		t.Fatalf("expected locked flash, got %q", v.statusFlash)
	}

	press(v, tea.KeyUp, 0, "")
	press(v, tea.KeyEnter, 0, "")
	waitForCall(t, ctrl, "unit:python:1")
}

func TestMultipleChoiceSubmitsSelectedIndex(t *testing.T) {
	v, ctrl := newTestRoot()
	v.SetLesson(mcqLesson())
	v.SetScreen(ScreenLesson)

	press(v, tea.KeyDown, 0, "")
	press(v, tea.KeyEnter, 0, "")
	waitForCall(t, ctrl, "submit:1")

	press(v, '3', 0, "3")
	if v.optionIndex != 2 {
		t.Fatalf("expected digit shortcut to pick option 3, got %d", v.optionIndex)
	}
}

func TestTrueFalseToggle(t *testing.T) {
	v, ctrl := newTestRoot()
	v.SetLesson(LessonState{CourseID: "python", Kind: lesson.KindTrueFalse, Prompt: "True or false?", Statement: "A variable stores data."})
	v.SetScreen(ScreenLesson)

	press(v, 'f', 0, "f")
	press(v, tea.KeyEnter, 0, "")
	waitForCall(t, ctrl, "submit:false")
}

func TestFillBlankRequiresText(t *testing.T) {
	v, ctrl := newTestRoot()
	v.SetLesson(LessonState{CourseID: "python", Kind: lesson.KindFillBlank, Prompt: "Fill the blank.", CodeTemplate: "print( __ )"})
	v.SetScreen(ScreenLesson)

	press(v, tea.KeyEnter, 0, "")
	expectNoCalls(t, ctrl)

	typeText(v, `"Hello"`)
	press(v, tea.KeyEnter, 0, "")
	waitForCall(t, ctrl, `submit:"Hello"`)
}

func TestResolvedLessonEnterMovesOn(t *testing.T) {
	v, ctrl := newTestRoot()
	ls := mcqLesson()
	ls.Resolved = true
	v.SetLesson(ls)
	v.SetFeedback(Feedback{Visible: true, Correct: true, Message: "Correct! +10 XP"})
	v.SetScreen(ScreenLesson)

	press(v, tea.KeyEnter, 0, "")
	waitForCall(t, ctrl, "next")
}

func TestLessonHintSkipAndBack(t *testing.T) {
	v, ctrl := newTestRoot()
	v.SetLesson(mcqLesson())
	v.SetScreen(ScreenLesson)

	press(v, tea.KeyF1, 0, "")
	press(v, tea.KeyF2, 0, "")
	press(v, tea.KeyEsc, 0, "")
	waitForCall(t, ctrl, "hint")
	waitForCall(t, ctrl, "skip")
	waitForCall(t, ctrl, "navigate:map/python")
}

func TestNewLessonClearsAnswerState(t *testing.T) {
	v, _ := newTestRoot()
	v.SetLesson(mcqLesson())
	v.SetScreen(ScreenLesson)
	v.SetFeedback(Feedback{Visible: true, Message: "Not quite"})
	press(v, tea.KeyDown, 0, "")
	if v.optionIndex != 1 {
		t.Fatalf("expected option cursor to move, got %d", v.optionIndex)
	}

	next := mcqLesson()
	next.LessonIndex = 1
	v.SetLesson(next)
	if v.optionIndex != 0 || v.feedback.Visible {
		t.Fatalf("expected fresh answer state, got option=%d feedback=%v", v.optionIndex, v.feedback.Visible)
	}
}

func TestProfileResetNeedsConfirmation(t *testing.T) {
	v, ctrl := newTestRoot()
	v.SetScreen(ScreenProfile)

	// Switch theme, Reset progress, Back.
	press(v, tea.KeyDown, 0, "")
	press(v, tea.KeyEnter, 0, "")
	if !v.resetOpen {
		t.Fatalf("expected reset confirmation to open")
	}
	expectNoCalls(t, ctrl)

	press(v, tea.KeyEnter, 0, "")
	if v.resetOpen {
		t.Fatalf("expected cancel to close the confirmation")
	}
	expectNoCalls(t, ctrl)

	v.SetResetConfirmOpen(true)
	press(v, tea.KeyRight, 0, "")
	press(v, tea.KeyEnter, 0, "")
	waitForCall(t, ctrl, "reset")
}

func TestResetEscCloses(t *testing.T) {
	v, ctrl := newTestRoot()
	v.SetResetConfirmOpen(true)
	press(v, tea.KeyEsc, 0, "")
	if v.resetOpen {
		t.Fatalf("expected escape to close reset confirmation")
	}
	expectNoCalls(t, ctrl)
}

func TestGlobalKeys(t *testing.T) {
	v, ctrl := newTestRoot()
	v.SetScreen(ScreenMap)

	press(v, tea.KeyF5, 0, "")
	press(v, tea.KeyF9, 0, "")
	press(v, 'q', tea.ModCtrl, "")
	waitForCall(t, ctrl, "theme")
	waitForCall(t, ctrl, "navigate:profile")
	waitForCall(t, ctrl, "quit")
}

func TestSnapshotSwitchesTheme(t *testing.T) {
	v, _ := newTestRoot()
	if v.theme.Name != "light" {
		t.Fatalf("expected light theme, got %q", v.theme.Name)
	}
	s := testSnapshot()
	s.Theme = "dark"
	v.SetSnapshot(s)
	if v.theme.Name != "dark" {
		t.Fatalf("expected dark theme, got %q", v.theme.Name)
	}
}

func TestRenderScreens(t *testing.T) {
	v, _ := newTestRoot()
	_, _ = v.Update(tea.WindowSizeMsg{Width: 110, Height: 30})

	home := ansi.Strip(v.Render())
	for _, want := range []string{"XP 30", "Streak 2", "Continue", "Unit 2: Variables"} {
		if !strings.Contains(home, want) {
			t.Fatalf("home frame missing %q:\n%s", want, home)
		}
	}
	if strings.Contains(home, "Hearts") {
		t.Fatalf("hearts should be hidden when disabled")
	}

	v.SetScreen(ScreenMap)
	m := ansi.Strip(v.Render())
	if !strings.Contains(m, "Python  2/3 unlocked") || !strings.Contains(m, "03 Types") {
		t.Fatalf("unexpected map frame:\n%s", m)
	}

	v.SetLesson(mcqLesson())
	v.SetScreen(ScreenLesson)
	l := ansi.Strip(v.Render())
	if !strings.Contains(l, "2) Bravo") || !strings.Contains(l, "Lesson 1/3") {
		t.Fatalf("unexpected lesson frame:\n%s", l)
	}

	if got := strings.Count(v.Render(), "\n") + 1; got != 30 {
		t.Fatalf("expected a full-height frame, got %d lines", got)
	}
}

func TestRenderTooSmall(t *testing.T) {
	v, _ := newTestRoot()
	_, _ = v.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(v.Render(), "too small") {
		t.Fatalf("expected too-small notice")
	}
}

func TestASCIIRendering(t *testing.T) {
	v := New(Options{ASCIIOnly: true, MotionLevel: "off"})
	s := testSnapshot()
	s.HeartsEnabled = true
	v.SetSnapshot(s)
	frame := v.Render()
	if !strings.Contains(frame, "Hearts 5/5") {
		t.Fatalf("expected ascii hearts counter")
	}
	if strings.ContainsAny(ansi.Strip(frame), "╭╮●○♥") {
		t.Fatalf("expected ascii-only frame")
	}
}
