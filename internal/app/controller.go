package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codelingo/internal/catalog"
	"codelingo/internal/lesson"
	"codelingo/internal/progress"
	"codelingo/internal/router"
	"codelingo/internal/state"
	"codelingo/internal/telemetry"
	"codelingo/internal/ui"
)

func (a *App) OnNavigate(token string) {
	ctx, cancel := opContext()
	defer cancel()
	route := router.Parse(token, a.catalog)
	if route.Redirected {
		a.logger.Warn("navigation redirected", "token", token, "to", route.String(), "err", route.Err())
		a.journal.NavRedirect(token, route.String())
		a.view.FlashStatus(redirectMessage(route))
	}
	a.show(ctx, route)
}

func redirectMessage(r router.Route) string {
	switch r.Name {
	case router.Courses:
		return "Pick a course first"
	default:
		return "Page not found, back home"
	}
}

func (a *App) show(ctx context.Context, route router.Route) {
	switch route.Name {
	case router.Map:
		if err := a.engine.SelectCourse(ctx, route.CourseID); err != nil && !a.tolerate("select course", err) {
			a.show(ctx, router.Route{Name: router.Courses})
			return
		}
		a.setScreen(ctx, ui.ScreenMap, route)
	case router.Lesson:
		err := a.engine.StartLesson(ctx, route.CourseID, route.UnitIndex, route.LessonIndex)
		a.afterStart(ctx, route.CourseID, err)
	case router.Courses:
		a.setScreen(ctx, ui.ScreenCourses, route)
	case router.Profile:
		a.setScreen(ctx, ui.ScreenProfile, route)
	default:
		a.setScreen(ctx, ui.ScreenHome, router.Route{Name: router.Home})
	}
}

// afterStart shows the lesson the engine just opened, or explains why it
// could not be opened.
func (a *App) afterStart(ctx context.Context, courseID string, err error) {
	var locked *progress.LockedUnitError
	switch {
	case err == nil || savedLater(err):
		a.tolerate("start lesson", err)
		a.enterLesson(ctx)
	case errors.As(err, &locked):
		a.logger.Info("locked unit requested", "course", locked.CourseID, "unit", locked.UnitIndex)
		a.view.FlashStatus(fmt.Sprintf("Unit %d is locked. Finish unit %d first.", locked.UnitIndex+1, locked.UnlockedUnitCount))
		a.setScreen(ctx, ui.ScreenMap, router.MapOf(courseID))
	default:
		a.logger.Warn("start lesson", "course", courseID, "err", err)
		a.journal.NavRedirect(courseID, string(router.Home))
		a.view.FlashStatus("That lesson does not exist, back home")
		a.setScreen(ctx, ui.ScreenHome, router.Route{Name: router.Home})
	}
}

func (a *App) enterLesson(ctx context.Context) {
	attempt, _, ok := a.engine.Current()
	if !ok {
		a.setScreen(ctx, ui.ScreenHome, router.Route{Name: router.Home})
		return
	}
	a.journal.LessonStarted(refOf(attempt))
	a.view.SetFeedback(ui.Feedback{})
	a.view.SetLesson(a.lessonState())
	a.setScreen(ctx, ui.ScreenLesson, router.LessonAt(attempt.CourseID, attempt.UnitIndex, attempt.LessonIndex))
}

func (a *App) setScreen(ctx context.Context, screen ui.Screen, route router.Route) {
	a.mu.Lock()
	a.screen = screen
	a.route = route
	a.mu.Unlock()
	a.view.SetSnapshot(a.snapshot(ctx))
	a.view.SetScreen(screen)
}

// Route reports the route currently on screen.
func (a *App) Route() router.Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) OnContinue() {
	ctx, cancel := opContext()
	defer cancel()
	courseID := a.engine.State().SelectedCourseID
	a.afterStart(ctx, courseID, a.engine.Continue(ctx))
}

func (a *App) OnSelectCourse(courseID string) {
	ctx, cancel := opContext()
	defer cancel()
	a.show(ctx, router.MapOf(courseID))
}

func (a *App) OnOpenUnit(courseID string, unitIndex int) {
	ctx, cancel := opContext()
	defer cancel()
	a.afterStart(ctx, courseID, a.engine.StartUnit(ctx, courseID, unitIndex))
}

func (a *App) OnSubmit(answer string) {
	ctx, cancel := opContext()
	defer cancel()
	attempt, l, ok := a.engine.Current()
	if !ok {
		a.view.FlashStatus("No lesson in progress")
		return
	}
	resp, err := lesson.ParseResponse(l, answer)
	if err != nil {
		a.view.FlashStatus("Pick an answer first")
		return
	}

	out, err := a.engine.Submit(ctx, resp)
	switch {
	case errors.Is(err, progress.ErrAttemptResolved):
		return
	case errors.Is(err, progress.ErrOutOfHearts):
		a.view.FlashStatus("Out of hearts. Refill them from your profile.")
		return
	case err != nil && !savedLater(err):
		a.logger.Error("submit answer", "err", err)
		a.view.FlashStatus("Could not check that answer")
		return
	}
	a.tolerate("submit answer", err)

	correct := out.Verdict == lesson.Correct
	ref := refOf(attempt)
	a.journal.AnswerGraded(ref, telemetry.Grade{
		Correct:    correct,
		XPAwarded:  out.Change.XPGained,
		RetryCount: attempt.RetryCount,
		HintUsed:   attempt.HintUsed,
	})
	if out.Change.Unlocked {
		a.journal.UnitUnlocked(attempt.CourseID, out.Change.UnlockedUnit)
	}
	for _, b := range out.Change.BadgesEarned {
		a.journal.BadgeEarned(b.ID)
	}

	fb := feedbackFor(out, a.engine.State().Hearts)
	a.view.SetFeedback(fb)
	a.view.SetLesson(a.lessonState())
	a.view.SetSnapshot(a.snapshot(ctx))
	if correct {
		a.view.FlashStatus(fb.Message)
	} else {
		a.view.FlashStatus("Try again")
	}
}

func feedbackFor(out progress.Outcome, hearts int) ui.Feedback {
	fb := ui.Feedback{Visible: true, Correct: out.Verdict == lesson.Correct, XPGained: out.Change.XPGained}
	if !fb.Correct {
		fb.Message = "Not quite. Try again."
		if out.Change.HeartsLost > 0 {
			fb.Details = append(fb.Details, fmt.Sprintf("Lost a heart, %d left", hearts))
		}
		return fb
	}
	if out.Change.XPGained > 0 {
		fb.Message = fmt.Sprintf("Correct! +%d XP", out.Change.XPGained)
	} else {
		fb.Message = "Nice!"
	}
	if out.Change.UnitCompleted {
		fb.Details = append(fb.Details, "Unit complete!")
	}
	if out.Change.Unlocked {
		fb.Details = append(fb.Details, fmt.Sprintf("Unit %d unlocked", out.Change.UnlockedUnit+1))
	}
	for _, b := range out.Change.BadgesEarned {
		fb.Details = append(fb.Details, "Badge earned: "+b.Label)
	}
	return fb
}

func (a *App) OnHint() {
	attempt, _, ok := a.engine.Current()
	if !ok {
		return
	}
	hint, err := a.engine.UseHint()
	if err != nil {
		a.logger.Warn("use hint", "err", err)
		return
	}
	if strings.TrimSpace(hint) == "" {
		a.view.FlashStatus("No hint available")
		return
	}
	if !attempt.HintUsed {
		a.journal.HintUsed(refOf(attempt))
	}
	a.view.SetLesson(a.lessonState())
}

// OnSkip moves on without answering. Penalties stay with the lesson if the
// player lands on it again.
func (a *App) OnSkip() { a.advance() }

func (a *App) OnNext() { a.advance() }

func (a *App) advance() {
	ctx, cancel := opContext()
	defer cancel()
	before, _, _ := a.engine.Current()
	pos, err := a.engine.Advance(ctx)
	if err != nil && !savedLater(err) {
		a.afterStart(ctx, before.CourseID, err)
		return
	}
	a.tolerate("advance", err)

	switch {
	case pos.CourseComplete:
		a.logger.Info("course complete", "course", pos.CourseID)
		a.journal.CourseCompleted(pos.CourseID)
		a.view.FlashStatus(fmt.Sprintf("You finished %s!", a.catalog.Label(pos.CourseID)))
		a.setScreen(ctx, ui.ScreenMap, router.MapOf(pos.CourseID))
	case pos.MovedUnit:
		a.view.FlashStatus(fmt.Sprintf("On to unit %d", pos.UnitIndex+1))
		a.setScreen(ctx, ui.ScreenMap, router.MapOf(pos.CourseID))
	default:
		if !before.Resolved && pos.UnitIndex == before.UnitIndex && pos.LessonIndex == before.LessonIndex {
			a.view.FlashStatus("Answer this lesson to move on")
		}
		a.enterLesson(ctx)
	}
}

func (a *App) OnToggleTheme() {
	ctx, cancel := opContext()
	defer cancel()
	theme, err := a.engine.ToggleTheme(ctx)
	a.tolerate("toggle theme", err)
	a.logger.Debug("theme switched", "theme", theme)
	a.view.SetSnapshot(a.snapshot(ctx))
}

func (a *App) OnRefillHearts() {
	ctx, cancel := opContext()
	defer cancel()
	if !a.engine.Rules().HeartsEnabled {
		return
	}
	a.tolerate("refill hearts", a.engine.RefillHearts(ctx))
	a.view.SetSnapshot(a.snapshot(ctx))
	a.view.FlashStatus("Hearts refilled")
}

// OnReset runs after the player confirmed the reset overlay.
func (a *App) OnReset() {
	ctx, cancel := opContext()
	defer cancel()
	if err := a.ResetProgress(ctx); err != nil {
		a.logger.Error("reset", "err", err)
		a.view.FlashStatus("Could not reset progress")
		return
	}
	a.view.SetResetConfirmOpen(false)
	a.view.SetLesson(ui.LessonState{})
	a.view.FlashStatus("Progress reset")
	a.setScreen(ctx, ui.ScreenHome, router.Route{Name: router.Home})
}

func (a *App) OnQuit() {
	a.logger.Info("app quit", "session", a.sessionID)
	a.view.Stop()
}

// tolerate logs an error that left the in-memory state intact and tells the
// player progress may not be saved. It reports whether err was nil or of
// that kind.
func (a *App) tolerate(op string, err error) bool {
	if err == nil {
		return true
	}
	if !savedLater(err) {
		a.logger.Warn(op, "err", err)
		return false
	}
	a.logger.Error(op, "err", err)
	a.view.FlashStatus("Progress could not be saved")
	return true
}

func refOf(at progress.Attempt) telemetry.LessonRef {
	return telemetry.LessonRef{CourseID: at.CourseID, UnitIndex: at.UnitIndex, LessonIndex: at.LessonIndex}
}

// lessonState copies the active lesson into the shape the lesson screen
// renders. The hint is only included once it was asked for.
func (a *App) lessonState() ui.LessonState {
	attempt, l, ok := a.engine.Current()
	if !ok {
		return ui.LessonState{}
	}
	st := a.engine.State()
	cp := st.Courses[attempt.CourseID]
	unit := cp.Units[attempt.UnitIndex]
	ls := ui.LessonState{
		CourseID:    attempt.CourseID,
		CourseName:  a.catalog.Label(attempt.CourseID),
		UnitIndex:   attempt.UnitIndex,
		UnitTitle:   unit.Title,
		LessonIndex: attempt.LessonIndex,
		LessonCount: len(unit.Lessons),
		Completed:   unit.CompletedLessonCount,
		Kind:        l.Kind(),
		Prompt:      l.Prompt(),
		RetryCount:  attempt.RetryCount,
		Resolved:    attempt.Resolved,
	}
	if attempt.HintUsed {
		ls.Hint = l.Hint()
	}
	switch l := l.(type) {
	case lesson.MultipleChoice:
		ls.Options = append([]string(nil), l.Options...)
	case lesson.FillBlank:
		ls.CodeTemplate = l.CodeTemplate
	case lesson.TrueFalse:
		ls.Statement = l.Statement
	}
	return ls
}

// snapshot builds the immutable copy every non-lesson screen renders from.
func (a *App) snapshot(ctx context.Context) ui.Snapshot {
	st := a.engine.State()
	rules := a.engine.Rules()
	snap := ui.Snapshot{
		Theme:          st.Theme,
		XP:             st.XP,
		Hearts:         st.Hearts,
		HeartsEnabled:  rules.HeartsEnabled,
		MaxHearts:      rules.MaxHearts,
		Streak:         st.StreakDays,
		SelectedCourse: st.SelectedCourseID,
	}
	for _, id := range st.Badges {
		snap.Badges = append(snap.Badges, progress.BadgeLabel(id))
	}
	for _, c := range a.catalog.Courses() {
		cp, ok := st.Courses[c.ID]
		if !ok {
			continue
		}
		snap.Courses = append(snap.Courses, courseSummary(c, cp))
	}
	if cs, ok := snap.Course(st.SelectedCourseID); ok && len(cs.Units) > 0 {
		u := cs.Units[clamp(cs.LastUnit, 0, len(cs.Units)-1)]
		snap.Continue = ui.ContinueCard{
			CourseName:  cs.Name,
			UnitIndex:   u.Index,
			UnitTitle:   u.Title,
			LessonIndex: cs.LastLesson,
			Completed:   u.Completed,
			Total:       u.Total,
		}
	}
	if sum, err := a.repo.Summary(ctx); err != nil {
		a.logger.Warn("attempt summary", "err", err)
	} else {
		snap.Stats = ui.StatsSummary{
			Attempts:  sum.Attempts,
			Correct:   sum.Correct,
			HintsUsed: sum.HintsUsed,
			Sessions:  sum.Sessions,
		}
	}
	return snap
}

func courseSummary(c catalog.Course, cp *state.CourseProgress) ui.CourseSummary {
	cs := ui.CourseSummary{
		ID:            c.ID,
		Name:          c.Name,
		UnlockedUnits: cp.UnlockedUnitCount,
		LastUnit:      cp.LastUnitIndex,
		LastLesson:    cp.LastLessonIndex,
	}
	for i, u := range cp.Units {
		cs.Units = append(cs.Units, ui.UnitSummary{
			Index:     i,
			Title:     u.Title,
			Completed: u.CompletedLessonCount,
			Total:     len(u.Lessons),
			Unlocked:  i < cp.UnlockedUnitCount,
		})
	}
	return cs
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
