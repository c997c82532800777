package progress

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"codelingo/internal/lesson"
	"codelingo/internal/state"
)

// Store persists the state after each mutation.
type Store interface {
	Save(ctx context.Context, st *state.AppState) error
	Clear(ctx context.Context) error
	Default() *state.AppState
}

// AttemptRecorder is optionally implemented by a Store to keep a history of
// graded submissions.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, a state.Attempt) error
}

// Attempt is the transient context of the lesson on screen.
type Attempt struct {
	CourseID    string
	UnitIndex   int
	LessonIndex int
	RetryCount  int
	HintUsed    bool
	// Resolved is set once the attempt was answered correctly; it stays set
	// until the next lesson starts.
	Resolved bool
}

// Change describes what a mutation did so callers can render it.
type Change struct {
	XPGained        int
	LessonCompleted bool
	UnitCompleted   bool
	Unlocked        bool
	UnlockedUnit    int
	HeartsLost      int
	BadgesEarned    []Badge
}

type Outcome struct {
	Verdict lesson.Verdict
	Change  Change
	// RetryCount is the retry count of the attempt after grading.
	RetryCount int
}

type Position struct {
	CourseID       string
	UnitIndex      int
	LessonIndex    int
	MovedUnit      bool
	CourseComplete bool
}

type Options struct {
	Rules     Rules
	Now       func() time.Time
	SessionID string
}

// Engine owns the AppState and funnels every mutation through its methods.
// Methods are safe to call from multiple goroutines; they are serialized.
type Engine struct {
	mu        sync.Mutex
	st        *state.AppState
	store     Store
	rules     Rules
	now       func() time.Time
	sessionID string
	attempt   *Attempt
}

func New(store Store, st *state.AppState, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rules == (Rules{}) {
		opts.Rules = DefaultRules()
	}
	if st == nil {
		st = store.Default()
	}
	e := &Engine{
		st:        st,
		store:     store,
		rules:     opts.Rules,
		now:       opts.Now,
		sessionID: opts.SessionID,
	}
	if e.rules.MaxHearts > 0 && e.st.Hearts > e.rules.MaxHearts {
		e.st.Hearts = e.rules.MaxHearts
	}
	e.st.Badges = badgeIDs(Badges(e.st.XP, e.st.StreakDays))
	return e
}

func (e *Engine) Rules() Rules { return e.rules }

// State returns a deep copy of the current state.
func (e *Engine) State() *state.AppState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.Clone()
}

// Current returns the active attempt and its lesson, if any.
func (e *Engine) Current() (Attempt, lesson.Lesson, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attempt == nil {
		return Attempt{}, nil, false
	}
	return *e.attempt, e.lessonAt(*e.attempt), true
}

func (e *Engine) StartLesson(ctx context.Context, courseID string, unitIndex, lessonIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.startLocked(courseID, unitIndex, lessonIndex, true); err != nil {
		return err
	}
	return e.persist(ctx)
}

// StartUnit opens the first lesson not yet completed in a unit, or the last
// lesson when the unit is already complete.
func (e *Engine) StartUnit(ctx context.Context, courseID string, unitIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp, err := e.course(courseID)
	if err != nil {
		return err
	}
	if unitIndex < 0 || unitIndex >= len(cp.Units) {
		return fmt.Errorf("%w: %s unit %d", ErrLessonOutOfRange, courseID, unitIndex)
	}
	u := cp.Units[unitIndex]
	if err := e.startLocked(courseID, unitIndex, min(u.CompletedLessonCount, len(u.Lessons)-1), true); err != nil {
		return err
	}
	return e.persist(ctx)
}

// Continue resumes the selected course at its last visited position.
func (e *Engine) Continue(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp, err := e.course(e.st.SelectedCourseID)
	if err != nil {
		return err
	}
	if err := e.startLocked(cp.CourseID, cp.LastUnitIndex, cp.LastLessonIndex, true); err != nil {
		return err
	}
	return e.persist(ctx)
}

func (e *Engine) startLocked(courseID string, unitIndex, lessonIndex int, fresh bool) error {
	cp, err := e.course(courseID)
	if err != nil {
		return err
	}
	if unitIndex < 0 || unitIndex >= len(cp.Units) {
		return fmt.Errorf("%w: %s unit %d", ErrLessonOutOfRange, courseID, unitIndex)
	}
	if lessonIndex < 0 || lessonIndex >= len(cp.Units[unitIndex].Lessons) {
		return fmt.Errorf("%w: %s unit %d lesson %d", ErrLessonOutOfRange, courseID, unitIndex, lessonIndex)
	}
	if unitIndex >= cp.UnlockedUnitCount {
		return &LockedUnitError{CourseID: courseID, UnitIndex: unitIndex, UnlockedUnitCount: cp.UnlockedUnitCount}
	}
	next := &Attempt{CourseID: courseID, UnitIndex: unitIndex, LessonIndex: lessonIndex}
	if !fresh && e.attempt != nil && !e.attempt.Resolved && sameLesson(*e.attempt, *next) {
		// Moving on to the lesson already on screen keeps its penalties.
		next.RetryCount = e.attempt.RetryCount
		next.HintUsed = e.attempt.HintUsed
	}
	e.attempt = next
	e.st.SelectedCourseID = courseID
	cp.LastUnitIndex = unitIndex
	cp.LastLessonIndex = lessonIndex
	return nil
}

// UseHint marks the current attempt as hinted and returns the hint text.
func (e *Engine) UseHint() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attempt == nil {
		return "", ErrNoActiveLesson
	}
	e.attempt.HintUsed = true
	return e.lessonAt(*e.attempt).Hint(), nil
}

// CheckAnswer grades a response against the current lesson without
// changing any state.
func (e *Engine) CheckAnswer(resp lesson.Response) (lesson.Verdict, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attempt == nil {
		return lesson.Incorrect, ErrNoActiveLesson
	}
	return lesson.Check(e.lessonAt(*e.attempt), resp)
}

// Submit grades a response and applies OnCorrect or OnWrong.
func (e *Engine) Submit(ctx context.Context, resp lesson.Response) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a := e.attempt
	if a == nil {
		return Outcome{}, ErrNoActiveLesson
	}
	if a.Resolved {
		return Outcome{}, ErrAttemptResolved
	}
	if e.rules.HeartsEnabled && e.st.Hearts <= 0 {
		return Outcome{}, ErrOutOfHearts
	}
	verdict, err := lesson.Check(e.lessonAt(*a), resp)
	if err != nil {
		return Outcome{}, err
	}
	graded := *a

	var ch Change
	if verdict == lesson.Correct {
		ch, err = e.onCorrectLocked(ctx)
	} else {
		ch, err = e.onWrongLocked(ctx)
	}
	out := Outcome{Verdict: verdict, Change: ch, RetryCount: a.RetryCount}
	if rec, ok := e.store.(AttemptRecorder); ok {
		recErr := rec.RecordAttempt(ctx, state.Attempt{
			SessionID:   e.sessionID,
			CourseID:    graded.CourseID,
			UnitIndex:   graded.UnitIndex,
			LessonIndex: graded.LessonIndex,
			Correct:     verdict == lesson.Correct,
			XPAwarded:   ch.XPGained,
			HintUsed:    graded.HintUsed,
			RetryCount:  graded.RetryCount,
			TS:          e.now().UTC(),
		})
		if recErr != nil {
			err = errors.Join(err, fmt.Errorf("%w: %w", ErrRecordAttempt, recErr))
		}
	}
	return out, err
}

func (e *Engine) OnCorrect(ctx context.Context) (Change, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.onCorrectLocked(ctx)
}

func (e *Engine) OnWrong(ctx context.Context) (Change, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.onWrongLocked(ctx)
}

func (e *Engine) onCorrectLocked(ctx context.Context) (Change, error) {
	a := e.attempt
	if a == nil {
		return Change{}, ErrNoActiveLesson
	}
	if a.Resolved {
		return Change{}, ErrAttemptResolved
	}
	cp := e.st.Courses[a.CourseID]
	unit := &cp.Units[a.UnitIndex]

	ch := Change{XPGained: e.rules.award(*a)}
	e.st.XP += ch.XPGained

	// Replaying an earlier lesson of the unit does not count twice.
	if unit.CompletedLessonCount < len(unit.Lessons) && a.LessonIndex >= unit.CompletedLessonCount {
		unit.CompletedLessonCount++
		ch.LessonCompleted = true
		if unit.Complete() {
			ch.UnitCompleted = true
			if unlockAfter(cp, a.UnitIndex) {
				ch.Unlocked = true
				ch.UnlockedUnit = a.UnitIndex + 1
			}
		}
	}

	a.RetryCount = 0
	a.HintUsed = false
	a.Resolved = true
	ch.BadgesEarned = e.refreshBadges()
	return ch, e.persist(ctx)
}

// unlockAfter is the only place units get unlocked: finishing the frontier
// unit k unlocks unit k+1, once.
func unlockAfter(cp *state.CourseProgress, unitIndex int) bool {
	if unitIndex != cp.UnlockedUnitCount-1 || cp.UnlockedUnitCount >= len(cp.Units) {
		return false
	}
	cp.UnlockedUnitCount++
	return true
}

func (e *Engine) onWrongLocked(ctx context.Context) (Change, error) {
	a := e.attempt
	if a == nil {
		return Change{}, ErrNoActiveLesson
	}
	if a.Resolved {
		return Change{}, ErrAttemptResolved
	}
	a.RetryCount++
	var ch Change
	if e.rules.HeartsEnabled && e.st.Hearts > 0 {
		e.st.Hearts--
		ch.HeartsLost = 1
	}
	return ch, e.persist(ctx)
}

// Advance moves past the current lesson: to the next uncompleted lesson of
// the unit, or to lesson 0 of the next unit once the unit is complete. It
// never unlocks anything itself.
func (e *Engine) Advance(ctx context.Context) (Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a := e.attempt
	if a == nil {
		return Position{}, ErrNoActiveLesson
	}
	cp := e.st.Courses[a.CourseID]
	unit := cp.Units[a.UnitIndex]
	pos := Position{CourseID: a.CourseID, UnitIndex: a.UnitIndex, LessonIndex: a.LessonIndex}

	switch {
	case !unit.Complete():
		pos.LessonIndex = unit.CompletedLessonCount
	case a.UnitIndex+1 < len(cp.Units):
		pos.UnitIndex = a.UnitIndex + 1
		pos.LessonIndex = 0
		pos.MovedUnit = true
	default:
		pos.CourseComplete = true
		return pos, nil
	}
	if err := e.startLocked(pos.CourseID, pos.UnitIndex, pos.LessonIndex, false); err != nil {
		return Position{}, err
	}
	return pos, e.persist(ctx)
}

// TouchStreak records an app start on the current day.
func (e *Engine) TouchStreak(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.st.StreakDays, e.st.LastPlayedDate = NextStreak(e.st.StreakDays, e.st.LastPlayedDate, e.now())
	e.refreshBadges()
	return e.st.StreakDays, e.persist(ctx)
}

func (e *Engine) SelectCourse(ctx context.Context, courseID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.course(courseID); err != nil {
		return err
	}
	e.st.SelectedCourseID = courseID
	return e.persist(ctx)
}

func (e *Engine) SetTheme(ctx context.Context, theme string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if theme != state.ThemeLight && theme != state.ThemeDark {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	e.st.Theme = theme
	return e.persist(ctx)
}

func (e *Engine) ToggleTheme(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st.Theme == state.ThemeDark {
		e.st.Theme = state.ThemeLight
	} else {
		e.st.Theme = state.ThemeDark
	}
	return e.st.Theme, e.persist(ctx)
}

func (e *Engine) RefillHearts(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.st.Hearts = e.rules.MaxHearts
	return e.persist(ctx)
}

// Reset discards all progress. The caller is responsible for confirming
// with the player first.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Clear(ctx); err != nil {
		return err
	}
	e.st = e.store.Default()
	e.st.Hearts = e.rules.MaxHearts
	e.attempt = nil
	e.refreshBadges()
	return nil
}

func (e *Engine) course(courseID string) (*state.CourseProgress, error) {
	cp, ok := e.st.Courses[courseID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCourse, courseID)
	}
	return cp, nil
}

func (e *Engine) lessonAt(a Attempt) lesson.Lesson {
	return e.st.Courses[a.CourseID].Units[a.UnitIndex].Lessons[a.LessonIndex]
}

// refreshBadges recomputes the derived badge set and returns the badges
// that were not held before.
func (e *Engine) refreshBadges() []Badge {
	current := Badges(e.st.XP, e.st.StreakDays)
	var earned []Badge
	for _, b := range current {
		if !slices.Contains(e.st.Badges, b.ID) {
			earned = append(earned, b)
		}
	}
	e.st.Badges = badgeIDs(current)
	return earned
}

func (e *Engine) persist(ctx context.Context) error {
	if err := e.store.Save(ctx, e.st); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func sameLesson(a, b Attempt) bool {
	return a.CourseID == b.CourseID && a.UnitIndex == b.UnitIndex && a.LessonIndex == b.LessonIndex
}
