package telemetry

// Event names written to the journal.
const (
	EventSessionStart  = "session.start"
	EventLessonStart   = "lesson.start"
	EventHintUsed      = "lesson.hint"
	EventAnswerGraded  = "lesson.graded"
	EventUnitUnlocked  = "unit.unlocked"
	EventBadgeEarned   = "badge.earned"
	EventCourseDone    = "course.complete"
	EventProgressReset = "progress.reset"
	EventStateFallback = "state.fallback"
	EventNavRedirect   = "nav.redirect"
)

// LessonRef locates a lesson in the journal.
type LessonRef struct {
	CourseID    string
	UnitIndex   int
	LessonIndex int
}

func (r LessonRef) fields() map[string]any {
	return map[string]any{
		"course": r.CourseID,
		"unit":   r.UnitIndex,
		"lesson": r.LessonIndex,
	}
}

type Grade struct {
	Correct    bool
	XPAwarded  int
	RetryCount int
	HintUsed   bool
}

func (l *JSONLogger) SessionStarted(streak int, route string) {
	l.Info(EventSessionStart, map[string]any{"streak": streak, "route": route})
}

func (l *JSONLogger) LessonStarted(ref LessonRef) {
	l.Info(EventLessonStart, ref.fields())
}

func (l *JSONLogger) HintUsed(ref LessonRef) {
	l.Info(EventHintUsed, ref.fields())
}

func (l *JSONLogger) AnswerGraded(ref LessonRef, g Grade) {
	f := ref.fields()
	f["correct"] = g.Correct
	f["xp"] = g.XPAwarded
	f["retries"] = g.RetryCount
	f["hint"] = g.HintUsed
	l.Info(EventAnswerGraded, f)
}

func (l *JSONLogger) UnitUnlocked(courseID string, unitIndex int) {
	l.Info(EventUnitUnlocked, map[string]any{"course": courseID, "unit": unitIndex})
}

func (l *JSONLogger) BadgeEarned(id string) {
	l.Info(EventBadgeEarned, map[string]any{"badge": id})
}

func (l *JSONLogger) CourseCompleted(courseID string) {
	l.Info(EventCourseDone, map[string]any{"course": courseID})
}

func (l *JSONLogger) ProgressReset() {
	l.Info(EventProgressReset, nil)
}

func (l *JSONLogger) StateFallback(err error) {
	l.Error(EventStateFallback, map[string]any{"error": err.Error()})
}

func (l *JSONLogger) NavRedirect(from, to string) {
	l.Info(EventNavRedirect, map[string]any{"from": from, "to": to})
}
