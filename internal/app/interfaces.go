package app

import "codelingo/internal/telemetry"

// Journal receives gameplay events. *telemetry.JSONLogger implements it.
type Journal interface {
	SetSession(id string)
	SessionStarted(streak int, route string)
	LessonStarted(ref telemetry.LessonRef)
	HintUsed(ref telemetry.LessonRef)
	AnswerGraded(ref telemetry.LessonRef, g telemetry.Grade)
	UnitUnlocked(courseID string, unitIndex int)
	BadgeEarned(id string)
	CourseCompleted(courseID string)
	ProgressReset()
	StateFallback(err error)
	NavRedirect(from, to string)
	Close() error
}

var _ Journal = (*telemetry.JSONLogger)(nil)
