package progress

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCourse    = errors.New("unknown course")
	ErrLessonOutOfRange = errors.New("lesson location out of range")
	ErrNoActiveLesson   = errors.New("no lesson in progress")
	ErrAttemptResolved  = errors.New("lesson already answered correctly")
	ErrOutOfHearts      = errors.New("no hearts left")
	ErrInvalidTheme     = errors.New("invalid theme")

	// ErrPersist and ErrRecordAttempt mark failures that happen after the
	// in-memory state already changed.
	ErrPersist       = errors.New("persist state")
	ErrRecordAttempt = errors.New("record attempt")
)

// LockedUnitError is returned when a lesson is started in a unit the player
// has not unlocked yet.
type LockedUnitError struct {
	CourseID          string
	UnitIndex         int
	UnlockedUnitCount int
}

func (e *LockedUnitError) Error() string {
	return fmt.Sprintf("unit %d of %s is locked (%d unlocked)", e.UnitIndex, e.CourseID, e.UnlockedUnitCount)
}
