package state

import (
	"context"
	"time"
)

type Store interface {
	EnsureSchema(ctx context.Context) error
	ReadSlot(ctx context.Context, key string) ([]byte, error)
	WriteSlot(ctx context.Context, key string, value []byte, at time.Time) error
	DeleteSlot(ctx context.Context, key string) error
	RecordAttempt(ctx context.Context, attempt Attempt) error
	ClearAttempts(ctx context.Context) error
	GetSummary(ctx context.Context) (Summary, error)
	Close() error
}

// Attempt is one graded submission, kept as history next to the state slot.
type Attempt struct {
	SessionID   string
	CourseID    string
	UnitIndex   int
	LessonIndex int
	Correct     bool
	XPAwarded   int
	HintUsed    bool
	RetryCount  int
	TS          time.Time
}

type Summary struct {
	Attempts  int
	Correct   int
	HintsUsed int
	XPAwarded int
	Sessions  int
	LastTS    time.Time
}
