package progress

import (
	"time"

	"codelingo/internal/state"
)

// NextStreak applies one app start on today to a streak last touched on
// last (YYYY-MM-DD, empty when never played). It returns the new streak and
// the date to store.
//
// Gap 0 keeps the streak, gap 1 extends it, anything else (including a
// negative gap from clock skew or an unparseable date) starts over at 1.
func NextStreak(streak int, last string, today time.Time) (int, string) {
	todayStr := today.Format(state.DateLayout)
	if last == "" {
		return 1, todayStr
	}
	gap, ok := dayGap(last, todayStr)
	if !ok {
		return 1, todayStr
	}
	switch gap {
	case 0:
		return streak, todayStr
	case 1:
		return streak + 1, todayStr
	default:
		return 1, todayStr
	}
}

func dayGap(from, to string) (int, bool) {
	a, err := time.Parse(state.DateLayout, from)
	if err != nil {
		return 0, false
	}
	b, err := time.Parse(state.DateLayout, to)
	if err != nil {
		return 0, false
	}
	return int(b.Sub(a).Hours() / 24), true
}
