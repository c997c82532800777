package progress

import (
	"testing"
	"time"
)

func TestNextStreak(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		return d.Add(15 * time.Hour)
	}
	cases := []struct {
		name   string
		streak int
		last   string
		today  string
		want   int
	}{
		{name: "first play", streak: 0, last: "", today: "2024-01-01", want: 1},
		{name: "next day", streak: 4, last: "2024-01-01", today: "2024-01-02", want: 5},
		{name: "same day", streak: 4, last: "2024-01-02", today: "2024-01-02", want: 4},
		{name: "gap", streak: 4, last: "2024-01-01", today: "2024-01-05", want: 1},
		{name: "month boundary", streak: 2, last: "2024-02-29", today: "2024-03-01", want: 3},
		{name: "clock went back", streak: 6, last: "2024-01-05", today: "2024-01-03", want: 1},
		{name: "garbage date", streak: 6, last: "yesterday", today: "2024-01-03", want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, date := NextStreak(tc.streak, tc.last, day(tc.today))
			if got != tc.want {
				t.Fatalf("expected streak %d, got %d", tc.want, got)
			}
			if date != tc.today {
				t.Fatalf("expected stored date %s, got %s", tc.today, date)
			}
		})
	}
}
