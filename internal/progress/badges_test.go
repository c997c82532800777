package progress

import (
	"slices"
	"testing"
)

func TestBadgesFollowThresholds(t *testing.T) {
	cases := []struct {
		xp, streak int
		want       []string
	}{
		{0, 0, []string{}},
		{9, 2, []string{}},
		{10, 0, []string{"first_steps"}},
		{10, 3, []string{"first_steps", "three_day_streak"}},
		{100, 1, []string{"first_steps", "centurion"}},
		{250, 30, []string{"first_steps", "three_day_streak", "centurion"}},
	}
	for _, tc := range cases {
		got := badgeIDs(Badges(tc.xp, tc.streak))
		if !slices.Equal(got, tc.want) {
			t.Fatalf("xp=%d streak=%d: expected %v, got %v", tc.xp, tc.streak, tc.want, got)
		}
	}
}

func TestBadgeLabel(t *testing.T) {
	if got := BadgeLabel("centurion"); got != "Centurion" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := BadgeLabel("mystery"); got != "mystery" {
		t.Fatalf("unknown ids should fall back to the id, got %q", got)
	}
}
