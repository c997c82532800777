package progress

type Badge struct {
	ID    string
	Label string
}

var badgeRules = []struct {
	badge Badge
	met   func(xp, streak int) bool
}{
	{Badge{ID: "first_steps", Label: "First Steps"}, func(xp, _ int) bool { return xp >= 10 }},
	{Badge{ID: "three_day_streak", Label: "3-Day Streak"}, func(_, streak int) bool { return streak >= 3 }},
	{Badge{ID: "centurion", Label: "Centurion"}, func(xp, _ int) bool { return xp >= 100 }},
}

// Badges derives the badge set from the current totals. It is not a log:
// a badge is held exactly while its threshold is met.
func Badges(xp, streak int) []Badge {
	out := make([]Badge, 0, len(badgeRules))
	for _, rule := range badgeRules {
		if rule.met(xp, streak) {
			out = append(out, rule.badge)
		}
	}
	return out
}

func BadgeLabel(id string) string {
	for _, rule := range badgeRules {
		if rule.badge.ID == id {
			return rule.badge.Label
		}
	}
	return id
}

func badgeIDs(badges []Badge) []string {
	ids := make([]string, 0, len(badges))
	for _, b := range badges {
		ids = append(ids, b.ID)
	}
	return ids
}
