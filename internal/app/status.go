package app

import (
	"context"
	"fmt"
	"strings"

	"codelingo/internal/ui"
)

// Status returns the same snapshot the TUI renders, for the status command.
func (a *App) Status(ctx context.Context) ui.Snapshot {
	return a.snapshot(ctx)
}

// StatusMarkdown formats a snapshot as a markdown report.
func StatusMarkdown(s ui.Snapshot) string {
	var b strings.Builder
	b.WriteString("# CodeLingo progress\n\n")
	fmt.Fprintf(&b, "- **XP:** %d\n", s.XP)
	fmt.Fprintf(&b, "- **Streak:** %d day%s\n", s.Streak, plural(s.Streak))
	if s.HeartsEnabled {
		fmt.Fprintf(&b, "- **Hearts:** %d/%d\n", s.Hearts, s.MaxHearts)
	}
	fmt.Fprintf(&b, "- **Theme:** %s\n", s.Theme)
	if len(s.Badges) == 0 {
		b.WriteString("- **Badges:** none yet\n")
	} else {
		fmt.Fprintf(&b, "- **Badges:** %s\n", strings.Join(s.Badges, ", "))
	}

	for _, c := range s.Courses {
		b.WriteString("\n## ")
		b.WriteString(c.Name)
		if c.ID == s.SelectedCourse {
			b.WriteString(" (selected)")
		}
		b.WriteString("\n\n| Unit | Title | Lessons | State |\n|---|---|---|---|\n")
		for _, u := range c.Units {
			state := "locked"
			switch {
			case u.Total > 0 && u.Completed >= u.Total:
				state = "complete"
			case u.Unlocked:
				state = "open"
			}
			fmt.Fprintf(&b, "| %d | %s | %d/%d | %s |\n", u.Index+1, u.Title, u.Completed, u.Total, state)
		}
	}

	b.WriteString("\n## Attempts\n\n")
	if s.Stats.Attempts == 0 {
		b.WriteString("No answers checked yet.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d checked, %d correct, %d with a hint, over %d session%s.\n",
		s.Stats.Attempts, s.Stats.Correct, s.Stats.HintsUsed, s.Stats.Sessions, plural(s.Stats.Sessions))
	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
