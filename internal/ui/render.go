package ui

import (
	"fmt"
	"math"
	"strings"

	"codelingo/internal/lesson"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
)

type glyphs struct {
	selected string
	done     string
	todo     string
	locked   string
	heart    string
	check    string
	cross    string
}

func (r *Root) glyphs() glyphs {
	if r.ascii {
		return glyphs{selected: ">", done: "#", todo: "-", locked: "x", heart: "Hearts", check: "OK", cross: "X"}
	}
	return glyphs{selected: "▸", done: "●", todo: "○", locked: "🔒", heart: "♥", check: "✓", cross: "✗"}
}

// Render draws one full frame. It is what View wraps and what the preview
// command prints.
func (r *Root) Render() string {
	if r.cols < 1 {
		r.cols = 100
	}
	if r.rows < 1 {
		r.rows = 30
	}
	if r.layout == LayoutTooSmall {
		msg := fmt.Sprintf("Terminal too small (%dx%d). Need at least 60x18.", r.cols, r.rows)
		return r.theme.Fail.Render(trimForWidth(msg, max(1, r.cols-1)))
	}

	bodyH := max(3, r.rows-2)
	var body string
	if r.resetOpen {
		body = lipgloss.Place(r.cols, bodyH, lipgloss.Center, lipgloss.Center, r.renderResetOverlay())
	} else {
		switch r.screen {
		case ScreenCourses:
			body = r.renderCourses(bodyH)
		case ScreenMap:
			body = r.renderMap(bodyH)
		case ScreenLesson:
			body = r.renderLesson(bodyH)
		case ScreenProfile:
			body = r.renderProfile(bodyH)
		default:
			body = r.renderHome(bodyH)
		}
	}
	return r.headerText() + "\n" + fitHeight(body, bodyH) + "\n" + r.statusText()
}

func (r *Root) headerText() string {
	left := "CodeLingo | " + r.screen.Title()
	xp := int(math.Round(r.xpShown))
	stats := []string{fmt.Sprintf("XP %d", xp), fmt.Sprintf("Streak %d", r.snap.Streak)}
	if r.snap.HeartsEnabled {
		stats = append(stats, fmt.Sprintf("%s %d/%d", r.glyphs().heart, r.snap.Hearts, r.snap.MaxHearts))
	}
	right := strings.Join(stats, "  ")
	if r.debug {
		right = fmt.Sprintf("%s  %dx%d", right, r.cols, r.rows)
	}
	width := max(1, r.cols-2)
	gap := width - ansi.StringWidth(left) - ansi.StringWidth(right)
	txt := left + strings.Repeat(" ", max(1, gap)) + right
	return r.theme.Header.Width(max(1, r.cols)).Render(trimForWidth(txt, width))
}

func (r *Root) statusText() string {
	keys := r.help.View(r.screenKeys())
	if r.statusFlash != "" {
		keys += " | " + r.statusFlash
	}
	keys = trimForWidth(keys, max(1, r.cols-2))
	return r.theme.Status.Width(max(1, r.cols)).Render(keys)
}

func (r *Root) screenKeys() screenKeys {
	k := r.keys
	if r.resetOpen {
		return screenKeys{k.Select, k.Back}
	}
	switch r.screen {
	case ScreenLesson:
		return screenKeys{k.Select, k.Hint, k.Skip, k.Back, k.Theme, k.Quit}
	case ScreenMap, ScreenCourses:
		return screenKeys{k.Up, k.Down, k.Select, k.Back, k.Profile, k.Quit}
	default:
		return screenKeys{k.Up, k.Down, k.Select, k.Theme, k.Profile, k.Home, k.Quit}
	}
}

func (r *Root) menuLines(items []menuItem, selected int) []string {
	g := r.glyphs()
	lines := make([]string, len(items))
	for i, item := range items {
		if i == selected {
			lines[i] = r.theme.Accent.Render(g.selected + " " + item.Label)
		} else {
			lines[i] = "  " + item.Label
		}
	}
	return lines
}

func (r *Root) renderHome(h int) string {
	w := r.cols
	menuW := min(30, max(22, w/3))
	menu := r.drawPanel("Menu", r.menuLines(r.homeItems(), r.homeIndex), menuW, min(h, 9))

	c := r.snap.Continue
	var card []string
	if c.CourseName == "" {
		card = []string{"Pick a course to start learning."}
	} else {
		card = []string{
			r.theme.PanelTitle.Render(c.CourseName),
			fmt.Sprintf("Unit %d: %s", c.UnitIndex+1, c.UnitTitle),
			fmt.Sprintf("Lesson %d of %d", c.LessonIndex+1, max(1, c.Total)),
			r.barView(c.Completed, c.Total, 24),
			"",
			r.theme.Muted.Render("Choose Continue to pick up where you left off."),
		}
	}
	if len(r.snap.Badges) > 0 {
		card = append(card, "", "Badges: "+strings.Join(r.snap.Badges, ", "))
	}
	if r.layout == LayoutCompact {
		cont := r.drawPanel("Continue", card, w, max(3, h-lipgloss.Height(menu)))
		return lipgloss.JoinVertical(lipgloss.Left, menu, cont)
	}
	cont := r.drawPanel("Continue", card, w-menuW, h)
	return lipgloss.JoinHorizontal(lipgloss.Top, menu, cont)
}

func (r *Root) renderCourses(h int) string {
	g := r.glyphs()
	lines := make([]string, 0, len(r.snap.Courses)*2)
	for i, c := range r.snap.Courses {
		done, total := courseTotals(c)
		marker := "  "
		name := c.Name
		if i == r.courseIndex {
			marker = g.selected + " "
			name = r.theme.Accent.Render(name)
		}
		current := ""
		if c.ID == r.snap.SelectedCourse {
			current = r.theme.Muted.Render(" (current)")
		}
		lines = append(lines,
			marker+name+current,
			fmt.Sprintf("    %s  %d/%d units unlocked", r.barView(done, total, 20), c.UnlockedUnits, len(c.Units)),
		)
	}
	if len(lines) == 0 {
		lines = []string{"No courses installed."}
	}
	return r.drawPanel("Choose a course", lines, r.cols, h)
}

func (r *Root) renderMap(h int) string {
	course, ok := r.snap.Course(r.snap.SelectedCourse)
	if !ok {
		return r.drawPanel("Map", []string{"No course selected."}, r.cols, h)
	}
	g := r.glyphs()
	inner := max(1, h-2)
	start := 0
	if len(course.Units) > inner {
		start = min(max(0, r.mapIndex-inner/2), len(course.Units)-inner)
	}
	lines := make([]string, 0, inner)
	for i := start; i < len(course.Units) && len(lines) < inner; i++ {
		u := course.Units[i]
		dots := strings.Repeat(g.done, min(u.Completed, u.Total)) + strings.Repeat(g.todo, max(0, u.Total-u.Completed))
		label := fmt.Sprintf("%02d %-28s %s", u.Index+1, trimForWidth(u.Title, 28), dots)
		switch {
		case !u.Unlocked:
			label = r.theme.Locked.Render(fmt.Sprintf("%02d %-28s %s", u.Index+1, trimForWidth(u.Title, 28), g.locked))
		case u.Total > 0 && u.Completed >= u.Total:
			label = r.theme.Pass.Render(label)
		}
		if i == r.mapIndex {
			lines = append(lines, r.theme.Accent.Render(g.selected)+" "+label)
		} else {
			lines = append(lines, "  "+label)
		}
	}
	title := fmt.Sprintf("%s  %d/%d unlocked", course.Name, course.UnlockedUnits, len(course.Units))
	return r.drawPanel(title, lines, r.cols, h)
}

func (r *Root) renderLesson(h int) string {
	ls := r.lesson
	g := r.glyphs()
	width := max(20, r.cols-4)
	lines := []string{
		r.theme.PanelTitle.Render(fmt.Sprintf("%s | Unit %d: %s", ls.CourseName, ls.UnitIndex+1, ls.UnitTitle)),
		fmt.Sprintf("Lesson %d/%d  %s", ls.LessonIndex+1, max(1, ls.LessonCount), r.barView(ls.Completed, ls.LessonCount, 20)),
	}
	lines = append(lines, strings.Split(r.renderMarkdown(lessonMarkdown(ls), width), "\n")...)
	lines = append(lines, "")

	switch ls.Kind {
	case lesson.KindMultipleChoice:
		for i, opt := range ls.Options {
			row := fmt.Sprintf("%d) %s", i+1, opt)
			if i == r.optionIndex {
				lines = append(lines, r.theme.Selected.Render(g.selected+" "+row))
			} else {
				lines = append(lines, "  "+row)
			}
		}
	case lesson.KindTrueFalse:
		yes, no := "  True  ", "  False  "
		if r.tfValue {
			yes = r.theme.Selected.Render("[ True ]")
		} else {
			no = r.theme.Selected.Render("[ False ]")
		}
		lines = append(lines, yes+"   "+no)
	case lesson.KindFillBlank:
		lines = append(lines, r.input.View())
	}

	if ls.Hint != "" {
		lines = append(lines, "", r.theme.Pending.Render("Hint: "+ls.Hint))
	}
	if f := r.feedback; f.Visible {
		lines = append(lines, "")
		if f.Correct {
			lines = append(lines, r.theme.Pass.Render(g.check+" "+f.Message))
		} else {
			lines = append(lines, r.theme.Fail.Render(g.cross+" "+f.Message))
		}
		for _, d := range f.Details {
			lines = append(lines, "  "+d)
		}
	}
	if ls.RetryCount > 0 && !ls.Resolved {
		lines = append(lines, r.theme.Muted.Render(fmt.Sprintf("Retries: %d", ls.RetryCount)))
	}
	if ls.Resolved {
		lines = append(lines, r.theme.Muted.Render("Press Enter to continue."))
	}
	return r.drawPanel("Lesson", lines, r.cols, h)
}

func lessonMarkdown(ls LessonState) string {
	var b strings.Builder
	b.WriteString(ls.Prompt)
	switch ls.Kind {
	case lesson.KindFillBlank:
		if ls.CodeTemplate != "" {
			fmt.Fprintf(&b, "\n\n```%s\n%s\n```", fenceLanguage(ls.CourseID), ls.CodeTemplate)
		}
	case lesson.KindTrueFalse:
		if ls.Statement != "" {
			b.WriteString("\n\n> " + ls.Statement)
		}
	}
	return b.String()
}

func fenceLanguage(courseID string) string {
	switch courseID {
	case "python", "cpp", "java":
		return courseID
	}
	return ""
}

func (r *Root) renderProfile(h int) string {
	s := r.snap
	stats := []string{
		fmt.Sprintf("XP: %d", s.XP),
		fmt.Sprintf("Streak: %d day(s)", s.Streak),
	}
	if s.HeartsEnabled {
		stats = append(stats, fmt.Sprintf("Hearts: %d/%d", s.Hearts, s.MaxHearts))
	}
	stats = append(stats,
		fmt.Sprintf("Theme: %s", r.theme.Name),
		"",
		fmt.Sprintf("Answers: %d (%d correct)", s.Stats.Attempts, s.Stats.Correct),
		fmt.Sprintf("Hints used: %d", s.Stats.HintsUsed),
		fmt.Sprintf("Sessions: %d", s.Stats.Sessions),
		"",
		r.theme.PanelTitle.Render("Badges"),
	)
	if len(s.Badges) == 0 {
		stats = append(stats, r.theme.Muted.Render("None yet. Earn 10 XP for your first."))
	}
	for _, b := range s.Badges {
		stats = append(stats, "- "+b)
	}

	menuW := min(30, max(22, r.cols/3))
	menu := r.drawPanel("Actions", r.menuLines(r.profileItems(), r.profileIndex), menuW, min(h, 8))
	if r.layout == LayoutCompact {
		panel := r.drawPanel("Profile", stats, r.cols, max(3, h-lipgloss.Height(menu)))
		return lipgloss.JoinVertical(lipgloss.Left, panel, menu)
	}
	panel := r.drawPanel("Profile", stats, r.cols-menuW, h)
	return lipgloss.JoinHorizontal(lipgloss.Top, panel, menu)
}

func (r *Root) renderResetOverlay() string {
	cancel, confirm := " Cancel ", " Reset "
	if r.resetIndex == 0 {
		cancel = r.theme.Selected.Render(cancel)
	} else {
		confirm = r.theme.Selected.Render(confirm)
	}
	body := strings.Join([]string{
		r.theme.OverlayTitle.Render("Reset all progress?"),
		"",
		"XP, streak, badges and every unlocked unit will be lost.",
		"",
		cancel + "   " + confirm,
	}, "\n")
	return r.theme.Overlay.Render(body)
}

func (r *Root) barView(done, total, width int) string {
	pct := 0.0
	if total > 0 {
		pct = float64(min(done, total)) / float64(total)
	}
	if r.ascii {
		filled := int(math.Round(pct * float64(width)))
		return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
	}
	b := r.bar
	b.SetWidth(max(8, width))
	return b.ViewAs(pct)
}

func (r *Root) renderMarkdown(md string, width int) string {
	style := r.theme.Markdown
	if r.ascii {
		style = "ascii"
	}
	cacheKey := fmt.Sprintf("%s/%d", style, width)
	renderer, ok := r.markdown[cacheKey]
	if !ok {
		var err error
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			r.logger.Warn("markdown renderer unavailable", "style", style, "err", err)
			renderer = nil
		}
		r.markdown[cacheKey] = renderer
	}
	if renderer == nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func (r *Root) drawPanel(title string, lines []string, width, height int) string {
	width = max(4, width)
	height = max(3, height)
	innerW := width - 2
	innerH := height - 2

	h, v := "─", "│"
	tl, tr, bl, br := "╭", "╮", "╰", "╯"
	if r.ascii {
		h, v = "-", "|"
		tl, tr, bl, br = "+", "+", "+", "+"
	}

	top := tl + strings.Repeat(h, innerW) + tr
	if title != "" && innerW > 2 {
		t := trimForWidth(" "+title+" ", innerW-1)
		top = tl + h + t + strings.Repeat(h, max(0, innerW-1-ansi.StringWidth(t))) + tr
	}

	out := make([]string, 0, height)
	out = append(out, r.theme.PanelBorder.Render(top))
	for row := 0; row < innerH; row++ {
		line := ""
		if row < len(lines) {
			line = lines[row]
		}
		out = append(out, r.theme.PanelBorder.Render(v)+r.theme.PanelBody.Render(padANSI(line, innerW))+r.theme.PanelBorder.Render(v))
	}
	out = append(out, r.theme.PanelBorder.Render(bl+strings.Repeat(h, innerW)+br))
	return strings.Join(out, "\n")
}

func courseTotals(c CourseSummary) (done, total int) {
	for _, u := range c.Units {
		done += min(u.Completed, u.Total)
		total += u.Total
	}
	return done, total
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		i = n - 1
	}
	if i >= n {
		i = 0
	}
	return i
}

func clampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

// padANSI pads or cuts a possibly styled line to exactly width cells.
func padANSI(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\t", "    ")
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", max(0, width-ansi.StringWidth(s)))
}

func fitHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func trimForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(ansi.Strip(s), "\n", " ")
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
