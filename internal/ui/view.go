package ui

import (
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"codelingo/internal/lesson"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"
	clog "github.com/charmbracelet/log"
)

type applyMsg struct {
	fn func(*Root)
}

type animateMsg time.Time

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Back    key.Binding
	Hint    key.Binding
	Skip    key.Binding
	Theme   key.Binding
	Profile key.Binding
	Home    key.Binding
	Quit    key.Binding
}

// screenKeys is the help.KeyMap for whatever screen is showing.
type screenKeys []key.Binding

func (k screenKeys) ShortHelp() []key.Binding  { return k }
func (k screenKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k} }

type Root struct {
	theme       Theme
	ascii       bool
	debug       bool
	ctrl        Controller
	motionLevel string

	mu      sync.Mutex
	program *tea.Program
	running bool

	screen Screen
	layout LayoutMode
	cols   int
	rows   int

	snap        Snapshot
	hasSnap     bool
	lesson      LessonState
	feedback    Feedback
	statusFlash string

	resetOpen  bool
	resetIndex int

	homeIndex    int
	courseIndex  int
	mapIndex     int
	profileIndex int
	optionIndex  int
	tfValue      bool

	input    textinput.Model
	help     help.Model
	keys     keyMap
	bar      progress.Model
	markdown map[string]*glamour.TermRenderer
	logger   *clog.Logger

	xpShown float64
	xpVel   float64
	spring  harmonica.Spring
}

type Options struct {
	ASCIIOnly   bool
	Debug       bool
	MotionLevel string
	Theme       string
	Logger      *clog.Logger
}

func New(opts Options) *Root {
	logger := opts.Logger
	if logger == nil {
		logger = clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "codelingo-ui", Level: clog.WarnLevel})
		if opts.Debug {
			logger.SetLevel(clog.DebugLevel)
		}
	}
	motionLevel := normalizeMotionLevel(opts.MotionLevel)
	spring := harmonica.NewSpring(harmonica.FPS(60), 6.0, 0.9)
	if motionLevel == "reduced" {
		spring = harmonica.NewSpring(harmonica.FPS(30), 9.0, 1.0)
	}

	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "type your answer"
	in.CharLimit = 120

	r := &Root{
		ascii:       opts.ASCIIOnly,
		debug:       opts.Debug,
		motionLevel: motionLevel,
		screen:      ScreenHome,
		layout:      LayoutWide,
		cols:        100,
		rows:        30,
		tfValue:     true,
		input:       in,
		markdown:    map[string]*glamour.TermRenderer{},
		logger:      logger,
		spring:      spring,
	}
	r.keys = keyMap{
		Up:      key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "Up")),
		Down:    key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "Down")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Select")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Back")),
		Hint:    key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "Hint")),
		Skip:    key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "Skip")),
		Theme:   key.NewBinding(key.WithKeys("f5"), key.WithHelp("F5", "Theme")),
		Profile: key.NewBinding(key.WithKeys("f9"), key.WithHelp("F9", "Profile")),
		Home:    key.NewBinding(key.WithKeys("f10"), key.WithHelp("F10", "Home")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("Ctrl+Q", "Quit")),
	}
	if r.ascii {
		r.keys.Up.SetHelp("Up", "Up")
		r.keys.Down.SetHelp("Down", "Down")
	}
	r.applyTheme(ThemeFor(opts.Theme))
	return r
}

func (r *Root) applyTheme(t Theme) {
	r.theme = t
	h := help.New()
	if t.Name == "dark" {
		h.Styles = help.DefaultDarkStyles()
	} else {
		h.Styles = help.DefaultLightStyles()
	}
	r.help = h
	r.bar = progress.New(
		progress.WithWidth(24),
		progress.WithColors(t.BarStart, t.BarEnd),
		progress.WithScaled(true),
	)
}

func (r *Root) Init() tea.Cmd {
	return nil
}

func (r *Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("update", rec, msg)
			model = r
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.cols = msg.Width
		r.rows = msg.Height
		r.layout = DetermineLayoutMode(r.cols, r.rows)
		return r, nil
	case applyMsg:
		if msg.fn != nil {
			msg.fn(r)
		}
		return r, r.animateIfNeeded()
	case animateMsg:
		target := float64(r.snap.XP)
		r.xpShown, r.xpVel = r.spring.Update(r.xpShown, r.xpVel, target)
		if r.shouldAnimate(target) {
			return r, animateTickCmd()
		}
		r.xpShown, r.xpVel = target, 0
		return r, nil
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}
	if r.inputActive() {
		r.input, cmd = r.input.Update(msg)
		return r, cmd
	}
	return r, nil
}

func (r *Root) View() (view tea.View) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("view", rec, nil)
			width := max(1, r.cols)
			view = tea.NewView(r.theme.Fail.Width(width).Render(trimForWidth("UI recovered from a rendering panic. Check logs.", max(1, width-1))))
		}
	}()
	v := tea.NewView(r.Render())
	v.AltScreen = true
	return v
}

func (r *Root) Run() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	p := tea.NewProgram(r)
	r.program = p
	r.running = true
	r.mu.Unlock()

	_, err := p.Run()

	r.mu.Lock()
	r.program = nil
	r.running = false
	r.mu.Unlock()
	return err
}

func (r *Root) Stop() {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}

func (r *Root) SetController(c Controller) {
	r.ctrl = c
}

func (r *Root) SetScreen(screen Screen) {
	r.apply(func(m *Root) {
		m.screen = screen
		m.resetOpen = false
		switch screen {
		case ScreenCourses:
			for i, c := range m.snap.Courses {
				if c.ID == m.snap.SelectedCourse {
					m.courseIndex = i
				}
			}
		case ScreenMap:
			if c, ok := m.snap.Course(m.snap.SelectedCourse); ok {
				m.mapIndex = clampIndex(c.LastUnit, len(c.Units))
			}
		case ScreenLesson:
			if m.lesson.Kind == lesson.KindFillBlank && !m.lesson.Resolved {
				m.input.Focus()
			}
		}
	})
}

func (r *Root) SetSnapshot(s Snapshot) {
	r.apply(func(m *Root) {
		if s.Theme != m.theme.Name {
			m.applyTheme(ThemeFor(s.Theme))
		}
		if !m.hasSnap || m.motionLevel == "off" {
			m.xpShown, m.xpVel = float64(s.XP), 0
		}
		m.snap = s
		m.hasSnap = true
	})
}

func (r *Root) SetLesson(ls LessonState) {
	r.apply(func(m *Root) {
		if !m.lesson.sameLesson(ls) {
			m.optionIndex = 0
			m.tfValue = true
			m.input.Reset()
			m.feedback = Feedback{}
		}
		m.lesson = ls
		if ls.Kind == lesson.KindFillBlank && !ls.Resolved {
			m.input.Focus()
		} else {
			m.input.Blur()
		}
	})
}

func (r *Root) SetFeedback(f Feedback) {
	r.apply(func(m *Root) {
		m.feedback = f
	})
}

func (r *Root) SetResetConfirmOpen(open bool) {
	r.apply(func(m *Root) {
		m.resetOpen = open
		m.resetIndex = 0
	})
}

// Resize sets the frame size used by Render before the program reports one.
func (r *Root) Resize(cols, rows int) {
	r.apply(func(m *Root) {
		m.cols = cols
		m.rows = rows
		m.layout = DetermineLayoutMode(cols, rows)
	})
}

func (r *Root) FlashStatus(msg string) {
	r.apply(func(m *Root) {
		m.statusFlash = msg
	})
}

func (r *Root) apply(fn func(*Root)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	p := r.program
	running := r.running
	if !running || p == nil {
		fn(r)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	p.Send(applyMsg{fn: fn})
}

func (r *Root) dispatchController(fn func(Controller)) {
	if fn == nil || r.ctrl == nil {
		return
	}
	ctrl := r.ctrl
	go fn(ctrl)
}

func (r *Root) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, r.keys.Quit) {
		r.dispatchController(func(c Controller) { c.OnQuit() })
		return r, nil
	}
	// Flashes last until the next key press.
	r.statusFlash = ""
	if r.resetOpen {
		return r.handleResetKey(msg)
	}

	switch {
	case key.Matches(msg, r.keys.Theme):
		r.dispatchController(func(c Controller) { c.OnToggleTheme() })
		return r, nil
	case key.Matches(msg, r.keys.Profile):
		r.dispatchController(func(c Controller) { c.OnNavigate("profile") })
		return r, nil
	case key.Matches(msg, r.keys.Home):
		r.dispatchController(func(c Controller) { c.OnNavigate("home") })
		return r, nil
	}

	switch r.screen {
	case ScreenCourses:
		return r.handleCoursesKey(msg)
	case ScreenMap:
		return r.handleMapKey(msg)
	case ScreenLesson:
		return r.handleLessonKey(msg)
	case ScreenProfile:
		return r.handleProfileKey(msg)
	default:
		return r.handleHomeKey(msg)
	}
}

func (r *Root) handleResetKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.Code {
	case tea.KeyLeft, tea.KeyUp:
		r.resetIndex = 0
	case tea.KeyRight, tea.KeyDown, tea.KeyTab:
		r.resetIndex = 1
	case tea.KeyEsc:
		r.resetOpen = false
	case tea.KeyEnter:
		r.resetOpen = false
		if r.resetIndex == 1 {
			r.dispatchController(func(c Controller) { c.OnReset() })
		}
	}
	return r, nil
}

type menuItem struct {
	Label  string
	Action func(*Root)
}

func (r *Root) homeItems() []menuItem {
	return []menuItem{
		{"Continue", func(m *Root) { m.dispatchController(func(c Controller) { c.OnContinue() }) }},
		{"Courses", func(m *Root) { m.dispatchController(func(c Controller) { c.OnNavigate("courses") }) }},
		{"Profile", func(m *Root) { m.dispatchController(func(c Controller) { c.OnNavigate("profile") }) }},
		{"Switch theme", func(m *Root) { m.dispatchController(func(c Controller) { c.OnToggleTheme() }) }},
		{"Quit", func(m *Root) { m.dispatchController(func(c Controller) { c.OnQuit() }) }},
	}
}

func (r *Root) profileItems() []menuItem {
	items := []menuItem{
		{"Switch theme", func(m *Root) { m.dispatchController(func(c Controller) { c.OnToggleTheme() }) }},
	}
	if r.snap.HeartsEnabled {
		items = append(items, menuItem{"Refill hearts", func(m *Root) {
			m.dispatchController(func(c Controller) { c.OnRefillHearts() })
		}})
	}
	return append(items,
		menuItem{"Reset progress", func(m *Root) {
			m.resetOpen = true
			m.resetIndex = 0
		}},
		menuItem{"Back", func(m *Root) { m.dispatchController(func(c Controller) { c.OnNavigate("home") }) }},
	)
}

func (r *Root) handleHomeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	items := r.homeItems()
	switch {
	case key.Matches(msg, r.keys.Up):
		r.homeIndex = wrapIndex(r.homeIndex-1, len(items))
	case key.Matches(msg, r.keys.Down), msg.Code == tea.KeyTab:
		r.homeIndex = wrapIndex(r.homeIndex+1, len(items))
	case key.Matches(msg, r.keys.Select):
		items[wrapIndex(r.homeIndex, len(items))].Action(r)
	case key.Matches(msg, r.keys.Back):
		r.dispatchController(func(c Controller) { c.OnQuit() })
	}
	return r, nil
}

func (r *Root) handleCoursesKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	n := len(r.snap.Courses)
	switch {
	case key.Matches(msg, r.keys.Up):
		r.courseIndex = wrapIndex(r.courseIndex-1, n)
	case key.Matches(msg, r.keys.Down), msg.Code == tea.KeyTab:
		r.courseIndex = wrapIndex(r.courseIndex+1, n)
	case key.Matches(msg, r.keys.Select):
		if n == 0 {
			return r, nil
		}
		id := r.snap.Courses[wrapIndex(r.courseIndex, n)].ID
		r.dispatchController(func(c Controller) { c.OnSelectCourse(id) })
	case key.Matches(msg, r.keys.Back):
		r.dispatchController(func(c Controller) { c.OnNavigate("home") })
	}
	return r, nil
}

func (r *Root) handleMapKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	course, ok := r.snap.Course(r.snap.SelectedCourse)
	if !ok {
		return r, nil
	}
	n := len(course.Units)
	switch {
	case key.Matches(msg, r.keys.Up):
		r.mapIndex = wrapIndex(r.mapIndex-1, n)
	case key.Matches(msg, r.keys.Down):
		r.mapIndex = wrapIndex(r.mapIndex+1, n)
	case msg.Code == tea.KeyPgUp:
		r.mapIndex = clampIndex(r.mapIndex-5, n)
	case msg.Code == tea.KeyPgDown:
		r.mapIndex = clampIndex(r.mapIndex+5, n)
	case key.Matches(msg, r.keys.Select):
		if n == 0 {
			return r, nil
		}
		id, unit := course.ID, clampIndex(r.mapIndex, n)
		if !course.Units[unit].Unlocked {
			r.statusFlash = fmt.Sprintf("Unit %d is locked", unit+1)
			return r, nil
		}
		r.dispatchController(func(c Controller) { c.OnOpenUnit(id, unit) })
	case key.Matches(msg, r.keys.Back):
		r.dispatchController(func(c Controller) { c.OnNavigate("courses") })
	}
	return r, nil
}

func (r *Root) handleLessonKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, r.keys.Back):
		token := "map/" + r.lesson.CourseID
		r.dispatchController(func(c Controller) { c.OnNavigate(token) })
		return r, nil
	case key.Matches(msg, r.keys.Hint):
		r.dispatchController(func(c Controller) { c.OnHint() })
		return r, nil
	case key.Matches(msg, r.keys.Skip):
		r.dispatchController(func(c Controller) { c.OnSkip() })
		return r, nil
	case key.Matches(msg, r.keys.Select):
		if r.lesson.Resolved {
			r.dispatchController(func(c Controller) { c.OnNext() })
			return r, nil
		}
		answer, ok := r.currentAnswer()
		if !ok {
			r.statusFlash = "Type an answer first"
			return r, nil
		}
		r.dispatchController(func(c Controller) { c.OnSubmit(answer) })
		return r, nil
	}
	if r.lesson.Resolved {
		return r, nil
	}

	switch r.lesson.Kind {
	case lesson.KindMultipleChoice:
		n := len(r.lesson.Options)
		switch {
		case key.Matches(msg, r.keys.Up):
			r.optionIndex = wrapIndex(r.optionIndex-1, n)
		case key.Matches(msg, r.keys.Down), msg.Code == tea.KeyTab:
			r.optionIndex = wrapIndex(r.optionIndex+1, n)
		case msg.Code >= '1' && msg.Code <= '9':
			if idx := int(msg.Code - '1'); idx < n {
				r.optionIndex = idx
			}
		}
	case lesson.KindTrueFalse:
		switch msg.Code {
		case tea.KeyLeft, tea.KeyRight, tea.KeyUp, tea.KeyDown, tea.KeyTab:
			r.tfValue = !r.tfValue
		case 't', 'T', 'y', 'Y':
			r.tfValue = true
		case 'f', 'F', 'n', 'N':
			r.tfValue = false
		}
	case lesson.KindFillBlank:
		var cmd tea.Cmd
		r.input, cmd = r.input.Update(msg)
		return r, cmd
	}
	return r, nil
}

func (r *Root) handleProfileKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	items := r.profileItems()
	switch {
	case key.Matches(msg, r.keys.Up):
		r.profileIndex = wrapIndex(r.profileIndex-1, len(items))
	case key.Matches(msg, r.keys.Down), msg.Code == tea.KeyTab:
		r.profileIndex = wrapIndex(r.profileIndex+1, len(items))
	case key.Matches(msg, r.keys.Select):
		items[wrapIndex(r.profileIndex, len(items))].Action(r)
	case key.Matches(msg, r.keys.Back):
		r.dispatchController(func(c Controller) { c.OnNavigate("home") })
	}
	return r, nil
}

// currentAnswer is the raw answer for the lesson on screen, in the form
// lesson.ParseResponse accepts.
func (r *Root) currentAnswer() (string, bool) {
	switch r.lesson.Kind {
	case lesson.KindMultipleChoice:
		if len(r.lesson.Options) == 0 {
			return "", false
		}
		return strconv.Itoa(r.optionIndex), true
	case lesson.KindTrueFalse:
		return strconv.FormatBool(r.tfValue), true
	case lesson.KindFillBlank:
		v := r.input.Value()
		return v, hasText(v)
	}
	return "", false
}

func (r *Root) inputActive() bool {
	return r.screen == ScreenLesson && r.lesson.Kind == lesson.KindFillBlank && !r.lesson.Resolved && !r.resetOpen
}

func (r *Root) animateIfNeeded() tea.Cmd {
	if r.shouldAnimate(float64(r.snap.XP)) {
		return animateTickCmd()
	}
	return nil
}

func (r *Root) shouldAnimate(target float64) bool {
	if r.motionLevel == "off" {
		return false
	}
	return abs(r.xpShown-target) > 0.5 || abs(r.xpVel) > 0.01
}

func animateTickCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return animateMsg(t) })
}

func normalizeMotionLevel(v string) string {
	switch v {
	case "off", "reduced", "full":
		return v
	default:
		return "full"
	}
}

func (r *Root) onModelPanic(where string, recovered any, msg tea.Msg) {
	if r.statusFlash == "" {
		r.statusFlash = "Recovered UI panic"
	}
	msgType := ""
	if msg != nil {
		msgType = fmt.Sprintf("%T", msg)
	}
	r.logger.Error("ui.panic_recovered",
		"where", where,
		"panic", fmt.Sprintf("%v", recovered),
		"message_type", msgType,
		"screen", r.screen.Title(),
		"cols", r.cols,
		"rows", r.rows,
		"stack", string(debug.Stack()),
	)
}

var _ tea.Model = (*Root)(nil)
var _ View = (*Root)(nil)
