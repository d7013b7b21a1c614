// Package tui provides the terminal user interface for coursegrid.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursegrid/internal/config"
	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/timetable"
	"github.com/javiermolinar/coursegrid/internal/tui/commands"
	"github.com/javiermolinar/coursegrid/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeConfirmClear
)

// Focus identifies the pane receiving navigation keys.
type Focus int

const (
	FocusList Focus = iota
	FocusGrid
)

// How long status messages stay in the footer.
const statusDuration = 4 * time.Second

// Position is the grid cursor, as indexes into course.Days and course.Periods.
type Position struct {
	Day    int
	Period int
}

// Slot returns the grid slot under the cursor.
func (p Position) Slot() course.Slot {
	return course.Slot{Day: course.Days[p.Day], Period: course.Periods[p.Period]}
}

// Model is the main TUI model.
type Model struct {
	// Dependencies
	session *timetable.Session
	catalog *course.Catalog
	seats   commands.SeatLookup
	config  *config.Config
	logger  *zap.Logger

	// Theme and styles
	theme  *theme.Theme
	styles *Styles

	// Grid state, replaced wholesale after every mutation
	grid    commands.Snapshot
	loading bool

	// Course list
	filter   course.Filter
	depts    []string
	deptIdx  int // -1 means all departments
	visible  []*course.Course
	selected int
	offset   int

	cursor Position
	focus  Focus
	mode   Mode
	search textinput.Model

	// Terminal dimensions and layout
	width    int
	height   int
	colWidth int

	// Messages
	statusMsg  string
	statusErr  bool
	statusTime time.Time
	seatsLine  string // live enrollment for seatsFor
	seatsFor   string
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithSeats enables live enrollment lookups.
func WithSeats(l commands.SeatLookup) ModelOption {
	return func(m *Model) { m.seats = l }
}

// WithLogger sets the logger. It must not write to the terminal.
func WithLogger(l *zap.Logger) ModelOption {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a new TUI model.
func New(session *timetable.Session, catalog *course.Catalog, cfg *config.Config, opts ...ModelOption) *Model {
	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load("mocha")
	}
	styles := NewStyles(t)

	search := textinput.New()
	search.Placeholder = "課名、教師或課號"
	search.Prompt = "/ "
	search.CharLimit = 64
	search.PromptStyle = styles.SearchActiveStyle
	search.PlaceholderStyle = styles.SearchStyle

	m := &Model{
		session:  session,
		catalog:  catalog,
		config:   cfg,
		logger:   zap.NewNop(),
		theme:    t,
		styles:   styles,
		grid:     commands.Snapshot{Slots: map[course.Slot]string{}},
		loading:  true,
		depts:    course.Departments(catalog.Courses()),
		deptIdx:  -1,
		search:   search,
		colWidth: defaultColWidth,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.applyFilter()

	return m
}

// Init restores the saved timetable.
func (m Model) Init() tea.Cmd {
	return commands.LoadGrid(m.session)
}

// Run starts the TUI and blocks until the user quits.
func Run(session *timetable.Session, catalog *course.Catalog, cfg *config.Config, opts ...ModelOption) error {
	model := New(session, catalog, cfg, opts...)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// applyFilter recomputes the visible course list and clamps the selection.
func (m *Model) applyFilter() {
	m.filter.Department = ""
	if m.deptIdx >= 0 && m.deptIdx < len(m.depts) {
		m.filter.Department = m.depts[m.deptIdx]
	}
	m.visible = m.filter.Apply(m.catalog.Courses())
	if m.selected >= len(m.visible) {
		m.selected = len(m.visible) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.ensureSelectedVisible()
}

// selectedCourse returns the highlighted list entry, or nil.
func (m Model) selectedCourse() *course.Course {
	if m.selected < 0 || m.selected >= len(m.visible) {
		return nil
	}
	return m.visible[m.selected]
}

// cursorPlacement returns the course under the grid cursor, or nil.
func (m Model) cursorPlacement() *timetable.Placement {
	return m.grid.At(m.cursor.Slot())
}

// targetCourse is the course acted on by focus-independent keys.
func (m Model) targetCourse() *course.Course {
	if m.focus == FocusGrid {
		if p := m.cursorPlacement(); p != nil {
			return p.Course
		}
		return nil
	}
	return m.selectedCourse()
}

func (m *Model) ensureSelectedVisible() {
	rows := m.listRows()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+rows {
		m.offset = m.selected - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusErr = false
	m.statusTime = time.Now()
	return commands.ClearStatusAfter(statusDuration)
}

func (m *Model) setError(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusErr = true
	m.statusTime = time.Now()
	return commands.ClearStatusAfter(statusDuration)
}

func (m Model) departmentLabel() string {
	if m.filter.Department == "" {
		return "全部系所"
	}
	return course.DepartmentName(m.filter.Department)
}
