package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/tui/commands"
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug("key press", zap.String("key", msg.String()), zap.Int("mode", int(m.mode)))

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeConfirmClear:
		return m.handleConfirmKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab", "shift+tab":
		if m.focus == FocusList {
			m.focus = FocusGrid
		} else {
			m.focus = FocusList
		}
		return m, nil

	case "/":
		m.mode = ModeSearch
		m.search.SetValue(m.filter.Search)
		m.search.CursorEnd()
		return m, tea.Batch(m.search.Focus(), textinput.Blink)

	case "d":
		m.deptIdx++
		if m.deptIdx >= len(m.depts) {
			m.deptIdx = -1
		}
		m.applyFilter()
		return m, nil

	case "D":
		m.deptIdx--
		if m.deptIdx < -1 {
			m.deptIdx = len(m.depts) - 1
		}
		m.applyFilter()
		return m, nil

	case "esc":
		m.filter.Search = ""
		m.deptIdx = -1
		m.applyFilter()
		return m, nil

	case "y":
		return m, commands.CopyCodes(m.grid)

	case "C":
		if len(m.grid.Placements) == 0 {
			return m, m.setStatus("課表是空的")
		}
		m.mode = ModeConfirmClear
		return m, nil

	case "s":
		c := m.targetCourse()
		if c == nil {
			return m, nil
		}
		return m, commands.LookupSeats(m.seats, m.catalog.Params, c)
	}

	if m.focus == FocusGrid {
		return m.handleGridKeys(msg)
	}
	return m.handleListKeys(msg)
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.selected < len(m.visible)-1 {
			m.selected++
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
	case "g", "home":
		m.selected = 0
	case "G", "end":
		m.selected = len(m.visible) - 1
	case "ctrl+d", "pgdown":
		m.selected = min(m.selected+m.listRows(), len(m.visible)-1)
	case "ctrl+u", "pgup":
		m.selected = max(m.selected-m.listRows(), 0)
	case "enter", " ", "space":
		c := m.selectedCourse()
		if c == nil {
			return m, nil
		}
		return m, m.toggle(c)
	default:
		return m, nil
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.ensureSelectedVisible()
	return m, nil
}

func (m Model) handleGridKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		if m.cursor.Day > 0 {
			m.cursor.Day--
		}
	case "l", "right":
		if m.cursor.Day < len(course.Days)-1 {
			m.cursor.Day++
		}
	case "k", "up":
		if m.cursor.Period > 0 {
			m.cursor.Period--
		}
	case "j", "down":
		if m.cursor.Period < len(course.Periods)-1 {
			m.cursor.Period++
		}
	case "x", "delete", "backspace":
		p := m.cursorPlacement()
		if p == nil {
			return m, nil
		}
		return m, commands.RemoveCourse(m.session, p.Course)
	case "enter":
		// Jump to the course in the list.
		p := m.cursorPlacement()
		if p == nil {
			return m, nil
		}
		m.filter.Search = ""
		m.deptIdx = -1
		m.applyFilter()
		for i, c := range m.visible {
			if c.ID == p.Course.ID {
				m.selected = i
				break
			}
		}
		m.ensureSelectedVisible()
		m.focus = FocusList
	}
	return m, nil
}

// handleSearchKeys edits the search box; the list filters as the user types.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		m.filter.Search = ""
		m.search.Blur()
		m.mode = ModeNormal
		m.applyFilter()
		return m, nil
	case "enter":
		m.search.Blur()
		m.mode = ModeNormal
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filter.Search = m.search.Value()
	m.selected = 0
	m.applyFilter()
	return m, cmd
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	switch msg.String() {
	case "y", "Y":
		return m, commands.ClearGrid(m.session)
	}
	return m, m.setStatus("已取消")
}

// toggle adds c, or removes it when already on the grid.
func (m Model) toggle(c *course.Course) tea.Cmd {
	if m.grid.IsAdded(c.ID) {
		return commands.RemoveCourse(m.session, c)
	}
	return commands.AddCourse(m.session, c)
}
