package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/coursegrid/internal/course"
)

const (
	minListWidth  = 28
	maxColWidth   = 14
	minColWidth   = 6
	periodColumn  = 3
	paneChrome    = 4 // border plus horizontal padding
	headerLines   = 1
	footerLines   = 2
	gridBodyLines = 17 // day header plus one row per period
)

// View renders the model.
func (m Model) View() string {
	if m.width == 0 {
		return "載入中..."
	}

	header := m.renderHeader()
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderList(), m.renderGrid())
	footer := m.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) calculateColWidth() int {
	avail := m.width - minListWidth - 2*paneChrome - periodColumn - 1
	w := avail / len(course.Days)
	return max(minColWidth, min(maxColWidth, w))
}

func (m Model) gridWidth() int {
	return periodColumn + 1 + m.colWidth*len(course.Days)
}

func (m Model) listWidth() int {
	return max(minListWidth, m.width-m.gridWidth()-2*paneChrome)
}

func (m Model) bodyHeight() int {
	return max(gridBodyLines, m.height-headerLines-footerLines-2)
}

// listRows is the number of course rows that fit under the search line.
func (m Model) listRows() int {
	if m.height == 0 {
		return gridBodyLines - 1
	}
	return max(1, m.bodyHeight()-1)
}

func (m Model) renderHeader() string {
	title := m.styles.TitleStyle.Render("coursegrid")
	meta := fmt.Sprintf("  %d 門課程", m.catalog.Len())
	if p := m.catalog.Params; p.OpenYear != "" {
		meta = fmt.Sprintf("  %s 學年度第 %s 學期 ·%s", p.OpenYear, p.Helf, meta)
	}
	return title + m.styles.ListMetaStyle.Render(meta)
}

func (m Model) renderList() string {
	width := m.listWidth()
	lines := make([]string, 0, m.listRows()+1)

	if m.mode == ModeSearch {
		lines = append(lines, ansi.Truncate(m.search.View(), width, ""))
	} else {
		label := "/ 搜尋"
		if m.filter.Search != "" {
			label = "/ " + m.filter.Search
		}
		line := fmt.Sprintf("%s · d %s · %d", label, m.departmentLabel(), len(m.visible))
		lines = append(lines, m.styles.SearchStyle.Render(ansi.Truncate(line, width, "…")))
	}

	if len(m.visible) == 0 {
		lines = append(lines, m.styles.ListMetaStyle.Render("沒有符合的課程"))
	}
	end := min(m.offset+m.listRows(), len(m.visible))
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderListItem(m.visible[i], i == m.selected, width))
	}

	style := m.styles.ListStyle
	if m.focus == FocusList {
		style = m.styles.ListFocusedStyle
	}
	return style.Width(width).Height(m.bodyHeight()).Render(strings.Join(lines, "\n"))
}

func (m Model) renderListItem(c *course.Course, selected bool, width int) string {
	marker := " "
	style := m.styles.ListItemStyle
	switch {
	case m.grid.IsAdded(c.ID):
		marker = m.styles.CourseMarker(m.grid.Placement(c.ID).Color.Hex()).Render("●")
		style = m.styles.ListAddedStyle
	case m.grid.Conflicts(c):
		style = m.styles.ListConflictStyle
	}
	if selected {
		style = m.styles.ListSelectedStyle
	}

	text := fmt.Sprintf("%s %s  %s  %s學分", c.Name, c.Teacher, course.FormatTime(c.Time), c.Credits)
	return marker + " " + style.Render(ansi.Truncate(text, width-2, "…"))
}

func (m Model) renderGrid() string {
	var b strings.Builder

	b.WriteString(strings.Repeat(" ", periodColumn+1))
	for _, d := range course.Days {
		b.WriteString(m.styles.DayHeaderStyle.Width(m.colWidth).Render(d.Local()))
	}

	for pi, p := range course.Periods {
		b.WriteString("\n")
		b.WriteString(m.styles.PeriodStyle.Render(string(p)) + " ")
		for di, d := range course.Days {
			b.WriteString(m.renderCell(Position{Day: di, Period: pi}, course.Slot{Day: d, Period: p}))
		}
	}

	style := m.styles.GridStyle
	if m.focus == FocusGrid {
		style = m.styles.GridFocusedStyle
	}
	return style.Height(m.bodyHeight()).Render(b.String())
}

// renderCell draws one slot. The primary slot of a course carries the ×
// remove marker.
func (m Model) renderCell(pos Position, slot course.Slot) string {
	atCursor := m.focus == FocusGrid && pos == m.cursor
	p := m.grid.At(slot)

	text := ""
	if p != nil {
		text = p.Course.Name
		if p.HasPrimary() && p.Primary == slot {
			text = "×" + text
		}
	}
	text = ansi.Truncate(text, m.colWidth, "…")

	switch {
	case atCursor:
		return m.styles.CursorStyle.Width(m.colWidth).Render(text)
	case p != nil:
		return m.styles.CourseCell(p.Color.Hex(), m.colWidth).Render(text)
	case slot.Period.IsBreak():
		return m.styles.BreakCellStyle.Width(m.colWidth).Render(text)
	default:
		return m.styles.EmptyCellStyle.Width(m.colWidth).Render(text)
	}
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.mode == ModeConfirmClear:
		status = m.styles.WarningStyle.Render("確定清空課表？(y/n)")
	case m.statusMsg != "" && m.statusErr:
		status = m.styles.WarningStyle.Render(m.statusMsg)
	case m.statusMsg != "":
		status = m.styles.StatusStyle.Render(m.statusMsg)
	case m.loading:
		status = m.styles.HelpStyle.Render("載入課表中...")
	default:
		status = m.styles.ListMetaStyle.Render(m.describeTarget())
	}

	credits := m.styles.CreditsStyle.Render(fmt.Sprintf("總學分 %g · %d 門", m.grid.TotalCredits, len(m.grid.Placements)))
	help := m.styles.HelpStyle.Render("  tab 切換  / 搜尋  d 系所  enter 加入/移除  x 移除  s 餘額  y 複製  C 清空  q 離開")

	return ansi.Truncate(status, m.width, "…") + "\n" + ansi.Truncate(credits+help, m.width, "…")
}

// describeTarget summarizes the course under the list selection or grid cursor.
func (m Model) describeTarget() string {
	c := m.targetCourse()
	if c == nil {
		return ""
	}
	parts := []string{c.RegistrationCode(), c.DepartmentName()}
	if c.Classroom != "" {
		parts = append(parts, c.Classroom)
	}
	if c.Limit != "" {
		parts = append(parts, "限 "+c.Limit)
	}
	if m.seatsFor == c.ID && m.seatsLine != "" {
		parts = append(parts, m.seatsLine)
	}
	return strings.Join(parts, " · ")
}
