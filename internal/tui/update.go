package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursegrid/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.colWidth = m.calculateColWidth()
		m.ensureSelectedVisible()
		return m, nil

	case commands.GridLoadedMsg:
		m.grid = msg.Snapshot
		m.loading = false
		skipped := len(msg.Restore.Unknown) + len(msg.Restore.Conflicting)
		if skipped > 0 {
			return m, m.setError(fmt.Sprintf("%d 門已儲存的課程無法還原", skipped))
		}
		if n := len(msg.Restore.Restored); n > 0 {
			return m, m.setStatus(fmt.Sprintf("已還原 %d 門課程", n))
		}
		return m, nil

	case commands.CourseAddedMsg:
		m.grid = msg.Snapshot
		if msg.Warning != nil {
			m.logger.Warn("course added but not saved", zap.String("course", msg.Course.ID), zap.Error(msg.Warning))
			return m, m.setError(fmt.Sprintf("已加入「%s」，但無法儲存課表", msg.Course.Name))
		}
		return m, m.setStatus(fmt.Sprintf("已加入「%s」", msg.Course.Name))

	case commands.CourseRemovedMsg:
		m.grid = msg.Snapshot
		if msg.Warning != nil {
			return m, m.setError(fmt.Sprintf("已移除「%s」，但無法儲存課表", msg.Course.Name))
		}
		return m, m.setStatus(fmt.Sprintf("已移除「%s」", msg.Course.Name))

	case commands.GridClearedMsg:
		m.grid = msg.Snapshot
		if msg.Warning != nil {
			return m, m.setError("已清空，但無法儲存課表")
		}
		return m, m.setStatus("課表已清空")

	case commands.ConflictMsg:
		return m, m.setError(msg.Err.Error())

	case commands.SeatsMsg:
		m.seatsFor = msg.Course.ID
		m.seatsLine = fmt.Sprintf("已選 %s · 線上 %s · 餘額 %s",
			msg.Status.Confirmed, msg.Status.OnlineCount, msg.Status.Remaining)
		return m, nil

	case commands.CopiedMsg:
		return m, m.setStatus(fmt.Sprintf("已複製 %d 門課程代碼", msg.Count))

	case commands.StatusMsgCmd:
		return m, m.setStatus(msg.Msg)

	case commands.ErrMsg:
		m.loading = false
		m.logger.Error("tui command failed", zap.Error(msg.Err))
		return m, m.setError(msg.Err.Error())

	case commands.ClearStatusMsg:
		if time.Since(m.statusTime) >= statusDuration-100*time.Millisecond {
			m.statusMsg = ""
			m.statusErr = false
		}
		return m, nil
	}

	if m.mode == ModeSearch {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}
