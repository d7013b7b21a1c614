// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/seats"
	"github.com/javiermolinar/coursegrid/internal/timetable"
)

// Snapshot is the grid state copied off the session goroutine.
// Placements are never mutated after creation, so sharing the pointers is safe.
type Snapshot struct {
	Placements   []*timetable.Placement
	Slots        map[course.Slot]string
	TotalCredits float64
}

// Capture copies the engine state. It must run on the session goroutine.
func Capture(e *timetable.Engine) Snapshot {
	return Snapshot{
		Placements:   e.Placements(),
		Slots:        e.Slots(),
		TotalCredits: e.TotalCredits(),
	}
}

// Placement returns the placement for id, or nil.
func (s Snapshot) Placement(id string) *timetable.Placement {
	for _, p := range s.Placements {
		if p.Course.ID == id {
			return p
		}
	}
	return nil
}

// IsAdded reports whether id is on the grid.
func (s Snapshot) IsAdded(id string) bool {
	return s.Placement(id) != nil
}

// At returns the placement occupying slot, or nil.
func (s Snapshot) At(slot course.Slot) *timetable.Placement {
	id, ok := s.Slots[slot]
	if !ok {
		return nil
	}
	return s.Placement(id)
}

// Conflicts reports whether c overlaps a course already on the grid.
func (s Snapshot) Conflicts(c *course.Course) bool {
	if s.IsAdded(c.ID) {
		return false
	}
	for _, sl := range c.Time.Slots() {
		if _, ok := s.Slots[sl]; ok {
			return true
		}
	}
	return false
}

// GridLoadedMsg is sent once the saved selection has been restored.
type GridLoadedMsg struct {
	Snapshot Snapshot
	Restore  timetable.RestoreResult
}

// CourseAddedMsg is sent after a course was placed.
type CourseAddedMsg struct {
	Course   *course.Course
	Snapshot Snapshot
	Warning  error // set when the placement stuck but saving failed
}

// CourseRemovedMsg is sent after a course was taken off the grid.
type CourseRemovedMsg struct {
	Course   *course.Course
	Snapshot Snapshot
	Warning  error
}

// GridClearedMsg is sent after every course was removed.
type GridClearedMsg struct {
	Snapshot Snapshot
	Warning  error
}

// ConflictMsg is sent when a course could not be placed.
type ConflictMsg struct {
	Err *timetable.ConflictError
}

// SeatsMsg carries live enrollment numbers for a course.
type SeatsMsg struct {
	Course *course.Course
	Status seats.Status
}

// CopiedMsg is sent after text was placed on the clipboard.
type CopiedMsg struct {
	Count int
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// SeatLookup fetches live enrollment numbers.
type SeatLookup interface {
	Lookup(ctx context.Context, q seats.Query) (seats.Status, error)
}

// LoadGrid restores the saved selection and returns the resulting grid.
func LoadGrid(s *timetable.Session) tea.Cmd {
	return func() tea.Msg {
		var msg GridLoadedMsg
		err := s.Do(context.Background(), func(e *timetable.Engine) error {
			res, err := e.Restore(context.Background())
			msg.Restore = res
			msg.Snapshot = Capture(e)
			return err
		})
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("restoring timetable: %w", err)}
		}
		return msg
	}
}

// AddCourse places c on the grid.
func AddCourse(s *timetable.Session, c *course.Course) tea.Cmd {
	return func() tea.Msg {
		var snap Snapshot
		err := s.Do(context.Background(), func(e *timetable.Engine) error {
			_, err := e.Add(context.Background(), c, false)
			snap = Capture(e)
			return err
		})

		var ce *timetable.ConflictError
		switch {
		case errors.As(err, &ce):
			return ConflictMsg{Err: ce}
		case errors.Is(err, timetable.ErrPersist):
			return CourseAddedMsg{Course: c, Snapshot: snap, Warning: err}
		case err != nil:
			return ErrMsg{Err: err}
		}
		return CourseAddedMsg{Course: c, Snapshot: snap}
	}
}

// RemoveCourse takes c off the grid.
func RemoveCourse(s *timetable.Session, c *course.Course) tea.Cmd {
	return func() tea.Msg {
		var snap Snapshot
		err := s.Do(context.Background(), func(e *timetable.Engine) error {
			err := e.Remove(context.Background(), c.ID)
			snap = Capture(e)
			return err
		})
		if err != nil && !errors.Is(err, timetable.ErrPersist) {
			return ErrMsg{Err: err}
		}
		return CourseRemovedMsg{Course: c, Snapshot: snap, Warning: err}
	}
}

// ClearGrid removes every course.
func ClearGrid(s *timetable.Session) tea.Cmd {
	return func() tea.Msg {
		var snap Snapshot
		err := s.Do(context.Background(), func(e *timetable.Engine) error {
			err := e.Clear(context.Background())
			snap = Capture(e)
			return err
		})
		if err != nil && !errors.Is(err, timetable.ErrPersist) {
			return ErrMsg{Err: err}
		}
		return GridClearedMsg{Snapshot: snap, Warning: err}
	}
}

// LookupSeats fetches live enrollment numbers for c.
func LookupSeats(client SeatLookup, params course.QueryParams, c *course.Course) tea.Cmd {
	return func() tea.Msg {
		if client == nil {
			return ErrMsg{Err: seats.ErrUnavailable}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		st, err := client.Lookup(ctx, seats.Query{
			Year:       params.OpenYear,
			Term:       params.Helf,
			Department: c.Department,
			Code:       c.Code,
			Name:       c.Name,
		})
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("seats for %s: %w", c.Name, err)}
		}
		return SeatsMsg{Course: c, Status: st}
	}
}

// CopyCodes puts the registration codes of every placed course on the
// clipboard, one per line.
func CopyCodes(snap Snapshot) tea.Cmd {
	return func() tea.Msg {
		if len(snap.Placements) == 0 {
			return StatusMsgCmd{Msg: "課表是空的"}
		}
		text := ""
		for _, p := range snap.Placements {
			text += p.Course.RegistrationCode() + "\n"
		}
		if err := clipboard.WriteAll(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return CopiedMsg{Count: len(snap.Placements)}
	}
}

// ClearStatusAfter schedules a ClearStatusMsg.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
