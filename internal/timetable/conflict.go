package timetable

import (
	"errors"
	"fmt"

	"github.com/javiermolinar/coursegrid/internal/course"
)

// ErrConflict is returned when a course overlaps one already on the grid.
var ErrConflict = errors.New("time slot conflict")

// Conflict is the first occupied slot found for a candidate course.
type Conflict struct {
	Slot     course.Slot
	Occupant string // id of the course holding Slot
}

// CheckConflict scans candidates in order and returns the first one already
// occupied, or nil. It does not modify the index.
func CheckConflict(x *SlotIndex, candidates []course.Slot) *Conflict {
	for _, s := range candidates {
		if id, ok := x.Lookup(s); ok {
			return &Conflict{Slot: s, Occupant: id}
		}
	}
	return nil
}

// ConflictError describes a rejected placement.
type ConflictError struct {
	Course   *course.Course
	Occupant *course.Course // nil when the occupant is not in the catalog
	Conflict Conflict
}

func (e *ConflictError) Error() string {
	if e.Occupant == nil {
		return fmt.Sprintf("衝堂！無法加入課程 %q", e.Course.Name)
	}
	return fmt.Sprintf("衝堂！%q 與課表中星期%s的 %q 衝堂",
		e.Course.Name, e.Conflict.Slot.Day.Local(), e.Occupant.Name)
}

// Unwrap lets errors.Is match ErrConflict.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
