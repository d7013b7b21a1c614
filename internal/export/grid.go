// Package export writes the timetable to spreadsheet and calendar files.
package export

import (
	"errors"

	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/timetable"
)

// ErrEmptyTimetable is returned when there is nothing to export.
var ErrEmptyTimetable = errors.New("timetable is empty")

// Source is the read side of a timetable. *timetable.Engine satisfies it.
type Source interface {
	Placements() []*timetable.Placement
	TotalCredits() float64
}

// Cell is one occupied grid cell.
type Cell struct {
	CourseID  string
	Name      string
	Teacher   string
	Classroom string
	Color     timetable.Color
	Primary   bool
}

// Grid is a period-by-weekday matrix of the timetable. Rows follow
// course.Periods and columns follow course.Days.
type Grid struct {
	Cells        [][]*Cell
	Placements   []*timetable.Placement
	TotalCredits float64
}

// BuildGrid lays out the placements of src.
func BuildGrid(src Source) *Grid {
	g := &Grid{
		Cells:        make([][]*Cell, len(course.Periods)),
		Placements:   src.Placements(),
		TotalCredits: src.TotalCredits(),
	}
	for i := range g.Cells {
		g.Cells[i] = make([]*Cell, len(course.Days))
	}
	for _, p := range g.Placements {
		for _, s := range p.Slots {
			row, okRow := s.Period.Rank()
			col, okCol := s.Day.Rank()
			if !okRow || !okCol {
				continue
			}
			g.Cells[row][col] = &Cell{
				CourseID:  p.Course.ID,
				Name:      p.Course.Name,
				Teacher:   p.Course.Teacher,
				Classroom: p.Course.Classroom,
				Color:     p.Color,
				Primary:   p.HasPrimary() && p.Primary == s,
			}
		}
	}
	return g
}

// At returns the cell at s, or nil when free.
func (g *Grid) At(s course.Slot) *Cell {
	row, okRow := s.Period.Rank()
	col, okCol := s.Day.Rank()
	if !okRow || !okCol {
		return nil
	}
	return g.Cells[row][col]
}

// Empty reports whether no course is placed.
func (g *Grid) Empty() bool {
	return len(g.Placements) == 0
}

// run is a contiguous block of periods on one day.
type run struct {
	Day   course.Day
	First course.Period
	Last  course.Period
}

// runs splits a placement's slots into per-day blocks of adjacent periods.
func runs(slots []course.Slot) []run {
	sorted := append([]course.Slot{}, slots...)
	course.SortSlots(sorted)

	var out []run
	for _, s := range sorted {
		if n := len(out); n > 0 {
			last := &out[n-1]
			lr, _ := last.Last.Rank()
			sr, _ := s.Period.Rank()
			if last.Day == s.Day && sr == lr+1 {
				last.Last = s.Period
				continue
			}
		}
		out = append(out, run{Day: s.Day, First: s.Period, Last: s.Period})
	}
	return out
}
