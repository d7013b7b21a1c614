package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/export"
	"github.com/javiermolinar/coursegrid/internal/timetable"
)

// PrintOpts configures course row printing.
type PrintOpts struct {
	Width   int  // terminal width, 0 for no truncation
	Verbose bool // show classroom and notes
}

// rowMarker is the leading symbol of a course row.
func rowMarker(e *timetable.Engine, c *course.Course) string {
	switch {
	case e == nil:
		return " "
	case e.IsAdded(c.ID):
		return formatAdded("●")
	case e.FindConflict(c) != nil:
		return formatConflict("✗")
	default:
		return "○"
	}
}

// PrintCourseRow writes one course as a single line.
func PrintCourseRow(w io.Writer, c *course.Course, marker string, opts PrintOpts) {
	line := fmt.Sprintf("%-14s %s  %s  %s",
		c.ID,
		pad(c.Name, 20),
		pad(c.Teacher, 8),
		course.FormatTime(c.Time),
	)
	line += formatMuted(fmt.Sprintf("  %s學分", c.Credits))
	if opts.Verbose && c.Classroom != "" {
		line += formatMuted("  " + c.Classroom)
	}
	if opts.Width > 0 {
		line = ansi.Truncate(line, opts.Width-2, "…")
	}
	fmt.Fprintf(w, "%s %s\n", marker, line)
}

// PrintCourseDetail writes every field of c.
func PrintCourseDetail(w io.Writer, c *course.Course, detailURL string) {
	fmt.Fprintf(w, "%s %s\n", formatHeader(c.Name), formatMuted(c.ID))
	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(w, "  %s %s\n", pad(label, 8), value)
	}
	field("教師", c.Teacher)
	field("系所", c.DepartmentName())
	field("選課代碼", c.RegistrationCode())
	field("學分", c.Credits.String())
	field("時間", course.FormatTime(c.Time))
	field("教室", c.Classroom)
	field("人數上限", c.Limit)
	field("先修科目", c.Prerequisites)
	field("備註", c.Note)
	field("課程大綱", detailURL)
}

// PrintGrid writes the timetable as a period-by-weekday text table. The
// primary slot of each course is marked with ×.
func PrintGrid(w io.Writer, g *export.Grid, colWidth int) {
	fmt.Fprint(w, pad("", 3))
	for _, d := range course.Days {
		fmt.Fprint(w, " "+formatHeader(center(d.Local(), colWidth)))
	}
	fmt.Fprintln(w)

	for _, p := range course.Periods {
		fmt.Fprint(w, formatMuted(padLeft(string(p), 3)))
		for _, d := range course.Days {
			cell := g.At(course.Slot{Day: d, Period: p})
			text := formatMuted(pad("·", colWidth))
			if cell != nil {
				name := cell.Name
				if cell.Primary {
					name = "×" + name
				}
				text = pad(ansi.Truncate(name, colWidth, "…"), colWidth)
			}
			fmt.Fprint(w, " "+text)
		}
		fmt.Fprintln(w)
	}
}

// PrintTotals writes the credit total line.
func PrintTotals(w io.Writer, courses int, credits float64) {
	fmt.Fprintf(w, "%s\n", formatStats(fmt.Sprintf("%d 門課程，共 %g 學分", courses, credits)))
}

// pad right-pads s to width display columns.
func pad(s string, width int) string {
	n := ansi.StringWidth(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func padLeft(s string, width int) string {
	n := ansi.StringWidth(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

func center(s string, width int) string {
	n := ansi.StringWidth(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
