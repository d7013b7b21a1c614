package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/javiermolinar/coursegrid/internal/config"
	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/dateutil"
)

// DefaultWeeks is the number of weekly occurrences per event.
const DefaultWeeks = 18

// Clock maps a period to its start and end offsets from midnight.
type Clock map[course.Period]Span

// Span is a period's time of day.
type Span struct {
	Start time.Duration
	End   time.Duration
}

// ParseClock converts the configured period table.
func ParseClock(periods map[string]string) (Clock, error) {
	clock := make(Clock, len(periods))
	for tag, span := range periods {
		p, err := course.ParsePeriod(tag)
		if err != nil {
			return nil, err
		}
		start, end, err := config.ParseSpan(span)
		if err != nil {
			return nil, fmt.Errorf("period %s: %w", tag, err)
		}
		clock[p] = Span{Start: start, End: end}
	}
	return clock, nil
}

// CalendarOptions controls ICS output.
type CalendarOptions struct {
	Name      string
	TermStart time.Time // any day in the first week of the term
	Weeks     int       // defaults to DefaultWeeks
	Clock     Clock
	Now       func() time.Time
}

// WriteICS writes one weekly-recurring event per contiguous run of periods.
// Runs touching a period missing from the clock are skipped.
func WriteICS(w io.Writer, g *Grid, opts CalendarOptions) error {
	if g.Empty() {
		return ErrEmptyTimetable
	}
	if opts.Weeks <= 0 {
		opts.Weeks = DefaultWeeks
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	stamp := opts.Now().UTC()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//coursegrid//timetable//ZH")
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	termStart := opts.TermStart
	if termStart.IsZero() {
		termStart = opts.Now()
	}
	monday := dateutil.WeekStart(termStart)
	for _, p := range g.Placements {
		for _, r := range runs(p.Slots) {
			first, ok1 := opts.Clock[r.First]
			last, ok2 := opts.Clock[r.Last]
			if !ok1 || !ok2 {
				continue
			}
			rank, _ := r.Day.Rank()
			day := monday.AddDate(0, 0, rank)

			uid := fmt.Sprintf("%s-%s-%s@coursegrid", sanitize(p.Course.ID), r.Day, r.First)
			event := cal.AddEvent(uid)
			event.SetDtStampTime(stamp)
			event.SetStartAt(day.Add(first.Start))
			event.SetEndAt(day.Add(last.End))
			event.SetSummary(p.Course.Name)
			if p.Course.Classroom != "" {
				event.SetLocation(p.Course.Classroom)
			}
			event.SetDescription(describe(p.Course))
			event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", opts.Weeks))
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

func describe(c *course.Course) string {
	parts := []string{}
	if c.Teacher != "" {
		parts = append(parts, "教師: "+c.Teacher)
	}
	parts = append(parts, "課號: "+c.RegistrationCode(), "學分: "+c.Credits.String())
	return strings.Join(parts, "\n")
}

func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
