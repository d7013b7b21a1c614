package course

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Day is a weekday tag as it appears in the catalog.
type Day string

const (
	Mon Day = "Mon"
	Tue Day = "Tue"
	Wed Day = "Wed"
	Thu Day = "Thu"
	Fri Day = "Fri"
	Sat Day = "Sat"
	Sun Day = "Sun" // present in catalog data, never placed on the grid
)

// Days are the grid columns in order.
var Days = []Day{Mon, Tue, Wed, Thu, Fri, Sat}

var allDays = []Day{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

var dayRank = map[Day]int{Mon: 0, Tue: 1, Wed: 2, Thu: 3, Fri: 4, Sat: 5}

var dayNames = map[Day]string{
	Mon: "一", Tue: "二", Wed: "三", Thu: "四", Fri: "五", Sat: "六", Sun: "日",
}

// Rank returns the grid column of d and whether d is a grid day.
func (d Day) Rank() (int, bool) {
	r, ok := dayRank[d]
	return r, ok
}

// Valid reports whether d is one of the six grid days.
func (d Day) Valid() bool {
	_, ok := dayRank[d]
	return ok
}

// Local returns the short local name of the day ("一" for Mon).
func (d Day) Local() string {
	if n, ok := dayNames[d]; ok {
		return n
	}
	return string(d)
}

// ParseDay parses a day tag case-insensitively.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for _, d := range allDays {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDay, s)
}

// Period is one of the sixteen period tags.
type Period string

// Periods are the grid rows in order. Lettered periods are breaks.
var Periods = []Period{"A", "1", "2", "3", "4", "B", "5", "6", "7", "8", "C", "9", "10", "11", "12", "D"}

var periodRank = func() map[Period]int {
	m := make(map[Period]int, len(Periods))
	for i, p := range Periods {
		m[p] = i
	}
	return m
}()

// Rank returns the grid row of p and whether p is a known period.
func (p Period) Rank() (int, bool) {
	r, ok := periodRank[p]
	return r, ok
}

// Valid reports whether p is a known period tag.
func (p Period) Valid() bool {
	_, ok := periodRank[p]
	return ok
}

// IsBreak reports whether p is a lettered break period.
func (p Period) IsBreak() bool {
	switch p {
	case "A", "B", "C", "D":
		return true
	default:
		return false
	}
}

// ParsePeriod parses a period tag. Letters are matched case-insensitively.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
	return p, nil
}

// Slot is one (day, period) cell of the weekly grid.
type Slot struct {
	Day    Day
	Period Period
}

// Key returns the "Day-Period" form of the slot.
func (s Slot) Key() string {
	return string(s.Day) + "-" + string(s.Period)
}

func (s Slot) String() string {
	return s.Key()
}

// ParseSlot parses the "Day-Period" form.
func ParseSlot(key string) (Slot, error) {
	day, period, ok := strings.Cut(key, "-")
	if !ok {
		return Slot{}, fmt.Errorf("invalid slot key %q", key)
	}
	d, err := ParseDay(day)
	if err != nil {
		return Slot{}, err
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Day: d, Period: p}, nil
}

// Less orders slots by day rank, then period rank.
func (s Slot) Less(o Slot) bool {
	sd, _ := s.Day.Rank()
	od, _ := o.Day.Rank()
	if sd != od {
		return sd < od
	}
	sp, _ := s.Period.Rank()
	op, _ := o.Period.Rank()
	return sp < op
}

// SortSlots sorts slots into grid order in place.
func SortSlots(slots []Slot) {
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Less(slots[j]) })
}

// TimeSpec maps a weekday to the periods a course meets on that day.
type TimeSpec map[Day][]Period

// UnmarshalJSON trims period tags and drops empty ones.
func (t *TimeSpec) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	spec := make(TimeSpec, len(raw))
	for day, periods := range raw {
		var ps []Period
		for _, p := range periods {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			ps = append(ps, Period(p))
		}
		spec[Day(day)] = ps
	}
	*t = spec
	return nil
}

// Slots expands the time spec into candidate slots: days in grid order, periods in
// the order the catalog lists them. Sunday and unknown period tags are
// skipped since they have no grid cell. Repeated tags collapse to one slot.
func (t TimeSpec) Slots() []Slot {
	var slots []Slot
	seen := make(map[Slot]bool)
	for _, d := range Days {
		for _, p := range t[d] {
			s := Slot{Day: d, Period: p}
			if !p.Valid() || seen[s] {
				continue
			}
			seen[s] = true
			slots = append(slots, s)
		}
	}
	return slots
}

// IsEmpty reports whether the time spec has no placeable slot.
func (t TimeSpec) IsEmpty() bool {
	return len(t.Slots()) == 0
}
