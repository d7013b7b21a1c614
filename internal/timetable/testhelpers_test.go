package timetable

import (
	"context"
	"errors"
	"testing"

	"github.com/javiermolinar/coursegrid/internal/course"
)

func newCourse(id string, credits float64, spec course.TimeSpec) *course.Course {
	return &course.Course{
		ID:      id,
		Name:    "Course " + id,
		Teacher: "Teacher " + id,
		Credits: course.Credits(credits),
		Time:    spec,
	}
}

func newCatalog(courses ...*course.Course) *course.Catalog {
	c, _ := course.NewCatalog(course.QueryParams{OpenYear: "114", Helf: "1"}, courses)
	return c
}

func newTestEngine(t *testing.T, kv KV, courses ...*course.Course) *Engine {
	t.Helper()
	opts := []Option{WithColors(NewColorAllocatorAt(0))}
	if kv != nil {
		opts = append(opts, WithStore(NewStore(kv, nil)))
	}
	return NewEngine(newCatalog(courses...), opts...)
}

func slot(day course.Day, period course.Period) course.Slot {
	return course.Slot{Day: day, Period: period}
}

// failingKV fails every write after the first n.
type failingKV struct {
	MemoryKV
	writesLeft int
	readErr    error
}

func newFailingKV(n int) *failingKV {
	return &failingKV{MemoryKV: *NewMemoryKV(), writesLeft: n}
}

func (f *failingKV) Read(ctx context.Context, key string) (string, bool, error) {
	if f.readErr != nil {
		return "", false, f.readErr
	}
	return f.MemoryKV.Read(ctx, key)
}

func (f *failingKV) Write(ctx context.Context, key, value string) error {
	if f.writesLeft <= 0 {
		return errors.New("disk full")
	}
	f.writesLeft--
	return f.MemoryKV.Write(ctx, key, value)
}

// countingKV counts writes.
type countingKV struct {
	MemoryKV
	writes int
}

func newCountingKV() *countingKV {
	return &countingKV{MemoryKV: *NewMemoryKV()}
}

func (c *countingKV) Write(ctx context.Context, key, value string) error {
	c.writes++
	return c.MemoryKV.Write(ctx, key, value)
}

// assertConsistent checks the all-or-nothing placement invariant.
func assertConsistent(t *testing.T, e *Engine) {
	t.Helper()
	added := make(map[string]bool)
	for _, id := range e.AddedIDs() {
		added[id] = true
		c := e.Catalog().Get(id)
		for _, s := range c.Time.Slots() {
			owner, ok := e.index.Lookup(s)
			if !ok || owner != id {
				t.Errorf("slot %s: expected owner %s, got %q (present=%v)", s, id, owner, ok)
			}
		}
	}
	for s, owner := range e.Slots() {
		if !added[owner] {
			t.Errorf("slot %s held by %s which is not added", s, owner)
		}
	}
}
