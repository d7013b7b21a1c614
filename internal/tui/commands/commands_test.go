package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/seats"
	"github.com/javiermolinar/coursegrid/internal/timetable"
)

func newSession(t *testing.T, kv timetable.KV, courses ...*course.Course) *timetable.Session {
	t.Helper()
	cat, _ := course.NewCatalog(course.QueryParams{OpenYear: "114", Helf: "1"}, courses)
	opts := []timetable.Option{timetable.WithColors(timetable.NewColorAllocatorAt(0))}
	if kv != nil {
		opts = append(opts, timetable.WithStore(timetable.NewStore(kv, nil)))
	}
	s := timetable.NewSession(timetable.NewEngine(cat, opts...))
	t.Cleanup(s.Close)
	return s
}

var (
	calculus = &course.Course{ID: "AM101", Name: "微積分", Department: "AM", Code: "101", Credits: 3,
		Time: course.TimeSpec{course.Mon: {"1", "2"}}}
	physics = &course.Course{ID: "PH100", Name: "物理", Department: "PH", Code: "100", Credits: 2,
		Time: course.TimeSpec{course.Mon: {"2"}, course.Wed: {"3"}}}
	english = &course.Course{ID: "EN200", Name: "英文", Department: "EN", Code: "200", Credits: 2,
		Time: course.TimeSpec{course.Tue: {"5"}}}
)

func TestAddCourse(t *testing.T) {
	s := newSession(t, nil, calculus, physics)

	msg := AddCourse(s, calculus)()
	added, ok := msg.(CourseAddedMsg)
	if !ok {
		t.Fatalf("msg type = %T, want CourseAddedMsg", msg)
	}
	if added.Warning != nil {
		t.Errorf("unexpected warning: %v", added.Warning)
	}
	if !added.Snapshot.IsAdded("AM101") || added.Snapshot.TotalCredits != 3 {
		t.Errorf("unexpected snapshot %+v", added.Snapshot)
	}
	if p := added.Snapshot.At(course.Slot{Day: course.Mon, Period: "2"}); p == nil || p.Course.ID != "AM101" {
		t.Errorf("Mon-2 should belong to AM101")
	}
	if !added.Snapshot.Conflicts(physics) {
		t.Error("physics should conflict on Mon-2")
	}

	msg = AddCourse(s, physics)()
	conflict, ok := msg.(ConflictMsg)
	if !ok {
		t.Fatalf("msg type = %T, want ConflictMsg", msg)
	}
	if conflict.Err.Occupant == nil || conflict.Err.Occupant.ID != "AM101" {
		t.Errorf("unexpected occupant in %v", conflict.Err)
	}
}

type brokenKV struct{}

func (brokenKV) Read(context.Context, string) (string, bool, error) { return "", false, nil }
func (brokenKV) Write(context.Context, string, string) error { return errors.New("disk full") }

func TestAddCourse_SaveFailureIsWarning(t *testing.T) {
	s := newSession(t, brokenKV{}, english)

	msg := AddCourse(s, english)()
	added, ok := msg.(CourseAddedMsg)
	if !ok {
		t.Fatalf("msg type = %T, want CourseAddedMsg", msg)
	}
	if !errors.Is(added.Warning, timetable.ErrPersist) {
		t.Errorf("expected ErrPersist warning, got %v", added.Warning)
	}
	if !added.Snapshot.IsAdded("EN200") {
		t.Error("course should stay placed when saving fails")
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := newSession(t, nil, calculus, english)
	AddCourse(s, calculus)()
	AddCourse(s, english)()

	msg := RemoveCourse(s, calculus)()
	removed, ok := msg.(CourseRemovedMsg)
	if !ok {
		t.Fatalf("msg type = %T, want CourseRemovedMsg", msg)
	}
	if removed.Snapshot.IsAdded("AM101") || !removed.Snapshot.IsAdded("EN200") {
		t.Errorf("unexpected placements after remove")
	}

	msg = ClearGrid(s)()
	cleared, ok := msg.(GridClearedMsg)
	if !ok {
		t.Fatalf("msg type = %T, want GridClearedMsg", msg)
	}
	if len(cleared.Snapshot.Placements) != 0 || len(cleared.Snapshot.Slots) != 0 {
		t.Errorf("grid should be empty, got %+v", cleared.Snapshot)
	}
}

func TestLoadGrid_Restores(t *testing.T) {
	kv := timetable.NewMemoryKV()
	if err := timetable.NewStore(kv, nil).Save(context.Background(), []string{"EN200", "GONE"}); err != nil {
		t.Fatal(err)
	}
	s := newSession(t, kv, english)

	msg := LoadGrid(s)()
	loaded, ok := msg.(GridLoadedMsg)
	if !ok {
		t.Fatalf("msg type = %T, want GridLoadedMsg", msg)
	}
	if !loaded.Snapshot.IsAdded("EN200") {
		t.Error("EN200 should be restored")
	}
	if len(loaded.Restore.Unknown) != 1 || loaded.Restore.Unknown[0] != "GONE" {
		t.Errorf("unexpected unknown ids %v", loaded.Restore.Unknown)
	}
}

type fakeSeats struct {
	got seats.Query
}

func (f *fakeSeats) Lookup(_ context.Context, q seats.Query) (seats.Status, error) {
	f.got = q
	return seats.Status{Confirmed: "40", OnlineCount: "3", Remaining: "7"}, nil
}

func TestLookupSeats(t *testing.T) {
	client := &fakeSeats{}
	msg := LookupSeats(client, course.QueryParams{OpenYear: "114", Helf: "1"}, calculus)()

	got, ok := msg.(SeatsMsg)
	if !ok {
		t.Fatalf("msg type = %T, want SeatsMsg", msg)
	}
	if got.Status.Remaining != "7" {
		t.Errorf("unexpected status %+v", got.Status)
	}
	want := seats.Query{Year: "114", Term: "1", Department: "AM", Code: "101", Name: "微積分"}
	if client.got != want {
		t.Errorf("query = %+v, want %+v", client.got, want)
	}

	if _, ok := LookupSeats(nil, course.QueryParams{}, calculus)().(ErrMsg); !ok {
		t.Error("expected ErrMsg without a seat client")
	}
}

func TestCopyCodes_Empty(t *testing.T) {
	msg := CopyCodes(Snapshot{})()
	if _, ok := msg.(StatusMsgCmd); !ok {
		t.Fatalf("msg type = %T, want StatusMsgCmd", msg)
	}
}
