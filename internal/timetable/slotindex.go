// Package timetable implements the weekly grid: slot occupancy, conflict
// detection, per-course colors and the add/remove engine.
package timetable

import (
	"errors"
	"fmt"

	"github.com/javiermolinar/coursegrid/internal/course"
)

// Slot index errors.
var (
	ErrSlotOccupied = errors.New("slot is already occupied")
	ErrSlotFree     = errors.New("slot is not occupied")
)

// SlotIndex maps grid slots to the id of the course occupying them.
// A slot missing from the index is free.
type SlotIndex struct {
	slots map[course.Slot]string
}

// NewSlotIndex returns an empty index.
func NewSlotIndex() *SlotIndex {
	return &SlotIndex{slots: make(map[course.Slot]string)}
}

// Lookup returns the course occupying s.
func (x *SlotIndex) Lookup(s course.Slot) (string, bool) {
	id, ok := x.slots[s]
	return id, ok
}

// Occupy assigns s to id. The slot must be free.
func (x *SlotIndex) Occupy(s course.Slot, id string) error {
	if cur, ok := x.slots[s]; ok {
		return fmt.Errorf("%w: %s held by %s", ErrSlotOccupied, s, cur)
	}
	x.slots[s] = id
	return nil
}

// Vacate frees s. The slot must be occupied.
func (x *SlotIndex) Vacate(s course.Slot) error {
	if _, ok := x.slots[s]; !ok {
		return fmt.Errorf("%w: %s", ErrSlotFree, s)
	}
	delete(x.slots, s)
	return nil
}

// SlotsFor returns every slot held by id in grid order.
func (x *SlotIndex) SlotsFor(id string) []course.Slot {
	var out []course.Slot
	for s, owner := range x.slots {
		if owner == id {
			out = append(out, s)
		}
	}
	course.SortSlots(out)
	return out
}

// Len returns the number of occupied slots.
func (x *SlotIndex) Len() int {
	return len(x.slots)
}

// Snapshot returns a copy of the slot mapping.
func (x *SlotIndex) Snapshot() map[course.Slot]string {
	out := make(map[course.Slot]string, len(x.slots))
	for s, id := range x.slots {
		out[s] = id
	}
	return out
}

// Reset empties the index.
func (x *SlotIndex) Reset() {
	clear(x.slots)
}
