package timetable

import (
	"context"
	"errors"
	"sync"
)

// ErrSessionClosed is returned by calls made after Close.
var ErrSessionClosed = errors.New("timetable session closed")

// Session serializes access to an Engine from many goroutines. A single
// goroutine owns the engine and runs every request in arrival order.
type Session struct {
	reqs      chan func(*Engine)
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession starts the owner goroutine for e. The caller must not touch e
// directly afterwards.
func NewSession(e *Engine) *Session {
	s := &Session{
		reqs: make(chan func(*Engine)),
		done: make(chan struct{}),
	}
	go s.loop(e)
	return s
}

func (s *Session) loop(e *Engine) {
	for {
		select {
		case fn := <-s.reqs:
			fn(e)
		case <-s.done:
			return
		}
	}
}

// Do runs fn on the owner goroutine and waits for it to finish. fn must not
// retain the engine or anything it returns by pointer past the call.
func (s *Session) Do(ctx context.Context, fn func(*Engine) error) error {
	result := make(chan error, 1)
	req := func(e *Engine) { result <- fn(e) }

	select {
	case s.reqs <- req:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted the request runs to completion; wait for it so the
	// caller never observes a half-applied mutation.
	return <-result
}

// Add places the course with the given id.
func (s *Session) Add(ctx context.Context, id string) (View, error) {
	var v View
	err := s.Do(ctx, func(e *Engine) error {
		c, err := e.Catalog().Lookup(id)
		if err != nil {
			return err
		}
		_, addErr := e.Add(ctx, c, false)
		v = Snapshot(e)
		return addErr
	})
	return v, err
}

// Remove takes the course with the given id off the grid.
func (s *Session) Remove(ctx context.Context, id string) (View, error) {
	var v View
	err := s.Do(ctx, func(e *Engine) error {
		rmErr := e.Remove(ctx, id)
		v = Snapshot(e)
		return rmErr
	})
	return v, err
}

// Clear empties the grid.
func (s *Session) Clear(ctx context.Context) (View, error) {
	var v View
	err := s.Do(ctx, func(e *Engine) error {
		clrErr := e.Clear(ctx)
		v = Snapshot(e)
		return clrErr
	})
	return v, err
}

// View returns a snapshot of the grid.
func (s *Session) View(ctx context.Context) (View, error) {
	var v View
	err := s.Do(ctx, func(e *Engine) error {
		v = Snapshot(e)
		return nil
	})
	return v, err
}

// Close stops the owner goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// View is an immutable copy of the grid state, safe to hand across
// goroutines.
type View struct {
	TotalCredits float64           `json:"total_credits"`
	Courses      []PlacementView   `json:"courses"`
	Slots        map[string]string `json:"slots"` // "Day-Period" -> course id
}

// PlacementView is the serializable form of a Placement.
type PlacementView struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Teacher string   `json:"teacher"`
	Credits float64  `json:"credits"`
	Color   string   `json:"color"`
	Slots   []string `json:"slots"`
	Primary string   `json:"primary,omitempty"`
}

// Snapshot copies the engine state into a View.
func Snapshot(e *Engine) View {
	v := View{
		TotalCredits: e.TotalCredits(),
		Courses:      make([]PlacementView, 0, len(e.order)),
		Slots:        make(map[string]string, e.index.Len()),
	}
	for _, p := range e.Placements() {
		pv := PlacementView{
			ID:      p.Course.ID,
			Name:    p.Course.Name,
			Teacher: p.Course.Teacher,
			Credits: float64(p.Course.Credits),
			Color:   p.Color.CSS(),
			Slots:   make([]string, len(p.Slots)),
		}
		for i, sl := range p.Slots {
			pv.Slots[i] = sl.Key()
		}
		if p.HasPrimary() {
			pv.Primary = p.Primary.Key()
		}
		v.Courses = append(v.Courses, pv)
	}
	for sl, id := range e.index.Snapshot() {
		v.Slots[sl.Key()] = id
	}
	return v
}
