package timetable

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/javiermolinar/coursegrid/internal/course"
)

// ErrPersist wraps a failed save after a mutation that was applied.
var ErrPersist = errors.New("timetable changed but could not be saved")

// Placement is a course currently on the grid.
type Placement struct {
	Course  *course.Course
	Color   Color
	Slots   []course.Slot // grid order
	Primary course.Slot   // first slot in grid order; hosts the remove control
}

// HasPrimary reports whether the course occupies any grid slot.
func (p *Placement) HasPrimary() bool {
	return len(p.Slots) > 0
}

// Cell is the rendering data for one occupied slot.
type Cell struct {
	Course  *course.Course
	Color   Color
	Primary bool
}

// ChangeKind identifies an engine mutation.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeRemoved
)

func (k ChangeKind) String() string {
	if k == ChangeAdded {
		return "added"
	}
	return "removed"
}

// Change is emitted to observers after every successful mutation.
type Change struct {
	Kind         ChangeKind
	CourseID     string
	Restoring    bool
	TotalCredits float64
}

// Engine owns the grid state for one session. It is not safe for
// concurrent use; see Session for a serialized wrapper.
type Engine struct {
	catalog   *course.Catalog
	index     *SlotIndex
	added     map[string]*Placement
	order     []string // added ids in insertion order
	colors    *ColorAllocator
	store     *Store
	logger    *zap.Logger
	total     float64
	observers []func(Change)
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore enables persistence.
func WithStore(s *Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithColors replaces the randomly seeded color allocator.
func WithColors(a *ColorAllocator) Option {
	return func(e *Engine) { e.colors = a }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an empty engine over catalog.
func NewEngine(catalog *course.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		index:   NewSlotIndex(),
		added:   make(map[string]*Placement),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog, _ = course.NewCatalog(course.QueryParams{}, nil)
	}
	if e.colors == nil {
		e.colors = NewColorAllocator()
	}
	return e
}

// Observe registers fn to be called after every mutation.
func (e *Engine) Observe(fn func(Change)) {
	e.observers = append(e.observers, fn)
}

// Catalog returns the catalog the engine resolves ids against.
func (e *Engine) Catalog() *course.Catalog {
	return e.catalog
}

// FindConflict reports the first slot of c already held by another course.
func (e *Engine) FindConflict(c *course.Course) *Conflict {
	return CheckConflict(e.index, c.Time.Slots())
}

// Add places c on the grid. Adding a course already placed is a no-op.
// On conflict it returns a *ConflictError and leaves all state untouched.
// Unless restoring, the new selection is saved; a failed save returns an
// error wrapping ErrPersist while the placement stays in effect.
func (e *Engine) Add(ctx context.Context, c *course.Course, restoring bool) (*Placement, error) {
	if p, ok := e.added[c.ID]; ok {
		return p, nil
	}

	candidates := c.Time.Slots()
	if conflict := CheckConflict(e.index, candidates); conflict != nil {
		err := &ConflictError{
			Course:   c,
			Occupant: e.catalog.Get(conflict.Occupant),
			Conflict: *conflict,
		}
		e.logger.Debug("course conflicts",
			zap.String("course", c.ID),
			zap.String("occupant", conflict.Occupant),
			zap.String("slot", conflict.Slot.Key()),
		)
		return nil, err
	}

	sorted := append([]course.Slot{}, candidates...)
	course.SortSlots(sorted)
	p := &Placement{
		Course: c,
		Color:  e.colors.Next(),
		Slots:  sorted,
	}
	if len(sorted) > 0 {
		p.Primary = sorted[0]
	}

	for _, s := range sorted {
		if err := e.index.Occupy(s, c.ID); err != nil {
			// CheckConflict just passed, so this only fires on a corrupted index.
			e.rollback(c.ID)
			return nil, fmt.Errorf("placing %s: %w", c.ID, err)
		}
	}
	e.added[c.ID] = p
	e.order = append(e.order, c.ID)
	e.recomputeTotal()

	e.logger.Debug("course added",
		zap.String("course", c.ID),
		zap.Int("slots", len(sorted)),
		zap.Bool("restoring", restoring),
	)
	e.emit(Change{Kind: ChangeAdded, CourseID: c.ID, Restoring: restoring, TotalCredits: e.total})

	if !restoring {
		if err := e.save(ctx); err != nil {
			return p, err
		}
	}
	return p, nil
}

// Remove takes the course off the grid. Removing a course not on the grid
// is a no-op.
func (e *Engine) Remove(ctx context.Context, id string) error {
	if _, ok := e.added[id]; !ok {
		return nil
	}
	e.rollback(id)
	e.recomputeTotal()

	e.logger.Debug("course removed", zap.String("course", id))
	e.emit(Change{Kind: ChangeRemoved, CourseID: id, TotalCredits: e.total})

	return e.save(ctx)
}

// Clear removes every course.
// A failed save does not stop the removal; the last save error is returned.
func (e *Engine) Clear(ctx context.Context) error {
	var saveErr error
	for _, id := range e.AddedIDs() {
		if err := e.Remove(ctx, id); err != nil {
			if !errors.Is(err, ErrPersist) {
				return err
			}
			saveErr = err
		}
	}
	return saveErr
}

// RestoreResult reports what happened to each saved id.
type RestoreResult struct {
	Restored    []string
	Unknown     []string // no longer in the catalog
	Conflicting []string // overlapped an id restored earlier
}

// Restore re-adds the saved selection without writing it back.
func (e *Engine) Restore(ctx context.Context) (RestoreResult, error) {
	var res RestoreResult
	if e.store == nil {
		return res, nil
	}

	ids, err := e.store.Load(ctx)
	if err != nil {
		return res, err
	}

	for _, id := range ids {
		if e.IsAdded(id) {
			continue
		}
		c := e.catalog.Get(id)
		if c == nil {
			e.logger.Info("skipping saved course missing from catalog", zap.String("course", id))
			res.Unknown = append(res.Unknown, id)
			continue
		}
		if _, err := e.Add(ctx, c, true); err != nil {
			var ce *ConflictError
			if errors.As(err, &ce) {
				e.logger.Info("skipping saved course that conflicts", zap.String("course", id), zap.Error(err))
				res.Conflicting = append(res.Conflicting, id)
				continue
			}
			return res, err
		}
		res.Restored = append(res.Restored, id)
	}
	return res, nil
}

// TotalCredits returns the credit sum of all added courses.
func (e *Engine) TotalCredits() float64 {
	return e.total
}

// IsAdded reports whether the course is on the grid.
func (e *Engine) IsAdded(id string) bool {
	_, ok := e.added[id]
	return ok
}

// AddedIDs returns the added ids in the order they were added.
func (e *Engine) AddedIDs() []string {
	return append([]string{}, e.order...)
}

// Placement returns the placement for id, or nil.
func (e *Engine) Placement(id string) *Placement {
	return e.added[id]
}

// Placements returns all placements in insertion order.
func (e *Engine) Placements() []*Placement {
	out := make([]*Placement, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.added[id])
	}
	return out
}

// Cell returns the rendering data for s, if occupied.
func (e *Engine) Cell(s course.Slot) (Cell, bool) {
	id, ok := e.index.Lookup(s)
	if !ok {
		return Cell{}, false
	}
	p := e.added[id]
	return Cell{
		Course:  p.Course,
		Color:   p.Color,
		Primary: p.HasPrimary() && p.Primary == s,
	}, true
}

// Slots returns a copy of the slot-to-course mapping.
func (e *Engine) Slots() map[course.Slot]string {
	return e.index.Snapshot()
}

// rollback vacates every slot held by id and forgets it.
func (e *Engine) rollback(id string) {
	for _, s := range e.index.SlotsFor(id) {
		_ = e.index.Vacate(s)
	}
	delete(e.added, id)
	for i, cur := range e.order {
		if cur == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

func (e *Engine) recomputeTotal() {
	var total float64
	for _, p := range e.added {
		total += float64(p.Course.Credits)
	}
	e.total = total
}

func (e *Engine) save(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Save(ctx, e.AddedIDs()); err != nil {
		e.logger.Error("saving timetable", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (e *Engine) emit(ch Change) {
	for _, fn := range e.observers {
		fn(ch)
	}
}
