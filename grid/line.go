package grid

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/gridhive/cellgrid/gridmath"
)

// Line is an ordered sequence of units along one axis.
//
// A line constructed with NewLine owns its units. A line obtained from a
// surface or volume is a derived view: its units are shared with the owner,
// and the owner is the sole writer, so structural mutation through the view
// fails with ErrSharedView.
//
// Inserting or removing a unit is O(length): coordinates are absolute, so
// every downstream unit must be renumbered and its payload notified.
type Line[T Payload] struct {
	axis        gridmath.Axis
	origin      gridmath.Coordinate
	units       []*Unit[T]
	genLength   int
	factory     Factory[T]
	initialized bool

	// view mode
	owner    arena[T]
	detached bool
}

// NewLine returns an ungenerated standalone line of the given length. Its
// units do not exist until Generate runs.
func NewLine[T Payload](axis gridmath.Axis, length int) (*Line[T], error) {
	if !axis.Valid() {
		return nil, newInvalidAxisError("line", axis)
	}
	if length < 0 {
		return nil, errors.Errorf("negative line length %d", length)
	}
	return &Line[T]{axis: axis, genLength: length}, nil
}

// GenerateLine constructs a standalone line and generates its units with the
// given factory.
func GenerateLine[T Payload](axis gridmath.Axis, length int, factory Factory[T]) (*Line[T], error) {
	l, err := NewLine[T](axis, length)
	if err != nil {
		return nil, err
	}
	if err := l.Generate(factory); err != nil {
		return nil, err
	}
	return l, nil
}

// newLineView returns a line reading its units through the given arena. The
// origin's component along axis must be zero.
func newLineView[T Payload](owner arena[T], axis gridmath.Axis, origin gridmath.Coordinate) *Line[T] {
	return &Line[T]{axis: axis, origin: origin, owner: owner}
}

// Generate creates all units in position order, installing a payload in each
// through the factory. The factory is retained for later inserts.
func (l *Line[T]) Generate(factory Factory[T]) error {
	if l.owner != nil {
		return newSharedViewError("generate line")
	}
	if l.initialized {
		return errors.New("line already generated")
	}
	l.factory = factory
	l.units = make([]*Unit[T], 0, l.genLength)
	l.initialized = true
	for i := 0; i < l.genLength; i++ {
		u := &Unit[T]{coord: l.position(i)}
		u.owner.line = l
		l.units = append(l.units, u)
		if err := u.Create(factory); err != nil {
			return err
		}
	}
	return nil
}

// Axis returns the axis the line runs along.
func (l *Line[T]) Axis() gridmath.Axis {
	return l.axis
}

// Origin returns the coordinate of the line's first position.
func (l *Line[T]) Origin() gridmath.Coordinate {
	return l.origin
}

// IsView reports whether the line is a derived view of a surface or volume.
func (l *Line[T]) IsView() bool {
	return l.owner != nil
}

// Initialized reports whether the line is usable: generated and not disposed,
// or a still-attached view of a live owner.
func (l *Line[T]) Initialized() bool {
	if l.owner != nil {
		return !l.detached && l.owner.arenaInitialized()
	}
	return l.initialized
}

// Length returns the number of units in the line.
func (l *Line[T]) Length() int {
	if l.owner != nil {
		if l.detached {
			return 0
		}
		return l.owner.arenaExtent(l.axis)
	}
	return len(l.units)
}

// Extents returns the line's extents, one along each unused axis.
func (l *Line[T]) Extents() gridmath.Extents {
	return gridmath.Size(1, 1, 1).WithComponent(l.axis, l.Length())
}

// Count returns the number of units in the line.
func (l *Line[T]) Count() int {
	return l.Length()
}

// Unit returns the unit at position i.
func (l *Line[T]) Unit(i int) (*Unit[T], error) {
	if !l.Initialized() {
		return nil, newNotInitializedError("line unit")
	}
	n := l.Length()
	if i < 0 || i >= n {
		return nil, newIndexError("line unit", l.axis, i, n)
	}
	if l.owner != nil {
		u, ok := l.owner.arenaUnit(l.position(i))
		if !ok {
			return nil, newCoordinateError("line unit", l.position(i), l.Extents())
		}
		return u, nil
	}
	return l.units[i], nil
}

// Units returns all units in position order.
func (l *Line[T]) Units() []*Unit[T] {
	if !l.Initialized() {
		return nil
	}
	if l.owner == nil {
		return slices.Clone(l.units)
	}
	units := make([]*Unit[T], 0, l.Length())
	for i := 0; i < l.Length(); i++ {
		u, err := l.Unit(i)
		if err != nil {
			return units
		}
		units = append(units, u)
	}
	return units
}

// UnitRange returns the units at positions [from,to).
func (l *Line[T]) UnitRange(from, to int) ([]*Unit[T], error) {
	if !l.Initialized() {
		return nil, newNotInitializedError("line unit range")
	}
	if from < 0 || to < from || to > l.Length() {
		return nil, newRangeError("line unit",
			l.position(from), l.position(to))
	}
	units := make([]*Unit[T], 0, to-from)
	for i := from; i < to; i++ {
		u, err := l.Unit(i)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

// AddUnit appends one unit at the far end of the line.
func (l *Line[T]) AddUnit() error {
	return l.InsertUnit(l.Length())
}

// InsertUnit inserts a new unit at position i. Every unit at positions
// i and beyond moves up one slot, renumbered far-end first with its payload
// notified, before the new unit is created from the retained factory.
func (l *Line[T]) InsertUnit(i int) error {
	if err := l.writable("insert unit"); err != nil {
		return err
	}
	n := len(l.units)
	if i < 0 || i > n {
		return newIndexError("insert unit", l.axis, i, n)
	}
	for p := n - 1; p >= i; p-- {
		if err := l.units[p].relocate(l.position(p + 1)); err != nil {
			return err
		}
	}
	u := &Unit[T]{coord: l.position(i)}
	u.owner.line = l
	l.units = slices.Insert(l.units, i, u)
	return u.Create(l.factory)
}

// RemoveUnit removes and disposes the unit at position i, then renumbers the
// units that slid down in ascending order. A dispose hook failure does not
// stop the renumbering; it is reported alongside any shift failure.
func (l *Line[T]) RemoveUnit(i int) error {
	if err := l.writable("remove unit"); err != nil {
		return err
	}
	n := len(l.units)
	if i < 0 || i >= n {
		return newIndexError("remove unit", l.axis, i, n)
	}
	u := l.units[i]
	err := u.Dispose()
	u.detach()
	l.units = slices.Delete(l.units, i, i+1)
	for p := i; p < len(l.units); p++ {
		if serr := l.units[p].relocate(l.position(p)); serr != nil {
			return multierr.Combine(err, serr)
		}
	}
	return err
}

// ResizeLength grows or shrinks the line to the new length, adding at or
// removing from the far end.
func (l *Line[T]) ResizeLength(length int) error {
	if err := l.writable("resize line"); err != nil {
		return err
	}
	if length < 0 {
		return errors.Errorf("negative line length %d", length)
	}
	for p := len(l.units) - 1; p >= length; p-- {
		if err := l.RemoveUnit(p); err != nil {
			return err
		}
	}
	for len(l.units) < length {
		if err := l.AddUnit(); err != nil {
			return err
		}
	}
	return nil
}

// TrimRange removes the units at positions [from,to), highest first so that
// each removal's renumbering never touches a position still to be removed.
func (l *Line[T]) TrimRange(from, to int) error {
	if err := l.writable("trim line"); err != nil {
		return err
	}
	if from < 0 || to < from || to > len(l.units) {
		return newRangeError("trim line", l.position(from), l.position(to))
	}
	for p := to - 1; p >= from; p-- {
		if err := l.RemoveUnit(p); err != nil {
			return err
		}
	}
	return nil
}

// Dispose tears down a standalone line, disposing every unit in reverse
// position order and reporting every dispose failure together.
func (l *Line[T]) Dispose() error {
	if l.owner != nil {
		return newSharedViewError("dispose line")
	}
	if !l.initialized {
		return newNotInitializedError("dispose line")
	}
	var err error
	for i := len(l.units) - 1; i >= 0; i-- {
		err = multierr.Combine(err, l.units[i].Dispose())
		l.units[i].detach()
	}
	l.units = nil
	l.initialized = false
	return err
}

// CellAt implements Container, addressing a unit by its coordinate in the
// line's frame.
func (l *Line[T]) CellAt(c gridmath.Coordinate) (Cell, error) {
	i := c.Component(l.axis) - l.origin.Component(l.axis)
	if c != l.position(i) {
		return nil, newCoordinateError("line cell", c, l.Extents())
	}
	u, err := l.Unit(i)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Cells implements Container.
func (l *Line[T]) Cells() []Cell {
	return lo.Map(l.Units(), func(u *Unit[T], _ int) Cell { return u })
}

// AddSlice implements Container; the axis must be the line's own and the
// slice is a single unit.
func (l *Line[T]) AddSlice(axis gridmath.Axis) error {
	if axis != l.axis {
		return newInvalidAxisError("line slice", axis)
	}
	return l.AddUnit()
}

// InsertSlice implements Container.
func (l *Line[T]) InsertSlice(axis gridmath.Axis, index int) error {
	if axis != l.axis {
		return newInvalidAxisError("line slice", axis)
	}
	return l.InsertUnit(index)
}

// RemoveSlice implements Container.
func (l *Line[T]) RemoveSlice(axis gridmath.Axis, index int) error {
	if axis != l.axis {
		return newInvalidAxisError("line slice", axis)
	}
	return l.RemoveUnit(index)
}

// Resize implements Container; only the component along the line's axis is
// considered.
func (l *Line[T]) Resize(e gridmath.Extents) error {
	return l.ResizeLength(e.Component(l.axis))
}

// Trim implements Container; only the components along the line's axis are
// considered.
func (l *Line[T]) Trim(from, to gridmath.Coordinate) error {
	return l.TrimRange(from.Component(l.axis), to.Component(l.axis))
}

func (l *Line[T]) writable(what string) error {
	if l.owner != nil {
		return newSharedViewError(what)
	}
	if !l.initialized {
		return newNotInitializedError(what)
	}
	return nil
}

// position returns the coordinate of the unit at position i in the line's
// frame.
func (l *Line[T]) position(i int) gridmath.Coordinate {
	return l.origin.WithComponent(l.axis, l.origin.Component(l.axis)+i)
}
