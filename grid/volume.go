package grid

import (
	"slices"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/gridhive/cellgrid/gridmath"
)

// Volume is a 3-D array of units organized three ways at once: a
// coordinate-keyed unit table, three line tables (one per axis, keyed by the
// coordinate of each line's origin) and three depth-ordered surface lists
// (one per normal axis). Lines and surfaces obtained from a volume are views
// sharing the volume's unit objects; the volume is the sole writer and the
// sole deletion authority, so every payload is disposed exactly once no
// matter how many views reach it.
type Volume[T Payload] struct {
	extents     gridmath.Extents
	units       map[gridmath.Coordinate]*Unit[T]
	lines       map[gridmath.Axis]map[gridmath.Coordinate]*Line[T]
	surfaces    map[gridmath.Axis][]*Surface[T]
	factory     Factory[T]
	logger      golog.Logger
	initialized bool
}

// NewVolume returns an ungenerated volume of the given extents. Its units do
// not exist until Generate runs.
func NewVolume[T Payload](e gridmath.Extents, logger golog.Logger) (*Volume[T], error) {
	if !e.Valid() {
		return nil, errors.Errorf("negative volume extents %s", e)
	}
	v := &Volume[T]{
		extents:  e,
		units:    map[gridmath.Coordinate]*Unit[T]{},
		lines:    map[gridmath.Axis]map[gridmath.Coordinate]*Line[T]{},
		surfaces: map[gridmath.Axis][]*Surface[T]{},
		logger:   logger,
	}
	for _, a := range gridmath.Axes {
		v.lines[a] = map[gridmath.Coordinate]*Line[T]{}
	}
	return v, nil
}

// GenerateVolume constructs a volume and generates its units with the given
// factory.
func GenerateVolume[T Payload](e gridmath.Extents, factory Factory[T], logger golog.Logger) (*Volume[T], error) {
	v, err := NewVolume[T](e, logger)
	if err != nil {
		return nil, err
	}
	if err := v.Generate(factory); err != nil {
		return nil, err
	}
	return v, nil
}

// Generate builds the volume bottom-up: every unit first, then for each axis
// the lines whose origin sits at the axis minimum, then for each normal axis
// the ordered surface list, all wired to the same unit objects with no
// copying. The factory is retained for later inserts.
func (v *Volume[T]) Generate(factory Factory[T]) error {
	if v.initialized {
		return errors.New("volume already generated")
	}
	v.factory = factory
	for x := 0; x < v.extents.Width; x++ {
		for y := 0; y < v.extents.Height; y++ {
			for z := 0; z < v.extents.Depth; z++ {
				c := gridmath.Coord(x, y, z)
				u := &Unit[T]{coord: c}
				u.owner.volume = v
				v.units[c] = u
			}
		}
	}
	for _, a := range gridmath.Axes {
		wa, ha := gridmath.WidthAxis(a), gridmath.HeightAxis(a)
		for i := 0; i < v.extents.Component(wa); i++ {
			for j := 0; j < v.extents.Component(ha); j++ {
				origin := gridmath.PlaneVector(a, i, j, 0)
				v.lines[a][origin] = newLineView[T](v, a, origin)
			}
		}
	}
	for _, n := range gridmath.Axes {
		for d := 0; d < v.extents.Component(n); d++ {
			v.surfaces[n] = append(v.surfaces[n], newSurfaceView(v, n, d))
		}
	}
	v.initialized = true
	for x := 0; x < v.extents.Width; x++ {
		for y := 0; y < v.extents.Height; y++ {
			for z := 0; z < v.extents.Depth; z++ {
				if err := v.units[gridmath.Coord(x, y, z)].Create(factory); err != nil {
					return err
				}
			}
		}
	}
	v.logger.Debugf("generated volume %s", v.extents)
	return nil
}

// Initialized reports whether the volume was generated and not yet disposed.
func (v *Volume[T]) Initialized() bool {
	return v.initialized
}

// Extents returns the volume's extents.
func (v *Volume[T]) Extents() gridmath.Extents {
	return v.extents
}

// Width returns the extent along x.
func (v *Volume[T]) Width() int { return v.extents.Width }

// Height returns the extent along y.
func (v *Volume[T]) Height() int { return v.extents.Height }

// Depth returns the extent along z.
func (v *Volume[T]) Depth() int { return v.extents.Depth }

// Count returns the number of units in the volume.
func (v *Volume[T]) Count() int {
	return len(v.units)
}

// Unit returns the unit at the given coordinate.
func (v *Volume[T]) Unit(c gridmath.Coordinate) (*Unit[T], error) {
	if !v.initialized {
		return nil, newNotInitializedError("volume unit")
	}
	u, ok := v.units[c]
	if !ok {
		return nil, newCoordinateError("volume unit", c, v.extents)
	}
	return u, nil
}

// Units returns all units in x, y, z loop order.
func (v *Volume[T]) Units() []*Unit[T] {
	if !v.initialized {
		return nil
	}
	units, err := v.UnitRange(gridmath.Coordinate{}, gridmath.Coord(v.extents.Width, v.extents.Height, v.extents.Depth))
	if err != nil {
		return nil
	}
	return units
}

// UnitRange returns the units inside the half-open box [from,to).
func (v *Volume[T]) UnitRange(from, to gridmath.Coordinate) ([]*Unit[T], error) {
	if !v.initialized {
		return nil, newNotInitializedError("volume unit range")
	}
	for _, a := range gridmath.Axes {
		if from.Component(a) < 0 || to.Component(a) < from.Component(a) ||
			to.Component(a) > v.extents.Component(a) {
			return nil, newRangeError("volume unit", from, to)
		}
	}
	units := make([]*Unit[T], 0,
		(to.X-from.X)*(to.Y-from.Y)*(to.Z-from.Z))
	for x := from.X; x < to.X; x++ {
		for y := from.Y; y < to.Y; y++ {
			for z := from.Z; z < to.Z; z++ {
				units = append(units, v.units[gridmath.Coord(x, y, z)])
			}
		}
	}
	return units, nil
}

// Surface returns the view of the surface at the given depth along the normal
// axis. The view shares the volume's units and lines; it must not be disposed
// independently.
func (v *Volume[T]) Surface(normal gridmath.Axis, depth int) (*Surface[T], error) {
	if !v.initialized {
		return nil, newNotInitializedError("volume surface")
	}
	if !normal.Valid() {
		return nil, newInvalidAxisError("volume surface", normal)
	}
	if depth < 0 || depth >= v.extents.Component(normal) {
		return nil, newIndexError("volume surface", normal, depth, v.extents.Component(normal))
	}
	return v.surfaces[normal][depth], nil
}

// Surfaces returns the ordered surface list for the given normal axis.
func (v *Volume[T]) Surfaces(normal gridmath.Axis) ([]*Surface[T], error) {
	if !v.initialized {
		return nil, newNotInitializedError("volume surfaces")
	}
	if !normal.Valid() {
		return nil, newInvalidAxisError("volume surface", normal)
	}
	return slices.Clone(v.surfaces[normal]), nil
}

// Line returns the view of the line along axis whose first unit sits at
// origin; the origin's component along axis must be zero. The view shares the
// volume's units; it must not be disposed independently.
func (v *Volume[T]) Line(axis gridmath.Axis, origin gridmath.Coordinate) (*Line[T], error) {
	if !v.initialized {
		return nil, newNotInitializedError("volume line")
	}
	if !axis.Valid() {
		return nil, newInvalidAxisError("volume line", axis)
	}
	ln, ok := v.lines[axis][origin]
	if !ok {
		return nil, newCoordinateError("volume line origin", origin, v.extents)
	}
	return ln, nil
}

// AddSurface appends a new surface at the far end of the normal axis.
func (v *Volume[T]) AddSurface(normal gridmath.Axis) error {
	if !normal.Valid() {
		return newInvalidAxisError("volume surface", normal)
	}
	return v.InsertSurface(normal, v.extents.Component(normal))
}

// InsertSurface inserts a new surface at the given depth along the normal
// axis. In order: every unit at that depth or beyond is renumbered far-end
// first (re-keyed, payload notified), the new depth's units are created from
// the retained factory, the two orthogonal line tables are re-keyed far-end
// first and given their new depth entries, and the new surface view is
// spliced into the normal's surface list.
func (v *Volume[T]) InsertSurface(normal gridmath.Axis, depth int) error {
	if !v.initialized {
		return newNotInitializedError("insert surface")
	}
	if !normal.Valid() {
		return newInvalidAxisError("volume surface", normal)
	}
	w, h, extent := gridmath.PlaneDims(normal, v.extents)
	if depth < 0 || depth > extent {
		return newIndexError("insert surface", normal, depth, extent)
	}

	// Renumber existing units away from the insertion depth, deepest first
	// so no move lands on an unmoved coordinate.
	for d := extent - 1; d >= depth; d-- {
		for j := 0; j < h; j++ {
			for i := 0; i < w; i++ {
				c := gridmath.PlaneVector(normal, i, j, d)
				if err := v.units[c].relocate(c.Translate(normal, 1)); err != nil {
					return err
				}
			}
		}
	}
	v.extents = v.extents.WithComponent(normal, extent+1)

	created := make([]*Unit[T], 0, w*h)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			c := gridmath.PlaneVector(normal, i, j, depth)
			u := &Unit[T]{coord: c}
			u.owner.volume = v
			v.units[c] = u
			created = append(created, u)
		}
	}

	// Lines along the normal keep their origins and simply grow; the two
	// orthogonal tables are keyed by a coordinate whose normal component is
	// the line's depth, so those keys shift and the new depth gains a line
	// per position along the remaining axis.
	for _, a := range gridmath.Axes {
		if a == normal {
			continue
		}
		v.rekeyLines(a, normal, depth, 1)
		cross := gridmath.CrossAxis(a, normal)
		for t := 0; t < v.extents.Component(cross); t++ {
			origin := gridmath.LineVector(a, normal, 0, t).WithComponent(normal, depth)
			v.lines[a][origin] = newLineView[T](v, a, origin)
		}
	}

	sv := newSurfaceView(v, normal, depth)
	v.surfaces[normal] = slices.Insert(v.surfaces[normal], depth, sv)
	for j := depth + 1; j < len(v.surfaces[normal]); j++ {
		v.surfaces[normal][j].depth = j
	}

	for _, u := range created {
		if err := u.Create(v.factory); err != nil {
			return err
		}
	}
	v.logger.Debugf("inserted %s-normal surface at depth %d, extents now %s", normal, depth, v.extents)
	return nil
}

// RemoveSurface removes the surface at the given depth along the normal axis,
// disposing each of its units exactly once, renumbering the deeper units in
// ascending order, re-keying the orthogonal line tables and splicing the
// surface view out of the normal's list. Dispose hook failures do not stop
// the renumbering; they are reported together.
func (v *Volume[T]) RemoveSurface(normal gridmath.Axis, depth int) error {
	if !v.initialized {
		return newNotInitializedError("remove surface")
	}
	if !normal.Valid() {
		return newInvalidAxisError("volume surface", normal)
	}
	w, h, extent := gridmath.PlaneDims(normal, v.extents)
	if depth < 0 || depth >= extent {
		return newIndexError("remove surface", normal, depth, extent)
	}

	var err error
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			c := gridmath.PlaneVector(normal, i, j, depth)
			u := v.units[c]
			err = multierr.Combine(err, u.Dispose())
			delete(v.units, c)
			u.detach()
		}
	}
	for d := depth + 1; d < extent; d++ {
		for j := 0; j < h; j++ {
			for i := 0; i < w; i++ {
				c := gridmath.PlaneVector(normal, i, j, d)
				if serr := v.units[c].relocate(c.Translate(normal, -1)); serr != nil {
					return multierr.Combine(err, serr)
				}
			}
		}
	}
	v.extents = v.extents.WithComponent(normal, extent-1)

	for _, a := range gridmath.Axes {
		if a == normal {
			continue
		}
		cross := gridmath.CrossAxis(a, normal)
		for t := 0; t < v.extents.Component(cross); t++ {
			origin := gridmath.LineVector(a, normal, 0, t).WithComponent(normal, depth)
			if ln, ok := v.lines[a][origin]; ok {
				ln.detached = true
				delete(v.lines[a], origin)
			}
		}
		v.rekeyLines(a, normal, depth+1, -1)
	}

	removed := v.surfaces[normal][depth]
	removed.detached = true
	v.surfaces[normal] = slices.Delete(v.surfaces[normal], depth, depth+1)
	for j := depth; j < len(v.surfaces[normal]); j++ {
		v.surfaces[normal][j].depth = j
	}
	v.logger.Debugf("removed %s-normal surface at depth %d, extents now %s", normal, depth, v.extents)
	return err
}

// Resize grows or shrinks the volume to the new extents axis by axis, adding
// at or truncating from the far ends. Shrinking removes surfaces in
// descending depth order.
func (v *Volume[T]) Resize(e gridmath.Extents) error {
	if !v.initialized {
		return newNotInitializedError("resize volume")
	}
	if !e.Valid() {
		return errors.Errorf("negative volume extents %s", e)
	}
	for _, a := range gridmath.Axes {
		for d := v.extents.Component(a) - 1; d >= e.Component(a); d-- {
			if err := v.RemoveSurface(a, d); err != nil {
				return err
			}
		}
		for v.extents.Component(a) < e.Component(a) {
			if err := v.AddSurface(a); err != nil {
				return err
			}
		}
	}
	return nil
}

// Trim removes the coordinate range [from,to): along each axis, the surfaces
// at depths [from,to) are removed, far end of the range first so that each
// removal's renumbering never touches a depth still to be removed.
func (v *Volume[T]) Trim(from, to gridmath.Coordinate) error {
	if !v.initialized {
		return newNotInitializedError("trim volume")
	}
	for _, a := range gridmath.Axes {
		if from.Component(a) < 0 || to.Component(a) < from.Component(a) ||
			to.Component(a) > v.extents.Component(a) {
			return newRangeError("trim volume", from, to)
		}
	}
	for _, a := range gridmath.Axes {
		for d := to.Component(a) - 1; d >= from.Component(a); d-- {
			if err := v.RemoveSurface(a, d); err != nil {
				return err
			}
		}
	}
	return nil
}

// DisposeUnits disposes every payload exactly once while keeping the topology
// intact; the units remain, unoccupied. Every dispose failure is reported
// together.
func (v *Volume[T]) DisposeUnits() error {
	if !v.initialized {
		return newNotInitializedError("dispose units")
	}
	var err error
	for _, u := range v.Units() {
		err = multierr.Combine(err, u.Dispose())
	}
	return err
}

// Dispose tears down the volume: every payload is disposed exactly once in
// reverse generation order, every derived line and surface view is detached,
// and the volume becomes unusable. Disposing again is an immediate error.
func (v *Volume[T]) Dispose() error {
	if !v.initialized {
		return newNotInitializedError("dispose volume")
	}
	var err error
	for x := v.extents.Width - 1; x >= 0; x-- {
		for y := v.extents.Height - 1; y >= 0; y-- {
			for z := v.extents.Depth - 1; z >= 0; z-- {
				u := v.units[gridmath.Coord(x, y, z)]
				err = multierr.Combine(err, u.Dispose())
				u.detach()
			}
		}
	}
	for _, a := range gridmath.Axes {
		for _, ln := range v.lines[a] {
			ln.detached = true
		}
		for _, s := range v.surfaces[a] {
			s.detached = true
		}
		v.lines[a] = map[gridmath.Coordinate]*Line[T]{}
		v.surfaces[a] = nil
	}
	v.units = map[gridmath.Coordinate]*Unit[T]{}
	v.initialized = false
	v.logger.Debug("disposed volume")
	return err
}

// CellAt implements Container.
func (v *Volume[T]) CellAt(c gridmath.Coordinate) (Cell, error) {
	u, err := v.Unit(c)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Cells implements Container.
func (v *Volume[T]) Cells() []Cell {
	return lo.Map(v.Units(), func(u *Unit[T], _ int) Cell { return u })
}

// AddSlice implements Container; the slice of a volume is a surface with the
// given normal axis.
func (v *Volume[T]) AddSlice(axis gridmath.Axis) error {
	return v.AddSurface(axis)
}

// InsertSlice implements Container.
func (v *Volume[T]) InsertSlice(axis gridmath.Axis, index int) error {
	return v.InsertSurface(axis, index)
}

// RemoveSlice implements Container.
func (v *Volume[T]) RemoveSlice(axis gridmath.Axis, index int) error {
	return v.RemoveSurface(axis, index)
}

func (v *Volume[T]) arenaUnit(c gridmath.Coordinate) (*Unit[T], bool) {
	u, ok := v.units[c]
	return u, ok
}

func (v *Volume[T]) arenaExtent(a gridmath.Axis) int {
	return v.extents.Component(a)
}

func (v *Volume[T]) arenaInitialized() bool {
	return v.initialized
}

func (v *Volume[T]) rekeyUnit(u *Unit[T], old gridmath.Coordinate) {
	delete(v.units, old)
	v.units[u.coord] = u
}

// rekeyLines shifts by delta the normal component of every key in the axis
// table whose component is at least from, processing in the direction that
// never overwrites an unprocessed entry.
func (v *Volume[T]) rekeyLines(axis, normal gridmath.Axis, from, delta int) {
	table := v.lines[axis]
	keys := make([]gridmath.Coordinate, 0, len(table))
	for k := range table {
		if k.Component(normal) >= from {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b gridmath.Coordinate) int {
		return delta * (b.Component(normal) - a.Component(normal))
	})
	for _, k := range keys {
		ln := table[k]
		delete(table, k)
		ln.origin = k.Translate(normal, delta)
		table[ln.origin] = ln
	}
}
