package grid

import (
	"slices"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/gridhive/cellgrid/gridmath"
)

// Surface is a 2-D array of units with a fixed normal axis, addressed through
// two line tables, one per in-plane axis. The table for an axis lists the
// lines running along that axis, indexed by position along the other in-plane
// axis, so the width equals the size of the height-axis table and vice versa.
//
// A surface constructed with NewSurface owns its units; its lines are views
// into it. A surface obtained from a volume is itself a view: it shares the
// volume's units and line objects, the volume is the sole writer, and
// structural mutation through the view fails with ErrSharedView.
//
// Inserting or removing a line along one axis touches every line of the
// other axis, so those operations cost O(other-axis length) renumbering.
type Surface[T Payload] struct {
	normal        gridmath.Axis
	width, height int
	units         map[gridmath.Coordinate]*Unit[T]
	lines         map[gridmath.Axis][]*Line[T]
	factory       Factory[T]
	logger        golog.Logger
	initialized   bool

	// view mode
	vol      *Volume[T]
	depth    int
	detached bool
}

// NewSurface returns an ungenerated standalone surface. Its units do not
// exist until Generate runs.
func NewSurface[T Payload](normal gridmath.Axis, width, height int, logger golog.Logger) (*Surface[T], error) {
	if !normal.Valid() {
		return nil, newInvalidAxisError("surface normal", normal)
	}
	if width < 0 || height < 0 {
		return nil, errors.Errorf("negative surface extents %dx%d", width, height)
	}
	return &Surface[T]{
		normal: normal,
		width:  width,
		height: height,
		units:  map[gridmath.Coordinate]*Unit[T]{},
		lines:  map[gridmath.Axis][]*Line[T]{},
		logger: logger,
	}, nil
}

// GenerateSurface constructs a standalone surface and generates its units
// with the given factory.
func GenerateSurface[T Payload](
	normal gridmath.Axis,
	width, height int,
	factory Factory[T],
	logger golog.Logger,
) (*Surface[T], error) {
	s, err := NewSurface[T](normal, width, height, logger)
	if err != nil {
		return nil, err
	}
	if err := s.Generate(factory); err != nil {
		return nil, err
	}
	return s, nil
}

func newSurfaceView[T Payload](vol *Volume[T], normal gridmath.Axis, depth int) *Surface[T] {
	return &Surface[T]{normal: normal, vol: vol, depth: depth, logger: vol.logger}
}

// Generate builds the surface bottom-up: all units first in row order, then
// the two line tables stitched from them, then the payloads. The factory is
// retained for later inserts.
func (s *Surface[T]) Generate(factory Factory[T]) error {
	if s.vol != nil {
		return newSharedViewError("generate surface")
	}
	if s.initialized {
		return errors.New("surface already generated")
	}
	s.factory = factory
	for v := 0; v < s.height; v++ {
		for u := 0; u < s.width; u++ {
			c := gridmath.PlaneVector(s.normal, u, v, 0)
			unit := &Unit[T]{coord: c}
			unit.owner.surface = s
			s.units[c] = unit
		}
	}
	wa, ha := gridmath.WidthAxis(s.normal), gridmath.HeightAxis(s.normal)
	for v := 0; v < s.height; v++ {
		s.lines[wa] = append(s.lines[wa], newLineView[T](s, wa, gridmath.PlaneVector(s.normal, 0, v, 0)))
	}
	for u := 0; u < s.width; u++ {
		s.lines[ha] = append(s.lines[ha], newLineView[T](s, ha, gridmath.PlaneVector(s.normal, u, 0, 0)))
	}
	s.initialized = true
	for v := 0; v < s.height; v++ {
		for u := 0; u < s.width; u++ {
			if err := s.units[gridmath.PlaneVector(s.normal, u, v, 0)].Create(factory); err != nil {
				return err
			}
		}
	}
	s.logger.Debugf("generated %s-normal surface %dx%d", s.normal, s.width, s.height)
	return nil
}

// Normal returns the surface's normal axis.
func (s *Surface[T]) Normal() gridmath.Axis {
	return s.normal
}

// IsView reports whether the surface is a derived view of a volume.
func (s *Surface[T]) IsView() bool {
	return s.vol != nil
}

// DepthIndex returns the surface's index along its normal axis within the
// owning volume; zero for a standalone surface.
func (s *Surface[T]) DepthIndex() int {
	return s.depth
}

// Initialized reports whether the surface is usable: generated and not
// disposed, or a still-attached view of a live volume.
func (s *Surface[T]) Initialized() bool {
	if s.vol != nil {
		return !s.detached && s.vol.initialized
	}
	return s.initialized
}

// Width returns the extent along the surface's width axis.
func (s *Surface[T]) Width() int {
	return s.planeExtent(gridmath.WidthAxis(s.normal))
}

// Height returns the extent along the surface's height axis.
func (s *Surface[T]) Height() int {
	return s.planeExtent(gridmath.HeightAxis(s.normal))
}

// Extents returns the surface's plane extents, with one along the normal.
// For a volume-owned view, unit coordinates carry the view's depth along the
// normal axis; use DepthIndex for the offset.
func (s *Surface[T]) Extents() gridmath.Extents {
	e := gridmath.Size(1, 1, 1)
	e = e.WithComponent(gridmath.WidthAxis(s.normal), s.Width())
	return e.WithComponent(gridmath.HeightAxis(s.normal), s.Height())
}

// Count returns the number of units in the surface.
func (s *Surface[T]) Count() int {
	return s.Width() * s.Height()
}

// Unit returns the unit at the given coordinate in the surface's frame: the
// normal component must equal DepthIndex.
func (s *Surface[T]) Unit(c gridmath.Coordinate) (*Unit[T], error) {
	if !s.Initialized() {
		return nil, newNotInitializedError("surface unit")
	}
	if !s.frameContains(c) {
		return nil, newCoordinateError("surface unit", c, s.Extents())
	}
	u, ok := s.unitLookup(c)
	if !ok {
		return nil, newCoordinateError("surface unit", c, s.Extents())
	}
	return u, nil
}

// Units returns all units in row order.
func (s *Surface[T]) Units() []*Unit[T] {
	if !s.Initialized() {
		return nil
	}
	units := make([]*Unit[T], 0, s.Count())
	for v := 0; v < s.Height(); v++ {
		for u := 0; u < s.Width(); u++ {
			unit, ok := s.unitLookup(s.planeCoord(u, v))
			if !ok {
				continue
			}
			units = append(units, unit)
		}
	}
	return units
}

// UnitRange returns the units inside the half-open box [from,to). Only the
// in-plane components are considered.
func (s *Surface[T]) UnitRange(from, to gridmath.Coordinate) ([]*Unit[T], error) {
	if !s.Initialized() {
		return nil, newNotInitializedError("surface unit range")
	}
	wa, ha := gridmath.WidthAxis(s.normal), gridmath.HeightAxis(s.normal)
	fu, tu := from.Component(wa), to.Component(wa)
	fv, tv := from.Component(ha), to.Component(ha)
	if fu < 0 || tu < fu || tu > s.Width() || fv < 0 || tv < fv || tv > s.Height() {
		return nil, newRangeError("surface unit", from, to)
	}
	units := make([]*Unit[T], 0, (tu-fu)*(tv-fv))
	for v := fv; v < tv; v++ {
		for u := fu; u < tu; u++ {
			unit, ok := s.unitLookup(s.planeCoord(u, v))
			if !ok {
				return nil, newCoordinateError("surface unit", s.planeCoord(u, v), s.Extents())
			}
			units = append(units, unit)
		}
	}
	return units, nil
}

// Line returns the line along the given in-plane axis at the given index
// along the other in-plane axis. For a volume-owned surface this is the
// volume's own line object, not a copy.
func (s *Surface[T]) Line(axis gridmath.Axis, index int) (*Line[T], error) {
	if !s.Initialized() {
		return nil, newNotInitializedError("surface line")
	}
	if !axis.Valid() || axis == s.normal {
		return nil, newInvalidAxisError("surface line", axis)
	}
	cross := gridmath.CrossAxis(axis, s.normal)
	if index < 0 || index >= s.planeExtent(cross) {
		return nil, newIndexError("surface line", cross, index, s.planeExtent(cross))
	}
	if s.vol != nil {
		origin := gridmath.LineVector(axis, s.normal, 0, index).WithComponent(s.normal, s.depth)
		return s.vol.Line(axis, origin)
	}
	return s.lines[axis][index], nil
}

// Lines returns the line table for the given in-plane axis, ordered by
// position along the other in-plane axis.
func (s *Surface[T]) Lines(axis gridmath.Axis) ([]*Line[T], error) {
	if !s.Initialized() {
		return nil, newNotInitializedError("surface lines")
	}
	if !axis.Valid() || axis == s.normal {
		return nil, newInvalidAxisError("surface line", axis)
	}
	if s.vol == nil {
		return slices.Clone(s.lines[axis]), nil
	}
	cross := gridmath.CrossAxis(axis, s.normal)
	lines := make([]*Line[T], 0, s.planeExtent(cross))
	for i := 0; i < s.planeExtent(cross); i++ {
		ln, err := s.Line(axis, i)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ln)
	}
	return lines, nil
}

// AddLine appends a new line along the given in-plane axis at the far end of
// the other in-plane axis.
func (s *Surface[T]) AddLine(axis gridmath.Axis) error {
	if !axis.Valid() || axis == s.normal {
		return newInvalidAxisError("surface line", axis)
	}
	return s.InsertLine(axis, s.planeExtent(gridmath.CrossAxis(axis, s.normal)))
}

// InsertLine inserts a new line along axis at the given index along the other
// in-plane axis. Every existing line of the other axis grows by one unit: the
// units at or beyond the index are renumbered far-end first with their
// payloads notified, then the new units are created from the retained factory
// and stitched into a new line spliced into the axis table.
func (s *Surface[T]) InsertLine(axis gridmath.Axis, index int) error {
	if err := s.writable("insert line"); err != nil {
		return err
	}
	if !axis.Valid() || axis == s.normal {
		return newInvalidAxisError("surface line", axis)
	}
	cross := gridmath.CrossAxis(axis, s.normal)
	along := s.planeExtent(axis)
	across := s.planeExtent(cross)
	if index < 0 || index > across {
		return newIndexError("insert line", cross, index, across)
	}
	for b := across - 1; b >= index; b-- {
		for a := 0; a < along; a++ {
			c := gridmath.LineVector(axis, s.normal, a, b)
			if err := s.units[c].relocate(c.Translate(cross, 1)); err != nil {
				return err
			}
		}
	}
	s.setPlaneExtent(cross, across+1)
	created := make([]*Unit[T], 0, along)
	for a := 0; a < along; a++ {
		c := gridmath.LineVector(axis, s.normal, a, index)
		u := &Unit[T]{coord: c}
		u.owner.surface = s
		s.units[c] = u
		created = append(created, u)
	}
	ln := newLineView[T](s, axis, gridmath.LineVector(axis, s.normal, 0, index))
	s.lines[axis] = slices.Insert(s.lines[axis], index, ln)
	for j := index + 1; j < len(s.lines[axis]); j++ {
		s.lines[axis][j].origin = s.lines[axis][j].origin.WithComponent(cross, j)
	}
	for _, u := range created {
		if err := u.Create(s.factory); err != nil {
			return err
		}
	}
	return nil
}

// RemoveLine removes the line along axis at the given index along the other
// in-plane axis, disposing the unit at that index in every line of the other
// axis exactly once and renumbering the survivors in ascending order. Dispose
// hook failures do not stop the renumbering; they are reported together.
func (s *Surface[T]) RemoveLine(axis gridmath.Axis, index int) error {
	if err := s.writable("remove line"); err != nil {
		return err
	}
	if !axis.Valid() || axis == s.normal {
		return newInvalidAxisError("surface line", axis)
	}
	cross := gridmath.CrossAxis(axis, s.normal)
	along := s.planeExtent(axis)
	across := s.planeExtent(cross)
	if index < 0 || index >= across {
		return newIndexError("remove line", cross, index, across)
	}
	var err error
	for a := 0; a < along; a++ {
		c := gridmath.LineVector(axis, s.normal, a, index)
		u := s.units[c]
		err = multierr.Combine(err, u.Dispose())
		delete(s.units, c)
		u.detach()
	}
	removed := s.lines[axis][index]
	removed.detached = true
	s.lines[axis] = slices.Delete(s.lines[axis], index, index+1)
	for b := index + 1; b < across; b++ {
		for a := 0; a < along; a++ {
			c := gridmath.LineVector(axis, s.normal, a, b)
			if serr := s.units[c].relocate(c.Translate(cross, -1)); serr != nil {
				return multierr.Combine(err, serr)
			}
		}
	}
	for j := index; j < len(s.lines[axis]); j++ {
		s.lines[axis][j].origin = s.lines[axis][j].origin.WithComponent(cross, j)
	}
	s.setPlaneExtent(cross, across-1)
	return err
}

// ResizePlane grows or shrinks the surface to the new plane extents, adding
// at or truncating from the far ends.
func (s *Surface[T]) ResizePlane(width, height int) error {
	if err := s.writable("resize surface"); err != nil {
		return err
	}
	if width < 0 || height < 0 {
		return errors.Errorf("negative surface extents %dx%d", width, height)
	}
	wa, ha := gridmath.WidthAxis(s.normal), gridmath.HeightAxis(s.normal)
	for s.width > width {
		if err := s.RemoveLine(ha, s.width-1); err != nil {
			return err
		}
	}
	for s.width < width {
		if err := s.AddLine(ha); err != nil {
			return err
		}
	}
	for s.height > height {
		if err := s.RemoveLine(wa, s.height-1); err != nil {
			return err
		}
	}
	for s.height < height {
		if err := s.AddLine(wa); err != nil {
			return err
		}
	}
	return nil
}

// Dispose tears down a standalone surface, disposing every unit exactly once
// in reverse row order and reporting every dispose failure together.
func (s *Surface[T]) Dispose() error {
	if s.vol != nil {
		return newSharedViewError("dispose surface")
	}
	if !s.initialized {
		return newNotInitializedError("dispose surface")
	}
	var err error
	for v := s.height - 1; v >= 0; v-- {
		for u := s.width - 1; u >= 0; u-- {
			unit := s.units[s.planeCoord(u, v)]
			err = multierr.Combine(err, unit.Dispose())
			unit.detach()
		}
	}
	for _, table := range s.lines {
		for _, ln := range table {
			ln.detached = true
		}
	}
	s.units = map[gridmath.Coordinate]*Unit[T]{}
	s.lines = map[gridmath.Axis][]*Line[T]{}
	s.width, s.height = 0, 0
	s.initialized = false
	return err
}

// CellAt implements Container.
func (s *Surface[T]) CellAt(c gridmath.Coordinate) (Cell, error) {
	u, err := s.Unit(c)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Cells implements Container.
func (s *Surface[T]) Cells() []Cell {
	return lo.Map(s.Units(), func(u *Unit[T], _ int) Cell { return u })
}

// AddSlice implements Container; the slice of a surface is a line along the
// given in-plane axis.
func (s *Surface[T]) AddSlice(axis gridmath.Axis) error {
	return s.AddLine(axis)
}

// InsertSlice implements Container.
func (s *Surface[T]) InsertSlice(axis gridmath.Axis, index int) error {
	return s.InsertLine(axis, index)
}

// RemoveSlice implements Container.
func (s *Surface[T]) RemoveSlice(axis gridmath.Axis, index int) error {
	return s.RemoveLine(axis, index)
}

// Resize implements Container; only the in-plane components are considered.
func (s *Surface[T]) Resize(e gridmath.Extents) error {
	return s.ResizePlane(
		e.Component(gridmath.WidthAxis(s.normal)),
		e.Component(gridmath.HeightAxis(s.normal)),
	)
}

// Trim removes the in-plane coordinate range [from,to), far end of the range
// first on each axis. Only the in-plane components are considered.
func (s *Surface[T]) Trim(from, to gridmath.Coordinate) error {
	if err := s.writable("trim surface"); err != nil {
		return err
	}
	wa, ha := gridmath.WidthAxis(s.normal), gridmath.HeightAxis(s.normal)
	fu, tu := from.Component(wa), to.Component(wa)
	fv, tv := from.Component(ha), to.Component(ha)
	if fu < 0 || tu < fu || tu > s.width || fv < 0 || tv < fv || tv > s.height {
		return newRangeError("trim surface", from, to)
	}
	for p := tu - 1; p >= fu; p-- {
		if err := s.RemoveLine(ha, p); err != nil {
			return err
		}
	}
	for p := tv - 1; p >= fv; p-- {
		if err := s.RemoveLine(wa, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Surface[T]) arenaUnit(c gridmath.Coordinate) (*Unit[T], bool) {
	u, ok := s.units[c]
	return u, ok
}

func (s *Surface[T]) arenaExtent(a gridmath.Axis) int {
	if a == s.normal {
		return 1
	}
	return s.planeExtent(a)
}

func (s *Surface[T]) arenaInitialized() bool {
	return s.initialized
}

func (s *Surface[T]) rekeyUnit(u *Unit[T], old gridmath.Coordinate) {
	delete(s.units, old)
	s.units[u.coord] = u
}

func (s *Surface[T]) writable(what string) error {
	if s.vol != nil {
		return newSharedViewError(what)
	}
	if !s.initialized {
		return newNotInitializedError(what)
	}
	return nil
}

func (s *Surface[T]) planeExtent(a gridmath.Axis) int {
	if s.vol != nil {
		return s.vol.extents.Component(a)
	}
	if a == gridmath.WidthAxis(s.normal) {
		return s.width
	}
	return s.height
}

func (s *Surface[T]) setPlaneExtent(a gridmath.Axis, n int) {
	if a == gridmath.WidthAxis(s.normal) {
		s.width = n
		return
	}
	s.height = n
}

// planeCoord maps an in-plane (u,v) pair to the surface's frame.
func (s *Surface[T]) planeCoord(u, v int) gridmath.Coordinate {
	return gridmath.PlaneVector(s.normal, u, v, s.depth)
}

func (s *Surface[T]) frameContains(c gridmath.Coordinate) bool {
	if c.Component(s.normal) != s.depth {
		return false
	}
	wa, ha := gridmath.WidthAxis(s.normal), gridmath.HeightAxis(s.normal)
	return c.Component(wa) >= 0 && c.Component(wa) < s.Width() &&
		c.Component(ha) >= 0 && c.Component(ha) < s.Height()
}

func (s *Surface[T]) unitLookup(c gridmath.Coordinate) (*Unit[T], bool) {
	if s.vol != nil {
		u, ok := s.vol.units[c]
		return u, ok
	}
	u, ok := s.units[c]
	return u, ok
}
