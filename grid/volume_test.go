package grid

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/gridhive/cellgrid/gridmath"
)

func TestVolumeGenerate(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var f RecordingFactory
	v, err := GenerateVolume(gridmath.Size(2, 2, 2), f.New, logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, v.Initialized(), test.ShouldBeTrue)
	test.That(t, v.Count(), test.ShouldEqual, 8)
	test.That(t, v.Extents(), test.ShouldResemble, gridmath.Size(2, 2, 2))
	test.That(t, len(f.Produced), test.ShouldEqual, 8)
	for _, p := range f.Produced {
		test.That(t, p.Creates, test.ShouldEqual, 1)
	}

	// Every coordinate is distinct and in range.
	seen := map[gridmath.Coordinate]bool{}
	for _, u := range v.Units() {
		c := u.Coordinate()
		test.That(t, seen[c], test.ShouldBeFalse)
		seen[c] = true
		test.That(t, v.Extents().Contains(c), test.ShouldBeTrue)
		test.That(t, u.OwnerVolume(), test.ShouldEqual, v)
	}
	test.That(t, len(seen), test.ShouldEqual, 8)

	for _, a := range gridmath.Axes {
		surfaces, err := v.Surfaces(a)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(surfaces), test.ShouldEqual, 2)
		for d, s := range surfaces {
			test.That(t, s.IsView(), test.ShouldBeTrue)
			test.That(t, s.DepthIndex(), test.ShouldEqual, d)
			test.That(t, s.Count(), test.ShouldEqual, 4)
		}
	}
}

func TestVolumeNotInitialized(t *testing.T) {
	logger := golog.NewTestLogger(t)
	v, err := NewVolume[*RecordingPayload](gridmath.Size(2, 2, 2), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v.Initialized(), test.ShouldBeFalse)

	_, err = v.Unit(gridmath.Coord(0, 0, 0))
	test.That(t, err, test.ShouldWrap, ErrNotInitialized)
	_, err = v.Surface(gridmath.AxisX, 0)
	test.That(t, err, test.ShouldWrap, ErrNotInitialized)
	test.That(t, v.InsertSurface(gridmath.AxisX, 0), test.ShouldWrap, ErrNotInitialized)
	test.That(t, v.Dispose(), test.ShouldWrap, ErrNotInitialized)

	_, err = NewVolume[*RecordingPayload](gridmath.Size(-1, 2, 2), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestVolumeSharedUnitIdentity(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var f RecordingFactory
	v, err := GenerateVolume(gridmath.Size(3, 3, 3), f.New, logger)
	test.That(t, err, test.ShouldBeNil)

	// The same unit object is reachable through the volume, through any
	// surface whose plane contains it, and through any line through it.
	direct, err := v.Unit(gridmath.Coord(2, 1, 0))
	test.That(t, err, test.ShouldBeNil)

	sz, err := v.Surface(gridmath.AxisZ, 0)
	test.That(t, err, test.ShouldBeNil)
	fromSurface, err := sz.Unit(gridmath.Coord(2, 1, 0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromSurface, test.ShouldEqual, direct)

	sx, err := v.Surface(gridmath.AxisX, 2)
	test.That(t, err, test.ShouldBeNil)
	fromOrtho, err := sx.Unit(gridmath.Coord(2, 1, 0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromOrtho, test.ShouldEqual, direct)

	ln, err := v.Line(gridmath.AxisX, gridmath.Coord(0, 1, 0))
	test.That(t, err, test.ShouldBeNil)
	fromLine, err := ln.Unit(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromLine, test.ShouldEqual, direct)

	// A line asked of a surface view is the volume's own line object.
	fromSz, err := sz.Line(gridmath.AxisX, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromSz, test.ShouldEqual, ln)

	// Views reject structural mutation and independent disposal.
	test.That(t, sz.InsertLine(gridmath.AxisX, 0), test.ShouldWrap, ErrSharedView)
	test.That(t, sz.RemoveLine(gridmath.AxisX, 0), test.ShouldWrap, ErrSharedView)
	test.That(t, sz.Dispose(), test.ShouldWrap, ErrSharedView)
	test.That(t, ln.InsertUnit(0), test.ShouldWrap, ErrSharedView)
	test.That(t, ln.Dispose(), test.ShouldWrap, ErrSharedView)
}

func TestVolumeInsertSurface(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var f RecordingFactory
	v, err := GenerateVolume(gridmath.Size(3, 3, 3), f.New, logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, v.InsertSurface(gridmath.AxisX, 1), test.ShouldBeNil)
	test.That(t, v.Width(), test.ShouldEqual, 4)
	test.That(t, v.Count(), test.ShouldEqual, 36)
	test.That(t, len(f.Produced), test.ShouldEqual, 36)

	// The 18 units at x>=1 moved up exactly once; the 9 at x=0 never moved.
	test.That(t, f.TotalShifts(), test.ShouldEqual, 18)
	for i, p := range f.Produced[:27] {
		origX := i / 9
		if origX >= 1 {
			test.That(t, p.Shifts, test.ShouldEqual, 1)
			test.That(t, p.Cell.Coordinate().X, test.ShouldEqual, origX+1)
		} else {
			test.That(t, p.Shifts, test.ShouldEqual, 0)
		}
	}
	for _, p := range f.Produced[27:] {
		test.That(t, p.Creates, test.ShouldEqual, 1)
		test.That(t, p.Shifts, test.ShouldEqual, 0)
		test.That(t, p.Cell.Coordinate().X, test.ShouldEqual, 1)
	}

	surfaces, err := v.Surfaces(gridmath.AxisX)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(surfaces), test.ShouldEqual, 4)
	for d, s := range surfaces {
		test.That(t, s.DepthIndex(), test.ShouldEqual, d)
	}

	// Orthogonal views see the growth immediately.
	sz, err := v.Surface(gridmath.AxisZ, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sz.Width(), test.ShouldEqual, 4)

	test.That(t, v.InsertSurface(gridmath.AxisX, 9), test.ShouldWrap, ErrOutOfRange)
}

func TestVolumeInsertSurfaceRenumbersViews(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var f RecordingFactory
	v, err := GenerateVolume(gridmath.Size(3, 3, 3), f.New, logger)
	test.That(t, err, test.ShouldBeNil)

	deep, err := v.Surface(gridmath.AxisX, 1)
	test.That(t, err, test.ShouldBeNil)
	ln, err := v.Line(gridmath.AxisY, gridmath.Coord(1, 0, 2))
	test.That(t, err, test.ShouldBeNil)
	before := ln.Units()

	test.That(t, v.InsertSurface(gridmath.AxisX, 1), test.ShouldBeNil)

	// The surface formerly at depth 1 is now depth 2 and still the same
	// object in the list.
	test.That(t, deep.DepthIndex(), test.ShouldEqual, 2)
	relisted, err := v.Surface(gridmath.AxisX, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, relisted, test.ShouldEqual, deep)

	// The line table re-keyed: the y-line through x=1 is now the one at
	// x=2, same object, same units.
	test.That(t, ln.Origin(), test.ShouldResemble, gridmath.Coord(2, 0, 2))
	rekeyed, err := v.Line(gridmath.AxisY, gridmath.Coord(2, 0, 2))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rekeyed, test.ShouldEqual, ln)
	test.That(t, ln.Units(), test.ShouldResemble, before)

	// The inserted depth has fresh lines along both orthogonal axes.
	fresh, err := v.Line(gridmath.AxisY, gridmath.Coord(1, 0, 2))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fresh, test.ShouldNotEqual, ln)
	u, err := fresh.Unit(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, u.Coordinate(), test.ShouldResemble, gridmath.Coord(1, 0, 2))
}

func TestVolumeRemoveSurface(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var f RecordingFactory
	v, err := GenerateVolume(gridmath.Size(3, 3, 3), f.New, logger)
	test.That(t, err, test.ShouldBeNil)

	removed, err := v.Surface(gridmath.AxisZ, 0)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, v.RemoveSurface(gridmath.AxisZ, 0), test.ShouldBeNil)
	test.That(t, v.Depth(), test.ShouldEqual, 2)
	test.That(t, v.Count(), test.ShouldEqual, 18)

	// Payloads at z=0 disposed exactly once; survivors slid down one slot.
	for i, p := range f.Produced {
		origZ := i % 3
		if origZ == 0 {
			test.That(t, p.Disposes, test.ShouldEqual, 1)
		} else {
			test.That(t, p.Disposes, test.ShouldEqual, 0)
			test.That(t, p.Shifts, test.ShouldEqual, 1)
			test.That(t, p.Cell.Coordinate().Z, test.ShouldEqual, origZ-1)
		}
	}

	// The removed view is dead; the remaining list renumbered.
	test.That(t, removed.Initialized(), test.ShouldBeFalse)
	_, err = removed.Unit(gridmath.Coord(0, 0, 0))
	test.That(t, err, test.ShouldWrap, ErrNotInitialized)
	surfaces, err := v.Surfaces(gridmath.AxisZ)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(surfaces), test.ShouldEqual, 2)
	for d, s := range surfaces {
		test.That(t, s.DepthIndex(), test.ShouldEqual, d)
	}

	// The z=0 lines along x and y are gone from the tables; deeper ones
	// re-keyed down.
	_, err = v.Line(gridmath.AxisX, gridmath.Coord(0, 0, 2))
	test.That(t, err, test.ShouldWrap, ErrOutOfRange)
	ln, err := v.Line(gridmath.AxisX, gridmath.Coord(0, 1, 1))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ln.Length(), test.ShouldEqual, 3)

	test.That(t, v.RemoveSurface(gridmath.AxisZ, 2), test.ShouldWrap, ErrOutOfRange)
}

func TestVolumeInsertThenRemoveIsIdentity(t *testing.T) {
	for _, axis := range gridmath.Axes {
		for idx := 0; idx <= 3; idx++ {
			logger := golog.NewTestLogger(t)
			var f RecordingFactory
			v, err := GenerateVolume(gridmath.Size(3, 3, 3), f.New, logger)
			test.That(t, err, test.ShouldBeNil)

			before := map[*RecordingPayload]gridmath.Coordinate{}
			for _, u := range v.Units() {
				p, ok := u.Payload()
				test.That(t, ok, test.ShouldBeTrue)
				before[p] = u.Coordinate()
			}

			test.That(t, v.InsertSurface(axis, idx), test.ShouldBeNil)
			test.That(t, v.Extents().Component(axis), test.ShouldEqual, 4)
			test.That(t, v.RemoveSurface(axis, idx), test.ShouldBeNil)

			test.That(t, v.Extents(), test.ShouldResemble, gridmath.Size(3, 3, 3))
			test.That(t, v.Count(), test.ShouldEqual, 27)
			for _, u := range v.Units() {
				p, ok := u.Payload()
				test.That(t, ok, test.ShouldBeTrue)
				test.That(t, u.Coordinate(), test.ShouldResemble, before[p])
			}
			// Only the inserted surface's nine units were disposed.
			test.That(t, f.TotalDisposes(), test.ShouldEqual, 9)
		}
	}
}

func TestVolumeResize(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var f RecordingFactory
	v, err := GenerateVolume(gridmath.Size(2, 2, 2), f.New, logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, v.Resize(gridmath.Size(3, 3, 3)), test.ShouldBeNil)
	test.That(t, v.Count(), test.ShouldEqual, 27)
	test.That(t, len(f.Produced), test.ShouldEqual, 27)
	test.That(t, f.TotalDisposes(), test.ShouldEqual, 0)

	test.That(t, v.Resize(gridmath.Size(2, 2, 2)), test.ShouldBeNil)
	test.That(t, v.Count(), test.ShouldEqual, 8)
	test.That(t, f.TotalDisposes(), test.ShouldEqual, 19)

	test.That(t, v.Resize(gridmath.Size(-1, 2, 2)), test.ShouldNotBeNil)
}

func TestVolumeTrim(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var f RecordingFactory
	v, err := GenerateVolume(gridmath.Size(3, 3, 3), f.New, logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, v.Trim(gridmath.Coord(0, 0, 0), gridmath.Coord(1, 1, 1)), test.ShouldBeNil)
	test.That(t, v.Extents(), test.ShouldResemble, gridmath.Size(2, 2, 2))
	test.That(t, v.Count(), test.ShouldEqual, 8)
	test.That(t, f.TotalDisposes(), test.ShouldEqual, 19)
	for _, p := range f.Produced {
		test.That(t, p.Disposes, test.ShouldBeLessThanOrEqualTo, 1)
	}
	for _, u := range v.Units() {
		test.That(t, v.Extents().Contains(u.Coordinate()), test.ShouldBeTrue)
	}

	test.That(t, v.Trim(gridmath.Coord(0, 0, 0), gridmath.Coord(3, 0, 0)), test.ShouldWrap, ErrOutOfRange)
}

func TestVolumeUnitRange(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var f RecordingFactory
	v, err := GenerateVolume(gridmath.Size(4, 3, 2), f.New, logger)
	test.That(t, err, test.ShouldBeNil)

	units, err := v.UnitRange(gridmath.Coord(1, 0, 0), gridmath.Coord(3, 2, 2))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(units), test.ShouldEqual, 8)
	for _, u := range units {
		c := u.Coordinate()
		test.That(t, c.X >= 1 && c.X < 3, test.ShouldBeTrue)
		test.That(t, c.Y < 2, test.ShouldBeTrue)
	}

	empty, err := v.UnitRange(gridmath.Coord(1, 1, 1), gridmath.Coord(1, 1, 1))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(empty), test.ShouldEqual, 0)

	_, err = v.UnitRange(gridmath.Coord(0, 0, 0), gridmath.Coord(5, 1, 1))
	test.That(t, err, test.ShouldWrap, ErrOutOfRange)
}

func TestVolumeDisposeUnits(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var f RecordingFactory
	v, err := GenerateVolume(gridmath.Size(2, 2, 2), f.New, logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, v.DisposeUnits(), test.ShouldBeNil)
	test.That(t, v.Initialized(), test.ShouldBeTrue)
	test.That(t, v.Count(), test.ShouldEqual, 8)
	for _, p := range f.Produced {
		test.That(t, p.Disposes, test.ShouldEqual, 1)
	}
	for _, u := range v.Units() {
		test.That(t, u.Occupied(), test.ShouldBeFalse)
	}

	// Disposing again is a no-op per unit: the hooks never fire twice.
	test.That(t, v.DisposeUnits(), test.ShouldBeNil)
	test.That(t, f.TotalDisposes(), test.ShouldEqual, 8)
}

func TestVolumeDispose(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var f RecordingFactory
	v, err := GenerateVolume(gridmath.Size(2, 3, 2), f.New, logger)
	test.That(t, err, test.ShouldBeNil)

	s, err := v.Surface(gridmath.AxisY, 1)
	test.That(t, err, test.ShouldBeNil)
	ln, err := v.Line(gridmath.AxisZ, gridmath.Coord(1, 2, 0))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, v.Dispose(), test.ShouldBeNil)
	test.That(t, v.Initialized(), test.ShouldBeFalse)
	test.That(t, v.Count(), test.ShouldEqual, 0)
	for _, p := range f.Produced {
		test.That(t, p.Disposes, test.ShouldEqual, 1)
	}

	// Every derived view died with the volume.
	test.That(t, s.Initialized(), test.ShouldBeFalse)
	test.That(t, ln.Initialized(), test.ShouldBeFalse)
	_, err = ln.Unit(0)
	test.That(t, err, test.ShouldWrap, ErrNotInitialized)

	test.That(t, v.Dispose(), test.ShouldWrap, ErrNotInitialized)
	test.That(t, v.AddSurface(gridmath.AxisX), test.ShouldWrap, ErrNotInitialized)
}

func TestVolumeNilFactory(t *testing.T) {
	logger := golog.NewTestLogger(t)
	v, err := GenerateVolume[*RecordingPayload](gridmath.Size(2, 2, 2), nil, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v.Count(), test.ShouldEqual, 8)
	for _, u := range v.Units() {
		test.That(t, u.Occupied(), test.ShouldBeFalse)
	}
	test.That(t, v.InsertSurface(gridmath.AxisY, 1), test.ShouldBeNil)
	test.That(t, v.Height(), test.ShouldEqual, 3)
	test.That(t, v.Dispose(), test.ShouldBeNil)
}

func TestVolumeHookErrors(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var f RecordingFactory
	v, err := GenerateVolume(gridmath.Size(2, 2, 2), f.New, logger)
	test.That(t, err, test.ShouldBeNil)

	// A failing dispose hook is reported but does not stop the removal.
	f.Produced[0].DisposeErr = errors.New("payload stuck")
	err = v.RemoveSurface(gridmath.AxisX, 0)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, v.Width(), test.ShouldEqual, 1)
	test.That(t, v.Count(), test.ShouldEqual, 4)
	test.That(t, f.TotalDisposes(), test.ShouldEqual, 4)
}

func TestVolumeContainer(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var f RecordingFactory
	v, err := GenerateVolume(gridmath.Size(2, 2, 2), f.New, logger)
	test.That(t, err, test.ShouldBeNil)

	var c Container = v
	test.That(t, c.Initialized(), test.ShouldBeTrue)
	test.That(t, c.Count(), test.ShouldEqual, 8)
	test.That(t, len(c.Cells()), test.ShouldEqual, 8)

	cell, err := c.CellAt(gridmath.Coord(1, 0, 1))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cell.Coordinate(), test.ShouldResemble, gridmath.Coord(1, 0, 1))
	test.That(t, cell.Occupied(), test.ShouldBeTrue)

	_, err = c.CellAt(gridmath.Coord(5, 0, 0))
	test.That(t, err, test.ShouldWrap, ErrOutOfRange)

	test.That(t, c.InsertSlice(gridmath.AxisZ, 1), test.ShouldBeNil)
	test.That(t, c.Extents(), test.ShouldResemble, gridmath.Size(2, 2, 3))
	test.That(t, c.RemoveSlice(gridmath.AxisZ, 1), test.ShouldBeNil)
	test.That(t, c.AddSlice(gridmath.AxisY), test.ShouldBeNil)
	test.That(t, c.Resize(gridmath.Size(2, 2, 2)), test.ShouldBeNil)
	test.That(t, c.Extents(), test.ShouldResemble, gridmath.Size(2, 2, 2))
	test.That(t, c.Trim(gridmath.Coord(0, 0, 0), gridmath.Coord(1, 0, 0)), test.ShouldBeNil)
	test.That(t, c.Extents(), test.ShouldResemble, gridmath.Size(1, 2, 2))
	test.That(t, c.Dispose(), test.ShouldBeNil)
}
