// Package grid implements a dynamic, topology-mutable spatial grid: a 3-D
// volume composed of axis-aligned 2-D surfaces, which are composed of 1-D
// lines, which are composed of units, the addressable cells holding a
// caller-supplied payload.
//
// Any level can be created standalone or obtained as a view into the level
// above. A slice (a surface in a volume, a line in a surface, a unit in a
// line) can be inserted or removed at an arbitrary index, and every structure
// stays mutually consistent afterwards: a unit's line agrees with its surface,
// its surface with its volume, and all coordinates are renumbered with the
// payloads notified of every move.
//
// Structures are single-threaded by contract. No operation suspends and none
// is safe to invoke concurrently with any other operation against the same
// volume, surface or line; the caller serializes access per grid instance.
package grid

import (
	"github.com/golang/geo/r3"

	"github.com/gridhive/cellgrid/gridmath"
)

// Payload is the capability contract for objects stored in grid units.
//
// Bind is called exactly once per install, right before any lifecycle hook,
// and hands the payload the cell holding it so it can later discover its
// unit, line, surface or volume. OnCreate fires once after a factory-produced
// payload is installed. OnDispose fires exactly once per payload lifetime,
// when the unit is cleared, removed or its owner torn down. OnShift fires
// whenever the unit's coordinate changes because a slice was inserted or
// removed elsewhere, so the payload can re-derive position-dependent state.
//
// A hook error aborts the structural operation that triggered it; teardown
// paths keep going and report every failure together.
type Payload interface {
	Bind(Cell)
	OnCreate() error
	OnDispose() error
	OnShift() error
}

// Factory produces payloads for newly created units. A nil Factory is valid:
// creation becomes a no-op and the unit's payload stays absent.
type Factory[T Payload] func() T

// Cell is the type-erased view of a single grid unit.
type Cell interface {
	// Coordinate returns the cell's position in its owner's coordinate space.
	Coordinate() gridmath.Coordinate
	// Occupied reports whether the cell currently holds a payload.
	Occupied() bool
	// Position returns the world-space center of the cell for a cell side length.
	Position(cellSize float64) r3.Vector
	// Owner returns the structure the cell belongs to, or nil if standalone.
	Owner() Container
}

// Container is the type-erased view of a grid structure. Volume, Surface and
// Line implement it directly, giving heterogeneous tooling a uniform surface
// for extents, indexed access and structural mutation.
//
// The slice of a volume is a surface with the given normal axis, the slice of
// a surface is a line along the given in-plane axis, and the slice of a line
// is a single unit (the axis must be the line's own). Range parameters are
// half-open [from,to).
type Container interface {
	Initialized() bool
	Extents() gridmath.Extents
	Count() int

	CellAt(c gridmath.Coordinate) (Cell, error)
	Cells() []Cell

	AddSlice(axis gridmath.Axis) error
	InsertSlice(axis gridmath.Axis, index int) error
	RemoveSlice(axis gridmath.Axis, index int) error
	Resize(e gridmath.Extents) error
	Trim(from, to gridmath.Coordinate) error

	Dispose() error
}

// arena is the unit store a derived view reads through. The arena owner is
// the sole writer of the units it holds.
type arena[T Payload] interface {
	arenaUnit(c gridmath.Coordinate) (*Unit[T], bool)
	arenaExtent(a gridmath.Axis) int
	arenaInitialized() bool
}

var (
	_ Cell      = (*Unit[Payload])(nil)
	_ Container = (*Line[Payload])(nil)
	_ Container = (*Surface[Payload])(nil)
	_ Container = (*Volume[Payload])(nil)
)
