package grid

import (
	"github.com/golang/geo/r3"

	"github.com/gridhive/cellgrid/gridmath"
)

// Unit is a single addressable cell. It holds zero or one payload, its
// coordinate in the owning structure's coordinate space, and a back-reference
// to the one structure that created it (none if standalone).
//
// A payload is never silently dropped: every removal path runs Dispose and
// every coordinate change notifies the payload through its shift hook.
type Unit[T Payload] struct {
	coord    gridmath.Coordinate
	payload  T
	occupied bool
	owner    ownerRef[T]
}

// ownerRef points at the single structure a unit belongs to. At most one
// field is set.
type ownerRef[T Payload] struct {
	line    *Line[T]
	surface *Surface[T]
	volume  *Volume[T]
}

func (o ownerRef[T]) container() Container {
	switch {
	case o.line != nil:
		return o.line
	case o.surface != nil:
		return o.surface
	case o.volume != nil:
		return o.volume
	}
	return nil
}

// NewUnit returns a standalone unit at the given coordinate with no payload.
func NewUnit[T Payload](c gridmath.Coordinate) *Unit[T] {
	return &Unit[T]{coord: c}
}

// Coordinate returns the unit's position in its owner's coordinate space.
func (u *Unit[T]) Coordinate() gridmath.Coordinate {
	return u.coord
}

// Occupied reports whether the unit currently holds a payload.
func (u *Unit[T]) Occupied() bool {
	return u.occupied
}

// Payload returns the installed payload, if any.
func (u *Unit[T]) Payload() (T, bool) {
	return u.payload, u.occupied
}

// Position returns the world-space center of the unit for a cell side length.
func (u *Unit[T]) Position(cellSize float64) r3.Vector {
	return u.coord.Position(cellSize)
}

// Owner returns the structure the unit belongs to, or nil if standalone.
func (u *Unit[T]) Owner() Container {
	return u.owner.container()
}

// OwnerLine returns the owning line, if the unit belongs to one.
func (u *Unit[T]) OwnerLine() *Line[T] { return u.owner.line }

// OwnerSurface returns the owning surface, if the unit belongs to one.
func (u *Unit[T]) OwnerSurface() *Surface[T] { return u.owner.surface }

// OwnerVolume returns the owning volume, if the unit belongs to one.
func (u *Unit[T]) OwnerVolume() *Volume[T] { return u.owner.volume }

// SetPayload installs p, disposing any payload already present first, and
// binds p back to this unit. It does not fire the create hook; that belongs
// to factory-driven creation.
func (u *Unit[T]) SetPayload(p T) error {
	return u.install(p)
}

// Create invokes the factory, installs the result and fires its create hook.
// With a nil factory it is a no-op and the payload stays absent.
func (u *Unit[T]) Create(factory Factory[T]) error {
	if factory == nil {
		return nil
	}
	if err := u.install(factory()); err != nil {
		return err
	}
	return u.payload.OnCreate()
}

// Dispose fires the payload's dispose hook and clears it. Disposing an
// already-empty unit is a no-op, so the hook never fires twice for one
// payload.
func (u *Unit[T]) Dispose() error {
	if !u.occupied {
		return nil
	}
	err := u.payload.OnDispose()
	var zero T
	u.payload = zero
	u.occupied = false
	return err
}

func (u *Unit[T]) install(p T) error {
	if err := u.Dispose(); err != nil {
		return err
	}
	u.payload = p
	u.occupied = true
	p.Bind(u)
	return nil
}

// relocate moves the unit to c, re-keys it in its owner's unit table and
// fires the payload's shift hook. The caller is responsible for processing
// moves in an order that never lands on an unprocessed coordinate.
func (u *Unit[T]) relocate(c gridmath.Coordinate) error {
	old := u.coord
	if old == c {
		return nil
	}
	u.coord = c
	switch {
	case u.owner.surface != nil:
		u.owner.surface.rekeyUnit(u, old)
	case u.owner.volume != nil:
		u.owner.volume.rekeyUnit(u, old)
	}
	if !u.occupied {
		return nil
	}
	return u.payload.OnShift()
}

// detach severs the unit from its owner after removal so stale references
// behave like standalone units.
func (u *Unit[T]) detach() {
	u.owner = ownerRef[T]{}
}
