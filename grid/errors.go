package grid

import (
	"github.com/pkg/errors"

	"github.com/gridhive/cellgrid/gridmath"
)

var (
	// ErrOutOfRange is returned when an index or coordinate falls outside a
	// structure's current extents. Bounds are validated before any mutation,
	// so no partial renumbering is visible behind this error.
	ErrOutOfRange = errors.New("index or coordinate out of range")

	// ErrNotInitialized is returned when operating on a structure that was
	// never generated or was already disposed.
	ErrNotInitialized = errors.New("structure not generated or already disposed")

	// ErrSharedView is returned when structurally mutating or disposing a
	// line or surface obtained as a view from its owner; only the owner may
	// write.
	ErrSharedView = errors.New("structure is a shared view of its owner")
)

func newIndexError(what string, axis gridmath.Axis, index, limit int) error {
	return errors.Wrapf(ErrOutOfRange, "%s index %d along %s with limit %d", what, index, axis, limit)
}

func newCoordinateError(what string, c gridmath.Coordinate, e gridmath.Extents) error {
	return errors.Wrapf(ErrOutOfRange, "%s coordinate %s outside extents %s", what, c, e)
}

func newRangeError(what string, from, to gridmath.Coordinate) error {
	return errors.Wrapf(ErrOutOfRange, "%s range [%s,%s)", what, from, to)
}

func newNotInitializedError(what string) error {
	return errors.Wrap(ErrNotInitialized, what)
}

func newSharedViewError(what string) error {
	return errors.Wrap(ErrSharedView, what)
}

func newInvalidAxisError(what string, axis gridmath.Axis) error {
	return errors.Errorf("invalid axis %s for %s", axis, what)
}
