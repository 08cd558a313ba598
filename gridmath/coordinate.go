package gridmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Coordinate is an integer cell position in canonical 3-D grid space.
type Coordinate struct {
	X, Y, Z int
}

// Coord is shorthand for constructing a Coordinate.
func Coord(x, y, z int) Coordinate {
	return Coordinate{X: x, Y: y, Z: z}
}

// Component returns the coordinate's component along a.
func (c Coordinate) Component(a Axis) int {
	switch a {
	case AxisX:
		return c.X
	case AxisY:
		return c.Y
	default:
		return c.Z
	}
}

// WithComponent returns a copy of c with the component along a replaced.
func (c Coordinate) WithComponent(a Axis, v int) Coordinate {
	switch a {
	case AxisX:
		c.X = v
	case AxisY:
		c.Y = v
	default:
		c.Z = v
	}
	return c
}

// Translate returns a copy of c moved delta cells along a.
func (c Coordinate) Translate(a Axis, delta int) Coordinate {
	return c.WithComponent(a, c.Component(a)+delta)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Position returns the world-space center of the cell at c for a given cell
// side length, so payloads can re-derive spatial state after a shift.
func (c Coordinate) Position(cellSize float64) r3.Vector {
	return r3.Vector{
		X: (float64(c.X) + 0.5) * cellSize,
		Y: (float64(c.Y) + 0.5) * cellSize,
		Z: (float64(c.Z) + 0.5) * cellSize,
	}
}

// Extents holds the size of a grid structure along the three canonical axes.
// Structures with fewer than three real dimensions report one for the unused
// axes.
type Extents struct {
	Width, Height, Depth int
}

// Size is shorthand for constructing an Extents.
func Size(w, h, d int) Extents {
	return Extents{Width: w, Height: h, Depth: d}
}

// Component returns the extent along a.
func (e Extents) Component(a Axis) int {
	switch a {
	case AxisX:
		return e.Width
	case AxisY:
		return e.Height
	default:
		return e.Depth
	}
}

// WithComponent returns a copy of e with the extent along a replaced.
func (e Extents) WithComponent(a Axis, v int) Extents {
	switch a {
	case AxisX:
		e.Width = v
	case AxisY:
		e.Height = v
	default:
		e.Depth = v
	}
	return e
}

// Count returns the number of cells the extents span.
func (e Extents) Count() int {
	return e.Width * e.Height * e.Depth
}

// Valid reports whether every extent is non-negative.
func (e Extents) Valid() bool {
	return e.Width >= 0 && e.Height >= 0 && e.Depth >= 0
}

// Contains reports whether c lies inside [0,Width)×[0,Height)×[0,Depth).
func (e Extents) Contains(c Coordinate) bool {
	return c.X >= 0 && c.X < e.Width &&
		c.Y >= 0 && c.Y < e.Height &&
		c.Z >= 0 && c.Z < e.Depth
}

func (e Extents) String() string {
	return fmt.Sprintf("%dx%dx%d", e.Width, e.Height, e.Depth)
}
