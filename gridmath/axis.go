// Package gridmath provides the axis and coordinate arithmetic underneath the
// cellgrid containers.
//
// Every higher-level slice operation is expressed in terms of the conversions
// here: picking the two in-plane axes of a surface normal, extracting plane
// extents from volume extents, and mapping (in-plane, depth) positions back to
// canonical 3-D coordinates. The conversions are exact inverses of each other.
package gridmath

// Axis identifies one of the three grid axes.
type Axis uint8

// The three grid axes.
const (
	AxisX = Axis(iota)
	AxisY
	AxisZ
)

// Axes lists all axes in canonical order. Callers must not mutate it.
var Axes = []Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return "invalid"
}

// Valid reports whether a names a real axis.
func (a Axis) Valid() bool {
	return a <= AxisZ
}

// WidthAxis returns the in-plane axis spanning the width of a surface whose
// normal is n. The rotation convention is fixed: x→z, y→x, z→x.
func WidthAxis(n Axis) Axis {
	if n == AxisX {
		return AxisZ
	}
	return AxisX
}

// HeightAxis returns the in-plane axis spanning the height of a surface whose
// normal is n. The rotation convention is fixed: x→y, y→z, z→y.
func HeightAxis(n Axis) Axis {
	if n == AxisY {
		return AxisZ
	}
	return AxisY
}

// CrossAxis returns the in-plane axis of normal n orthogonal to axis.
// axis must itself be in-plane for n.
func CrossAxis(axis, n Axis) Axis {
	if axis == WidthAxis(n) {
		return HeightAxis(n)
	}
	return WidthAxis(n)
}

// PlaneDims extracts the three extents of e as seen from a surface with
// normal n: the extent along WidthAxis(n), along HeightAxis(n), and along n
// itself.
func PlaneDims(n Axis, e Extents) (width, height, depth int) {
	return e.Component(WidthAxis(n)), e.Component(HeightAxis(n)), e.Component(n)
}

// PlaneVector is the inverse of the PlaneDims extraction: given an in-plane
// (u,v) pair and a depth index along normal n, it produces the canonical 3-D
// coordinate.
func PlaneVector(n Axis, u, v, depth int) Coordinate {
	var c Coordinate
	c = c.WithComponent(WidthAxis(n), u)
	c = c.WithComponent(HeightAxis(n), v)
	return c.WithComponent(n, depth)
}

// LineVector converts a 1-D position along axis within a surface of the given
// normal back to 3-D, with other being the position along the orthogonal
// in-plane axis. The normal component of the result is zero.
func LineVector(axis, normal Axis, pos, other int) Coordinate {
	var c Coordinate
	c = c.WithComponent(axis, pos)
	return c.WithComponent(CrossAxis(axis, normal), other)
}
