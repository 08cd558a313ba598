package grid

import (
	"github.com/gridhive/cellgrid/gridmath"
)

// RecordingPayload counts its lifecycle hooks and remembers the cell it is
// bound to, so tests can observe exactly how a mutation touched the grid.
// Setting one of the error fields makes the matching hook fail.
type RecordingPayload struct {
	Cell     Cell
	Creates  int
	Disposes int
	Shifts   int
	// ShiftLog holds the coordinate after each shift, in firing order.
	ShiftLog []gridmath.Coordinate

	CreateErr  error
	DisposeErr error
	ShiftErr   error
}

// Bind remembers the cell holding the payload.
func (p *RecordingPayload) Bind(c Cell) {
	p.Cell = c
}

// OnCreate counts create hook firings.
func (p *RecordingPayload) OnCreate() error {
	p.Creates++
	return p.CreateErr
}

// OnDispose counts dispose hook firings.
func (p *RecordingPayload) OnDispose() error {
	p.Disposes++
	return p.DisposeErr
}

// OnShift counts shift hook firings and logs the new coordinate.
func (p *RecordingPayload) OnShift() error {
	p.Shifts++
	if p.Cell != nil {
		p.ShiftLog = append(p.ShiftLog, p.Cell.Coordinate())
	}
	return p.ShiftErr
}

// RecordingFactory produces RecordingPayloads and keeps every one it has
// produced, in creation order.
type RecordingFactory struct {
	Produced []*RecordingPayload
}

// New is a Factory for RecordingPayloads.
func (f *RecordingFactory) New() *RecordingPayload {
	p := &RecordingPayload{}
	f.Produced = append(f.Produced, p)
	return p
}

// TotalDisposes sums the dispose hook firings across every produced payload.
func (f *RecordingFactory) TotalDisposes() int {
	total := 0
	for _, p := range f.Produced {
		total += p.Disposes
	}
	return total
}

// TotalShifts sums the shift hook firings across every produced payload.
func (f *RecordingFactory) TotalShifts() int {
	total := 0
	for _, p := range f.Produced {
		total += p.Shifts
	}
	return total
}
