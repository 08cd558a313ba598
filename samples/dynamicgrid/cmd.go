// Package main demonstrates building a volume, mutating its topology and
// watching payloads react to creation, shifting and disposal.
package main

import (
	"context"
	"flag"

	"github.com/edaniels/golog"
	"go.viam.com/utils"

	"github.com/gridhive/cellgrid/grid"
	"github.com/gridhive/cellgrid/gridmath"
)

var logger = golog.NewDevelopmentLogger("dynamicgrid")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// sensorCell is a payload that reports its world-space position on every
// lifecycle event.
type sensorCell struct {
	cell     grid.Cell
	cellSize float64
}

func (s *sensorCell) Bind(c grid.Cell) {
	s.cell = c
}

func (s *sensorCell) OnCreate() error {
	logger.Debugf("sensor online at %v", s.cell.Position(s.cellSize))
	return nil
}

func (s *sensorCell) OnDispose() error {
	logger.Debugf("sensor offline at %v", s.cell.Position(s.cellSize))
	return nil
}

func (s *sensorCell) OnShift() error {
	logger.Debugf("sensor moved to %v", s.cell.Position(s.cellSize))
	return nil
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) (err error) {
	var (
		width    = flag.Int("width", 3, "volume extent along x")
		height   = flag.Int("height", 3, "volume extent along y")
		depth    = flag.Int("depth", 3, "volume extent along z")
		cellSize = flag.Float64("cell-size", 0.5, "cell side length in meters")
	)
	flag.Parse()

	factory := func() *sensorCell {
		return &sensorCell{cellSize: *cellSize}
	}

	vol, err := grid.GenerateVolume(gridmath.Size(*width, *height, *depth), factory, logger)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(vol.Dispose)
	logger.Infof("generated %s volume holding %d sensors", vol.Extents(), vol.Count())

	// Grow the field one plane at a time along each axis; every sensor
	// downstream of an insertion reports its new position.
	for _, a := range gridmath.Axes {
		if err := vol.InsertSurface(a, 1); err != nil {
			return err
		}
	}
	logger.Infof("after growth: %s, %d sensors", vol.Extents(), vol.Count())

	// Walk one plane through a shared view.
	s, err := vol.Surface(gridmath.AxisZ, 0)
	if err != nil {
		return err
	}
	for _, u := range s.Units() {
		logger.Debugf("plane sensor %s at %v", u.Coordinate(), u.Position(*cellSize))
	}

	// Shrink back down from the near corner; every removed sensor is
	// disposed exactly once.
	if err := vol.Trim(gridmath.Coord(0, 0, 0), gridmath.Coord(1, 1, 1)); err != nil {
		return err
	}
	logger.Infof("after trim: %s, %d sensors", vol.Extents(), vol.Count())

	return nil
}
