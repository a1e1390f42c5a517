package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/tormentor-esp/extension/pkg/core"
)

// Positions arrive from the host as "x,y" or "x,y,z" strings in game-world
// units. Distances are always planar: elevation differs between the spawner
// model and the boss standing on it, so it is ignored.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// PositionFromString parses a "x,y" or "x,y,z" string into a core.Position3D.
func PositionFromString(coords string) (core.Position3D, error) {
	coordsSplit := strings.Split(strings.Trim(strings.TrimSpace(coords), "[]"), ",")
	if len(coordsSplit) < 2 {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	var z float64
	if len(coordsSplit) > 2 {
		z, err = strconv.ParseFloat(strings.TrimSpace(coordsSplit[2]), 64)
		if err != nil {
			return core.Position3D{}, ErrInvalidCoordinates
		}
	}
	if !finite(x) || !finite(y) || !finite(z) {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	return core.Position3D{X: x, Y: y, Z: z}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Point converts a position to a 2D simplefeatures point.
func Point(p core.Position3D) (geom.Point, error) {
	if !finite(p.X) || !finite(p.Y) {
		return geom.Point{}, ErrInvalidCoordinates
	}
	point, err := geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.X, Y: p.Y},
		Type: geom.DimXY,
	})
	if err != nil {
		return geom.Point{}, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return point, nil
}

// Distance2D returns the planar distance between two positions. Positions
// that cannot be measured are infinitely far apart.
func Distance2D(a, b core.Position3D) float64 {
	pa, err := Point(a)
	if err != nil {
		return math.Inf(1)
	}
	pb, err := Point(b)
	if err != nil {
		return math.Inf(1)
	}
	d, ok := geom.Distance(pa.AsGeometry(), pb.AsGeometry())
	if !ok || math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}

// Within reports whether b is exactly at a, or no further than radius from
// it on the plane.
func Within(a, b core.Position3D, radius float64) bool {
	return a == b || Distance2D(a, b) <= radius
}
