package tracker

import (
	"errors"
	"fmt"

	clipper "github.com/ctessum/go.clipper"
)

// ErrInvalidRegion is returned when a counting region polygon is unusable
var ErrInvalidRegion = errors.New("invalid region")

// Region is a counting zone in frame pixel coordinates.  Only detections
// whose centroid lies inside the zone are tracked
type Region struct {
	// polygons are the closed outlines making up the zone after any margin
	// has been applied
	polygons [][]Point
}

// NewRegion creates a counting zone from the polygon points given.  A
// positive margin grows the polygon outward by that many pixels using round
// joins, a negative margin shrinks it
func NewRegion(points []Point, margin float64) (*Region, error) {

	if len(points) < 3 {
		return nil, fmt.Errorf("%w: polygon needs at least 3 points, got %d",
			ErrInvalidRegion, len(points))
	}

	if margin == 0 {
		poly := make([]Point, len(points))
		copy(poly, points)
		return &Region{polygons: [][]Point{poly}}, nil
	}

	// convert the points to Clipper Path
	var path clipper.Path

	for _, pt := range points {
		path = append(path, &clipper.IntPoint{X: clipper.CInt(pt.X), Y: clipper.CInt(pt.Y)})
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtRound, clipper.EtClosedPolygon)

	solution := co.Execute(margin)

	r := &Region{}

	for _, sol := range solution {

		var poly []Point

		for _, pt := range sol {
			poly = append(poly, Point{X: int(pt.X), Y: int(pt.Y)})
		}

		if len(poly) >= 3 {
			r.polygons = append(r.polygons, poly)
		}
	}

	if len(r.polygons) == 0 {
		return nil, fmt.Errorf("%w: margin %v collapses the polygon",
			ErrInvalidRegion, margin)
	}

	return r, nil
}

// Polygons returns the outlines of the zone, used for drawing
func (r *Region) Polygons() [][]Point {
	return r.polygons
}

// Contains reports whether the point lies inside the zone using the even-odd
// rule over every outline
func (r *Region) Contains(p Point) bool {

	inside := false

	for _, poly := range r.polygons {

		j := len(poly) - 1

		for i := 0; i < len(poly); i++ {

			a, b := poly[i], poly[j]

			if (a.Y > p.Y) != (b.Y > p.Y) {
				// x coordinate where the edge crosses the horizontal ray
				cross := float64(b.X-a.X)*float64(p.Y-a.Y)/float64(b.Y-a.Y) + float64(a.X)

				if float64(p.X) < cross {
					inside = !inside
				}
			}

			j = i
		}
	}

	return inside
}
