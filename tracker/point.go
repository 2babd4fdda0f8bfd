package tracker

import "gonum.org/v1/gonum/floats"

// Point represents the x,y pixel coordinates of the center of a tracked
// bounding box
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DistanceTo returns the Euclidean distance between two points
func (p Point) DistanceTo(o Point) float64 {
	return floats.Distance(
		[]float64{float64(p.X), float64(p.Y)},
		[]float64{float64(o.X), float64(o.Y)},
		2,
	)
}
