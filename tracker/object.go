package tracker

// Object represents a single detection handed to the CentroidTracker
type Object struct {
	// Rect is the bounding box representation of the detected object
	Rect Rect
	// Label is the category of the object detected, eg: "car"
	Label string
	// Prob is the confidence/probability of the object detected
	Prob float32
	// ID is a unique ID to give this object which can be used to match
	// the input detection object and tracked object
	ID int64
}

// NewObject is a constructor function for the Object struct
func NewObject(rect Rect, label string, prob float32, id int64) Object {
	return Object{
		Rect:  rect,
		Label: label,
		Prob:  prob,
		ID:    id,
	}
}

// Centroid returns the center point of the object's bounding box
func (o Object) Centroid() Point {
	return o.Rect.Centroid()
}
