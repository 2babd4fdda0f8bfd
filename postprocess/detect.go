package postprocess

// DetectionResult is implemented by any detector output that can hand over
// its per frame detections to the counting pipeline
type DetectionResult interface {
	GetDetectResults() []DetectResult
}

// BoxRect are the pixel dimensions of the bounding box of a detected object
type BoxRect struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Center returns the center point of the box using integer division, which
// matches how the centroid is taken when a box is handed to the tracker
func (b BoxRect) Center() (int, int) {
	return (b.Left + b.Right) / 2, (b.Top + b.Bottom) / 2
}

// DetectResult defines the attributes of a single object detected
type DetectResult struct {
	// Class is the line number in the labels file the Model was trained on
	// defining the Class of the detected object
	Class int `json:"class"`
	// Label is the category tag of the Class, eg: "car"
	Label string `json:"label"`
	// Box are the bounding box dimensions of the object location
	Box BoxRect `json:"box"`
	// Probability is the confidence score of the object detected
	Probability float32 `json:"probability"`
	// ID is a unique ID assigned to the detection result
	ID int64 `json:"id"`
}

// Frame is a list of detections made on a single video frame and satisfies
// the DetectionResult interface
type Frame []DetectResult

// GetDetectResults returns the detections made on the frame
func (f Frame) GetDetectResults() []DetectResult {
	return f
}
