package tracker

// Track represents a single tracked vehicle
type Track struct {
	// Unique ID for the track
	trackID int64
	// label is the category of the tracked object
	label string
	// centroid is the center of the last matched bounding box
	centroid Point
	// Bounding box of the last matched detection
	rect Rect
	// Detection score of the last matched detection
	score float32
	// framesSeen is the number of frames the track has been matched in,
	// including the frame it was created on
	framesSeen int
	// framesUnseen is the number of consecutive frames the track has gone
	// unmatched
	framesUnseen int
	// counted is set once the track has contributed to the totals
	counted bool
	// Unique ID of the last matched detection
	detectionID int64
	// Frame ID when the track started
	startFrameID int
	// Frame ID of the last match
	frameID int
}

// newTrack creates a track from its first detection
func newTrack(id int64, obj Object, frameID int) *Track {
	return &Track{
		trackID:      id,
		label:        obj.Label,
		centroid:     obj.Centroid(),
		rect:         obj.Rect,
		score:        obj.Prob,
		framesSeen:   1,
		framesUnseen: 0,
		detectionID:  obj.ID,
		startFrameID: frameID,
		frameID:      frameID,
	}
}

// GetTrackID returns the unique track ID
func (t *Track) GetTrackID() int64 {
	return t.trackID
}

// GetLabel returns the category of the tracked object
func (t *Track) GetLabel() string {
	return t.label
}

// GetCentroid returns the last known center point
func (t *Track) GetCentroid() Point {
	return t.centroid
}

// GetRect returns the last matched bounding box
func (t *Track) GetRect() Rect {
	return t.rect
}

// GetScore returns the confidence of the last matched detection
func (t *Track) GetScore() float32 {
	return t.score
}

// GetFramesSeen returns how many frames the track has been matched in
func (t *Track) GetFramesSeen() int {
	return t.framesSeen
}

// GetFramesUnseen returns how many consecutive frames the track has been
// missing for
func (t *Track) GetFramesUnseen() int {
	return t.framesUnseen
}

// IsCounted returns true once the track has been counted
func (t *Track) IsCounted() bool {
	return t.counted
}

// GetDetectionID returns the ID of the last matched detection
func (t *Track) GetDetectionID() int64 {
	return t.detectionID
}

// GetStartFrameID returns the frame ID the track was created on
func (t *Track) GetStartFrameID() int {
	return t.startFrameID
}

// GetFrameID returns the frame ID of the last match
func (t *Track) GetFrameID() int {
	return t.frameID
}

// match updates the track with the associated detection
func (t *Track) match(obj Object, centroid Point, frameID int) {
	t.centroid = centroid
	t.rect = obj.Rect
	t.score = obj.Prob
	t.detectionID = obj.ID
	t.framesUnseen = 0
	t.framesSeen++
	t.frameID = frameID
}

// miss records a frame where no detection was associated with the track
func (t *Track) miss() {
	t.framesUnseen++
}
