package tracker

import "sync"

// history is the centroid history of a single track
type history struct {
	points []Point
}

// Trail is the struct to keep a history of Track centroids used for drawing
// a trail
type Trail struct {
	// size is the maximum number of most recent points to keep in history
	size int
	// history of tracked points by track ID
	history map[int64]*history
	sync.Mutex
}

// NewTrail returns a new trail history track instance.  Size is the number
// of most recent points to keep and specifies the maximum length of the trail
// to maintain
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int64]*history),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int64]*history)
}

// Add the track's current centroid to its history.  A track that was not
// matched this frame adds nothing
func (t *Trail) Add(track *Track) {
	t.Lock()
	defer t.Unlock()

	h, exists := t.history[track.GetTrackID()]

	if !exists {
		h = &history{}
		t.history[track.GetTrackID()] = h
	}

	if track.GetFramesUnseen() > 0 && len(h.points) > 0 {
		return
	}

	h.points = append(h.points, track.GetCentroid())

	// check if history is exceeded and drop oldest point
	if len(h.points) > t.size {
		h.points = h.points[1:]
	}
}

// Remove drops the history of the given track IDs, used once tracks are
// evicted
func (t *Trail) Remove(ids ...int64) {
	t.Lock()
	defer t.Unlock()

	for _, id := range ids {
		delete(t.history, id)
	}
}

// GetPoints gets the point history for a specific track id
func (t *Trail) GetPoints(id int64) []Point {
	t.Lock()
	defer t.Unlock()

	if h, exists := t.history[id]; exists {
		out := make([]Point, len(h.points))
		copy(out, h.points)
		return out
	}

	// no history yet
	return nil
}
