package tracker

import (
	"errors"
	"fmt"
	"math"

	"github.com/swdee/go-trafficcount/postprocess/result"
)

// ErrUnknownLabel is returned when the tracker is given an object whose
// label has no parameters configured
var ErrUnknownLabel = errors.New("unknown label")

// CentroidTracker associates detections to tracks frame by frame by greedy
// nearest centroid matching within each object category, and decides when
// a track is counted and when it is evicted
type CentroidTracker struct {
	// params per object category
	params Params
	// store of live tracks
	store *TrackStore
	// idGen provides track IDs, it is never reset so IDs are not reused
	idGen *result.IDGenerator
	// Current frame ID
	frameID int
}

// FrameUpdate is the outcome of processing a single frame
type FrameUpdate struct {
	// Active are the live tracks after the frame in creation order
	Active []*Track
	// Counted are the tracks that became counted on this frame
	Counted []*Track
	// Evicted are the tracks removed on this frame
	Evicted []*Track
	// FrameID is the ID of the frame processed
	FrameID int
}

// NewCentroidTracker returns a tracker using the given per category
// parameters
func NewCentroidTracker(params Params) (*CentroidTracker, error) {

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &CentroidTracker{
		params: params,
		store:  NewTrackStore(),
		idGen:  result.NewIDGenerator(),
	}, nil
}

// Reset clears all tracks and the frame counter.  Track IDs carry on from
// where they were
func (ct *CentroidTracker) Reset() {
	ct.frameID = 0
	ct.store.Reset()
}

// Tracks returns the live tracks in creation order
func (ct *CentroidTracker) Tracks() []*Track {
	return ct.store.Tracks()
}

// Params returns the per category parameters in use
func (ct *CentroidTracker) Params() Params {
	return ct.params
}

// Update associates the frame's objects with the live tracks, creates
// tracks for unmatched objects, then promotes and evicts tracks.  Objects
// are expected to have been through FilterObjects already
func (ct *CentroidTracker) Update(objects []Object) (FrameUpdate, error) {

	for _, obj := range objects {
		if _, ok := ct.params[obj.Label]; !ok {
			return FrameUpdate{}, fmt.Errorf("%w: %q", ErrUnknownLabel, obj.Label)
		}
	}

	ct.frameID++

	centroids := make([]Point, len(objects))

	for i, obj := range objects {
		centroids[i] = obj.Centroid()
	}

	used := make([]bool, len(objects))

	// match existing tracks in creation order, each taking the nearest
	// unused object of its own category
	for _, track := range ct.store.Tracks() {

		maxDist := ct.params[track.label].MaxDistance
		best := -1
		bestDist := math.Inf(1)

		for i, obj := range objects {

			if used[i] || obj.Label != track.label {
				continue
			}

			// strict comparison keeps the first candidate on ties
			if d := track.centroid.DistanceTo(centroids[i]); d < bestDist {
				best = i
				bestDist = d
			}
		}

		if best >= 0 && bestDist < maxDist {
			track.match(objects[best], centroids[best], ct.frameID)
			used[best] = true
			continue
		}

		track.miss()
	}

	// unmatched objects start new tracks in detection order
	for i, obj := range objects {
		if used[i] {
			continue
		}

		ct.store.Add(newTrack(ct.idGen.GetNext(), obj, ct.frameID))
	}

	upd := FrameUpdate{FrameID: ct.frameID}

	var evict []int64

	for _, track := range ct.store.Tracks() {

		p := ct.params[track.label]

		if !track.counted && float64(track.framesSeen) >= p.StabilityThreshold {
			track.counted = true
			upd.Counted = append(upd.Counted, track)
		}

		if track.framesUnseen > p.DisappearedThreshold {
			evict = append(evict, track.trackID)
			upd.Evicted = append(upd.Evicted, track)
		}
	}

	ct.store.Remove(evict...)
	upd.Active = ct.store.Tracks()

	return upd, nil
}
