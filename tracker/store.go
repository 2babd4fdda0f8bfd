package tracker

// TrackStore holds the live tracks keyed by ID while remembering the order
// they were created in, which association depends on
type TrackStore struct {
	// order of track IDs by creation
	order []int64
	// tracks by ID
	tracks map[int64]*Track
}

// NewTrackStore returns an empty store
func NewTrackStore() *TrackStore {
	return &TrackStore{
		tracks: make(map[int64]*Track),
	}
}

// Add appends a track to the store.  Adding an ID already present replaces
// the track without changing its position
func (s *TrackStore) Add(t *Track) {

	if _, exists := s.tracks[t.trackID]; !exists {
		s.order = append(s.order, t.trackID)
	}

	s.tracks[t.trackID] = t
}

// Get returns the track for the given ID
func (s *TrackStore) Get(id int64) (*Track, bool) {
	t, ok := s.tracks[id]
	return t, ok
}

// Len returns the number of live tracks
func (s *TrackStore) Len() int {
	return len(s.order)
}

// Tracks returns the live tracks in creation order
func (s *TrackStore) Tracks() []*Track {

	out := make([]*Track, 0, len(s.order))

	for _, id := range s.order {
		out = append(out, s.tracks[id])
	}

	return out
}

// Remove deletes the tracks with the given IDs
func (s *TrackStore) Remove(ids ...int64) {

	if len(ids) == 0 {
		return
	}

	drop := make(map[int64]bool, len(ids))

	for _, id := range ids {
		drop[id] = true
		delete(s.tracks, id)
	}

	kept := s.order[:0]

	for _, id := range s.order {
		if !drop[id] {
			kept = append(kept, id)
		}
	}

	s.order = kept
}

// Reset removes all tracks
func (s *TrackStore) Reset() {
	s.order = nil
	s.tracks = make(map[int64]*Track)
}
