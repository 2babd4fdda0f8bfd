package tracker

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidParams is returned when class parameters fail validation
var ErrInvalidParams = errors.New("invalid tracker params")

// ClassParams are the tracking and counting parameters for a single object
// category
type ClassParams struct {
	// ConfidenceThreshold is the probability a detection must exceed to be
	// considered by the tracker
	ConfidenceThreshold float32 `json:"confidence_threshold"`
	// StabilityThreshold is the number of frames a track must be seen before
	// it is counted.  Values of 1 or less count on first observation
	StabilityThreshold float64 `json:"stability_threshold"`
	// DisappearedThreshold is the number of consecutive missed frames
	// tolerated before a track is evicted
	DisappearedThreshold int `json:"disappeared_threshold"`
	// MaxDistance is the pixel distance a detection centroid must be within
	// to be associated with a track
	MaxDistance float64 `json:"max_distance"`
}

// Params maps each tracked category label to its parameters.  Categories
// not present in the map are not tracked
type Params map[string]ClassParams

// DefaultParams returns the tuning used for road traffic footage with
// MobileNet-SSD:
// - car: confidence 0.5, stable after 10 frames, evicted after 15 missed,
// matched within 75 pixels
// - motorbike: confidence 0.2, counted on first sighting, evicted after
// 5 missed, matched within 100 pixels
func DefaultParams() Params {
	return Params{
		"car": {
			ConfidenceThreshold:  0.5,
			StabilityThreshold:   10,
			DisappearedThreshold: 15,
			MaxDistance:          75,
		},
		"motorbike": {
			ConfidenceThreshold:  0.2,
			StabilityThreshold:   0.5,
			DisappearedThreshold: 5,
			MaxDistance:          100,
		},
	}
}

// Validate checks every category has usable parameters
func (p Params) Validate() error {

	if len(p) == 0 {
		return fmt.Errorf("%w: no categories configured", ErrInvalidParams)
	}

	for _, label := range p.Labels() {

		c := p[label]

		switch {
		case label == "":
			return fmt.Errorf("%w: empty category label", ErrInvalidParams)
		case c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1:
			return fmt.Errorf("%w: %s confidence threshold %v outside [0,1]",
				ErrInvalidParams, label, c.ConfidenceThreshold)
		case c.StabilityThreshold <= 0:
			return fmt.Errorf("%w: %s stability threshold must be positive",
				ErrInvalidParams, label)
		case c.DisappearedThreshold < 0:
			return fmt.Errorf("%w: %s disappeared threshold must not be negative",
				ErrInvalidParams, label)
		case c.MaxDistance <= 0:
			return fmt.Errorf("%w: %s max distance must be positive",
				ErrInvalidParams, label)
		}
	}

	return nil
}

// Labels returns the configured category labels in sorted order
func (p Params) Labels() []string {

	labels := make([]string, 0, len(p))

	for label := range p {
		labels = append(labels, label)
	}

	sort.Strings(labels)

	return labels
}

// MinConfidence returns the lowest confidence threshold of any category, the
// floor a detector can apply without dropping detections a category accepts
func (p Params) MinConfidence() float32 {

	if len(p) == 0 {
		return 0
	}

	min := float32(1)

	for _, c := range p {
		if c.ConfidenceThreshold < min {
			min = c.ConfidenceThreshold
		}
	}

	return min
}
