package traffic

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// BayesClassifier assigns a traffic state to a window by looking up the most
// probable state for its count level and hour period
type BayesClassifier struct {
	thresholds Thresholds
	cpt        *CPT
}

// NewBayesClassifier returns a classifier using the given level boundaries
// and probability table
func NewBayesClassifier(th Thresholds, cpt *CPT) (*BayesClassifier, error) {

	if err := th.Validate(); err != nil {
		return nil, err
	}

	if err := cpt.Validate(); err != nil {
		return nil, err
	}

	return &BayesClassifier{
		thresholds: th,
		cpt:        cpt,
	}, nil
}

// Classify returns the most probable state for a window total observed at
// the given hour.  Equal probabilities resolve to the lighter state
func (b *BayesClassifier) Classify(count, hour int) (State, error) {

	period, err := PeriodOf(hour)

	if err != nil {
		return Indeterminate, fmt.Errorf("bayes classify: %w", err)
	}

	dist := b.cpt.Distribution(b.thresholds.Level(count), period)

	return Light + State(floats.MaxIdx(dist)), nil
}
