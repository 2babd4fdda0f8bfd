package traffic

import (
	"fmt"
)

// State is the traffic condition assigned to a window
type State int

const (
	// Indeterminate is the Markov classifier's state before the first window
	Indeterminate State = iota
	// Light traffic
	Light
	// Moderate traffic
	Moderate
	// Heavy traffic
	Heavy
)

// stateNames are indexed by State
var stateNames = [...]string{"indeterminate", "light", "moderate", "heavy"}

// String returns the state name
func (s State) String() string {

	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}

	return stateNames[s]
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name
func (s *State) UnmarshalText(b []byte) error {

	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}

	return fmt.Errorf("unknown traffic state %q", string(b))
}
