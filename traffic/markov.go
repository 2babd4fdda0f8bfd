package traffic

// transitions maps the current state and the latest window's level to the
// next state
var transitions = map[State][3]State{
	Indeterminate: {Low: Light, Medium: Moderate, High: Moderate},
	Light:         {Low: Light, Medium: Moderate, High: Moderate},
	Moderate:      {Low: Light, Medium: Moderate, High: Heavy},
	Heavy:         {Low: Moderate, Medium: Moderate, High: Heavy},
}

// MarkovClassifier assigns a traffic state from the previous state and the
// latest window's count level, so a single busy or quiet window moves the
// state at most one step from Heavy or Light
type MarkovClassifier struct {
	thresholds Thresholds
	state      State
}

// NewMarkovClassifier returns a classifier in the Indeterminate state
func NewMarkovClassifier(th Thresholds) *MarkovClassifier {
	return &MarkovClassifier{
		thresholds: th,
		state:      Indeterminate,
	}
}

// Classify moves to and returns the next state for the window total
func (m *MarkovClassifier) Classify(count int) State {
	m.state = transitions[m.state][m.thresholds.Level(count)]
	return m.state
}

// Next returns the state Classify would move to for the window total
// without changing the current state
func (m *MarkovClassifier) Next(count int) State {
	return transitions[m.state][m.thresholds.Level(count)]
}

// State returns the current state
func (m *MarkovClassifier) State() State {
	return m.state
}
