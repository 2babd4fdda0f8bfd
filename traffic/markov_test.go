package traffic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkovTransitions(t *testing.T) {
	t.Parallel()

	// count per level using the default thresholds
	counts := map[CountLevel]int{Low: 1, Medium: 8, High: 20}

	tests := []struct {
		from  State
		level CountLevel
		want  State
	}{
		{Indeterminate, Low, Light},
		{Indeterminate, Medium, Moderate},
		{Indeterminate, High, Moderate},
		{Light, Low, Light},
		{Light, Medium, Moderate},
		{Light, High, Moderate},
		{Moderate, Low, Light},
		{Moderate, Medium, Moderate},
		{Moderate, High, Heavy},
		{Heavy, Low, Moderate},
		{Heavy, Medium, Moderate},
		{Heavy, High, Heavy},
	}

	for _, tc := range tests {
		m := NewMarkovClassifier(DefaultThresholds())
		m.state = tc.from

		got := m.Classify(counts[tc.level])

		assert.Equal(t, tc.want, got, "%s + %s", tc.from, tc.level)
		assert.Equal(t, tc.want, m.State())
	}
}

func TestMarkovSequence(t *testing.T) {
	t.Parallel()

	m := NewMarkovClassifier(DefaultThresholds())
	assert.Equal(t, Indeterminate, m.State())

	// high windows need two steps to reach heavy and low windows need two
	// steps to leave it
	var got []State

	for _, c := range []int{15, 15, 15, 0, 0, 0} {
		got = append(got, m.Classify(c))
	}

	assert.Equal(t, []State{Moderate, Heavy, Heavy, Moderate, Light, Light}, got)
}

func TestMarkovNextKeepsState(t *testing.T) {
	t.Parallel()

	m := NewMarkovClassifier(DefaultThresholds())
	m.Classify(15)

	assert.Equal(t, Heavy, m.Next(15))
	assert.Equal(t, Light, m.Next(0))
	assert.Equal(t, Moderate, m.State())
}
