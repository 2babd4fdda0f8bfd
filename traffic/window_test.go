package traffic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowAggregator(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	w := NewWindowAggregator(10*time.Second, start)

	w.Add("car")
	w.Add("car")
	w.Add("motorbike")

	totals := w.Totals()
	assert.Equal(t, 3, totals.Total)
	assert.Equal(t, map[string]int{"car": 2, "motorbike": 1}, totals.PerType)

	// totals is a copy
	totals.PerType["car"] = 99
	assert.Equal(t, 2, w.Totals().PerType["car"])

	assert.False(t, w.Due(start.Add(9*time.Second)))
	assert.True(t, w.Due(start.Add(10*time.Second)))
	assert.Equal(t, 4*time.Second, w.Elapsed(start.Add(4*time.Second)))

	end := start.Add(11 * time.Second)
	s := w.Rollover(end)

	assert.Equal(t, start, s.Start)
	assert.Equal(t, end, s.End)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.PerType["car"])

	assert.Equal(t, 0, w.Totals().Total)
	assert.Empty(t, w.Totals().PerType)
	assert.Equal(t, end, w.Start())
	assert.False(t, w.Due(end.Add(time.Second)))
}

func TestWindowTotalsSumMatches(t *testing.T) {
	t.Parallel()

	w := NewWindowAggregator(time.Minute, time.Unix(0, 0))
	labels := []string{"car", "motorbike", "car", "bus", "car"}

	for _, l := range labels {
		w.Add(l)
	}

	s := w.Rollover(time.Unix(60, 0))

	sum := 0
	for _, v := range s.PerType {
		sum += v
	}

	assert.Equal(t, s.Total, sum)
	assert.Equal(t, len(labels), s.Total)
}
