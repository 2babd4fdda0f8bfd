package traffic

import "time"

// WindowTotals are the counts made within a window
type WindowTotals struct {
	// PerType are the counts per object category
	PerType map[string]int `json:"per_type"`
	// Total is the sum of all categories
	Total int `json:"total"`
}

// WindowSummary describes a closed window
type WindowSummary struct {
	// Start is when the window opened
	Start time.Time `json:"start"`
	// End is when the window was rolled over
	End time.Time `json:"end"`
	WindowTotals
}

// WindowAggregator accumulates counts over fixed length time windows
type WindowAggregator struct {
	duration time.Duration
	start    time.Time
	perType  map[string]int
	total    int
}

// NewWindowAggregator returns an aggregator whose first window opens at start
func NewWindowAggregator(duration time.Duration, start time.Time) *WindowAggregator {
	return &WindowAggregator{
		duration: duration,
		start:    start,
		perType:  make(map[string]int),
	}
}

// Add counts one object of the given category in the open window
func (w *WindowAggregator) Add(label string) {
	w.perType[label]++
	w.total++
}

// Totals returns a copy of the open window's counts
func (w *WindowAggregator) Totals() WindowTotals {

	per := make(map[string]int, len(w.perType))

	for k, v := range w.perType {
		per[k] = v
	}

	return WindowTotals{PerType: per, Total: w.total}
}

// Start returns when the open window began
func (w *WindowAggregator) Start() time.Time {
	return w.start
}

// Duration returns the window length
func (w *WindowAggregator) Duration() time.Duration {
	return w.duration
}

// Elapsed returns how long the open window has been running
func (w *WindowAggregator) Elapsed(now time.Time) time.Duration {
	return now.Sub(w.start)
}

// Due reports whether the open window has run its full duration
func (w *WindowAggregator) Due(now time.Time) bool {
	return w.Elapsed(now) >= w.duration
}

// Rollover closes the open window, returning its summary, and opens a new
// empty window at now
func (w *WindowAggregator) Rollover(now time.Time) WindowSummary {

	s := WindowSummary{
		Start:        w.start,
		End:          now,
		WindowTotals: w.Totals(),
	}

	w.start = now
	w.perType = make(map[string]int)
	w.total = 0

	return s
}
