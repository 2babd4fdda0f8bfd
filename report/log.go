package report

import (
	"sort"

	trafficcount "github.com/swdee/go-trafficcount"
)

// LogSink writes a summary block for each window
type LogSink struct {
	// Logf is the logger to write to, trafficcount.Logf when nil
	Logf func(format string, v ...interface{})
}

// OnWindow logs the report
func (s LogSink) OnWindow(r trafficcount.WindowReport) {

	logf := s.Logf

	if logf == nil {
		logf = trafficcount.Logf
	}

	logf("--- window %s to %s ---", r.Start.Format("15:04:05"),
		r.End.Format("15:04:05"))

	for _, label := range sortedLabels(r.PerType) {
		logf("%s: %d", label, r.PerType[label])
	}

	logf("total: %d", r.Total)
	logf("bayes (hour %d): %s", r.Hour, r.Bayes)
	logf("markov: %s", r.Markov)
}

// sortedLabels returns the map keys in sorted order
func sortedLabels(m map[string]int) []string {

	labels := make([]string, 0, len(m))

	for k := range m {
		labels = append(labels, k)
	}

	sort.Strings(labels)

	return labels
}
