// Package report delivers closed counting windows to the outside world: the
// log, a SQLite table, websocket dashboard clients and HTML charts
package report

import (
	"sync"

	trafficcount "github.com/swdee/go-trafficcount"
)

// Sink receives each counting window as it closes.  Sinks are called from
// the frame loop so must not block for long
type Sink interface {
	OnWindow(trafficcount.WindowReport)
}

// MultiSink fans each window out to several sinks in order
type MultiSink []Sink

// OnWindow passes the report to every sink
func (m MultiSink) OnWindow(r trafficcount.WindowReport) {
	for _, s := range m {
		s.OnWindow(r)
	}
}

// Recorder is a Sink that keeps every report in memory, used to build a
// chart at the end of a run
type Recorder struct {
	mu      sync.Mutex
	reports []trafficcount.WindowReport
}

// OnWindow stores the report
func (r *Recorder) OnWindow(w trafficcount.WindowReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reports = append(r.reports, w)
}

// Reports returns a copy of the reports received so far
func (r *Recorder) Reports() []trafficcount.WindowReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]trafficcount.WindowReport, len(r.reports))
	copy(out, r.reports)

	return out
}
