package trafficcount

import (
	"fmt"
	"time"

	"github.com/swdee/go-trafficcount/postprocess"
	"github.com/swdee/go-trafficcount/tracker"
	"github.com/swdee/go-trafficcount/traffic"
)

// WindowReport is a closed counting window along with the traffic state
// both classifiers assigned to it
type WindowReport struct {
	traffic.WindowSummary
	// Hour is the hour of day given to the Bayesian classifier
	Hour int `json:"hour"`
	// Bayes is the Bayesian classifier's state
	Bayes traffic.State `json:"bayes"`
	// Markov is the Markov classifier's state
	Markov traffic.State `json:"markov"`
}

// WindowListener receives each window as it closes
type WindowListener interface {
	OnWindow(WindowReport)
}

// Counts are the cumulative counts since the Counter was created
type Counts struct {
	// PerType are the counts per object category
	PerType map[string]int `json:"per_type"`
	// Total is the sum of all categories
	Total int `json:"total"`
}

// FrameResult is the outcome of processing a single frame
type FrameResult struct {
	// FrameID is the tracker's frame number, starting at 1
	FrameID int
	// Tracks are the live tracks after the frame in creation order
	Tracks []*tracker.Track
	// Counted are the tracks counted on this frame
	Counted []*tracker.Track
	// Evicted are the tracks removed on this frame
	Evicted []*tracker.Track
	// Window is the report of the window closed at the start of this frame,
	// nil if no window closed
	Window *WindowReport
}

// Counter runs detections through tracking, counting, windowing and
// classification.  It is not safe for concurrent use, frames must be
// processed one at a time in order
type Counter struct {
	cfg       Config
	tracker   *tracker.CentroidTracker
	region    *tracker.Region
	window    *traffic.WindowAggregator
	bayes     *traffic.BayesClassifier
	markov    *traffic.MarkovClassifier
	listeners []WindowListener
	// cumulative counts
	perType map[string]int
	total   int
	// bayesState is the state assigned to the last closed window
	bayesState traffic.State
}

// New returns a Counter whose first window opens at start
func New(cfg Config, start time.Time) (*Counter, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ct, err := tracker.NewCentroidTracker(cfg.Classes)

	if err != nil {
		return nil, fmt.Errorf("error creating tracker: %w", err)
	}

	cpt, err := cfg.cpt()

	if err != nil {
		return nil, fmt.Errorf("error loading probability table: %w", err)
	}

	bayes, err := traffic.NewBayesClassifier(cfg.Thresholds, cpt)

	if err != nil {
		return nil, fmt.Errorf("error creating bayes classifier: %w", err)
	}

	region, err := cfg.region()

	if err != nil {
		return nil, fmt.Errorf("error creating region: %w", err)
	}

	return &Counter{
		cfg:        cfg,
		tracker:    ct,
		region:     region,
		window:     traffic.NewWindowAggregator(cfg.Window.Duration, start),
		bayes:      bayes,
		markov:     traffic.NewMarkovClassifier(cfg.Thresholds),
		perType:    make(map[string]int),
		bayesState: traffic.Indeterminate,
	}, nil
}

// AddListener registers a listener to receive closed windows
func (c *Counter) AddListener(l WindowListener) {
	c.listeners = append(c.listeners, l)
}

// ProcessFrame runs one frame of detections observed at now through the
// pipeline.  A window that is due is closed and classified before the
// frame's detections are counted, so the frame's counts go to the new window
func (c *Counter) ProcessFrame(dets []postprocess.DetectResult, now time.Time) (*FrameResult, error) {

	res := &FrameResult{}

	if c.window.Due(now) {

		report, err := c.closeWindow(now, false)

		if err != nil {
			return nil, err
		}

		res.Window = report
	}

	objs := tracker.FilterObjects(tracker.DetectionsToObjects(dets),
		c.cfg.Classes, c.region)

	upd, err := c.tracker.Update(objs)

	if err != nil {
		return nil, fmt.Errorf("error updating tracker: %w", err)
	}

	for _, track := range upd.Counted {

		c.perType[track.GetLabel()]++
		c.total++
		c.window.Add(track.GetLabel())

		Logf("counted %s id %d conf %.2f seen %d", track.GetLabel(),
			track.GetTrackID(), track.GetScore(), track.GetFramesSeen())
	}

	res.FrameID = upd.FrameID
	res.Tracks = upd.Active
	res.Counted = upd.Counted
	res.Evicted = upd.Evicted

	return res, nil
}

// Flush closes the open window at end of stream and returns its report.  It
// returns nil if the window opened at now, as there is nothing to report.
// The partial window's Markov label is the state it would lead to, the
// Markov classifier itself stays in the state of the last full window
func (c *Counter) Flush(now time.Time) (*WindowReport, error) {

	if !now.After(c.window.Start()) {
		return nil, nil
	}

	return c.closeWindow(now, true)
}

// closeWindow rolls the window over, classifies it and notifies listeners.
// A partial window does not advance the Markov state
func (c *Counter) closeWindow(now time.Time, partial bool) (*WindowReport, error) {

	summary := c.window.Rollover(now)

	hour := now.Hour()

	if c.cfg.Hour != nil {
		hour = *c.cfg.Hour
	}

	bayes, err := c.bayes.Classify(summary.Total, hour)

	if err != nil {
		return nil, fmt.Errorf("error classifying window: %w", err)
	}

	c.bayesState = bayes

	report := &WindowReport{
		WindowSummary: summary,
		Hour:          hour,
		Bayes:         bayes,
	}

	if partial {
		report.Markov = c.markov.Next(summary.Total)
	} else {
		report.Markov = c.markov.Classify(summary.Total)
	}

	for _, l := range c.listeners {
		l.OnWindow(*report)
	}

	return report, nil
}

// Counts returns a copy of the cumulative counts
func (c *Counter) Counts() Counts {

	per := make(map[string]int, len(c.perType))

	for k, v := range c.perType {
		per[k] = v
	}

	return Counts{PerType: per, Total: c.total}
}

// BayesState returns the Bayesian state of the last closed window
func (c *Counter) BayesState() traffic.State {
	return c.bayesState
}

// MarkovState returns the Markov classifier's current state
func (c *Counter) MarkovState() traffic.State {
	return c.markov.State()
}

// Tracks returns the live tracks in creation order
func (c *Counter) Tracks() []*tracker.Track {
	return c.tracker.Tracks()
}

// WindowTotals returns the open window's counts so far
func (c *Counter) WindowTotals() traffic.WindowTotals {
	return c.window.Totals()
}

// WindowStart returns when the open window began
func (c *Counter) WindowStart() time.Time {
	return c.window.Start()
}

// Region returns the counting zone, nil when none is configured
func (c *Counter) Region() *tracker.Region {
	return c.region
}

// Config returns the settings the Counter was created with
func (c *Counter) Config() Config {
	return c.cfg
}
