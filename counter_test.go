package trafficcount

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swdee/go-trafficcount/postprocess"
	"github.com/swdee/go-trafficcount/tracker"
	"github.com/swdee/go-trafficcount/traffic"
)

func init() {
	SetLogger(nil)
}

// det returns a detection with a 20x20 box centered on x,y
func det(label string, x, y int, prob float32) postprocess.DetectResult {
	return postprocess.DetectResult{
		Label:       label,
		Box:         postprocess.BoxRect{Left: x - 10, Right: x + 10, Top: y - 10, Bottom: y + 10},
		Probability: prob,
	}
}

// recorder is a WindowListener keeping every report
type recorder struct {
	reports []WindowReport
}

func (r *recorder) OnWindow(w WindowReport) {
	r.reports = append(r.reports, w)
}

func fixedHourConfig(hour int) Config {
	cfg := DefaultConfig()
	cfg.Hour = &hour
	return cfg
}

func TestCounterEndToEnd(t *testing.T) {

	t0 := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)

	c, err := New(fixedHourConfig(14), t0)
	require.NoError(t, err)

	rec := &recorder{}
	c.AddListener(rec)

	frameAt := func(i int) time.Time {
		return t0.Add(time.Duration(i) * 100 * time.Millisecond)
	}

	for i := 0; i < 100; i++ {

		dets := []postprocess.DetectResult{
			det("car", 100+i*2, 200, 0.9),
			// never passes the car confidence threshold
			det("car", 500, 500, 0.5),
		}

		if i == 20 {
			dets = append(dets, det("motorbike", 300, 50, 0.3))
		}

		res, err := c.ProcessFrame(dets, frameAt(i))
		require.NoError(t, err)

		assert.Nil(t, res.Window, "frame %d", i)
		assert.Equal(t, i+1, res.FrameID)

		switch i {
		case 9:
			require.Len(t, res.Counted, 1)
			assert.Equal(t, "car", res.Counted[0].GetLabel())
		case 20:
			require.Len(t, res.Counted, 1)
			assert.Equal(t, "motorbike", res.Counted[0].GetLabel())
		case 26:
			// motorbike missed for 6 frames exceeds its threshold of 5
			require.Len(t, res.Evicted, 1)
			assert.Equal(t, "motorbike", res.Evicted[0].GetLabel())
		default:
			assert.Empty(t, res.Counted, "frame %d", i)
		}
	}

	assert.Equal(t, Counts{PerType: map[string]int{"car": 1, "motorbike": 1}, Total: 2}, c.Counts())
	assert.Equal(t, 2, c.WindowTotals().Total)
	assert.Equal(t, traffic.Indeterminate, c.BayesState())
	assert.Equal(t, traffic.Indeterminate, c.MarkovState())

	// the 10 second window closes before this frame is counted
	res, err := c.ProcessFrame([]postprocess.DetectResult{
		det("car", 300, 200, 0.9),
		det("motorbike", 600, 600, 0.9),
	}, frameAt(100))
	require.NoError(t, err)

	require.NotNil(t, res.Window)

	want := WindowReport{
		WindowSummary: traffic.WindowSummary{
			Start: t0,
			End:   frameAt(100),
			WindowTotals: traffic.WindowTotals{
				PerType: map[string]int{"car": 1, "motorbike": 1},
				Total:   2,
			},
		},
		Hour:   14,
		Bayes:  traffic.Light,
		Markov: traffic.Light,
	}

	if diff := cmp.Diff(want, *res.Window); diff != "" {
		t.Errorf("window report mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, rec.reports, 1)
	assert.Empty(t, cmp.Diff(want, rec.reports[0]))

	// the new motorbike belongs to the new window
	assert.Equal(t, traffic.WindowTotals{PerType: map[string]int{"motorbike": 1}, Total: 1}, c.WindowTotals())
	assert.Equal(t, 3, c.Counts().Total)
	assert.Equal(t, traffic.Light, c.BayesState())
	assert.Equal(t, traffic.Light, c.MarkovState())
}

func TestCounterWindowsClassified(t *testing.T) {

	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	cfg := DefaultConfig()
	cfg.Window = Duration{time.Second}

	c, err := New(cfg, t0)
	require.NoError(t, err)

	rec := &recorder{}
	c.AddListener(rec)

	// each frame has 15 motorbikes far apart, all counted on sight and all
	// new as the positions move every frame
	now := t0

	for w := 0; w < 2; w++ {

		var dets []postprocess.DetectResult

		for k := 0; k < 15; k++ {
			dets = append(dets, det("motorbike", k*300+w*150, 100+w*400, 0.9))
		}

		_, err := c.ProcessFrame(dets, now)
		require.NoError(t, err)

		now = now.Add(time.Second)
	}

	report, err := c.Flush(now)
	require.NoError(t, err)
	require.NotNil(t, report)

	require.Len(t, rec.reports, 2)

	assert.Equal(t, 15, rec.reports[0].Total)
	assert.Equal(t, 8, rec.reports[0].Hour)
	assert.Equal(t, traffic.Heavy, rec.reports[0].Bayes)
	assert.Equal(t, traffic.Moderate, rec.reports[0].Markov)

	assert.Equal(t, 15, rec.reports[1].Total)
	assert.Equal(t, traffic.Heavy, rec.reports[1].Markov)

	// the flushed tail window is labelled but leaves the Markov state on the
	// last full window
	assert.Equal(t, traffic.Moderate, c.MarkovState())

	// nothing left to flush
	report, err = c.Flush(now)
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestCounterRegion(t *testing.T) {

	cfg := fixedHourConfig(12)
	cfg.Region = []tracker.Point{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 200}, {X: 0, Y: 200}}

	c, err := New(cfg, time.Unix(0, 0))
	require.NoError(t, err)
	require.NotNil(t, c.Region())

	res, err := c.ProcessFrame([]postprocess.DetectResult{
		det("motorbike", 100, 100, 0.9),
		det("motorbike", 400, 100, 0.9),
	}, time.Unix(0, 0))
	require.NoError(t, err)

	assert.Len(t, res.Tracks, 1)
	assert.Equal(t, 1, c.Counts().Total)
}

func TestNewRejectsInvalidConfig(t *testing.T) {

	cfg := DefaultConfig()
	cfg.Classes = tracker.Params{"car": {ConfidenceThreshold: 0.5, StabilityThreshold: 0, MaxDistance: 10}}

	_, err := New(cfg, time.Now())

	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.True(t, errors.Is(err, tracker.ErrInvalidParams))
}
