package render

import (
	"fmt"
	"image"
	"image/draw"
	"time"

	trafficcount "github.com/swdee/go-trafficcount"
	"github.com/swdee/go-trafficcount/traffic"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// panelPad is the pixel padding around the stats panel text
const panelPad = 6

// Stats are the counting figures shown on the stats panel
type Stats struct {
	// Labels are the categories to list, in order
	Labels []string
	// Counts are the cumulative counts
	Counts trafficcount.Counts
	// Window are the open window's counts
	Window traffic.WindowTotals
	// WindowElapsed is how long the open window has been running
	WindowElapsed time.Duration
	// Bayes is the state of the last closed window
	Bayes traffic.State
	// Markov is the Markov classifier's current state
	Markov traffic.State
}

// NewStats collects the panel figures from the counter at time now
func NewStats(c *trafficcount.Counter, now time.Time) Stats {
	return Stats{
		Labels:        c.Config().Classes.Labels(),
		Counts:        c.Counts(),
		Window:        c.WindowTotals(),
		WindowElapsed: now.Sub(c.WindowStart()),
		Bayes:         c.BayesState(),
		Markov:        c.MarkovState(),
	}
}

// Lines returns the text lines shown on the panel
func (s Stats) Lines() []string {

	lines := make([]string, 0, len(s.Labels)+4)

	for _, label := range s.Labels {
		lines = append(lines, fmt.Sprintf("%s: %d", label, s.Counts.PerType[label]))
	}

	lines = append(lines,
		fmt.Sprintf("total: %d", s.Counts.Total),
		fmt.Sprintf("window: %d (%ds)", s.Window.Total, int(s.WindowElapsed.Seconds())),
		fmt.Sprintf("bayes: %s", s.Bayes),
		fmt.Sprintf("markov: %s", s.Markov),
	)

	return lines
}

// StatsPanel draws the stats as white text on a black panel in the top left
// corner of dst and returns the area covered.  A nil face uses
// basicfont.Face7x13
func StatsPanel(dst draw.Image, stats Stats, face font.Face) image.Rectangle {

	if face == nil {
		face = basicfont.Face7x13
	}

	lines := stats.Lines()
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()

	width := 0

	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > width {
			width = w
		}
	}

	panel := image.Rect(0, 0, width+2*panelPad, len(lines)*lineHeight+2*panelPad).
		Add(dst.Bounds().Min).Intersect(dst.Bounds())

	draw.Draw(dst, panel, image.NewUniform(Black), image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(White),
		Face: face,
	}

	for i, line := range lines {
		dr.Dot = fixed.Point26_6{
			X: fixed.I(panel.Min.X + panelPad),
			Y: fixed.I(panel.Min.Y+panelPad+i*lineHeight) + metrics.Ascent,
		}
		dr.DrawString(line)
	}

	return panel
}

// Overlay draws the stats panel onto the video frame
func Overlay(img *gocv.Mat, stats Stats) error {

	rgba := image.NewRGBA(image.Rect(0, 0, img.Cols(), img.Rows()))
	panel := StatsPanel(rgba, stats, nil)

	// blank the panel area, the text layer is added on top
	gocv.Rectangle(img, panel, Black, -1)

	imgRGBA, err := gocv.NewMatFromBytes(rgba.Bounds().Dy(), rgba.Bounds().Dx(),
		gocv.MatTypeCV8UC4, rgba.Pix)

	if err != nil {
		return fmt.Errorf("error creating Mat from RGBA: %w", err)
	}

	if imgRGBA.Empty() {
		return fmt.Errorf("error creating Mat from RGBA: empty mat")
	}

	defer imgRGBA.Close()

	gocv.CvtColor(imgRGBA, &imgRGBA, gocv.ColorRGBAToBGR)
	gocv.AddWeighted(*img, 1.0, imgRGBA, 1.0, 0, img)

	return nil
}
