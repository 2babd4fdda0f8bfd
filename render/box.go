package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-trafficcount/tracker"
	"gocv.io/x/gocv"
)

// boxLabel defines where the track label should be rendered on the source
// image
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	textClr color.RGBA
	text    string
	textPos image.Point
}

// TrackerBoxes renders the bounding boxes around the tracked objects.  Tracks
// that have been counted are drawn in CountedColor
func TrackerBoxes(img *gocv.Mat, tracks []*tracker.Track, font Font,
	lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	for _, tr := range tracks {

		// tracks missing from this frame are not drawn
		if tr.GetFramesUnseen() > 0 {
			continue
		}

		boxLeft := int(tr.GetRect().TLX())
		boxTop := int(tr.GetRect().TLY())
		boxRight := int(tr.GetRect().BRX())
		boxBottom := int(tr.GetRect().BRY())

		useClr := trackColor(tr.GetTrackID(), tr.IsCounted())

		// draw rectangle around tracked object
		rect := image.Rect(boxLeft, boxTop, boxRight, boxBottom)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		// create text for label
		text := fmt.Sprintf("%s %d (%.2f)", tr.GetLabel(), tr.GetTrackID(), tr.GetScore())
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		// Calculate the alignment of text label
		var centerX int

		switch font.Alignment {
		case Center:
			centerX = (boxLeft + boxRight) / 2

		case Right:
			centerX = boxRight - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

		case Left:
			fallthrough
		default:
			centerX = boxLeft + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
		}

		// Adjust the label position so the text is centered horizontally
		labelPosition := image.Pt(centerX-textSize.X/2, boxTop-font.BottomPad)

		// create box for placing text on
		bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
			boxTop-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, boxTop)

		boxLabels = append(boxLabels, boxLabel{
			rect:    bRect,
			clr:     useClr,
			textClr: font.textColor(tr.IsCounted()),
			text:    text,
			textPos: labelPosition,
		})
	}

	// draw all precalculated box labels so they are the top most layer on the
	// image and don't get overlapped by neighbouring boxes
	for _, box := range boxLabels {
		// draw box text gets written on
		gocv.Rectangle(img, box.rect, box.clr, -1)

		// Draw the label over box
		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, box.textClr, font.Thickness,
			font.LineType, false)
	}
}

// Region draws the outline of the counting zone
func Region(img *gocv.Mat, region *tracker.Region, clr color.RGBA, lineThickness int) {

	if region == nil {
		return
	}

	for _, poly := range region.Polygons() {
		for i := range poly {
			a := poly[i]
			b := poly[(i+1)%len(poly)]

			gocv.Line(img, image.Pt(a.X, a.Y), image.Pt(b.X, b.Y), clr, lineThickness)
		}
	}
}
