package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Alignment of a track label relative to its bounding box
type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font is the Hershey font style used for track labels drawn above boxes
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// padding between the label text and its background box
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	Alignment Alignment
	// CountedColor is the text color used once a track has been counted,
	// zero value keeps Color
	CountedColor color.RGBA
}

// DefaultFont returns the track label style for frames resized to 700 pixels
// wide
func DefaultFont() Font {
	return Font{
		Face:         gocv.FontHersheySimplex,
		Scale:        0.4,
		Color:        White,
		Thickness:    1,
		LineType:     gocv.LineAA,
		LeftPad:      3,
		RightPad:     3,
		TopPad:       3,
		BottomPad:    5,
		Alignment:    Left,
		CountedColor: Black,
	}
}

// textColor returns the label text color for a track
func (f Font) textColor(counted bool) color.RGBA {
	if counted && f.CountedColor != (color.RGBA{}) {
		return f.CountedColor
	}
	return f.Color
}
