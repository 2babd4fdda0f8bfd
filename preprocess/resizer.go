package preprocess

import (
	"image"

	"gocv.io/x/gocv"
)

// Resizer defines the struct used for scaling video frames to a fixed width
// whilst maintaining image aspect.  Tracking distances are in pixels of the
// resized frame
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to, derived from the aspect ratio
	destHeight int
	// scale is the factor from source to destination size
	scale float32
}

// NewResizer returns a resizer used for scaling frames of the given source
// size to destWidth pixels wide
func NewResizer(srcWidth, srcHeight, destWidth int) *Resizer {

	r := &Resizer{
		srcWidth:  srcWidth,
		srcHeight: srcHeight,
		destWidth: destWidth,
	}

	r.scale = float32(destWidth) / float32(srcWidth)
	r.destHeight = int(float32(srcHeight) * r.scale)

	return r
}

// Resize scales the source frame into dest.  Shrinking uses area
// interpolation and enlarging uses linear
func (r *Resizer) Resize(src gocv.Mat, dest *gocv.Mat) {

	interp := gocv.InterpolationArea

	if r.scale > 1 {
		interp = gocv.InterpolationLinear
	}

	gocv.Resize(src, dest, image.Pt(r.destWidth, r.destHeight), 0, 0, interp)
}

// ScaleFactor returns the scale factor used in the resize
func (r *Resizer) ScaleFactor() float32 {
	return r.scale
}

// DestWidth returns the width of the resized image
func (r *Resizer) DestWidth() int {
	return r.destWidth
}

// DestHeight returns the height of the resized image
func (r *Resizer) DestHeight() int {
	return r.destHeight
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}
