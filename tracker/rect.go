package tracker

// Tlwh (top, left, width, height) represents a 1x4 matrix
type Tlwh []float32

// Tlbr (top, left, bottom, right) represents a 1x4 matrix
type Tlbr []float32

// Rect represents a bounding box in Tlwh (top, left, width, height) format
type Rect struct {
	Tlwh Tlwh
}

// NewRect creates a new Rect with given coordinates
func NewRect(x, y, width, height float32) Rect {
	return Rect{
		Tlwh: Tlwh{x, y, width, height},
	}
}

// GenerateRectByTlbr creates a Rect from Tlbr (top, left, bottom, right) format
func GenerateRectByTlbr(tlbr Tlbr) Rect {
	return NewRect(tlbr[0], tlbr[1], tlbr[2]-tlbr[0], tlbr[3]-tlbr[1])
}

// X returns the x coordinate of the rectangle
func (r Rect) X() float32 {
	return r.Tlwh[0]
}

// Y returns the y coordinate of the rectangle
func (r Rect) Y() float32 {
	return r.Tlwh[1]
}

// Width returns the width of the rectangle
func (r Rect) Width() float32 {
	return r.Tlwh[2]
}

// Height returns the height of the rectangle
func (r Rect) Height() float32 {
	return r.Tlwh[3]
}

// TLX returns the top-left x coordinate of the rectangle
func (r Rect) TLX() float32 {
	return r.Tlwh[0]
}

// TLY returns the top-left y coordinate of the rectangle
func (r Rect) TLY() float32 {
	return r.Tlwh[1]
}

// BRX returns the bottom-right x coordinate of the rectangle
func (r Rect) BRX() float32 {
	return r.Tlwh[0] + r.Tlwh[2]
}

// BRY returns the bottom-right y coordinate of the rectangle
func (r Rect) BRY() float32 {
	return r.Tlwh[1] + r.Tlwh[3]
}

// GetTlbr converts the rectangle to Tlbr (top, left, bottom, right) format
func (r Rect) GetTlbr() Tlbr {
	return Tlbr{r.TLX(), r.TLY(), r.BRX(), r.BRY()}
}

// Centroid returns the pixel center of the rectangle.  Edges are truncated to
// whole pixels first and the midpoint taken with integer division, so a box
// from the detector lands on the same point it would as integer corners
func (r Rect) Centroid() Point {
	return Point{
		X: (int(r.TLX()) + int(r.BRX())) / 2,
		Y: (int(r.TLY()) + int(r.BRY())) / 2,
	}
}
