package preprocess

import (
	"image"

	"gocv.io/x/gocv"
)

// BlobParams defines how a frame is converted into a DNN input blob
type BlobParams struct {
	// Size is the input tensor width and height the Model was trained on
	Size image.Point
	// Scale multiplies each pixel after the mean is subtracted
	Scale float64
	// Mean is subtracted from each channel
	Mean gocv.Scalar
	// SwapRB swaps the red and blue channels
	SwapRB bool
}

// MobileNetSSDBlobParams returns the blob settings for the Caffe
// MobileNet-SSD model, 300x300 input with pixels scaled to [-1,1]
func MobileNetSSDBlobParams() BlobParams {
	return BlobParams{
		Size:   image.Pt(300, 300),
		Scale:  0.007843,
		Mean:   gocv.NewScalar(127.5, 127.5, 127.5, 0),
		SwapRB: false,
	}
}

// Blob returns the input blob for the image, the caller must Close it
func Blob(img gocv.Mat, p BlobParams) gocv.Mat {
	return gocv.BlobFromImage(img, p.Scale, p.Size, p.Mean, p.SwapRB, false)
}
