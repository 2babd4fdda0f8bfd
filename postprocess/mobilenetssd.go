package postprocess

import (
	"github.com/swdee/go-trafficcount/postprocess/result"
)

// ssdRowSize is the number of values describing each detection in the
// DetectionOutput layer, being image id, class, confidence, x1, y1, x2, y2
const ssdRowSize = 7

// MobileNetSSD defines the struct for MobileNet-SSD Caffe model post processing
type MobileNetSSD struct {
	// Params are the Model configuration parameters
	Params MobileNetSSDParams
	// idGen is the counter that increments and provides the next number
	// for each detection result ID
	idGen *result.IDGenerator
}

// MobileNetSSDParams defines the struct containing the MobileNet-SSD
// parameters to use for post processing operations
type MobileNetSSDParams struct {
	// BoxThreshold is the minimum probability score a detection must exceed
	// to be returned
	BoxThreshold float32
	// Labels are the class names the Model was trained with, indexed by
	// class number
	Labels []string
}

// MobileNetSSDVOCParams returns an instance of MobileNetSSDParams configured
// with default values for a Model trained on the Pascal VOC dataset featuring:
// - Object Classes: 21 (including background)
// - Box Threshold: 0.2
func MobileNetSSDVOCParams() MobileNetSSDParams {
	return MobileNetSSDParams{
		BoxThreshold: 0.2,
		Labels: []string{
			"background", "aeroplane", "bicycle", "bird", "boat",
			"bottle", "bus", "car", "cat", "chair", "cow", "diningtable",
			"dog", "horse", "motorbike", "person", "pottedplant", "sheep",
			"sofa", "train", "tvmonitor",
		},
	}
}

// NewMobileNetSSD returns an instance of the MobileNet-SSD post processor
func NewMobileNetSSD(p MobileNetSSDParams) *MobileNetSSD {
	return &MobileNetSSD{
		Params: p,
		idGen:  result.NewIDGenerator(),
	}
}

// DetectObjects takes the flattened DetectionOutput blob of shape [1,1,N,7]
// and returns the detections scaled to a frame of the given pixel width and
// height
func (m *MobileNetSSD) DetectObjects(out []float32, width, height int) []DetectResult {

	group := make([]DetectResult, 0)

	for i := 0; i+ssdRowSize <= len(out); i += ssdRowSize {

		row := out[i : i+ssdRowSize]

		// a negative image id marks the end of valid detections
		if row[0] < 0 {
			continue
		}

		conf := row[2]

		if conf <= m.Params.BoxThreshold {
			continue
		}

		class := int(row[1])

		if class < 0 || class >= len(m.Params.Labels) {
			continue
		}

		group = append(group, DetectResult{
			Class: class,
			Label: m.Params.Labels[class],
			Box: BoxRect{
				Left:   clampInt(int(row[3]*float32(width)), 0, width),
				Top:    clampInt(int(row[4]*float32(height)), 0, height),
				Right:  clampInt(int(row[5]*float32(width)), 0, width),
				Bottom: clampInt(int(row[6]*float32(height)), 0, height),
			},
			Probability: conf,
			ID:          m.idGen.GetNext(),
		})
	}

	return group
}

// clampInt restricts val to the range min and max
func clampInt(val, min, max int) int {

	if val < min {
		return min
	}

	if val > max {
		return max
	}

	return val
}
