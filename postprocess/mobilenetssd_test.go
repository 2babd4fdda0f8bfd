package postprocess

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMobileNetSSDDetectObjects(t *testing.T) {

	ssd := NewMobileNetSSD(MobileNetSSDVOCParams())

	out := []float32{
		// car well above threshold
		0, 7, 0.9, 0.1, 0.2, 0.3, 0.4,
		// motorbike exactly at threshold is dropped
		0, 14, 0.2, 0.1, 0.1, 0.2, 0.2,
		// unknown class
		0, 42, 0.8, 0.1, 0.1, 0.2, 0.2,
		// negative image id
		-1, 7, 0.8, 0.1, 0.1, 0.2, 0.2,
		// box overflowing the frame is clamped
		0, 14, 0.5, -0.1, 0.5, 1.2, 1.1,
	}

	dets := ssd.DetectObjects(out, 700, 400)

	if len(dets) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(dets))
	}

	car := dets[0]

	if car.Label != "car" || car.Class != 7 {
		t.Errorf("expected car class 7, got %s class %d", car.Label, car.Class)
	}

	expBox := BoxRect{Left: 70, Top: 80, Right: 210, Bottom: 160}

	if car.Box != expBox {
		t.Errorf("expected box %+v, got %+v", expBox, car.Box)
	}

	bike := dets[1]
	expBox = BoxRect{Left: 0, Top: 200, Right: 700, Bottom: 400}

	if bike.Label != "motorbike" || bike.Box != expBox {
		t.Errorf("expected motorbike box %+v, got %s %+v", expBox, bike.Label, bike.Box)
	}

	if car.ID != 1 || bike.ID != 2 {
		t.Errorf("expected ids 1 and 2, got %d and %d", car.ID, bike.ID)
	}

	// ids continue across frames
	dets = ssd.DetectObjects(out[:7], 700, 400)

	if len(dets) != 1 || dets[0].ID != 3 {
		t.Errorf("expected single detection with id 3, got %+v", dets)
	}
}

func TestMobileNetSSDTruncatedBlob(t *testing.T) {

	ssd := NewMobileNetSSD(MobileNetSSDVOCParams())

	dets := ssd.DetectObjects([]float32{0, 7, 0.9, 0.1}, 100, 100)

	if len(dets) != 0 {
		t.Errorf("expected no detections from partial row, got %d", len(dets))
	}
}

func TestBoxRectCenter(t *testing.T) {

	tests := []struct {
		box  BoxRect
		x, y int
	}{
		{BoxRect{Left: 0, Right: 10, Top: 0, Bottom: 10}, 5, 5},
		{BoxRect{Left: 1, Right: 4, Top: 3, Bottom: 8}, 2, 5},
	}

	for _, tc := range tests {
		x, y := tc.box.Center()

		if x != tc.x || y != tc.y {
			t.Errorf("expected center (%d,%d), got (%d,%d)", tc.x, tc.y, x, y)
		}
	}
}

func TestLoadLabels(t *testing.T) {

	file := filepath.Join(t.TempDir(), "labels.txt")

	if err := os.WriteFile(file, []byte("background\n car \nmotorbike\n\n"), 0o644); err != nil {
		t.Fatalf("error writing labels: %v", err)
	}

	labels, err := LoadLabels(file)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := []string{"background", "car", "motorbike"}

	if len(labels) != len(exp) {
		t.Fatalf("expected %d labels, got %d", len(exp), len(labels))
	}

	for i := range exp {
		if labels[i] != exp[i] {
			t.Errorf("expected label %q, got %q", exp[i], labels[i])
		}
	}

	if _, err := LoadLabels(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMobileNetSSDBoxThresholdFloor(t *testing.T) {

	// motorbike row with confidence 0.15
	out := []float32{0, 14, 0.15, 0.1, 0.1, 0.2, 0.2}

	ssd := NewMobileNetSSD(MobileNetSSDVOCParams())

	if got := ssd.DetectObjects(out, 700, 400); len(got) != 0 {
		t.Errorf("expected default threshold to drop the row, got %d detections", len(got))
	}

	// floor lowered to a category threshold of 0.1
	params := MobileNetSSDVOCParams()
	params.BoxThreshold = 0.1
	ssd = NewMobileNetSSD(params)

	got := ssd.DetectObjects(out, 700, 400)

	if len(got) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(got))
	}

	if got[0].Label != "motorbike" || got[0].Probability != 0.15 {
		t.Errorf("expected motorbike at 0.15, got %s at %v", got[0].Label, got[0].Probability)
	}
}
