package traffic

import (
	"errors"
	"fmt"
)

// ErrInvalidHour is returned for an hour of day outside 0 to 23
var ErrInvalidHour = errors.New("invalid hour")

// ErrInvalidThresholds is returned when count level boundaries are unusable
var ErrInvalidThresholds = errors.New("invalid thresholds")

// CountLevel is a window's vehicle count discretised into bands
type CountLevel int

const (
	// Low is a count below Thresholds.Low
	Low CountLevel = iota
	// Medium is a count from Thresholds.Low up to but excluding Thresholds.Medium
	Medium
	// High is any count from Thresholds.Medium upward
	High
)

// String returns the level name
func (l CountLevel) String() string {
	switch l {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("CountLevel(%d)", int(l))
	}
}

// HourPeriod is the time of day category used by the Bayesian classifier
type HourPeriod int

const (
	// Normal is any hour outside rush hour
	Normal HourPeriod = iota
	// Peak covers 07:00-09:00 and 17:00-19:00
	Peak
)

// String returns the period name
func (p HourPeriod) String() string {
	switch p {
	case Normal:
		return "normal"
	case Peak:
		return "peak"
	default:
		return fmt.Sprintf("HourPeriod(%d)", int(p))
	}
}

// PeriodOf returns the period the hour of day falls in
func PeriodOf(hour int) (HourPeriod, error) {

	if hour < 0 || hour > 23 {
		return Normal, fmt.Errorf("%w: %d", ErrInvalidHour, hour)
	}

	if (hour >= 7 && hour < 9) || (hour >= 17 && hour < 19) {
		return Peak, nil
	}

	return Normal, nil
}

// Thresholds are the count boundaries between levels
type Thresholds struct {
	// Low is the first count considered Medium
	Low int `json:"low"`
	// Medium is the first count considered High
	Medium int `json:"medium"`
}

// DefaultThresholds returns boundaries of 5 and 12 vehicles per window
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 5, Medium: 12}
}

// Validate checks 0 < Low < Medium
func (t Thresholds) Validate() error {

	if t.Low <= 0 || t.Medium <= t.Low {
		return fmt.Errorf("%w: need 0 < low < medium, got low=%d medium=%d",
			ErrInvalidThresholds, t.Low, t.Medium)
	}

	return nil
}

// Level returns the band the count falls in
func (t Thresholds) Level(count int) CountLevel {

	switch {
	case count < t.Low:
		return Low
	case count < t.Medium:
		return Medium
	default:
		return High
	}
}
