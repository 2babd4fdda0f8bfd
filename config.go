package trafficcount

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/swdee/go-trafficcount/tracker"
	"github.com/swdee/go-trafficcount/traffic"
)

// ErrInvalidConfig is returned when a Config fails validation
var ErrInvalidConfig = errors.New("invalid config")

// maxConfigSize is the largest config file LoadConfig will read
const maxConfigSize = 1 * 1024 * 1024

// Duration is a time.Duration encoded in JSON as a duration string, eg: "10s"
type Duration struct {
	time.Duration
}

// MarshalJSON encodes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a duration string
func (d *Duration) UnmarshalJSON(b []byte) error {

	var s string

	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"10s\": %w", err)
	}

	v, err := time.ParseDuration(s)

	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	d.Duration = v
	return nil
}

// Config holds the counting pipeline settings
type Config struct {
	// Classes are the tracked categories and their parameters.  When given
	// in a config file the whole set replaces the defaults
	Classes tracker.Params `json:"classes,omitempty"`
	// Window is the length of each counting window
	Window Duration `json:"window"`
	// Thresholds are the count boundaries for the classifiers
	Thresholds traffic.Thresholds `json:"thresholds"`
	// CPT is the Bayesian probability table as six rows of P(light),
	// P(moderate), P(heavy) ordered low/normal, low/peak, medium/normal,
	// medium/peak, high/normal, high/peak.  Empty uses traffic.DefaultCPT
	CPT [][3]float64 `json:"cpt,omitempty"`
	// Region is an optional counting zone polygon in frame pixels
	Region []tracker.Point `json:"region,omitempty"`
	// RegionMargin grows the counting zone by this many pixels
	RegionMargin float64 `json:"region_margin,omitempty"`
	// Hour fixes the hour of day given to the Bayesian classifier.  When
	// nil the hour of the window's closing time is used
	Hour *int `json:"hour,omitempty"`
}

// DefaultConfig returns a Config with:
// - Classes: tracker.DefaultParams (car and motorbike)
// - Window: 10 seconds
// - Thresholds: 5 and 12 vehicles
// - Default Bayesian probability table, no counting region
func DefaultConfig() Config {
	return Config{
		Classes:    tracker.DefaultParams(),
		Window:     Duration{10 * time.Second},
		Thresholds: traffic.DefaultThresholds(),
	}
}

// LoadConfig reads a JSON config file.  Settings missing from the file keep
// their DefaultConfig values
func LoadConfig(path string) (Config, error) {

	cleanPath := filepath.Clean(path)

	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Config{}, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)

	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config file: %w", err)
	}

	if fileInfo.Size() > maxConfigSize {
		return Config{}, fmt.Errorf("config file too large: %d bytes (max %d)",
			fileInfo.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)

	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Classes = nil

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if cfg.Classes == nil {
		cfg.Classes = tracker.DefaultParams()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks every setting, wrapping the cause in ErrInvalidConfig
func (c Config) Validate() error {

	if err := c.Classes.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.Window.Duration <= 0 {
		return fmt.Errorf("%w: window must be positive, got %s", ErrInvalidConfig, c.Window)
	}

	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if _, err := c.cpt(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if _, err := c.region(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.Hour != nil {
		if _, err := traffic.PeriodOf(*c.Hour); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	return nil
}

// ValidateLabels checks every configured category is one the detector can
// produce, as a category missing from labels would never be counted
func (c Config) ValidateLabels(labels []string) error {

	known := make(map[string]bool, len(labels))

	for _, l := range labels {
		known[l] = true
	}

	for _, label := range c.Classes.Labels() {
		if !known[label] {
			return fmt.Errorf("%w: category %q is not a detector label", ErrInvalidConfig, label)
		}
	}

	return nil
}

// cpt returns the configured probability table or the default one
func (c Config) cpt() (*traffic.CPT, error) {

	if len(c.CPT) == 0 {
		return traffic.DefaultCPT(), nil
	}

	return traffic.NewCPTFromRows(c.CPT)
}

// region returns the configured counting zone, nil when none is set
func (c Config) region() (*tracker.Region, error) {

	if len(c.Region) == 0 {
		return nil, nil
	}

	return tracker.NewRegion(c.Region, c.RegionMargin)
}
