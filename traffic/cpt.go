package traffic

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrMalformedCPT is returned when a conditional probability table is
// incomplete or its rows are not probability distributions
var ErrMalformedCPT = errors.New("malformed conditional probability table")

// cptTolerance is the allowed deviation of a row sum from 1
const cptTolerance = 1e-6

// cptRows is the number of (level, period) combinations
const cptRows = 3 * 2

// CPTKey identifies a row of the conditional probability table
type CPTKey struct {
	Level  CountLevel
	Period HourPeriod
}

// CPT is the conditional probability table P(State | CountLevel, HourPeriod).
// Rows are ordered low/normal, low/peak, medium/normal, medium/peak,
// high/normal, high/peak and columns are Light, Moderate, Heavy
type CPT struct {
	dense *mat.Dense
}

// row returns the matrix row for a level and period
func row(level CountLevel, period HourPeriod) int {
	return int(level)*2 + int(period)
}

// DefaultCPT returns the table tuned for urban road traffic
func DefaultCPT() *CPT {
	return &CPT{dense: mat.NewDense(cptRows, 3, []float64{
		0.90, 0.09, 0.01, // low, normal
		0.60, 0.35, 0.05, // low, peak
		0.20, 0.70, 0.10, // medium, normal
		0.05, 0.65, 0.30, // medium, peak
		0.01, 0.39, 0.60, // high, normal
		0.01, 0.19, 0.80, // high, peak
	})}
}

// NewCPT builds a table from a distribution per (level, period).  Every
// combination must be present
func NewCPT(rows map[CPTKey][3]float64) (*CPT, error) {

	dense := mat.NewDense(cptRows, 3, nil)

	for _, level := range []CountLevel{Low, Medium, High} {
		for _, period := range []HourPeriod{Normal, Peak} {

			dist, ok := rows[CPTKey{Level: level, Period: period}]

			if !ok {
				return nil, fmt.Errorf("%w: missing row %s/%s", ErrMalformedCPT, level, period)
			}

			dense.SetRow(row(level, period), dist[:])
		}
	}

	c := &CPT{dense: dense}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// NewCPTFromRows builds a table from six rows given in table order
func NewCPTFromRows(rows [][3]float64) (*CPT, error) {

	if len(rows) != cptRows {
		return nil, fmt.Errorf("%w: expected %d rows, got %d", ErrMalformedCPT, cptRows, len(rows))
	}

	dense := mat.NewDense(cptRows, 3, nil)

	for i, r := range rows {
		dense.SetRow(i, r[:])
	}

	c := &CPT{dense: dense}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Rows returns the table in row order
func (c *CPT) Rows() [][3]float64 {

	out := make([][3]float64, cptRows)

	for i := range out {
		copy(out[i][:], mat.Row(nil, i, c.dense))
	}

	return out
}

// Distribution returns P(Light), P(Moderate), P(Heavy) for a level and period
func (c *CPT) Distribution(level CountLevel, period HourPeriod) []float64 {
	return mat.Row(nil, row(level, period), c.dense)
}

// Validate checks every row is a probability distribution
func (c *CPT) Validate() error {

	if c == nil || c.dense == nil {
		return fmt.Errorf("%w: table is empty", ErrMalformedCPT)
	}

	if r, cols := c.dense.Dims(); r != cptRows || cols != 3 {
		return fmt.Errorf("%w: expected %dx3, got %dx%d", ErrMalformedCPT, cptRows, r, cols)
	}

	for i := 0; i < cptRows; i++ {

		dist := mat.Row(nil, i, c.dense)

		for _, p := range dist {
			if math.IsNaN(p) || p < 0 {
				return fmt.Errorf("%w: row %d has invalid probability %v", ErrMalformedCPT, i, p)
			}
		}

		if sum := floats.Sum(dist); math.Abs(sum-1) > cptTolerance {
			return fmt.Errorf("%w: row %d sums to %v", ErrMalformedCPT, i, sum)
		}
	}

	return nil
}
