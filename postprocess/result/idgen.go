package result

import "sync/atomic"

// IDGenerator hands out incremental ID numbers starting at 1.  An ID is
// never handed out twice for the lifetime of the generator
type IDGenerator struct {
	id atomic.Int64
}

// NewIDGenerator returns a generator whose first ID is 1
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GetNext returns the next incremental ID
func (g *IDGenerator) GetNext() int64 {
	return g.id.Add(1)
}

// Last returns the most recent ID handed out, or 0 if none have been
func (g *IDGenerator) Last() int64 {
	return g.id.Load()
}
