package sim

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// NewIDGenerator creates an IDGenerator that generates globally unique IDs.
// Each simulation run owns its generator instance so that test runs do not
// share state.
func NewIDGenerator() IDGenerator {
	return &xidGenerator{}
}

// NewSequentialIDGenerator creates an IDGenerator that generates IDs in
// sequence, which keeps output deterministic across runs.
func NewSequentialIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

type xidGenerator struct{}

func (g *xidGenerator) Generate() string {
	return xid.New().String()
}

type sequentialIDGenerator struct {
	next uint64
}

func (g *sequentialIDGenerator) Generate() string {
	id := atomic.AddUint64(&g.next, 1)
	return fmt.Sprintf("%d", id)
}
