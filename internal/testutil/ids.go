package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator hands out run IDs of the form "<prefix>-0001",
// "<prefix>-0002", ... so ledger contents are reproducible across test runs.
//
// Thread-safety: SequentialIDGenerator is safe for concurrent use.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator. An empty prefix means "run".
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
