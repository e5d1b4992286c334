// Package testutils provides deterministic generators and test doubles for promptdeck.
// The generators keep production formats while making test output reproducible.
package testutils

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// baseTime is the first timestamp handed out in test mode.
var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Generator hands out identifiers and timestamps. In test mode both are
// deterministic; otherwise it returns random UUIDs and the wall clock.
type Generator struct {
	testMode bool

	mu          sync.Mutex
	idCounter   uint64
	timeCounter int64
}

// NewGenerator creates a Generator.
func NewGenerator(testMode bool) *Generator {
	return &Generator{testMode: testMode}
}

// TestMode reports whether the generator is deterministic.
func (g *Generator) TestMode() bool {
	return g != nil && g.testMode
}

// NewID returns a UUID v4 string.
// In test mode: 00000001-0000-4000-8000-000000000001, 00000002-0000-4000-8000-000000000002, ...
func (g *Generator) NewID() string {
	if !g.TestMode() {
		return uuid.New().String()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.idCounter++
	return fmt.Sprintf("%08x-0000-4000-8000-%012x", g.idCounter, g.idCounter)
}

// Now returns the current time. In test mode each call is one second after the
// previous one, starting at 2025-01-01T00:00:01Z.
func (g *Generator) Now() time.Time {
	if !g.TestMode() {
		return time.Now()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.timeCounter++
	return baseTime.Add(time.Duration(g.timeCounter) * time.Second)
}

// Reset zeroes the deterministic counters.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.idCounter = 0
	g.timeCounter = 0
}
