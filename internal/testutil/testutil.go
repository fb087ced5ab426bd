// Package testutil provides deterministic helpers shared by tests.
package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/strataops/backsim/internal/model"
)

// FixedSeed is the PRNG seed used by deterministic test scenarios.
const FixedSeed int64 = 42

// SeedPtr returns a pointer to the given seed for request literals.
func SeedPtr(seed int64) *int64 {
	return &seed
}

// FixedClock is a stopped wall clock for engine.WithNowFunc.
//
// Pinning the clock zeroes execution durations and makes the derived seed of
// an unseeded request stable, so responses compare byte-identically across
// runs.
type FixedClock struct {
	now time.Time
}

// NewFixedClock creates a clock stopped at the given instant.
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

// Now returns the pinned instant. Pass as engine.WithNowFunc(c.Now).
func (c *FixedClock) Now() time.Time {
	return c.now
}

// FixedRunIDGenerator returns run IDs in a fixed sequence.
//
// This enables deterministic store tests and golden comparison: the same
// scenario with the same generator produces identical run rows.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedRunIDGenerator struct {
	mu   sync.Mutex
	next int
}

// NewFixedRunIDGenerator creates a generator starting at run-000001.
func NewFixedRunIDGenerator() *FixedRunIDGenerator {
	return &FixedRunIDGenerator{}
}

// NewRunID returns the next ID in the sequence.
//
// Implements store.RunIDGenerator.
func (g *FixedRunIDGenerator) NewRunID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("run-%06d", g.next), nil
}

// Date is a short date constructor for test tables.
func Date(year int, month time.Month, day int) model.Date {
	return model.NewDate(year, month, day)
}

// DatePtr returns a pointer to the given date for item literals.
func DatePtr(d model.Date) *model.Date {
	return &d
}

// IntPtr returns a pointer to n for optional capacity fields.
func IntPtr(n int) *int {
	return &n
}

// Item builds a pending backlog item with the fields tests care about most.
// Effort defaults to the midpoint of the complexity's range.
func Item(id string, priority model.Priority, complexity model.Complexity, created model.Date) model.BacklogItem {
	min, max := complexity.EffortRange()
	return model.BacklogItem{
		ID:                     id,
		ItemType:               "work_item",
		Priority:               priority,
		OriginalPriority:       priority,
		Complexity:             complexity,
		EstimatedEffortMinutes: (min + max) / 2,
		CreatedDate:            created,
		Status:                 model.StatusPending,
	}
}
