// Package clock provides an injectable time source for the edge update
// timestamps the storage backends carry (spec §9: "Timestamps").
//
// This mirrors the teacher's own CreatedAt/UpdatedAt/LastAccessed
// bookkeeping fields on storage.Node/storage.Edge, which are likewise
// wall-clock-derived metadata rather than domain data — except here the
// clock is a seam tests can replace, so snapshot-determinism tests never
// depend on wall-clock time.
package clock

import "time"

// Clock is a source of the current time.
type Clock interface {
	Now() time.Time
}

// System is the production Clock, backed by time.Now.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time { return time.Now() }

// Fixed is a Clock that always returns the same instant. Useful for tests
// that need byte-identical snapshot images across runs.
type Fixed struct {
	At time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.At }

// Stepped is a Clock that advances by a fixed step on every call, useful for
// tests that need distinct-but-deterministic timestamps.
type Stepped struct {
	current time.Time
	step    time.Duration
}

// NewStepped returns a Stepped clock starting at start and advancing by step
// on every Now() call (the first call returns start itself).
func NewStepped(start time.Time, step time.Duration) *Stepped {
	return &Stepped{current: start.Add(-step), step: step}
}

// Now advances and returns the next instant.
func (s *Stepped) Now() time.Time {
	s.current = s.current.Add(s.step)
	return s.current
}
