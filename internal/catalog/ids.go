package catalog

import (
	"strconv"
	"sync"
	"time"
)

const (
	prefixExercise = "ex"
	prefixWorkout  = "w"
	prefixLog      = "log"
)

// IDGen derives entity ids from the current time in milliseconds. Ids are
// strictly increasing within a process, so two creations in the same
// millisecond still get distinct ids.
type IDGen struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGen returns a generator reading the wall clock.
func NewIDGen() *IDGen {
	return &IDGen{now: time.Now}
}

// Next returns prefix followed by the next timestamp value.
func (g *IDGen) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return prefix + strconv.FormatInt(ms, 10)
}

// NewLogID returns a fresh workout log id.
func (g *IDGen) NewLogID() string {
	return g.Next(prefixLog)
}
