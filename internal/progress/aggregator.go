// Package progress folds solver progress samples into display state.
package progress

import (
	"math"
	"sync"
	"time"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/stream"
)

// DefaultCapacity is the number of recent samples kept in the timeline.
const DefaultCapacity = 12

// Snapshot is a read-only view of the aggregated state.
type Snapshot struct {
	// Timeline holds the most recent samples, newest first.
	Timeline []stream.ProgressData

	// BestDistance is the lowest best-known distance reported so far.
	// It is only meaningful when HasBest is true.
	BestDistance float64
	HasBest      bool

	ExploredSolutions    int
	AcceptedImprovements int

	// BestIteration is the iteration of the lowest accepted improvement,
	// or -1 when no improvement has been accepted.
	BestIteration int

	// Runtime is the wall clock time since Started.
	Runtime time.Duration

	// AcceptanceRate is AcceptedImprovements / ExploredSolutions.
	AcceptanceRate float64
}

// Aggregator maintains running statistics over one submission. It
// implements stream.ProgressSink. Observe is expected from a single
// goroutine; Snapshot may be called concurrently.
type Aggregator struct {
	capacity int
	now      func() time.Time

	mu sync.RWMutex

	// ring holds up to capacity samples; head is the slot of the oldest
	ring []stream.ProgressData
	head int

	best          float64
	hasBest       bool
	explored      int
	accepted      int
	bestAccepted  float64
	bestIteration int

	started time.Time
	stopped time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithCapacity sets the timeline size. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.capacity = n
		}
	}
}

// WithClock sets the time source used to compute runtime.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// New creates an empty Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.reset()
	return a
}

func (a *Aggregator) reset() {
	a.ring = make([]stream.ProgressData, 0, a.capacity)
	a.head = 0
	a.best = 0
	a.hasBest = false
	a.explored = 0
	a.accepted = 0
	a.bestAccepted = math.Inf(1)
	a.bestIteration = -1
	a.started = time.Time{}
	a.stopped = time.Time{}
}

// Started clears previous state and records when the request was issued.
func (a *Aggregator) Started(at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
	a.started = at
}

// Stop freezes the runtime at t. Samples observed afterwards are still
// counted.
func (a *Aggregator) Stop(t time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started.IsZero() && a.stopped.IsZero() {
		a.stopped = t
	}
}

// Observe folds one progress sample.
func (a *Aggregator) Observe(p stream.ProgressData) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.ring) < a.capacity {
		a.ring = append(a.ring, p)
	} else {
		a.ring[a.head] = p
		a.head = (a.head + 1) % a.capacity
	}

	if !a.hasBest || p.BestDistance < a.best {
		a.best = p.BestDistance
		a.hasBest = true
	}

	a.explored++
	if p.AcceptedImprovement {
		a.accepted++
		if p.CandidateDistance < a.bestAccepted {
			a.bestAccepted = p.CandidateDistance
			a.bestIteration = p.Iteration
		}
	}
}

// Snapshot returns the current state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n := len(a.ring)
	timeline := make([]stream.ProgressData, n)
	for i := 0; i < n; i++ {
		// newest is just before head in ring order
		timeline[i] = a.ring[(a.head+n-1-i)%n]
	}

	s := Snapshot{
		Timeline:             timeline,
		BestDistance:         a.best,
		HasBest:              a.hasBest,
		ExploredSolutions:    a.explored,
		AcceptedImprovements: a.accepted,
		BestIteration:        a.bestIteration,
	}
	if a.explored > 0 {
		s.AcceptanceRate = float64(a.accepted) / float64(a.explored)
	}

	switch {
	case a.started.IsZero():
	case !a.stopped.IsZero():
		s.Runtime = a.stopped.Sub(a.started)
	default:
		s.Runtime = a.now().Sub(a.started)
	}

	return s
}
