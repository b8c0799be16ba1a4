package progress

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/stream"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sample(iteration int, best float64) stream.ProgressData {
	return stream.ProgressData{Iteration: iteration, BestDistance: best, CandidateDistance: best}
}

func TestAggregatorRunningBestNeverIncreases(t *testing.T) {
	t.Parallel()

	agg := New()
	var got []float64
	for i, best := range []float64{12.0, 11.5, 11.5, 9.8, 10.4} {
		agg.Observe(sample(i+1, best))
		got = append(got, agg.Snapshot().BestDistance)
	}

	assert.Equal(t, []float64{12.0, 11.5, 11.5, 9.8, 9.8}, got)
}

func TestAggregatorTimelineBounded(t *testing.T) {
	t.Parallel()

	agg := New()
	for i := 1; i <= 20; i++ {
		agg.Observe(sample(i, float64(100-i)))
	}

	snap := agg.Snapshot()
	require.Len(t, snap.Timeline, DefaultCapacity)
	for i, p := range snap.Timeline {
		assert.Equal(t, 20-i, p.Iteration, "timeline[%d]", i)
	}
	assert.Equal(t, 20, snap.ExploredSolutions)
}

func TestAggregatorTimelineBeforeFull(t *testing.T) {
	t.Parallel()

	agg := New(WithCapacity(4))
	agg.Observe(sample(1, 10))
	agg.Observe(sample(2, 9))

	snap := agg.Snapshot()
	require.Len(t, snap.Timeline, 2)
	assert.Equal(t, 2, snap.Timeline[0].Iteration)
	assert.Equal(t, 1, snap.Timeline[1].Iteration)
}

func TestAggregatorCounters(t *testing.T) {
	t.Parallel()

	agg := New()
	agg.Observe(stream.ProgressData{Iteration: 1, CandidateDistance: 14, BestDistance: 14, AcceptedImprovement: true})
	agg.Observe(stream.ProgressData{Iteration: 2, CandidateDistance: 15, BestDistance: 14})
	agg.Observe(stream.ProgressData{Iteration: 3, CandidateDistance: 12, BestDistance: 12, AcceptedImprovement: true})
	// accepted but not lower than the best accepted so far
	agg.Observe(stream.ProgressData{Iteration: 4, CandidateDistance: 12, BestDistance: 12, AcceptedImprovement: true})

	snap := agg.Snapshot()
	assert.Equal(t, 4, snap.ExploredSolutions)
	assert.Equal(t, 3, snap.AcceptedImprovements)
	assert.Equal(t, 3, snap.BestIteration)
	assert.InDelta(t, 0.75, snap.AcceptanceRate, 1e-9)
	assert.True(t, snap.HasBest)
	assert.Equal(t, 12.0, snap.BestDistance)
}

func TestAggregatorEmpty(t *testing.T) {
	t.Parallel()

	snap := New().Snapshot()
	assert.Empty(t, snap.Timeline)
	assert.False(t, snap.HasBest)
	assert.Equal(t, -1, snap.BestIteration)
	assert.Zero(t, snap.AcceptanceRate)
	assert.Zero(t, snap.Runtime)
}

func TestAggregatorRuntime(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	agg := New(WithClock(clock.Now))

	agg.Started(clock.Now())
	clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, agg.Snapshot().Runtime)

	// runtime advances without any events
	clock.Advance(time.Second)
	assert.Equal(t, 2500*time.Millisecond, agg.Snapshot().Runtime)

	agg.Stop(clock.Now())
	clock.Advance(time.Minute)
	assert.Equal(t, 2500*time.Millisecond, agg.Snapshot().Runtime)
}

func TestAggregatorStartedResets(t *testing.T) {
	t.Parallel()

	agg := New()
	agg.Observe(sample(1, 5))
	agg.Started(time.Now())

	snap := agg.Snapshot()
	assert.Empty(t, snap.Timeline)
	assert.Zero(t, snap.ExploredSolutions)
	assert.False(t, snap.HasBest)
}

func TestAggregatorSnapshotIsCopy(t *testing.T) {
	t.Parallel()

	agg := New()
	agg.Observe(sample(1, 5))
	snap := agg.Snapshot()
	snap.Timeline[0].Iteration = 99

	assert.Equal(t, 1, agg.Snapshot().Timeline[0].Iteration)
}

func TestAggregatorImplementsSink(t *testing.T) {
	t.Parallel()

	var _ stream.ProgressSink = New()
}
