package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/mapmodel"
)

func inputAt(seq uint64, now time.Time) Input {
	return Input{Sequence: seq, Timestamp: now.UnixMilli()}
}

func TestInputQueueAcceptsMonotonicSequence(t *testing.T) {
	q := NewInputQueue(config.DefaultInput())
	now := time.Now()
	field := config.DefaultField()

	assert.True(t, q.Offer(inputAt(1, now), now, field))
	assert.True(t, q.Offer(inputAt(2, now), now, field))
	assert.Len(t, q.Drain(), 2)
}

func TestInputQueueRejectsSequenceRegressionBeyondTolerance(t *testing.T) {
	q := NewInputQueue(config.DefaultInput())
	now := time.Now()
	field := config.DefaultField()

	tolerance := config.DefaultInput().MaxSequenceRegression
	assert.True(t, q.Offer(inputAt(100, now), now, field))
	assert.False(t, q.Offer(inputAt(100-uint64(tolerance)-1, now), now, field))
}

func TestInputQueueAcceptsSmallOutOfOrderRegression(t *testing.T) {
	q := NewInputQueue(config.DefaultInput())
	now := time.Now()
	field := config.DefaultField()

	assert.True(t, q.Offer(inputAt(100, now), now, field))
	assert.True(t, q.Offer(inputAt(99, now), now, field), "reordered delivery within tolerance should be accepted")
}

func TestInputQueueRejectsExcessiveClockSkew(t *testing.T) {
	q := NewInputQueue(config.DefaultInput())
	now := time.Now()
	field := config.DefaultField()

	stale := Input{Sequence: 1, Timestamp: now.Add(-time.Hour).UnixMilli()}
	assert.False(t, q.Offer(stale, now, field))
}

func TestInputQueueDropsOldestOnOverflow(t *testing.T) {
	q := NewInputQueue(config.DefaultInput())
	now := time.Now()
	field := config.DefaultField()

	for i := uint64(1); i <= inputQueueCapacity+5; i++ {
		assert.True(t, q.Offer(inputAt(i, now), now, field))
	}

	drained := q.Drain()
	assert.Len(t, drained, inputQueueCapacity)
	assert.Equal(t, uint64(6), drained[0].Sequence, "the oldest frames should have been dropped, not the newest")
}

func TestNormalizeAimDownscalesScreenSpaceCoordinates(t *testing.T) {
	field := config.DefaultField()
	q := NewInputQueue(config.DefaultInput())
	now := time.Now()

	in := Input{Sequence: 1, Timestamp: now.UnixMilli(), Aim: mapmodel.Vector2{X: 1920, Y: 1080}}
	assert.True(t, q.Offer(in, now, field))

	drained := q.Drain()
	assert.InDelta(t, float32(field.Width), drained[0].Aim.X, 0.01)
	assert.InDelta(t, float32(field.Height), drained[0].Aim.Y, 0.01)
}

func TestNormalizeAimLeavesGameSpaceCoordinatesAlone(t *testing.T) {
	field := config.DefaultField()
	q := NewInputQueue(config.DefaultInput())
	now := time.Now()

	in := Input{Sequence: 1, Timestamp: now.UnixMilli(), Aim: mapmodel.Vector2{X: 100, Y: 50}}
	assert.True(t, q.Offer(in, now, field))

	drained := q.Drain()
	assert.Equal(t, float32(100), drained[0].Aim.X)
	assert.Equal(t, float32(50), drained[0].Aim.Y)
}
