package vision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arenacore/server/internal/mapmodel"
)

func TestCacheIsNotReusableBeforeFirstStore(t *testing.T) {
	c := NewCache()
	assert.False(t, c.Reusable(mapmodel.Vector2{}, mapmodel.Vector2{X: 1}, 0, time.Now()))
}

func TestCacheReusableForIdenticalPoseAndEpoch(t *testing.T) {
	c := NewCache()
	now := time.Now()
	pos := mapmodel.Vector2{X: 10, Y: 10}
	aim := mapmodel.Vector2{X: 1, Y: 0}

	c.Store(pos, aim, 1, now, Result{})
	assert.True(t, c.Reusable(pos, aim, 1, now.Add(10*time.Millisecond)))
}

func TestCacheInvalidatedByMovementBeyondEpsilon(t *testing.T) {
	c := NewCache()
	now := time.Now()
	aim := mapmodel.Vector2{X: 1, Y: 0}

	c.Store(mapmodel.Vector2{X: 10, Y: 10}, aim, 1, now, Result{})
	moved := mapmodel.Vector2{X: 13, Y: 10} // 3px, beyond the 2px tolerance
	assert.False(t, c.Reusable(moved, aim, 1, now))
}

func TestCacheToleratesSubEpsilonMovement(t *testing.T) {
	c := NewCache()
	now := time.Now()
	aim := mapmodel.Vector2{X: 1, Y: 0}

	c.Store(mapmodel.Vector2{X: 10, Y: 10}, aim, 1, now, Result{})
	moved := mapmodel.Vector2{X: 11, Y: 10} // 1px, within tolerance
	assert.True(t, c.Reusable(moved, aim, 1, now))
}

func TestCacheInvalidatedByWallEpochBump(t *testing.T) {
	c := NewCache()
	now := time.Now()
	pos := mapmodel.Vector2{X: 10, Y: 10}
	aim := mapmodel.Vector2{X: 1, Y: 0}

	c.Store(pos, aim, 1, now, Result{})
	assert.False(t, c.Reusable(pos, aim, 2, now), "a wall-damage epoch bump must invalidate every cached player")
}

func TestCacheInvalidatedByAge(t *testing.T) {
	c := NewCache()
	now := time.Now()
	pos := mapmodel.Vector2{X: 10, Y: 10}
	aim := mapmodel.Vector2{X: 1, Y: 0}

	c.Store(pos, aim, 1, now, Result{})
	assert.False(t, c.Reusable(pos, aim, 1, now.Add(150*time.Millisecond)))
}

func TestCacheInvalidatedByRotationBeyondEpsilon(t *testing.T) {
	c := NewCache()
	now := time.Now()
	pos := mapmodel.Vector2{X: 10, Y: 10}

	c.Store(pos, mapmodel.Vector2{X: 1, Y: 0}, 1, now, Result{})
	rotated := mapmodel.Vector2{X: 0, Y: 1} // 90 degrees away
	assert.False(t, c.Reusable(pos, rotated, 1, now))
}
