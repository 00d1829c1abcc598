package vision

import (
	"math"
	"time"

	"github.com/arenacore/server/internal/mapmodel"
)

// Cache holds the last computed vision result for one player and the
// conditions under which it is still valid: the player has not moved more
// than 2px or rotated more than 5 degrees since the last computation, no
// wall has been damaged in the lobby since, and the result is younger than
// 100ms. Wall damage must invalidate every player's cache, not only the
// damaging player's — callers do this by bumping a lobby-wide epoch counter
// and comparing it here rather than tracking per-player dirty flags.
type Cache struct {
	MoveEpsilon float32
	RotEpsilonDeg float32
	MaxAge      time.Duration

	valid       bool
	lastPos     mapmodel.Vector2
	lastAimDeg  float64
	computedAt  time.Time
	wallEpoch   uint64
	result      Result
}

// NewCache builds a cache using the spec's fixed tolerances.
func NewCache() *Cache {
	return &Cache{
		MoveEpsilon:   2,
		RotEpsilonDeg: 5,
		MaxAge:        100 * time.Millisecond,
	}
}

// Reusable reports whether the cached result may be reused for pos/aimDir at
// the given wall-damage epoch and time, per the spec's cache contract.
func (c *Cache) Reusable(pos, aimDir mapmodel.Vector2, wallEpoch uint64, now time.Time) bool {
	if !c.valid {
		return false
	}
	if wallEpoch != c.wallEpoch {
		return false
	}
	if now.Sub(c.computedAt) > c.MaxAge {
		return false
	}
	dx := pos.X - c.lastPos.X
	dy := pos.Y - c.lastPos.Y
	if float32(math.Sqrt(float64(dx*dx+dy*dy))) > c.MoveEpsilon {
		return false
	}
	aimDeg := math.Atan2(float64(aimDir.Y), float64(aimDir.X)) * 180 / math.Pi
	if angleDiffDeg(aimDeg*math.Pi/180, c.lastAimDeg*math.Pi/180) > float64(c.RotEpsilonDeg) ||
		angleDiffDeg(aimDeg*math.Pi/180, c.lastAimDeg*math.Pi/180) < -float64(c.RotEpsilonDeg) {
		return false
	}
	return true
}

// Store records a freshly computed result as the new cache baseline.
func (c *Cache) Store(pos, aimDir mapmodel.Vector2, wallEpoch uint64, now time.Time, result Result) {
	c.valid = true
	c.lastPos = pos
	c.lastAimDeg = math.Atan2(float64(aimDir.Y), float64(aimDir.X)) * 180 / math.Pi
	c.wallEpoch = wallEpoch
	c.computedAt = now
	c.result = result
}

// Result returns the cached result; callers must only call this after
// Reusable returned true.
func (c *Cache) Result() Result {
	return c.result
}
