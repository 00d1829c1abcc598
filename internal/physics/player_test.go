package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arenacore/server/internal/mapmodel"
)

func TestResolveMovementFreeSpaceMovesFully(t *testing.T) {
	model := wallModel(t)
	pos := mapmodel.Vector2{X: 0, Y: 0}
	next := ResolveMovement(model, pos, mapmodel.Vector2{X: 5, Y: 5})
	assert.Equal(t, mapmodel.Vector2{X: 5, Y: 5}, next)
}

func TestResolveMovementStopsAtWallOnXAxis(t *testing.T) {
	model := wallModel(t)
	// Player approaching the wall's left edge (x=100) from the left, aligned
	// in Y with the wall (y in [100,140)).
	pos := mapmodel.Vector2{X: 80, Y: 110}
	next := ResolveMovement(model, pos, mapmodel.Vector2{X: 30, Y: 0})
	assert.Equal(t, float32(90), next.X, "movement into the wall must clamp to its surface")
	assert.Equal(t, float32(110), next.Y)
}

func TestResolveMovementSlidesAlongWallIndependently(t *testing.T) {
	model := wallModel(t)
	pos := mapmodel.Vector2{X: 80, Y: 110}
	// X axis blocked by the wall, Y axis free: the player should still move
	// fully along Y while X clamps.
	next := ResolveMovement(model, pos, mapmodel.Vector2{X: 30, Y: 20})
	assert.Equal(t, float32(90), next.X)
	assert.Equal(t, float32(130), next.Y)
}

func TestIsSpawnBlockedInsideWall(t *testing.T) {
	model := wallModel(t)
	assert.True(t, IsSpawnBlocked(model, mapmodel.Vector2{X: 110, Y: 110}))
}

func TestIsSpawnBlockedOriginIsAlwaysForbidden(t *testing.T) {
	model := wallModel(t)
	assert.True(t, IsSpawnBlocked(model, mapmodel.Vector2{X: 0, Y: 0}))
}

func TestIsSpawnBlockedOpenAreaIsFree(t *testing.T) {
	model := wallModel(t)
	assert.False(t, IsSpawnBlocked(model, mapmodel.Vector2{X: 300, Y: 200}))
}

func TestSanitizeSpawnFallsBackOnBlockedSpawn(t *testing.T) {
	model := wallModel(t)
	sanitized := SanitizeSpawn(model, mapmodel.Vector2{X: 110, Y: 110}, mapmodel.TeamRed)
	assert.Equal(t, mapmodel.DefaultFallbackSpawn(mapmodel.TeamRed), sanitized)
}

func TestSanitizeSpawnLeavesLegalSpawnUnchanged(t *testing.T) {
	model := wallModel(t)
	pos := mapmodel.Vector2{X: 300, Y: 200}
	assert.Equal(t, pos, SanitizeSpawn(model, pos, mapmodel.TeamBlue))
}
