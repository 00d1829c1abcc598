package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arenacore/server/internal/mapmodel"
)

func TestUpdateGrenadeBouncesOffWall(t *testing.T) {
	model := wallModel(t)
	s := NewState(ProjectileGrenade, mapmodel.Vector2{X: 80, Y: 110}, mapmodel.Vector2{X: 200, Y: 0}, 3, 480, 270)

	events, alive := UpdateGrenade(model, s, 0.1, 0)
	assert.True(t, alive)
	assertions := assert.New(t)
	assertions.NotEmpty(events, "a grenade swept into the wall should register a bounce")
	assertions.Equal(uint32(0), events[0].WallID)
	assertions.True(s.Vel.X < 0, "velocity should reflect away from the wall")
}

func TestUpdateGrenadeRespectsCollisionCooldown(t *testing.T) {
	model := wallModel(t)
	s := NewState(ProjectileGrenade, mapmodel.Vector2{X: 80, Y: 110}, mapmodel.Vector2{X: 200, Y: 0}, 3, 480, 270)

	events, _ := UpdateGrenade(model, s, 0.1, 0)
	assert.NotEmpty(t, events)

	// Same wall struck again within the 100ms cooldown window should not
	// register a second bounce event.
	events2, _ := UpdateGrenade(model, s, 0.01, 0.01)
	assert.Empty(t, events2)
}

func TestUpdateGrenadeGoesOutOfBounds(t *testing.T) {
	model := wallModel(t)
	s := NewState(ProjectileGrenade, mapmodel.Vector2{X: 470, Y: 260}, mapmodel.Vector2{X: 1000, Y: 1000}, 3, 480, 270)
	_, alive := UpdateGrenade(model, s, 1.0, 0)
	assert.False(t, alive)
}

func TestUpdateLinearAdvancesAndDetectsOutOfBounds(t *testing.T) {
	s := NewState(ProjectileSmoke, mapmodel.Vector2{X: 0, Y: 0}, mapmodel.Vector2{X: 10, Y: 0}, 2, 480, 270)
	alive := UpdateLinear(s, 1.0)
	assert.True(t, alive)
	assert.Equal(t, float32(10), s.Pos.X)

	alive = UpdateLinear(s, 100.0)
	assert.False(t, alive)
}

func TestSweepExplodeOnImpactHitsIntactSlice(t *testing.T) {
	model := wallModel(t)
	hit := SweepExplodeOnImpact(model, mapmodel.Vector2{X: 80, Y: 110}, mapmodel.Vector2{X: 300, Y: 0}, 0.1)
	assert.True(t, hit.Hit)
	assert.Equal(t, uint32(0), hit.WallID)
}

func TestSweepExplodeOnImpactMissesWhenClear(t *testing.T) {
	model := wallModel(t)
	hit := SweepExplodeOnImpact(model, mapmodel.Vector2{X: 0, Y: 0}, mapmodel.Vector2{X: 0, Y: 300}, 0.1)
	assert.False(t, hit.Hit)
}
