package destruction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenacore/server/internal/mapmodel"
)

func testModel(t *testing.T, material mapmodel.Material, maxHealth int) *mapmodel.Model {
	t.Helper()
	model, err := mapmodel.Load(mapmodel.MapDescriptor{
		Width: 480, Height: 270,
		Walls: []mapmodel.WallDescriptor{
			{Rect: mapmodel.Rect{X: 100, Y: 100, W: 50, H: 10}, Material: material, MaxSliceHealth: maxHealth},
		},
	})
	require.NoError(t, err)
	return model
}

func TestApplyDamageReducesSliceHealth(t *testing.T) {
	model := testModel(t, mapmodel.MaterialWood, 100)
	e := New(model)

	res := e.ApplyDamage(0, 0, 40, "player-1")
	assert.False(t, res.Destroyed)
	assert.Equal(t, 60, res.RemainingHealth)
	require.Len(t, res.Events, 1)
	assert.Equal(t, EventWallDamaged, res.Events[0].Kind)
}

func TestApplyDamageDestroysSliceAtZeroHealth(t *testing.T) {
	model := testModel(t, mapmodel.MaterialWood, 30)
	e := New(model)

	res := e.ApplyDamage(0, 0, 50, "player-1")
	assert.True(t, res.Destroyed)
	assert.Equal(t, 0, res.RemainingHealth)
	require.Len(t, res.Events, 2)
	assert.Equal(t, EventWallDamaged, res.Events[0].Kind)
	assert.Equal(t, EventWallDestroyed, res.Events[1].Kind)
}

func TestApplyDamageToDestroyedSliceIsIdempotent(t *testing.T) {
	model := testModel(t, mapmodel.MaterialWood, 10)
	e := New(model)

	e.ApplyDamage(0, 0, 10, "player-1")
	res := e.ApplyDamage(0, 0, 10, "player-1")
	assert.True(t, res.Destroyed)
	assert.Empty(t, res.Events, "damage to an already-destroyed slice must emit no further events")
}

func TestApplyDamageUnknownWallIsNoop(t *testing.T) {
	model := testModel(t, mapmodel.MaterialWood, 10)
	e := New(model)

	res := e.ApplyDamage(999, 0, 10, "player-1")
	assert.Equal(t, Result{}, res)
}

func TestMaterialAllowsBlocksBulletsOnConcreteAndMetal(t *testing.T) {
	assert.False(t, MaterialAllows(mapmodel.MaterialConcrete, DamageCategoryBullet))
	assert.False(t, MaterialAllows(mapmodel.MaterialMetal, DamageCategoryBullet))
	assert.True(t, MaterialAllows(mapmodel.MaterialWood, DamageCategoryBullet))
	assert.True(t, MaterialAllows(mapmodel.MaterialGlass, DamageCategoryBullet))
}

func TestMaterialAllowsExplosivesRegardlessOfMaterial(t *testing.T) {
	assert.True(t, MaterialAllows(mapmodel.MaterialConcrete, DamageCategoryExplosive))
	assert.True(t, MaterialAllows(mapmodel.MaterialMetal, DamageCategoryExplosive))
}

func TestApplyExplosionDamagesIntersectingSlicesWithFalloff(t *testing.T) {
	model := testModel(t, mapmodel.MaterialWood, 100)
	e := New(model)

	events := e.ApplyExplosionAt(mapmodel.Vector2{X: 125, Y: 105}, 80, 100, "player-1")
	assert.NotEmpty(t, events, "a blast centered on the wall should damage at least one slice")

	w := model.Walls[0]
	destroyedOrDamaged := false
	for _, h := range w.SliceHealth {
		if h < 100 {
			destroyedOrDamaged = true
		}
	}
	assert.True(t, destroyedOrDamaged)
}

func TestApplyExplosionFarAwayDoesNothing(t *testing.T) {
	model := testModel(t, mapmodel.MaterialWood, 100)
	e := New(model)

	events := e.ApplyExplosionAt(mapmodel.Vector2{X: 400, Y: 250}, 5, 100, "player-1")
	assert.Empty(t, events)
}
