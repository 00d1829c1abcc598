package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenacore/server/internal/mapmodel"
)

func wallModel(t *testing.T) *mapmodel.Model {
	t.Helper()
	model, err := mapmodel.Load(mapmodel.MapDescriptor{
		Width: 480, Height: 270,
		Walls: []mapmodel.WallDescriptor{
			{Rect: mapmodel.Rect{X: 100, Y: 100, W: 40, H: 40}, Material: mapmodel.MaterialConcrete, MaxSliceHealth: 100},
		},
	})
	require.NoError(t, err)
	return model
}

func TestSegmentVsRectHitsThroughCenter(t *testing.T) {
	rect := mapmodel.Rect{X: 10, Y: 10, W: 10, H: 10}
	tVal, hit := SegmentVsRect(0, 15, 30, 15, rect)
	assert.True(t, hit)
	assert.InDelta(t, 1.0/3.0, tVal, 0.01)
}

func TestSegmentVsRectMissesParallelLine(t *testing.T) {
	rect := mapmodel.Rect{X: 10, Y: 10, W: 10, H: 10}
	_, hit := SegmentVsRect(0, 0, 30, 0, rect)
	assert.False(t, hit)
}

func TestPlayerAABBUsesTopLeftConvention(t *testing.T) {
	box := PlayerAABB(mapmodel.Vector2{X: 5, Y: 7})
	assert.Equal(t, mapmodel.Rect{X: 5, Y: 7, W: PlayerSize, H: PlayerSize}, box)
}
