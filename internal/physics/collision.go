// Package physics resolves player-vs-wall collision and projectile
// kinematics: swept AABB for players, reflection/raycast for projectiles.
package physics

import (
	"math"

	"github.com/arenacore/server/internal/mapmodel"
)

// PlayerSize is the fixed player collision AABB edge length.
const PlayerSize = 10

// PlayerAABB returns the 10x10 collision box centered-by-corner at pos (pos
// is the box's top-left, matching the teacher's top-left player convention).
func PlayerAABB(pos mapmodel.Vector2) mapmodel.Rect {
	return mapmodel.Rect{X: pos.X, Y: pos.Y, W: PlayerSize, H: PlayerSize}
}

// intactRectsNear returns the intact-slice rectangles of every wall whose
// spatial-index cells overlap queryRect.
func intactRectsNear(model *mapmodel.Model, queryRect mapmodel.Rect) []mapmodel.Rect {
	walls := model.WallsOverlapping(queryRect)
	var out []mapmodel.Rect
	for _, w := range walls {
		out = append(out, w.IntactRects()...)
	}
	return out
}

// segmentVsRect performs a parametric intersection test of the segment from
// a to b against rect, returning the entry parameter t in [0,1] and whether
// it hit. Used by hitscan rays (through SegmentVsRect) and explode-on-impact
// sweeps; UpdateGrenade does its own inflated-rectangle overlap test.
func segmentVsRect(ax, ay, bx, by float32, rect mapmodel.Rect) (t float32, hit bool) {
	dx := bx - ax
	dy := by - ay

	tMin := float32(0)
	tMax := float32(1)

	if dx == 0 {
		if ax < rect.X || ax > rect.X+rect.W {
			return 0, false
		}
	} else {
		t1 := (rect.X - ax) / dx
		t2 := (rect.X + rect.W - ax) / dx
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, false
		}
	}

	if dy == 0 {
		if ay < rect.Y || ay > rect.Y+rect.H {
			return 0, false
		}
	} else {
		t1 := (rect.Y - ay) / dy
		t2 := (rect.Y + rect.H - ay) / dy
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, false
		}
	}

	if tMin < 0 || tMin > 1 {
		return 0, false
	}
	return tMin, true
}

// SegmentVsRect is the exported form of segmentVsRect, reused by the weapons
// package for hitscan ray resolution against slice rectangles.
func SegmentVsRect(ax, ay, bx, by float32, rect mapmodel.Rect) (t float32, hit bool) {
	return segmentVsRect(ax, ay, bx, by, rect)
}

func rectsOverlap(a, b mapmodel.Rect) bool {
	return a.Intersects(b)
}

func dist(a, b mapmodel.Vector2) float32 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}
