package physics

import "github.com/arenacore/server/internal/mapmodel"

// ResolveMovement moves a 10x10 player AABB by displacement, sliding along
// walls via independent-axis resolution: try the full X displacement, then
// the full Y displacement; if one axis collides, that axis's movement is
// clamped to the point of contact while the other axis proceeds freely.
// This avoids the corner "catch" jitter a combined-axis sweep can produce.
func ResolveMovement(model *mapmodel.Model, pos mapmodel.Vector2, displacement mapmodel.Vector2) mapmodel.Vector2 {
	next := pos

	if displacement.X != 0 {
		next.X = resolveAxisX(model, next, displacement.X)
	}
	if displacement.Y != 0 {
		next.Y = resolveAxisY(model, next, displacement.Y)
	}

	return next
}

func resolveAxisX(model *mapmodel.Model, pos mapmodel.Vector2, dx float32) float32 {
	targetX := pos.X + dx
	swept := sweepRectX(pos, dx)
	blocking := intactRectsNear(model, swept)

	allowed := dx
	playerY0, playerY1 := pos.Y, pos.Y+PlayerSize
	for _, r := range blocking {
		if r.Y >= playerY1 || r.Y+r.H <= playerY0 {
			continue // no Y overlap, irrelevant to this axis
		}
		if dx > 0 {
			maxDX := r.X - (pos.X + PlayerSize)
			if maxDX < allowed {
				if maxDX < 0 {
					maxDX = 0
				}
				allowed = maxDX
			}
		} else {
			maxDX := (r.X + r.W) - pos.X
			if maxDX > allowed {
				if maxDX > 0 {
					maxDX = 0
				}
				allowed = maxDX
			}
		}
	}
	_ = targetX
	return pos.X + allowed
}

func resolveAxisY(model *mapmodel.Model, pos mapmodel.Vector2, dy float32) float32 {
	swept := sweepRectY(pos, dy)
	blocking := intactRectsNear(model, swept)

	allowed := dy
	playerX0, playerX1 := pos.X, pos.X+PlayerSize
	for _, r := range blocking {
		if r.X >= playerX1 || r.X+r.W <= playerX0 {
			continue
		}
		if dy > 0 {
			maxDY := r.Y - (pos.Y + PlayerSize)
			if maxDY < allowed {
				if maxDY < 0 {
					maxDY = 0
				}
				allowed = maxDY
			}
		} else {
			maxDY := (r.Y + r.H) - pos.Y
			if maxDY > allowed {
				if maxDY > 0 {
					maxDY = 0
				}
				allowed = maxDY
			}
		}
	}
	return pos.Y + allowed
}

func sweepRectX(pos mapmodel.Vector2, dx float32) mapmodel.Rect {
	x0 := pos.X
	if dx < 0 {
		x0 = pos.X + dx
	}
	w := PlayerSize + absF(dx)
	return mapmodel.Rect{X: x0, Y: pos.Y, W: w, H: PlayerSize}
}

func sweepRectY(pos mapmodel.Vector2, dy float32) mapmodel.Rect {
	y0 := pos.Y
	if dy < 0 {
		y0 = pos.Y + dy
	}
	h := PlayerSize + absF(dy)
	return mapmodel.Rect{X: pos.X, Y: y0, W: PlayerSize, H: h}
}

// IsSpawnBlocked reports whether pos (as a 10x10 AABB) overlaps any intact
// wall slice, or is the explicitly forbidden origin.
func IsSpawnBlocked(model *mapmodel.Model, pos mapmodel.Vector2) bool {
	if pos.X == 0 && pos.Y == 0 {
		return true
	}
	box := PlayerAABB(pos)
	for _, r := range intactRectsNear(model, box) {
		if rectsOverlap(box, r) {
			return true
		}
	}
	return false
}

// SanitizeSpawn returns pos unchanged if it's a legal spawn, otherwise the
// team fallback spawn point.
func SanitizeSpawn(model *mapmodel.Model, pos mapmodel.Vector2, team mapmodel.Team) mapmodel.Vector2 {
	if !IsSpawnBlocked(model, pos) {
		return pos
	}
	return mapmodel.DefaultFallbackSpawn(team)
}
