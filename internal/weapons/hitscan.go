package weapons

import (
	"math"
	"sort"

	"github.com/arenacore/server/internal/destruction"
	"github.com/arenacore/server/internal/mapmodel"
	"github.com/arenacore/server/internal/physics"
)

// Target is a player hitscan rays can strike.
type Target struct {
	PlayerID string
	AABB     mapmodel.Rect
}

// RayOutcome is the fully-resolved result of one hitscan ray: either it
// terminates on a player (damage applied by the caller, the match package
// owns the single health-mutation path) or it terminates on a wall or the
// edge of its range.
type RayOutcome struct {
	HitPlayer   string // empty if no player was struck
	DamageDealt int
	ImpactPoint mapmodel.Vector2
	Terminated  bool // true if anything stopped the ray before MaxRange
	WallEvents  []destruction.Event
}

type candidate struct {
	t        float32
	isPlayer bool
	playerID string
	wall     *mapmodel.Wall
	slice    int
}

// ResolveRay fires a single ray of damage from origin in direction dir
// (normalized) out to maxRange, applying the universal wall penetration
// rule: hard-material intact slices stop the ray outright; soft-material
// intact slices subtract 15 damage from the ray's remaining budget and let
// it continue only if budget remains; destroyed slices are free passage.
// The ray terminates permanently on the first player it strikes, dealing
// whatever budget remains at that point.
func ResolveRay(
	engine *destruction.Engine,
	model *mapmodel.Model,
	origin, dir mapmodel.Vector2,
	maxRange float32,
	damage int,
	targets []Target,
	source string,
) RayOutcome {
	end := mapmodel.Vector2{X: origin.X + dir.X*maxRange, Y: origin.Y + dir.Y*maxRange}

	sweep := mapmodel.Rect{
		X: minF32(origin.X, end.X), Y: minF32(origin.Y, end.Y),
		W: absF32(end.X-origin.X) + 1, H: absF32(end.Y-origin.Y) + 1,
	}

	var candidates []candidate
	for _, w := range model.WallsOverlapping(sweep) {
		for i := 0; i < mapmodel.SliceCount; i++ {
			if w.SliceHealth[i] <= 0 {
				continue // destroyed: free passage, not a candidate
			}
			t, hit := physics.SegmentVsRect(origin.X, origin.Y, end.X, end.Y, w.SliceRect(i))
			if hit {
				candidates = append(candidates, candidate{t: t, wall: w, slice: i})
			}
		}
	}
	for _, tgt := range targets {
		t, hit := physics.SegmentVsRect(origin.X, origin.Y, end.X, end.Y, tgt.AABB)
		if hit {
			candidates = append(candidates, candidate{t: t, isPlayer: true, playerID: tgt.PlayerID})
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].t < candidates[j].t })

	remaining := damage
	var out RayOutcome

	for _, c := range candidates {
		point := mapmodel.Vector2{X: origin.X + (end.X-origin.X)*c.t, Y: origin.Y + (end.Y-origin.Y)*c.t}

		if c.isPlayer {
			out.HitPlayer = c.playerID
			out.DamageDealt = remaining
			out.ImpactPoint = point
			out.Terminated = true
			return out
		}

		hard := !destruction.MaterialAllows(c.wall.Material, destruction.DamageCategoryBullet)
		if hard {
			out.ImpactPoint = point
			out.Terminated = true
			return out
		}

		const softPenetrationCost = 15
		applied := softPenetrationCost
		if applied > remaining {
			applied = remaining
		}
		res := engine.ApplyDamage(c.wall.ID, c.slice, applied, source)
		out.WallEvents = append(out.WallEvents, res.Events...)
		remaining -= softPenetrationCost

		if remaining <= 0 {
			out.ImpactPoint = point
			out.Terminated = true
			return out
		}
		// else: ray continues past this soft slice to the next candidate.
	}

	out.ImpactPoint = end
	out.Terminated = false
	return out
}

// ShotgunSpreadAngles returns the PelletCount evenly-fanned ray directions
// (radians, added to the base aim angle) for an 8-pellet shotgun blast.
func ShotgunSpreadAngles(pelletCount int, totalSpreadDeg float64) []float64 {
	if pelletCount <= 1 {
		return []float64{0}
	}
	out := make([]float64, pelletCount)
	step := totalSpreadDeg / float64(pelletCount-1)
	start := -totalSpreadDeg / 2
	for i := 0; i < pelletCount; i++ {
		out[i] = (start + step*float64(i)) * math.Pi / 180
	}
	return out
}

// Rotate rotates dir by angleRad radians.
func Rotate(dir mapmodel.Vector2, angleRad float64) mapmodel.Vector2 {
	s, c := math.Sincos(angleRad)
	return mapmodel.Vector2{
		X: dir.X*float32(c) - dir.Y*float32(s),
		Y: dir.X*float32(s) + dir.Y*float32(c),
	}
}

func minF32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
