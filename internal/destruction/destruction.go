// Package destruction applies damage to wall slices and emits the
// corresponding damage/destroy events. It is the sole authority that
// mutates wall slice health — callers consult it rather than poking
// Wall.SliceHealth directly, keeping the "damage to zero" invariant
// centralized in one place per the §9 redesign note on shared mutable state.
package destruction

import (
	"math"

	"github.com/arenacore/server/internal/mapmodel"
)

// EventKind discriminates the two event variants DestructionEngine emits.
type EventKind int

const (
	EventWallDamaged EventKind = iota
	EventWallDestroyed
)

// Event is a single typed destruction event; callers must consume the
// returned slice rather than dropping it, per the "pending events forgotten
// by caller" anti-pattern called out in the design notes.
type Event struct {
	Kind         EventKind
	WallID       uint32
	SliceIndex   int
	Health       int
	Source       string // attacking player id, for attribution/logging
}

// Result is the outcome of ApplyDamage to a single slice.
type Result struct {
	Destroyed       bool
	RemainingHealth int
	Events          []Event
}

// Engine applies damage to wall slices. It holds no state of its own beyond
// a reference to the map; all mutation happens on the Wall objects owned by
// mapmodel.Model.
type Engine struct {
	model *mapmodel.Model
}

// New constructs a DestructionEngine bound to a map model.
func New(model *mapmodel.Model) *Engine {
	return &Engine{model: model}
}

// DamageCategory is the kind of damage MaterialAllows checks against a
// wall's material to decide whether it applies at all. Bullet-class rounds (e.g.
// pistols) are blocked by concrete/metal; explosive categories bypass the
// matrix entirely (explosions always apply, see ApplyExplosionAt).
type DamageCategory int

const (
	DamageCategoryBullet DamageCategory = iota
	DamageCategoryExplosive
)

// MaterialAllows reports whether a damage category is permitted to affect a
// wall built of the given material. This only gates *whether* damage is
// applied — it never changes the destruction threshold for bullet
// passability (a slice at health <= 0 is always passable).
func MaterialAllows(m mapmodel.Material, cat DamageCategory) bool {
	if cat == DamageCategoryExplosive {
		return true
	}
	switch m {
	case mapmodel.MaterialConcrete, mapmodel.MaterialMetal:
		return false
	default: // wood, glass
		return true
	}
}

// ApplyDamage applies amount damage to one slice of one wall. Damage to an
// already-destroyed slice is a no-op returning no events, per the
// idempotence invariant. Health is clamped at zero.
func (e *Engine) ApplyDamage(wallID uint32, sliceIndex int, amount int, source string) Result {
	w, ok := e.model.Walls[wallID]
	if !ok || sliceIndex < 0 || sliceIndex >= mapmodel.SliceCount {
		return Result{}
	}
	if w.SliceHealth[sliceIndex] <= 0 {
		return Result{Destroyed: true, RemainingHealth: 0}
	}
	if amount <= 0 {
		return Result{RemainingHealth: w.SliceHealth[sliceIndex]}
	}

	before := w.SliceHealth[sliceIndex]
	after := before - amount
	if after < 0 {
		after = 0
	}
	w.SliceHealth[sliceIndex] = after

	events := []Event{{
		Kind:       EventWallDamaged,
		WallID:     wallID,
		SliceIndex: sliceIndex,
		Health:     after,
		Source:     source,
	}}
	destroyed := after <= 0
	if destroyed {
		events = append(events, Event{
			Kind:       EventWallDestroyed,
			WallID:     wallID,
			SliceIndex: sliceIndex,
			Health:     0,
			Source:     source,
		})
	}

	return Result{Destroyed: destroyed, RemainingHealth: after, Events: events}
}

// ApplyExplosionAt iterates every wall whose bounding rect intersects the
// blast circle and, for each slice whose rectangle intersects it, applies
// amount scaled by linear falloff (1.0 at center, 0.0 at radius). Events
// from every affected slice are returned together, preserving call-order
// emission semantics required of a single weapon effect.
func (e *Engine) ApplyExplosionAt(center mapmodel.Vector2, radius float32, amount int, source string) []Event {
	var events []Event
	blastRect := mapmodel.Rect{
		X: center.X - radius, Y: center.Y - radius,
		W: 2 * radius, H: 2 * radius,
	}
	for _, w := range e.model.WallsOverlapping(blastRect) {
		if !w.Rect.IntersectsCircle(center.X, center.Y, radius) {
			continue
		}
		for i := 0; i < mapmodel.SliceCount; i++ {
			if w.SliceHealth[i] <= 0 {
				continue
			}
			sr := w.SliceRect(i)
			if !sr.IntersectsCircle(center.X, center.Y, radius) {
				continue
			}
			dist := sliceDistance(sr, center)
			falloff := 1 - dist/radius
			if falloff < 0 {
				falloff = 0
			}
			dmg := int(math.Round(float64(amount) * float64(falloff)))
			if dmg <= 0 {
				continue
			}
			res := e.ApplyDamage(w.ID, i, dmg, source)
			events = append(events, res.Events...)
		}
	}
	return events
}

// sliceDistance returns the distance from center to the nearest point of
// the slice rectangle, used for explosion falloff.
func sliceDistance(r mapmodel.Rect, center mapmodel.Vector2) float32 {
	cx := clampF(center.X, r.X, r.X+r.W)
	cy := clampF(center.Y, r.Y, r.Y+r.H)
	dx := center.X - cx
	dy := center.Y - cy
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SliceAt returns the index of the slice containing localPoint, a point
// expressed relative to the wall's own rectangle origin (not world space).
func SliceAt(w *mapmodel.Wall, localPoint mapmodel.Vector2) int {
	longDim := w.SliceLongDim()
	if longDim <= 0 {
		return 0
	}
	var coord float32
	if w.Orientation == mapmodel.OrientationHorizontal {
		coord = localPoint.X
	} else {
		coord = localPoint.Y
	}
	idx := int(coord / longDim)
	if idx < 0 {
		idx = 0
	}
	if idx >= mapmodel.SliceCount {
		idx = mapmodel.SliceCount - 1
	}
	return idx
}
