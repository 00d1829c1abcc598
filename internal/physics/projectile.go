package physics

import (
	"math"

	"github.com/arenacore/server/internal/mapmodel"
)

// ProjectileKind mirrors the spec's projectile type set.
type ProjectileKind int

const (
	ProjectileGrenade ProjectileKind = iota
	ProjectileSmoke
	ProjectileFlash
	ProjectileRocket
	ProjectileGrenadeShell
)

// Restitution is the coefficient of restitution applied to grenade bounces.
const Restitution = 0.6

// AirDamping is the small per-tick velocity damping applied to grenades
// (gravity-free, constant-velocity-with-friction per the spec).
const AirDamping = 0.995

// WallCollisionCooldownSec is the debounce window preventing a projectile
// from re-colliding with the same wall across consecutive ticks.
const WallCollisionCooldownSec = 0.1

// OutOfBoundsPad is the padding beyond the play field after which a
// projectile is destroyed with no event.
const OutOfBoundsPad = 50

// RocketBoundsPad has the same value as OutOfBoundsPad and is not referenced:
// withinOutOfBoundsPad applies OutOfBoundsPad to every projectile kind,
// rockets included, which on the 480x270 field is [-50,530]x[-50,320].
const RocketBoundsPad = 50

// State is the mutable kinematic state the match simulation feeds into the
// per-tick Update functions below and reads back out.
type State struct {
	Kind      ProjectileKind
	Pos       mapmodel.Vector2
	Vel       mapmodel.Vector2
	Radius    float32
	FieldW    float32
	FieldH    float32
	lastHitAt map[uint32]float64 // wall id -> last collision time (seconds)
}

// NewState constructs projectile kinematic state for a freshly fired
// projectile.
func NewState(kind ProjectileKind, pos, vel mapmodel.Vector2, radius, fieldW, fieldH float32) *State {
	return &State{
		Kind:      kind,
		Pos:       pos,
		Vel:       vel,
		Radius:    radius,
		FieldW:    fieldW,
		FieldH:    fieldH,
		lastHitAt: make(map[uint32]float64),
	}
}

// BounceEvent records a single grenade-vs-wall bounce for broadcast.
type BounceEvent struct {
	WallID uint32
}

// UpdateGrenade advances a gravity-free, lightly-damped grenade by dt
// seconds, reflecting velocity off any intact slice it sweeps into (subject
// to a 100ms per-wall cooldown) and clamping it to the wall surface plus its
// radius on contact. Returns bounce events and whether the projectile is
// still alive (false => out of bounds, caller checks fuse separately).
func UpdateGrenade(model *mapmodel.Model, s *State, dt float64, nowSec float64) ([]BounceEvent, bool) {
	prev := s.Pos
	next := mapmodel.Vector2{
		X: s.Pos.X + s.Vel.X*float32(dt),
		Y: s.Pos.Y + s.Vel.Y*float32(dt),
	}

	var events []BounceEvent

	sweep := mapmodel.Rect{
		X: minF(prev.X, next.X) - s.Radius,
		Y: minF(prev.Y, next.Y) - s.Radius,
		W: absF(next.X-prev.X) + 2*s.Radius,
		H: absF(next.Y-prev.Y) + 2*s.Radius,
	}
	walls := model.WallsOverlapping(sweep)

	for _, w := range walls {
		if last, ok := s.lastHitAt[w.ID]; ok && nowSec-last < WallCollisionCooldownSec {
			continue
		}
		for i := 0; i < mapmodel.SliceCount; i++ {
			if w.SliceHealth[i] <= 0 {
				continue
			}
			sr := w.SliceRect(i)
			inflated := mapmodel.Rect{
				X: sr.X - s.Radius, Y: sr.Y - s.Radius,
				W: sr.W + 2*s.Radius, H: sr.H + 2*s.Radius,
			}
			if !inflated.Intersects(mapmodel.Rect{X: minF(prev.X, next.X), Y: minF(prev.Y, next.Y), W: absF(next.X - prev.X), H: absF(next.Y - prev.Y)}) {
				if !inflated.Contains(next.X, next.Y) {
					continue
				}
			}

			normal := collisionNormal(sr, prev)
			s.Vel.X, s.Vel.Y = reflect(s.Vel.X, s.Vel.Y, normal.X, normal.Y, Restitution)

			next.X = prev.X + normal.X*s.Radius*0.01
			next.Y = prev.Y + normal.Y*s.Radius*0.01
			if normal.X != 0 {
				if normal.X > 0 {
					next.X = sr.X + sr.W + s.Radius
				} else {
					next.X = sr.X - s.Radius
				}
			}
			if normal.Y != 0 {
				if normal.Y > 0 {
					next.Y = sr.Y + sr.H + s.Radius
				} else {
					next.Y = sr.Y - s.Radius
				}
			}

			s.lastHitAt[w.ID] = nowSec
			events = append(events, BounceEvent{WallID: w.ID})
			break
		}
	}

	s.Vel.X *= float32(math.Pow(AirDamping, dt*60))
	s.Vel.Y *= float32(math.Pow(AirDamping, dt*60))
	s.Pos = next

	return events, withinOutOfBoundsPad(s)
}

// collisionNormal picks the axis of least penetration between the
// pre-collision position and the slice rect, approximating a proper swept
// normal without a full continuous-collision solve.
func collisionNormal(r mapmodel.Rect, from mapmodel.Vector2) mapmodel.Vector2 {
	cx := r.X + r.W/2
	cy := r.Y + r.H/2
	dx := from.X - cx
	dy := from.Y - cy
	if absF(dx)/r.W > absF(dy)/r.H {
		if dx > 0 {
			return mapmodel.Vector2{X: 1}
		}
		return mapmodel.Vector2{X: -1}
	}
	if dy > 0 {
		return mapmodel.Vector2{Y: 1}
	}
	return mapmodel.Vector2{Y: -1}
}

func reflect(vx, vy, nx, ny float32, restitution float32) (float32, float32) {
	dot := vx*nx + vy*ny
	rx := vx - (1+restitution)*dot*nx
	ry := vy - (1+restitution)*dot*ny
	return rx, ry
}

// UpdateLinear advances a grenade-launcher shell, rocket, or smoke/flash
// canister by dt seconds with no gravity and no bounce, and reports whether
// it is still inside the out-of-bounds pad. It does no wall test: callers
// sweep explode-on-impact kinds with SweepExplodeOnImpact first, and smoke
// and flash canisters are not checked against walls.
func UpdateLinear(s *State, dt float64) bool {
	s.Pos.X += s.Vel.X * float32(dt)
	s.Pos.Y += s.Vel.Y * float32(dt)
	return withinOutOfBoundsPad(s)
}

// RocketHit is the result of sweeping a rocket (or any explode-on-impact,
// explode-on-first-contact projectile) across one tick.
type RocketHit struct {
	Hit      bool
	Point    mapmodel.Vector2
	WallID   uint32
	SliceIdx int
}

// SweepExplodeOnImpact performs a swept-segment raycast from the
// projectile's current position along dt*vel against every intact slice it
// may cross, returning the first hit point (if any) BEFORE the caller
// performs any range/boundary check. Detonating before the out-of-bounds
// check is a required ordering invariant — a projectile that would exit the
// field on the same tick it hits a wall must still explode at the wall.
func SweepExplodeOnImpact(model *mapmodel.Model, pos, vel mapmodel.Vector2, dt float64) RocketHit {
	end := mapmodel.Vector2{
		X: pos.X + vel.X*float32(dt),
		Y: pos.Y + vel.Y*float32(dt),
	}
	sweep := mapmodel.Rect{
		X: minF(pos.X, end.X), Y: minF(pos.Y, end.Y),
		W: absF(end.X-pos.X) + 1, H: absF(end.Y-pos.Y) + 1,
	}

	bestT := float32(2)
	var best RocketHit
	for _, w := range model.WallsOverlapping(sweep) {
		for i := 0; i < mapmodel.SliceCount; i++ {
			if w.SliceHealth[i] <= 0 {
				continue
			}
			t, hit := segmentVsRect(pos.X, pos.Y, end.X, end.Y, w.SliceRect(i))
			if hit && t < bestT {
				bestT = t
				best = RocketHit{
					Hit:      true,
					WallID:   w.ID,
					SliceIdx: i,
					Point: mapmodel.Vector2{
						X: pos.X + (end.X-pos.X)*t,
						Y: pos.Y + (end.Y-pos.Y)*t,
					},
				}
			}
		}
	}
	return best
}

func withinOutOfBoundsPad(s *State) bool {
	return s.Pos.X >= -OutOfBoundsPad && s.Pos.X <= s.FieldW+OutOfBoundsPad &&
		s.Pos.Y >= -OutOfBoundsPad && s.Pos.Y <= s.FieldH+OutOfBoundsPad
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
