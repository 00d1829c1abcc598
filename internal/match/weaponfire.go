package match

import (
	"math"
	"time"

	"github.com/arenacore/server/internal/mapmodel"
	"github.com/arenacore/server/internal/physics"
	"github.com/arenacore/server/internal/weapons"
)

// applyFireRequests resolves every queued weapon:fire request this physics
// tick: fire-rate/ammo/reload gating, then hitscan resolution or projectile
// spawn. Rejected requests emit nothing, per the FireRejected contract.
func (s *Simulation) applyFireRequests(now time.Time) {
	for _, req := range s.pendingFire {
		s.resolveFire(req, now)
	}
	s.pendingFire = nil
}

func (s *Simulation) resolveFire(req FireRequest, now time.Time) {
	p, ok := s.players[req.PlayerID]
	if !ok || !p.Alive {
		return
	}
	def, ok := weapons.Get(req.WeaponID)
	if !ok {
		return
	}
	inst, ok := p.Weapons[req.WeaponID]
	if !ok {
		return
	}
	if ok, _ := inst.CanFire(now); !ok {
		return
	}
	wasOverheated := !inst.OverheatedUntil.IsZero() && now.Before(inst.OverheatedUntil)
	inst.Fire(now)
	if !wasOverheated && !inst.OverheatedUntil.IsZero() && now.Before(inst.OverheatedUntil) {
		s.events = append(s.events, WeaponHeatEvent{PlayerID: p.ID, WeaponID: def.ID, Heat: inst.Heat, Overheated: true})
	}

	dir := normalizeDir(req.Direction)
	origin := mapmodel.Vector2{X: req.Position.X + dir.X*hitscanMuzzleOffset, Y: req.Position.Y + dir.Y*hitscanMuzzleOffset}

	s.events = append(s.events, WeaponFiredEvent{PlayerID: p.ID, WeaponID: def.ID, Origin: origin, Dir: dir})

	switch def.Class {
	case weapons.ClassHitscan:
		s.resolveHitscan(p, def, origin, dir, now)
	case weapons.ClassProjectile:
		s.spawnProjectile(p, def, req, origin, dir, now)
	}
}

func normalizeDir(v mapmodel.Vector2) mapmodel.Vector2 {
	d := v.X*v.X + v.Y*v.Y
	if d == 0 {
		return mapmodel.Vector2{X: 1}
	}
	n := sqrtF(d)
	return mapmodel.Vector2{X: v.X / n, Y: v.Y / n}
}

func (s *Simulation) resolveHitscan(shooter *Player, def weapons.Def, origin, dir mapmodel.Vector2, now time.Time) {
	targets := s.liveTargetsExcept(shooter.ID)

	angles := weapons.ShotgunSpreadAngles(def.PelletCount, 12) // 12-degree total shotgun spread, 0 for others
	if def.PelletCount <= 1 {
		angles = []float64{0}
	}

	maxPenTargets := 1
	if def.Penetration == weapons.PenetrationExtended {
		maxPenTargets = def.MaxPenetrationHits
	}

	for pellet, ang := range angles {
		pelletDir := weapons.Rotate(dir, ang)
		remainingTargets := targets
		hitsThisRay := 0
		damageLeft := def.Damage
		rayOrigin := origin
		rangeLeft := float32(hitscanMaxRange)

		for {
			outcome := weapons.ResolveRay(s.dest, s.model, rayOrigin, pelletDir, rangeLeft, damageLeft, remainingTargets, shooter.ID)
			s.emitWallEvents(outcome.WallEvents)

			if outcome.HitPlayer == "" {
				s.events = append(s.events, WeaponMissEvent{PlayerID: shooter.ID, WeaponID: def.ID, Point: outcome.ImpactPoint, PelletIdx: pellet})
				break
			}

			s.events = append(s.events, WeaponHitEvent{PlayerID: outcome.HitPlayer, WeaponID: def.ID, Point: outcome.ImpactPoint, PelletIdx: pellet})
			s.applyDamage(shooter.ID, outcome.HitPlayer, outcome.DamageDealt, def.ID, now)

			hitsThisRay++
			if hitsThisRay >= maxPenTargets {
				break
			}
			// Extended-penetration weapons continue the ray past the struck
			// player; remove the struck target so it cannot be hit twice by
			// the same ray. The ray resumes from the impact point with
			// whatever wall-penetration budget and range it had left, so
			// slices already crossed aren't re-intersected and re-damaged.
			remainingTargets = removeTarget(remainingTargets, outcome.HitPlayer)
			if len(remainingTargets) == 0 {
				break
			}
			rangeLeft -= vecDistance(rayOrigin, outcome.ImpactPoint)
			if rangeLeft <= 0 {
				break
			}
			rayOrigin = outcome.ImpactPoint
			damageLeft = outcome.DamageDealt
		}
	}
}

func vecDistance(a, b mapmodel.Vector2) float32 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return sqrtF(dx*dx + dy*dy)
}

func removeTarget(targets []weapons.Target, id string) []weapons.Target {
	out := targets[:0:0]
	for _, t := range targets {
		if t.PlayerID != id {
			out = append(out, t)
		}
	}
	return out
}

func (s *Simulation) liveTargetsExcept(excludeID string) []weapons.Target {
	out := make([]weapons.Target, 0, len(s.players))
	for id, p := range s.players {
		if id == excludeID || !p.Alive {
			continue
		}
		out = append(out, weapons.Target{PlayerID: id, AABB: p.AABB()})
	}
	return out
}

func (s *Simulation) spawnProjectile(owner *Player, def weapons.Def, req FireRequest, origin, dir mapmodel.Vector2, now time.Time) {
	state := def.SpawnProjectile(origin, dir, req.ChargeLevel, s.model.Width, s.model.Height)
	id := s.nextID("proj")

	proj := &Projectile{
		ID:              id,
		Kind:            def.ProjectileKind,
		OwnerID:         owner.ID,
		State:           state,
		CreatedAt:       now,
		ExplodeOnImpact: def.ExplodeOnImpact,
		Damage:          def.ExplosionDamage,
		ExplosionRadius: def.ExplosionRadius,
	}
	if def.FuseSec > 0 {
		proj.FuseDeadline = now.Add(time.Duration(def.FuseSec * float64(time.Second)))
	}
	s.projectiles[id] = proj
	s.events = append(s.events, ProjectileSpawnedEvent{ProjectileID: id, OwnerID: owner.ID, Kind: int(proj.Kind), Pos: proj.State.Pos})
}

// tickProjectiles advances every live projectile one physics step,
// detonating on fuse expiry or first impact (for explode-on-impact kinds); a
// projectile that leaves the out-of-bounds pad is removed with no event.
func (s *Simulation) tickProjectiles(now time.Time, dt float64) {
	for id, proj := range s.projectiles {
		if s.stepProjectile(proj, now, dt) {
			delete(s.projectiles, id)
		}
	}
}

// stepProjectile returns true if the projectile should be removed this
// tick (exploded, expired, or left the out-of-bounds pad).
func (s *Simulation) stepProjectile(proj *Projectile, now time.Time, dt float64) bool {
	nowSec := float64(now.UnixNano()) / 1e9

	if proj.ExplodeOnImpact {
		hit := physics.SweepExplodeOnImpact(s.model, proj.State.Pos, proj.State.Vel, dt)
		if hit.Hit {
			s.explode(proj, hit.Point, now)
			return true
		}
		alive := physics.UpdateLinear(proj.State, dt)
		if !alive {
			return true
		}
		if !proj.FuseDeadline.IsZero() && now.After(proj.FuseDeadline) {
			s.explode(proj, proj.State.Pos, now)
			return true
		}
		return false
	}

	switch proj.Kind {
	case physics.ProjectileGrenade:
		bounces, alive := physics.UpdateGrenade(s.model, proj.State, dt, nowSec)
		for _, b := range bounces {
			s.events = append(s.events, GrenadeBouncedEvent{ProjectileID: proj.ID, WallID: b.WallID})
		}
		if !alive {
			return true
		}
		if !proj.FuseDeadline.IsZero() && now.After(proj.FuseDeadline) {
			s.explode(proj, proj.State.Pos, now)
			return true
		}
		return false

	case physics.ProjectileSmoke:
		alive := physics.UpdateLinear(proj.State, dt)
		if !alive {
			return true
		}
		if !proj.FuseDeadline.IsZero() && now.After(proj.FuseDeadline) {
			s.spawnSmoke(proj, now)
			return true
		}
		return false

	case physics.ProjectileFlash:
		alive := physics.UpdateLinear(proj.State, dt)
		if !alive {
			return true
		}
		if !proj.FuseDeadline.IsZero() && now.After(proj.FuseDeadline) {
			s.detonateFlash(proj, now)
			return true
		}
		return false
	}
	return true
}

const (
	outOfBoundsMinX, outOfBoundsMinY = -50, -50
	outOfBoundsMaxOffsetX, outOfBoundsMaxOffsetY = 50, 50
)

func (s *Simulation) explode(proj *Projectile, at mapmodel.Vector2, now time.Time) {
	clamped := mapmodel.Vector2{
		X: clampF(at.X, outOfBoundsMinX, s.model.Width+outOfBoundsMaxOffsetX),
		Y: clampF(at.Y, outOfBoundsMinY, s.model.Height+outOfBoundsMaxOffsetY),
	}
	s.events = append(s.events, ExplosionEvent{ProjectileID: proj.ID, Center: clamped, Radius: proj.ExplosionRadius})

	wallEvents := s.dest.ApplyExplosionAt(clamped, proj.ExplosionRadius, proj.Damage, proj.OwnerID)
	s.emitWallEvents(wallEvents)

	for id, p := range s.players {
		if !p.Alive {
			continue
		}
		d := dist(p.Center(), clamped)
		if d > proj.ExplosionRadius {
			continue
		}
		falloff := 1 - d/proj.ExplosionRadius
		if falloff < 0 {
			falloff = 0
		}
		dmg := int(float32(proj.Damage) * falloff)
		if dmg <= 0 {
			continue
		}
		s.applyDamage(proj.OwnerID, id, dmg, "explosion", now)
	}
}

func (s *Simulation) spawnSmoke(proj *Projectile, now time.Time) {
	id := s.nextID("smoke")
	s.smoke[id] = &FlashZone{
		ID:               id,
		Center:           proj.State.Pos,
		TargetRadius:     40,
		MaxDensity:        1,
		SpawnedAt:        now,
		ExpansionEndTime: now.Add(1 * time.Second),
		ExpireTime:       now.Add(15 * time.Second),
	}
	s.events = append(s.events, SmokeSpawnedEvent{ProjectileID: proj.ID, Center: proj.State.Pos, MaxRadius: 40})
}

func (s *Simulation) detonateFlash(proj *Projectile, now time.Time) {
	s.events = append(s.events, FlashSpawnedEvent{ProjectileID: proj.ID, Center: proj.State.Pos})

	effect := FlashEffect{Center: proj.State.Pos, Radius: 150, MaxDurationSec: 4}
	for id, p := range s.players {
		if !p.Alive {
			continue
		}
		hasLOS := s.hasLineOfSight(proj.State.Pos, p.Center())
		intensity := effect.Affected(p.Center(), hasLOS)
		if intensity <= 0 {
			continue
		}
		p.Effect = EffectState{
			Intensity:          intensity,
			VisualImpairment:   intensity,
			AudioImpairment:    intensity * 0.7,
			MovementImpairment: intensity * 0.5,
			EndsAt:             now.Add(time.Duration(float64(effect.MaxDurationSec) * float64(intensity) * float64(time.Second))),
		}
		s.events = append(s.events, FlashedEvent{
			PlayerID: id, Center: proj.State.Pos, Severity: intensity,
			Duration: effect.MaxDurationSec * float64(intensity),
		})
	}
}

// hasLineOfSight performs a single segment-vs-intact-slice test between two
// points; flashbangs only affect players with a clear line to the blast.
func (s *Simulation) hasLineOfSight(a, b mapmodel.Vector2) bool {
	sweep := mapmodel.Rect{
		X: minF(a.X, b.X), Y: minF(a.Y, b.Y),
		W: absF(b.X-a.X) + 1, H: absF(b.Y-a.Y) + 1,
	}
	for _, w := range s.model.WallsOverlapping(sweep) {
		for i := 0; i < mapmodel.SliceCount; i++ {
			if w.SliceHealth[i] <= 0 {
				continue
			}
			if _, hit := physics.SegmentVsRect(a.X, a.Y, b.X, b.Y, w.SliceRect(i)); hit {
				return false
			}
		}
	}
	return true
}

func dist(a, b mapmodel.Vector2) float32 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return sqrtF(dx*dx + dy*dy)
}

func sqrtF(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
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

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
