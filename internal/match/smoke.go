package match

import (
	"math"
	"time"

	"github.com/arenacore/server/internal/mapmodel"
	"github.com/arenacore/server/internal/physics"
	"github.com/arenacore/server/internal/vision"
)

// SmokeZone is a stationary smoke cloud participating in vision occlusion.
// It expands from zero to its target radius/density over its expansion
// window, then persists until expireTime.
type SmokeZone struct {
	ID               string
	Center           mapmodel.Vector2
	CurrentRadius    float32
	TargetRadius     float32
	CurrentDensity   float32
	MaxDensity       float32
	SpawnedAt        time.Time
	ExpansionEndTime time.Time
	ExpireTime       time.Time
}

// Tick advances the zone's expansion toward its target radius/density; it
// never shrinks before ExpireTime.
func (s *SmokeZone) Tick(now time.Time) {
	total := s.ExpansionEndTime.Sub(s.SpawnedAt)
	if total <= 0 || now.After(s.ExpansionEndTime) {
		s.CurrentRadius = s.TargetRadius
		s.CurrentDensity = s.MaxDensity
		return
	}
	elapsed := now.Sub(s.SpawnedAt)
	frac := float32(elapsed) / float32(total)
	if frac > 1 {
		frac = 1
	}
	if frac < 0 {
		frac = 0
	}
	s.CurrentRadius = s.TargetRadius * frac
	s.CurrentDensity = s.MaxDensity * frac
}

// Expired reports whether the zone should be removed.
func (s *SmokeZone) Expired(now time.Time) bool {
	return now.After(s.ExpireTime)
}

// ToVisionZone projects the subset of fields the vision system needs.
func (s *SmokeZone) ToVisionZone() vision.SmokeZone {
	return vision.SmokeZone{Center: s.Center, CurrentRadius: s.CurrentRadius, MaxDensity: s.CurrentDensity}
}

// FlashEffect is the transient result of a flashbang detonation. It is
// translated into each affected player's EffectState at the moment it lands
// and is not itself retained in match state.
type FlashEffect struct {
	Center    mapmodel.Vector2
	Radius    float32
	MaxDurationSec float64
}

// Affected computes the per-player intensity for a flashbang centered at
// f.Center, given the player's position and whether line of sight is clear
// (callers pass hasLineOfSight from a vision check); intensity falls off
// linearly with distance and is zero beyond f.Radius or without line of
// sight.
func (f FlashEffect) Affected(playerCenter mapmodel.Vector2, hasLineOfSight bool) (intensity float32) {
	if !hasLineOfSight {
		return 0
	}
	dx := playerCenter.X - f.Center.X
	dy := playerCenter.Y - f.Center.Y
	d := dx*dx + dy*dy
	r2 := f.Radius * f.Radius
	if d >= r2 {
		return 0
	}
	dist := float32(math.Sqrt(float64(d)))
	frac := 1 - dist/f.Radius
	if frac < 0 {
		frac = 0
	}
	return frac
}

// Projectile is a live in-flight projectile tracked by the simulation.
type Projectile struct {
	ID       string
	Kind     physics.ProjectileKind
	OwnerID  string
	State    *physics.State
	CreatedAt time.Time
	FuseDeadline time.Time
	ExplodeOnImpact bool
	Damage          int
	ExplosionRadius float32
}
