package weapons

import (
	"github.com/arenacore/server/internal/mapmodel"
	"github.com/arenacore/server/internal/physics"
)

// MaxChargeLevel is the highest throw-charge level a thrown weapon (grenade,
// smoke, flash) accepts; charge scales launch speed linearly between the
// def's base and base+MaxChargeLevel*perLevel.
const MaxChargeLevel = 5

// LaunchSpeed returns the projectile's initial speed for a given charge
// level, clamped to [0, MaxChargeLevel].
func (d Def) LaunchSpeed(chargeLevel int) float32 {
	if chargeLevel < 0 {
		chargeLevel = 0
	}
	if chargeLevel > MaxChargeLevel {
		chargeLevel = MaxChargeLevel
	}
	return d.ProjectileSpeedBase + d.ProjectileSpeedPerLevel*float32(chargeLevel)
}

// SpawnProjectile builds the kinematic state for a freshly-fired projectile
// weapon, launched from origin along dir (normalized) at the charge-scaled
// speed.
func (d Def) SpawnProjectile(origin, dir mapmodel.Vector2, chargeLevel int, fieldW, fieldH float32) *physics.State {
	speed := d.LaunchSpeed(chargeLevel)
	vel := mapmodel.Vector2{X: dir.X * speed, Y: dir.Y * speed}
	return physics.NewState(d.ProjectileKind, origin, vel, d.ProjectileRadius, fieldW, fieldH)
}
