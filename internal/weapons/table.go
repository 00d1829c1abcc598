// Package weapons implements fire-rate gating, hitscan resolution with
// penetration, shotgun spread, heat, reload timers, and projectile creation,
// against the fixed weapon/material contract in the wire protocol.
package weapons

import "github.com/arenacore/server/internal/physics"

// Class distinguishes instantaneous hitscan weapons from ones that spawn a
// physical Projectile.
type Class int

const (
	ClassHitscan Class = iota
	ClassProjectile
)

// PenetrationClass controls how many targets (players) a single hitscan ray
// may pass through before terminating, beyond the universal wall
// penetration rule which applies identically to every hitscan weapon.
type PenetrationClass int

const (
	PenetrationStandard PenetrationClass = iota // stops at the first player hit
	PenetrationExtended                         // anti-material rifle: up to 3 targets
)

// Def is one weapon's fixed stat block, mirroring the wire protocol table.
type Def struct {
	ID       string
	Name     string
	Class    Class
	Damage   int
	RPM      float64 // rounds per minute; 0 for non-rate-limited projectiles
	Magazine int     // rounds per reload; thrown weapons hold 1 and refill from Reserve
	Reserve  int

	PelletCount      int // 8 for shotgun, 1 for other hitscan weapons, unset for projectiles
	Penetration      PenetrationClass
	MaxPenetrationHits int // for PenetrationExtended

	IsMachineGun bool // heat mechanic gates fire

	// Projectile-only fields.
	ProjectileKind  physics.ProjectileKind
	ProjectileSpeedBase    float32
	ProjectileSpeedPerLevel float32
	ProjectileRadius float32
	FuseSec          float64
	ExplodeOnImpact  bool
	ExplosionRadius  float32
	ExplosionDamage  int

	SlotCost int // total loadout slots consumed
}

// MinIntervalMs returns the minimum time in milliseconds between shots for
// rate-limited weapons (60000/rpm), or 0 when RPM is 0.
func (d Def) MinIntervalMs() float64 {
	if d.RPM <= 0 {
		return 0
	}
	return 60000 / d.RPM
}

// Table is the fixed weapon/material reference contract from the wire
// protocol. Spec values marked "high"/"low"/"highest"/"lowest" in the
// source table are given concrete numbers here — an implementation
// decision, not a spec requirement.
var Table = map[string]Def{
	"rifle": {
		ID: "rifle", Name: "Rifle", Class: ClassHitscan,
		Damage: 25, RPM: 600, Magazine: 30, Reserve: 90,
		PelletCount: 1, Penetration: PenetrationStandard, SlotCost: 1,
	},
	"smg": {
		ID: "smg", Name: "SMG", Class: ClassHitscan,
		Damage: 18, RPM: 900, Magazine: 35, Reserve: 105,
		PelletCount: 1, Penetration: PenetrationStandard, SlotCost: 1,
	},
	"shotgun": {
		ID: "shotgun", Name: "Shotgun", Class: ClassHitscan,
		Damage: 13, RPM: 70, Magazine: 8, Reserve: 24, // 13*8 ~= total damage at point blank
		PelletCount: 8, Penetration: PenetrationStandard, SlotCost: 1,
	},
	"battle_rifle": {
		ID: "battle_rifle", Name: "Battle Rifle", Class: ClassHitscan,
		Damage: 40, RPM: 300, Magazine: 20, Reserve: 80,
		PelletCount: 1, Penetration: PenetrationStandard, SlotCost: 1,
	},
	"sniper": {
		ID: "sniper", Name: "Sniper", Class: ClassHitscan,
		Damage: 100, RPM: 45, Magazine: 5, Reserve: 20,
		PelletCount: 1, Penetration: PenetrationStandard, SlotCost: 1,
	},
	"pistol": {
		ID: "pistol", Name: "Pistol", Class: ClassHitscan,
		Damage: 35, RPM: 400, Magazine: 12, Reserve: 48,
		PelletCount: 1, Penetration: PenetrationStandard, SlotCost: 1,
	},
	"revolver": {
		ID: "revolver", Name: "Revolver", Class: ClassHitscan,
		Damage: 55, RPM: 180, Magazine: 6, Reserve: 24,
		PelletCount: 1, Penetration: PenetrationStandard, SlotCost: 1,
	},
	"suppressed_pistol": {
		ID: "suppressed_pistol", Name: "Suppressed Pistol", Class: ClassHitscan,
		Damage: 28, RPM: 450, Magazine: 15, Reserve: 60,
		PelletCount: 1, Penetration: PenetrationStandard, SlotCost: 1,
	},
	"machine_gun": {
		ID: "machine_gun", Name: "Machine Gun", Class: ClassHitscan,
		Damage: 22, RPM: 750, Magazine: 100, Reserve: 200,
		PelletCount: 1, Penetration: PenetrationStandard, IsMachineGun: true, SlotCost: 3,
	},
	"anti_material_rifle": {
		ID: "anti_material_rifle", Name: "Anti-Material Rifle", Class: ClassHitscan,
		Damage: 120, RPM: 35, Magazine: 5, Reserve: 15,
		PelletCount: 1, Penetration: PenetrationExtended, MaxPenetrationHits: 3, SlotCost: 3,
	},
	"grenade_launcher": {
		ID: "grenade_launcher", Name: "Grenade Launcher", Class: ClassProjectile,
		Magazine: 4, Reserve: 8, RPM: 60,
		ProjectileKind: physics.ProjectileGrenadeShell,
		ProjectileSpeedBase: 220, ProjectileSpeedPerLevel: 0,
		ProjectileRadius: 3, ExplodeOnImpact: true,
		ExplosionRadius: 60, ExplosionDamage: 90, SlotCost: 2,
	},
	"rocket_launcher": {
		ID: "rocket_launcher", Name: "Rocket Launcher", Class: ClassProjectile,
		Magazine: 1, Reserve: 4, RPM: 40,
		ProjectileKind: physics.ProjectileRocket,
		ProjectileSpeedBase: 400, ProjectileSpeedPerLevel: 0,
		ProjectileRadius: 4, ExplodeOnImpact: true, FuseSec: 3,
		ExplosionRadius: 80, ExplosionDamage: 120, SlotCost: 2,
	},
	"grenade": {
		ID: "grenade", Name: "Frag Grenade", Class: ClassProjectile,
		Magazine: 1, Reserve: 2,
		ProjectileKind: physics.ProjectileGrenade,
		ProjectileSpeedBase: 2, ProjectileSpeedPerLevel: 6,
		ProjectileRadius: 2, FuseSec: 3,
		ExplosionRadius: 70, ExplosionDamage: 100, SlotCost: 1,
	},
	"smoke": {
		ID: "smoke", Name: "Smoke Grenade", Class: ClassProjectile,
		Magazine: 1, Reserve: 1,
		ProjectileKind: physics.ProjectileSmoke,
		ProjectileSpeedBase: 2, ProjectileSpeedPerLevel: 6,
		ProjectileRadius: 2, FuseSec: 2, SlotCost: 2,
	},
	"flash": {
		ID: "flash", Name: "Flashbang", Class: ClassProjectile,
		Magazine: 1, Reserve: 1,
		ProjectileKind: physics.ProjectileFlash,
		ProjectileSpeedBase: 2, ProjectileSpeedPerLevel: 6,
		ProjectileRadius: 2, FuseSec: 1.5, SlotCost: 2,
	},
}

// Get returns the weapon def for id, or false if unknown.
func Get(id string) (Def, bool) {
	d, ok := Table[id]
	return d, ok
}
