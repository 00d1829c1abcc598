package weapons

import "time"

// RejectReason explains why a fire attempt was refused.
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectRateLimited
	RejectEmptyMagazine
	RejectReloading
	RejectOverheated
)

// heatPerShot and heatCoolRate are tunable per the open question on exact
// heat increment/cooldown rate; the overheat threshold (100) and lockout
// duration (3s) are fixed by the wire protocol, not tunable.
const (
	heatPerShot     = 8.0  // ~21 shots at 750 RPM (~1.7s) to reach full heat, since heat also cools between shots
	heatCoolRate    = 40.0 // per second
	overheatThreshold = 100.0
	overheatLockSec = 3.0
)

// Instance is one player's live ammo/heat/reload state for one equipped
// weapon slot.
type Instance struct {
	Def Def

	AmmoInMagazine int
	AmmoReserve    int

	LastFireAt    time.Time
	ReloadEndAt   time.Time
	Reloading     bool

	Heat            float64
	OverheatedUntil time.Time
}

// NewInstance returns a freshly-equipped weapon instance with a full
// magazine and reserve.
func NewInstance(def Def) *Instance {
	return &Instance{Def: def, AmmoInMagazine: def.Magazine, AmmoReserve: def.Reserve}
}

// CanFire reports whether the weapon may fire right now, honoring the
// rate-of-fire interval, magazine state, reload state, and (for machine
// guns) overheat lockout.
func (w *Instance) CanFire(now time.Time) (bool, RejectReason) {
	if w.Reloading {
		return false, RejectReloading
	}
	if w.Def.IsMachineGun && !w.OverheatedUntil.IsZero() && now.Before(w.OverheatedUntil) {
		return false, RejectOverheated
	}
	if w.AmmoInMagazine <= 0 {
		return false, RejectEmptyMagazine
	}
	if w.Def.RPM > 0 && !w.LastFireAt.IsZero() {
		minInterval := time.Duration(w.Def.MinIntervalMs() * float64(time.Millisecond))
		if now.Sub(w.LastFireAt) < minInterval {
			return false, RejectRateLimited
		}
	}
	return true, RejectNone
}

// Fire consumes one round and records the shot time; callers must have
// already checked CanFire. Returns the new magazine count.
func (w *Instance) Fire(now time.Time) int {
	w.AmmoInMagazine--
	w.LastFireAt = now
	if w.Def.IsMachineGun {
		w.Heat += heatPerShot
		if w.Heat >= overheatThreshold {
			w.Heat = overheatThreshold
			w.OverheatedUntil = now.Add(overheatLockSec * time.Second)
		}
	}
	return w.AmmoInMagazine
}

// CoolHeat reduces accumulated heat by heatCoolRate per second over dt. The
// simulation calls it once per physics tick for every weapon instance,
// including ticks on which the weapon fires; non-machine-guns are unchanged.
func (w *Instance) CoolHeat(dt float64) {
	if !w.Def.IsMachineGun {
		return
	}
	w.Heat -= heatCoolRate * dt
	if w.Heat < 0 {
		w.Heat = 0
	}
}

// reloadDurationSec returns how long a full reload takes; larger magazines
// take proportionally longer, matching the weapon table's magazine sizes.
func (w *Instance) reloadDurationSec() float64 {
	switch {
	case w.Def.Magazine >= 100:
		return 4.5
	case w.Def.Magazine >= 30:
		return 2.4
	case w.Def.Magazine >= 15:
		return 1.8
	default:
		return 1.2
	}
}

// StartReload begins a reload if one is legal (not already reloading, not a
// full magazine, reserve ammo available). Returns false if the request is a
// no-op.
func (w *Instance) StartReload(now time.Time) bool {
	if w.Reloading || w.AmmoInMagazine >= w.Def.Magazine || w.AmmoReserve <= 0 {
		return false
	}
	w.Reloading = true
	w.ReloadEndAt = now.Add(time.Duration(w.reloadDurationSec() * float64(time.Second)))
	return true
}

// TickReload completes a pending reload once its timer has elapsed,
// transferring ammo from reserve to the magazine. Returns true if the
// reload completed this call.
func (w *Instance) TickReload(now time.Time) bool {
	if !w.Reloading || now.Before(w.ReloadEndAt) {
		return false
	}
	need := w.Def.Magazine - w.AmmoInMagazine
	if need > w.AmmoReserve {
		need = w.AmmoReserve
	}
	w.AmmoInMagazine += need
	w.AmmoReserve -= need
	w.Reloading = false
	return true
}
