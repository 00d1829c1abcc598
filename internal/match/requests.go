package match

import "github.com/arenacore/server/internal/mapmodel"

// FireRequest is the decoded payload of a weapon:fire client event.
type FireRequest struct {
	PlayerID    string
	WeaponID    string
	Position    mapmodel.Vector2
	Direction   mapmodel.Vector2
	IsADS       bool
	ChargeLevel int
	Sequence    uint64
	Timestamp   int64
}

// ReloadRequest is the decoded payload of a weapon:reload client event.
type ReloadRequest struct {
	PlayerID string
}

// SwitchRequest is the decoded payload of a weapon:switch client event.
type SwitchRequest struct {
	PlayerID   string
	ToWeapon   string
	FromWeapon string
}

// RespawnRequest is the decoded payload of a player:respawn client event.
type RespawnRequest struct {
	PlayerID string
}

// LoadoutRequest is the decoded payload of a player:join client event,
// declaring the weapons a player enters the game scene with.
type LoadoutRequest struct {
	PlayerID string
	Loadout  Loadout
}
