package match

import (
	"encoding/json"
	"time"

	"github.com/arenacore/server/internal/mapmodel"
	"github.com/arenacore/server/internal/vision"
	"github.com/arenacore/server/internal/weapons"
)

// MovementMode is derived from held movement modifiers each input frame.
type MovementMode int

const (
	MovementWalk MovementMode = iota
	MovementSneak
	MovementRun
)

func (m MovementMode) String() string {
	switch m {
	case MovementSneak:
		return "sneak"
	case MovementRun:
		return "run"
	default:
		return "walk"
	}
}

// MarshalJSON renders a MovementMode as its wire name.
func (m MovementMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// EffectState holds a player's transient flashbang impairment, phase
// durations translated from a FlashEffect at the moment it lands.
type EffectState struct {
	Intensity        float32 // 0..1, 0 = no effect
	VisualImpairment float32 // 0..1
	AudioImpairment  float32 // 0..1
	MovementImpairment float32 // 0..1
	EndsAt           time.Time
}

// Active reports whether the flash effect is still in its impairment window.
func (e EffectState) Active(now time.Time) bool {
	return e.Intensity > 0 && now.Before(e.EndsAt)
}

// Loadout names the weapons a player has equipped.
type Loadout struct {
	Primary   string
	Secondary string
	Support   []string
}

// Player is one connected participant's full authoritative state within a
// lobby. Position resets on respawn; (0,0) is never a valid live position —
// physics.SanitizeSpawn rejects it before it ever reaches here.
type Player struct {
	ID   string
	Name string
	Team mapmodel.Team

	Pos         mapmodel.Vector2
	Vel         mapmodel.Vector2
	Rotation    float32 // radians
	AimDir      mapmodel.Vector2
	Alive       bool
	Health      int
	Armor       int
	Kills       int
	Deaths      int
	MovementMode MovementMode

	Loadout Loadout
	Weapons map[string]*weapons.Instance
	Current string // currently-equipped weapon id

	LastProcessedInputSequence uint64

	RespawnDeadline        time.Time
	SpawnInvulnerableUntil time.Time

	Effect EffectState

	Vision *vision.Cache

	lastInputAt time.Time
	lastSeq     uint64
}

// NewPlayer creates a freshly-joined player with full health and an empty
// loadout; callers assign Loadout and populate Weapons from player:join.
func NewPlayer(id, name string, team mapmodel.Team, spawn mapmodel.Vector2) *Player {
	return &Player{
		ID:      id,
		Name:    name,
		Team:    team,
		Pos:     spawn,
		Alive:   true,
		Health:  100,
		Armor:   0,
		AimDir:  mapmodel.Vector2{X: 1, Y: 0},
		Weapons: make(map[string]*weapons.Instance),
		Vision:  vision.NewCache(),
	}
}

// ApplyLoadout equips the declared weapons, building a fresh ammo-tracking
// Instance for each.
func (p *Player) ApplyLoadout(l Loadout) {
	p.Loadout = l
	p.Weapons = make(map[string]*weapons.Instance)
	ids := []string{l.Primary, l.Secondary}
	ids = append(ids, l.Support...)
	for _, id := range ids {
		if id == "" {
			continue
		}
		if def, ok := weapons.Get(id); ok {
			p.Weapons[id] = weapons.NewInstance(def)
		}
	}
	p.Current = l.Primary
}

// IsInvulnerable reports whether the player is still within its spawn
// invulnerability window.
func (p *Player) IsInvulnerable(now time.Time) bool {
	return !p.SpawnInvulnerableUntil.IsZero() && now.Before(p.SpawnInvulnerableUntil)
}

// AABB returns the player's 10x10 collision/visibility box.
func (p *Player) AABB() mapmodel.Rect {
	return mapmodel.Rect{X: p.Pos.X, Y: p.Pos.Y, W: 10, H: 10}
}

// Center returns the AABB center point used by vision/state filtering.
func (p *Player) Center() mapmodel.Vector2 {
	return mapmodel.Vector2{X: p.Pos.X + 5, Y: p.Pos.Y + 5}
}
