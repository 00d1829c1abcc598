package transport

import (
	"encoding/json"

	"github.com/arenacore/server/internal/lobby"
	"github.com/arenacore/server/internal/mapmodel"
	"github.com/arenacore/server/internal/match"
)

// envelope is the wire shape of every message in both directions: a named
// event plus its JSON payload.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func encode(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Event: event, Data: raw})
}

// --- client -> server payloads ---

type findMatchPayload struct {
	Mode string `json:"mode"`
}

type createPrivateLobbyPayload struct {
	Mode       string `json:"mode"`
	MaxPlayers int    `json:"maxPlayers"`
	Password   string `json:"password"`
}

type joinLobbyPayload struct {
	LobbyID  string `json:"lobbyId"`
	Password string `json:"password"`
}

type getLobbyListPayload struct {
	ShowPrivate    bool   `json:"showPrivate"`
	ShowFull       bool   `json:"showFull"`
	ShowInProgress bool   `json:"showInProgress"`
	Mode           string `json:"mode"`
}

type loadoutWire struct {
	Primary   string   `json:"primary"`
	Secondary string   `json:"secondary"`
	Support   []string `json:"support"`
	Team      string   `json:"team"`
}

type playerJoinPayload struct {
	Loadout loadoutWire `json:"loadout"`
}

type keysWire struct {
	MoveUp        bool `json:"moveUp"`
	MoveDown      bool `json:"moveDown"`
	MoveLeft      bool `json:"moveLeft"`
	MoveRight     bool `json:"moveRight"`
	Sneak         bool `json:"sneak"`
	Run           bool `json:"run"`
	Reload        bool `json:"reload"`
	GrenadeToggle bool `json:"grenadeToggle"`
	WeaponSlot    int  `json:"weaponSlot"`
}

type mouseWire struct {
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Buttons  uint8   `json:"buttons"`
	Pressed  uint8   `json:"pressed"`
	Released uint8   `json:"released"`
}

type playerInputPayload struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp int64     `json:"timestamp"`
	Keys      keysWire  `json:"keys"`
	Mouse     mouseWire `json:"mouse"`
}

type vecWire struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

type weaponFirePayload struct {
	WeaponType  string  `json:"weaponType"`
	Position    vecWire `json:"position"`
	Direction   vecWire `json:"direction"`
	IsADS       bool    `json:"isADS"`
	ChargeLevel int     `json:"chargeLevel"`
	Sequence    uint64  `json:"sequence"`
	Timestamp   int64   `json:"timestamp"`
}

type weaponSwitchPayload struct {
	ToWeapon   string `json:"toWeapon"`
	FromWeapon string `json:"fromWeapon"`
}

func loadoutFromWire(w loadoutWire) (match.Loadout, mapmodel.Team) {
	team := mapmodel.TeamRed
	if w.Team == "blue" {
		team = mapmodel.TeamBlue
	}
	return match.Loadout{Primary: w.Primary, Secondary: w.Secondary, Support: w.Support}, team
}

func inputFromWire(p playerInputPayload) match.Input {
	return match.Input{
		Sequence:  p.Sequence,
		Timestamp: p.Timestamp,
		Keys: match.Keys{
			MoveUp: p.Keys.MoveUp, MoveDown: p.Keys.MoveDown,
			MoveLeft: p.Keys.MoveLeft, MoveRight: p.Keys.MoveRight,
			Sneak: p.Keys.Sneak, Run: p.Keys.Run, Reload: p.Keys.Reload,
			GrenadeToggle: p.Keys.GrenadeToggle, WeaponSlot: p.Keys.WeaponSlot,
		},
		Aim:   mapmodel.Vector2{X: p.Mouse.X, Y: p.Mouse.Y},
		Mouse: match.MouseState{Held: p.Mouse.Buttons, Pressed: p.Mouse.Pressed, Released: p.Mouse.Released},
	}
}

// --- server -> client payloads ---

type lobbyJoinedPayload struct {
	LobbyID      string `json:"lobbyId"`
	PlayerCount  int    `json:"playerCount"`
	MaxPlayers   int    `json:"maxPlayers"`
	Mode         string `json:"mode"`
	Status       string `json:"status"`
	IsInProgress bool   `json:"isInProgress"`
}

type lobbyListEntry struct {
	ID               string `json:"id"`
	PlayerCount      int    `json:"playerCount"`
	MaxPlayers       int    `json:"maxPlayers"`
	Mode             string `json:"mode"`
	Status           string `json:"status"`
	IsPrivate        bool   `json:"isPrivate"`
	PasswordRequired bool   `json:"passwordRequired"`
}

type lobbyListPayload struct {
	Lobbies    []lobbyListEntry `json:"lobbies"`
	TotalCount int              `json:"totalCount"`
}

func lobbyListFromSummaries(summaries []lobby.Summary) lobbyListPayload {
	out := lobbyListPayload{Lobbies: make([]lobbyListEntry, 0, len(summaries))}
	for _, s := range summaries {
		out.Lobbies = append(out.Lobbies, lobbyListEntry{
			ID:               s.ID,
			PlayerCount:      s.PlayerCount,
			MaxPlayers:       s.Capacity,
			Mode:             s.GameMode,
			Status:           s.Phase.String(),
			IsPrivate:        s.Mode == lobby.ModePrivate,
			PasswordRequired: s.HasPassword,
		})
	}
	out.TotalCount = len(out.Lobbies)
	return out
}

type errorPayload struct {
	Reason string `json:"reason"`
}

type playerLobbyEventPayload struct {
	LobbyID     string `json:"lobbyId"`
	PlayerCount int    `json:"playerCount"`
	PlayerID    string `json:"playerId"`
	Timestamp   int64  `json:"timestamp"`
}

type matchStartingPayload struct {
	LobbyID          string  `json:"lobbyId"`
	CountdownSeconds float64 `json:"countdownSeconds"`
}

type matchStartCancelledPayload struct {
	LobbyID string `json:"lobbyId"`
	Reason  string `json:"reason"`
}

type matchStartedPayload struct {
	LobbyID    string `json:"lobbyId"`
	KillTarget int    `json:"killTarget"`
	IsLateJoin bool   `json:"isLateJoin,omitempty"`
}

type playerStatPayload struct {
	ID     string        `json:"id"`
	Team   mapmodel.Team `json:"team"`
	Kills  int           `json:"kills"`
	Deaths int           `json:"deaths"`
}

type matchEndedPayload struct {
	WinnerTeam  mapmodel.Team       `json:"winnerTeam"`
	RedKills    int                 `json:"redKills"`
	BlueKills   int                 `json:"blueKills"`
	DurationSec float64             `json:"duration"`
	PlayerStats []playerStatPayload `json:"playerStats"`
}

type visionWire struct {
	Polygon      []mapmodel.Vector2 `json:"polygon"`
	VisibleTiles []int              `json:"visibleTiles"`
}

type gameStatePayload struct {
	Players                    map[string]match.PlayerView `json:"players"`
	Walls                      map[uint32]match.WallView   `json:"walls"`
	Projectiles                []match.ProjectileView      `json:"projectiles"`
	SmokeZones                 []match.SmokeView           `json:"smokeZones"`
	Vision                     visionWire                  `json:"vision"`
	LastProcessedInputSequence uint64                      `json:"lastProcessedInputSequence"`
}

func gameStateFromSnapshot(s match.Snapshot) gameStatePayload {
	tiles := make([]int, 0, 64)
	for i := 0; i < len(s.Vision.Tiles)*8; i++ {
		if s.Vision.Tiles.Test(i) {
			tiles = append(tiles, i)
		}
	}
	return gameStatePayload{
		Players:                    s.Players,
		Walls:                      s.Walls,
		Projectiles:                s.Projectiles,
		SmokeZones:                 s.SmokeZones,
		Vision:                     visionWire{Polygon: s.Vision.Polygon, VisibleTiles: tiles},
		LastProcessedInputSequence: s.LastProcessedInputSequence,
	}
}

type weaponFiredWire struct {
	PlayerID string  `json:"playerId"`
	WeaponID string  `json:"weaponId"`
	Origin   vecWire `json:"origin"`
	Dir      vecWire `json:"dir"`
}

type weaponHitWire struct {
	PlayerID  string  `json:"playerId"`
	WeaponID  string  `json:"weaponId"`
	Point     vecWire `json:"point"`
	PelletIdx int     `json:"pelletIdx"`
}

type weaponReloadedWire struct {
	PlayerID       string `json:"playerId"`
	WeaponID       string `json:"weaponId"`
	AmmoInMagazine int    `json:"ammoInMagazine"`
	AmmoReserve    int    `json:"ammoReserve"`
}

type weaponSwitchedWire struct {
	PlayerID   string `json:"playerId"`
	ToWeapon   string `json:"toWeapon"`
	FromWeapon string `json:"fromWeapon"`
}

type weaponHeatWire struct {
	PlayerID   string  `json:"playerId"`
	WeaponID   string  `json:"weaponId"`
	Heat       float64 `json:"heat"`
	Overheated bool    `json:"overheated"`
}

type projectileCreatedWire struct {
	ProjectileID string  `json:"projectileId"`
	OwnerID      string  `json:"ownerId"`
	Kind         int     `json:"kind"`
	Pos          vecWire `json:"pos"`
}

type projectileExplodedWire struct {
	ProjectileID string  `json:"projectileId"`
	Center       vecWire `json:"center"`
	Radius       float32 `json:"radius"`
}

type grenadeBouncedWire struct {
	ProjectileID string `json:"projectileId"`
	WallID       uint32 `json:"wallId"`
}

type cloudSpawnedWire struct {
	ProjectileID string  `json:"projectileId"`
	Center       vecWire `json:"center"`
	MaxRadius    float32 `json:"maxRadius,omitempty"`
}

type damageWire struct {
	AttackerID string `json:"attackerId"`
	VictimID   string `json:"victimId"`
	Amount     int    `json:"amount"`
	VictimHP   int    `json:"victimHp"`
	WeaponID   string `json:"weaponId"`
}

type wallDamagedWire struct {
	WallID     uint32 `json:"wallId"`
	SliceIndex int    `json:"sliceIndex"`
	Health     int    `json:"health"`
}

type backendPlayerDiedWire struct {
	PlayerID   string        `json:"playerId"`
	KillerID   string        `json:"killerId"`
	KillerTeam mapmodel.Team `json:"killerTeam"`
	VictimTeam mapmodel.Team `json:"victimTeam"`
	WeaponType string        `json:"weaponType"`
	IsTeamKill bool          `json:"isTeamKill"`
	Position   vecWire       `json:"position"`
	DamageType string        `json:"damageType"`
	Timestamp  int64         `json:"timestamp"`
}

type backendPlayerRespawnedWire struct {
	PlayerID          string        `json:"playerId"`
	Position          vecWire       `json:"position"`
	Health            int           `json:"health"`
	Team              mapmodel.Team `json:"team"`
	InvulnerableUntil int64         `json:"invulnerableUntil"`
	Timestamp         int64         `json:"timestamp"`
}

type backendRespawnDeniedWire struct {
	RemainingTime float64 `json:"remainingTime"`
}

type flashAffectedWire struct {
	PlayerID  string  `json:"playerId"`
	Intensity float32 `json:"intensity"`
	Duration  float64 `json:"duration"`
	Phases    int     `json:"phases"`
}

type flashbangEffectWire struct {
	Position        vecWire             `json:"position"`
	AffectedPlayers []flashAffectedWire `json:"affectedPlayers"`
}

func vec(v mapmodel.Vector2) vecWire { return vecWire{X: v.X, Y: v.Y} }

func vecFromWire(v vecWire) mapmodel.Vector2 { return mapmodel.Vector2{X: v.X, Y: v.Y} }
