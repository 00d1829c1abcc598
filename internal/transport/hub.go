package transport

import (
	"log"
	"sync"
	"time"

	"github.com/arenacore/server/internal/lobby"
	"github.com/arenacore/server/internal/mapmodel"
	"github.com/arenacore/server/internal/match"
)

// Hub owns the set of live connections per lobby and is the only thing in
// this package allowed to fan a message out to more than one connection.
// There is no API surface for a raw, lobby-unscoped broadcast: every send
// either targets one Conn directly or goes through emitToLobby, which only
// ever walks that lobby's own connection set.
type Hub struct {
	mgr *lobby.Manager

	mu    sync.RWMutex
	conns map[string]map[*Conn]struct{} // lobbyID -> connection set
}

// NewHub builds a hub bound to the fleet manager whose lobbies it relays.
func NewHub(mgr *lobby.Manager) *Hub {
	return &Hub{mgr: mgr, conns: make(map[string]map[*Conn]struct{})}
}

// Join registers c as a member of lobbyID's connection set; it starts the
// lobby's relay goroutine the first time anyone joins it, since a lobby's
// Outbox only starts producing once its loop goroutine is already running
// and the hub simply needs one reader per lobby to drain it.
func (h *Hub) Join(lobbyID string, c *Conn) {
	h.mu.Lock()
	set, ok := h.conns[lobbyID]
	if !ok {
		set = make(map[*Conn]struct{})
		h.conns[lobbyID] = set
		h.mu.Unlock()
		go h.relay(lobbyID)
		h.mu.Lock()
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Leave removes c from lobbyID's connection set.
func (h *Hub) Leave(lobbyID string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[lobbyID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.conns, lobbyID)
	}
}

func (h *Hub) members(lobbyID string) []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.conns[lobbyID]
	out := make([]*Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// emitToLobby encodes one event and pushes it onto every current member's
// buffered event queue. This is the only fan-out path in the package; it is
// always scoped to one lobby's own member set.
func (h *Hub) emitToLobby(lobbyID, event string, data interface{}) {
	frame, err := encode(event, data)
	if err != nil {
		log.Printf("🛑 transport: encode %s failed: %v", event, err)
		return
	}
	for _, c := range h.members(lobbyID) {
		c.events.Push(frame)
	}
}

// relay drains lobbyID's Outbox for as long as the lobby exists, translating
// each TickOutput into per-connection snapshot updates (latest-wins) and
// lobby-wide event frames (buffered, never dropped). It exits once the
// lobby is retired by the Manager.
func (h *Hub) relay(lobbyID string) {
	l, ok := h.mgr.Get(lobbyID)
	if !ok {
		return
	}
	for {
		select {
		case <-l.StopCh:
			return
		case out, ok := <-l.Outbox:
			if !ok {
				return
			}
			h.deliverSnapshots(lobbyID, out.Snapshots)
			h.deliverEvents(lobbyID, out.Events)
		}
	}
}

func (h *Hub) deliverSnapshots(lobbyID string, snapshots map[string]match.Snapshot) {
	if len(snapshots) == 0 {
		return
	}
	for _, c := range h.members(lobbyID) {
		snap, ok := snapshots[c.playerID]
		if !ok {
			continue
		}
		frame, err := encode("game:state", gameStateFromSnapshot(snap))
		if err != nil {
			continue
		}
		c.snapshot.Store(frame)
	}
	h.wakeWriters(lobbyID)
}

func (h *Hub) deliverEvents(lobbyID string, events []match.Event) {
	if len(events) == 0 {
		return
	}
	flashByCenter := map[mapmodel.Vector2][]flashAffectedWire{}
	for _, ev := range events {
		switch e := ev.(type) {
		case match.PlayerJoinedEvent:
			h.emitToLobby(lobbyID, "player_joined_lobby", playerLobbyEventPayload{
				LobbyID: lobbyID, PlayerID: e.PlayerID, Timestamp: time.Now().UnixMilli(),
			})
		case match.PlayerLeftEvent:
			h.emitToLobby(lobbyID, "player_left_lobby", playerLobbyEventPayload{
				LobbyID: lobbyID, PlayerID: e.PlayerID, Timestamp: time.Now().UnixMilli(),
			})
		case match.MatchStateChangedEvent:
			h.emitMatchState(lobbyID, e)
		case match.WeaponFiredEvent:
			h.emitToLobby(lobbyID, "weapon:fired", weaponFiredWire{PlayerID: e.PlayerID, WeaponID: e.WeaponID, Origin: vec(e.Origin), Dir: vec(e.Dir)})
		case match.WeaponHitEvent:
			h.emitToLobby(lobbyID, "weapon:hit", weaponHitWire{PlayerID: e.PlayerID, WeaponID: e.WeaponID, Point: vec(e.Point), PelletIdx: e.PelletIdx})
		case match.WeaponMissEvent:
			h.emitToLobby(lobbyID, "weapon:miss", weaponHitWire{PlayerID: e.PlayerID, WeaponID: e.WeaponID, Point: vec(e.Point), PelletIdx: e.PelletIdx})
		case match.WeaponReloadedEvent:
			h.emitToLobby(lobbyID, "weapon:reloaded", weaponReloadedWire{PlayerID: e.PlayerID, WeaponID: e.WeaponID, AmmoInMagazine: e.AmmoInMagazine, AmmoReserve: e.AmmoReserve})
		case match.WeaponSwitchedEvent:
			h.emitToLobby(lobbyID, "weapon:switched", weaponSwitchedWire{PlayerID: e.PlayerID, ToWeapon: e.ToWeapon, FromWeapon: e.FromWeapon})
		case match.WeaponHeatEvent:
			h.emitToLobby(lobbyID, "weapon:heat:update", weaponHeatWire{PlayerID: e.PlayerID, WeaponID: e.WeaponID, Heat: e.Heat, Overheated: e.Overheated})
		case match.ProjectileSpawnedEvent:
			h.emitToLobby(lobbyID, "projectile:created", projectileCreatedWire{ProjectileID: e.ProjectileID, OwnerID: e.OwnerID, Kind: e.Kind, Pos: vec(e.Pos)})
		case match.ExplosionEvent:
			h.emitToLobby(lobbyID, "projectile:exploded", projectileExplodedWire{ProjectileID: e.ProjectileID, Center: vec(e.Center), Radius: e.Radius})
		case match.WallDamagedEvent:
			h.emitToLobby(lobbyID, "wall:damaged", wallDamagedWire{WallID: e.WallID, SliceIndex: e.SliceIndex, Health: e.Health})
		case match.WallDestroyedEvent:
			h.emitToLobby(lobbyID, "wall:destroyed", wallDamagedWire{WallID: e.WallID, SliceIndex: e.SliceIndex})
		case match.GrenadeBouncedEvent:
			h.emitToLobby(lobbyID, "grenade:bounced", grenadeBouncedWire{ProjectileID: e.ProjectileID, WallID: e.WallID})
		case match.SmokeSpawnedEvent:
			h.emitToLobby(lobbyID, "smoke:spawned", cloudSpawnedWire{ProjectileID: e.ProjectileID, Center: vec(e.Center), MaxRadius: e.MaxRadius})
		case match.FlashSpawnedEvent:
			h.emitToLobby(lobbyID, "flash:spawned", cloudSpawnedWire{ProjectileID: e.ProjectileID, Center: vec(e.Center)})
		case match.DamageEvent:
			h.emitToLobby(lobbyID, "damage", damageWire{AttackerID: e.AttackerID, VictimID: e.VictimID, Amount: e.Amount, VictimHP: e.VictimHP, WeaponID: e.WeaponID})
		case match.KillEvent:
			h.emitDeath(lobbyID, e)
		case match.RespawnEvent:
			h.emitRespawn(lobbyID, e)
		case match.RespawnDeniedEvent:
			if c := h.connFor(lobbyID, e.PlayerID); c != nil {
				if frame, err := encode("backend:respawn:denied", backendRespawnDeniedWire{RemainingTime: e.RemainingSec}); err == nil {
					c.events.Push(frame)
				}
			}
		case match.FlashedEvent:
			flashByCenter[e.Center] = append(flashByCenter[e.Center], flashAffectedWire{
				PlayerID: e.PlayerID, Intensity: e.Severity, Duration: e.Duration, Phases: 3,
			})
		}
	}
	for center, affected := range flashByCenter {
		h.emitToLobby(lobbyID, "FLASHBANG_EFFECT", flashbangEffectWire{Position: vec(center), AffectedPlayers: affected})
	}
	h.wakeWriters(lobbyID)
}

func (h *Hub) emitDeath(lobbyID string, e match.KillEvent) {
	l, ok := h.mgr.Get(lobbyID)
	if !ok {
		return
	}
	victimSnap := l.Sim.BuildSnapshot(e.VictimID, time.Now())
	victim, ok := victimSnap.Players[e.VictimID]
	if !ok {
		return
	}
	var killerTeam mapmodel.Team
	isTeamKill := false
	if e.KillerID != "" {
		if killer, ok := victimSnap.Players[e.KillerID]; ok {
			killerTeam = killer.Team
			isTeamKill = killer.Team == victim.Team
		}
	}
	h.emitToLobby(lobbyID, "backend:player:died", backendPlayerDiedWire{
		PlayerID: e.VictimID, KillerID: e.KillerID, KillerTeam: killerTeam, VictimTeam: victim.Team,
		WeaponType: e.WeaponID, IsTeamKill: isTeamKill, Position: vec(victim.Pos),
		Timestamp: time.Now().UnixMilli(),
	})
}

func (h *Hub) emitRespawn(lobbyID string, e match.RespawnEvent) {
	l, ok := h.mgr.Get(lobbyID)
	if !ok {
		return
	}
	snap := l.Sim.BuildSnapshot(e.PlayerID, time.Now())
	p, ok := snap.Players[e.PlayerID]
	if !ok {
		return
	}
	h.emitToLobby(lobbyID, "backend:player:respawned", backendPlayerRespawnedWire{
		PlayerID: e.PlayerID, Position: vec(e.Pos), Health: 100, Team: p.Team,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (h *Hub) emitMatchState(lobbyID string, e match.MatchStateChangedEvent) {
	switch e.Phase {
	case match.PhaseCountdown:
		h.emitToLobby(lobbyID, "match_starting", matchStartingPayload{LobbyID: lobbyID, CountdownSeconds: e.CountdownEndSec})
	case match.PhasePlaying:
		killTarget := 0
		if l, ok := h.mgr.Get(lobbyID); ok {
			killTarget = l.Sim.KillTarget()
		}
		h.emitToLobby(lobbyID, "match_started", matchStartedPayload{LobbyID: lobbyID, KillTarget: killTarget})
	case match.PhaseWaiting:
		h.emitToLobby(lobbyID, "match_start_cancelled", matchStartCancelledPayload{LobbyID: lobbyID, Reason: "not_enough_players"})
	case match.PhaseFinished:
		h.emitMatchEnded(lobbyID, e)
	}
}

func (h *Hub) emitMatchEnded(lobbyID string, e match.MatchStateChangedEvent) {
	l, ok := h.mgr.Get(lobbyID)
	if !ok {
		return
	}
	ids := l.Sim.PlayerIDs()
	stats := make([]playerStatPayload, 0, len(ids))
	redKills, blueKills := l.Sim.TeamScores()
	now := time.Now()
	for _, id := range ids {
		snap := l.Sim.BuildSnapshot(id, now)
		p, ok := snap.Players[id]
		if !ok {
			continue
		}
		stats = append(stats, playerStatPayload{ID: id, Team: p.Team, Kills: p.Kills, Deaths: p.Deaths})
	}
	h.emitToLobby(lobbyID, "match_ended", matchEndedPayload{
		WinnerTeam: e.WinningTeam, RedKills: redKills, BlueKills: blueKills, PlayerStats: stats,
	})
}

func (h *Hub) connFor(lobbyID, playerID string) *Conn {
	for _, c := range h.members(lobbyID) {
		if c.playerID == playerID {
			return c
		}
	}
	return nil
}

func (h *Hub) wakeWriters(lobbyID string) {
	for _, c := range h.members(lobbyID) {
		c.wake()
	}
}
