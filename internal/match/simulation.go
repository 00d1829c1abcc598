// Package match implements one lobby's authoritative simulation: the
// physics/network dual-rate tick loop, input acceptance, weapon resolution,
// and the match lifecycle state machine. Exactly one goroutine drives a
// Simulation's tick loop at a time; all external access goes through its
// Enqueue*/Tick* methods so callers never reach across lobby boundaries.
package match

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/destruction"
	"github.com/arenacore/server/internal/mapmodel"
	"github.com/arenacore/server/internal/metrics"
	"github.com/arenacore/server/internal/physics"
	"github.com/arenacore/server/internal/vision"
)

// speeds in pixels per physics tick at 60Hz, tuned so a walk covers the
// 480px field in about 4 seconds.
const (
	sneakSpeed = 1.0
	walkSpeed  = 2.0
	runSpeed   = 3.2

	hitscanMuzzleOffset = 8 // pixels in front of the shooter, avoids self-hit
	hitscanMaxRange     = 600
)

// Simulation owns one lobby's players, walls, projectiles, smoke zones, and
// the match controller. Logically, exactly one owner drives the tick loop
// (TickPhysics) at a time, matching the rest of the field state; mu exists
// only so the transport's read/write goroutines can enqueue input and read
// snapshots concurrently with that tick without racing it.
type Simulation struct {
	LobbyID string
	Mode    string

	mu sync.Mutex

	cfg   config.AppConfig
	model *mapmodel.Model
	dest  *destruction.Engine

	wallEpoch uint64

	players     map[string]*Player
	inputQueues map[string]*InputQueue

	projectiles map[string]*Projectile
	smoke       map[string]*FlashZone

	ctrl *controller

	pendingFire    []FireRequest
	pendingReload  []ReloadRequest
	pendingSwitch  []SwitchRequest
	pendingRespawn []RespawnRequest
	pendingJoin    []joinRequest
	pendingLoadout []LoadoutRequest

	events []Event

	lastActivityAt time.Time
	nextEntityID   uint64
}

// FlashZone is an alias kept distinct from SmokeZone at the map-storage
// level so flash/smoke bookkeeping can diverge later; today it is the same
// underlying SmokeZone type used purely for smoke clouds.
type FlashZone = SmokeZone

type joinRequest struct {
	playerID string
	name     string
	team     mapmodel.Team
	lateJoin bool
}

// NewSimulation constructs an empty, waiting-phase simulation over a shared
// (read-only) map model.
func NewSimulation(lobbyID, mode string, model *mapmodel.Model, cfg config.AppConfig) *Simulation {
	return &Simulation{
		LobbyID:     lobbyID,
		Mode:        mode,
		cfg:         cfg,
		model:       model,
		dest:        destruction.New(model),
		players:     make(map[string]*Player),
		inputQueues: make(map[string]*InputQueue),
		projectiles: make(map[string]*Projectile),
		smoke:       make(map[string]*FlashZone),
		ctrl:        newController(cfg.Lobby),
	}
}

// Phase reports the current match lifecycle phase.
func (s *Simulation) Phase() MatchPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.phase
}

// KillTarget reports the team score needed to win this lobby's match.
func (s *Simulation) KillTarget() int {
	return s.cfg.Lobby.KillTarget
}

// TeamScores reports each team's current kill count.
func (s *Simulation) TeamScores() (red, blue int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.redScore, s.ctrl.blueScore
}

// PlayerCount reports the number of joined players.
func (s *Simulation) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// PlayerIDs returns the IDs of every currently joined player, for callers
// that need to fan out per-player work (e.g. building one snapshot each).
func (s *Simulation) PlayerIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.players))
	for id := range s.players {
		out = append(out, id)
	}
	return out
}

// TeamCounts reports how many joined (and pending-join) players are on
// each team, for matchmaking team balancing.
func (s *Simulation) TeamCounts() (red, blue int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		switch p.Team {
		case mapmodel.TeamRed:
			red++
		case mapmodel.TeamBlue:
			blue++
		}
	}
	for _, j := range s.pendingJoin {
		switch j.team {
		case mapmodel.TeamRed:
			red++
		case mapmodel.TeamBlue:
			blue++
		}
	}
	return red, blue
}

// RequestJoin enqueues a join to be applied on the next physics tick; a
// lateJoin grants spawn invulnerability and is reported as such in
// match_started.
func (s *Simulation) RequestJoin(playerID, name string, team mapmodel.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lateJoin := s.ctrl.phase == PhasePlaying
	s.pendingJoin = append(s.pendingJoin, joinRequest{playerID, name, team, lateJoin})
}

// Leave removes a player immediately; lobby destruction/idle bookkeeping is
// the LobbyManager's concern, not the simulation's.
func (s *Simulation) Leave(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[playerID]; !ok {
		return
	}
	delete(s.players, playerID)
	delete(s.inputQueues, playerID)
	s.events = append(s.events, PlayerLeftEvent{PlayerID: playerID})
	s.events = append(s.events, s.ctrl.onPlayerCountChanged(len(s.players), time.Now())...)
}

// EnqueueInput hands a validated-at-ingress input frame to the player's
// queue; physics ticks drain it in sequence order.
func (s *Simulation) EnqueueInput(playerID string, in Input, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.inputQueues[playerID]
	if !ok {
		return
	}
	q.Offer(in, now, s.cfg.Field)
	s.lastActivityAt = now
}

func (s *Simulation) EnqueueFire(req FireRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingFire = append(s.pendingFire, req)
}

func (s *Simulation) EnqueueReload(req ReloadRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingReload = append(s.pendingReload, req)
}

func (s *Simulation) EnqueueSwitch(req SwitchRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingSwitch = append(s.pendingSwitch, req)
}

func (s *Simulation) EnqueueRespawn(req RespawnRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingRespawn = append(s.pendingRespawn, req)
}

// EnqueueLoadout hands a player:join loadout declaration to be applied on
// the next physics tick.
func (s *Simulation) EnqueueLoadout(req LoadoutRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingLoadout = append(s.pendingLoadout, req)
}

func (s *Simulation) nextID(prefix string) string {
	s.nextEntityID++
	return fmt.Sprintf("%s-%s-%d", s.LobbyID, prefix, s.nextEntityID)
}

// TickPhysics runs one 60Hz step: applies joins, drains input, moves
// players, resolves fire/reload/switch/respawn requests, advances
// projectiles and smoke, and runs controller timers. Returns the events
// produced this tick (callers append to the lobby's network-tick batch).
func (s *Simulation) TickPhysics(now time.Time, dt float64) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyJoins(now)
	s.applyLoadoutRequests()
	s.applyMovement(now)
	s.applyFireRequests(now)
	s.applyReloadRequests(now)
	s.applySwitchRequests()
	s.applyRespawnRequests(now)
	s.tickProjectiles(now, dt)
	s.tickSmoke(now)
	s.tickWeaponTimers(now, dt)
	s.events = append(s.events, s.ctrl.tick(now)...)

	out := s.events
	s.events = nil
	return out
}

func (s *Simulation) applyJoins(now time.Time) {
	for _, j := range s.pendingJoin {
		spawn := s.model.SpawnPointsFor(j.team)
		pos := mapmodel.Vector2{}
		if len(spawn) > 0 {
			pos = spawn[0]
		}
		pos = physics.SanitizeSpawn(s.model, pos, j.team)

		p := NewPlayer(j.playerID, j.name, j.team, pos)
		if j.lateJoin {
			p.SpawnInvulnerableUntil = now.Add(time.Duration(s.cfg.Input.SpawnInvulnerableSec * float64(time.Second)))
		}
		s.players[j.playerID] = p
		s.inputQueues[j.playerID] = NewInputQueue(s.cfg.Input)
		s.events = append(s.events, PlayerJoinedEvent{PlayerID: j.playerID, Team: j.team, Pos: pos})
	}
	if len(s.pendingJoin) > 0 {
		s.events = append(s.events, s.ctrl.onPlayerCountChanged(len(s.players), now)...)
	}
	s.pendingJoin = nil
}

// applyLoadoutRequests equips each declared loadout onto its already-joined
// player; a request for a player who left before this tick is dropped.
func (s *Simulation) applyLoadoutRequests() {
	for _, req := range s.pendingLoadout {
		p, ok := s.players[req.PlayerID]
		if !ok {
			continue
		}
		p.ApplyLoadout(req.Loadout)
	}
	s.pendingLoadout = nil
}

func (s *Simulation) applyMovement(now time.Time) {
	for id, p := range s.players {
		q := s.inputQueues[id]
		if q == nil {
			continue
		}
		frames := q.Drain() // ascending sequence order
		for _, in := range frames {
			// Highwater mark is the max sequence processed, never just the
			// last one iterated, so a tick can never regress it even if a
			// future caller changes Drain's ordering guarantee.
			if in.Sequence > p.LastProcessedInputSequence {
				p.LastProcessedInputSequence = in.Sequence
			}
			if !p.Alive {
				continue
			}
			s.stepMovement(p, in, now)
			p.AimDir = aimDirFrom(p, in.Aim)
			p.Rotation = float32(math.Atan2(float64(p.AimDir.Y), float64(p.AimDir.X)))
		}
	}
}

func aimDirFrom(p *Player, aim mapmodel.Vector2) mapmodel.Vector2 {
	dx := aim.X - p.Center().X
	dy := aim.Y - p.Center().Y
	d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if d == 0 {
		return p.AimDir
	}
	return mapmodel.Vector2{X: dx / d, Y: dy / d}
}

func (s *Simulation) stepMovement(p *Player, in Input, now time.Time) {
	mode := MovementWalk
	speed := float32(walkSpeed)
	if in.Keys.Sneak {
		mode = MovementSneak
		speed = sneakSpeed
	} else if in.Keys.Run {
		mode = MovementRun
		speed = runSpeed
	}
	p.MovementMode = mode

	var dx, dy float32
	if in.Keys.MoveUp {
		dy--
	}
	if in.Keys.MoveDown {
		dy++
	}
	if in.Keys.MoveLeft {
		dx--
	}
	if in.Keys.MoveRight {
		dx++
	}
	if dx == 0 && dy == 0 {
		p.Vel = mapmodel.Vector2{}
		return
	}
	norm := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	dx, dy = dx/norm*speed, dy/norm*speed

	if p.Effect.Active(now) {
		impair := 1 - p.Effect.MovementImpairment
		dx *= impair
		dy *= impair
	}

	p.Vel = mapmodel.Vector2{X: dx, Y: dy}
	p.Pos = physics.ResolveMovement(s.model, p.Pos, p.Vel)
}

func (s *Simulation) applyReloadRequests(now time.Time) {
	for _, r := range s.pendingReload {
		p, ok := s.players[r.PlayerID]
		if !ok || !p.Alive {
			continue
		}
		w, ok := p.Weapons[p.Current]
		if !ok {
			continue
		}
		w.StartReload(now)
	}
	s.pendingReload = nil
}

func (s *Simulation) applySwitchRequests() {
	for _, r := range s.pendingSwitch {
		p, ok := s.players[r.PlayerID]
		if !ok || !p.Alive {
			continue
		}
		if _, has := p.Weapons[r.ToWeapon]; has {
			from := p.Current
			p.Current = r.ToWeapon
			s.events = append(s.events, WeaponSwitchedEvent{PlayerID: p.ID, ToWeapon: r.ToWeapon, FromWeapon: from})
		}
	}
	s.pendingSwitch = nil
}

func (s *Simulation) applyRespawnRequests(now time.Time) {
	for _, r := range s.pendingRespawn {
		p, ok := s.players[r.PlayerID]
		if !ok || p.Alive {
			continue
		}
		if now.Before(p.RespawnDeadline) {
			s.events = append(s.events, RespawnDeniedEvent{PlayerID: p.ID, RemainingSec: p.RespawnDeadline.Sub(now).Seconds()})
			continue
		}
		s.respawn(p, now)
	}
	s.pendingRespawn = nil
}

func (s *Simulation) respawn(p *Player, now time.Time) {
	spawns := s.model.SpawnPointsFor(p.Team)
	pos := mapmodel.Vector2{}
	if len(spawns) > 0 {
		pos = spawns[0]
	}
	p.Pos = physics.SanitizeSpawn(s.model, pos, p.Team)
	p.Alive = true
	p.Health = 100
	p.Vel = mapmodel.Vector2{}
	p.SpawnInvulnerableUntil = now.Add(time.Duration(s.cfg.Input.SpawnInvulnerableSec * float64(time.Second)))
	s.events = append(s.events, RespawnEvent{PlayerID: p.ID, Pos: p.Pos})
}

func (s *Simulation) tickWeaponTimers(now time.Time, dt float64) {
	for _, p := range s.players {
		for wid, w := range p.Weapons {
			wasOverheated := !w.OverheatedUntil.IsZero() && now.Before(w.OverheatedUntil)
			if w.TickReload(now) {
				s.events = append(s.events, WeaponReloadedEvent{PlayerID: p.ID, WeaponID: wid, AmmoInMagazine: w.AmmoInMagazine, AmmoReserve: w.AmmoReserve})
			}
			w.CoolHeat(dt)
			if wasOverheated && !now.Before(w.OverheatedUntil) {
				s.events = append(s.events, WeaponHeatEvent{PlayerID: p.ID, WeaponID: wid, Heat: w.Heat, Overheated: false})
			}
		}
	}
}

func (s *Simulation) tickSmoke(now time.Time) {
	for id, z := range s.smoke {
		z.Tick(now)
		if z.Expired(now) {
			delete(s.smoke, id)
		}
	}
}

// applyDamage is the single authority mutating health, kills, deaths, and
// team score. Every other code path must route through this.
func (s *Simulation) applyDamage(attackerID, victimID string, amount int, weaponID string, now time.Time) {
	victim, ok := s.players[victimID]
	if !ok || !victim.Alive {
		return
	}
	if victim.IsInvulnerable(now) {
		return
	}

	victim.Health -= amount
	reportedHP := victim.Health
	if reportedHP < 0 {
		reportedHP = 0
	}
	s.events = append(s.events, DamageEvent{
		AttackerID: attackerID, VictimID: victimID, Amount: amount, VictimHP: reportedHP, WeaponID: weaponID,
	})

	if victim.Health > 0 {
		return
	}

	victim.Health = 0
	victim.Alive = false
	victim.Deaths++
	victim.RespawnDeadline = now.Add(2 * time.Second)

	attacker, hasAttacker := s.players[attackerID]
	isTeamKill := hasAttacker && attacker.Team == victim.Team
	if hasAttacker && !isTeamKill {
		attacker.Kills++
	}

	killEvt := KillEvent{KillerID: attackerID, VictimID: victimID, WeaponID: weaponID, VictimDeaths: victim.Deaths}
	if hasAttacker {
		killEvt.KillerKills = attacker.Kills
	}
	s.events = append(s.events, killEvt)

	if hasAttacker && !isTeamKill {
		s.events = append(s.events, s.ctrl.recordKill(attacker.Team, victim.Team, now)...)
	}
}

func (s *Simulation) bumpWallEpoch(n int) {
	if n > 0 {
		s.wallEpoch++
	}
}

func (s *Simulation) emitWallEvents(evts []destruction.Event) {
	for _, e := range evts {
		switch e.Kind {
		case destruction.EventWallDamaged:
			s.events = append(s.events, WallDamagedEvent{WallID: e.WallID, SliceIndex: e.SliceIndex, Health: e.Health})
		case destruction.EventWallDestroyed:
			s.events = append(s.events, WallDestroyedEvent{WallID: e.WallID, SliceIndex: e.SliceIndex})
		}
	}
	s.bumpWallEpoch(len(evts))
}

// VisionFor computes (or reuses the cached) vision result for player id,
// using the shared network-tick "now".
func (s *Simulation) VisionFor(id string, now time.Time) vision.Result {
	p, ok := s.players[id]
	if !ok {
		return vision.Result{}
	}
	zones := make([]vision.SmokeZone, 0, len(s.smoke))
	for _, z := range s.smoke {
		zones = append(zones, z.ToVisionZone())
	}

	eye := p.Center()
	if p.Vision.Reusable(eye, p.AimDir, s.wallEpoch, now) {
		return p.Vision.Result()
	}
	start := time.Now()
	res := vision.Compute(s.model, eye, p.AimDir, zones, vision.DefaultConfig())
	metrics.RecordVision(time.Since(start))
	p.Vision.Store(eye, p.AimDir, s.wallEpoch, now, res)
	return res
}
