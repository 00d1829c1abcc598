// Package lobby owns the fleet of independent matches: creating, listing,
// joining, and retiring per-lobby Simulation instances. Each Lobby is
// mutated by exactly one owner goroutine (its own game loop); the Manager
// only ever touches a Lobby's identity fields (player count, phase,
// timestamps) under its own lock, never the Simulation's internal state.
package lobby

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"time"

	"github.com/google/uuid"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/mapmodel"
	"github.com/arenacore/server/internal/match"
)

// Mode distinguishes a lobby reachable via quick-match matchmaking from one
// only reachable by knowing its ID (and password, if set).
type Mode int

const (
	ModeQuickMatch Mode = iota
	ModePrivate
)

// Lobby is one isolated match: its Simulation plus the bookkeeping the
// Manager needs to matchmake, list, and expire it. Game-loop fields
// (Sim) are owned by the loop goroutine that ticks this lobby; everything
// else here is owned by the Manager's lock.
type Lobby struct {
	ID   string
	Mode Mode
	Name string

	// GameMode is the ruleset this lobby's simulation runs ("deathmatch" or
	// "team_deathmatch"), independent of Mode (which only distinguishes
	// quick-match matchmaking from private, ID-only lobbies).
	GameMode string

	// Capacity is this lobby's max player count, captured at creation from
	// the fleet's configured default.
	Capacity int

	Sim *match.Simulation

	// Outbox delivers one TickOutput per network tick; created by runLoop.
	// Nil until the lobby's loop goroutine starts.
	Outbox chan TickOutput

	passwordSalt []byte
	passwordHash []byte

	CreatedAt    time.Time
	LastActivity time.Time

	// StopCh signals the owning game-loop goroutine to exit; closed
	// exactly once, by the Manager, when the lobby is retired.
	StopCh chan struct{}
}

// HasPassword reports whether joining this lobby requires a password.
func (l *Lobby) HasPassword() bool {
	return len(l.passwordHash) > 0
}

// CheckPassword reports whether attempt matches this lobby's password.
// Lobbies with no password accept any attempt, including empty.
func (l *Lobby) CheckPassword(attempt string) bool {
	if !l.HasPassword() {
		return true
	}
	sum := hashPassword(attempt, l.passwordSalt)
	return subtle.ConstantTimeCompare(sum, l.passwordHash) == 1
}

// Summary is the listing shape exposed to matchmaking/browse clients; it
// never reveals password material.
type Summary struct {
	ID            string
	Name          string
	Mode          Mode
	GameMode      string
	PlayerCount   int
	Capacity      int
	Phase         match.MatchPhase
	HasPassword   bool
	CreatedAt     time.Time
}

// Summary returns this lobby's browse-listing snapshot (see ListFilters).
func (l *Lobby) Summary() Summary {
	return l.summary()
}

func (l *Lobby) summary() Summary {
	return Summary{
		ID:          l.ID,
		Name:        l.Name,
		Mode:        l.Mode,
		GameMode:    l.GameMode,
		PlayerCount: l.Sim.PlayerCount(),
		Capacity:    l.Capacity,
		Phase:       l.Sim.Phase(),
		HasPassword: l.HasPassword(),
		CreatedAt:   l.CreatedAt,
	}
}

// DefaultGameMode is used whenever a client omits the mode field on
// find_match/create_private_lobby.
const DefaultGameMode = "team_deathmatch"

// NormalizeGameMode maps an arbitrary client-supplied mode string onto one
// of the two supported rulesets, falling back to the default for anything
// else (including an empty string).
func NormalizeGameMode(mode string) string {
	if mode == "deathmatch" {
		return "deathmatch"
	}
	return DefaultGameMode
}

func newLobby(mode Mode, gameMode, name, password string, cfg config.AppConfig) (*Lobby, error) {
	model, err := mapmodel.Load(mapmodel.DefaultField())
	if err != nil {
		return nil, err
	}

	gameMode = NormalizeGameMode(gameMode)
	id := uuid.NewString()
	l := &Lobby{
		ID:           id,
		Mode:         mode,
		Name:         name,
		GameMode:     gameMode,
		Capacity:     cfg.Lobby.DefaultCapacity,
		Sim:          match.NewSimulation(id, gameMode, model, cfg),
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
		StopCh:       make(chan struct{}),
	}

	if password != "" {
		salt := make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return nil, err
		}
		l.passwordSalt = salt
		l.passwordHash = hashPassword(password, salt)
	}

	return l, nil
}

func hashPassword(password string, salt []byte) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(password))
	return h.Sum(nil)
}
