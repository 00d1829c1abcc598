package lobby

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/mapmodel"
	"github.com/arenacore/server/internal/match"
	"github.com/arenacore/server/internal/metrics"
)

// ErrLobbyFull is returned when a join targets a lobby already at capacity.
var ErrLobbyFull = errors.New("lobby: at capacity")

// ErrLobbyNotFound is returned when a lobby ID has no live lobby.
var ErrLobbyNotFound = errors.New("lobby: not found")

// ErrBadPassword is returned when a private lobby join supplies the wrong
// password.
var ErrBadPassword = errors.New("lobby: incorrect password")

// ErrFleetFull is returned when the fleet is already at its configured cap
// and a new lobby was requested.
var ErrFleetFull = errors.New("lobby: fleet at maximum capacity")

// cleanupInterval is how often the sweep runs.
const cleanupInterval = 15 * time.Second

// Manager is the fleet-wide registry of live lobbies. One process runs
// exactly one Manager; every lobby it creates gets its own goroutine
// driving runLoop (see loop.go), so no lobby's tick can stall another's.
type Manager struct {
	mu      sync.RWMutex
	lobbies map[string]*Lobby
	cfg     config.AppConfig
}

// NewManager constructs an empty fleet and starts its idle-sweep loop.
func NewManager(cfg config.AppConfig) *Manager {
	m := &Manager{
		lobbies: make(map[string]*Lobby),
		cfg:     cfg,
	}
	go m.cleanupLoop()
	return m
}

// QuickMatch selects the first existing public lobby running gameMode with
// room to spare and not yet finished, creating a new waiting lobby of that
// mode if none qualifies (per §4.7's "selects the first existing lobby
// with mode, status ∈ {waiting, playing}, player count < capacity, and no
// password" rule — a quick-match lobby never carries a password).
func (m *Manager) QuickMatch(gameMode string) (*Lobby, error) {
	gameMode = NormalizeGameMode(gameMode)
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.lobbies {
		if l.Mode != ModeQuickMatch || l.GameMode != gameMode {
			continue
		}
		if l.Sim.PlayerCount() < m.cfg.Lobby.DefaultCapacity && l.Sim.Phase() != match.PhaseFinished {
			return l, nil
		}
	}
	return m.create(ModeQuickMatch, gameMode, "", "")
}

// CreatePrivate creates a new password-protected lobby reachable only by
// ID (and, if set, password). An empty password creates an unlisted but
// unprotected lobby.
func (m *Manager) CreatePrivate(name, gameMode, password string) (*Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(ModePrivate, gameMode, name, password)
}

func (m *Manager) create(mode Mode, gameMode, name, password string) (*Lobby, error) {
	if len(m.lobbies) >= m.cfg.Lobby.MaxLobbies {
		return nil, ErrFleetFull
	}
	l, err := newLobby(mode, gameMode, name, password, m.cfg)
	if err != nil {
		return nil, err
	}
	m.lobbies[l.ID] = l
	go runLoop(l, m.cfg.Field)
	return l, nil
}

// Join admits playerID (with display name) into the lobby identified by
// id, validating capacity and, for private lobbies, the password.
func (m *Manager) Join(id, playerID, name, password string) (*Lobby, error) {
	m.mu.RLock()
	l, ok := m.lobbies[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if !l.CheckPassword(password) {
		return nil, ErrBadPassword
	}
	if l.Sim.PlayerCount() >= m.cfg.Lobby.DefaultCapacity {
		return nil, ErrLobbyFull
	}

	team := balanceTeam(l)
	l.Sim.RequestJoin(playerID, name, team)
	m.mu.Lock()
	l.LastActivity = time.Now()
	m.mu.Unlock()
	return l, nil
}

// Leave removes playerID from the lobby identified by id. It is a no-op
// if the lobby or player no longer exists.
func (m *Manager) Leave(id, playerID string) {
	m.mu.RLock()
	l, ok := m.lobbies[id]
	m.mu.RUnlock()
	if !ok {
		return
	}
	l.Sim.Leave(playerID)
	m.mu.Lock()
	l.LastActivity = time.Now()
	m.mu.Unlock()
}

// Get returns the live lobby for id, if any.
func (m *Manager) Get(id string) (*Lobby, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.lobbies[id]
	return l, ok
}

// ListFilters narrows the lobbies returned by List, mirroring the
// get_lobby_list wire payload: private lobbies, full lobbies, and
// in-progress lobbies are each hidden by default.
type ListFilters struct {
	ShowPrivate    bool
	ShowFull       bool
	ShowInProgress bool
	GameMode       string // empty matches every mode
}

// List returns a browse-friendly summary of lobbies matching filters.
// Private lobbies are omitted unless ShowPrivate is set, since they are
// reachable only by direct ID/password.
func (m *Manager) List(filters ListFilters) []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.lobbies))
	for _, l := range m.lobbies {
		if l.Mode == ModePrivate && !filters.ShowPrivate {
			continue
		}
		if filters.GameMode != "" && l.GameMode != filters.GameMode {
			continue
		}
		sum := l.summary()
		if !filters.ShowFull && sum.PlayerCount >= sum.Capacity {
			continue
		}
		if !filters.ShowInProgress && sum.Phase == match.PhasePlaying {
			continue
		}
		out = append(out, sum)
	}
	return out
}

// cleanupLoop retires lobbies that have sat empty past the configured
// idle timeout (cfg.Lobby.IdleTimeoutSec), and
// finished lobbies whose grace period has long since elapsed along with
// every player having left.
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		m.sweep()
	}
}

func (m *Manager) sweep() {
	now := time.Now()
	// idleTimeout is how long a lobby may sit with zero players before the
	// sweep retires it.
	idleTimeout := time.Duration(m.cfg.Lobby.IdleTimeoutSec * float64(time.Second))
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, l := range m.lobbies {
		if l.Sim.PlayerCount() > 0 {
			continue
		}
		if now.Sub(l.LastActivity) < idleTimeout {
			continue
		}
		close(l.StopCh)
		delete(m.lobbies, id)
	}
	m.reportMetricsLocked()
}

// reportMetricsLocked updates the fleet-wide gauges; callers must already
// hold m.mu.
func (m *Manager) reportMetricsLocked() {
	players := 0
	for _, l := range m.lobbies {
		players += l.Sim.PlayerCount()
	}
	metrics.SetLobbyCount(len(m.lobbies))
	metrics.SetPlayerCount(players)
}

// balanceTeam assigns a new joiner to whichever team currently has fewer
// players, defaulting to red on a tie.
func balanceTeam(l *Lobby) mapmodel.Team {
	red, blue := l.Sim.TeamCounts()
	if blue < red {
		return mapmodel.TeamBlue
	}
	return mapmodel.TeamRed
}

// NewPlayerID mints a fresh opaque player identifier for connections that
// don't supply one of their own.
func NewPlayerID() string {
	return uuid.NewString()
}
