package transport

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arenacore/server/internal/api"
	"github.com/arenacore/server/internal/lobby"
	"github.com/arenacore/server/internal/match"
	"github.com/arenacore/server/internal/metrics"
)

const (
	maxWSConnectionsTotal = 500
	maxWSConnectionsPerIP = 10

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	writerTickRate = 50 * time.Millisecond // matches the 20Hz network tick
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if api.IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("⚠️ transport: websocket rejected from origin: %s", origin)
		metrics.RecordConnectionRejected("origin")
		return false
	},
}

// Conn is one client's live WebSocket session: a joined lobby, a player
// identity within it, and the two delivery primitives the hub writes
// through (snapshotSlot for latest-wins state, eventQueue for
// never-dropped discrete events).
type Conn struct {
	ws       *websocket.Conn
	ip       string
	playerID string
	lobbyID  string

	snapshot snapshotSlot
	events   *eventQueue
	wakeCh   chan struct{}

	writeMu chan struct{} // 1-buffered mutex guarding concurrent writes to ws
}

func newConn(ws *websocket.Conn, ip string) *Conn {
	c := &Conn{
		ws:      ws,
		ip:      ip,
		events:  newEventQueue(),
		wakeCh:  make(chan struct{}, 1),
		writeMu: make(chan struct{}, 1),
	}
	c.writeMu <- struct{}{}
	return c
}

// wake nudges the writer pump to flush without waiting for its next tick;
// used so discrete events (kills, wall breaks) don't wait a full network
// tick behind the snapshot cadence.
func (c *Conn) wake() {
	select {
	case c.wakeCh <- struct{}{}:
	default:
	}
}

func (c *Conn) writeFrame(frame []byte) error {
	<-c.writeMu
	defer func() { c.writeMu <- struct{}{} }()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

// Server wires HTTP upgrade requests into lobby-scoped WebSocket sessions.
type Server struct {
	mgr       *lobby.Manager
	hub       *Hub
	wsLimiter *api.WebSocketRateLimiter

	connMu sync.Mutex
	total  int
}

// NewServer builds a transport Server over the given lobby fleet.
func NewServer(mgr *lobby.Manager) *Server {
	return &Server{
		mgr:       mgr,
		hub:       NewHub(mgr),
		wsLimiter: api.NewWebSocketRateLimiter(maxWSConnectionsPerIP),
	}
}

// HandleWebSocket upgrades the request and runs the connection's read/write
// pumps until the client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := api.GetClientIP(r)

	s.connMu.Lock()
	total := s.total
	s.connMu.Unlock()
	if total >= maxWSConnectionsTotal {
		metrics.RecordConnectionRejected("ws_total_limit")
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	if !s.wsLimiter.Allow(ip) {
		metrics.RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.wsLimiter.Release(ip)
		return
	}

	s.connMu.Lock()
	s.total++
	s.connMu.Unlock()
	metrics.SetWSConnections(s.total)

	c := newConn(ws, ip)

	go s.writePump(c)
	s.readPump(c)

	s.teardown(c)
}

func (s *Server) teardown(c *Conn) {
	if c.lobbyID != "" {
		s.hub.Leave(c.lobbyID, c)
		if l, ok := s.mgr.Get(c.lobbyID); ok {
			l.Sim.Leave(c.playerID)
		}
	}
	s.wsLimiter.Release(c.ip)
	c.ws.Close()

	s.connMu.Lock()
	s.total--
	total := s.total
	s.connMu.Unlock()
	metrics.SetWSConnections(total)
}

// readPump decodes one envelope per inbound message and dispatches it; it
// owns the connection's read deadline and returns once the socket closes.
func (s *Server) readPump(c *Conn) {
	c.ws.SetReadLimit(8192)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		s.dispatch(c, env)
		metrics.IncWSMessages()
	}
}

// writePump flushes the connection's snapshot slot and event queue on the
// network tick cadence, plus whenever wake() fires so discrete events don't
// trail the cadence by a full tick. It returns as soon as a write fails,
// which closes the socket and lets readPump's blocking read unwind too.
func (s *Server) writePump(c *Conn) {
	ticker := time.NewTicker(writerTickRate)
	pinger := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer pinger.Stop()
	defer c.ws.Close()

	for {
		select {
		case <-ticker.C:
			if !s.flush(c) {
				return
			}
		case <-c.wakeCh:
			if !s.flush(c) {
				return
			}
		case <-pinger.C:
			if !c.ping() {
				return
			}
		}
	}
}

func (c *Conn) ping() bool {
	<-c.writeMu
	err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
	c.writeMu <- struct{}{}
	return err == nil
}

// flush reports whether the connection is still writable.
func (s *Server) flush(c *Conn) bool {
	if frame, ok := c.snapshot.Take(); ok {
		if c.writeFrame(frame) != nil {
			return false
		}
	}
	for _, frame := range c.events.Drain() {
		if c.writeFrame(frame) != nil {
			return false
		}
	}
	return true
}

func decode[T any](env envelope) (T, error) {
	var v T
	err := json.Unmarshal(env.Data, &v)
	return v, err
}

func (s *Server) dispatch(c *Conn, env envelope) {
	switch env.Event {
	case "find_match", "quick_match":
		s.handleFindMatch(c, env)
	case "create_private_lobby":
		s.handleCreatePrivate(c, env)
	case "join_lobby":
		s.handleJoinLobby(c, env)
	case "get_lobby_list":
		s.handleLobbyList(c, env)
	case "leave_lobby":
		s.handleLeaveLobby(c)
	case "player:join":
		s.handlePlayerJoin(c, env)
	case "player:input":
		s.handlePlayerInput(c, env)
	case "player:respawn":
		s.handleRespawn(c)
	case "request_game_state":
		s.handleRequestGameState(c)
	case "weapon:fire":
		s.handleWeaponFire(c, env)
	case "weapon:reload":
		s.handleWeaponReload(c, env)
	case "weapon:switch":
		s.handleWeaponSwitch(c, env)
	default:
		log.Printf("transport: unknown client event %q from %s", env.Event, c.ip)
	}
}

func (s *Server) send(c *Conn, event string, data interface{}) {
	frame, err := encode(event, data)
	if err != nil {
		return
	}
	c.events.Push(frame)
	c.wake()
}

func (s *Server) handleFindMatch(c *Conn, env envelope) {
	if c.lobbyID != "" {
		s.send(c, "matchmaking_failed", errorPayload{Reason: "already_in_lobby"})
		return
	}
	req, _ := decode[findMatchPayload](env)
	l, err := s.mgr.QuickMatch(req.Mode)
	if err != nil {
		s.send(c, "matchmaking_failed", errorPayload{Reason: joinErrorReason(err)})
		return
	}
	s.admit(c, l, "")
}

func (s *Server) handleCreatePrivate(c *Conn, env envelope) {
	if c.lobbyID != "" {
		s.send(c, "lobby_creation_failed", errorPayload{Reason: "already_in_lobby"})
		return
	}
	req, _ := decode[createPrivateLobbyPayload](env)
	l, err := s.mgr.CreatePrivate("", req.Mode, req.Password)
	if err != nil {
		s.send(c, "lobby_creation_failed", errorPayload{Reason: joinErrorReason(err)})
		return
	}
	s.admit(c, l, req.Password)
}

func (s *Server) handleJoinLobby(c *Conn, env envelope) {
	if c.lobbyID != "" {
		s.send(c, "lobby_join_failed", errorPayload{Reason: "already_in_lobby"})
		return
	}
	req, _ := decode[joinLobbyPayload](env)
	s.admitByID(c, req.LobbyID, req.Password)
}

// admitByID resolves a lobby by ID through Manager.Join so capacity and
// password checks run atomically with admission, then registers the
// connection with the hub.
func (s *Server) admitByID(c *Conn, lobbyID, password string) {
	playerID := lobby.NewPlayerID()
	l, err := s.mgr.Join(lobbyID, playerID, "", password)
	if err != nil {
		s.send(c, "lobby_join_failed", errorPayload{Reason: joinErrorReason(err)})
		return
	}
	c.lobbyID = l.ID
	c.playerID = playerID
	s.hub.Join(l.ID, c)
	s.sendLobbyJoined(c, l)
}

// joinErrorReason maps a lobby package sentinel error to the typed reason
// code §7 of the spec names (lobby_not_found, wrong_password, lobby_full,
// server_at_capacity); anything else falls back to its Error() string.
func joinErrorReason(err error) string {
	switch err {
	case lobby.ErrLobbyNotFound:
		return "lobby_not_found"
	case lobby.ErrBadPassword:
		return "wrong_password"
	case lobby.ErrLobbyFull:
		return "lobby_full"
	case lobby.ErrFleetFull:
		return "server_at_capacity"
	default:
		return err.Error()
	}
}

// admit joins l (already created/located by QuickMatch or CreatePrivate)
// through the same Manager.Join admission path, so capacity and password
// checks still run even for a lobby the caller just found or made.
func (s *Server) admit(c *Conn, l *lobby.Lobby, password string) {
	s.admitByID(c, l.ID, password)
}

func (s *Server) sendLobbyJoined(c *Conn, l *lobby.Lobby) {
	s.send(c, "lobby_joined", lobbyJoinedPayload{
		LobbyID:      l.ID,
		PlayerCount:  l.Sim.PlayerCount(),
		MaxPlayers:   l.Capacity,
		Mode:         l.GameMode,
		Status:       l.Sim.Phase().String(),
		IsInProgress: l.Sim.Phase() == match.PhasePlaying,
	})
}

func (s *Server) handleLobbyList(c *Conn, env envelope) {
	req, _ := decode[getLobbyListPayload](env)
	out := s.mgr.List(lobby.ListFilters{
		ShowPrivate:    req.ShowPrivate,
		ShowFull:       req.ShowFull,
		ShowInProgress: req.ShowInProgress,
		GameMode:       req.Mode,
	})
	s.send(c, "lobby_list", lobbyListFromSummaries(out))
}

func (s *Server) handleLeaveLobby(c *Conn) {
	if c.lobbyID == "" {
		return
	}
	if l, ok := s.mgr.Get(c.lobbyID); ok {
		l.Sim.Leave(c.playerID)
	}
	s.hub.Leave(c.lobbyID, c)
	c.lobbyID = ""
}

// handlePlayerJoin applies the declared loadout to a player already
// admitted into the lobby by find_match/create_private_lobby/join_lobby;
// it does not itself join the player into the simulation.
func (s *Server) handlePlayerJoin(c *Conn, env envelope) {
	if c.lobbyID == "" {
		return
	}
	l, ok := s.mgr.Get(c.lobbyID)
	if !ok {
		return
	}
	req, err := decode[playerJoinPayload](env)
	if err != nil {
		return
	}
	loadout, _ := loadoutFromWire(req.Loadout)
	l.Sim.EnqueueLoadout(match.LoadoutRequest{PlayerID: c.playerID, Loadout: loadout})
}

func (s *Server) handlePlayerInput(c *Conn, env envelope) {
	l, ok := s.mgr.Get(c.lobbyID)
	if !ok {
		return
	}
	req, err := decode[playerInputPayload](env)
	if err != nil {
		return
	}
	l.Sim.EnqueueInput(c.playerID, inputFromWire(req), time.Now())
}

func (s *Server) handleRespawn(c *Conn) {
	l, ok := s.mgr.Get(c.lobbyID)
	if !ok {
		return
	}
	l.Sim.EnqueueRespawn(match.RespawnRequest{PlayerID: c.playerID})
}

func (s *Server) handleWeaponFire(c *Conn, env envelope) {
	l, ok := s.mgr.Get(c.lobbyID)
	if !ok {
		return
	}
	req, err := decode[weaponFirePayload](env)
	if err != nil {
		return
	}
	l.Sim.EnqueueFire(match.FireRequest{
		PlayerID:    c.playerID,
		WeaponID:    req.WeaponType,
		Position:    vecFromWire(req.Position),
		Direction:   vecFromWire(req.Direction),
		IsADS:       req.IsADS,
		ChargeLevel: req.ChargeLevel,
		Sequence:    req.Sequence,
		Timestamp:   req.Timestamp,
	})
}

func (s *Server) handleWeaponReload(c *Conn, env envelope) {
	l, ok := s.mgr.Get(c.lobbyID)
	if !ok {
		return
	}
	l.Sim.EnqueueReload(match.ReloadRequest{PlayerID: c.playerID})
}

// handleRequestGameState lets a client re-synchronize after a dropped frame
// or reconnect by forcing an immediate filtered snapshot, rather than
// waiting for the next 20Hz network tick to land in the snapshot slot.
func (s *Server) handleRequestGameState(c *Conn) {
	l, ok := s.mgr.Get(c.lobbyID)
	if !ok {
		return
	}
	snap := l.Sim.BuildSnapshot(c.playerID, time.Now())
	s.send(c, "game:state", gameStateFromSnapshot(snap))
}

func (s *Server) handleWeaponSwitch(c *Conn, env envelope) {
	l, ok := s.mgr.Get(c.lobbyID)
	if !ok {
		return
	}
	req, err := decode[weaponSwitchPayload](env)
	if err != nil {
		return
	}
	l.Sim.EnqueueSwitch(match.SwitchRequest{PlayerID: c.playerID, ToWeapon: req.ToWeapon, FromWeapon: req.FromWeapon})
}
