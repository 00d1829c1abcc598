package transport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/lobby"
)

func drainEvent(t *testing.T, c *Conn) envelope {
	t.Helper()
	frames := c.events.Drain()
	require.Len(t, frames, 1)
	var env envelope
	require.NoError(t, json.Unmarshal(frames[0], &env))
	return env
}

func TestJoinErrorReasonMapsSentinelsToSpecReasonCodes(t *testing.T) {
	assert.Equal(t, "lobby_not_found", joinErrorReason(lobby.ErrLobbyNotFound))
	assert.Equal(t, "wrong_password", joinErrorReason(lobby.ErrBadPassword))
	assert.Equal(t, "lobby_full", joinErrorReason(lobby.ErrLobbyFull))
	assert.Equal(t, "server_at_capacity", joinErrorReason(lobby.ErrFleetFull))
}

func TestHandleFindMatchRejectsPlayerAlreadyInALobby(t *testing.T) {
	mgr := lobby.NewManager(config.Load())
	s := NewServer(mgr)
	c := testConn("")
	c.lobbyID = "some-lobby-already-joined"

	s.handleFindMatch(c, envelope{Data: json.RawMessage(`{"mode":"deathmatch"}`)})

	env := drainEvent(t, c)
	assert.Equal(t, "matchmaking_failed", env.Event)

	var payload errorPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "already_in_lobby", payload.Reason)

	// No new lobby should exist from the rejected request.
	assert.Empty(t, mgr.List(lobby.ListFilters{ShowPrivate: true, ShowFull: true, ShowInProgress: true}))
}

func TestHandleJoinLobbyReportsTypedFailureOnUnknownLobby(t *testing.T) {
	mgr := lobby.NewManager(config.Load())
	s := NewServer(mgr)
	c := testConn("")

	s.handleJoinLobby(c, envelope{Data: json.RawMessage(`{"lobbyId":"does-not-exist"}`)})

	env := drainEvent(t, c)
	assert.Equal(t, "lobby_join_failed", env.Event)

	var payload errorPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "lobby_not_found", payload.Reason)
}

func TestHandleRequestGameStateSendsImmediateSnapshot(t *testing.T) {
	mgr := lobby.NewManager(config.Load())
	s := NewServer(mgr)

	l, err := mgr.QuickMatch("deathmatch")
	require.NoError(t, err)
	_, err = mgr.Join(l.ID, "player-1", "Alice", "")
	require.NoError(t, err)
	// Join is applied on the lobby's own next physics tick (it already runs
	// its background loop from mgr.QuickMatch); poll rather than assume any
	// fixed number of ticks has elapsed.
	require.Eventually(t, func() bool {
		return l.Sim.PlayerCount() == 1
	}, time.Second, time.Millisecond)

	c := testConn("player-1")
	c.lobbyID = l.ID

	s.handleRequestGameState(c)

	env := drainEvent(t, c)
	assert.Equal(t, "game:state", env.Event)
}

func TestHandleRequestGameStateNoopsForUnknownLobby(t *testing.T) {
	mgr := lobby.NewManager(config.Load())
	s := NewServer(mgr)
	c := testConn("player-1")
	c.lobbyID = "does-not-exist"

	s.handleRequestGameState(c)

	assert.Empty(t, c.events.Drain())
}
