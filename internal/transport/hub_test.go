package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/lobby"
)

func testConn(playerID string) *Conn {
	return &Conn{
		playerID: playerID,
		events:   newEventQueue(),
		wakeCh:   make(chan struct{}, 1),
	}
}

func TestHubEmitToLobbyOnlyReachesThatLobbysMembers(t *testing.T) {
	mgr := lobby.NewManager(config.Load())
	h := NewHub(mgr)

	connA := testConn("a")
	connB := testConn("b")
	h.Join("lobby-1", connA)
	h.Join("lobby-2", connB)

	h.emitToLobby("lobby-1", "ping", map[string]string{"hello": "world"})

	framesA := connA.events.Drain()
	framesB := connB.events.Drain()
	assert.Len(t, framesA, 1, "the target lobby's member must receive the frame")
	assert.Empty(t, framesB, "a different lobby's member must never see the frame")
}

func TestHubLeaveRemovesMemberFromFanOut(t *testing.T) {
	mgr := lobby.NewManager(config.Load())
	h := NewHub(mgr)

	conn := testConn("a")
	h.Join("lobby-1", conn)
	h.Leave("lobby-1", conn)

	h.emitToLobby("lobby-1", "ping", map[string]string{})
	assert.Empty(t, conn.events.Drain())
}

func TestHubConnForFindsMemberByPlayerID(t *testing.T) {
	mgr := lobby.NewManager(config.Load())
	h := NewHub(mgr)

	conn := testConn("player-7")
	h.Join("lobby-1", conn)

	found := h.connFor("lobby-1", "player-7")
	require.NotNil(t, found)
	assert.Equal(t, conn, found)
	assert.Nil(t, h.connFor("lobby-1", "nobody"))
}
