package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuickMatchCreatesThenReusesLobby(t *testing.T) {
	cfg := testConfig()
	mgr := NewManager(cfg)

	first, err := mgr.QuickMatch("deathmatch")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := mgr.QuickMatch("deathmatch")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "quick match should reuse an existing non-full lobby of the same mode")
}

func TestQuickMatchNeverMatchesAcrossGameModes(t *testing.T) {
	cfg := testConfig()
	mgr := NewManager(cfg)

	dm, err := mgr.QuickMatch("deathmatch")
	require.NoError(t, err)

	tdm, err := mgr.QuickMatch("team_deathmatch")
	require.NoError(t, err)

	assert.NotEqual(t, dm.ID, tdm.ID)
}

func TestJoinRejectsWrongPassword(t *testing.T) {
	cfg := testConfig()
	mgr := NewManager(cfg)

	l, err := mgr.CreatePrivate("", "deathmatch", "swordfish")
	require.NoError(t, err)

	_, err = mgr.Join(l.ID, "player-1", "Alice", "wrong")
	assert.ErrorIs(t, err, ErrBadPassword)

	joined, err := mgr.Join(l.ID, "player-1", "Alice", "swordfish")
	require.NoError(t, err)
	assert.Equal(t, l.ID, joined.ID)
}

func TestJoinUnknownLobbyReturnsNotFound(t *testing.T) {
	mgr := NewManager(testConfig())
	_, err := mgr.Join("does-not-exist", "player-1", "Alice", "")
	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestJoinRejectsFullLobby(t *testing.T) {
	cfg := testConfig() // DefaultCapacity: 4
	mgr := NewManager(cfg)

	l, err := mgr.CreatePrivate("", "deathmatch", "")
	require.NoError(t, err)

	for i := 0; i < cfg.Lobby.DefaultCapacity; i++ {
		_, err := mgr.Join(l.ID, playerIDFor(i), "p", "")
		require.NoError(t, err)
	}

	_, err = mgr.Join(l.ID, "one-too-many", "p", "")
	assert.ErrorIs(t, err, ErrLobbyFull)
}

func TestListHidesPrivateLobbiesByDefault(t *testing.T) {
	mgr := NewManager(testConfig())
	_, err := mgr.CreatePrivate("", "deathmatch", "")
	require.NoError(t, err)

	assert.Empty(t, mgr.List(ListFilters{}))
	assert.Len(t, mgr.List(ListFilters{ShowPrivate: true}), 1)
}

func TestListFiltersByGameMode(t *testing.T) {
	mgr := NewManager(testConfig())
	_, err := mgr.CreatePrivate("", "deathmatch", "")
	require.NoError(t, err)
	_, err = mgr.CreatePrivate("", "team_deathmatch", "")
	require.NoError(t, err)

	out := mgr.List(ListFilters{ShowPrivate: true, GameMode: "deathmatch"})
	require.Len(t, out, 1)
	assert.Equal(t, "deathmatch", out[0].GameMode)
}

func playerIDFor(i int) string {
	return "player-" + string(rune('a'+i))
}
