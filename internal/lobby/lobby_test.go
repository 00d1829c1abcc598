package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenacore/server/internal/config"
)

func testConfig() config.AppConfig {
	cfg := config.Load()
	cfg.Lobby.DefaultCapacity = 4
	cfg.Lobby.MaxLobbies = 10
	return cfg
}

func TestNormalizeGameMode(t *testing.T) {
	assert.Equal(t, "deathmatch", NormalizeGameMode("deathmatch"))
	assert.Equal(t, DefaultGameMode, NormalizeGameMode("team_deathmatch"))
	assert.Equal(t, DefaultGameMode, NormalizeGameMode(""))
	assert.Equal(t, DefaultGameMode, NormalizeGameMode("not_a_real_mode"))
}

func TestNewLobbyNormalizesGameModeAndSetsCapacity(t *testing.T) {
	cfg := testConfig()
	l, err := newLobby(ModeQuickMatch, "deathmatch", "", "", cfg)
	require.NoError(t, err)
	assert.Equal(t, "deathmatch", l.GameMode)
	assert.Equal(t, cfg.Lobby.DefaultCapacity, l.Capacity)
	assert.False(t, l.HasPassword())
}

func TestLobbyPasswordRoundTrip(t *testing.T) {
	cfg := testConfig()
	l, err := newLobby(ModePrivate, "", "friends only", "hunter2", cfg)
	require.NoError(t, err)

	assert.True(t, l.HasPassword())
	assert.True(t, l.CheckPassword("hunter2"))
	assert.False(t, l.CheckPassword("wrong"))
	assert.False(t, l.CheckPassword(""))
}

func TestLobbyWithoutPasswordAcceptsAnyAttempt(t *testing.T) {
	cfg := testConfig()
	l, err := newLobby(ModePrivate, "", "open lobby", "", cfg)
	require.NoError(t, err)

	assert.False(t, l.HasPassword())
	assert.True(t, l.CheckPassword(""))
	assert.True(t, l.CheckPassword("anything"))
}

func TestSummaryNeverLeaksPasswordMaterial(t *testing.T) {
	cfg := testConfig()
	l, err := newLobby(ModePrivate, "deathmatch", "secret lobby", "topsecret", cfg)
	require.NoError(t, err)

	sum := l.Summary()
	assert.Equal(t, l.ID, sum.ID)
	assert.True(t, sum.HasPassword)
	assert.Equal(t, "deathmatch", sum.GameMode)
	assert.Equal(t, cfg.Lobby.DefaultCapacity, sum.Capacity)
}
