package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/mapmodel"
)

func testLobbyConfig() config.LobbyConfig {
	cfg := config.DefaultLobby()
	cfg.MinPlayersToStart = 2
	cfg.DefaultCapacity = 4
	cfg.KillTarget = 3
	cfg.CountdownLongSec = 10
	cfg.CountdownShortSec = 1
	cfg.FinishedGraceSec = 5
	return cfg
}

func TestControllerStartsCountdownOnceMinPlayersReached(t *testing.T) {
	c := newController(testLobbyConfig())
	now := time.Now()

	events := c.onPlayerCountChanged(1, now)
	assert.Empty(t, events)
	assert.Equal(t, PhaseWaiting, c.phase)

	events = c.onPlayerCountChanged(2, now)
	require.Len(t, events, 1)
	assert.Equal(t, PhaseCountdown, c.phase)
}

func TestControllerAbortsCountdownOnPlayerDropBelowMinimum(t *testing.T) {
	c := newController(testLobbyConfig())
	now := time.Now()

	c.onPlayerCountChanged(2, now)
	require.Equal(t, PhaseCountdown, c.phase)

	c.onPlayerCountChanged(1, now)
	assert.Equal(t, PhaseWaiting, c.phase)
}

func TestControllerTransitionsToPlayingAfterCountdownExpires(t *testing.T) {
	c := newController(testLobbyConfig())
	now := time.Now()
	c.onPlayerCountChanged(2, now)
	require.Equal(t, PhaseCountdown, c.phase)

	events := c.tick(now.Add(11 * time.Second))
	require.Len(t, events, 1)
	assert.Equal(t, PhasePlaying, c.phase)
}

func TestControllerShortensCountdownWhenLobbyFills(t *testing.T) {
	c := newController(testLobbyConfig())
	now := time.Now()
	c.onPlayerCountChanged(2, now)
	require.Equal(t, PhaseCountdown, c.phase)
	longEnd := c.countdownEndAt

	events := c.onPlayerCountChanged(4, now) // DefaultCapacity
	require.Len(t, events, 1)
	assert.True(t, c.countdownEndAt.Before(longEnd), "a full lobby should shorten the countdown")

	// The short countdown (1s) should have expired by now+2s, starting the match.
	events = c.tick(now.Add(2 * time.Second))
	require.Len(t, events, 1)
	assert.Equal(t, PhasePlaying, c.phase)
}

func TestRecordKillIgnoresTeamKills(t *testing.T) {
	c := newController(testLobbyConfig())
	now := time.Now()
	c.onPlayerCountChanged(2, now)
	c.tick(now.Add(11 * time.Second))
	require.Equal(t, PhasePlaying, c.phase)

	events := c.recordKill(mapmodel.TeamRed, mapmodel.TeamRed, now)
	assert.Nil(t, events)
	assert.Equal(t, 0, c.redScore)
}

func TestRecordKillEndsMatchAtKillTarget(t *testing.T) {
	c := newController(testLobbyConfig())
	now := time.Now()
	c.onPlayerCountChanged(2, now)
	c.tick(now.Add(11 * time.Second))
	require.Equal(t, PhasePlaying, c.phase)

	c.recordKill(mapmodel.TeamRed, mapmodel.TeamBlue, now)
	c.recordKill(mapmodel.TeamRed, mapmodel.TeamBlue, now)
	events := c.recordKill(mapmodel.TeamRed, mapmodel.TeamBlue, now)

	require.Len(t, events, 1)
	assert.Equal(t, PhaseFinished, c.phase)
	assert.Equal(t, mapmodel.TeamRed, c.winner)
}

func TestRecordKillIsNoopOutsidePlayingPhase(t *testing.T) {
	c := newController(testLobbyConfig())
	events := c.recordKill(mapmodel.TeamRed, mapmodel.TeamBlue, time.Now())
	assert.Nil(t, events)
	assert.Equal(t, PhaseWaiting, c.phase)
}

func TestControllerReturnsToWaitingAfterFinishedGrace(t *testing.T) {
	c := newController(testLobbyConfig())
	now := time.Now()
	c.onPlayerCountChanged(2, now)
	c.tick(now.Add(11 * time.Second))
	for i := 0; i < 3; i++ {
		c.recordKill(mapmodel.TeamRed, mapmodel.TeamBlue, now)
	}
	require.Equal(t, PhaseFinished, c.phase)

	events := c.tick(now.Add(6 * time.Second))
	require.Len(t, events, 1)
	assert.Equal(t, PhaseWaiting, c.phase)
	assert.Equal(t, 0, c.redScore)
}
