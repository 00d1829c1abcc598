package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenacore/server/internal/lobby"
	"github.com/arenacore/server/internal/mapmodel"
)

func TestEncodeWrapsPayloadInNamedEnvelope(t *testing.T) {
	raw, err := encode("weapon:fired", weaponFiredWire{PlayerID: "p1", WeaponID: "rifle"})
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "weapon:fired", env.Event)

	var payload weaponFiredWire
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "p1", payload.PlayerID)
	assert.Equal(t, "rifle", payload.WeaponID)
}

func TestLoadoutFromWireDefaultsToRedTeam(t *testing.T) {
	loadout, team := loadoutFromWire(loadoutWire{Primary: "rifle", Secondary: "pistol"})
	assert.Equal(t, mapmodel.TeamRed, team)
	assert.Equal(t, "rifle", loadout.Primary)
	assert.Equal(t, "pistol", loadout.Secondary)
}

func TestLoadoutFromWireRecognizesBlueTeam(t *testing.T) {
	_, team := loadoutFromWire(loadoutWire{Team: "blue"})
	assert.Equal(t, mapmodel.TeamBlue, team)
}

func TestInputFromWireCarriesSequenceAndAim(t *testing.T) {
	payload := playerInputPayload{
		Sequence:  42,
		Timestamp: 1000,
		Keys:      keysWire{MoveUp: true, WeaponSlot: 2},
		Mouse:     mouseWire{X: 5, Y: 6, Buttons: 1, Pressed: 1},
	}
	input := inputFromWire(payload)
	assert.Equal(t, uint64(42), input.Sequence)
	assert.True(t, input.Keys.MoveUp)
	assert.Equal(t, 2, input.Keys.WeaponSlot)
	assert.Equal(t, mapmodel.Vector2{X: 5, Y: 6}, input.Aim)
	assert.Equal(t, uint8(1), input.Mouse.Held)
}

func TestLobbyListFromSummariesMarksPrivateAndPasswordState(t *testing.T) {
	summaries := []lobby.Summary{
		{ID: "a", GameMode: "deathmatch", Capacity: 8, PlayerCount: 2, Mode: lobby.ModeQuickMatch},
		{ID: "b", GameMode: "deathmatch", Capacity: 8, PlayerCount: 1, Mode: lobby.ModePrivate, HasPassword: true},
	}
	out := lobbyListFromSummaries(summaries)
	require.Len(t, out.Lobbies, 2)
	assert.Equal(t, 2, out.TotalCount)
	assert.False(t, out.Lobbies[0].IsPrivate)
	assert.True(t, out.Lobbies[1].IsPrivate)
	assert.True(t, out.Lobbies[1].PasswordRequired)
}

func TestVecRoundTripsThroughWireForm(t *testing.T) {
	v := mapmodel.Vector2{X: 1.5, Y: -2.5}
	assert.Equal(t, v, vecFromWire(vec(v)))
}
