package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/lobby"
)

func newTestRouter(t *testing.T) (*httptest.Server, *lobby.Manager) {
	t.Helper()
	cfg := config.Load()
	cfg.Lobby.DefaultCapacity = 4
	mgr := lobby.NewManager(cfg)

	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000, CleanupInterval: time.Minute})
	router := NewRouter(RouterConfig{Manager: mgr, RateLimiter: rl, DisableLogging: true})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	t.Cleanup(rl.Stop)
	return ts, mgr
}

func TestHealthzReportsOK(t *testing.T) {
	ts, _ := newTestRouter(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpointExposesPrometheusFormat(t *testing.T) {
	ts, _ := newTestRouter(t)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListLobbiesEmptyFleet(t *testing.T) {
	ts, _ := newTestRouter(t)
	resp, err := http.Get(ts.URL + "/api/lobbies")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Lobbies    []lobbySummaryResponse `json:"lobbies"`
		TotalCount int                    `json:"totalCount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 0, body.TotalCount)
}

func TestQuickMatchThenListSurfacesTheNewLobby(t *testing.T) {
	ts, _ := newTestRouter(t)

	reqBody, _ := json.Marshal(createLobbyRequest{Mode: "deathmatch"})
	resp, err := http.Post(ts.URL+"/api/lobbies/quick", "application/json", bytes.NewReader(reqBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created lobbySummaryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "deathmatch", created.Mode)
	assert.False(t, created.IsPrivate)

	listResp, err := http.Get(ts.URL + "/api/lobbies")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var list struct {
		Lobbies []lobbySummaryResponse `json:"lobbies"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list.Lobbies, 1)
	assert.Equal(t, created.ID, list.Lobbies[0].ID)
}

func TestCreatePrivateLobbyIsHiddenFromDefaultListing(t *testing.T) {
	ts, _ := newTestRouter(t)

	reqBody, _ := json.Marshal(createLobbyRequest{Mode: "deathmatch", Password: "hunter2"})
	resp, err := http.Post(ts.URL+"/api/lobbies", "application/json", bytes.NewReader(reqBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created lobbySummaryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, created.IsPrivate)
	assert.True(t, created.HasPassword)

	listResp, err := http.Get(ts.URL + "/api/lobbies")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var list struct {
		Lobbies []lobbySummaryResponse `json:"lobbies"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	assert.Empty(t, list.Lobbies)

	getResp, err := http.Get(ts.URL + "/api/lobbies/" + created.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
}

func TestJoinLobbyWithWrongPasswordIsForbidden(t *testing.T) {
	ts, mgr := newTestRouter(t)
	l, err := mgr.CreatePrivate("", "deathmatch", "correct-horse")
	require.NoError(t, err)

	reqBody, _ := json.Marshal(joinLobbyRequest{Password: "wrong"})
	resp, err := http.Post(ts.URL+"/api/lobbies/"+l.ID+"/join", "application/json", bytes.NewReader(reqBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestJoinUnknownLobbyReturnsNotFound(t *testing.T) {
	ts, _ := newTestRouter(t)
	resp, err := http.Post(ts.URL+"/api/lobbies/does-not-exist/join", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetWeaponsReturnsTheReferenceTable(t *testing.T) {
	ts, _ := newTestRouter(t)
	resp, err := http.Get(ts.URL + "/api/weapons")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var table map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&table))
	_, ok := table["rifle"]
	assert.True(t, ok)
}
