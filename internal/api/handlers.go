package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arenacore/server/internal/lobby"
	"github.com/arenacore/server/internal/weapons"
)

// routerHandlers backs the REST convenience surface: browsing/creating/
// joining lobbies over plain HTTP in addition to the WebSocket channel used
// for in-match traffic (player:input, weapon:fire, game:state, ...).
type routerHandlers struct {
	mgr *lobby.Manager
}

type createLobbyRequest struct {
	Mode       string `json:"mode"`
	MaxPlayers int    `json:"maxPlayers"`
	Password   string `json:"password"`
}

type joinLobbyRequest struct {
	Password string `json:"password"`
}

type lobbySummaryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Mode        string `json:"mode"`
	PlayerCount int    `json:"playerCount"`
	Capacity    int    `json:"capacity"`
	Status      string `json:"status"`
	IsPrivate   bool   `json:"isPrivate"`
	HasPassword bool   `json:"hasPassword"`
}

func toSummaryResponse(s lobby.Summary) lobbySummaryResponse {
	return lobbySummaryResponse{
		ID:          s.ID,
		Name:        s.Name,
		Mode:        s.GameMode,
		PlayerCount: s.PlayerCount,
		Capacity:    s.Capacity,
		Status:      s.Phase.String(),
		IsPrivate:   s.Mode == lobby.ModePrivate,
		HasPassword: s.HasPassword,
	}
}

// handleListLobbies serves GET /api/lobbies, filtered the same way
// get_lobby_list is over the WebSocket channel.
func (h *routerHandlers) handleListLobbies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := lobby.ListFilters{
		ShowPrivate:    q.Get("showPrivate") == "true",
		ShowFull:       q.Get("showFull") == "true",
		ShowInProgress: q.Get("showInProgress") == "true",
		GameMode:       q.Get("mode"),
	}
	summaries := h.mgr.List(filters)
	out := make([]lobbySummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toSummaryResponse(s))
	}
	writeJSON(w, map[string]interface{}{"lobbies": out, "totalCount": len(out)})
}

// handleQuickMatch serves POST /api/lobbies/quick: find-or-create a public
// lobby for the requested mode, mirroring find_match.
func (h *routerHandlers) handleQuickMatch(w http.ResponseWriter, r *http.Request) {
	var req createLobbyRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	l, err := h.mgr.QuickMatch(req.Mode)
	if err != nil {
		writeError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, toSummaryResponse(l.Summary()))
}

// handleCreateLobby serves POST /api/lobbies: create a private, ID-reachable
// lobby, mirroring create_private_lobby.
func (h *routerHandlers) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	var req createLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	l, err := h.mgr.CreatePrivate("", req.Mode, req.Password)
	if err != nil {
		writeError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, toSummaryResponse(l.Summary()))
}

// handleGetLobby serves GET /api/lobbies/{id}.
func (h *routerHandlers) handleGetLobby(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	l, ok := h.mgr.Get(id)
	if !ok {
		writeError(w, "lobby not found", http.StatusNotFound)
		return
	}
	writeJSON(w, toSummaryResponse(l.Summary()))
}

// handleJoinLobby serves POST /api/lobbies/{id}/join. It only admits the
// player into the lobby's roster; real-time play still requires the
// WebSocket channel for player:input/weapon:fire/game:state.
func (h *routerHandlers) handleJoinLobby(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req joinLobbyRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	playerID := lobby.NewPlayerID()
	l, err := h.mgr.Join(id, playerID, "", req.Password)
	if err != nil {
		status := http.StatusBadRequest
		switch err {
		case lobby.ErrLobbyNotFound:
			status = http.StatusNotFound
		case lobby.ErrLobbyFull:
			status = http.StatusConflict
		case lobby.ErrBadPassword:
			status = http.StatusForbidden
		}
		writeError(w, err.Error(), status)
		return
	}
	writeJSON(w, map[string]interface{}{
		"playerId": playerID,
		"lobby":    toSummaryResponse(l.Summary()),
	})
}

// handleGetWeapons serves GET /api/weapons: the fixed weapon/material
// reference table from §6, so clients can render stats without hardcoding
// them.
func (h *routerHandlers) handleGetWeapons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, weapons.Table)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
