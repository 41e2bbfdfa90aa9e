package lobby

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoSchenker/Lab-1-sub000/internal/ledger"
)

type HTTPHandler struct {
	lobby  *Lobby
	ledger ledger.Service
}

type errorResponse struct {
	Error string `json:"error"`
}

type createMatchRequest struct {
	Mode        string   `json:"mode"`
	TargetScore int      `json:"target_score"`
	Players     []string `json:"players"`
}

type matchSummary struct {
	Code    string   `json:"code"`
	State   string   `json:"state"`
	Mode    string   `json:"mode"`
	Players []string `json:"players"`
}

func NewHTTPHandler(l *Lobby, ledgerService ledger.Service) *HTTPHandler {
	return &HTTPHandler{lobby: l, ledger: ledgerService}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/matches", h.handleMatches)
	mux.HandleFunc("/api/matches/", h.handleMatch)
	mux.HandleFunc("/api/results", h.handleResults)
}

func (h *HTTPHandler) handleMatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreateMatch(w, r)
	case http.MethodGet:
		h.handleListMatches(w)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *HTTPHandler) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode, err := ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rm, err := h.lobby.CreateMatch(mode, req.TargetScore, req.Players)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"code":    rm.Code,
		"players": rm.Players(),
	})
}

func (h *HTTPHandler) handleListMatches(w http.ResponseWriter) {
	rooms := h.lobby.ListRooms()
	items := make([]matchSummary, 0, len(rooms))
	for _, rm := range rooms {
		snap := rm.SnapshotFor("")
		items = append(items, matchSummary{
			Code:    rm.Code,
			State:   snap.State,
			Mode:    snap.Mode,
			Players: rm.Players(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *HTTPHandler) handleMatch(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/matches/")
	path = strings.TrimSpace(path)
	if path == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	parts := strings.Split(path, "/")
	code := strings.TrimSpace(parts[0])
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing match code")
		return
	}

	if len(parts) == 2 && parts[1] == "actions" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleMatchActions(w, r, code)
		return
	}
	if len(parts) == 2 && parts[1] == "snapshot" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleGetMatch(w, code)
		return
	}
	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGetMatch(w, code)
	case http.MethodDelete:
		if !h.lobby.CloseMatch(code) {
			writeError(w, http.StatusNotFound, "no such match")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"closed": code})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *HTTPHandler) handleGetMatch(w http.ResponseWriter, code string) {
	rm := h.lobby.GetRoom(code)
	if rm == nil {
		writeError(w, http.StatusNotFound, "no such match")
		return
	}
	// Spectator view: hands stay hidden until the match ends.
	writeJSON(w, http.StatusOK, rm.SnapshotFor(""))
}

func (h *HTTPHandler) handleMatchActions(w http.ResponseWriter, r *http.Request, code string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	actions, err := h.ledger.GetActions(ctx, code)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no recorded actions for match")
			return
		}
		writeError(w, http.StatusInternalServerError, "query actions failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": actions})
}

func (h *HTTPHandler) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"))
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.ListResults(ctx, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query results failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 20
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 20
	}
	if n > 100 {
		return 100
	}
	return n
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
