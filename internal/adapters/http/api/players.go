package api

import (
	"net/http"
	"strings"

	"github.com/okian/teamsplit/internal/domain/roster"
)

// PlayersHandler handles roster lookups.
type PlayersHandler struct {
	deps Dependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps Dependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleGetPlayers handles GET /players?online=a,b,c.
func (h *PlayersHandler) HandleGetPlayers(w http.ResponseWriter, r *http.Request) {
	online := r.URL.Query().Get("online")
	if strings.TrimSpace(online) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	players, err := h.deps.Players(r.Context(), roster.SplitOnline(online))
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}
