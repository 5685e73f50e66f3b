package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/teamsplit/internal/app"
)

// MaxProposalBody is the largest POST /proposals body accepted, in bytes.
const MaxProposalBody = 64 << 10

// proposalRequest is the body of POST /proposals.
type proposalRequest struct {
	Online     []string `json:"online"`
	GameNumber string   `json:"game_number"`
}

func (p proposalRequest) validate() error {
	if len(p.Online) == 0 {
		return fmt.Errorf("%w: missing online", ErrBadRequest)
	}
	return nil
}

// ProposalsHandler handles proposal requests.
type ProposalsHandler struct {
	deps Dependencies
}

// NewProposalsHandler creates a new proposals handler.
func NewProposalsHandler(deps Dependencies) *ProposalsHandler {
	return &ProposalsHandler{deps: deps}
}

// HandlePostProposal handles POST /proposals.
func (h *ProposalsHandler) HandlePostProposal(w http.ResponseWriter, r *http.Request) {
	var req proposalRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxProposalBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	p, err := h.deps.Propose(r.Context(), service.Request{Online: req.Online, GameNumber: req.GameNumber})
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
