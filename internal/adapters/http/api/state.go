package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/elocompare/internal/app"
	"github.com/okian/elocompare/internal/domain/model"
)

// StateDependencies reads the UI state.
type StateDependencies interface {
	State(ctx context.Context) (app.State, error)
}

// StateHandler handles state requests.
type StateHandler struct {
	deps StateDependencies
}

// NewStateHandler creates a new state handler.
func NewStateHandler(deps StateDependencies) *StateHandler {
	return &StateHandler{deps: deps}
}

// HandleGetState handles GET /api/state requests.
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.State(r.Context())
	if err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// SelectionDependencies changes a slot.
type SelectionDependencies interface {
	Select(ctx context.Context, slot model.Slot, id string) error
}

// SelectionHandler handles selection requests.
type SelectionHandler struct {
	deps SelectionDependencies
}

// NewSelectionHandler creates a new selection handler.
func NewSelectionHandler(deps SelectionDependencies) *SelectionHandler {
	return &SelectionHandler{deps: deps}
}

type selectionRequest struct {
	ID string `json:"id"`
}

// HandlePutSelection handles PUT /api/selection/{slot} requests. An empty
// id clears the slot.
func (h *SelectionHandler) HandlePutSelection(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_selection"
	slot, ok := model.ParseSlot(r.PathValue("slot"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_slot", wrapKind(op, ErrBadRequest, app.ErrUnknownSlot))
		return
	}

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	if err := h.deps.Select(r.Context(), slot, strings.TrimSpace(req.ID)); err != nil {
		writeActionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeActionError maps loop and controller failures to responses.
func writeActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrBusy):
		writeError(w, http.StatusTooManyRequests, "backpressure", wrapKind("api.action", ErrBackpressure, err))
	case errors.Is(err, app.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "stopped", err)
	case errors.Is(err, app.ErrUnknownSlot):
		writeError(w, http.StatusNotFound, "unknown_slot", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
