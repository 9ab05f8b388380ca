package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/elocompare/internal/app"
)

// ActionDependencies runs the view and clear actions.
type ActionDependencies interface {
	View(ctx context.Context) (app.Outcome, error)
	Clear(ctx context.Context) error
}

// ActionsHandler handles view and clear requests.
type ActionsHandler struct {
	deps ActionDependencies
}

// NewActionsHandler creates a new actions handler.
func NewActionsHandler(deps ActionDependencies) *ActionsHandler {
	return &ActionsHandler{deps: deps}
}

type viewResponse struct {
	app.Outcome
	Error string `json:"error,omitempty"`
}

// HandleView handles POST /api/view requests. It answers once the chart was
// rendered or the view was refused; user messages explaining a refusal are
// in /api/messages.
func (h *ActionsHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.View(r.Context())
	if err == nil {
		writeJSON(w, http.StatusOK, viewResponse{Outcome: out})
		return
	}

	switch {
	case errors.Is(err, app.ErrNoSelection),
		errors.Is(err, app.ErrDuplicateSelection),
		errors.Is(err, app.ErrEmptyComposition):
		writeJSON(w, http.StatusUnprocessableEntity, viewResponse{Outcome: out, Error: err.Error()})
	case errors.Is(err, app.ErrRenderFailed):
		writeJSON(w, http.StatusInternalServerError, viewResponse{Outcome: out, Error: err.Error()})
	default:
		writeActionError(w, err)
	}
}

// HandleClear handles POST /api/clear requests.
func (h *ActionsHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Clear(r.Context()); err != nil {
		writeActionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
