// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/elocompare/internal/adapters/chart"
	"github.com/okian/elocompare/internal/adapters/notify"
	"github.com/okian/elocompare/internal/app"
	"github.com/okian/elocompare/internal/domain/model"
)

// Dependencies are the user actions behind the handlers.
type Dependencies interface {
	Select(ctx context.Context, slot model.Slot, id string) error
	View(ctx context.Context) (app.Outcome, error)
	Clear(ctx context.Context) error
	State(ctx context.Context) (app.State, error)
}

// Inbox hands out pending user messages.
type Inbox interface {
	Drain() []notify.Message
}

// Images renders the live chart.
type Images interface {
	WriteImage(w io.Writer, format chart.Format) (bool, error)
}

// Server wires HTTP routes for the comparison API.
type Server struct {
	healthHandler    *HealthHandler
	stateHandler     *StateHandler
	selectionHandler *SelectionHandler
	actionsHandler   *ActionsHandler
	messagesHandler  *MessagesHandler
	chartHandler     *ChartHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, inbox Inbox, images Images) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		stateHandler:     NewStateHandler(deps),
		selectionHandler: NewSelectionHandler(deps),
		actionsHandler:   NewActionsHandler(deps),
		messagesHandler:  NewMessagesHandler(inbox),
		chartHandler:     NewChartHandler(images),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /api/state", MetricsMiddleware(s.stateHandler.HandleGetState, "state"))
	mux.HandleFunc("PUT /api/selection/{slot}", MetricsMiddleware(s.selectionHandler.HandlePutSelection, "selection"))
	mux.HandleFunc("POST /api/view", MetricsMiddleware(s.actionsHandler.HandleView, "view"))
	mux.HandleFunc("POST /api/clear", MetricsMiddleware(s.actionsHandler.HandleClear, "clear"))
	mux.HandleFunc("GET /api/messages", MetricsMiddleware(s.messagesHandler.HandleGetMessages, "messages"))
	mux.HandleFunc("GET /chart", MetricsMiddleware(s.chartHandler.HandleGetChart, "chart"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
