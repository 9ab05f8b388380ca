package api

import (
	"bytes"
	"net/http"

	"github.com/okian/elocompare/internal/adapters/chart"
)

// ChartHandler serves the live chart as an image.
type ChartHandler struct {
	images Images
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(images Images) *ChartHandler {
	return &ChartHandler{images: images}
}

// HandleGetChart handles GET /chart?format=png|svg requests.
func (h *ChartHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chart"
	format, err := chart.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	var buf bytes.Buffer
	ok, err := h.images.WriteImage(&buf, format)
	switch {
	case err != nil:
		writeError(w, http.StatusInternalServerError, "render_failed", err)
		return
	case !ok:
		writeError(w, http.StatusNotFound, "no_chart", ErrNoChart)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
