package graph

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/govbilling/billdash/internal/dashboard"
	"github.com/govbilling/billdash/internal/graph/svg"
	"github.com/govbilling/billdash/internal/platform/httpx"
)

// Handler exposes the graph page over HTTP.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the graph HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// MountRoutes registers graph endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	dashboard.MountFilterRoutes(r, h.service.Page())
	r.Get("/series", h.handleSeries)
	r.Get("/chart.svg", h.handleChart)
	r.Get("/groups/{name}/items", h.handleGroupItems)
}

func (h *Handler) parseQuery(r *http.Request) (Query, error) {
	q := r.URL.Query()
	return ParseQuery(q.Get("group_by"), q.Get("view"), q.Get("type"), q.Get("mode"))
}

func (h *Handler) handleSeries(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	series, err := h.service.Series(query)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, series)
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	series, err := h.service.Series(query)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	labels, bars := chartSeries(series)
	chart, err := svg.Bars(svg.DefaultWidth, svg.DefaultHeight, labels, bars, svg.BarOpts{
		Title:       "Billing by " + series.GroupBy,
		Description: string(series.Kind) + " per " + series.GroupBy,
		Unit:        series.Unit.Label,
	})
	if err != nil {
		h.logger.Error("render chart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(chart))
}

func chartSeries(s Series) ([]string, []svg.Series) {
	labels := make([]string, len(s.Rows))
	if s.Mode == ModeComparison {
		allocated := svg.Series{Label: "Allocated", Values: make([]float64, len(s.Rows))}
		sold := svg.Series{Label: "Sold", Values: make([]float64, len(s.Rows))}
		remaining := svg.Series{Label: "Remaining", Values: make([]float64, len(s.Rows))}
		for i, row := range s.Rows {
			labels[i] = row.Name
			allocated.Values[i] = row.Allocated
			sold.Values[i] = row.Sold
			remaining.Values[i] = row.Remaining
		}
		return labels, []svg.Series{allocated, sold, remaining}
	}
	single := svg.Series{Label: string(s.View), Values: make([]float64, len(s.Rows))}
	for i, row := range s.Rows {
		labels[i] = row.Name
		single.Values[i] = row.Value
	}
	return labels, []svg.Series{single}
}

func (h *Handler) handleGroupItems(w http.ResponseWriter, r *http.Request) {
	page, size, err := httpx.PageParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.Drill(r.URL.Query().Get("group_by"), chi.URLParam(r, "name"), page, size)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}
