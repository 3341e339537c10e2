package billing

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/govbilling/billdash/internal/dashboard"
	"github.com/govbilling/billdash/internal/export"
	"github.com/govbilling/billdash/internal/platform/httpx"
)

// Handler exposes the billing page over HTTP.
type Handler struct {
	service *Service
	pdf     export.Renderer
	logger  *slog.Logger
}

// NewHandler constructs the billing HTTP handler.
func NewHandler(service *Service, pdf export.Renderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, pdf: pdf, logger: logger}
}

// MountRoutes registers billing endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/refresh", h.handleRefresh)
	r.Get("/items", h.handleItems)
	dashboard.MountFilterRoutes(r, h.service.Page())
	r.Put("/items/{id}/cut", h.handleSetCut)
	r.Get("/cuts", h.handlePending)
	r.Delete("/cuts", h.handleResetCuts)
	r.Get("/submission", h.handlePreview)
	r.Post("/submit", h.handleSubmit)
	r.Group(func(gr chi.Router) {
		gr.Use(httprate.LimitByIP(10, time.Minute))
		gr.Get("/export.{format}", h.handleExport)
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ForceRefresh(r.Context()); err != nil {
		h.logger.Error("refresh billing items", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"count": h.service.store.Len(), "generation": h.service.store.Generation()})
}

func (h *Handler) handleItems(w http.ResponseWriter, r *http.Request) {
	page, size, err := httpx.PageParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.Items(page, size)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// CutRequest carries the raw text typed into a cut field; numbers are accepted too.
type CutRequest struct {
	Value any `json:"value"`
}

func (h *Handler) handleSetCut(w http.ResponseWriter, r *http.Request) {
	var req CutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json: %v", httpx.ErrValidation, err))
		return
	}
	raw := ""
	if req.Value != nil {
		raw = fmt.Sprint(req.Value)
	}
	row, err := h.service.SetCut(chi.URLParam(r, "id"), raw)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, row)
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"cuts": h.service.Pending()})
}

func (h *Handler) handleResetCuts(w http.ResponseWriter, r *http.Request) {
	h.service.ResetCuts()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Preview()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Submit(r.Context())
	if err != nil {
		h.logger.Error("submit billing update", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	cols, err := export.Select(Columns(), r.URL.Query().Get("columns"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.Enriched()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	table := export.Build("Billing items", cols, rows)
	if err := export.Respond(w, r, format, "billing-items", table, h.pdf); err != nil {
		h.logger.Error("export billing items", slog.String("format", string(format)), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
