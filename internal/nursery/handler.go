package nursery

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

// Handler exposes the nursery page over HTTP.
type Handler struct {
	service *Service
	pdf     export.Renderer
	logger  *slog.Logger
}

// NewHandler constructs the nursery HTTP handler.
func NewHandler(service *Service, pdf export.Renderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, pdf: pdf, logger: logger}
}

// MountRoutes registers nursery endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/refresh", h.handleRefresh)
	r.Get("/entries", h.handleList)
	r.Post("/entries", h.handleCreate)
	r.Put("/entries/{id}", h.handleUpdate)
	r.Delete("/entries/{id}", h.handleDelete)
	dashboard.MountFilterRoutes(r, h.service.Page())
	r.Get("/summary", h.handleSummary)
	r.Group(func(gr chi.Router) {
		gr.Use(httprate.LimitByIP(10, time.Minute))
		gr.Get("/export.{format}", h.handleExport)
	})
}

func listQuery(r *http.Request) ListQuery {
	q := r.URL.Query()
	return ListQuery{NurseryNames: q["nursery_name"], StandardItems: q["standard_item"]}
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ForceRefresh(r.Context(), listQuery(r)); err != nil {
		h.logger.Error("refresh nursery entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"count": h.service.store.Len()})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, size, err := httpx.PageParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Ensure(r.Context(), listQuery(r)); err != nil {
		h.logger.Error("load nursery entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.Entries(page, size)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json: %v", httpx.ErrValidation, err))
		return
	}
	entry, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid json: %v", httpx.ErrValidation, err))
		return
	}
	entry, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.URL.Query().Get("group_by"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
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
	entries, err := h.service.Filtered()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	table := export.Build("Nursery financial entries", cols, entries)
	if err := export.Respond(w, r, format, "nursery-entries", table, h.pdf); err != nil {
		h.logger.Error("export nursery entries", slog.String("format", string(format)), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
