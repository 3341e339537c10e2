package dashboard

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/govbilling/billdash/internal/filters"
	"github.com/govbilling/billdash/internal/platform/httpx"
)

// SelectionRequest is the body of PUT /filters/{dimension}.
type SelectionRequest struct {
	Values []string `json:"values"`
}

// ReplaceRequest is the body of PUT /filters; selections apply in declared order.
type ReplaceRequest struct {
	Selections []filters.Selection `json:"selections"`
}

// MountFilterRoutes registers the filter panel endpoints of a page.
func MountFilterRoutes[T any](r chi.Router, p *Page[T]) {
	r.Get("/filters", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, p.Filters())
	})
	r.Put("/filters", func(w http.ResponseWriter, r *http.Request) {
		var req ReplaceRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return
		}
		if err := p.Replace(req.Selections); err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, p.Filters())
	})
	r.Delete("/filters", func(w http.ResponseWriter, r *http.Request) {
		p.ClearAll()
		httpx.JSON(w, http.StatusOK, p.Filters())
	})
	r.Put("/filters/{dimension}", func(w http.ResponseWriter, r *http.Request) {
		var req SelectionRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return
		}
		if err := p.Set(chi.URLParam(r, "dimension"), req.Values...); err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, p.Filters())
	})
}
