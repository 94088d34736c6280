// Package api exposes the price database over HTTP for dashboards and
// quick curl checks. Read-only: all mutation goes through detection
// cycles.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/pricewatch/detector"
)

// Handler serves the read API over a detector store.
type Handler struct {
	store *detector.Store
	log   *slog.Logger
}

func New(st *detector.Store, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: st, log: log}
}

// Router builds the chi mux for the read API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/products/{id}/history", h.productHistory)
		r.Get("/cycles", h.listCycles)
		r.Get("/stats", h.stats)
	})

	return r
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.Products(r.Context())
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"count":    len(products),
		"products": products,
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, 400, errors.New("invalid product id"))
		return
	}
	p, err := h.store.ProductByID(r.Context(), id)
	if errors.Is(err, detector.ErrNotFound) {
		writeError(w, 404, err)
		return
	}
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, p)
}

func (h *Handler) productHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, 400, errors.New("invalid product id"))
		return
	}
	if _, err := h.store.ProductByID(r.Context(), id); err != nil {
		if errors.Is(err, detector.ErrNotFound) {
			writeError(w, 404, err)
		} else {
			writeError(w, 500, err)
		}
		return
	}
	obs, err := h.store.RecentObservations(r.Context(), id, queryInt(r, "limit", 100))
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"product_id":   id,
		"count":        len(obs),
		"observations": obs,
	})
}

func (h *Handler) listCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.store.Cycles(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"count":  len(cycles),
		"cycles": cycles,
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ProductCount(r.Context())
	if err != nil {
		writeError(w, 500, err)
		return
	}
	observations, err := h.store.ObservationCount(r.Context())
	if err != nil {
		writeError(w, 500, err)
		return
	}
	out := map[string]any{
		"products":     products,
		"observations": observations,
	}
	if cycles, err := h.store.Cycles(r.Context(), 1); err == nil && len(cycles) > 0 {
		out["last_cycle"] = cycles[0]
	}
	writeJSON(w, 200, out)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
