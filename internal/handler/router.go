package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/moneywise/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware API движка прогрессии.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api/progression", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Get("/profile", h.GetProfile)
		r.Delete("/profile", h.ResetProfile)

		r.Post("/actions/{action}", h.RecordAction)
		r.Post("/points", h.AddPoints)
		r.Post("/streak", h.CheckStreak)
		r.Post("/level-up", h.CheckLevelUp)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
