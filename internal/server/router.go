package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/peytondoyle/tabby/internal/auth"
	"github.com/peytondoyle/tabby/internal/middleware"
)

// Router assembles the full HTTP handler: middleware stack, public
// endpoints, and the authenticated bill API.
func (s *Server) Router(jwtManager *auth.JWTManager) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/split/preview", s.handlePreview)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtManager))

			r.Route("/bills", func(r chi.Router) {
				r.Get("/", s.handleListBills)
				r.Post("/", s.handleCreateBill)
				r.Route("/{billID}", func(r chi.Router) {
					r.Get("/", s.handleGetBill)
					r.Put("/", s.handleUpdateBill)
					r.Delete("/", s.handleDeleteBill)
					r.Get("/totals", s.handleGetTotals)
					r.Get("/settlement", s.handleGetSettlement)
					r.Put("/items/{itemID}/shares/{personID}", s.handleUpsertShare)
				})
			})
		})
	})

	return r
}
