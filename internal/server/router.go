package server

import (
	"net/http"

	"github.com/CaioWF/ignite-finapi/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router builds the /api/v1 route tree. Statement and profile routes require
// a valid session token.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", s.signUp)
		r.Post("/sessions", s.createSession)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/profile", s.profile)

			r.Route("/statements", func(r chi.Router) {
				r.Post("/deposit", s.createEntry(models.OperationDeposit))
				r.Post("/withdraw", s.createEntry(models.OperationWithdraw))
				r.Post("/transfer/{user_id}", s.createEntry(models.OperationTransfer))
				r.Get("/balance", s.balance)
				r.Get("/{statement_id}", s.entry)
			})
		})
	})

	return r
}
