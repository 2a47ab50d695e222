package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns booking router. createLimiter guards booking creation;
// serviceAuth guards the endpoints used by payment gateways and back office tools.
func (h *Handler) Routes(createLimiter, serviceAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(createLimiter).Post("/booking", h.Create)

	// Service routes
	r.Group(func(r chi.Router) {
		r.Use(serviceAuth)
		r.Post("/updatePayment", h.UpdatePayment)
		r.Get("/booking/{id}", h.GetByID)
	})

	return r
}
