package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, sessions *Sessions) {
	r.Route("/calculator", func(r chi.Router) {
		r.Post("/add", Add)
		r.Post("/subtract", Subtract)
		r.Post("/multiply", Multiply)
		r.Post("/divide", Divide)
		r.Post("/chain", Chain)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessions.Create)
			r.Get("/{id}", sessions.Get)
			r.Delete("/{id}", sessions.Delete)
			r.Post("/{id}/events", sessions.Events)
			r.Post("/{id}/keys", sessions.Keys)
		})
	})
}
