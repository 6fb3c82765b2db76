package handlers

import (
	"github.com/go-chi/chi"

	"github.com/avvvet/terminal-services/internal/terminalsvc/metrics"
)

func (h *Handler) SetRoutes(r *chi.Mux, m *metrics.Metrics) {
	r.Get("/health", h.HealthHandler)
	r.Method("GET", "/metrics", m.Handler())

	// everything else goes through the dispatch table, including verbs
	// chi does not know, so routing errors always get a JSON body
	d := NewDispatcher(m, h.Routes()...)
	r.Handle("/*", d)
	r.MethodNotAllowed(d.ServeHTTP)
}
