// Package httpapi assembles the public router. Handlers stay thin and
// delegate to domain services; everything mounted under the API group requires
// an authenticated actor.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"warga/pkg/platform/middleware/auth"
	"warga/pkg/platform/middleware/requestid"
	"warga/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every feature handler.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires all endpoints. The metrics and health endpoints are
// unauthenticated; all registry operations require a valid bearer token.
func NewRouter(verifier *auth.Verifier, logger *slog.Logger, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireActor(verifier, logger))
		for _, h := range handlers {
			h.Register(r)
		}
	})

	return r
}
