package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Routes struct {
	Chat    LambdaFunc
	Contact LambdaFunc
	Health  LambdaFunc
}

// NewRouter mounts the Lambdas under /api. Method handling, including CORS
// preflight, stays inside each handler.
func NewRouter(routes Routes, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Route("/api", func(api chi.Router) {
		api.HandleFunc("/chat", Adapt(routes.Chat, logger))
		api.HandleFunc("/contact", Adapt(routes.Contact, logger))
		if routes.Health != nil {
			api.HandleFunc("/health", Adapt(routes.Health, logger))
		}
	})

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
