package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"visualaudit/internal/http/handlers"
	"visualaudit/internal/infra"
	"visualaudit/internal/middleware"
)

const ratePeriod = time.Minute

func NewRouter(app *handlers.App, cfg *infra.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/audits", func(r chi.Router) {
		if cfg.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMin, ratePeriod))
		}
		r.Post("/", app.CreateAudit)
	})

	return r
}
