package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Laziz6066/Tafakkur-test/internal/service"
	"github.com/Laziz6066/Tafakkur-test/pkg/health"
	"github.com/Laziz6066/Tafakkur-test/pkg/middleware"
)

// RouterConfig bundles the dependencies of the HTTP surface.
type RouterConfig struct {
	Catalog       *service.CatalogService
	Search        *service.SearchService
	Auth          *service.AuthService
	TokenValidate middleware.TokenValidator
	Health        *health.Handler
	PprofCIDRs    []string
	CORSOrigins   []string
	Environment   string
	Logger        *slog.Logger
}

// NewRouter creates a chi router with all catalog routes registered. Reads
// are public; every mutation and the reindex trigger require a valid
// bearer token.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.CORSOrigins
	}
	if cfg.Environment != "" {
		corsCfg.Environment = cfg.Environment
	}
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing("catalog"))
	r.Use(middleware.PrometheusMetrics("catalog"))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	categoryHandler := NewCategoryHandler(cfg.Catalog, cfg.Logger)
	productHandler := NewProductHandler(cfg.Catalog, cfg.Logger)
	searchHandler := NewSearchHandler(cfg.Search, cfg.Logger)
	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", searchHandler.Search)
		r.Get("/suggest", searchHandler.Suggest)

		r.Get("/categories", categoryHandler.List)
		r.Get("/categories/{id}", categoryHandler.Get)
		r.Get("/products", productHandler.List)
		r.Get("/products/{id}", productHandler.Get)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Write path.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.TokenValidate))

			r.Post("/categories", categoryHandler.Create)
			r.Put("/categories/{id}", categoryHandler.Update)
			r.Delete("/categories/{id}", categoryHandler.Delete)

			r.Post("/products", productHandler.Create)
			r.Put("/products/{id}", productHandler.Update)
			r.Delete("/products/{id}", productHandler.Delete)

			r.Post("/search/reindex", searchHandler.Reindex)
		})
	})

	return r
}
