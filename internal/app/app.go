// Package app assembles the whole shop API onto one router.
package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"MiniShop/internal/admin"
	"MiniShop/internal/cache"
	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/internal/checkout"
	"MiniShop/internal/store"
	"MiniShop/pkg/kit"
)

type Deps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	RateLimit         int
	RateRefillSeconds int

	Store *store.Store
	Cache *cache.Cache
}

func NewHandler(deps Deps) http.Handler {
	validate := validator.New()

	var checkoutMetrics *checkout.Metrics
	if deps.Registry != nil {
		checkoutMetrics = checkout.NewMetrics(deps.Registry)
	}

	catalogSrv := &catalog.Server{
		Svc: &catalog.Service{Store: deps.Store, Cache: deps.Cache},
	}
	cartSrv := &cart.Server{
		Svc:      &cart.Service{Store: deps.Store},
		Validate: validate,
		Log:      deps.Log,
	}
	checkoutSrv := &checkout.Server{
		Svc: &checkout.Service{
			Store:   deps.Store,
			Cache:   deps.Cache,
			Metrics: checkoutMetrics,
			Log:     deps.Log,
		},
		Validate: validate,
		Log:      deps.Log,
	}
	adminSrv := &admin.Server{
		Svc: &admin.Service{Store: deps.Store, Cache: deps.Cache},
	}

	r := chi.NewRouter()
	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	r.Get("/", root)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	catalogSrv.Register(r)
	cartSrv.Register(r)
	checkoutSrv.Register(r)
	adminSrv.Register(r)

	return r
}

func setupMiddleware(r *chi.Mux, deps Deps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))

	if deps.RateLimit > 0 {
		rl := kit.NewIPRateLimiter(deps.RateLimit, deps.RateRefillSeconds)
		r.Use(rl.Middleware)
	}
}

func setupMetrics(r *chi.Mux, deps Deps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func root(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Ecommerce Store API",
		"version": "1.0.0",
	})
}
