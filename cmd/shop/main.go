package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniShop/internal/app"
	"MiniShop/internal/cache"
	"MiniShop/internal/store"
	"MiniShop/pkg/kit"
)

func main() {
	_ = godotenv.Load()

	service := "shop"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8000")
	nthOrder := getenvInt("NTH_ORDER", store.DefaultNthOrder)
	rateLimit := getenvInt("RATE_LIMIT", 0)
	rateRefill := getenvInt("RATE_REFILL_SECONDS", 1)
	metricsEnabled := getenv("METRICS_ENABLED", "") == "true"
	metricsToken := getenv("METRICS_TOKEN", "")

	h := app.NewHandler(app.Deps{
		Log:      log,
		Service:  service,
		Registry: prometheus.NewRegistry(),

		MetricsEnabled: metricsEnabled,
		MetricsToken:   metricsToken,

		RateLimit:         rateLimit,
		RateRefillSeconds: rateRefill,

		Store: store.New(nthOrder),
		Cache: cache.New(),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
