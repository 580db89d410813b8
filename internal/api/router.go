package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/canteenlab/jukebox/internal/api/handler"
	apimw "github.com/canteenlab/jukebox/internal/api/middleware"
	"github.com/canteenlab/jukebox/internal/hub"
	"github.com/canteenlab/jukebox/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	svc *service.QueueService,
	h *hub.Hub,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP; rate-limit keying depends on it
	r.Use(chimw.RequestSize(1<<16)) // 64 KB max request body; submissions are tiny
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	qh := handler.NewQueueHandler(svc, logger)
	lh := handler.NewLiveHandler(h, logger)
	sh := handler.NewStatsHandler(svc, h)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/songs", qh.Submit)
		r.Delete("/songs/{videoId}", qh.Delete)
		r.Post("/songs/{videoId}/finished", qh.Finished)

		r.Get("/queue", qh.List)
		r.Get("/queue/live", lh.Subscribe)

		r.Get("/search", qh.Search)
		r.Get("/stats", sh.GetStats)
	})

	return r
}
