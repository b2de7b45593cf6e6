// Package httptransport is the gateway's HTTP surface. Handlers stay thin and
// delegate to the gateway service.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"avelements/pkg/platform/httputil"
	"avelements/pkg/platform/middleware/admin"
	"avelements/pkg/platform/middleware/metadata"
	"avelements/pkg/platform/middleware/request"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func(r *http.Request) error

// RouterConfig collects what NewRouter mounts. Admin routes are mounted only
// when Admin and AdminToken are both set.
type RouterConfig struct {
	Forms      *FormHandler
	Admin      *AdminHandler
	AdminToken string
	Gatherer   prometheus.Gatherer
	Health     map[string]HealthChecker
	Logger     *slog.Logger
}

// NewRouter wires every public endpoint.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(request.AccessLog(logger))
	r.Use(request.Recover(logger))

	r.Get("/healthz", healthz(cfg.Health))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if cfg.Forms != nil {
		cfg.Forms.Register(r)
	}
	if cfg.Admin != nil && cfg.AdminToken != "" {
		r.Route("/admin", func(ar chi.Router) {
			ar.Use(admin.RequireAdminToken(cfg.AdminToken, logger))
			cfg.Admin.Register(ar)
		})
	}
	return r
}

func healthz(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(r); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
