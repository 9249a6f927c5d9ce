package apihttp

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"maintenance-cloud/internal/audit"
	"maintenance-cloud/internal/auth"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Reports             Reports
	Threshold           float64
	JWTSecret           []byte
	ComplaintRatePerMin int
	Audit               audit.Logger
	Logger              *zap.Logger
}

// NewRouter builds the service handler: routes, auth and request logging.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := nopIfNil(cfg.Logger)
	limiter := NewClientRateLimiter(cfg.ComplaintRatePerMin)
	devices := NewDevicesHandler(cfg.Reports, logger)
	exports := NewExportHandler(cfg.Reports, cfg.Threshold, logger)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/overview", NewOverviewHandler(cfg.Reports, cfg.Threshold, logger))
	mux.Handle("/api/v1/predictions", NewPredictionsHandler(cfg.Reports, cfg.Threshold, logger))
	mux.Handle("/api/v1/devices", devices)
	mux.Handle("/api/v1/devices/", devices)
	mux.Handle("/api/v1/complaints", limiter.Wrap(
		AuditMiddleware(NewComplaintsHandler(cfg.Reports, logger), cfg.Audit, "complaint.submit", "complaints", logger)))
	mux.Handle("/api/v1/pipeline/run",
		AuditMiddleware(NewPipelineHandler(cfg.Reports, logger), cfg.Audit, "pipeline.run", "predictions", logger))
	mux.Handle("/api/v1/cache/invalidate",
		AuditMiddleware(NewCacheHandler(cfg.Reports, logger), cfg.Audit, "cache.invalidate", "cache", logger))
	mux.Handle("/api/v1/exports/predictions.xlsx", exports)
	mux.Handle("/api/v1/exports/predictions.pdf", exports)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret, policy, logger)
	return LoggingMiddleware(authMiddleware.Wrap(mux), logger)
}
