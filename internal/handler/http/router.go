package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"streaky-relay/internal/handler/http/auth"
	"streaky-relay/internal/handler/http/notification"
	"streaky-relay/internal/handler/http/requestid"
	"streaky-relay/internal/observability/tracing"
	notifyUC "streaky-relay/internal/usecase/notify"
)

// RouterConfig collects what NewRouter needs to build the handler tree.
type RouterConfig struct {
	Logger       *slog.Logger
	Service      notifyUC.Service
	Health       ProviderHealthReporter
	Readiness    *Readiness
	APISecret    string
	Version      string
	MaxBodyBytes int64
	// RateLimiter is optional; nil disables inbound rate limiting.
	RateLimiter *RateLimiter
}

// NewRouter wires routes and middleware.
//
// Middleware order (outermost first):
// Request ID → Tracing → IP Rate Limit → Recovery → Logging → Input Validation
// → Body Limit → Metrics → Authentication (protected routes only)
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	publicMux := http.NewServeMux()
	publicMux.Handle("GET /health", &HealthHandler{Version: cfg.Version, Providers: cfg.Health})
	publicMux.Handle("GET /ready", &ReadyHandler{State: cfg.Readiness})
	publicMux.Handle("GET /live", &LiveHandler{})
	publicMux.Handle("GET /metrics", MetricsHandler())
	publicMux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	privateMux := http.NewServeMux()
	notification.Register(privateMux, cfg.Service)
	protected := auth.NewAuthenticator(cfg.APISecret).Middleware(privateMux)

	rootMux := http.NewServeMux()
	rootMux.Handle("/health", publicMux)
	rootMux.Handle("/ready", publicMux)
	rootMux.Handle("/live", publicMux)
	rootMux.Handle("/metrics", publicMux)
	rootMux.Handle("/swagger/", publicMux)
	rootMux.Handle("/", protected)

	var h http.Handler = rootMux
	// 内側から外側へ適用
	h = MetricsMiddleware(h)
	h = LimitRequestBody(cfg.MaxBodyBytes)(h)
	h = InputValidation()(h)
	h = Logging(logger)(h)
	h = Recover(logger)(h)
	if cfg.RateLimiter != nil {
		h = cfg.RateLimiter.Limit(h)
	}
	h = tracing.Middleware(h)
	h = requestid.Middleware(h)
	return h
}
