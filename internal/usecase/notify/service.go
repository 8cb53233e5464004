package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"streaky-relay/internal/domain/entity"
	"streaky-relay/internal/observability/logging"
	"streaky-relay/internal/observability/tracing"
	"streaky-relay/internal/resilience/circuitbreaker"
)

// unsupportedLabel replaces unknown notification types in metrics and spans.
const unsupportedLabel = "unsupported"

// Service routes notification requests to providers.
type Service interface {
	// Dispatch decrypts the credentials required by req.Type and performs
	// one delivery. Every failure is returned as a result, never a panic.
	//
	// Ordering guarantees:
	//   - missing fields and unsupported types fail before any decryption
	//   - all decryption completes before any network call
	//   - the first decryption failure stops the dispatch
	Dispatch(ctx context.Context, req *entity.NotificationRequest) entity.DispatchResult

	// ProviderHealth reports the circuit breaker state of every provider.
	ProviderHealth() []ProviderHealthStatus
}

// ProviderHealthStatus represents the health status of one provider.
type ProviderHealthStatus struct {
	Kind               entity.NotificationKind
	Name               string
	CircuitState       string // closed, half-open, open; partial for targeted providers
	CircuitBreakerOpen bool
	OpenTargets        int // targeted providers only
}

// Option configures the service.
type Option func(*options)

type options struct {
	breakerConfig  func(name string) circuitbreaker.Config
	tracerProvider trace.TracerProvider
}

// WithBreakerConfig overrides the per-provider circuit breaker settings.
// The IsSuccessful and OnStateChange hooks are always set by the service.
func WithBreakerConfig(fn func(name string) circuitbreaker.Config) Option {
	return func(o *options) { o.breakerConfig = fn }
}

// WithTracerProvider sets the provider for dispatch spans. The default is
// the global provider at construction time.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

type route struct {
	provider Provider
	breakers *breakerSet
}

// service is the concrete implementation of Service interface.
type service struct {
	cipher Decrypter
	routes map[entity.NotificationKind]route
	order  []entity.NotificationKind
	tracer trace.Tracer
}

// NewService creates the dispatch router.
//
// Each provider gets its own circuit breaker; providers implementing Targeted
// get one per destination instead. Registering two providers for
// the same kind keeps the last one.
func NewService(cipher Decrypter, providers []Provider, opts ...Option) Service {
	o := options{
		breakerConfig:  circuitbreaker.ProviderConfig,
		tracerProvider: otel.GetTracerProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	svc := &service{
		cipher: cipher,
		routes: make(map[entity.NotificationKind]route, len(providers)),
		tracer: o.tracerProvider.Tracer(tracing.InstrumentationName),
	}

	for _, p := range providers {
		name := p.Kind().String()
		newCfg := func() circuitbreaker.Config {
			cfg := o.breakerConfig(name)
			cfg.IsSuccessful = countsAsSuccess
			return cfg
		}
		_, targeted := p.(Targeted)

		if _, exists := svc.routes[p.Kind()]; !exists {
			svc.order = append(svc.order, p.Kind())
		}
		svc.routes[p.Kind()] = route{provider: p, breakers: newBreakerSet(name, targeted, newCfg)}
	}

	return svc
}

// Dispatch implements Service.Dispatch.
func (s *service) Dispatch(ctx context.Context, req *entity.NotificationRequest) (result entity.DispatchResult) {
	label := unsupportedLabel
	if _, ok := s.routes[req.Type]; ok {
		label = req.Type.String()
	}

	ctx, span := s.tracer.Start(ctx, "notify.Dispatch",
		trace.WithAttributes(attribute.String("notification.type", label)),
	)
	defer span.End()

	logger := logging.FromContext(ctx).With(slog.String("notification_type", label))
	start := time.Now()
	RecordDispatch(label)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic during dispatch",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			span.SetStatus(codes.Error, "panic")
			RecordFailure(label, "panic", time.Since(start))
			result = entity.Failed(ErrDispatchPanic)
		}
	}()

	err := s.dispatch(ctx, req)
	duration := time.Since(start)

	if err == nil {
		RecordSuccess(label, duration)
		span.SetStatus(codes.Ok, "")
		logger.Info("notification delivered", slog.Duration("duration", duration))
		return entity.Succeeded()
	}

	kind := entity.KindOf(err)
	kindLabel := string(kind)
	if kindLabel == "" {
		kindLabel = "internal"
	}
	RecordFailure(label, kindLabel, duration)
	span.SetAttributes(attribute.String("error.kind", kindLabel))
	span.SetStatus(codes.Error, kindLabel)

	s.logFailure(logger, err, kind, duration)
	return entity.Failed(err)
}

// logFailure separates security-relevant decryption failures from caller
// mistakes and operational provider failures.
func (s *service) logFailure(logger *slog.Logger, err error, kind entity.ErrorKind, duration time.Duration) {
	var de *entity.DispatchError
	_ = errors.As(err, &de)

	switch {
	case entity.IsSecurityRelevant(err):
		logger.Warn("credential decryption failed",
			slog.String("error_kind", string(kind)),
			slog.String("field", de.Field))
	case kind == entity.MissingField || kind == entity.UnsupportedType:
		logger.Warn("invalid notification request",
			slog.String("error_kind", string(kind)),
			slog.String("error", err.Error()))
	case de != nil:
		attrs := []any{
			slog.String("error_kind", string(kind)),
			slog.String("provider", de.Provider),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		}
		if de.StatusCode != 0 {
			attrs = append(attrs, slog.Int("status_code", de.StatusCode))
		}
		if de.RetryAfter > 0 {
			attrs = append(attrs, slog.Duration("retry_after", de.RetryAfter))
		}
		logger.Error("notification delivery failed", attrs...)
	default:
		logger.Error("notification dispatch error", slog.String("error", err.Error()))
	}
}

func (s *service) dispatch(ctx context.Context, req *entity.NotificationRequest) error {
	rt, ok := s.routes[req.Type]
	if !ok {
		return &entity.DispatchError{Kind: entity.UnsupportedType, Type: req.Type.String()}
	}
	p := rt.provider

	fields := p.Fields()
	encrypted := make([]string, len(fields))
	for i, field := range fields {
		v, ok := req.EncryptedField(field)
		if !ok {
			return &entity.DispatchError{Kind: entity.MissingField, Field: field, Provider: p.Name()}
		}
		encrypted[i] = v
	}

	secrets := make([]string, len(fields))
	for i, field := range fields {
		plain, err := s.cipher.Decrypt(encrypted[i])
		if err != nil {
			return withField(err, field)
		}
		secrets[i] = plain
	}

	var target string
	var hasTarget bool
	if t, ok := p.(Targeted); ok {
		target, hasTarget = t.Target(secrets)
	}
	cb := rt.breakers.get(target, hasTarget)
	if cb == nil {
		return p.Deliver(ctx, secrets, &req.Message)
	}

	err := cb.Run(func() error {
		return p.Deliver(ctx, secrets, &req.Message)
	})
	if circuitbreaker.IsRejected(err) {
		RecordDropped(p.Kind().String(), "circuit_open")
		return &entity.DispatchError{
			Kind:     entity.ProviderUnavailable,
			Provider: p.Name(),
			Err:      fmt.Errorf("%w (%s)", ErrCircuitBreakerOpen, cb.State()),
		}
	}
	return err
}

// withField tags a decryption error with the request field it came from.
func withField(err error, field string) error {
	var de *entity.DispatchError
	if errors.As(err, &de) {
		tagged := *de
		tagged.Field = field
		return &tagged
	}
	return &entity.DispatchError{Kind: entity.DecryptionFailed, Field: field, Err: err}
}

// countsAsSuccess tells the breaker which outcomes say nothing about provider
// health. Only transport failures and 5xx rejections count against it, so a
// caller with a revoked webhook cannot open the circuit for everyone else.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}

	var de *entity.DispatchError
	if !errors.As(err, &de) {
		return false
	}
	switch de.Kind {
	case entity.TransportFailure:
		return false
	case entity.ProviderRejected:
		return de.StatusCode < 500
	default:
		return true
	}
}

// ProviderHealth implements Service.ProviderHealth.
func (s *service) ProviderHealth() []ProviderHealthStatus {
	statuses := make([]ProviderHealthStatus, 0, len(s.order))
	for _, kind := range s.order {
		rt := s.routes[kind]
		state, open, targets := rt.breakers.health()
		statuses = append(statuses, ProviderHealthStatus{
			Kind:               kind,
			Name:               rt.provider.Name(),
			CircuitState:       state,
			CircuitBreakerOpen: open,
			OpenTargets:        targets,
		})
	}
	return statuses
}
