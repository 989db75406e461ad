package telemetry

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTELHook adds trace and span IDs to every log entry
type OTELHook struct{}

func (h OTELHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}

	e.Str("trace_id", span.SpanContext().TraceID().String())
	e.Str("span_id", span.SpanContext().SpanID().String())

	if level == zerolog.ErrorLevel {
		span.SetStatus(codes.Error, msg)
	}
}

// Logger wraps zerolog with OTEL integration
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a new logger with OTEL hooks
func NewLogger(service string) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", service).
		Logger().
		Hook(OTELHook{})

	return &Logger{Logger: logger}
}

// WithContext returns a logger with context (for trace propagation)
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// Convenience methods for pipeline operations

func (l *Logger) LogUnitStart(ctx context.Context, subscriptions int, tenants int) {
	l.WithContext(ctx).Info().
		Int("subscriptions", subscriptions).
		Int("tenants", tenants).
		Str("operation", "process_unit").
		Msg("starting work unit")
}

func (l *Logger) LogFetchRetry(ctx context.Context, endpoint string, attempt, attempts int, err error) {
	l.WithContext(ctx).Warn().
		Err(err).
		Str("endpoint", endpoint).
		Int("attempt", attempt).
		Int("attempts", attempts).
		Str("operation", "fetch_page").
		Msg("page fetch failed, retrying")
}

func (l *Logger) LogKindFailure(ctx context.Context, subscriptionID, kind string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("subscription_id", subscriptionID).
		Str("kind", kind).
		Msg("resource kind capture failed")
}

func (l *Logger) LogStorageError(ctx context.Context, key string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("key", key).
		Str("operation", "inventory_write").
		Msg("storage write failed")
}

func (l *Logger) LogResourceCounts(ctx context.Context, counts map[string]int) {
	for subscriptionID, n := range counts {
		l.WithContext(ctx).Info().
			Str("subscription_id", subscriptionID).
			Int("resources", n).
			Msg("resources written")
	}
}
