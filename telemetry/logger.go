package telemetry

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yairfalse/vakta/types"
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

// Convenience methods for detection operations

func (l *Logger) LogEventScored(ctx context.Context, subjectID string, verdict types.Verdict) {
	l.WithContext(ctx).Info().
		Str("subject_id", subjectID).
		Int("risk_score", verdict.Score).
		Str("alert_level", string(verdict.Level)).
		Int("reasons", len(verdict.Reasons)).
		Str("operation", "score").
		Msg("event scored")
}

func (l *Logger) LogAlertGenerated(ctx context.Context, alert types.Alert) {
	l.WithContext(ctx).Warn().
		Str("alert_id", alert.ID).
		Str("subject_id", alert.SubjectID).
		Str("alert_level", string(alert.Level)).
		Str("risk_score", alert.ScoreString()).
		Str("reasons", alert.Reasons).
		Str("operation", "alert").
		Msg("alert generated")
}

func (l *Logger) LogEventRejected(ctx context.Context, subjectID string, err error) {
	l.WithContext(ctx).Warn().
		Err(err).
		Str("subject_id", subjectID).
		Str("operation", "reject").
		Msg("event rejected")
}

func (l *Logger) LogStorageError(ctx context.Context, operation string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("operation", operation).
		Msg("storage operation failed")
}
