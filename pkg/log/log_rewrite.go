package log

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/9/16 15:21
 * @file: log_rewrite.go
 * @description: LogConfig rewrite
 */

func Info(args ...any) {
	getSugar().Info(args...)
}

func Infof(format string, args ...any) {
	getSugar().Infof(format, args...)
}

func Infow(msg string, keysAndValues ...any) {
	getSugar().Infow(msg, keysAndValues...)
}

func Debug(args ...any) {
	getSugar().Debug(args...)
}

func Debugf(format string, args ...any) {
	getSugar().Debugf(format, args...)
}

func Debugw(msg string, keysAndValues ...any) {
	getSugar().Debugw(msg, keysAndValues...)
}

func Warn(args ...any) {
	getSugar().Warn(args...)
}

func Warnf(format string, args ...any) {
	getSugar().Warnf(format, args...)
}

func Warnw(msg string, keysAndValues ...any) {
	getSugar().Warnw(msg, keysAndValues...)
}

func Error(args ...any) {
	getSugar().Error(args...)
}

func Errorf(format string, args ...any) {
	getSugar().Errorf(format, args...)
}

func Errorw(msg string, keysAndValues ...any) {
	getSugar().Errorw(msg, keysAndValues...)
}

func Fatal(args ...any) {
	getSugar().Fatal(args...)
}

func Fatalf(format string, args ...any) {
	getSugar().Fatalf(format, args...)
}

// WithContext returns a logger carrying trace_id/span_id of the span in ctx, if any.
func WithContext(ctx context.Context) *zap.SugaredLogger {
	s := getSugar()
	if ctx == nil {
		return s
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return s
	}
	fields := []any{
		"trace_id", spanCtx.TraceID().String(),
		"span_id", spanCtx.SpanID().String(),
	}
	if spanCtx.TraceFlags() != 0 {
		fields = append(fields, "trace_flags", uint8(spanCtx.TraceFlags()))
	}
	return s.With(fields...)
}
