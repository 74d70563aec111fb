package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"
)

type contextKey string

const LoggerKey contextKey = "logger"

// GetLogger returns the request-scoped logger stored by RequestLogger, or
// fallback when there is none.
func GetLogger(r *http.Request, fallback *zap.Logger) *zap.Logger {
	if val, ok := r.Context().Value(LoggerKey).(*zap.Logger); ok {
		return val
	}
	return fallback
}

// RequestLogger stores a logger tagged with the request method and path in the
// request context and logs each request once it has been handled.
func RequestLogger(logger *zap.Logger) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		start := time.Now()
		reqLogger := logger.With(
			zap.String("method", e.Request.Method),
			zap.String("path", e.Request.URL.Path),
		)
		if e.Request.Header.Get("HX-Request") == "true" {
			reqLogger = reqLogger.With(zap.Bool("htmx", true))
		}

		ctx := context.WithValue(e.Request.Context(), LoggerKey, reqLogger)
		e.Request = e.Request.WithContext(ctx)

		err := e.Next()

		fields := []zap.Field{
			zap.Int("status", e.Status()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err != nil {
			reqLogger.Warn("request failed", append(fields, zap.Error(err))...)
			return err
		}
		reqLogger.Debug("request handled", fields...)
		return nil
	}
}
