package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
)

// ctxlog is a [context.Context] key and acts as a virtual package for operations related to it.
type ctxlog struct{}

// logger returns the request [slog.Logger] stored in ctx, or fallback.
func (key ctxlog) logger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	logger, ok := ctx.Value(key).(*slog.Logger)
	if !ok {
		return fallback
	}
	return logger
}

// loggerMiddleware returns a middleware that sets a [slog.Logger] in
// the [context.Context] and logs the request after it has terminated.
// Requests without an X-Request-Id header get a generated one, echoed in
// the response.
func (key ctxlog) loggerMiddleware(parent *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		requestID := ctx.Header("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.SetHeader("X-Request-Id", requestID)
		logger := parent.With("x-request-id", requestID)

		start := time.Now()
		next(huma.WithValue(ctx, key, logger.WithGroup("op").With("id", ctx.Operation().OperationID)))

		logger.LogAttrs(context.Background(), slog.LevelInfo,
			joinSpace(ctx.Operation().Method, ctx.Operation().Path, ctx.Version().Proto),
			slog.String("from", ctx.RemoteAddr()),
			slog.String("ua", ctx.Header("User-Agent")),
			slog.Int("status", ctx.Status()),
			slog.Duration("dur", time.Since(start)),
		)
	}
}

// recoverMiddleware returns a middleware that recovers and logs the value from panic.
// Also sets status response to [http.StatusInternalServerError].
func (key ctxlog) recoverMiddleware(fallback *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		defer func() {
			v := recover()
			if v != nil {
				key.logger(ctx.Context(), fallback).LogAttrs(context.Background(), slog.LevelError,
					"panic occurred", slog.Any("recovered", v))
				ctx.SetStatus(http.StatusInternalServerError)
			}
		}()
		next(ctx)
	}
}

// errorHandler returns a function logging handler errors with the request
// logger. Client errors are warnings, server errors are errors.
func (key ctxlog) errorHandler(fallback *slog.Logger) func(context.Context, error) {
	return func(ctx context.Context, err error) {
		level := slog.LevelError
		attrs := []slog.Attr{slog.Any("err", err)}

		var statusErr huma.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.GetStatus() < http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			attrs = append(attrs, slog.Int("status", statusErr.GetStatus()))
		}

		key.logger(ctx, fallback).LogAttrs(context.Background(), level, "request failed", attrs...)
	}
}
