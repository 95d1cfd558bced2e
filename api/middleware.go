package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ctxlog is a [context.Context] key and acts as a virtual package for operations related to it.
type ctxlog struct{}

// loggerMiddleware stores a request scoped [zap.Logger] in the context and
// logs the request once it has been served.
func (key ctxlog) loggerMiddleware(parent *zap.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		logger := parent.With(zap.String("x-request-id", middleware.GetReqID(ctx.Context())))

		start := time.Now()
		next(huma.WithValue(ctx, key, logger.With(zap.String("op", ctx.Operation().OperationID))))

		logger.Info(joinSpace(ctx.Operation().Method, ctx.Operation().Path, ctx.Version().Proto),
			zap.String("from", ctx.RemoteAddr()),
			zap.String("ua", ctx.Header("User-Agent")),
			zap.Int("status", ctx.Status()),
			zap.Duration("dur", time.Since(start)),
		)
	}
}

// recoverMiddleware logs a panic value and answers 500.
func (key ctxlog) recoverMiddleware(fallback *zap.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		defer func() {
			v := recover()
			if v != nil {
				logger, ok := ctx.Context().Value(key).(*zap.Logger)
				if !ok {
					logger = fallback
				}
				logger.Error("panic occurred", zap.Any("recovered", v))
				ctx.SetStatus(http.StatusInternalServerError)
			}
		}()
		next(ctx)
	}
}

// errorHandler logs operation errors with a level derived from their status.
func (key ctxlog) errorHandler(fallback *zap.Logger) func(context.Context, error) {
	return func(ctx context.Context, err error) {
		level := zapcore.ErrorLevel
		fields := []zap.Field{zap.Error(err)}

		var statusErr huma.StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.GetStatus() / 100 {
			case 5: //nolint: mnd // 5XX HTTP Status Codes
				level = zapcore.ErrorLevel
			case 4: //nolint: mnd // 4XX HTTP Status Codes
				level = zapcore.WarnLevel
			case 3: //nolint: mnd // 3XX HTTP Status Codes
				level = zapcore.InfoLevel
			}
			fields = append(fields, zap.Int("status", statusErr.GetStatus()))
		}

		logger, ok := ctx.Value(key).(*zap.Logger)
		if !ok {
			logger = fallback
		}
		logger.Log(level, "error occurred", fields...)
	}
}

func meterRequests(set *metrics.Set) func(huma.Context, func(huma.Context)) {
	type ref struct {
		*metrics.Counter
		*metrics.PrometheusHistogram
	}

	refs := sync.Map{}
	refsMu := sync.Mutex{}
	buckets := metrics.ExponentialBuckets(1e-3, 5, 6) //nolint: mnd // arbitrary

	return func(ctx huma.Context, next func(huma.Context)) {
		op, start := ctx.Operation(), time.Now()
		next(ctx)

		uid := op.OperationID + http.StatusText(ctx.Status())
		val, ok := refs.Load(uid)
		if !ok {
			refsMu.Lock()
			val, ok = refs.Load(uid)
			if !ok {
				labels := joinQuote("{method=", op.Method, ",path=", op.Path, ",status=", strconv.Itoa(ctx.Status()), "}") //nolint: golines
				val = ref{
					set.NewCounter("http_requests_total" + labels),
					set.NewPrometheusHistogramExt("http_request_duration_seconds"+labels, buckets),
				}
				refs.Store(uid, val)
			}
			refsMu.Unlock()
		}
		valref := val.(ref) //nolint: errcheck // always true
		valref.Counter.Inc()
		valref.PrometheusHistogram.UpdateDuration(start)
	}
}

// joinQuote is [strings.Join] with " as separator.
func joinQuote(elems ...string) string { return strings.Join(elems, `"`) }

// joinSpace is [strings.Join] with space as separator.
func joinSpace(elems ...string) string { return strings.Join(elems, ` `) }
