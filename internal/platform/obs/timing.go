package obs

import (
	"context"
	"ev-route-planner/internal/platform/metrics"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID attaches id to ctx. An empty id keeps the id already on ctx
// or generates a fresh one.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		if cur, ok := ctx.Value(RequestIDKey).(string); ok && cur != "" {
			return ctx
		}
		id = uuid.NewString()
	}
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs and records the duration of the named operation.
// Usage: defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		entry := logrus.WithFields(logrus.Fields{
			"req_id": reqID,
			"op":     name,
			"dur_ms": dur.Milliseconds(),
		})

		if errp != nil && *errp != nil {
			metrics.OperationDuration.WithLabelValues(name, "error").Observe(dur.Seconds())
			entry.WithError(*errp).Warn("operation failed")
			return
		}
		metrics.OperationDuration.WithLabelValues(name, "ok").Observe(dur.Seconds())
		entry.Debug("operation done")
	}
}
