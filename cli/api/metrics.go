package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/danielgtaylor/huma/v2"
)

// meterRequests returns a middleware counting requests and timing them per
// operation and response status.
func meterRequests(set *metrics.Set) func(huma.Context, func(huma.Context)) {
	type (
		key struct {
			op     string
			status int
		}
		ref struct {
			*metrics.Counter
			*metrics.PrometheusHistogram
		}
	)

	var (
		refs   = map[key]ref{}
		refsMu sync.RWMutex
	)
	buckets := metrics.ExponentialBuckets(1e-3, 5, 6) //nolint: mnd // arbitrary

	lookup := func(op *huma.Operation, status int) ref {
		k := key{op.OperationID, status}

		refsMu.RLock()
		r, ok := refs[k]
		refsMu.RUnlock()
		if ok {
			return r
		}

		refsMu.Lock()
		defer refsMu.Unlock()
		r, ok = refs[k]
		if !ok {
			labels := joinQuote("{method=", op.Method, ",path=", op.Path, ",status=", strconv.Itoa(status), "}")
			r = ref{
				set.NewCounter("http_requests_total" + labels),
				set.NewPrometheusHistogramExt("http_request_duration_seconds"+labels, buckets),
			}
			refs[k] = r
		}
		return r
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		op, start := ctx.Operation(), time.Now()
		next(ctx)

		status := ctx.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r := lookup(op, status)
		r.Counter.Inc()
		r.PrometheusHistogram.UpdateDuration(start)
	}
}
