package datastores

import (
	"context"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// ContactsMetered wraps a [ContactsStore] and records calls, failures and
// durations of Load and Save into a [metrics.Set].
type ContactsMetered struct {
	ContactsStore

	loads, loadErrs, saves, saveErrs *metrics.Counter
	loadDur, saveDur                 *metrics.PrometheusHistogram
}

var _ ContactsStore = (*ContactsMetered)(nil)

func NewContactsMetered(store ContactsStore, set *metrics.Set) *ContactsMetered {
	buckets := metrics.ExponentialBuckets(1e-4, 5, 6) //nolint: mnd // arbitrary
	return &ContactsMetered{
		ContactsStore: store,
		loads:         set.NewCounter(`store_operations_total{op="load"}`),
		loadErrs:      set.NewCounter(`store_errors_total{op="load"}`),
		saves:         set.NewCounter(`store_operations_total{op="save"}`),
		saveErrs:      set.NewCounter(`store_errors_total{op="save"}`),
		loadDur:       set.NewPrometheusHistogramExt(`store_operation_duration_seconds{op="load"}`, buckets),
		saveDur:       set.NewPrometheusHistogramExt(`store_operation_duration_seconds{op="save"}`, buckets),
	}
}

func (s *ContactsMetered) Load(ctx context.Context) ([]*Contact, error) {
	start := time.Now()
	cs, err := s.ContactsStore.Load(ctx)
	s.loads.Inc()
	s.loadDur.UpdateDuration(start)
	if err != nil {
		s.loadErrs.Inc()
	}
	return cs, err
}

func (s *ContactsMetered) Save(ctx context.Context, cs []*Contact) error {
	start := time.Now()
	err := s.ContactsStore.Save(ctx, cs)
	s.saves.Inc()
	s.saveDur.UpdateDuration(start)
	if err != nil {
		s.saveErrs.Inc()
	}
	return err
}
