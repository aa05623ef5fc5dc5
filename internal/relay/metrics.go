package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Rejection reasons used as the "reason" label.
const (
	reasonBadRequest  = "bad_request"
	reasonFingerprint = "fingerprint"
	reasonData        = "data"
	reasonTooLarge    = "too_large"
	reasonRateLimited = "rate_limited"
)

type metrics struct {
	stored   prometheus.Counter
	fetched  prometheus.Counter
	expired  prometheus.Counter
	rejected *prometheus.CounterVec
	notes    prometheus.GaugeFunc
}

func newMetrics(reg prometheus.Registerer, store *Store) *metrics {
	m := &metrics{
		stored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "secretnote",
			Subsystem: "relay",
			Name:      "notes_stored_total",
			Help:      "Notes accepted by the relay.",
		}),
		fetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "secretnote",
			Subsystem: "relay",
			Name:      "notes_fetched_total",
			Help:      "Notes returned to clients.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "secretnote",
			Subsystem: "relay",
			Name:      "notes_expired_total",
			Help:      "Notes removed by the sweeper.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "secretnote",
			Subsystem: "relay",
			Name:      "requests_rejected_total",
			Help:      "Requests refused by the relay.",
		}, []string{"reason"}),
		notes: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "secretnote",
			Subsystem: "relay",
			Name:      "notes",
			Help:      "Notes currently held, including expired notes not yet swept.",
		}, func() float64 { return float64(store.Len()) }),
	}
	reg.MustRegister(m.stored, m.fetched, m.expired, m.rejected, m.notes)
	return m
}

// newRegistry returns a registry with the Go runtime and process collectors.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
