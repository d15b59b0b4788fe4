package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	Reconciliations   prometheus.Counter
	ReconcileFailures prometheus.Counter
	ReconcileTime     prometheus.Histogram
	MembersByStatus   *prometheus.GaugeVec
	DataIssues        *prometheus.GaugeVec

	Publishes       *prometheus.CounterVec
	Deliveries      *prometheus.CounterVec
	HandlerFailures *prometheus.CounterVec
	RelayMessages   *prometheus.CounterVec
}

// NewMetrics registers the service metrics on reg. A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Reconciliations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliations_total",
			Help:      "The total number of member view reconciliations",
		}),
		ReconcileFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_load_failures_total",
			Help:      "The total number of refreshes aborted while loading sources",
		}),
		ReconcileTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_time_seconds",
			Help:      "Time taken to load and reconcile the member view",
			Buckets:   prometheus.DefBuckets,
		}),
		MembersByStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "members",
			Help:      "Members in the latest view by derived status",
		}, []string{"status"}),
		DataIssues: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "data_issues",
			Help:      "Data quality issues in the latest view by kind",
		}, []string{"kind"}),
		Publishes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalidations_published_total",
			Help:      "Invalidation notifications published by topic",
		}, []string{"topic"}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalidations_delivered_total",
			Help:      "Coalesced handler invocations by topic",
		}, []string{"topic"}),
		HandlerFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalidation_handler_failures_total",
			Help:      "Subscriber handlers that returned an error or panicked",
		}, []string{"topic"}),
		RelayMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_messages_total",
			Help:      "Invalidations relayed through redis by direction",
		}, []string{"direction"}),
	}
}
