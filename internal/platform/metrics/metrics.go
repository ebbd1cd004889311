package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	PeopleMinted  prometheus.Counter
	ObjectsMinted prometheus.Counter

	CoinsMinted prometheus.Counter
	CoinsBurned prometheus.Counter

	EscrowListings  *prometheus.CounterVec
	EscrowPurchases *prometheus.CounterVec
	EscrowCloses    *prometheus.CounterVec

	ChoicesMade prometheus.Counter

	RequestLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PeopleMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeledger_people_minted_total",
			Help: "Total number of person records minted",
		}),
		ObjectsMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeledger_objects_minted_total",
			Help: "Total number of object records minted",
		}),
		CoinsMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeledger_coins_minted_total",
			Help: "Total coin units minted into circulation",
		}),
		CoinsBurned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeledger_coins_burned_total",
			Help: "Total coin units destroyed",
		}),
		EscrowListings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifeledger_escrow_listings_total",
			Help: "Assets listed for resale, by registry kind",
		}, []string{"kind"}),
		EscrowPurchases: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifeledger_escrow_purchases_total",
			Help: "Direct purchases out of the holding vault, by registry kind",
		}, []string{"kind"}),
		EscrowCloses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifeledger_escrow_closes_total",
			Help: "Settlement closes, by registry kind and outcome",
		}, []string{"kind", "outcome"}),
		ChoicesMade: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeledger_choices_made_total",
			Help: "Total priced choices recorded",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifeledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveRequest records one HTTP request latency sample.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	m.RequestLatency.WithLabelValues(route, status).Observe(d.Seconds())
}
