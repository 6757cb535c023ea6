package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesTotal tracks inbound chat updates by kind
	UpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalbot_updates_total",
		Help: "Total number of chat updates processed",
	}, []string{"kind"})

	// UpdateDuration tracks update handling time
	UpdateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "signalbot_update_duration_seconds",
		Help:    "Histogram of update handling duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// AccessDecisions tracks access controller outcomes per feature attempt
	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalbot_access_decisions_total",
		Help: "Total number of access decisions by result",
	}, []string{"result"})

	// Claims tracks key-claim attempts by outcome
	Claims = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalbot_key_claims_total",
		Help: "Total number of key claim attempts by outcome",
	}, []string{"outcome"})

	// KeysIssued counts keys generated through the admin flow
	KeysIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signalbot_keys_issued_total",
		Help: "Total number of access keys issued",
	})

	// SendFailures counts outbound deliveries that errored (never fatal)
	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signalbot_send_failures_total",
		Help: "Total number of failed outbound message deliveries",
	})

	// FloodDrops counts updates dropped by the transport flood limiter
	FloodDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signalbot_flood_drops_total",
		Help: "Total number of updates dropped by the flood limiter",
	})

	// DBConnectionsActive tracks open database connections
	DBConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signalbot_db_connections_active",
		Help: "Number of active database connections",
	})
)
