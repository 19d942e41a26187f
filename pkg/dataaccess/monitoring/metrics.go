package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreLatency is the duration of store queries.
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dataaccess_store_latency",
			Help: "Duration of store queries",
		},
		[]string{"driver", "dal", "query", "table"},
	)

	// StoreTotalRequests is the total number of store requests.
	StoreTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_store_total_requests",
			Help: "Total number of store requests",
		},
		[]string{"driver", "dal", "query", "table"},
	)

	// StoreTotalErrors is the total number of failed store requests.
	StoreTotalErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_store_total_errors",
			Help: "Total number of failed store requests",
		},
		[]string{"driver", "dal", "query", "table"},
	)
)
