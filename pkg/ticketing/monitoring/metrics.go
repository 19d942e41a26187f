package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicketsOpened is the total number of ticket channels created.
	TicketsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketing_tickets_opened_total",
			Help: "Total number of ticket channels created",
		},
	)

	// TicketActions is the total number of lifecycle actions handled.
	TicketActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_actions_total",
			Help: "Total number of ticket lifecycle actions",
		},
		[]string{"action"},
	)

	// SkippedGrants is the total number of admin grants that could not be resolved.
	SkippedGrants = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketing_skipped_grants_total",
			Help: "Total number of admin grants skipped because they could not be resolved",
		},
	)

	// TranscriptMessages is the number of messages per exported transcript.
	TranscriptMessages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticketing_transcript_messages",
			Help:    "Number of messages in exported transcripts",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// InteractionErrors is the total number of interactions that failed.
	InteractionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_interaction_errors_total",
			Help: "Total number of interactions that failed",
		},
		[]string{"interaction"},
	)
)
