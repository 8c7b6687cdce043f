// Package metrics holds the Prometheus collectors for the assistant.
// Collectors are registered on the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlacesTierRequests counts provider requests by tier radius.
	PlacesTierRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "safeher",
			Subsystem: "places",
			Name:      "tier_requests_total",
			Help:      "Places provider requests issued, by search radius in km.",
		},
		[]string{"radius_km"},
	)

	// PlacesSearches counts finished searches.
	//
	// Labels:
	//   - outcome: "found", "not_found", "transport_error", "not_configured"
	PlacesSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "safeher",
			Subsystem: "places",
			Name:      "searches_total",
			Help:      "Completed place searches by outcome.",
		},
		[]string{"outcome"},
	)

	// AdviceAnswers counts advice answers by where the text came from.
	//
	// Labels:
	//   - source: "remote", "fallback", "unconfigured"
	//   - reason: "", "quota", "api_error", "transport", "empty_response"
	AdviceAnswers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "safeher",
			Subsystem: "advice",
			Name:      "answers_total",
			Help:      "Advice answers by source and fallback reason.",
		},
		[]string{"source", "reason"},
	)

	// MessagesHandled counts user utterances by active mode.
	MessagesHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "safeher",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "User messages handled by mode.",
		},
		[]string{"mode"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "safeher",
			Subsystem: "session",
			Name:      "active",
			Help:      "Conversations currently held in memory.",
		},
	)
)
