// Package metrics holds the gateway's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "call_panel"

var (
	SocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "socket_connections",
			Help:      "Currently open websocket connections.",
		},
	)

	SocketRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "socket_rejections_total",
			Help:      "Websocket connection attempts rejected before upgrade.",
		},
		[]string{"reason"},
	)

	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Events broadcast to rooms.",
		},
		[]string{"event"},
	)

	DroppedFrames = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_frames_total",
			Help:      "Outbound frames dropped because a client send queue was full.",
		},
	)

	PairingRegistrations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairing_registrations_total",
			Help:      "Pairing codes registered by displays.",
		},
	)

	PairingValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairing_validations_total",
			Help:      "Pairing validation attempts by outcome.",
		},
		[]string{"status"}, // paired, invalid_code, error
	)

	CallsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_ingested_total",
			Help:      "Ingestion requests by source and outcome.",
		},
		[]string{"source", "status"},
	)
)
