package handler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ordersPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Total number of orders placed through checkout",
		},
	)

	orderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Total number of order status transitions",
		},
		[]string{"to"},
	)

	paymentsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "payments",
			Name:      "completed_total",
			Help:      "Total number of payments completed via the gateway webhook",
		},
	)

	webhooksRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: "payments",
			Name:      "webhooks_rejected_total",
			Help:      "Total number of webhook deliveries with a bad signature",
		},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(
		ordersPlaced,
		orderTransitions,
		paymentsCompleted,
		webhooksRejected,
	)
}
