package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsCreated The total number of committed bookings (counter)
	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cinema",
			Name:      "bookings_created_total",
			Help:      "The total number of committed bookings",
		},
	)

	// BookingsRejected Booking attempts refused, by error kind (counter)
	BookingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinema",
			Name:      "bookings_rejected_total",
			Help:      "Booking attempts refused, by error kind",
		},
		[]string{"kind"},
	)

	// BookingsCancelled The total number of cancelled bookings (counter)
	BookingsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cinema",
			Name:      "bookings_cancelled_total",
			Help:      "The total number of cancelled bookings",
		},
	)

	// EventsPublishFailed Booking events that could not be handed to the broker (counter)
	EventsPublishFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinema",
			Name:      "events_publish_failed_total",
			Help:      "Booking events that could not be handed to the broker",
		},
		[]string{"queue"},
	)

	// RateLimited Requests refused by the token bucket, by limiter scope (counter)
	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinema",
			Name:      "rate_limited_total",
			Help:      "Requests refused by the token bucket, by limiter scope",
		},
		[]string{"scope"},
	)

	// HTTPRequestDuration Latency of HTTP requests by route, method and status (histogram)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cinema",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by route, method and status",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)
