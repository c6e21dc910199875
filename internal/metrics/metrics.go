package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yoyaku",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	slotsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "yoyaku",
			Name:      "slots_returned",
			Help:      "Slots returned per availability request.",
			Buckets:   prometheus.LinearBuckets(0, 50, 10),
		},
	)

	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "yoyaku",
			Name:      "slot_generation_seconds",
			Help:      "Wall time of one slot generation pass.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	rejectedIntervals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "yoyaku",
			Name:      "busy_intervals_rejected_total",
			Help:      "Malformed busy intervals excluded from the busy set.",
		},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yoyaku",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			slotsReturned,
			generationDuration,
			rejectedIntervals,
			bookings,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// ObserveSlots records the size of one availability response.
func ObserveSlots(count int) {
	slotsReturned.Observe(float64(count))
}

// ObserveGeneration records how long one generation pass took, in seconds.
func ObserveGeneration(seconds float64) {
	generationDuration.Observe(seconds)
}

// AddRejectedIntervals counts malformed busy intervals dropped from a batch.
func AddRejectedIntervals(n int) {
	rejectedIntervals.Add(float64(n))
}

// IncBooking counts a booking attempt by outcome label.
func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}
