package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinic_portal_bookings_total",
		Help: "Appointments successfully booked through slot reservation.",
	})

	BookingConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinic_portal_booking_conflicts_total",
		Help: "Booking attempts rejected because the slot was taken or contended.",
	})

	CancellationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinic_portal_cancellations_total",
		Help: "Appointments cancelled.",
	})

	CompletionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinic_portal_completions_total",
		Help: "Appointments marked completed.",
	})
)

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
