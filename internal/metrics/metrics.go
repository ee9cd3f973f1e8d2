package metrics

import "github.com/prometheus/client_golang/prometheus"

// PollMetrics exposes counters/histograms for the status watcher and dashboard views.
type PollMetrics struct {
	pollsTotal    *prometheus.CounterVec
	skippedTotal  *prometheus.CounterVec
	notifications prometheus.Counter
	pollLatency   prometheus.Histogram
	observed      *prometheus.GaugeVec
	rosterSize    prometheus.Gauge
}

func NewPollMetrics(reg prometheus.Registerer) *PollMetrics {
	m := &PollMetrics{
		pollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "poller",
			Name:      "polls_total",
			Help:      "Total appointment polls by result",
		}, []string{"result"}),
		skippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "poller",
			Name:      "skipped_total",
			Help:      "Poll ticks skipped, by reason",
		}, []string{"reason"}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "poller",
			Name:      "notifications_total",
			Help:      "Confirmation notifications emitted",
		}),
		pollLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Subsystem: "poller",
			Name:      "poll_duration_seconds",
			Help:      "Latency of one fetch and compare cycle",
			Buckets:   prometheus.DefBuckets,
		}),
		observed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dashboard",
			Subsystem: "poller",
			Name:      "observed_appointments",
			Help:      "Appointments seen on the last poll, by expiry state",
		}, []string{"state"}),
		rosterSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dashboard",
			Subsystem: "roster",
			Name:      "patients",
			Help:      "Patients in the last roster built",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.pollsTotal, m.skippedTotal, m.notifications, m.pollLatency, m.observed, m.rosterSize)
	return m
}

func (m *PollMetrics) ObservePoll(result string, seconds float64) {
	if m == nil {
		return
	}
	m.pollsTotal.WithLabelValues(result).Inc()
	m.pollLatency.Observe(seconds)
}

func (m *PollMetrics) ObserveSkipped(reason string) {
	if m == nil {
		return
	}
	m.skippedTotal.WithLabelValues(reason).Inc()
}

func (m *PollMetrics) ObserveNotification() {
	if m == nil {
		return
	}
	m.notifications.Inc()
}

func (m *PollMetrics) SetObserved(expired, active, unknown int) {
	if m == nil {
		return
	}
	m.observed.WithLabelValues("expired").Set(float64(expired))
	m.observed.WithLabelValues("active").Set(float64(active))
	m.observed.WithLabelValues("unknown").Set(float64(unknown))
}

func (m *PollMetrics) SetRosterSize(n int) {
	if m == nil {
		return
	}
	m.rosterSize.Set(float64(n))
}
