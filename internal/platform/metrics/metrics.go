package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LeadsCreated           prometheus.Counter
	LeadTransitionDuration *prometheus.HistogramVec
	NotificationsDelivered prometheus.Counter
	NotificationsDropped   prometheus.Counter
	OpenChannels           prometheus.Gauge
	ConnectionsRejected    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		LeadsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leadflow_leads_created_total",
			Help: "Total number of leads created",
		}),
		LeadTransitionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leadflow_lead_transition_duration_seconds",
			Help:    "Latency of lead lifecycle transitions",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		NotificationsDelivered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leadflow_notifications_delivered_total",
			Help: "Notifications handed to a live channel",
		}),
		NotificationsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leadflow_notifications_dropped_total",
			Help: "Notifications dropped because no channel was bound or the send failed",
		}),
		OpenChannels: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "leadflow_open_channels",
			Help: "Currently bound realtime channels",
		}),
		ConnectionsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leadflow_connections_rejected_total",
			Help: "Realtime connection attempts rejected at the gate",
		}),
	}
}

// The mutators below are nil-safe so tests can pass a zero-value *Metrics
// without registering collectors against the default registry.

// ObserveTransition records the latency of one lifecycle operation.
func (m *Metrics) ObserveTransition(operation string, start time.Time) {
	if m == nil || m.LeadTransitionDuration == nil {
		return
	}
	m.LeadTransitionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncLeadsCreated() {
	if m == nil || m.LeadsCreated == nil {
		return
	}
	m.LeadsCreated.Inc()
}

func (m *Metrics) IncDelivered() {
	if m == nil || m.NotificationsDelivered == nil {
		return
	}
	m.NotificationsDelivered.Inc()
}

func (m *Metrics) IncDropped() {
	if m == nil || m.NotificationsDropped == nil {
		return
	}
	m.NotificationsDropped.Inc()
}

func (m *Metrics) IncRejected() {
	if m == nil || m.ConnectionsRejected == nil {
		return
	}
	m.ConnectionsRejected.Inc()
}

func (m *Metrics) ChannelOpened() {
	if m == nil || m.OpenChannels == nil {
		return
	}
	m.OpenChannels.Inc()
}

func (m *Metrics) ChannelClosed() {
	if m == nil || m.OpenChannels == nil {
		return
	}
	m.OpenChannels.Dec()
}
