package docgen

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for document generation.
type Metrics struct {
	DocumentsGenerated *prometheus.CounterVec
	DocumentsFailed    *prometheus.CounterVec
	MembersRendered    *prometheus.CounterVec
	QRFailures         prometheus.Counter
	GenerationLatency  *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg. A nil reg registers on the
// default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		DocumentsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carteira_documents_generated_total",
			Help: "Total number of documents generated, labeled by kind and format",
		}, []string{"kind", "format"}),
		DocumentsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carteira_documents_failed_total",
			Help: "Total number of document generations that failed, labeled by kind and format",
		}, []string{"kind", "format"}),
		MembersRendered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "carteira_members_rendered_total",
			Help: "Total number of member records rendered, labeled by kind",
		}, []string{"kind"}),
		QRFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "carteira_qr_failures_total",
			Help: "Total number of cards printed without a QR code because encoding failed",
		}),
		GenerationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carteira_generation_duration_seconds",
			Help:    "Latency of document generation in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind", "format"}),
	}
}

func (m *Metrics) observe(kind, format string, members int, start time.Time, err error) {
	if m == nil {
		return
	}
	m.GenerationLatency.WithLabelValues(kind, format).Observe(time.Since(start).Seconds())
	if err != nil {
		m.DocumentsFailed.WithLabelValues(kind, format).Inc()
		return
	}
	m.DocumentsGenerated.WithLabelValues(kind, format).Inc()
	m.MembersRendered.WithLabelValues(kind).Add(float64(members))
}

func (m *Metrics) qrFailed() {
	if m != nil {
		m.QRFailures.Inc()
	}
}
