package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
)

// Metrics counts pipeline activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry    *prometheus.Registry
	extractions *prometheus.CounterVec
	images      *prometheus.CounterVec
	portraits   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "characterbot",
			Name:      "extraction_attempts_total",
			Help:      "LLM extraction attempts by outcome.",
		}, []string{"outcome"}),
		images: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "characterbot",
			Name:      "images_generated_total",
			Help:      "Images returned by the generation backend.",
		}, []string{"backend"}),
		portraits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "characterbot",
			Name:      "portraits_total",
			Help:      "Character portraits by outcome.",
		}, []string{"outcome"}),
	}
	m.Registry.MustRegister(m.extractions, m.images, m.portraits)
	return m
}

func outcome(ok bool) string {
	return lo.Ternary(ok, "success", "failure")
}

func (m *Metrics) ObserveExtraction(ok bool) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(outcome(ok)).Inc()
}

func (m *Metrics) ObserveImages(backend string, n int) {
	if m == nil {
		return
	}
	m.images.WithLabelValues(backend).Add(float64(n))
}

func (m *Metrics) ObservePortrait(ok bool) {
	if m == nil {
		return
	}
	m.portraits.WithLabelValues(outcome(ok)).Inc()
}

// WriteTextfile writes the counters in the node_exporter textfile format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
