package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the quiz service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	AnswersSubmitted  *prometheus.CounterVec
	AttemptsStarted   prometheus.Counter
	AttemptsCompleted prometheus.Counter
	DocumentsRejected prometheus.Counter
}

// New registers the collectors on a private registry.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		AnswersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_submitted_total",
			Help:      "Answers submitted, by correctness",
		}, []string{"correct"}),
		AttemptsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_started_total",
			Help:      "Quiz attempts started",
		}),
		AttemptsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_completed_total",
			Help:      "Quiz attempts completed and recorded",
		}),
		DocumentsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_rejected_total",
			Help:      "Quiz documents that failed validation",
		}),
	}
	reg.MustRegister(m.AnswersSubmitted, m.AttemptsStarted, m.AttemptsCompleted, m.DocumentsRejected)
	return m
}

func (m *Metrics) ObserveAnswer(correct bool) {
	if m == nil {
		return
	}
	m.AnswersSubmitted.WithLabelValues(strconv.FormatBool(correct)).Inc()
}

func (m *Metrics) ObserveStart() {
	if m == nil {
		return
	}
	m.AttemptsStarted.Inc()
}

func (m *Metrics) ObserveCompletion() {
	if m == nil {
		return
	}
	m.AttemptsCompleted.Inc()
}

func (m *Metrics) ObserveRejectedDocument() {
	if m == nil {
		return
	}
	m.DocumentsRejected.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
