package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HistogramBuckets are millisecond buckets sized for calls to object storage
// and the database, which dominate submission latency.
var HistogramBuckets = []float64{
	5, 10, 25, 50, 100, 250, 500,
	1000, 2500, 5000, 10000,
	15000, 20000, 30000, 45000, 60000,
}

// Metric is a definition for the name, description, type and labels of one
// collector. MetricCollector is filled in on registration.
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric builds the prometheus.Collector described by m.Type.
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter_vec":
		return prometheus.NewCounterVec(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "counter":
		return prometheus.NewCounter(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	case "gauge_vec":
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "gauge":
		return prometheus.NewGauge(prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	case "histogram_vec":
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets}, m.Args)
	case "histogram":
		return prometheus.NewHistogram(prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets})
	}
	return nil
}

// MillisecondsSince returns the elapsed time in fractional milliseconds.
func MillisecondsSince(t time.Time) float64 {
	return float64(time.Since(t).Nanoseconds()) / 1e6
}

var submissionsTotal = &Metric{
	ID:          "submissions",
	Name:        "submissions_total",
	Description: "Payment submissions by transaction type and terminal state.",
	Type:        "counter_vec",
	Args:        []string{"transaction_type", "state"},
}

var stepDuration = &Metric{
	ID:          "stepDur",
	Name:        "step_dur_ms",
	Description: "Latency of submission steps in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"step", "result"},
}

// Payment holds the submission pipeline collectors.
type Payment struct {
	submissions *prometheus.CounterVec
	steps       *prometheus.HistogramVec
}

// NewPayment registers the pipeline collectors on reg. A nil reg skips
// registration, which tests use to get isolated collectors.
func NewPayment(reg prometheus.Registerer) (*Payment, error) {
	p := &Payment{
		submissions: NewMetric(submissionsTotal, "payment").(*prometheus.CounterVec),
		steps:       NewMetric(stepDuration, "payment").(*prometheus.HistogramVec),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{p.submissions, p.steps} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// ProvidePayment registers on the default registry for the fx graph.
func ProvidePayment() (*Payment, error) {
	return NewPayment(prometheus.DefaultRegisterer)
}

// ObserveSubmission counts one finished pipeline run.
func (p *Payment) ObserveSubmission(transactionType, state string) {
	if p == nil {
		return
	}
	p.submissions.WithLabelValues(transactionType, state).Inc()
}

// ObserveStep records how long a network step took.
func (p *Payment) ObserveStep(step string, start time.Time, err error) {
	if p == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.steps.WithLabelValues(step, result).Observe(MillisecondsSince(start))
}

// Submissions exposes the counter for tests.
func (p *Payment) Submissions() *prometheus.CounterVec { return p.submissions }
