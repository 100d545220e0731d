package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ambiclean/apenso/internal/core/domain"
	"github.com/ambiclean/apenso/internal/core/ports"
)

// ReportMetrics counts generation runs. A CLI process is too short-lived to be
// scraped, so the registry is dumped to a node_exporter textfile instead.
type ReportMetrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	itemsTotal     *prometheus.CounterVec
	amountTotal    prometheus.Counter
	retriesTotal   *prometheus.CounterVec
	lastSuccessful prometheus.Gauge
}

func NewReportMetrics(service string) *ReportMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "apenso",
			Subsystem:   "report",
			Name:        "runs_total",
			Help:        "Total report generation runs by status.",
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "apenso",
			Subsystem:   "report",
			Name:        "run_duration_seconds",
			Help:        "Report generation duration in seconds by status.",
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	itemsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "apenso",
			Subsystem:   "report",
			Name:        "items_total",
			Help:        "Records seen by kind: technical, cost, matched, unmatched.",
			ConstLabels: constLabels,
		},
		[]string{"kind"},
	)
	amountTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "apenso",
			Subsystem:   "report",
			Name:        "amount_brl_total",
			Help:        "Sum of matched service amounts in BRL.",
			ConstLabels: constLabels,
		},
	)
	retriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "apenso",
			Subsystem:   "outbound",
			Name:        "retries_total",
			Help:        "Retried outbound calls by operation.",
			ConstLabels: constLabels,
		},
		[]string{"operation"},
	)
	lastSuccessful := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "apenso",
			Subsystem:   "report",
			Name:        "last_success_timestamp_seconds",
			Help:        "Unix time of the last successful run.",
			ConstLabels: constLabels,
		},
	)

	registry.MustRegister(runsTotal, runDuration, itemsTotal, amountTotal, retriesTotal, lastSuccessful)

	return &ReportMetrics{
		registry:       registry,
		runsTotal:      runsTotal,
		runDuration:    runDuration,
		itemsTotal:     itemsTotal,
		amountTotal:    amountTotal,
		retriesTotal:   retriesTotal,
		lastSuccessful: lastSuccessful,
	}
}

func (m *ReportMetrics) FinishRun(duration time.Duration, run *domain.ReportRun, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())

	if run == nil {
		return
	}
	m.itemsTotal.WithLabelValues("technical").Add(float64(run.TechnicalItems))
	m.itemsTotal.WithLabelValues("cost").Add(float64(run.CostItems))
	m.itemsTotal.WithLabelValues("matched").Add(float64(run.MatchedItems))
	m.itemsTotal.WithLabelValues("unmatched").Add(float64(run.TechnicalItems - run.MatchedItems))
	if amount := run.TotalAmount.InexactFloat64(); amount > 0 {
		m.amountTotal.Add(amount)
	}
	m.lastSuccessful.Set(float64(run.CreatedAt.Unix()))
}

// ObserveRetry matches resilience.RetryObserver.
func (m *ReportMetrics) ObserveRetry(operation string, _ int, _ error) {
	m.retriesTotal.WithLabelValues(operation).Inc()
}

// WriteTextfile atomically replaces path with the current registry contents.
func (m *ReportMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Instrument wraps a generator so every call is counted.
func (m *ReportMetrics) Instrument(next ports.ReportGenerator) ports.ReportGenerator {
	return &instrumentedGenerator{next: next, metrics: m}
}

type instrumentedGenerator struct {
	next    ports.ReportGenerator
	metrics *ReportMetrics
}

func (g *instrumentedGenerator) GenerateReport(ctx context.Context, req domain.GenerateRequest) (*domain.ReportRun, error) {
	start := time.Now()
	run, err := g.next.GenerateReport(ctx, req)
	g.metrics.FinishRun(time.Since(start), run, err)
	return run, err
}
