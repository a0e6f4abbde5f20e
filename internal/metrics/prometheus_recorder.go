package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "fittext"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	runDuration   prom.Histogram
	runOutcomes   *prom.CounterVec
	filesScanned  prom.Counter
	callSites     *prom.CounterVec
	newKeys       *prom.CounterVec
	staleKeys     prom.Gauge
	diagnostics   *prom.CounterVec
	workers       prom.Gauge
}

// NewPrometheusRecorder constructs the collectors and registers them with reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual generator stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total generator run duration",
			Buckets:   prom.DefBuckets,
		}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Generator runs by final outcome",
		}, []string{"outcome"}),
		filesScanned: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_scanned_total",
			Help:      "Source files scanned for macro invocations",
		}),
		callSites: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "call_sites_total",
			Help:      "Macro call sites rewritten",
		}, []string{"variant"}),
		newKeys: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "new_keys_total",
			Help:      "Content keys added to the candidate table",
		}, []string{"variant"}),
		staleKeys: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "stale_keys",
			Help:      "Table keys no call site referenced in the last run",
		}),
		diagnostics: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Call-site diagnostics by kind",
		}, []string{"kind"}),
		workers: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Expansion worker concurrency of the last run",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.runDuration, pr.runOutcomes, pr.filesScanned,
		pr.callSites, pr.newKeys, pr.staleKeys, pr.diagnostics, pr.workers)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.runOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddFilesScanned(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.filesScanned.Add(float64(n))
}

func (p *PrometheusRecorder) AddCallSites(variant string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.callSites.WithLabelValues(variant).Add(float64(n))
}

func (p *PrometheusRecorder) AddNewKeys(variant string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.newKeys.WithLabelValues(variant).Add(float64(n))
}

func (p *PrometheusRecorder) SetStaleKeys(n int) {
	if p == nil {
		return
	}
	p.staleKeys.Set(float64(n))
}

func (p *PrometheusRecorder) IncDiagnostics(kind string) {
	if p == nil {
		return
	}
	p.diagnostics.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) SetWorkers(n int) {
	if p == nil {
		return
	}
	p.workers.Set(float64(n))
}
