package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/masonlet/starlet-setup/internal/foundation/errors"
)

const namespace = "starlet_setup"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	cloneDuration *prom.HistogramVec
	reused        prom.Counter
	stepDuration  *prom.HistogramVec
	runDuration   *prom.HistogramVec
	runOutcome    *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		cloneDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "clone_duration_seconds",
			Help:      "Duration of individual repository clones",
			Buckets:   prom.DefBuckets,
		}, []string{"repo", "result"}),
		reused: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reused_checkouts_total",
			Help:      "Existing checkouts reused instead of cloned",
		}),
		stepDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of cmake configure and build steps",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"step", "result"}),
		runDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total duration of a setup run",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"mode"}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Setup runs by mode and final status",
		}, []string{"mode", "outcome"}),
	}
	reg.MustRegister(pr.cloneDuration, pr.reused, pr.stepDuration, pr.runDuration, pr.runOutcome)
	return pr
}

// Registry returns the registry holding the recorder's collectors.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveCloneDuration(repo string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	p.cloneDuration.WithLabelValues(repo, resultLabel(success)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncReusedCheckout() {
	if p == nil {
		return
	}
	p.reused.Inc()
}

func (p *PrometheusRecorder) ObserveStepDuration(step string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	p.stepDuration.WithLabelValues(step, resultLabel(success)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(mode string, d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(mode string, outcome Outcome) {
	if p == nil {
		return
	}
	p.runOutcome.WithLabelValues(mode, string(outcome)).Inc()
}

// WriteTextfile writes the registry to path in the Prometheus text format.
// The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write metrics file").
			WithContext(errors.KeyPath, path).
			Build()
	}
	return nil
}
