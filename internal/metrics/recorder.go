package metrics

import "time"

// Outcome labels run results for counters.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Step names used for ObserveStepDuration.
const (
	StepConfigure = "configure"
	StepBuild     = "build"
)

// Recorder defines observability hooks for a setup run.
type Recorder interface {
	ObserveCloneDuration(repo string, d time.Duration, success bool)
	IncReusedCheckout()
	ObserveStepDuration(step string, d time.Duration, success bool)
	ObserveRunDuration(mode string, d time.Duration)
	IncRunOutcome(mode string, outcome Outcome)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveCloneDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncReusedCheckout()                              {}
func (NoopRecorder) ObserveStepDuration(string, time.Duration, bool) {}
func (NoopRecorder) ObserveRunDuration(string, time.Duration)        {}
func (NoopRecorder) IncRunOutcome(string, Outcome)                   {}

func resultLabel(success bool) string {
	if success {
		return string(OutcomeSuccess)
	}
	return string(OutcomeFailed)
}
