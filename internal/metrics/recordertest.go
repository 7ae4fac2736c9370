package metrics

import (
	"sync"
	"time"
)

// MemoryRecorder counts observations in memory. Used by tests of components
// that take a Recorder.
type MemoryRecorder struct {
	mu       sync.Mutex
	Clones   map[string]bool
	Reused   int
	Steps    map[string]bool
	Outcomes map[string]Outcome
}

// NewMemoryRecorder returns an empty MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{Clones: map[string]bool{}, Steps: map[string]bool{}, Outcomes: map[string]Outcome{}}
}

func (m *MemoryRecorder) ObserveCloneDuration(repo string, _ time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Clones[repo] = success
}

func (m *MemoryRecorder) IncReusedCheckout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reused++
}

func (m *MemoryRecorder) ObserveStepDuration(step string, _ time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Steps[step] = success
}

func (m *MemoryRecorder) ObserveRunDuration(string, time.Duration) {}

func (m *MemoryRecorder) IncRunOutcome(mode string, outcome Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes[mode] = outcome
}
