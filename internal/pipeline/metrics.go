package pipeline

import "github.com/hunny0025/armoriq-supervisor/internal/risk"

// Metrics counts the outcomes of one invocation. A Pipeline never carries
// metrics across runs; callers wanting session totals use Add.
type Metrics struct {
	TotalSteps int
	Allowed    int
	Blocked    int
	// MediumRiskWarnings counts every MEDIUM assessment, including blocked
	// and unknown-agent steps.
	MediumRiskWarnings int
}

// Add accumulates o into m.
func (m *Metrics) Add(o Metrics) {
	m.TotalSteps += o.TotalSteps
	m.Allowed += o.Allowed
	m.Blocked += o.Blocked
	m.MediumRiskWarnings += o.MediumRiskWarnings
}

func (m *Metrics) record(s Step) {
	m.TotalSteps++
	if s.Decision.Allowed() {
		m.Allowed++
	} else {
		m.Blocked++
	}
	if s.Risk.Level == risk.Medium {
		m.MediumRiskWarnings++
	}
}
