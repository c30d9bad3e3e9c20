// Package decision combines scope validation and risk assessment into the
// single verdict that gates execution.
package decision

import (
	"fmt"

	"github.com/hunny0025/armoriq-supervisor/internal/risk"
	"github.com/hunny0025/armoriq-supervisor/internal/scope"
)

// Verdict is the outcome of arbitration.
type Verdict string

const (
	Allowed Verdict = "ALLOWED"
	Blocked Verdict = "BLOCKED"
)

// MediumRiskWarning is appended to the explanation of allowed MEDIUM actions.
const MediumRiskWarning = "WARNING: Medium-risk operation permitted"

// AgentUnknownReason is the reason recorded when the registry has no entry
// for the requesting agent.
const AgentUnknownReason = "Agent unknown"

// Decision is the arbiter's output for one action.
type Decision struct {
	Verdict     Verdict
	Reason      string
	Explanation []string
}

// Allowed reports whether the action may execute.
func (d Decision) Allowed() bool {
	return d.Verdict == Allowed
}

// Arbiter produces verdicts. It is stateless.
type Arbiter struct{}

// NewArbiter creates an Arbiter.
func NewArbiter() *Arbiter {
	return &Arbiter{}
}

// Decide applies, in order: a failed scope check blocks; a HIGH risk blocks
// even when scope passed; anything else is allowed, with a warning line for
// MEDIUM risk.
func (a *Arbiter) Decide(s scope.Result, r risk.Assessment) Decision {
	switch {
	case !s.Allowed:
		return Decision{
			Verdict:     Blocked,
			Reason:      fmt.Sprintf("Policy violation: %s", s.Reason),
			Explanation: []string{fmt.Sprintf("Policy check failed: %s", s.Reason)},
		}
	case r.Level >= risk.High:
		return Decision{
			Verdict:     Blocked,
			Reason:      fmt.Sprintf("High risk: %s", r.Reason),
			Explanation: []string{fmt.Sprintf("Risk assessment: %s (%s)", r.Reason, r.Level)},
		}
	}

	d := Decision{
		Verdict: Allowed,
		Reason:  fmt.Sprintf("Policy allowed, risk %s", r.Level),
		Explanation: []string{
			scope.PassedReason,
			fmt.Sprintf("Risk level: %s - %s", r.Level, r.Reason),
		},
	}
	if r.Level == risk.Medium {
		d.Explanation = append(d.Explanation, MediumRiskWarning)
	}
	return d
}

// DecideUnknownAgent blocks a request from an agent with no capability set.
// The assessment is kept in the explanation so every record carries a risk.
func (a *Arbiter) DecideUnknownAgent(agent string, r risk.Assessment) Decision {
	return Decision{
		Verdict: Blocked,
		Reason:  AgentUnknownReason,
		Explanation: []string{
			fmt.Sprintf("Agent '%s' not found in policies", agent),
			fmt.Sprintf("Risk level: %s - %s", r.Level, r.Reason),
		},
	}
}
