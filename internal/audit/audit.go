// Package audit maps processed pipeline steps onto security-relevant
// categories and picks the log severity each step is reported at.
package audit

import (
	"github.com/rs/zerolog"

	"github.com/hunny0025/armoriq-supervisor/internal/decision"
	"github.com/hunny0025/armoriq-supervisor/internal/effector"
	"github.com/hunny0025/armoriq-supervisor/internal/risk"
)

// Category represents a security-relevant outcome category.
type Category string

const (
	// NoActionsParsed means the planner produced nothing for a command.
	NoActionsParsed Category = "NO_ACTIONS_PARSED"
	// AgentUnknown is a request from an agent missing from the registry.
	AgentUnknown Category = "AGENT_UNKNOWN"
	// ScopeViolation is a request outside the agent's declared capabilities.
	ScopeViolation Category = "SCOPE_VIOLATION"
	// HighRiskOverride is a HIGH risk request blocked regardless of scope.
	HighRiskOverride Category = "HIGH_RISK_OVERRIDE"
	// SandboxViolation is a resolved path escaping the sandbox at execution.
	SandboxViolation Category = "SANDBOX_VIOLATION"
	// TargetMissing is a delete or move whose target was already gone.
	TargetMissing Category = "TARGET_MISSING"
	// ExecutionFault is an unexpected failure while applying an action.
	ExecutionFault Category = "EXECUTION_FAULT"
	// MediumRiskWarning is a MEDIUM risk assessment, allowed or not.
	MediumRiskWarning Category = "MEDIUM_RISK_WARNING"
	// SensitivePath is an action touching a credential-like or CI path.
	SensitivePath Category = "SENSITIVE_PATH"
)

// Facts describes one processed step.
type Facts struct {
	// AgentKnown is false when the registry had no capability set.
	AgentKnown bool
	// ScopeAllowed is the scope validator's result; ignored for unknown agents.
	ScopeAllowed bool
	Risk         risk.Level
	Verdict      decision.Verdict
	// Outcome is empty when the effector was not called.
	Outcome effector.OutcomeKind
	// Paths are the declared paths of the action.
	Paths []string
}

// Severity returns the log level for a set of categories: the highest level
// any of them maps to, or info for none.
func Severity(categories []Category) zerolog.Level {
	level := zerolog.InfoLevel
	for _, c := range categories {
		if l := severityOf(c); l > level {
			level = l
		}
	}
	return level
}

func severityOf(c Category) zerolog.Level {
	switch c {
	case SandboxViolation, ExecutionFault:
		return zerolog.ErrorLevel
	case AgentUnknown, ScopeViolation, HighRiskOverride, SensitivePath:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
