package scope

import (
	"fmt"
	"strings"

	"github.com/hunny0025/armoriq-supervisor/internal/action"
	"github.com/hunny0025/armoriq-supervisor/internal/paths"
)

// Result contains the result of scope validation.
type Result struct {
	Allowed    bool
	Reason     string
	OutOfScope []string // Declared paths not under any allowed root
}

// PassedReason is the reason attached to an accepted action.
const PassedReason = "Policy check passed"

// Validator checks actions against an agent's declared capabilities. It holds
// no state and is safe for concurrent use.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks a against caps. The caller handles a missing capability set
// before calling; a nil caps rejects everything.
func (v *Validator) Validate(a action.Action, caps *CapabilitySet) Result {
	if caps == nil {
		return Result{Reason: "No capability set for agent"}
	}
	if _, ok := a.(action.Unrecognized); ok {
		return Result{Reason: fmt.Sprintf("Unknown action type: %s", a.Kind())}
	}
	if !caps.Allows(a.Kind()) {
		return Result{Reason: fmt.Sprintf("Action '%s' not allowed for this agent", a.Kind())}
	}

	declared := action.Paths(a)
	if reason := missingField(a, declared); reason != "" {
		return Result{Reason: reason}
	}

	result := Result{Allowed: true, Reason: PassedReason}
	for _, p := range declared {
		if paths.WithinAny(caps.AllowedPaths, p) {
			continue
		}
		result.OutOfScope = append(result.OutOfScope, p)
		if result.Allowed {
			result.Allowed = false
			result.Reason = fmt.Sprintf("Path '%s' is outside allowed scope: %v", p, caps.AllowedPaths)
		}
	}
	return result
}

func missingField(a action.Action, declared []string) string {
	for _, p := range declared {
		if strings.TrimSpace(p) != "" {
			continue
		}
		if _, ok := a.(action.Move); ok {
			return "Missing source or dest for move"
		}
		return fmt.Sprintf("Missing path for %s", a.Kind())
	}
	return ""
}

// FormatViolation creates a human-readable message for a rejected action.
func FormatViolation(caps *CapabilitySet, result Result) string {
	if result.Allowed {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SCOPE VIOLATION: %s\n", result.Reason))
	if caps != nil {
		sb.WriteString(fmt.Sprintf("Agent: %s\n", caps.Agent))
		sb.WriteString(fmt.Sprintf("Allowed actions: %v\n", caps.Actions()))
		sb.WriteString(fmt.Sprintf("Allowed paths: %s\n", strings.Join(caps.AllowedPaths, ", ")))
	}
	if len(result.OutOfScope) > 0 {
		sb.WriteString("\nOut-of-scope paths:\n")
		for _, p := range result.OutOfScope {
			sb.WriteString(fmt.Sprintf("  - %s\n", p))
		}
	}
	return sb.String()
}
