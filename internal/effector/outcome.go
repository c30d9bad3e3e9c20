package effector

import (
	"context"
	"errors"
	"fmt"
)

// OutcomeKind classifies how an applied action ended.
type OutcomeKind string

const (
	OutcomeApplied          OutcomeKind = "applied"
	OutcomePreview          OutcomeKind = "preview"
	OutcomeTargetMissing    OutcomeKind = "target_missing"
	OutcomeSandboxViolation OutcomeKind = "sandbox_violation"
	OutcomeFault            OutcomeKind = "fault"
)

// Outcome is the result of applying one action.
type Outcome struct {
	Success bool
	Message string
	Kind    OutcomeKind
}

func applied(format string, args ...interface{}) Outcome {
	return Outcome{Success: true, Message: fmt.Sprintf(format, args...), Kind: OutcomeApplied}
}

func missing(path string) Outcome {
	return Outcome{Message: fmt.Sprintf("File not found: %s (safe handling)", path), Kind: OutcomeTargetMissing}
}

func faultf(format string, args ...interface{}) Outcome {
	return Outcome{Message: fmt.Sprintf(format, args...), Kind: OutcomeFault}
}

// failure converts an error raised while applying an action.
func failure(err error) Outcome {
	var ve *ViolationError
	switch {
	case errors.As(err, &ve):
		return Outcome{Message: "Sandbox violation: " + ve.Error(), Kind: OutcomeSandboxViolation}
	case errors.Is(err, ErrMissingPath):
		return faultf("No path provided")
	case errors.Is(err, context.DeadlineExceeded):
		return faultf("Execution error: timed out: %v", err)
	default:
		return faultf("Execution error: %v", err)
	}
}
