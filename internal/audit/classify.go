package audit

import (
	"regexp"

	"github.com/hunny0025/armoriq-supervisor/internal/decision"
	"github.com/hunny0025/armoriq-supervisor/internal/effector"
	"github.com/hunny0025/armoriq-supervisor/internal/risk"
)

// sensitivePathPatterns matches file paths that are considered sensitive.
var sensitivePathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\.env($|\.)`),                  // .env, .env.local, etc.
	regexp.MustCompile(`(?i)\.(pem|key|crt|cer|p12|pfx)$`), // Certificates and keys
	regexp.MustCompile(`(?i)credentials?`),                 // credential*, *credentials*
	regexp.MustCompile(`(?i)secrets?\.`),                   // secret.yaml, secrets.json, etc.
	regexp.MustCompile(`(?i)\.github/workflows/`),          // GitHub Actions workflows
	regexp.MustCompile(`(?i)id_rsa`),                       // SSH private keys
	regexp.MustCompile(`(?i)(^|/)\.ssh/`),                  // .ssh directory
	regexp.MustCompile(`(?i)(^|/)\.aws/`),                  // AWS config directory
}

// IsSensitivePath returns true if the given path matches a sensitive pattern.
func IsSensitivePath(path string) bool {
	for _, pattern := range sensitivePathPatterns {
		if pattern.MatchString(path) {
			return true
		}
	}
	return false
}

// Classify returns every category that applies to a processed step, in a
// fixed order. An allowed, cleanly applied LOW risk step has none.
func Classify(f Facts) []Category {
	var categories []Category

	switch {
	case !f.AgentKnown:
		categories = append(categories, AgentUnknown)
	case !f.ScopeAllowed:
		categories = append(categories, ScopeViolation)
	case f.Verdict == decision.Blocked && f.Risk >= risk.High:
		categories = append(categories, HighRiskOverride)
	}

	if f.Risk == risk.Medium {
		categories = append(categories, MediumRiskWarning)
	}

	switch f.Outcome {
	case effector.OutcomeSandboxViolation:
		categories = append(categories, SandboxViolation)
	case effector.OutcomeTargetMissing:
		categories = append(categories, TargetMissing)
	case effector.OutcomeFault:
		categories = append(categories, ExecutionFault)
	}

	for _, p := range f.Paths {
		if IsSensitivePath(p) {
			categories = append(categories, SensitivePath)
			break
		}
	}

	return categories
}
