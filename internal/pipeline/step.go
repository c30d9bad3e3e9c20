package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hunny0025/armoriq-supervisor/internal/action"
	"github.com/hunny0025/armoriq-supervisor/internal/audit"
	"github.com/hunny0025/armoriq-supervisor/internal/decision"
	"github.com/hunny0025/armoriq-supervisor/internal/effector"
	"github.com/hunny0025/armoriq-supervisor/internal/ledger"
	"github.com/hunny0025/armoriq-supervisor/internal/risk"
	"github.com/hunny0025/armoriq-supervisor/internal/scope"
)

// Stage names a state an action passes through.
type Stage string

const (
	StageRiskAssessed     Stage = "risk_assessed"
	StageScopeLookedUp    Stage = "scope_looked_up"
	StageScopeValidated   Stage = "scope_validated"
	StageAgentUnknown     Stage = "agent_unknown"
	StageDecided          Stage = "decided"
	StageExecuted         Stage = "executed"
	StageSkippedSimulated Stage = "skipped_simulated"
	StageSkippedBlocked   Stage = "skipped_blocked"
	StageRecorded         Stage = "recorded"
)

// Step is the processed form of one action.
type Step struct {
	Agent  string
	Action action.Action
	// Path is the rendered path description, "source -> dest" for moves.
	Path string

	Risk       risk.Assessment
	AgentKnown bool
	Scope      scope.Result
	Decision   decision.Decision

	Simulated  bool
	Executed   bool
	Outcome    effector.Outcome
	ExecOutput string

	Categories []audit.Category
	Stages     []Stage
	// LedgerErr is set when the decision record could not be appended.
	LedgerErr error
}

// Kind returns the action name as requested.
func (s Step) Kind() string {
	return string(s.Action.Kind())
}

// Explanation returns the decision's explanation lines.
func (s Step) Explanation() []string {
	return s.Decision.Explanation
}

func (s *Step) enter(stage Stage) {
	s.Stages = append(s.Stages, stage)
}

func (p *Pipeline) process(ctx context.Context, log zerolog.Logger, inv Invocation, req action.Request) Step {
	a := req.Action
	if a == nil {
		a = action.Unrecognized{}
	}
	step := Step{
		Agent:  req.Agent,
		Action: a,
		Path:   action.Describe(a),
	}

	// Risk is assessed before the agent is known so every record carries one.
	step.Risk = p.classifier.Assess(a)
	step.enter(StageRiskAssessed)

	caps, ok := p.registry.Lookup(req.Agent)
	step.enter(StageScopeLookedUp)
	step.AgentKnown = ok

	if !ok {
		step.enter(StageAgentUnknown)
		step.Decision = p.arbiter.DecideUnknownAgent(req.Agent, step.Risk)
	} else {
		step.Scope = p.validator.Validate(a, caps)
		step.enter(StageScopeValidated)
		step.Decision = p.arbiter.Decide(step.Scope, step.Risk)
	}
	step.enter(StageDecided)

	switch {
	case !step.Decision.Allowed():
		step.enter(StageSkippedBlocked)
	case inv.Simulate:
		step.Simulated = true
		step.ExecOutput = SimulatedOutput
		step.enter(StageSkippedSimulated)
	default:
		step.Outcome = p.effector.Apply(ctx, a)
		step.Executed = true
		step.ExecOutput = step.Outcome.Message
		step.enter(StageExecuted)
	}

	step.Categories = audit.Classify(audit.Facts{
		AgentKnown:   step.AgentKnown,
		ScopeAllowed: step.Scope.Allowed,
		Risk:         step.Risk.Level,
		Verdict:      step.Decision.Verdict,
		Outcome:      step.Outcome.Kind,
		Paths:        action.Paths(a),
	})

	step.LedgerErr = p.ledger.Append(ledger.Record{
		ID:          p.newID(),
		Timestamp:   p.now().UTC(),
		Command:     p.redactor.String(inv.Command),
		Agent:       step.Agent,
		Action:      step.Kind(),
		Path:        step.Path,
		Risk:        step.Risk.Level,
		Decision:    step.Decision.Verdict,
		Reason:      step.Decision.Reason,
		Explanation: step.Decision.Explanation,
		Simulated:   step.Simulated,
	})
	step.enter(StageRecorded)

	logStep(log, step)
	return step
}

func logStep(log zerolog.Logger, step Step) {
	categories := make([]string, len(step.Categories))
	for i, c := range step.Categories {
		categories[i] = string(c)
	}

	log.WithLevel(audit.Severity(step.Categories)).
		Str("agent", step.Agent).
		Str("action", step.Kind()).
		Str("path", step.Path).
		Str("risk", step.Risk.Level.String()).
		Str("decision", string(step.Decision.Verdict)).
		Str("reason", step.Decision.Reason).
		Strs("categories", categories).
		Msg("Decision")

	if step.Executed {
		ev := log.Info()
		msg := "Execution success"
		switch step.Outcome.Kind {
		case effector.OutcomeTargetMissing:
			msg = "Execution skipped"
		case effector.OutcomeSandboxViolation, effector.OutcomeFault:
			ev = log.Error()
			msg = "Execution failed"
		}
		ev.Str("agent", step.Agent).
			Str("outcome", string(step.Outcome.Kind)).
			Str("output", step.Outcome.Message).
			Msg(msg)
	}

	if step.LedgerErr != nil {
		log.Error().
			Err(step.LedgerErr).
			Str("agent", step.Agent).
			Msg("Failed to append decision record")
	}
}
