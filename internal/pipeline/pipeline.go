// Package pipeline runs each requested action through risk classification,
// capability lookup, scope validation, arbitration, execution and recording.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hunny0025/armoriq-supervisor/internal/action"
	"github.com/hunny0025/armoriq-supervisor/internal/audit"
	"github.com/hunny0025/armoriq-supervisor/internal/decision"
	"github.com/hunny0025/armoriq-supervisor/internal/effector"
	"github.com/hunny0025/armoriq-supervisor/internal/ledger"
	"github.com/hunny0025/armoriq-supervisor/internal/redact"
	"github.com/hunny0025/armoriq-supervisor/internal/risk"
	"github.com/hunny0025/armoriq-supervisor/internal/scope"
)

// SimulatedOutput replaces the effector output of allowed actions in a
// simulated invocation.
const SimulatedOutput = "[SIMULATION] Execution skipped - no changes made"

//go:generate mockgen -destination=effector_mock.go -package=pipeline github.com/hunny0025/armoriq-supervisor/internal/pipeline Effector

// Registry resolves agents to capability sets.
type Registry interface {
	Lookup(agent string) (*scope.CapabilitySet, bool)
}

// Effector applies allowed actions.
type Effector interface {
	Apply(ctx context.Context, a action.Action) effector.Outcome
}

// Ledger receives one record per processed action.
type Ledger interface {
	Append(r ledger.Record) error
}

// Config holds the collaborators of a Pipeline. Registry, Classifier,
// Effector and Ledger are required.
type Config struct {
	Registry   Registry
	Classifier *risk.Classifier
	Validator  *scope.Validator
	Arbiter    *decision.Arbiter
	Effector   Effector
	Ledger     Ledger
	Logger     *zerolog.Logger
	Now        func() time.Time
	NewID      func() string

	// Redactor masks credentials in command text before it is logged or
	// recorded. Defaults to the built-in patterns.
	Redactor *redact.Redactor
}

// Pipeline governs invocations. It keeps no state between runs.
type Pipeline struct {
	registry   Registry
	classifier *risk.Classifier
	validator  *scope.Validator
	arbiter    *decision.Arbiter
	effector   Effector
	ledger     Ledger
	logger     zerolog.Logger
	redactor   *redact.Redactor
	now        func() time.Time
	newID      func() string
}

// New creates a Pipeline from cfg.
func New(cfg Config) (*Pipeline, error) {
	switch {
	case cfg.Registry == nil:
		return nil, errors.New("pipeline: registry is required")
	case cfg.Classifier == nil:
		return nil, errors.New("pipeline: risk classifier is required")
	case cfg.Effector == nil:
		return nil, errors.New("pipeline: effector is required")
	case cfg.Ledger == nil:
		return nil, errors.New("pipeline: ledger is required")
	}

	p := &Pipeline{
		registry:   cfg.Registry,
		classifier: cfg.Classifier,
		validator:  cfg.Validator,
		arbiter:    cfg.Arbiter,
		effector:   cfg.Effector,
		ledger:     cfg.Ledger,
		logger:     zerolog.Nop(),
		redactor:   cfg.Redactor,
		now:        cfg.Now,
		newID:      cfg.NewID,
	}
	if p.validator == nil {
		p.validator = scope.NewValidator()
	}
	if p.arbiter == nil {
		p.arbiter = decision.NewArbiter()
	}
	if cfg.Logger != nil {
		p.logger = *cfg.Logger
	}
	if p.redactor == nil {
		p.redactor = redact.New()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p, nil
}

// Invocation is one command's worth of planned actions.
type Invocation struct {
	Command  string
	Requests []action.Request
	Simulate bool
}

// Result is the outcome of one invocation.
type Result struct {
	InvocationID string
	Command      string
	Simulated    bool
	Steps        []Step
	Metrics      Metrics
}

// Run processes the requests of inv in order. The context is checked before
// each action; once it is done the remaining actions are skipped and the
// partial result is returned with the context's error. Failures of single
// actions never end the run.
func (p *Pipeline) Run(ctx context.Context, inv Invocation) (*Result, error) {
	res := &Result{
		InvocationID: p.newID(),
		Command:      inv.Command,
		Simulated:    inv.Simulate,
	}
	log := p.logger.With().
		Str("invocation_id", res.InvocationID).
		Str("command", p.redactor.String(inv.Command)).
		Bool("simulated", inv.Simulate).
		Logger()

	if len(inv.Requests) == 0 {
		log.Info().
			Str("category", string(audit.NoActionsParsed)).
			Msg("No actions parsed from command")
		return res, nil
	}

	for i, req := range inv.Requests {
		if err := ctx.Err(); err != nil {
			log.Warn().
				Err(err).
				Int("remaining", len(inv.Requests)-i).
				Msg("Invocation cancelled")
			return res, err
		}

		step := p.process(ctx, log, inv, req)
		res.Metrics.record(step)
		res.Steps = append(res.Steps, step)
	}

	log.Info().
		Int("total_steps", res.Metrics.TotalSteps).
		Int("allowed", res.Metrics.Allowed).
		Int("blocked", res.Metrics.Blocked).
		Int("warnings", res.Metrics.MediumRiskWarnings).
		Msg("Invocation complete")
	return res, nil
}
