package cli

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/hunny0025/armoriq-supervisor/internal/config"
	"github.com/hunny0025/armoriq-supervisor/internal/effector"
	"github.com/hunny0025/armoriq-supervisor/internal/ledger"
	"github.com/hunny0025/armoriq-supervisor/internal/logging"
	"github.com/hunny0025/armoriq-supervisor/internal/pipeline"
	"github.com/hunny0025/armoriq-supervisor/internal/planner"
	"github.com/hunny0025/armoriq-supervisor/internal/risk"
	"github.com/hunny0025/armoriq-supervisor/internal/scope"
)

// app holds the collaborators built from configuration for one command.
type app struct {
	cfg      *config.Config
	log      *logging.Logger
	registry *scope.Registry
	planner  *planner.Planner
	ledger   *ledger.FileLedger
	pipeline *pipeline.Pipeline
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newAppFromConfig(cfg)
}

func newAppFromConfig(cfg *config.Config) (*app, error) {
	level := cfg.Log.Level
	if viper.GetBool("verbose") {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		Level:   level,
		Format:  cfg.Log.Format,
		File:    cfg.Resolve(cfg.Log.File),
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: logger, planner: planner.New()}
	if err := a.wire(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire() error {
	cfg := a.cfg

	registry, err := scope.LoadRegistry(cfg.Resolve(cfg.Policies.Path))
	if err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}
	a.registry = registry

	eff, err := effector.New(cfg.Sandbox.BaseDir, cfg.Sandbox.Root,
		effector.WithStatusTimeout(cfg.Execution.StatusTimeout))
	if err != nil {
		return fmt.Errorf("failed to create effector: %w", err)
	}

	led, err := ledger.Open(cfg.Resolve(cfg.Ledger.Path))
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	a.ledger = led

	a.pipeline, err = pipeline.New(pipeline.Config{
		Registry:   registry,
		Classifier: risk.New(cfg.Sandbox.Root, cfg.Sandbox.ProtectedRoots...),
		Effector:   eff,
		Ledger:     led,
		Logger:     &a.log.Logger,
	})
	if err != nil {
		return err
	}

	a.log.Debug().
		Str("sandbox", eff.Root()).
		Int("agents", registry.Len()).
		Str("ledger", led.Path()).
		Msg("Supervisor ready")
	return nil
}

// Close releases the ledger and the log file.
func (a *app) Close() error {
	var firstErr error
	if a.ledger != nil {
		if err := a.ledger.Close(); err != nil {
			firstErr = err
		}
	}
	if err := a.log.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
