package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hunny0025/armoriq-supervisor/internal/action"
	"github.com/hunny0025/armoriq-supervisor/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [command text...]",
	Short: "Govern and execute a command",
	Long: `Plan the actions for a command, pass each one through risk assessment,
capability scope and arbitration, then execute the allowed ones inside the
sandbox. Every decision is appended to the ledger.

Actions can also be supplied directly as a JSON array of action records.

Examples:
  armoriq run clean and organize workspace
  armoriq run --simulate delete system config
  armoriq run --actions actions.json`,
	Args: cobra.ArbitraryArgs,
	RunE: runCommand,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("simulate", false, "Decide and record without touching the filesystem")
	runCmd.Flags().String("actions", "", "JSON file of action records to govern instead of planning text")
	runCmd.Flags().Bool("plan", true, "Print the planned actions before deciding")

	_ = viper.BindPFlag("execution.simulate", runCmd.Flags().Lookup("simulate"))
}

func runCommand(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	actionsFile, _ := cmd.Flags().GetString("actions")
	if text == "" && actionsFile == "" {
		return errors.New("command text or --actions is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, stopping after the current action...")
			cancel()
		case <-ctx.Done():
		}
	}()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var reqs []action.Request
	if actionsFile != "" {
		data, err := os.ReadFile(actionsFile)
		if err != nil {
			return fmt.Errorf("failed to read actions file: %w", err)
		}
		if reqs, err = action.DecodeRecords(data); err != nil {
			return fmt.Errorf("failed to decode actions file: %w", err)
		}
		if text == "" {
			text = actionsFile
		}
	} else {
		reqs = a.planner.Parse(text)
	}

	showPlan, _ := cmd.Flags().GetBool("plan")
	_, err = a.execute(ctx, cmd.OutOrStdout(), text, reqs, a.cfg.Execution.Simulate, showPlan)
	return err
}

// execute runs one invocation and renders it to w.
func (a *app) execute(ctx context.Context, w io.Writer, text string, reqs []action.Request, simulate, showPlan bool) (*pipeline.Result, error) {
	if len(reqs) == 0 {
		fmt.Fprintf(w, "No actions parsed from %q. Known commands:\n", text)
		for _, c := range a.planner.Commands() {
			fmt.Fprintf(w, "  %s\n", c)
		}
	} else if showPlan {
		renderPlan(w, reqs)
	}

	res, err := a.pipeline.Run(ctx, pipeline.Invocation{
		Command:  text,
		Requests: reqs,
		Simulate: simulate,
	})
	if res != nil && len(reqs) > 0 {
		renderResult(w, res)
	}
	if err != nil {
		return res, fmt.Errorf("invocation interrupted: %w", err)
	}
	return res, nil
}
