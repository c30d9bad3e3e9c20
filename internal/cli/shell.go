package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hunny0025/armoriq-supervisor/internal/cli/wizard"
	"github.com/hunny0025/armoriq-supervisor/internal/ledger"
	"github.com/hunny0025/armoriq-supervisor/internal/pipeline"
)

const shellHistoryLimit = 20

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive supervisor",
	Long: `Start an interactive session. Each line is planned, governed and executed
like "armoriq run"; totals are kept for the whole session.

Local commands:
  show history   print the most recent ledger entries
  simulate on    stop touching the filesystem
  simulate off   resume execution
  help           list known commands
  exit           end the session`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("shell requires an interactive terminal; use \"armoriq run\" instead")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headingStyle.Render("ArmorIQ Supervisor"))

	session, err := a.shell(context.Background(), out, wizard.PromptCommand)
	renderSummary(out, "Session Summary", session)
	return err
}

type promptFunc func(suggestions []string, simulate bool) (string, error)

// shell reads lines with prompt until exit and returns the session totals.
func (a *app) shell(ctx context.Context, out io.Writer, prompt promptFunc) (pipeline.Metrics, error) {
	var session pipeline.Metrics
	simulate := a.cfg.Execution.Simulate

	for {
		line, err := prompt(a.planner.Commands(), simulate)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return session, nil
			}
			return session, err
		}

		directive, text := wizard.ParseLine(line)
		switch directive {
		case wizard.DirectiveNone:
		case wizard.DirectiveExit:
			return session, nil
		case wizard.DirectiveHistory:
			records, err := ledger.ReadNewestFirst(a.ledger.Path(), shellHistoryLimit)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			renderHistory(out, records)
		case wizard.DirectiveHelp:
			for _, c := range a.planner.Commands() {
				fmt.Fprintf(out, "  %s\n", c)
			}
		case wizard.DirectiveSimulateOn, wizard.DirectiveSimulateOff:
			simulate = directive == wizard.DirectiveSimulateOn
			if simulate {
				fmt.Fprintln(out, "Simulation enabled")
			} else {
				fmt.Fprintln(out, "Simulation disabled")
			}
		default:
			res, err := a.execute(ctx, out, text, a.planner.Parse(text), simulate, true)
			if res != nil {
				session.Add(res.Metrics)
			}
			if err != nil {
				return session, err
			}
		}
	}
}
