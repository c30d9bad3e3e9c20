package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hunny0025/armoriq-supervisor/internal/action"
	"github.com/hunny0025/armoriq-supervisor/internal/decision"
	"github.com/hunny0025/armoriq-supervisor/internal/ledger"
	"github.com/hunny0025/armoriq-supervisor/internal/pipeline"
	"github.com/hunny0025/armoriq-supervisor/internal/risk"
	"github.com/hunny0025/armoriq-supervisor/internal/scope"
)

var (
	colorSuccess = lipgloss.Color("#22c55e")
	colorWarning = lipgloss.Color("#eab308")
	colorError   = lipgloss.Color("#ef4444")
	colorDim     = lipgloss.Color("#888888")

	headingStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	keyStyle     = lipgloss.NewStyle().Bold(true).Width(24)
)

func riskBadge(l risk.Level) string {
	style := lipgloss.NewStyle().Bold(true)
	switch l {
	case risk.High:
		style = style.Foreground(colorError)
	case risk.Medium:
		style = style.Foreground(colorWarning)
	default:
		style = style.Foreground(colorSuccess)
	}
	return style.Render(l.String())
}

func verdictBadge(v decision.Verdict) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	if v != decision.Allowed {
		style = style.Foreground(colorError)
	}
	return style.Render(string(v))
}

func renderPlan(w io.Writer, reqs []action.Request) {
	fmt.Fprintln(w, headingStyle.Render("--- Planned Actions ---"))
	for i, req := range reqs {
		if m, ok := req.Action.(action.Move); ok {
			fmt.Fprintf(w, "%d. %s → move %s → %s\n", i+1, req.Agent, m.Source, m.Dest)
			continue
		}
		kind := "unknown"
		if req.Action != nil {
			kind = string(req.Action.Kind())
		}
		fmt.Fprintf(w, "%d. %s → %s %s\n", i+1, req.Agent, kind, describe(req.Action))
	}
	fmt.Fprintln(w)
}

func describe(a action.Action) string {
	if a == nil {
		return "N/A"
	}
	return action.Describe(a)
}

func renderStep(w io.Writer, s pipeline.Step) {
	fmt.Fprintln(w, headingStyle.Render("--- SECURITY DECISION ---"))
	fmt.Fprintf(w, "Agent: %s\n", s.Agent)
	fmt.Fprintf(w, "Action: %s\n", s.Kind())
	if m, ok := s.Action.(action.Move); ok {
		fmt.Fprintf(w, "Source: %s -> Destination: %s\n", m.Source, m.Dest)
	} else {
		fmt.Fprintf(w, "Path: %s\n", s.Path)
	}
	fmt.Fprintf(w, "Risk: %s\n", riskBadge(s.Risk.Level))
	fmt.Fprintf(w, "Decision: %s\n", verdictBadge(s.Decision.Verdict))
	fmt.Fprintln(w, "Reason:")
	for _, line := range s.Explanation() {
		fmt.Fprintf(w, "• %s\n", line)
	}
	if s.ExecOutput != "" {
		fmt.Fprintf(w, "Result: %s\n", s.ExecOutput)
	}
	fmt.Fprintln(w, dimStyle.Render(strings.Repeat("-", 47)))
}

func renderSummary(w io.Writer, title string, m pipeline.Metrics) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render(title+":"))
	rows := []struct {
		key   string
		value int
	}{
		{"Total Steps", m.TotalSteps},
		{"Allowed", m.Allowed},
		{"Blocked", m.Blocked},
		{"Warnings (Medium Risk)", m.MediumRiskWarnings},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s %d\n", keyStyle.Render(row.key+":"), row.value)
	}
	fmt.Fprintln(w)
}

func renderResult(w io.Writer, res *pipeline.Result) {
	if res.Simulated {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(colorWarning).Render("[SIMULATION MODE] no changes will be made"))
	}
	for _, s := range res.Steps {
		renderStep(w, s)
	}
	renderSummary(w, "Execution Summary", res.Metrics)
}

func renderHistory(w io.Writer, records []ledger.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No history available.")
		return
	}
	fmt.Fprintln(w, headingStyle.Render("--- Execution History ---"))
	for i, r := range records {
		fmt.Fprintf(w, "%d. [%s] | Agent: %s | Action: %s | Path: %s | Risk: %s | Decision: %s\n",
			i+1, r.Timestamp.Format(time.RFC3339), r.Agent, r.Action, r.Path,
			riskBadge(r.Risk), verdictBadge(r.Decision))
		if r.Simulated {
			fmt.Fprintln(w, dimStyle.Render("   (simulated)"))
		}
	}
	fmt.Fprintln(w)
}

func renderAgents(w io.Writer, reg *scope.Registry) {
	if reg.Len() == 0 {
		fmt.Fprintln(w, "No agents registered.")
		return
	}
	for _, name := range reg.Agents() {
		caps, _ := reg.Lookup(name)
		kinds := make([]string, 0, len(caps.AllowedActions))
		for _, k := range caps.Actions() {
			kinds = append(kinds, string(k))
		}
		fmt.Fprintln(w, headingStyle.Render(name))
		fmt.Fprintf(w, "  actions: %s\n", strings.Join(kinds, ", "))
		fmt.Fprintf(w, "  paths:   %s\n", strings.Join(caps.AllowedPaths, ", "))
	}
}
