// Package wizard provides interactive prompts for CLI commands.
package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// Directive is the kind of a line entered at the shell prompt.
type Directive int

const (
	// DirectiveNone is an empty line.
	DirectiveNone Directive = iota
	// DirectiveCommand is text to plan and govern.
	DirectiveCommand
	DirectiveExit
	DirectiveHistory
	DirectiveHelp
	DirectiveSimulateOn
	DirectiveSimulateOff
)

var shellDirectives = map[string]Directive{
	"exit":         DirectiveExit,
	"quit":         DirectiveExit,
	"show history": DirectiveHistory,
	"history":      DirectiveHistory,
	"help":         DirectiveHelp,
	"simulate on":  DirectiveSimulateOn,
	"simulate off": DirectiveSimulateOff,
}

// ParseLine classifies a shell line. Directives are matched case-insensitively
// after collapsing whitespace; anything else is returned trimmed as a command.
func ParseLine(line string) (Directive, string) {
	text := strings.Join(strings.Fields(line), " ")
	if text == "" {
		return DirectiveNone, ""
	}
	if d, ok := shellDirectives[strings.ToLower(text)]; ok {
		return d, text
	}
	return DirectiveCommand, text
}

// PromptCommand reads one shell line, offering known commands as suggestions.
func PromptCommand(suggestions []string, simulate bool) (string, error) {
	mode := "live"
	if simulate {
		mode = "simulation"
	}

	var line string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("ArmorIQ").
				Description(fmt.Sprintf("Mode: %s. Type a command, 'show history', 'help' or 'exit'.", mode)).
				Prompt("> ").
				Suggestions(append(suggestions, "show history", "exit")).
				Value(&line),
		),
	)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return line, nil
}

// ConfirmOverwrite asks before replacing an existing file.
func ConfirmOverwrite(path string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Existing File Found").
				Description(fmt.Sprintf("%s already exists.", path)),

			huh.NewConfirm().
				Title("Overwrite it?").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}

// ParseList splits a comma-separated list, dropping empty items.
func ParseList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
