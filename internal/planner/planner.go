// Package planner turns command text into an ordered list of action
// requests using a fixed table of phrase rules.
package planner

import (
	"strings"

	"github.com/hunny0025/armoriq-supervisor/internal/action"
)

// Rule maps any of its phrases to a fixed action list.
type Rule struct {
	Name    string
	Phrases []string
	Actions []action.Request
}

// defaultRules is in priority order. A compound phrase must come before any
// rule whose phrase it contains ("preview clean workspace" before "clean
// workspace").
var defaultRules = []Rule{
	{
		Name:    "clean-and-organize",
		Phrases: []string{"clean and organize workspace"},
		Actions: []action.Request{
			{Agent: "CleanerAgent", Action: action.Delete{Path: "workspace/temp/file.tmp"}},
			{Agent: "OrganizerAgent", Action: action.Move{Source: "workspace/log.txt", Dest: "workspace/logs/log.txt"}},
		},
	},
	{
		Name:    "preview-clean",
		Phrases: []string{"preview clean workspace"},
		Actions: []action.Request{
			{Agent: "MonitorAgent", Action: action.Read{Path: "workspace/temp", Mode: action.ModePreview}},
		},
	},
	{
		Name:    "status",
		Phrases: []string{"check workspace status"},
		Actions: []action.Request{
			{Agent: "MonitorAgent", Action: action.Read{Path: "workspace", Mode: action.ModeStatus}},
		},
	},
	{
		Name:    "clean",
		Phrases: []string{"clean workspace"},
		Actions: []action.Request{
			{Agent: "CleanerAgent", Action: action.Delete{Path: "workspace/temp"}},
		},
	},
	{
		Name:    "organize",
		Phrases: []string{"organize files", "organize workspace"},
		Actions: []action.Request{
			{Agent: "OrganizerAgent", Action: action.Move{Source: "workspace/log.txt", Dest: "workspace/logs/log.txt"}},
		},
	},
	{
		Name:    "archive-logs",
		Phrases: []string{"archive logs"},
		Actions: []action.Request{
			{Agent: "OrganizerAgent", Action: action.Move{Source: "workspace/logs/log.txt", Dest: "workspace/archive/log.txt"}},
		},
	},
	{
		Name:    "create-test-file",
		Phrases: []string{"create test file"},
		Actions: []action.Request{
			{Agent: "BuilderAgent", Action: action.Create{Path: "workspace/test_file.txt"}},
		},
	},
	{
		Name:    "delete-system",
		Phrases: []string{"delete system config", "delete system"},
		Actions: []action.Request{
			{Agent: "CleanerAgent", Action: action.Delete{Path: "system/config"}},
		},
	},
	{
		Name:    "access-system",
		Phrases: []string{"access system folder"},
		Actions: []action.Request{
			{Agent: "MonitorAgent", Action: action.Read{Path: "system", Mode: action.ModeStatus}},
		},
	},
}

// Planner matches command text against its rules.
type Planner struct {
	rules []Rule
}

// New creates a Planner with the built-in rules.
func New() *Planner {
	return &Planner{rules: defaultRules}
}

// NewWithRules creates a Planner with custom rules, tried in order.
func NewWithRules(rules []Rule) *Planner {
	return &Planner{rules: rules}
}

// Rules returns the rule table in priority order.
func (p *Planner) Rules() []Rule {
	return p.rules
}

// Parse returns the actions of the first rule with a phrase contained in the
// lower-cased, trimmed text. No match returns nil.
func (p *Planner) Parse(text string) []action.Request {
	rule, ok := p.Match(text)
	if !ok {
		return nil
	}
	return append([]action.Request(nil), rule.Actions...)
}

// Match returns the first matching rule.
func (p *Planner) Match(text string) (Rule, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Rule{}, false
	}
	for _, rule := range p.rules {
		for _, phrase := range rule.Phrases {
			if strings.Contains(normalized, phrase) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

// Commands returns the first phrase of every rule, for help output.
func (p *Planner) Commands() []string {
	cmds := make([]string, 0, len(p.rules))
	for _, r := range p.rules {
		if len(r.Phrases) > 0 {
			cmds = append(cmds, r.Phrases[0])
		}
	}
	return cmds
}
