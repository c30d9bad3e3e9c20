package planner

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hunny0025/armoriq-supervisor/internal/action"
)

func TestPlanner_Parse(t *testing.T) {
	p := New()

	tests := []struct {
		name string
		text string
		want []action.Request
	}{
		{
			name: "compound phrase wins over its parts",
			text: "Please clean and organize workspace now",
			want: []action.Request{
				{Agent: "CleanerAgent", Action: action.Delete{Path: "workspace/temp/file.tmp"}},
				{Agent: "OrganizerAgent", Action: action.Move{Source: "workspace/log.txt", Dest: "workspace/logs/log.txt"}},
			},
		},
		{
			name: "preview before clean",
			text: "preview clean workspace",
			want: []action.Request{
				{Agent: "MonitorAgent", Action: action.Read{Path: "workspace/temp", Mode: action.ModePreview}},
			},
		},
		{
			name: "clean",
			text: "  CLEAN WORKSPACE  ",
			want: []action.Request{
				{Agent: "CleanerAgent", Action: action.Delete{Path: "workspace/temp"}},
			},
		},
		{
			name: "organize alias",
			text: "organize workspace",
			want: []action.Request{
				{Agent: "OrganizerAgent", Action: action.Move{Source: "workspace/log.txt", Dest: "workspace/logs/log.txt"}},
			},
		},
		{
			name: "status",
			text: "check workspace status",
			want: []action.Request{
				{Agent: "MonitorAgent", Action: action.Read{Path: "workspace", Mode: action.ModeStatus}},
			},
		},
		{
			name: "delete system config",
			text: "delete system config",
			want: []action.Request{
				{Agent: "CleanerAgent", Action: action.Delete{Path: "system/config"}},
			},
		},
		{
			name: "create test file",
			text: "create test file",
			want: []action.Request{
				{Agent: "BuilderAgent", Action: action.Create{Path: "workspace/test_file.txt"}},
			},
		},
		{
			name: "no match",
			text: "make me a sandwich",
			want: nil,
		},
		{
			name: "empty",
			text: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestPlanner_ParseReturnsCopy(t *testing.T) {
	p := New()
	got := p.Parse("clean workspace")
	got[0].Agent = "GhostAgent"

	if again := p.Parse("clean workspace"); again[0].Agent != "CleanerAgent" {
		t.Errorf("rule table was modified through Parse result: %q", again[0].Agent)
	}
}

// Every phrase that contains another rule's phrase must be tried first.
func TestPlanner_RulePriority(t *testing.T) {
	rules := New().Rules()
	for i, rule := range rules {
		for _, lp := range rule.Phrases {
			for _, after := range rules[i+1:] {
				for _, ap := range after.Phrases {
					if ap != lp && strings.Contains(ap, lp) {
						t.Errorf("rule %q phrase %q shadows later rule %q phrase %q", rule.Name, lp, after.Name, ap)
					}
				}
			}
		}
	}
}

func TestPlanner_Commands(t *testing.T) {
	cmds := New().Commands()
	if len(cmds) != len(defaultRules) {
		t.Fatalf("Commands() returned %d entries, want %d", len(cmds), len(defaultRules))
	}
	if cmds[0] != "clean and organize workspace" {
		t.Errorf("Commands()[0] = %q", cmds[0])
	}
}
