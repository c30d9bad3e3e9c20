package scope

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hunny0025/armoriq-supervisor/internal/action"
)

const samplePolicies = `
agents:
  CleanerAgent:
    allowed_actions: [delete]
    allowed_paths: [workspace]
  OrganizerAgent:
    allowed_actions: [move]
    allowed_paths: [workspace/]
  MonitorAgent:
    allowed_actions: [read]
    allowed_paths: [workspace]
`

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policies.yaml")
	if err := os.WriteFile(path, []byte(samplePolicies), 0644); err != nil {
		t.Fatalf("failed to write policies: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	want := []string{"CleanerAgent", "MonitorAgent", "OrganizerAgent"}
	if got := reg.Agents(); !reflect.DeepEqual(got, want) {
		t.Errorf("Agents() = %v, want %v", got, want)
	}

	caps, ok := reg.Lookup("OrganizerAgent")
	if !ok {
		t.Fatal("OrganizerAgent not found")
	}
	if !caps.Allows(action.KindMove) || caps.Allows(action.KindDelete) {
		t.Errorf("unexpected actions for OrganizerAgent: %v", caps.Actions())
	}
	if caps.AllowedPaths[0] != "workspace" {
		t.Errorf("AllowedPaths[0] = %q, want cleaned workspace", caps.AllowedPaths[0])
	}

	if _, ok := reg.Lookup("GhostAgent"); ok {
		t.Error("Lookup(GhostAgent) should miss")
	}
}

func TestParseRegistry_JSON(t *testing.T) {
	doc := `{"agents": {"CleanerAgent": {"allowed_actions": ["delete"], "allowed_paths": ["workspace"]}}}`
	reg, err := ParseRegistry([]byte(doc))
	if err != nil {
		t.Fatalf("ParseRegistry() error = %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestParseRegistry_Errors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		errMsg string
	}{
		{
			name:   "empty document",
			doc:    "",
			errMsg: "empty",
		},
		{
			name:   "missing agents key",
			doc:    "policies: {}\n",
			errMsg: "agents",
		},
		{
			name:   "unknown action kind",
			doc:    "agents:\n  A:\n    allowed_actions: [chmod]\n    allowed_paths: [workspace]\n",
			errMsg: "unknown action kind",
		},
		{
			name:   "empty path list",
			doc:    "agents:\n  A:\n    allowed_actions: [delete]\n    allowed_paths: []\n",
			errMsg: "allowed_paths",
		},
		{
			name:   "unexpected field",
			doc:    "agents:\n  A:\n    allowed_actions: [delete]\n    allowed_paths: [workspace]\n    admin: true\n",
			errMsg: "admin",
		},
		{
			name:   "malformed yaml",
			doc:    "agents: [\n",
			errMsg: "parse policy file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := ParseRegistry([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if reg != nil {
				t.Error("expected no registry on error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read policy file") {
		t.Errorf("LoadRegistry() error = %v, want read error", err)
	}
}

func TestNewRegistry_CopiesInput(t *testing.T) {
	allowed := map[action.Kind]bool{action.KindDelete: true}
	reg := NewRegistry(CapabilitySet{Agent: "A", AllowedActions: allowed, AllowedPaths: []string{"workspace"}})

	allowed[action.KindCreate] = true

	caps, _ := reg.Lookup("A")
	if caps.Allows(action.KindCreate) {
		t.Error("registry must not observe later changes to its input")
	}
}

func TestDefaultRegistry_EncodeParses(t *testing.T) {
	data, err := DefaultRegistry("workspace/").Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	reg, err := ParseRegistry(data)
	if err != nil {
		t.Fatalf("ParseRegistry(Encode()) error = %v\n%s", err, data)
	}

	want := map[string]action.Kind{
		"BuilderAgent":   action.KindCreate,
		"CleanerAgent":   action.KindDelete,
		"MonitorAgent":   action.KindRead,
		"OrganizerAgent": action.KindMove,
	}
	if got := reg.Agents(); len(got) != len(want) {
		t.Fatalf("Agents() = %v", got)
	}
	for agent, kind := range want {
		caps, ok := reg.Lookup(agent)
		if !ok {
			t.Fatalf("agent %s missing", agent)
		}
		if got := caps.Actions(); !reflect.DeepEqual(got, []action.Kind{kind}) {
			t.Errorf("%s actions = %v, want [%s]", agent, got, kind)
		}
		if !reflect.DeepEqual(caps.AllowedPaths, []string{"workspace"}) {
			t.Errorf("%s paths = %v, want [workspace]", agent, caps.AllowedPaths)
		}
	}
}
