package action

import (
	"reflect"
	"strings"
	"testing"
)

func TestPaths(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   []string
	}{
		{"delete", Delete{Path: "workspace/a"}, []string{"workspace/a"}},
		{"create", Create{Path: "workspace/b"}, []string{"workspace/b"}},
		{"move keeps order", Move{Source: "workspace/a", Dest: "workspace/b"}, []string{"workspace/a", "workspace/b"}},
		{"move keeps empty dest", Move{Source: "workspace/a"}, []string{"workspace/a", ""}},
		{"read", Read{Path: "workspace", Mode: ModeStatus}, []string{"workspace"}},
		{"unrecognized", Unrecognized{Name: "chmod"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paths(tt.action)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Paths(%#v) = %v, want %v", tt.action, got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{Delete{Path: "workspace/temp"}, "workspace/temp"},
		{Move{Source: "workspace/log.txt", Dest: "workspace/logs/log.txt"}, "workspace/log.txt -> workspace/logs/log.txt"},
		{Move{Source: "workspace/log.txt"}, "workspace/log.txt -> N/A"},
		{Read{Path: "workspace", Mode: ModePreview}, "workspace"},
		{Unrecognized{Name: "chmod"}, "N/A"},
	}

	for _, tt := range tests {
		if got := Describe(tt.action); got != tt.want {
			t.Errorf("Describe(%#v) = %q, want %q", tt.action, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKind("chmod"); err == nil {
		t.Error("ParseKind(chmod) expected error")
	}
}

func TestRecordRequest(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   Action
	}{
		{"delete", Record{Agent: "A", Action: "delete", Path: "workspace/x"}, Delete{Path: "workspace/x"}},
		{"move", Record{Agent: "A", Action: "move", Source: "s", Dest: "d"}, Move{Source: "s", Dest: "d"}},
		{"read defaults to status", Record{Agent: "A", Action: "read", Path: "workspace"}, Read{Path: "workspace", Mode: ModeStatus}},
		{"read preview", Record{Agent: "A", Action: "read", Path: "workspace", ReadMode: ModePreview}, Read{Path: "workspace", Mode: ModePreview}},
		{"unknown kind", Record{Agent: "A", Action: "chmod", Path: "workspace"}, Unrecognized{Name: "chmod"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.record.Request()
			if req.Agent != "A" {
				t.Errorf("Agent = %q, want A", req.Agent)
			}
			if !reflect.DeepEqual(req.Action, tt.want) {
				t.Errorf("Action = %#v, want %#v", req.Action, tt.want)
			}
		})
	}
}

func TestFromRequest(t *testing.T) {
	rec := FromRequest(Request{Agent: "OrganizerAgent", Action: Move{Source: "workspace/a", Dest: "workspace/b"}})
	want := Record{Agent: "OrganizerAgent", Action: "move", Source: "workspace/a", Dest: "workspace/b"}
	if rec != want {
		t.Errorf("FromRequest() = %#v, want %#v", rec, want)
	}
}

func TestDecodeRecords(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		data := []byte(`[
			{"agent": "CleanerAgent", "action": "delete", "path": "workspace/temp/file.tmp"},
			{"agent": "OrganizerAgent", "action": "move", "source": "workspace/log.txt", "dest": "workspace/logs/log.txt"},
			{"agent": "MonitorAgent", "action": "read", "path": "workspace", "read_mode": "preview"}
		]`)
		reqs, err := DecodeRecords(data)
		if err != nil {
			t.Fatalf("DecodeRecords() error = %v", err)
		}
		if len(reqs) != 3 {
			t.Fatalf("len = %d, want 3", len(reqs))
		}
		if _, ok := reqs[1].Action.(Move); !ok {
			t.Errorf("reqs[1] = %T, want Move", reqs[1].Action)
		}
	})

	t.Run("incomplete move passes schema", func(t *testing.T) {
		reqs, err := DecodeRecords([]byte(`[{"agent": "OrganizerAgent", "action": "move", "source": "workspace/a"}]`))
		if err != nil {
			t.Fatalf("DecodeRecords() error = %v", err)
		}
		if m := reqs[0].Action.(Move); m.Dest != "" {
			t.Errorf("Dest = %q, want empty", m.Dest)
		}
	})

	tests := []struct {
		name   string
		data   string
		errMsg string
	}{
		{"missing agent", `[{"action": "delete", "path": "workspace/x"}]`, "agent"},
		{"bad read mode", `[{"agent": "A", "action": "read", "path": "w", "read_mode": "tail"}]`, "read_mode"},
		{"unknown field", `[{"agent": "A", "action": "delete", "target": "w"}]`, "target"},
		{"not an array", `{"agent": "A"}`, "array"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecords([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.errMsg)
			}
		})
	}
}
