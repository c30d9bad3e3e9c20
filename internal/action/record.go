package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Record is the wire form of a planned action as produced by the planner.
type Record struct {
	Agent    string   `json:"agent"`
	Action   string   `json:"action"`
	Path     string   `json:"path,omitempty"`
	Source   string   `json:"source,omitempty"`
	Dest     string   `json:"dest,omitempty"`
	ReadMode ReadMode `json:"read_mode,omitempty"`
}

// Request converts the record into a typed request. Unknown action names
// become Unrecognized rather than an error so the pipeline can still record
// a decision for them.
func (r Record) Request() Request {
	req := Request{Agent: r.Agent}
	kind, err := ParseKind(r.Action)
	if err != nil {
		req.Action = Unrecognized{Name: r.Action}
		return req
	}
	switch kind {
	case KindDelete:
		req.Action = Delete{Path: r.Path}
	case KindCreate:
		req.Action = Create{Path: r.Path}
	case KindMove:
		req.Action = Move{Source: r.Source, Dest: r.Dest}
	case KindRead:
		mode := r.ReadMode
		if mode == "" {
			mode = ModeStatus
		}
		req.Action = Read{Path: r.Path, Mode: mode}
	}
	return req
}

// FromRequest converts a typed request back to its wire form.
func FromRequest(req Request) Record {
	return Visit[Record](req.Action, recordVisitor{agent: req.Agent})
}

type recordVisitor struct {
	agent string
}

func (v recordVisitor) Delete(d Delete) Record {
	return Record{Agent: v.agent, Action: string(KindDelete), Path: d.Path}
}

func (v recordVisitor) Create(c Create) Record {
	return Record{Agent: v.agent, Action: string(KindCreate), Path: c.Path}
}

func (v recordVisitor) Move(m Move) Record {
	return Record{Agent: v.agent, Action: string(KindMove), Source: m.Source, Dest: m.Dest}
}

func (v recordVisitor) Read(r Read) Record {
	return Record{Agent: v.agent, Action: string(KindRead), Path: r.Path, ReadMode: r.Mode}
}

func (v recordVisitor) Unrecognized(u Unrecognized) Record {
	return Record{Agent: v.agent, Action: u.Name}
}

// recordsSchema constrains the planner output to well-formed records. Field
// presence per kind is left to the scope validator so that an incomplete
// action is rejected and recorded instead of dropped here.
const recordsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["agent", "action"],
    "additionalProperties": false,
    "properties": {
      "agent":     {"type": "string", "minLength": 1},
      "action":    {"type": "string", "minLength": 1},
      "path":      {"type": "string"},
      "source":    {"type": "string"},
      "dest":      {"type": "string"},
      "read_mode": {"type": "string", "enum": ["status", "preview"]}
    }
  }
}`

var (
	compiledSchema *gojsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func getSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(recordsSchema))
	})
	return compiledSchema, compileErr
}

// DecodeRecords parses a JSON array of action records. The document is
// checked against the record schema first; every violation is reported.
func DecodeRecords(data []byte) ([]Request, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling action record schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validating action records: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, errors.New("invalid action records: " + strings.Join(msgs, "; "))
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding action records: %w", err)
	}

	requests := make([]Request, 0, len(records))
	for _, r := range records {
		requests = append(requests, r.Request())
	}
	return requests, nil
}
