package scope

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/hunny0025/armoriq-supervisor/internal/action"
	"github.com/hunny0025/armoriq-supervisor/internal/paths"
)

// CapabilitySet is the declared authority of one agent.
type CapabilitySet struct {
	Agent          string
	AllowedActions map[action.Kind]bool
	AllowedPaths   []string
}

// Allows reports whether the agent may issue actions of the given kind.
func (c *CapabilitySet) Allows(kind action.Kind) bool {
	return c.AllowedActions[kind]
}

// Actions returns the allowed kinds in canonical order.
func (c *CapabilitySet) Actions() []action.Kind {
	var kinds []action.Kind
	for _, k := range action.Kinds() {
		if c.AllowedActions[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Registry maps agent names to capability sets. It is never modified after
// construction and can be shared between goroutines.
type Registry struct {
	sets map[string]*CapabilitySet
}

// NewRegistry builds a registry from in-memory capability sets. A later set
// for the same agent replaces an earlier one.
func NewRegistry(sets ...CapabilitySet) *Registry {
	r := &Registry{sets: make(map[string]*CapabilitySet, len(sets))}
	for _, s := range sets {
		s := s
		allowed := make(map[action.Kind]bool, len(s.AllowedActions))
		for k, v := range s.AllowedActions {
			allowed[k] = v
		}
		s.AllowedActions = allowed
		s.AllowedPaths = append([]string(nil), s.AllowedPaths...)
		r.sets[s.Agent] = &s
	}
	return r
}

// Lookup returns the capability set for agent. The boolean is false when the
// agent is not registered.
func (r *Registry) Lookup(agent string) (*CapabilitySet, bool) {
	c, ok := r.sets[agent]
	return c, ok
}

// Agents returns every registered agent name, sorted.
func (r *Registry) Agents() []string {
	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	return len(r.sets)
}

// policyFile is the on-disk registry document. JSON documents parse too.
type policyFile struct {
	Agents map[string]policyEntry `yaml:"agents"`
}

type policyEntry struct {
	AllowedActions []string `yaml:"allowed_actions"`
	AllowedPaths   []string `yaml:"allowed_paths"`
}

const policySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["agents"],
  "properties": {
    "agents": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["allowed_actions", "allowed_paths"],
        "additionalProperties": false,
        "properties": {
          "allowed_actions": {
            "type": "array",
            "items": {"type": "string"}
          },
          "allowed_paths": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`

var (
	policySchemaOnce     sync.Once
	policySchemaCompiled *gojsonschema.Schema
	policySchemaErr      error
)

func getPolicySchema() (*gojsonschema.Schema, error) {
	policySchemaOnce.Do(func() {
		policySchemaCompiled, policySchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(policySchema))
	})
	return policySchemaCompiled, policySchemaErr
}

// LoadRegistry reads the registry document at path. Any problem is returned
// as an error and no registry is built.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry builds a registry from a YAML or JSON document.
func ParseRegistry(data []byte) (*Registry, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	if raw == nil {
		return nil, errors.New("policy file is empty")
	}

	schema, err := getPolicySchema()
	if err != nil {
		return nil, fmt.Errorf("compiling policy schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validating policy file: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid policy file: %s", strings.Join(msgs, "; "))
	}

	var doc policyFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}

	sets := make([]CapabilitySet, 0, len(doc.Agents))
	for name, entry := range doc.Agents {
		set := CapabilitySet{
			Agent:          name,
			AllowedActions: make(map[action.Kind]bool, len(entry.AllowedActions)),
		}
		for _, a := range entry.AllowedActions {
			kind, err := action.ParseKind(a)
			if err != nil {
				return nil, fmt.Errorf("agent %s: %w", name, err)
			}
			set.AllowedActions[kind] = true
		}
		for _, p := range entry.AllowedPaths {
			set.AllowedPaths = append(set.AllowedPaths, paths.Clean(p))
		}
		sets = append(sets, set)
	}
	return NewRegistry(sets...), nil
}

// DefaultRegistry returns the stock agents, each confined to root:
// CleanerAgent deletes, OrganizerAgent moves, MonitorAgent reads and
// BuilderAgent creates.
func DefaultRegistry(root string) *Registry {
	only := func(agent string, kind action.Kind) CapabilitySet {
		return CapabilitySet{
			Agent:          agent,
			AllowedActions: map[action.Kind]bool{kind: true},
			AllowedPaths:   []string{paths.Clean(root)},
		}
	}
	return NewRegistry(
		only("CleanerAgent", action.KindDelete),
		only("OrganizerAgent", action.KindMove),
		only("MonitorAgent", action.KindRead),
		only("BuilderAgent", action.KindCreate),
	)
}

// Encode renders r as YAML in the document form ParseRegistry accepts.
func (r *Registry) Encode() ([]byte, error) {
	doc := policyFile{Agents: make(map[string]policyEntry, len(r.sets))}
	for name, set := range r.sets {
		entry := policyEntry{
			AllowedActions: []string{},
			AllowedPaths:   append([]string(nil), set.AllowedPaths...),
		}
		for _, k := range set.Actions() {
			entry.AllowedActions = append(entry.AllowedActions, string(k))
		}
		doc.Agents[name] = entry
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode policy file: %w", err)
	}
	return data, nil
}
