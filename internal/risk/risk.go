// Package risk classifies actions by the damage they could do, independent of
// which agent issues them.
package risk

import (
	"fmt"
	"strings"

	"github.com/hunny0025/armoriq-supervisor/internal/action"
	"github.com/hunny0025/armoriq-supervisor/internal/paths"
)

// Level is an ordered risk grade.
type Level int

const (
	Low Level = iota
	Medium
	High
)

var levelNames = map[Level]string{
	Low:    "LOW",
	Medium: "MEDIUM",
	High:   "HIGH",
}

// String returns the upper-case name of the level.
func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel converts a level name back into a Level. Matching ignores case.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if strings.EqualFold(s, name) {
			return l, nil
		}
	}
	return Low, fmt.Errorf("unknown risk level: %q", s)
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Assessment is a risk level with the rationale that produced it.
type Assessment struct {
	Level  Level
	Reason string
}

// DefaultProtectedRoot is protected when no roots are configured.
const DefaultProtectedRoot = "system"

// Classifier grades actions relative to a sandbox root and a set of
// protected roots. It is immutable and safe for concurrent use.
type Classifier struct {
	SandboxRoot    string
	ProtectedRoots []string
}

// New creates a Classifier. With no protected roots the default is used.
func New(sandboxRoot string, protected ...string) *Classifier {
	if len(protected) == 0 {
		protected = []string{DefaultProtectedRoot}
	}
	roots := make([]string, 0, len(protected))
	for _, p := range protected {
		roots = append(roots, paths.Clean(p))
	}
	return &Classifier{
		SandboxRoot:    paths.Clean(sandboxRoot),
		ProtectedRoots: roots,
	}
}

// Assess grades a. Each declared path is checked for protected-area access,
// sandbox escape and deletion of the sandbox root, in that order; the first
// HIGH finding is returned. Empty paths are skipped.
func (c *Classifier) Assess(a action.Action) Assessment {
	_, isDelete := a.(action.Delete)
	for _, p := range action.Paths(a) {
		if p == "" {
			continue
		}
		if paths.WithinAny(c.ProtectedRoots, p) {
			return Assessment{High, fmt.Sprintf("Path involves protected area: %s", p)}
		}
		if !paths.Within(c.SandboxRoot, p) {
			return Assessment{High, fmt.Sprintf("Path outside sandbox: %s", p)}
		}
		if isDelete && paths.Same(c.SandboxRoot, p) {
			return Assessment{High, "Attempt to delete sandbox root"}
		}
	}
	return action.Visit[Assessment](a, baseline{})
}

// baseline grades actions that passed every HIGH check.
type baseline struct{}

func (baseline) Delete(action.Delete) Assessment {
	return Assessment{Medium, "Deleting files inside sandbox"}
}

func (baseline) Create(action.Create) Assessment {
	return Assessment{Medium, "Creating file inside sandbox"}
}

func (baseline) Move(action.Move) Assessment {
	return Assessment{Medium, "Moving files inside sandbox"}
}

func (baseline) Read(action.Read) Assessment {
	return Assessment{Low, "Read-only inspection"}
}

func (baseline) Unrecognized(action.Unrecognized) Assessment {
	return Assessment{Low, "No significant risk"}
}
