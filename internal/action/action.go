// Package action defines the closed set of filesystem effects the governance
// pipeline reasons about. Every component that needs to branch on the kind of
// an action does so through a Visitor, so adding a variant is a compile error
// in each of them until it is handled.
package action

import "fmt"

// Kind identifies an action variant on the wire and in capability sets.
type Kind string

const (
	// KindDelete removes a file, or the immediate files of a directory.
	KindDelete Kind = "delete"
	// KindCreate writes a placeholder file.
	KindCreate Kind = "create"
	// KindMove renames a file or directory.
	KindMove Kind = "move"
	// KindRead inspects the sandbox without mutating it.
	KindRead Kind = "read"
)

// Kinds returns every known action kind.
func Kinds() []Kind {
	return []Kind{KindDelete, KindCreate, KindMove, KindRead}
}

// ParseKind converts a wire string into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown action kind: %q", s)
}

// ReadMode selects what a Read action reports.
type ReadMode string

const (
	// ModeStatus aggregates counts and sizes over the target tree.
	ModeStatus ReadMode = "status"
	// ModePreview lists the files a clean-up of the target would touch.
	ModePreview ReadMode = "preview"
)

// Action is an immutable effect descriptor produced by the planner.
type Action interface {
	// Kind returns the wire name of the action. Unrecognized actions return
	// the name the planner used.
	Kind() Kind
	sealed()
}

// Delete removes Path.
type Delete struct {
	Path string
}

// Create writes a placeholder file at Path.
type Create struct {
	Path string
}

// Move renames Source to Dest.
type Move struct {
	Source string
	Dest   string
}

// Read inspects Path according to Mode.
type Read struct {
	Path string
	Mode ReadMode
}

// Unrecognized carries an action name the model does not know. It is kept so
// the request can still be classified, decided and recorded.
type Unrecognized struct {
	Name string
}

func (Delete) Kind() Kind         { return KindDelete }
func (Create) Kind() Kind         { return KindCreate }
func (Move) Kind() Kind           { return KindMove }
func (Read) Kind() Kind           { return KindRead }
func (u Unrecognized) Kind() Kind { return Kind(u.Name) }

func (Delete) sealed()       {}
func (Create) sealed()       {}
func (Move) sealed()         {}
func (Read) sealed()         {}
func (Unrecognized) sealed() {}

// Visitor handles every action variant.
type Visitor[T any] interface {
	Delete(Delete) T
	Create(Create) T
	Move(Move) T
	Read(Read) T
	Unrecognized(Unrecognized) T
}

// Visit dispatches a to the matching method of v.
func Visit[T any](a Action, v Visitor[T]) T {
	switch a := a.(type) {
	case Delete:
		return v.Delete(a)
	case Create:
		return v.Create(a)
	case Move:
		return v.Move(a)
	case Read:
		return v.Read(a)
	case Unrecognized:
		return v.Unrecognized(a)
	default:
		// Only reachable with a nil Action; the interface is sealed.
		return v.Unrecognized(Unrecognized{Name: fmt.Sprintf("%T", a)})
	}
}

// Paths returns every path the action references, in declaration order.
// Empty fields are kept so callers can reject incomplete actions.
func Paths(a Action) []string {
	return Visit[[]string](a, pathsVisitor{})
}

type pathsVisitor struct{}

func (pathsVisitor) Delete(d Delete) []string { return []string{d.Path} }
func (pathsVisitor) Create(c Create) []string { return []string{c.Path} }
func (pathsVisitor) Move(m Move) []string     { return []string{m.Source, m.Dest} }
func (pathsVisitor) Read(r Read) []string     { return []string{r.Path} }

func (pathsVisitor) Unrecognized(Unrecognized) []string { return nil }

// Describe renders the path description stored in decision records.
func Describe(a Action) string {
	return Visit[string](a, describeVisitor{})
}

type describeVisitor struct{}

func (describeVisitor) Delete(d Delete) string { return orNA(d.Path) }
func (describeVisitor) Create(c Create) string { return orNA(c.Path) }
func (describeVisitor) Read(r Read) string     { return orNA(r.Path) }

func (describeVisitor) Move(m Move) string {
	return fmt.Sprintf("%s -> %s", orNA(m.Source), orNA(m.Dest))
}

func (describeVisitor) Unrecognized(Unrecognized) string { return "N/A" }

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Request pairs an action with the agent it is issued for.
type Request struct {
	Agent  string
	Action Action
}
