// Package effector applies allowed actions to the filesystem, confined to a
// sandbox root.
//
// Paths are checked a second time here, independently of the scope and risk
// checks: once lexically after joining with the base directory, and once
// after resolving symlinks on the deepest existing ancestor.
package effector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/hunny0025/armoriq-supervisor/internal/action"
	"github.com/hunny0025/armoriq-supervisor/internal/paths"
)

// DefaultStatusTimeout bounds status aggregation over large trees.
const DefaultStatusTimeout = 10 * time.Second

// DefaultPlaceholder is written by Create.
const DefaultPlaceholder = "Created by ArmorIQ\n"

// PreviewLabel prefixes every preview output.
const PreviewLabel = "[PREVIEW ONLY - no changes made]"

// ErrMissingPath is returned when an action lacks a required path.
var ErrMissingPath = errors.New("no path provided")

// ViolationError reports a path that escapes the sandbox.
type ViolationError struct {
	Path     string // As declared by the action
	Root     string // Sandbox root as configured
	Resolved bool   // Escape only visible after resolving symlinks
}

func (e *ViolationError) Error() string {
	if e.Resolved {
		return fmt.Sprintf("Path '%s' resolves outside sandbox '%s'", e.Path, e.Root)
	}
	return fmt.Sprintf("Path '%s' is outside sandbox '%s'", e.Path, e.Root)
}

// Option configures an Effector.
type Option func(*Effector)

// WithStatusTimeout sets the bound on status aggregation.
func WithStatusTimeout(d time.Duration) Option {
	return func(e *Effector) {
		if d > 0 {
			e.statusTimeout = d
		}
	}
}

// WithPlaceholder sets the content written by Create.
func WithPlaceholder(content string) Option {
	return func(e *Effector) {
		e.placeholder = content
	}
}

// Effector performs sandbox-confined filesystem effects. Mutations on the
// same sandbox root are serialised, across Effector values too; reads are
// not locked.
type Effector struct {
	baseDir       string
	root          string
	rootName      string
	statusTimeout time.Duration
	placeholder   string
	mu            *sync.Mutex
}

var rootLocks sync.Map // absolute root -> *sync.Mutex

func lockFor(root string) *sync.Mutex {
	m, _ := rootLocks.LoadOrStore(root, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// New creates an Effector. Declared paths are resolved against baseDir and
// must stay within sandboxRoot, itself relative to baseDir unless absolute.
func New(baseDir, sandboxRoot string, opts ...Option) (*Effector, error) {
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base dir: %w", err)
	}
	if sandboxRoot == "" {
		return nil, errors.New("sandbox root is required")
	}
	root := sandboxRoot
	if !filepath.IsAbs(root) {
		root = filepath.Join(base, root)
	}

	e := &Effector{
		baseDir:       base,
		root:          filepath.Clean(root),
		rootName:      paths.Clean(sandboxRoot),
		statusTimeout: DefaultStatusTimeout,
		placeholder:   DefaultPlaceholder,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.mu = lockFor(e.root)
	return e, nil
}

// Root returns the absolute sandbox root.
func (e *Effector) Root() string {
	return e.root
}

// Apply performs a. It never panics and never returns an error: every
// failure is reported in the Outcome.
func (e *Effector) Apply(ctx context.Context, a action.Action) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = faultf("Execution error: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return failure(err)
	}
	return action.Visit[Outcome](a, applier{e: e, ctx: ctx})
}

// resolve maps a declared path to an absolute filesystem path inside the
// sandbox.
func (e *Effector) resolve(declared string) (string, error) {
	if declared == "" {
		return "", ErrMissingPath
	}

	abs := filepath.FromSlash(declared)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(e.baseDir, abs)
	}
	abs = filepath.Clean(abs)
	if !paths.Within(e.root, abs) {
		return "", &ViolationError{Path: declared, Root: e.rootName}
	}

	realRoot, err := realPath(e.root)
	if err != nil {
		return "", fmt.Errorf("resolve sandbox root: %w", err)
	}
	realAbs, err := realPath(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", declared, err)
	}
	if !paths.Within(realRoot, realAbs) {
		return "", &ViolationError{Path: declared, Root: e.rootName, Resolved: true}
	}
	return abs, nil
}

// realPath resolves symlinks on the deepest existing ancestor of p and
// appends the components that do not exist yet.
func realPath(p string) (string, error) {
	var rest []string
	cur := p
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p, nil
		}
		rest = append([]string{filepath.Base(cur)}, rest...)
		cur = parent
	}
}

func (e *Effector) lock() func() {
	e.mu.Lock()
	return e.mu.Unlock
}
