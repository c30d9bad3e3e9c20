package effector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunny0025/armoriq-supervisor/internal/action"
)

// newSandbox lays out a base directory with a workspace sandbox:
//
//	workspace/log.txt
//	workspace/temp/file.tmp
//	workspace/temp/other.tmp
//	workspace/logs/
//	system/config
func newSandbox(t *testing.T) (string, *Effector) {
	t.Helper()
	base := t.TempDir()

	for _, dir := range []string{"workspace/temp", "workspace/logs", "system"} {
		require.NoError(t, os.MkdirAll(filepath.Join(base, dir), 0755))
	}
	files := map[string]string{
		"workspace/log.txt":        "log line\n",
		"workspace/temp/file.tmp":  "tmp",
		"workspace/temp/other.tmp": "other",
		"system/config":            "secret=1\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(base, name), []byte(content), 0644))
	}

	e, err := New(base, "workspace")
	require.NoError(t, err)
	return base, e
}

func TestApply_DeleteFile(t *testing.T) {
	base, e := newSandbox(t)

	out := e.Apply(context.Background(), action.Delete{Path: "workspace/temp/file.tmp"})

	assert.True(t, out.Success)
	assert.Equal(t, OutcomeApplied, out.Kind)
	assert.Equal(t, "Deleted file workspace/temp/file.tmp", out.Message)
	assert.NoFileExists(t, filepath.Join(base, "workspace/temp/file.tmp"))
}

func TestApply_DeleteIsIdempotent(t *testing.T) {
	_, e := newSandbox(t)
	a := action.Delete{Path: "workspace/temp/file.tmp"}

	first := e.Apply(context.Background(), a)
	require.True(t, first.Success)

	second := e.Apply(context.Background(), a)
	assert.False(t, second.Success)
	assert.Equal(t, OutcomeTargetMissing, second.Kind)
	assert.Equal(t, "File not found: workspace/temp/file.tmp (safe handling)", second.Message)
}

func TestApply_DeleteDirectoryIsShallow(t *testing.T) {
	base, e := newSandbox(t)
	nested := filepath.Join(base, "workspace/temp/nested")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "keep.txt"), []byte("x"), 0644))

	out := e.Apply(context.Background(), action.Delete{Path: "workspace/temp"})

	assert.True(t, out.Success)
	assert.Equal(t, "Deleted 2 files in workspace/temp", out.Message)
	assert.DirExists(t, filepath.Join(base, "workspace/temp"))
	assert.FileExists(t, filepath.Join(nested, "keep.txt"))
}

func TestApply_Create(t *testing.T) {
	base, e := newSandbox(t)

	out := e.Apply(context.Background(), action.Create{Path: "workspace/new/dir/test_file.txt"})

	require.True(t, out.Success, out.Message)
	assert.Equal(t, "Created file workspace/new/dir/test_file.txt", out.Message)
	data, err := os.ReadFile(filepath.Join(base, "workspace/new/dir/test_file.txt"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPlaceholder, string(data))

	entries, err := os.ReadDir(filepath.Join(base, "workspace/new/dir"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file should be left behind")
}

func TestApply_Move(t *testing.T) {
	base, e := newSandbox(t)

	out := e.Apply(context.Background(), action.Move{Source: "workspace/log.txt", Dest: "workspace/archive/2024/log.txt"})

	require.True(t, out.Success, out.Message)
	assert.Equal(t, "Moved workspace/log.txt to workspace/archive/2024/log.txt", out.Message)
	assert.NoFileExists(t, filepath.Join(base, "workspace/log.txt"))
	assert.FileExists(t, filepath.Join(base, "workspace/archive/2024/log.txt"))
}

func TestApply_MoveMissingSource(t *testing.T) {
	_, e := newSandbox(t)

	out := e.Apply(context.Background(), action.Move{Source: "workspace/nope.txt", Dest: "workspace/logs/nope.txt"})

	assert.False(t, out.Success)
	assert.Equal(t, OutcomeTargetMissing, out.Kind)
}

func TestApply_SandboxViolations(t *testing.T) {
	base, e := newSandbox(t)
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "victim.txt"), []byte("x"), 0644))
	require.NoError(t, os.Symlink(outside, filepath.Join(base, "workspace/link")))

	tests := []struct {
		name     string
		action   action.Action
		resolved bool
	}{
		{"parent segments", action.Delete{Path: "workspace/../system/config"}, false},
		{"sibling prefix", action.Create{Path: "workspace2/file"}, false},
		{"absolute path", action.Delete{Path: filepath.Join(outside, "victim.txt")}, false},
		{"symlinked directory", action.Delete{Path: "workspace/link/victim.txt"}, true},
		{"create through symlink", action.Create{Path: "workspace/link/dropped.txt"}, true},
		{"move out through symlink", action.Move{Source: "workspace/log.txt", Dest: "workspace/link/log.txt"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Apply(context.Background(), tt.action)

			assert.False(t, out.Success)
			assert.Equal(t, OutcomeSandboxViolation, out.Kind)
			assert.True(t, strings.HasPrefix(out.Message, "Sandbox violation:"), out.Message)
			if tt.resolved {
				assert.Contains(t, out.Message, "resolves outside")
			}
		})
	}

	assert.FileExists(t, filepath.Join(base, "system/config"))
	assert.FileExists(t, filepath.Join(outside, "victim.txt"))
	assert.NoFileExists(t, filepath.Join(outside, "dropped.txt"))
	assert.FileExists(t, filepath.Join(base, "workspace/log.txt"))
}

func TestApply_Status(t *testing.T) {
	base, e := newSandbox(t)
	before := snapshot(t, base)

	out := e.Apply(context.Background(), action.Read{Path: "workspace", Mode: action.ModeStatus})

	require.True(t, out.Success, out.Message)
	assert.Equal(t, OutcomeApplied, out.Kind)
	assert.Equal(t, "Status of workspace: 3 files, 17 B total, 2 temporary files", out.Message)
	assert.Equal(t, before, snapshot(t, base))
}

func TestApply_StatusCountsOnlyFilesUnderTemp(t *testing.T) {
	base, e := newSandbox(t)
	require.NoError(t, os.WriteFile(filepath.Join(base, "workspace/logs/temp"), []byte("abc"), 0644))

	out := e.Apply(context.Background(), action.Read{Path: "workspace", Mode: action.ModeStatus})

	require.True(t, out.Success, out.Message)
	assert.Equal(t, "Status of workspace: 4 files, 20 B total, 2 temporary files", out.Message)
}

func TestApply_StatusTimeout(t *testing.T) {
	base, _ := newSandbox(t)
	e, err := New(base, "workspace", WithStatusTimeout(time.Nanosecond))
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	out := e.Apply(context.Background(), action.Read{Path: "workspace", Mode: action.ModeStatus})

	assert.False(t, out.Success)
	assert.Equal(t, OutcomeFault, out.Kind)
}

func TestApply_Preview(t *testing.T) {
	base, e := newSandbox(t)
	before := snapshot(t, base)

	out := e.Apply(context.Background(), action.Read{Path: "workspace/temp", Mode: action.ModePreview})

	require.True(t, out.Success, out.Message)
	assert.Equal(t, OutcomePreview, out.Kind)
	assert.Equal(t, PreviewLabel+" 2 files would be affected in workspace/temp\n  - file.tmp\n  - other.tmp", out.Message)
	assert.Equal(t, before, snapshot(t, base))
}

func TestApply_ReadMissing(t *testing.T) {
	_, e := newSandbox(t)

	out := e.Apply(context.Background(), action.Read{Path: "workspace/absent", Mode: action.ModeStatus})

	assert.Equal(t, OutcomeTargetMissing, out.Kind)
}

func TestApply_FaultsAreContained(t *testing.T) {
	_, e := newSandbox(t)

	tests := []struct {
		name   string
		action action.Action
	}{
		{"unrecognized", action.Unrecognized{Name: "chmod"}},
		{"missing path", action.Delete{}},
		{"incomplete move", action.Move{Source: "workspace/log.txt"}},
		{"nil action", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Apply(context.Background(), tt.action)
			assert.False(t, out.Success)
			assert.Equal(t, OutcomeFault, out.Kind)
		})
	}
}

func TestApply_CancelledContext(t *testing.T) {
	base, e := newSandbox(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := e.Apply(ctx, action.Delete{Path: "workspace/log.txt"})

	assert.False(t, out.Success)
	assert.FileExists(t, filepath.Join(base, "workspace/log.txt"))
}

func TestApply_ConcurrentMutations(t *testing.T) {
	base, e := newSandbox(t)
	other, err := New(base, "workspace")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		name := filepath.ToSlash(filepath.Join("workspace", "c", strings.Repeat("x", i+1)))
		go func() {
			defer wg.Done()
			e.Apply(context.Background(), action.Create{Path: name})
		}()
		go func() {
			defer wg.Done()
			other.Apply(context.Background(), action.Delete{Path: name})
		}()
	}
	wg.Wait()

	entries, err := os.ReadDir(filepath.Join(base, "workspace", "c"))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), ".armoriq-"), "temp file left behind: %s", entry.Name())
	}
}

func TestNew(t *testing.T) {
	_, err := New(t.TempDir(), "")
	assert.Error(t, err)

	base := t.TempDir()
	e, err := New(base, "workspace")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "workspace"), e.Root())
}

func snapshot(t *testing.T, base string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(base, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			rel, _ := filepath.Rel(base, p)
			files[rel] = string(data)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}
