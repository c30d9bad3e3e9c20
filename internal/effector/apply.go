package effector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/hunny0025/armoriq-supervisor/internal/action"
	"github.com/hunny0025/armoriq-supervisor/internal/paths"
)

type applier struct {
	e   *Effector
	ctx context.Context
}

func (ap applier) Delete(d action.Delete) Outcome {
	defer ap.e.lock()()

	target, err := ap.e.resolve(d.Path)
	if err != nil {
		return failure(err)
	}

	info, err := os.Lstat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return missing(d.Path)
	}
	if err != nil {
		return failure(err)
	}

	if !info.IsDir() {
		if err := os.Remove(target); err != nil {
			return failure(err)
		}
		return applied("Deleted file %s", d.Path)
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return failure(err)
	}
	// Not atomic: files removed before a failure stay removed.
	regular := 0
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			regular++
		}
	}
	count := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(target, entry.Name())); err != nil {
			return faultf("Execution error: deleted %d of %d files in %s before failing: %v", count, regular, d.Path, err)
		}
		count++
	}
	return applied("Deleted %d files in %s", count, d.Path)
}

func (ap applier) Create(c action.Create) Outcome {
	defer ap.e.lock()()

	target, err := ap.e.resolve(c.Path)
	if err != nil {
		return failure(err)
	}
	if err := writeFileAtomic(target, []byte(ap.e.placeholder)); err != nil {
		return failure(err)
	}
	return applied("Created file %s", c.Path)
}

func (ap applier) Move(m action.Move) Outcome {
	if m.Source == "" || m.Dest == "" {
		return faultf("Missing source or dest")
	}
	defer ap.e.lock()()

	src, err := ap.e.resolve(m.Source)
	if err != nil {
		return failure(err)
	}
	dst, err := ap.e.resolve(m.Dest)
	if err != nil {
		return failure(err)
	}

	if _, err := os.Lstat(src); errors.Is(err, fs.ErrNotExist) {
		return missing(m.Source)
	} else if err != nil {
		return failure(err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return failure(err)
	}
	if err := os.Rename(src, dst); err != nil {
		return failure(err)
	}
	return applied("Moved %s to %s", m.Source, m.Dest)
}

func (ap applier) Read(r action.Read) Outcome {
	target, err := ap.e.resolve(r.Path)
	if err != nil {
		return failure(err)
	}
	if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
		return missing(r.Path)
	} else if err != nil {
		return failure(err)
	}

	if r.Mode == action.ModePreview {
		return ap.preview(r.Path, target)
	}
	return ap.status(r.Path, target)
}

func (ap applier) Unrecognized(u action.Unrecognized) Outcome {
	return faultf("Unknown action: %s", u.Name)
}

// Status is the aggregate reported by a status read.
type Status struct {
	Files     int
	Bytes     int64
	TempFiles int
}

func (ap applier) status(declared, target string) Outcome {
	ctx, cancel := context.WithTimeout(ap.ctx, ap.e.statusTimeout)
	defer cancel()

	st, err := walkStatus(ctx, ap.e.root, target)
	if err != nil {
		return failure(err)
	}
	return applied("Status of %s: %d files, %s total, %d temporary files",
		declared, st.Files, humanize.Bytes(uint64(st.Bytes)), st.TempFiles)
}

func walkStatus(ctx context.Context, root, target string) (Status, error) {
	var st Status
	err := filepath.WalkDir(target, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		st.Files++
		st.Bytes += info.Size()
		if rel, err := filepath.Rel(root, p); err == nil && paths.HasSegment(filepath.Dir(rel), "temp") {
			st.TempFiles++
		}
		return nil
	})
	return st, err
}

func (ap applier) preview(declared, target string) Outcome {
	info, err := os.Stat(target)
	if err != nil {
		return failure(err)
	}

	var names []string
	if info.IsDir() {
		entries, err := os.ReadDir(target)
		if err != nil {
			return failure(err)
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				names = append(names, entry.Name())
			}
		}
	} else {
		names = []string{filepath.Base(target)}
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %d files would be affected in %s", PreviewLabel, len(names), declared))
	for _, n := range names {
		sb.WriteString("\n  - " + n)
	}
	return Outcome{Success: true, Message: sb.String(), Kind: OutcomePreview}
}

// writeFileAtomic writes data through a temporary file in the target
// directory, so an interrupted write never leaves a partial file at path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".armoriq-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
