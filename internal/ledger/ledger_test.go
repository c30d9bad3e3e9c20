package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hunny0025/armoriq-supervisor/internal/decision"
	"github.com/hunny0025/armoriq-supervisor/internal/risk"
)

func sampleRecord(i int, ts time.Time) Record {
	return Record{
		ID:        fmt.Sprintf("rec-%d", i),
		Timestamp: ts,
		Command:   "clean workspace",
		Agent:     "CleanerAgent",
		Action:    "delete",
		Path:      fmt.Sprintf("workspace/temp/%d.tmp", i),
		Risk:      risk.Medium,
		Decision:  decision.Allowed,
		Reason:    "Policy allowed, risk MEDIUM",
	}
}

func TestFileLedger(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", DefaultFilename)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("append and read newest first", func(t *testing.T) {
		l, err := Open(path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if l.Path() != path {
			t.Errorf("Path() = %q, want %q", l.Path(), path)
		}

		for i := 0; i < 5; i++ {
			if err := l.Append(sampleRecord(i, base.Add(time.Duration(i)*time.Second))); err != nil {
				t.Fatalf("Append(%d) error = %v", i, err)
			}
		}
		if err := l.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		got, err := ReadNewestFirst(path, 0)
		if err != nil {
			t.Fatalf("ReadNewestFirst() error = %v", err)
		}
		if len(got) != 5 {
			t.Fatalf("got %d records, want 5", len(got))
		}
		for i, r := range got {
			want := sampleRecord(4-i, base.Add(time.Duration(4-i)*time.Second))
			if r.ID != want.ID || !r.Timestamp.Equal(want.Timestamp) || r.Path != want.Path {
				t.Errorf("record %d = %+v, want %+v", i, r, want)
			}
			if r.Risk != risk.Medium || r.Decision != decision.Allowed {
				t.Errorf("record %d risk/decision = %v/%v", i, r.Risk, r.Decision)
			}
		}
	})

	t.Run("reopen appends", func(t *testing.T) {
		l, err := Open(path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if err := l.Append(sampleRecord(5, base.Add(time.Hour))); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		_ = l.Close()

		got, err := ReadNewestFirst(path, 2)
		if err != nil {
			t.Fatalf("ReadNewestFirst() error = %v", err)
		}
		if len(got) != 2 || got[0].ID != "rec-5" || got[1].ID != "rec-4" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("file permissions", func(t *testing.T) {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("permissions = %o, want 0600", perm)
		}
	})

	t.Run("append after close", func(t *testing.T) {
		l, err := Open(path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		_ = l.Close()
		if err := l.Append(sampleRecord(9, base)); !errors.Is(err, ErrClosed) {
			t.Errorf("Append() error = %v, want ErrClosed", err)
		}
		if err := l.Close(); err != nil {
			t.Errorf("second Close() error = %v", err)
		}
	})
}

func TestReadNewestFirst_Missing(t *testing.T) {
	got, err := ReadNewestFirst(filepath.Join(t.TempDir(), "absent.jsonl"), 10)
	if err != nil {
		t.Fatalf("ReadNewestFirst() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records, want 0", len(got))
	}
}

func TestReadNewestFirst_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	content := `{"id":"a","timestamp":"2024-05-01T12:00:00Z","risk":"LOW","decision":"ALLOWED"}` + "\n" +
		`{"id":"b","risk":"SEVERE"}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := ReadNewestFirst(path, 0)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("ReadNewestFirst() error = %v, want line 2 error", err)
	}
}

func TestNewestFirst_StableForEqualTimestamps(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	records := []Record{sampleRecord(0, ts), sampleRecord(1, ts), sampleRecord(2, ts)}

	got := NewestFirst(records)
	if got[0].ID != "rec-2" || got[2].ID != "rec-0" {
		t.Errorf("NewestFirst() order = %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
	if records[0].ID != "rec-0" {
		t.Error("NewestFirst() must not reorder its input")
	}
}

func TestMemoryLedger(t *testing.T) {
	m := NewMemory()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_ = m.Append(sampleRecord(i, base.Add(time.Duration(i)*time.Minute)))
	}

	got := m.Records(2)
	if len(got) != 2 || got[0].ID != "rec-2" || got[1].ID != "rec-1" {
		t.Errorf("Records(2) = %v", got)
	}
	if all := m.Records(0); len(all) != 3 {
		t.Errorf("Records(0) returned %d records, want 3", len(all))
	}
}
