package ledger

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFilename is the default ledger file name.
const DefaultFilename = "history.jsonl"

// FileLedger appends records to a JSONL file. It is safe for concurrent use
// from multiple goroutines.
type FileLedger struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
}

// Open opens the ledger at path, creating it and its parent directories if
// needed. Existing records are kept.
func Open(path string) (*FileLedger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	// Records carry agent commands and paths; keep the file private.
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}

	return &FileLedger{
		path:   path,
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

// Append writes r as a single JSON line and flushes it.
func (l *FileLedger) Append(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return ErrClosed
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := l.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush record: %w", err)
	}
	return nil
}

// Close flushes any remaining data and closes the file.
func (l *FileLedger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	if err := l.writer.Flush(); err != nil {
		_ = l.file.Close()
		l.file = nil
		return fmt.Errorf("failed to flush before close: %w", err)
	}
	if err := l.file.Close(); err != nil {
		l.file = nil
		return fmt.Errorf("failed to close ledger file: %w", err)
	}
	l.file = nil
	return nil
}

// Path returns the path to the ledger file.
func (l *FileLedger) Path() string {
	return l.path
}

// ReadNewestFirst reads the ledger at path and returns at most n records,
// newest first. n <= 0 returns every record. A missing file is an empty
// ledger.
func ReadNewestFirst(path string, n int) ([]Record, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, err
	}
	return limit(NewestFirst(records), n), nil
}

func readAll(path string) ([]Record, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var records []Record
	scanner := bufio.NewScanner(file)

	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("failed to parse record on line %d: %w", lineNum, err)
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}
	return records, nil
}
