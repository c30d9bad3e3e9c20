// Package ledger persists decision records. The ledger is append-only and is
// read back newest first.
package ledger

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/hunny0025/armoriq-supervisor/internal/decision"
	"github.com/hunny0025/armoriq-supervisor/internal/risk"
)

// ErrClosed is returned when appending to a closed ledger.
var ErrClosed = errors.New("ledger is closed")

// Record is one decision as stored in the ledger.
type Record struct {
	ID          string           `json:"id"`
	Timestamp   time.Time        `json:"timestamp"`
	Command     string           `json:"command"`
	Agent       string           `json:"agent"`
	Action      string           `json:"action"`
	Path        string           `json:"path"`
	Risk        risk.Level       `json:"risk"`
	Decision    decision.Verdict `json:"decision"`
	Reason      string           `json:"reason"`
	Explanation []string         `json:"explanation,omitempty"`
	Simulated   bool             `json:"simulated,omitempty"`
}

// NewestFirst orders records by descending timestamp. Records with equal
// timestamps keep the reverse of their append order.
func NewestFirst(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func limit(records []Record, n int) []Record {
	if n > 0 && len(records) > n {
		return records[:n]
	}
	return records
}

// MemoryLedger keeps records in memory. It is safe for concurrent use.
type MemoryLedger struct {
	mu      sync.Mutex
	records []Record
}

// NewMemory creates an empty MemoryLedger.
func NewMemory() *MemoryLedger {
	return &MemoryLedger{}
}

// Append stores r.
func (m *MemoryLedger) Append(r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

// Records returns the stored records newest first, at most n when n > 0.
func (m *MemoryLedger) Records(n int) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return limit(NewestFirst(m.records), n)
}
