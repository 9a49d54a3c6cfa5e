package gpubuf

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Kind tags what a recorded buffer is used for.
type Kind int

// Buffer kinds.
const (
	KindUnknown Kind = iota
	KindGeometry
	KindShadowVolume
	KindShadowAttribute
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindGeometry:
		return "geometry"
	case KindShadowVolume:
		return "shadow-volume"
	case KindShadowAttribute:
		return "shadow-attribute"
	default:
		return "unknown"
	}
}

// Record describes one live buffer.
type Record struct {
	Name  uint32
	Owner uint64
	Bytes int64
	Kind  Kind
}

// Ledger tracks live GPU buffers for diagnostics and memory accounting.
// Correctness never depends on it.
//
// Ledger is safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	records map[uint32]Record
	total   int64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{records: make(map[uint32]Record)}
}

// Record adds or replaces the entry for a buffer name.
// A nil ledger ignores the call.
func (l *Ledger) Record(name uint32, owner uint64, bytes int64, kind Kind) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if old, ok := l.records[name]; ok {
		l.total -= old.Bytes
	}
	l.records[name] = Record{Name: name, Owner: owner, Bytes: bytes, Kind: kind}
	l.total += bytes
}

// Forget drops the entry for a buffer name.
func (l *Ledger) Forget(name uint32) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if old, ok := l.records[name]; ok {
		l.total -= old.Bytes
		delete(l.records, name)
	}
}

// Total returns the number of bytes recorded.
func (l *Ledger) Total() int64 {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Len returns the number of buffers recorded.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Records returns the live records sorted by buffer name.
func (l *Ledger) Records() []Record {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	out := make([]Record, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, r)
	}
	l.mu.Unlock()

	slices.SortFunc(out, func(a, b Record) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Dump logs every live buffer and the total at the given level.
func (l *Ledger) Dump(logger *slog.Logger, level slog.Level) {
	if l == nil || logger == nil {
		return
	}
	recs := l.Records()
	for _, r := range recs {
		logger.Log(context.Background(), level, "gpu buffer",
			"name", r.Name, "owner", r.Owner, "bytes", r.Bytes, "kind", r.Kind.String())
	}
	logger.Log(context.Background(), level, "gpu buffer total", "buffers", len(recs), "bytes", l.Total())
}
