package traffic

import "sync"

// Log is the ordered list of records observed during an audit cycle. It is an
// explicit object owned by its auditor (never a package global), so several
// independent engines can coexist in one process. Appends happen at
// response-completion time, so ordering reflects the order exchanges
// completed, not the order they arrived.
type Log struct {
	mu      sync.Mutex
	records []Record
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Append adds one record. Called exactly once per completed exchange.
func (l *Log) Append(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, r)
}

// Records returns a copy of the current records.
func (l *Log) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Drain returns all records and clears the log in one step, so successive
// snapshots never share records.
func (l *Log) Drain() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.records
	l.records = nil
	return out
}

// Len returns the number of records currently held.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
