package events

import "sync"

const defaultJournalCap = 512

// SnapshotJournal keeps a bounded, monotonically indexed history of wallet
// snapshots in memory so SSE clients can resume from their last seen index.
// Nothing here survives a restart: the wallet is an in-memory simulation.
type SnapshotJournal struct {
	mu      sync.RWMutex
	records []SnapshotRecord
	next    uint64
	cap     int
}

// NewSnapshotJournal creates a journal retaining at most capacity records.
func NewSnapshotJournal(capacity int) *SnapshotJournal {
	if capacity < 1 {
		capacity = defaultJournalCap
	}
	return &SnapshotJournal{
		records: make([]SnapshotRecord, 0, capacity),
		next:    1,
		cap:     capacity,
	}
}

// Append stores the snapshot under the next index, evicting the oldest record
// once the journal is full.
func (j *SnapshotJournal) Append(s WalletSnapshot) uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	idx := j.next
	j.next++
	j.records = append(j.records, SnapshotRecord{Index: idx, Snapshot: s})
	if len(j.records) > j.cap {
		j.records = j.records[len(j.records)-j.cap:]
	}
	return idx
}

// SnapshotsAfter returns all records written after the provided index.
func (j *SnapshotJournal) SnapshotsAfter(index uint64) []SnapshotRecord {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]SnapshotRecord, 0)
	for _, r := range j.records {
		if r.Index > index {
			out = append(out, r)
		}
	}
	return out
}

// CurrentIndex returns the latest index stored, 0 when empty.
func (j *SnapshotJournal) CurrentIndex() uint64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.records) == 0 {
		return 0
	}
	return j.records[len(j.records)-1].Index
}
