package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"sync"
	"time"
)

// Journal is a bounded, replayable history of snapshots. Once the limit is
// reached the oldest snapshots are dropped.
type Journal struct {
	GameID string

	mu      sync.RWMutex
	entries []*Snapshot
	cursor  int
	limit   int
}

// NewJournal creates an empty journal that keeps at most limit snapshots.
func NewJournal(gameID string, limit int) *Journal {
	return &Journal{GameID: gameID, limit: limit}
}

// Record appends a snapshot.
func (j *Journal) Record(s *Snapshot) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, s)
	if j.limit > 0 && len(j.entries) > j.limit {
		drop := len(j.entries) - j.limit
		j.entries = append([]*Snapshot(nil), j.entries[drop:]...)
		j.cursor = max(j.cursor-drop, 0)
	}
}

// Start rewinds playback to the first snapshot.
func (j *Journal) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cursor = 0
}

// Next returns the snapshot at the cursor and advances it, or nil at the end.
func (j *Journal) Next() *Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cursor < len(j.entries) {
		s := j.entries[j.cursor]
		j.cursor++
		return s
	}
	return nil
}

// Previous steps the cursor back and returns that snapshot, or nil at the
// start.
func (j *Journal) Previous() *Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cursor > 0 {
		j.cursor--
		return j.entries[j.cursor]
	}
	return nil
}

// Len returns the number of snapshots kept.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// At returns the snapshot at index, or nil.
func (j *Journal) At(index int) *Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if index >= 0 && index < len(j.entries) {
		return j.entries[index]
	}
	return nil
}

// Last returns the newest snapshot, or nil.
func (j *Journal) Last() *Snapshot {
	return j.At(j.Len() - 1)
}

type journalHeader struct {
	GameID    string
	Timestamp time.Time
	Version   int
	Count     int
}

const journalVersion = 1

// WriteTo writes the journal as gzip-compressed gob.
func (j *Journal) WriteTo(w io.Writer) (int64, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	cw := &countingWriter{w: w}
	zw := gzip.NewWriter(cw)
	enc := gob.NewEncoder(zw)

	header := journalHeader{
		GameID:    j.GameID,
		Timestamp: time.Now(),
		Version:   journalVersion,
		Count:     len(j.entries),
	}
	if err := enc.Encode(&header); err != nil {
		return cw.n, fmt.Errorf("encode journal header: %w", err)
	}
	for i, s := range j.entries {
		if err := enc.Encode(s); err != nil {
			return cw.n, fmt.Errorf("encode snapshot %d: %w", i, err)
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("close journal: %w", err)
	}
	return cw.n, nil
}

// ReadJournal decodes a journal written by WriteTo.
func ReadJournal(r io.Reader) (*Journal, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer zr.Close()

	dec := gob.NewDecoder(zr)
	var header journalHeader
	if err := dec.Decode(&header); err != nil {
		return nil, fmt.Errorf("decode journal header: %w", err)
	}
	if header.Version != journalVersion {
		return nil, fmt.Errorf("unsupported journal version: %d", header.Version)
	}

	j := NewJournal(header.GameID, 0)
	for i := 0; i < header.Count; i++ {
		var s Snapshot
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode snapshot %d: %w", i, err)
		}
		j.entries = append(j.entries, &s)
	}
	return j, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
