package snapshotstore

import (
	"context"
	"sync"

	"github.com/bahnwerk/core/internal/domain/snapshot"
)

// MemoryStore keeps the encoded snapshot in memory. Used for tests and for
// ephemeral runs without durable persistence.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (snapshot.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return snapshot.Snapshot{}, false, nil
	}
	snap, err := snapshot.Decode(s.data)
	if err != nil {
		return snapshot.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *MemoryStore) Save(ctx context.Context, snap snapshot.Snapshot) error {
	data, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Saves returns how many snapshots have been written. Test hook.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// SetRaw seeds the store with an already-encoded record. Test hook for
// exercising migration of legacy shapes.
func (s *MemoryStore) SetRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
}
