package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/nikolayk812/checkout-session/internal/port"
)

type recordID struct {
	ownerID string
	key     string
}

// memoryRepository keeps sessions in process memory. Records are lost on restart.
type memoryRepository struct {
	mu      sync.RWMutex
	records map[recordID]port.SessionRecord
}

func NewMemorySession() port.SessionStore {
	return &memoryRepository{
		records: make(map[recordID]port.SessionRecord),
	}
}

func (r *memoryRepository) Get(_ context.Context, ownerID, key string) (port.SessionRecord, error) {
	if err := validateKey(ownerID, key); err != nil {
		return port.SessionRecord{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[recordID{ownerID: ownerID, key: key}]
	if !ok {
		return port.SessionRecord{}, port.ErrSessionNotFound
	}

	return port.SessionRecord{
		Payload: slices.Clone(record.Payload),
		Version: record.Version,
	}, nil
}

func (r *memoryRepository) Put(_ context.Context, ownerID, key string, payload []byte, expectedVersion int64) (int64, error) {
	if err := validateKey(ownerID, key); err != nil {
		return 0, err
	}
	if len(payload) == 0 {
		return 0, fmt.Errorf("payload is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := recordID{ownerID: ownerID, key: key}
	current := r.records[id].Version
	if current != expectedVersion {
		return 0, fmt.Errorf("stored[%d] expected[%d]: %w", current, expectedVersion, port.ErrVersionConflict)
	}

	record := port.SessionRecord{
		Payload: slices.Clone(payload),
		Version: current + 1,
	}
	r.records[id] = record

	return record.Version, nil
}

func (r *memoryRepository) Delete(_ context.Context, ownerID, key string) (bool, error) {
	if err := validateKey(ownerID, key); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := recordID{ownerID: ownerID, key: key}
	if _, ok := r.records[id]; !ok {
		return false, nil
	}
	delete(r.records, id)

	return true, nil
}
