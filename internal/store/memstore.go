package store

import (
	"context"
	"sync"

	"golang-bookkeeping-engine/internal/models"
	"golang-bookkeeping-engine/pkg/errors"
)

// MatchWrite records one SetMatch call against a MemStore.
type MatchWrite struct {
	Ref           models.RowRef
	CounterpartID string
	Confidence    models.Confidence
}

// MovementWrite records one SetMovementMatch call against a MemStore.
type MovementWrite struct {
	Ref         models.RowRef
	EntryID     string
	Confidence  models.Confidence
	Description string
}

// MemStore is the in-memory RowStore used by tests. It records every write
// and can be told to fail specific rows.
type MemStore struct {
	mu sync.Mutex

	Snapshot Snapshot

	MatchWrites    []MatchWrite
	MovementWrites []MovementWrite
	SettledRefs    []models.RowRef

	// FailRefs makes writes against these rows fail.
	FailRefs map[models.RowRef]bool
}

var _ RowStore = (*MemStore)(nil)

// NewMemStore wraps the given snapshot.
func NewMemStore(snapshot Snapshot) *MemStore {
	return &MemStore{Snapshot: snapshot}
}

func (m *MemStore) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.StoreError(errors.CodeStoreRead, "load", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.Snapshot
	return &snapshot, nil
}

func (m *MemStore) SetMatch(ref models.RowRef, counterpartID string, confidence models.Confidence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRefs[ref] {
		return errors.StoreError(errors.CodeStoreWrite, "set match", nil).WithContext("row", ref.String())
	}
	m.MatchWrites = append(m.MatchWrites, MatchWrite{Ref: ref, CounterpartID: counterpartID, Confidence: confidence})
	return nil
}

func (m *MemStore) SetMovementMatch(ref models.RowRef, entryID string, confidence models.Confidence, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRefs[ref] {
		return errors.StoreError(errors.CodeStoreWrite, "set movement match", nil).WithContext("row", ref.String())
	}
	m.MovementWrites = append(m.MovementWrites, MovementWrite{Ref: ref, EntryID: entryID, Confidence: confidence, Description: description})
	return nil
}

func (m *MemStore) SetSettled(ref models.RowRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRefs[ref] {
		return errors.StoreError(errors.CodeStoreWrite, "set settled", nil).WithContext("row", ref.String())
	}
	m.SettledRefs = append(m.SettledRefs, ref)
	return nil
}

func (m *MemStore) Flush(ctx context.Context) error {
	return ctx.Err()
}
