// Package store defines the row-store boundary between the matching engine
// and the spreadsheet ledger. The engine reads typed snapshots and writes
// match annotations back through targeted row references; it never sees
// cells or column letters.
package store

import (
	"context"

	"golang-bookkeeping-engine/internal/models"
)

// Snapshot is one consistent read of the ledger. Row references inside the
// documents stay valid for targeted writes until the next Load.
type Snapshot struct {
	Invoices  []*models.Invoice
	Payments  []*models.Payment
	Receipts  []*models.Receipt
	Entries   []models.CollectionEntry
	Movements []*models.BankMovement

	Stats LoadStats
}

// LoadStats summarizes one snapshot read. Skipped rows are logged, never
// fatal: a ledger with a few bad rows still reconciles the rest.
type LoadStats struct {
	RowsRead    int `json:"rows_read"`
	RowsSkipped int `json:"rows_skipped"`
}

// RowStore is the storage collaborator of the engine. Every write targets
// one row and returns its own error; a failed write never aborts the batch.
type RowStore interface {
	// Load reads a full snapshot of the ledger.
	Load(ctx context.Context) (*Snapshot, error)

	// SetMatch records an accepted document match on the row: the
	// counterpart's file ID and the confidence tier.
	SetMatch(ref models.RowRef, counterpartID string, confidence models.Confidence) error

	// SetMovementMatch records a reconciled bank movement: the collection
	// entry ID, the confidence tier and the human-readable description.
	SetMovementMatch(ref models.RowRef, entryID string, confidence models.Confidence, description string) error

	// SetSettled flags the row as settled by a credit note.
	SetSettled(ref models.RowRef) error

	// Flush persists pending writes.
	Flush(ctx context.Context) error
}
