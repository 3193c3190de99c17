package store

import (
	"context"
	"testing"

	"golang-bookkeeping-engine/internal/models"
	"golang-bookkeeping-engine/pkg/errors"
)

func TestMemStoreRecordsWrites(t *testing.T) {
	m := NewMemStore(Snapshot{})
	ref := models.RowRef{Sheet: SheetInvoices, Row: 2}

	if err := m.SetMatch(ref, "pago-001.pdf", models.ConfidenceHigh); err != nil {
		t.Fatalf("SetMatch: %v", err)
	}
	if err := m.SetSettled(ref); err != nil {
		t.Fatalf("SetSettled: %v", err)
	}

	if len(m.MatchWrites) != 1 || m.MatchWrites[0].CounterpartID != "pago-001.pdf" {
		t.Errorf("match writes = %+v", m.MatchWrites)
	}
	if len(m.SettledRefs) != 1 || m.SettledRefs[0] != ref {
		t.Errorf("settled refs = %+v", m.SettledRefs)
	}
}

func TestMemStoreFailureInjection(t *testing.T) {
	ref := models.RowRef{Sheet: SheetInvoices, Row: 2}
	m := NewMemStore(Snapshot{})
	m.FailRefs = map[models.RowRef]bool{ref: true}

	err := m.SetMatch(ref, "pago-001.pdf", models.ConfidenceHigh)
	if err == nil {
		t.Fatal("expected injected failure")
	}
	if !errors.Is(err, errors.CategoryStore, errors.CodeStoreWrite) {
		t.Errorf("error category/code = %v", err)
	}
	if len(m.MatchWrites) != 0 {
		t.Error("failed write must not be recorded")
	}
}

func TestMemStoreLoadCopiesSnapshot(t *testing.T) {
	m := NewMemStore(Snapshot{
		Invoices: []*models.Invoice{{FileID: "fac-001.pdf"}},
	})

	snapshot, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snapshot.Invoices) != 1 {
		t.Fatalf("invoices = %d, want 1", len(snapshot.Invoices))
	}
}
