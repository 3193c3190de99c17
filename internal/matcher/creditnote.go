package matcher

import (
	"golang-bookkeeping-engine/internal/ident"
	"golang-bookkeeping-engine/internal/models"
	"golang-bookkeeping-engine/pkg/logger"
)

// SettleWriter persists the settled flag on one row. The reconciler wires
// this to the row store's SetSettled.
type SettleWriter func(ref models.RowRef) error

// Settlement is one credit-note/invoice pair marked settled.
type Settlement struct {
	CreditNote *models.Invoice `json:"credit_note"`
	Invoice    *models.Invoice `json:"invoice"`
	// Reference is the normalized invoice number extracted from the credit
	// note's text, empty when matching fell back to amount and party alone.
	Reference string `json:"reference,omitempty"`
}

// SettleResult summarizes one settlement pass.
type SettleResult struct {
	Settled []Settlement `json:"settled"`
	// FailedWrites counts rows whose settled flag could not be persisted.
	// Those pairs are retried on the next pass; nothing is rolled back.
	FailedWrites int `json:"failed_writes"`
	// Unmatched holds credit notes that cancelled nothing this pass.
	Unmatched []*models.Invoice `json:"unmatched"`
}

// SettleCreditNotes pairs each unsettled credit note with the first
// unsettled regular invoice it fully cancels and persists the settled flag
// on both rows.
//
// Matching per credit note: same counterparty tax ID, amount equal within
// the settlement tolerance, credit-note date on or after the invoice date,
// and, when the credit note's text references an invoice number, equality
// of the normalized numbers. First fit wins; scanning stops at the first
// match.
//
// Settlement writes are not atomic: the invoice row is written first, then
// the credit note row. A failed write logs and moves to the next credit
// note without rolling back the partner row; the pair is picked up again
// on the next pass because settled flags are re-read from the store.
// Running the pass twice produces no duplicate settlement: settled rows
// are excluded up front.
func SettleCreditNotes(rows []*models.Invoice, write SettleWriter, cfg *Config) *SettleResult {
	log := logger.WithComponent("credit_note_matcher")
	result := &SettleResult{}

	var creditNotes, candidates []*models.Invoice
	for _, row := range rows {
		if row.Annotation.Settled {
			continue
		}
		switch row.Kind {
		case models.KindCreditNote:
			creditNotes = append(creditNotes, row)
		case models.KindInvoice:
			candidates = append(candidates, row)
		}
	}

	for _, note := range creditNotes {
		reference, hasReference := ExtractInvoiceReference(note.Notes)

		invoice := findCancelledInvoice(note, candidates, reference, hasReference, cfg)
		if invoice == nil {
			result.Unmatched = append(result.Unmatched, note)
			continue
		}

		// Invoice first, then credit note. A failure on the first write
		// leaves the pair fully unsettled; a failure on the second leaves
		// the invoice settled and the credit note pending a retry.
		if err := write(invoice.Ref); err != nil {
			log.WithError(err).WithFields(logger.Fields{
				"invoice":     invoice.FileID,
				"credit_note": note.FileID,
			}).Error("settlement write failed on invoice row")
			result.FailedWrites++
			result.Unmatched = append(result.Unmatched, note)
			continue
		}
		invoice.Annotation.Settled = true

		if err := write(note.Ref); err != nil {
			log.WithError(err).WithFields(logger.Fields{
				"invoice":     invoice.FileID,
				"credit_note": note.FileID,
			}).Error("settlement write failed on credit note row")
			result.FailedWrites++
			continue
		}
		note.Annotation.Settled = true

		result.Settled = append(result.Settled, Settlement{
			CreditNote: note,
			Invoice:    invoice,
			Reference:  reference,
		})
	}

	return result
}

// findCancelledInvoice returns the first candidate the credit note fully
// cancels, or nil.
func findCancelledInvoice(note *models.Invoice, candidates []*models.Invoice, reference string, hasReference bool, cfg *Config) *models.Invoice {
	for _, candidate := range candidates {
		if candidate.Annotation.Settled {
			continue
		}
		if !sameTaxID(note.CounterpartyID, candidate.CounterpartyID) {
			continue
		}
		if note.Amount.Sub(candidate.Amount).Abs().GreaterThan(cfg.SettlementTolerance) {
			continue
		}
		if note.IssueDate.Before(candidate.IssueDate) {
			continue
		}
		if hasReference {
			candidateNumber, ok := NormalizeInvoiceNumber(candidate.Number)
			if !ok || candidateNumber != reference {
				continue
			}
		}
		return candidate
	}
	return nil
}

// sameTaxID compares two tax IDs exactly, on their normalized forms.
// Short-form containment does not apply here: credit notes always carry the
// full CUIT of the counterparty.
func sameTaxID(a, b string) bool {
	na, aOK := ident.NormalizeCUIT(a)
	nb, bOK := ident.NormalizeCUIT(b)
	if aOK && bOK {
		return na == nb
	}
	return a != "" && a == b
}
