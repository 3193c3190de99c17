// Package models defines the financial document types flowing through the
// matching engine: invoices, payments, salary receipts, collection entries
// and bank movements, together with the match annotations the engine is
// allowed to mutate.
//
// Documents are immutable once extracted from a scan. The only fields that
// change afterwards are the match annotations (matched counterpart,
// confidence, settled flag), and only the matching engine or the
// displacement controller writes them.
package models

import (
	"fmt"
	"strings"
	"time"

	"golang-bookkeeping-engine/internal/parsers"

	"github.com/shopspring/decimal"
)

// CurrencyARS is the local currency; every payment is denominated in it.
const CurrencyARS = "ARS"

// Confidence is the tier attached to every accepted match.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
	// ConfidenceNone marks a pairing that is not a candidate at all.
	ConfidenceNone Confidence = ""
)

// Rank orders confidence tiers; higher is better, ConfidenceNone is lowest.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether the confidence is one of the three accepted tiers.
func (c Confidence) IsValid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// RowRef addresses one row of the backing row store for targeted writes.
type RowRef struct {
	Sheet string `json:"sheet"`
	Row   int    `json:"row"`
}

// IsZero reports whether the reference points nowhere.
func (r RowRef) IsZero() bool {
	return r.Sheet == "" && r.Row == 0
}

func (r RowRef) String() string {
	return fmt.Sprintf("%s!%d", r.Sheet, r.Row)
}

// DocumentKind distinguishes invoice-like rows in the ledger.
type DocumentKind string

const (
	KindInvoice    DocumentKind = "INVOICE"
	KindCreditNote DocumentKind = "CREDIT_NOTE"
	KindDebitNote  DocumentKind = "DEBIT_NOTE"
)

// MatchAnnotation is the mutable part of a document: the accepted match.
// A document carries at most one accepted match at a time.
type MatchAnnotation struct {
	MatchedFileID string     `json:"matched_file_id,omitempty"`
	Confidence    Confidence `json:"confidence,omitempty"`
	Settled       bool       `json:"settled,omitempty"`
}

// IsMatched reports whether an accepted match is recorded.
func (a MatchAnnotation) IsMatched() bool {
	return a.MatchedFileID != ""
}

// Invoice is an invoice-like ledger row (regular invoice, credit note or
// debit note, see Kind).
type Invoice struct {
	Ref              RowRef          `json:"ref"`
	FileID           string          `json:"file_id"`
	Number           string          `json:"number"`
	Kind             DocumentKind    `json:"kind"`
	CounterpartyID   string          `json:"counterparty_id"`
	CounterpartyName string          `json:"counterparty_name"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	IssueDate        time.Time       `json:"issue_date"`
	Notes            string          `json:"notes"`

	Annotation MatchAnnotation `json:"annotation"`
}

// IsForeignCurrency reports whether the invoice is not denominated in ARS.
func (inv *Invoice) IsForeignCurrency() bool {
	return inv.Currency != "" && inv.Currency != CurrencyARS
}

// Validate performs basic validation on the Invoice.
func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.FileID) == "" {
		return fmt.Errorf("invoice file ID cannot be empty")
	}
	if inv.Amount.IsNegative() {
		return fmt.Errorf("invoice amount cannot be negative: %s", inv.Amount)
	}
	if inv.IssueDate.IsZero() {
		return fmt.Errorf("invoice issue date cannot be zero")
	}
	return nil
}

func (inv *Invoice) String() string {
	return fmt.Sprintf("Invoice{File: %s, Number: %s, Amount: %s %s, Date: %s}",
		inv.FileID, inv.Number, inv.Amount, inv.Currency, inv.IssueDate.Format("2006-01-02"))
}

// Payment is an incoming payment document, always in local currency.
type Payment struct {
	Ref       RowRef          `json:"ref"`
	FileID    string          `json:"file_id"`
	PayerID   string          `json:"payer_id"`
	PayerName string          `json:"payer_name"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Notes     string          `json:"notes"`

	Annotation MatchAnnotation `json:"annotation"`
}

// Validate performs basic validation on the Payment.
func (p *Payment) Validate() error {
	if strings.TrimSpace(p.FileID) == "" {
		return fmt.Errorf("payment file ID cannot be empty")
	}
	if p.Amount.IsZero() {
		return fmt.Errorf("payment amount cannot be zero")
	}
	if p.Date.IsZero() {
		return fmt.Errorf("payment date cannot be zero")
	}
	return nil
}

func (p *Payment) String() string {
	return fmt.Sprintf("Payment{File: %s, Payer: %s, Amount: %s, Date: %s}",
		p.FileID, p.PayerID, p.Amount, p.Date.Format("2006-01-02"))
}

// Receipt is a salary receipt document.
type Receipt struct {
	Ref          RowRef          `json:"ref"`
	FileID       string          `json:"file_id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	NetAmount    decimal.Decimal `json:"net_amount"`
	Date         time.Time       `json:"date"`
	Notes        string          `json:"notes"`

	Annotation MatchAnnotation `json:"annotation"`
}

// Validate performs basic validation on the Receipt.
func (r *Receipt) Validate() error {
	if strings.TrimSpace(r.FileID) == "" {
		return fmt.Errorf("receipt file ID cannot be empty")
	}
	if r.NetAmount.IsZero() {
		return fmt.Errorf("receipt net amount cannot be zero")
	}
	if r.Date.IsZero() {
		return fmt.Errorf("receipt date cannot be zero")
	}
	return nil
}

func (r *Receipt) String() string {
	return fmt.Sprintf("Receipt{File: %s, Employee: %s, Net: %s, Date: %s}",
		r.FileID, r.EmployeeID, r.NetAmount, r.Date.Format("2006-01-02"))
}

// CollectionEntry is an expected incoming payment from the subledger,
// reconciled against bank credit movements.
type CollectionEntry struct {
	ID               string          `json:"id"`
	CounterpartyID   string          `json:"counterparty_id"`
	CounterpartyName string          `json:"counterparty_name"`
	Reference        string          `json:"reference"`
	Amount           decimal.Decimal `json:"amount"`
	ExpectedDate     time.Time       `json:"expected_date"`
	Note             string          `json:"note"`
}

// BankMovement is one row of a scanned bank statement. Dates arrive as raw
// text from the extraction service and may be unparseable.
type BankMovement struct {
	Ref          RowRef          `json:"ref"`
	DateRaw      string          `json:"date_raw"`
	ValueDateRaw string          `json:"value_date_raw"`
	Description  string          `json:"description"`
	Credit       decimal.Decimal `json:"credit"`

	MatchedEntryID string     `json:"matched_entry_id,omitempty"`
	Confidence     Confidence `json:"confidence,omitempty"`
	MatchText      string     `json:"match_text,omitempty"`
}

// EffectiveDate parses the movement's primary date, falling back to the
// value date when the primary does not parse. The second return value is
// false when neither parses.
func (m *BankMovement) EffectiveDate() (time.Time, bool) {
	if d, err := parsers.ParseDate(m.DateRaw); err == nil {
		return d, true
	}
	if d, err := parsers.ParseDate(m.ValueDateRaw); err == nil {
		return d, true
	}
	return time.Time{}, false
}

// HasCredit reports whether the movement carries a positive credit amount.
func (m *BankMovement) HasCredit() bool {
	return m.Credit.IsPositive()
}

func (m *BankMovement) String() string {
	return fmt.Sprintf("BankMovement{Ref: %s, Credit: %s, Date: %q}",
		m.Ref, m.Credit, m.DateRaw)
}
