package matcher

import (
	"sort"

	"golang-bookkeeping-engine/internal/fx"
	"golang-bookkeeping-engine/internal/ident"
	"golang-bookkeeping-engine/internal/models"
	"golang-bookkeeping-engine/internal/parsers"

	"github.com/shopspring/decimal"
)

// InvoicePaymentMatch is a scored invoice-payment pairing. Candidates are
// produced fresh on every search and never persisted; only the accepted
// match ends up on the document's annotation.
type InvoicePaymentMatch struct {
	Invoice *models.Invoice `json:"invoice"`
	Payment *models.Payment `json:"payment"`
	Quality MatchQuality    `json:"quality"`

	// Cross-currency fields, zero for same-currency pairs.
	CrossCurrency  bool            `json:"cross_currency"`
	RateUsed       decimal.Decimal `json:"rate_used,omitempty"`
	ExpectedAmount decimal.Decimal `json:"expected_amount,omitempty"`
}

// MatchInvoicesForPayment scores every invoice against the payment and
// returns the candidates best-first.  Invoices already matched to another
// payment are included: deciding whether to displace them is the
// reconciler's job, not the matcher's.  Settled invoices and credit/debit
// notes are excluded.
func MatchInvoicesForPayment(payment *models.Payment, invoices []*models.Invoice, rates *fx.Provider, cfg *Config) []*InvoicePaymentMatch {
	var matches []*InvoicePaymentMatch
	for _, invoice := range invoices {
		if invoice.Kind != models.KindInvoice || invoice.Annotation.Settled {
			continue
		}
		if match, ok := scoreInvoicePayment(invoice, payment, rates, cfg); ok {
			matches = append(matches, match)
		}
	}
	sortInvoiceMatches(matches)
	return matches
}

// MatchPaymentsForInvoice is the reverse direction: it scores every payment
// against the invoice and returns the candidates best-first.
func MatchPaymentsForInvoice(invoice *models.Invoice, payments []*models.Payment, rates *fx.Provider, cfg *Config) []*InvoicePaymentMatch {
	if invoice.Kind != models.KindInvoice || invoice.Annotation.Settled {
		return nil
	}
	var matches []*InvoicePaymentMatch
	for _, payment := range payments {
		if match, ok := scoreInvoicePayment(invoice, payment, rates, cfg); ok {
			matches = append(matches, match)
		}
	}
	sortInvoiceMatches(matches)
	return matches
}

// scoreInvoicePayment decides whether an invoice-payment pairing is a
// candidate and computes its quality. The date window, the amount rule
// (same-currency tolerance or converted cross-currency tolerance) and the
// identifier-or-name rule all apply.
func scoreInvoicePayment(invoice *models.Invoice, payment *models.Payment, rates *fx.Provider, cfg *Config) (*InvoicePaymentMatch, bool) {
	dayDiff := parsers.DayDistance(payment.Date, invoice.IssueDate)
	if !InCandidateWindow(dayDiff) {
		return nil, false
	}

	identifierMatch := ident.SameParty(payment.PayerID, invoice.CounterpartyID) ||
		ident.SameName(payment.PayerName, invoice.CounterpartyName)

	match := &InvoicePaymentMatch{
		Invoice: invoice,
		Payment: payment,
	}

	if invoice.IsForeignCurrency() {
		// The payment is always in local currency; the invoice amount is
		// converted at the invoice-date sell rate. A rate-cache miss
		// disqualifies the candidate rather than blocking on a fetch.
		rate, ok := rates.GetSync(invoice.IssueDate)
		if !ok {
			return nil, false
		}
		expected := invoice.Amount.Mul(rate.Sell).Round(2)
		if !cfg.convertedAmountsMatch(payment.Amount, expected) {
			return nil, false
		}
		match.CrossCurrency = true
		match.RateUsed = rate.Sell
		match.ExpectedAmount = expected
	} else if !cfg.amountsMatch(payment.Amount, invoice.Amount) {
		return nil, false
	}

	confidence := ComputeConfidence(dayDiff, identifierMatch, match.CrossCurrency)
	if confidence == models.ConfidenceNone {
		return nil, false
	}

	match.Quality = MatchQuality{
		Confidence:      confidence,
		IdentifierMatch: identifierMatch,
		DayDistance:     parsers.AbsDayDistance(payment.Date, invoice.IssueDate),
	}
	return match, true
}

// sortInvoiceMatches orders candidates best-first. The sort is stable so
// equal qualities keep their input order and results stay deterministic.
func sortInvoiceMatches(matches []*InvoicePaymentMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Quality.Better(matches[j].Quality)
	})
}
