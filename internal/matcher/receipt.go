package matcher

import (
	"sort"

	"golang-bookkeeping-engine/internal/ident"
	"golang-bookkeeping-engine/internal/models"
	"golang-bookkeeping-engine/internal/parsers"
)

// ReceiptPaymentMatch is a scored receipt-payment pairing. Salary receipts
// are always in local currency, so there is no cross-currency branch here.
type ReceiptPaymentMatch struct {
	Receipt *models.Receipt `json:"receipt"`
	Payment *models.Payment `json:"payment"`
	Quality MatchQuality    `json:"quality"`
}

// MatchReceiptsForPayment scores every salary receipt against the payment
// and returns the candidates best-first. The tiering rule is the one shared
// with invoice matching; the identifier rule accepts the employee's CUIT or
// the short-form DNI embedded in it.
func MatchReceiptsForPayment(payment *models.Payment, receipts []*models.Receipt, cfg *Config) []*ReceiptPaymentMatch {
	var matches []*ReceiptPaymentMatch
	for _, receipt := range receipts {
		if match, ok := scoreReceiptPayment(receipt, payment, cfg); ok {
			matches = append(matches, match)
		}
	}
	sortReceiptMatches(matches)
	return matches
}

// MatchPaymentsForReceipt is the reverse direction.
func MatchPaymentsForReceipt(receipt *models.Receipt, payments []*models.Payment, cfg *Config) []*ReceiptPaymentMatch {
	var matches []*ReceiptPaymentMatch
	for _, payment := range payments {
		if match, ok := scoreReceiptPayment(receipt, payment, cfg); ok {
			matches = append(matches, match)
		}
	}
	sortReceiptMatches(matches)
	return matches
}

func scoreReceiptPayment(receipt *models.Receipt, payment *models.Payment, cfg *Config) (*ReceiptPaymentMatch, bool) {
	dayDiff := parsers.DayDistance(payment.Date, receipt.Date)
	if !InCandidateWindow(dayDiff) {
		return nil, false
	}

	if !cfg.amountsMatch(payment.Amount, receipt.NetAmount) {
		return nil, false
	}

	identifierMatch := ident.SameParty(payment.PayerID, receipt.EmployeeID) ||
		ident.SameName(payment.PayerName, receipt.EmployeeName)

	confidence := ComputeConfidence(dayDiff, identifierMatch, false)
	if confidence == models.ConfidenceNone {
		return nil, false
	}

	return &ReceiptPaymentMatch{
		Receipt: receipt,
		Payment: payment,
		Quality: MatchQuality{
			Confidence:      confidence,
			IdentifierMatch: identifierMatch,
			DayDistance:     parsers.AbsDayDistance(payment.Date, receipt.Date),
		},
	}, true
}

func sortReceiptMatches(matches []*ReceiptPaymentMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Quality.Better(matches[j].Quality)
	})
}
