// Package matcher implements the document matching core: the confidence
// tiering rule, the single match-quality ordering, and the four matchers
// (invoice-payment, receipt-payment, bank movement, credit note).
//
// Candidate search is a pure function of its inputs: the matchers never
// touch shared state and never perform I/O. Cross-currency comparisons read
// the exchange-rate provider's cache synchronously; a cache miss
// disqualifies the candidate instead of triggering a fetch, so the scoring
// loop never blocks.
//
// Example usage:
//
//	cfg := matcher.DefaultConfig()
//	candidates := matcher.MatchInvoicesForPayment(payment, invoices, rates, cfg)
//	if len(candidates) > 0 {
//		best := candidates[0]
//		// accept best.Invoice as the payment's counterpart
//	}
package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Config holds the tunable tolerances of the matching core. The date
// windows of the tiering rule are not configuration; they are fixed
// constants in the confidence table.
type Config struct {
	// SameCurrencyTolerance is the absolute amount tolerance for
	// same-currency comparisons, in units of currency.
	SameCurrencyTolerance decimal.Decimal `json:"same_currency_tolerance"`

	// CrossCurrencyTolerancePercent is the percentage tolerance applied to
	// the converted expected amount in cross-currency comparisons.
	CrossCurrencyTolerancePercent float64 `json:"cross_currency_tolerance_percent"`

	// SettlementTolerance is the absolute amount tolerance for credit-note
	// settlement, in units of currency.
	SettlementTolerance decimal.Decimal `json:"settlement_tolerance"`
}

// DefaultConfig returns the production tolerances: one unit of currency for
// same-currency amounts, 5% for cross-currency amounts, one hundredth of a
// unit for settlement.
func DefaultConfig() *Config {
	return &Config{
		SameCurrencyTolerance:         decimal.NewFromInt(1),
		CrossCurrencyTolerancePercent: 5.0,
		SettlementTolerance:           decimal.RequireFromString("0.01"),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SameCurrencyTolerance.IsNegative() {
		return fmt.Errorf("same currency tolerance cannot be negative: %s", c.SameCurrencyTolerance)
	}
	if c.CrossCurrencyTolerancePercent < 0.0 || c.CrossCurrencyTolerancePercent > 100.0 {
		return fmt.Errorf("cross currency tolerance percent must be between 0 and 100: %f",
			c.CrossCurrencyTolerancePercent)
	}
	if c.SettlementTolerance.IsNegative() {
		return fmt.Errorf("settlement tolerance cannot be negative: %s", c.SettlementTolerance)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// amountsMatch compares two same-currency amounts within the configured
// absolute tolerance.
func (c *Config) amountsMatch(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(c.SameCurrencyTolerance)
}

// convertedAmountsMatch compares a payment amount against a converted
// expected amount within the configured percentage tolerance. Both values
// must already be rounded to 2 decimals.
func (c *Config) convertedAmountsMatch(payment, expected decimal.Decimal) bool {
	if expected.IsZero() {
		return false
	}
	tolerance := expected.Abs().Mul(decimal.NewFromFloat(c.CrossCurrencyTolerancePercent / 100.0))
	return payment.Sub(expected).Abs().LessThanOrEqual(tolerance)
}
