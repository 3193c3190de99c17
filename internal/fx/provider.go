// Package fx provides the historical exchange-rate lookup used for
// cross-currency matching.
//
// Rates are fetched in bulk before a batch of comparisons (Prefetch) and
// read synchronously during matching (GetSync). A cache miss during a
// synchronous read never triggers a network fetch; the scoring loop must
// not block on I/O, so a miss simply disqualifies the cross-currency
// candidate being scored.
package fx

import (
	"context"
	"time"

	"golang-bookkeeping-engine/pkg/logger"

	"github.com/shopspring/decimal"
)

// Rate is one day's official buy/sell rate.
type Rate struct {
	Date string          `json:"date"`
	Buy  decimal.Decimal `json:"buy"`
	Sell decimal.Decimal `json:"sell"`
}

// Fetcher retrieves a single day's rate. *Client is the production
// implementation; tests substitute their own.
type Fetcher interface {
	FetchRate(ctx context.Context, date time.Time) (Rate, error)
}

// Provider caches historical rates keyed by ISO date.
//
// Prefetch is the only method that performs I/O. The provider is filled
// before the matching loop runs and read-only afterwards, so no locking is
// needed (the engine is single-threaded, see the reconciler package).
type Provider struct {
	fetcher Fetcher
	cache   map[string]Rate
	log     logger.Logger
}

// NewProvider creates an empty provider backed by the given fetcher.
func NewProvider(fetcher Fetcher) *Provider {
	return &Provider{
		fetcher: fetcher,
		cache:   make(map[string]Rate),
		log:     logger.WithComponent("fx_provider"),
	}
}

// Prefetch loads the rates for the given dates into the cache. Failures are
// isolated per date: a date that cannot be fetched is logged and skipped so
// one bad date does not abort the batch. Already-cached dates are not
// refetched.
func (p *Provider) Prefetch(ctx context.Context, dates []time.Time) {
	seen := make(map[string]bool, len(dates))
	for _, date := range dates {
		iso := date.Format("2006-01-02")
		if seen[iso] {
			continue
		}
		seen[iso] = true

		if _, ok := p.cache[iso]; ok {
			continue
		}

		rate, err := p.fetcher.FetchRate(ctx, date)
		if err != nil {
			p.log.WithError(err).WithField("date", iso).Warn("rate prefetch failed, date skipped")
			continue
		}
		p.cache[iso] = rate
	}

	p.log.WithFields(logger.Fields{
		"requested": len(seen),
		"cached":    len(p.cache),
	}).Debug("rate prefetch completed")
}

// GetSync returns the cached rate for a date. It never fetches; a miss
// returns false.
func (p *Provider) GetSync(date time.Time) (Rate, bool) {
	rate, ok := p.cache[date.Format("2006-01-02")]
	return rate, ok
}

// Convert converts a foreign-currency amount to local currency at the sell
// rate for the given date, rounded to 2 decimals. The second return value
// is false on a cache miss.
func (p *Provider) Convert(amount decimal.Decimal, date time.Time) (decimal.Decimal, bool) {
	rate, ok := p.GetSync(date)
	if !ok {
		return decimal.Zero, false
	}
	return amount.Mul(rate.Sell).Round(2), true
}

// Seed inserts a rate directly into the cache. Intended for tests and for
// replaying rates persisted by an earlier scan.
func (p *Provider) Seed(rate Rate) {
	p.cache[rate.Date] = rate
}
