// Package config builds the engine's component configurations from CLI
// flag values.
package config

import (
	"golang-bookkeeping-engine/internal/fx"
	"golang-bookkeeping-engine/internal/matcher"
)

// CreateMatcherConfig builds a matcher configuration from the flag values,
// starting from the defaults.
func CreateMatcherConfig(crossCurrencyTolerancePercent float64) (*matcher.Config, error) {
	cfg := matcher.DefaultConfig()
	cfg.CrossCurrencyTolerancePercent = crossCurrencyTolerancePercent
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CreateRatesProvider builds the exchange rate provider. An empty ratesURL
// keeps the default official-rate endpoint.
func CreateRatesProvider(ratesURL string) (*fx.Provider, error) {
	clientConfig := fx.DefaultClientConfig()
	if ratesURL != "" {
		clientConfig.URLTemplate = ratesURL
	}

	client, err := fx.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}
	return fx.NewProvider(client), nil
}
