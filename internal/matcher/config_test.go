package matcher

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "zero tolerances are valid", mutate: func(c *Config) {
			c.SameCurrencyTolerance = decimal.Zero
			c.SettlementTolerance = decimal.Zero
			c.CrossCurrencyTolerancePercent = 0
		}},
		{name: "negative same currency tolerance", mutate: func(c *Config) {
			c.SameCurrencyTolerance = decimal.NewFromInt(-1)
		}, wantErr: true},
		{name: "negative settlement tolerance", mutate: func(c *Config) {
			c.SettlementTolerance = decimal.RequireFromString("-0.01")
		}, wantErr: true},
		{name: "percent over 100", mutate: func(c *Config) {
			c.CrossCurrencyTolerancePercent = 101
		}, wantErr: true},
		{name: "negative percent", mutate: func(c *Config) {
			c.CrossCurrencyTolerancePercent = -1
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	original := DefaultConfig()
	clone := original.Clone()

	clone.CrossCurrencyTolerancePercent = 10
	if original.CrossCurrencyTolerancePercent != 5.0 {
		t.Error("mutating the clone changed the original")
	}

	var nilCfg *Config
	if nilCfg.Clone() != nil {
		t.Error("cloning nil should yield nil")
	}
}

func TestAmountsMatch(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		a, b string
		want bool
	}{
		{"1000.00", "1000.00", true},
		{"1000.00", "999.00", true},
		{"1000.00", "1001.00", true},
		{"1000.00", "998.50", false},
		{"1000.00", "1001.01", false},
	}
	for _, tt := range tests {
		if got := cfg.amountsMatch(money(tt.a), money(tt.b)); got != tt.want {
			t.Errorf("amountsMatch(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestConvertedAmountsMatch(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		payment, expected string
		want              bool
	}{
		{"125000.00", "125000.00", true},
		{"128000.00", "125000.00", true},  // +2.4%
		{"131250.00", "125000.00", true},  // exactly 5%
		{"140000.00", "125000.00", false}, // +12%
		{"100.00", "0", false},            // no rate conversion to compare
	}
	for _, tt := range tests {
		if got := cfg.convertedAmountsMatch(money(tt.payment), money(tt.expected)); got != tt.want {
			t.Errorf("convertedAmountsMatch(%s, %s) = %v, want %v", tt.payment, tt.expected, got, tt.want)
		}
	}
}
