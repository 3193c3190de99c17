package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	engerrors "golang-bookkeeping-engine/pkg/errors"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"
)

// ClientConfig holds options for the historical-rate HTTP client.
type ClientConfig struct {
	// URLTemplate is the endpoint for one day's rate; the {date} placeholder
	// is replaced with the ISO date.
	URLTemplate string `json:"url_template"`

	// Timeout bounds a single request attempt.
	Timeout time.Duration `json:"timeout"`

	// RetryMax is the number of retries per date.
	RetryMax int `json:"retry_max"`
}

// DefaultClientConfig returns the default client options.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		URLTemplate: "https://api.argentinadatos.com/v1/cotizaciones/dolares/oficial/{date}",
		Timeout:     10 * time.Second,
		RetryMax:    3,
	}
}

// Validate checks the client configuration.
func (c *ClientConfig) Validate() error {
	if !strings.Contains(c.URLTemplate, "{date}") {
		return engerrors.ConfigError(engerrors.CodeInvalidConfig, "fx.url_template",
			fmt.Errorf("missing {date} placeholder: %s", c.URLTemplate))
	}
	if c.Timeout <= 0 {
		return engerrors.ConfigError(engerrors.CodeInvalidConfig, "fx.timeout",
			fmt.Errorf("timeout must be positive: %s", c.Timeout))
	}
	return nil
}

// Client fetches one day's official buy/sell rate over HTTP with retries.
type Client struct {
	config *ClientConfig
	http   *retryablehttp.Client
}

// ratePayload is the wire format of the rate endpoint.
type ratePayload struct {
	Buy  decimal.Decimal `json:"compra"`
	Sell decimal.Decimal `json:"venta"`
	Date string          `json:"fecha"`
}

// NewClient creates a rate client from the given configuration.
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil {
		config = DefaultClientConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = config.RetryMax
	rc.HTTPClient.Timeout = config.Timeout
	rc.Logger = nil

	return &Client{config: config, http: rc}, nil
}

// FetchRate retrieves the rate for one date.
func (c *Client) FetchRate(ctx context.Context, date time.Time) (Rate, error) {
	iso := date.Format("2006-01-02")
	url := strings.ReplaceAll(c.config.URLTemplate, "{date}", iso)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Rate{}, engerrors.RatesError(engerrors.CodeRateFetch, iso, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Rate{}, engerrors.RatesError(engerrors.CodeRateFetch, iso, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Rate{}, engerrors.RatesError(engerrors.CodeRateFetch, iso,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload ratePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Rate{}, engerrors.RatesError(engerrors.CodeRateDecode, iso, err)
	}
	if payload.Sell.IsZero() {
		return Rate{}, engerrors.RatesError(engerrors.CodeRateDecode, iso,
			fmt.Errorf("payload carries no sell rate"))
	}

	return Rate{Date: iso, Buy: payload.Buy, Sell: payload.Sell}, nil
}
