package fx

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	config := DefaultClientConfig()
	config.URLTemplate = url + "/{date}"
	config.RetryMax = 0
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestClientFetchRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2025-01-15" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"compra": 1230.00, "venta": 1250.00, "fecha": "2025-01-15"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	rate, err := client.FetchRate(context.Background(), time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchRate failed: %v", err)
	}
	if rate.Date != "2025-01-15" {
		t.Errorf("date = %s", rate.Date)
	}
	if !rate.Sell.Equal(decimal.NewFromInt(1250)) {
		t.Errorf("sell = %s, want 1250", rate.Sell)
	}
	if !rate.Buy.Equal(decimal.NewFromInt(1230)) {
		t.Errorf("buy = %s, want 1230", rate.Buy)
	}
}

func TestClientFetchRateHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.FetchRate(context.Background(), time.Now()); err == nil {
		t.Error("expected error on 404")
	}
}

func TestClientFetchRateEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.FetchRate(context.Background(), time.Now()); err == nil {
		t.Error("expected error for payload without a sell rate")
	}
}

func TestClientConfigValidate(t *testing.T) {
	config := DefaultClientConfig()
	config.URLTemplate = "https://example.com/fixed"
	if _, err := NewClient(config); err == nil {
		t.Error("expected error for template without {date}")
	}

	config = DefaultClientConfig()
	config.Timeout = 0
	if _, err := NewClient(config); err == nil {
		t.Error("expected error for zero timeout")
	}
}
