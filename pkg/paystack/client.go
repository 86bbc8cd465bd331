// Package paystack is a minimal client for the Paystack bank endpoints.
package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"frecks-web/internal/domain"
)

const DefaultBaseURL = "https://api.paystack.co"

// ErrNotConfigured is returned when no secret key is available at call time.
var ErrNotConfigured = errors.New("paystack: secret key not configured")

// APIError is a failure reported by Paystack itself (status:false in the body).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paystack: %s (http %d)", e.Message, e.StatusCode)
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type Client struct {
	baseURL    string
	secret     func() string
	httpClient *http.Client
}

// NewClient builds a client. secret is consulted on every call so key
// rotation or late configuration needs no restart.
func NewClient(baseURL string, secret func() string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		// No client timeout: upstream hangs are bounded by the request context only.
		httpClient: &http.Client{},
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// ListBanks returns every bank Paystack knows for the given country, unfiltered.
func (c *Client) ListBanks(ctx context.Context, country string) ([]domain.Bank, error) {
	var env envelope[[]domain.Bank]
	if err := c.get(ctx, "/bank", url.Values{"country": {country}}, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ResolveAccount looks up the account holder name for a NUBAN account number.
func (c *Client) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*domain.AccountResolution, error) {
	var env envelope[domain.AccountResolution]
	q := url.Values{
		"account_number": {accountNumber},
		"bank_code":      {bankCode},
	}
	if err := c.get(ctx, "/bank/resolve", q, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{ status() (bool, string) }) error {
	secret := ""
	if c.secret != nil {
		secret = c.secret()
	}
	if secret == "" {
		return ErrNotConfigured
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("paystack: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paystack: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	// Paystack answers failures with a JSON envelope too, so decode before looking at the status.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("paystack: decode %s (http %d): %w", path, resp.StatusCode, err)
	}

	if ok, msg := out.status(); !ok {
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return nil
}

func (e *envelope[T]) status() (bool, string) {
	return e.Status, e.Message
}
