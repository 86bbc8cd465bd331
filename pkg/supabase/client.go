// Package supabase talks to the Supabase GoTrue (auth) and PostgREST (data) HTTP APIs.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"frecks-web/internal/domain"
)

var ErrNotConfigured = errors.New("supabase: url or api key not configured")

// APIError is a non-2xx answer from Supabase.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase: %s (http %d)", e.Message, e.StatusCode)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (t *tokenResponse) tokens() *domain.AuthTokens {
	expires := time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	if t.ExpiresAt > 0 {
		expires = time.Unix(t.ExpiresAt, 0)
	}
	return &domain.AuthTokens{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    expires,
		UserID:       t.User.ID,
		Email:        t.User.Email,
	}
}

// SignInWithPassword exchanges email/password for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthTokens, error) {
	var out tokenResponse
	body := map[string]interface{}{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &out); err != nil {
		return nil, err
	}
	return out.tokens(), nil
}

// RefreshSession trades a refresh token for a new access token.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*domain.AuthTokens, error) {
	var out tokenResponse
	body := map[string]interface{}{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", body, &out); err != nil {
		return nil, err
	}
	return out.tokens(), nil
}

// SignUp registers a user. When email confirmation is required Supabase
// returns no session and the result is nil.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}, redirectTo string) (*domain.AuthTokens, error) {
	path := "/auth/v1/signup"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     metadata,
	}

	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, path, "", body, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, nil
	}
	return out.tokens(), nil
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

// SelectOne runs a PostgREST read on table and decodes the single row into out.
// A non-empty bearer runs the read as that user; otherwise the API key is used.
func (c *Client) SelectOne(ctx context.Context, table, bearer string, query url.Values, out interface{}) error {
	path := "/rest/v1/" + table + "?" + query.Encode()
	return c.doWith(ctx, http.MethodGet, path, bearer, nil, out, map[string]string{
		"Accept": "application/vnd.pgrst.object+json",
	})
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out interface{}) error {
	return c.doWith(ctx, method, path, bearer, body, out, nil)
}

func (c *Client) doWith(ctx context.Context, method, path, bearer string, body, out interface{}, headers map[string]string) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("supabase: encode body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("supabase: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("supabase: decode response: %w", err)
	}
	return nil
}

// decodeError extracts the human message from GoTrue/PostgREST error bodies.
func decodeError(resp *http.Response) error {
	var errResp map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&errResp)

	msg := http.StatusText(resp.StatusCode)
	for _, key := range []string{"msg", "error_description", "message", "error"} {
		if m, ok := errResp[key].(string); ok && m != "" {
			msg = m
			break
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
