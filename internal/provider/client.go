// AngelaMos | 2026
// client.go

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/soundridge/identity-gateway/internal/config"
)

// Client talks to the hosted identity provider's auth API. Credential
// verification, token issuance, and session persistence all live on the
// provider side; the gateway only exchanges and projects.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.ProviderConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
}

func (c *Client) SignInWithPassword(
	ctx context.Context,
	email, password string,
) (*Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	resp, err := c.post(ctx, "/token?grant_type=password", body)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	return c.toSession(ctx, resp)
}

// ExchangeTokens establishes a provider-side session from a raw token
// pair, the refresh-token grant the OAuth callback flow lands on.
func (c *Client) ExchangeTokens(
	ctx context.Context,
	accessToken, refreshToken string,
) (*Session, error) {
	body := map[string]string{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	}

	resp, err := c.post(ctx, "/token?grant_type=refresh_token", body)
	if err != nil {
		return nil, fmt.Errorf("exchange tokens: %w", err)
	}

	return c.toSession(ctx, resp)
}

func (c *Client) SignUp(
	ctx context.Context,
	email, password, displayName string,
) (*Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data": map[string]string{
			"display_name": displayName,
		},
	}

	resp, err := c.post(ctx, "/signup", body)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	return c.toSession(ctx, resp)
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("sign out: %w: status %d", ErrUnavailable, resp.StatusCode)
	}

	return nil
}

func (c *Client) ResetPasswordForEmail(ctx context.Context, email string) error {
	if _, err := c.post(ctx, "/recover", map[string]string{"email": email}); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

func (c *Client) GetUser(
	ctx context.Context,
	accessToken string,
) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get user: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("get user: read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("get user: %w", ErrInvalidCredentials)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"get user: %w: status %d",
			ErrUnavailable,
			resp.StatusCode,
		)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("get user: parse response: %w", err)
	}

	return &user, nil
}

// OAuthURL builds the provider's authorize URL for a social sign-in.
// The provider redirects back to the app's callback deep link with the
// token pair in the URL fragment.
func (c *Client) OAuthURL(oauthProvider, redirectTo string) string {
	params := url.Values{
		"provider": {oauthProvider},
	}
	if redirectTo != "" {
		params.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/authorize?" + params.Encode()
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return fmt.Errorf("provider ping: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider ping: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider ping: status %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) post(
	ctx context.Context,
	path string,
	body any,
) (*tokenResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf(
			"%w: status %d: %s",
			ErrInvalidCredentials,
			resp.StatusCode,
			truncate(respBody, 200),
		)
	default:
		return nil, fmt.Errorf(
			"%w: status %d",
			ErrUnavailable,
			resp.StatusCode,
		)
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &tokenResp, nil
}

func (c *Client) newRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	return req, nil
}

func (c *Client) toSession(
	ctx context.Context,
	resp *tokenResponse,
) (*Session, error) {
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("empty access token: %w", ErrInvalidGrant)
	}

	session := &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		User:         resp.User,
	}

	if resp.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(
			time.Duration(resp.ExpiresIn) * time.Second,
		)
	}

	if session.User == nil {
		user, err := c.GetUser(ctx, session.AccessToken)
		if err != nil {
			return nil, err
		}
		session.User = user
	}

	return session, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
