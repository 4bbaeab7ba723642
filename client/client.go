// Package client is a Go consumer of the storefront API. It keeps the
// session cookies in a jar and transparently refreshes an expired access
// token, collapsing concurrent refresh attempts into a single call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kevinleven52/Ac.Connect/models"
)

// codeAccessTokenExpired mirrors the distinguished 401 variant emitted by
// the auth middleware for expired (as opposed to invalid) access tokens.
const codeAccessTokenExpired = "ACCESS_TOKEN_EXPIRED"

// APIError carries the status and message of a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the storefront backend. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	// refresh collapses concurrent token-refresh attempts: when several
	// requests hit an expired access token at once, exactly one
	// refresh-token call goes out and the rest wait for its result.
	refresh singleflight.Group
}

// New builds a Client for the given base URL (e.g. "http://localhost:5000").
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Signup registers a new account and stores the session cookies.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*models.UserView, error) {
	var resp struct {
		User models.UserView `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", models.SignupRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login authenticates and stores the session cookies.
func (c *Client) Login(ctx context.Context, email, password string) (*models.UserView, error) {
	var resp struct {
		User models.UserView `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout invalidates the server-side session. Cookies are cleared by the
// server's expired Set-Cookie headers, which the jar honors.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Profile returns the currently authenticated user.
func (c *Client) Profile(ctx context.Context) (*models.UserView, error) {
	var resp struct {
		User models.UserView `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// CreateCheckoutSession starts a payment session for the given products.
// The returned total is the discounted amount in naira.
func (c *Client) CreateCheckoutSession(ctx context.Context, req *models.CreateCheckoutSessionRequest) (sessionID string, totalAmount float64, err error) {
	var resp struct {
		SessionID   string  `json:"sessionId"`
		TotalAmount float64 `json:"totalAmount"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/payments/checkout-session", req, &resp); err != nil {
		return "", 0, err
	}
	return resp.SessionID, resp.TotalAmount, nil
}

// CheckoutSuccess confirms a completed payment session and returns the
// resulting order id.
func (c *Client) CheckoutSuccess(ctx context.Context, sessionID string) (string, error) {
	var resp struct {
		OrderID string `json:"orderId"`
	}
	err := c.do(ctx, http.MethodPost, "/api/payments/checkout-success", models.CheckoutSuccessRequest{
		SessionID: sessionID,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.OrderID, nil
}

// do issues a request and, on an expired access token, refreshes the
// session once and retries. Any other failure, including a failed refresh,
// surfaces the original error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	err := c.send(ctx, method, path, body, out)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != codeAccessTokenExpired {
		return err
	}

	_, refreshErr, _ := c.refresh.Do("refresh", func() (any, error) {
		return nil, c.send(ctx, http.MethodPost, "/api/auth/refresh-token", nil, nil)
	})
	if refreshErr != nil {
		return err
	}
	return c.send(ctx, method, path, body, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		msg := errBody.Error
		if msg == "" {
			msg = errBody.Message
		}
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg, Code: errBody.Code}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
