/*
Package api implements the REST client used by the chat client: registration,
login, contact listing, and history fetches, with the bearer token attached
to every gated request.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dmchat/internal/app/message"
	"dmchat/internal/app/user"
)

// APIError carries the server's error body alongside the HTTP status.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// IsAuthFailure reports whether the error means the caller must
// re-authenticate (missing, invalid, or expired token, or bad credentials).
func IsAuthFailure(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

// Client talks to one dmchat server. It is safe for sequential use from the
// client loop; the token is set once after login.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New constructs a Client for the given server base URL (no trailing slash).
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs the bearer token used by gated requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token, empty before login.
func (c *Client) Token() string {
	return c.token
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, name, password string) error {
	body := map[string]string{"name": name, "password": password}
	return c.postJSON(ctx, "/register", body, nil)
}

// Login verifies credentials and stores the issued token on the client.
func (c *Client) Login(ctx context.Context, name, password string) (string, error) {
	body := map[string]string{"name": name, "password": password}

	var out struct {
		Token string `json:"token"`
	}
	if err := c.postJSON(ctx, "/login", body, &out); err != nil {
		return "", err
	}

	c.token = out.Token
	return out.Token, nil
}

// Contacts fetches the contact list (every user except the caller).
func (c *Client) Contacts(ctx context.Context) ([]user.Summary, error) {
	var contacts []user.Summary
	if err := c.getJSON(ctx, "/contacts", &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// History fetches the full conversation with the named contact, ascending by
// timestamp. Content fields are still ciphertext.
func (c *Client) History(ctx context.Context, contact string) ([]message.Message, error) {
	var history []message.Message
	if err := c.getJSON(ctx, "/messages/"+contact, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		apiErr := &APIError{Status: res.StatusCode}

		var body struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(res.Body).Decode(&body); decodeErr == nil {
			apiErr.Code = body.Code
			apiErr.Message = body.Message
		}

		return apiErr
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}
