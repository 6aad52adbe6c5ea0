// Package identity talks to the backend's user endpoints: the password
// credential exchange and the profile resource that confirms a token.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	fwzerrors "github.com/jrsteele09/foodwaste-zero/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	RouteLogin = "/users/login"
	RouteMe    = "/users/me"
)

// APIError is a non-2xx answer from the backend. It unwraps to the error kind
// it was classified as (ErrInvalidCredentials, ErrTokenInvalid, ErrRejected
// or ErrNetwork).
type APIError struct {
	StatusCode int
	Detail     string
	kind       error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: status %d: %s", e.kind, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: status %d", e.kind, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// Client is the HTTP side of the identity provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client (timeouts, test transports).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a bearer token using the OAuth2 password
// grant: a form POST of grant_type=password, username and password.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + RouteLogin,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := conf.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return "", classifyLoginFailure(retrieveErr)
		}
		return "", fwzerrors.Wrapf(fwzerrors.ErrNetwork, "[Login] %v", err)
	}
	return tok.AccessToken, nil
}

func classifyLoginFailure(retrieveErr *oauth2.RetrieveError) error {
	status := retrieveErr.Response.StatusCode
	kind := fwzerrors.ErrNetwork
	if status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = fwzerrors.ErrInvalidCredentials
	}
	return &APIError{StatusCode: status, Detail: parseDetail(retrieveErr.Body), kind: kind}
}

// Me fetches the profile owned by token. Any 4xx means the token was
// rejected; transport failures, 5xx and malformed bodies are network errors.
func (c *Client) Me(ctx context.Context, token string) (*UserProfile, error) {
	var profile UserProfile
	if err := c.doWithToken(ctx, token, http.MethodGet, RouteMe, nil, &profile, fwzerrors.ErrTokenInvalid); err != nil {
		return nil, errors.Wrap(err, "[Me]")
	}
	return &profile, nil
}

// UpdateMe sends a partial profile edit. Validation failures (e.g. an email
// already in use) are reported as ErrRejected with the backend's detail.
func (c *Client) UpdateMe(ctx context.Context, token string, update ProfileUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return errors.Wrap(err, "[UpdateMe] encoding update")
	}
	if err := c.doWithToken(ctx, token, http.MethodPut, RouteMe, body, nil, fwzerrors.ErrRejected); err != nil {
		return errors.Wrap(err, "[UpdateMe]")
	}
	return nil
}

// doWithToken sends an authorized request. 401/403 always mean the token was
// rejected; other 4xx answers are reported as clientErrKind.
func (c *Client) doWithToken(ctx context.Context, token, method, route string, body []byte, out any, clientErrKind error) error {
	if token == "" {
		return fwzerrors.ErrTokenInvalid
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+route, reader)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.bearerClient(token).Do(req)
	if err != nil {
		return fwzerrors.Wrapf(fwzerrors.ErrNetwork, "%s %s: %v", method, route, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		kind := fwzerrors.ErrNetwork
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			kind = fwzerrors.ErrTokenInvalid
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			kind = clientErrKind
		}
		return &APIError{StatusCode: resp.StatusCode, Detail: parseDetail(payload), kind: kind}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fwzerrors.Wrapf(fwzerrors.ErrNetwork, "decoding %s: %v", route, err)
	}
	return nil
}

// bearerClient layers an Authorization: Bearer header over the base client.
func (c *Client) bearerClient(token string) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   c.httpClient.Transport,
		},
		Timeout: c.httpClient.Timeout,
	}
}

// parseDetail extracts {"detail": "..."} from an error body. Validation
// errors carry a list instead of a string and are summarised.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		return detail
	}
	return "request rejected"
}
