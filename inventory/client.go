package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	fwzerrors "github.com/jrsteele09/foodwaste-zero/internal/errors"
	"github.com/pkg/errors"
)

const (
	RouteProducts = "/products/"
	RouteHistory  = "/history"
)

// Client reads the household inventory. The http.Client it is given must
// already attach the bearer credential (see session.Manager.HTTPClient).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Products returns the current product collection snapshot.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, RouteProducts, &products); err != nil {
		return nil, errors.Wrap(err, "[Products]")
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// History returns the consumed/wasted log.
func (c *Client) History(ctx context.Context) ([]HistoryEntry, error) {
	var history []HistoryEntry
	if err := c.getJSON(ctx, RouteHistory, &history); err != nil {
		return nil, errors.Wrap(err, "[History]")
	}
	return history, nil
}

func (c *Client) getJSON(ctx context.Context, route string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+route, nil)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if fwzerrors.Is(err, fwzerrors.ErrNotAuthenticated) {
			return fwzerrors.Wrapf(fwzerrors.ErrNotAuthenticated, "GET %s", route)
		}
		return fwzerrors.Wrapf(fwzerrors.ErrNetwork, "GET %s: %v", route, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fwzerrors.Wrapf(fwzerrors.ErrTokenInvalid, "GET %s returned %d", route, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fwzerrors.Wrapf(fwzerrors.ErrNetwork, "GET %s returned %d", route, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fwzerrors.Wrapf(fwzerrors.ErrNetwork, "decoding %s: %v", route, err)
	}
	return nil
}
