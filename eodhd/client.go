// Package eodhd retrieves daily prices and exchange rates from the EODHD API
// (https://eodhd.com) into performance.MarketData.
package eodhd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
)

// APIKeyEnv is the environment variable holding the EODHD API key.
const APIKeyEnv = "EODHD_API_KEY"

const defaultBaseURL = "https://eodhd.com/api"

// Client queries the EODHD API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default daily caching client.
func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.http = c } }

// WithBaseURL points the client to another server.
func WithBaseURL(u string) Option { return func(cl *Client) { cl.baseURL = u } }

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) { cl.log = l.With().Str("component", "eodhd").Logger() }
}

// New returns a client using apiKey, or the APIKeyEnv variable when empty.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("missing EODHD API key, set %s. You can get one at https://eodhd.com/", APIKeyEnv)
	}
	c := &Client{apiKey: apiKey, baseURL: defaultBaseURL, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = newDailyCachingClient(c.log)
	}
	return c, nil
}

// jwget performs an HTTP GET request to the given address and unmarshals the
// JSON response body into data.
func (c *Client) jwget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}
