package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/felixhommels/mcsbt-capstone-be/internal/metrics"
	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

const (
	defaultBaseURL = "https://fr24api.flightradar24.com"

	flightPositionsPath = "/api/historic/flight-positions/full"

	// Connection pool settings
	maxIdleConns        = 10
	maxConnsPerHost     = 5
	idleConnTimeout     = 90 * time.Second
	tlsHandshakeTimeout = 10 * time.Second

	defaultTimeout = 30 * time.Second
)

// ---------------------------------------------------------------------------
// Client with Connection Pooling
// ---------------------------------------------------------------------------

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets the base URL (useful for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithAPIKey sets the bearer token sent on every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout overrides the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// Client fetches historic flight positions from the Flightradar24 API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Flightradar24 client with connection pooling.
func NewClient(opts ...ClientOption) *Client {
	transport := &http.Transport{
		MaxIdleConns:        maxIdleConns,
		MaxConnsPerHost:     maxConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
		TLSHandshakeTimeout: tlsHandshakeTimeout,
	}

	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: transport,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// positionsResponse mirrors the JSON returned by flight-positions/full.
type positionsResponse struct {
	Data []models.RawTelemetry `json:"data"`
}

// Lookup returns the positions reported for a flight designator at an
// instant. An empty slice means the provider has no match yet.
func (c *Client) Lookup(ctx context.Context, flight string, at time.Time) ([]models.RawTelemetry, error) {
	q := url.Values{
		"timestamp": {strconv.FormatInt(at.Unix(), 10)},
		"flights":   {flight},
	}
	endpoint := c.baseURL + flightPositionsPath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Version", "v1")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("reading body: %w", err)
	}

	var raw positionsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		metrics.ProviderRequests.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if len(raw.Data) == 0 {
		metrics.ProviderRequests.WithLabelValues("empty").Inc()
	} else {
		metrics.ProviderRequests.WithLabelValues("ok").Inc()
	}
	for i := range raw.Data {
		raw.Data[i].QueriedAt = at
	}
	return raw.Data, nil
}
