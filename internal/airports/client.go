package airports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rideshare/internal/event"
)

// Fallback is served in skip mode.
var Fallback = []event.Airport{
	{Code: "SFO", Name: "San Francisco International Airport", City: "San Francisco"},
	{Code: "SJC", Name: "Norman Y. Mineta San Jose International Airport", City: "San Jose"},
}

// Client calls the airport directory service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client with a short timeout.
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Skip:    skip,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// NearbyAirports lists airports serving city.
func (c *Client) NearbyAirports(ctx context.Context, city string) ([]event.Airport, error) {
	if c.Skip {
		return append([]event.Airport(nil), Fallback...), nil
	}
	if strings.TrimSpace(city) == "" {
		return nil, fmt.Errorf("city required")
	}

	endpoint := c.BaseURL + "/airports?" + url.Values{"city": {city}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("airport service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("airport service error %s: %s", resp.Status, string(bodyBytes))
	}

	var out struct {
		Airports []event.Airport `json:"airports"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Airports, nil
}

// Health checks if the airport service is available.
func (c *Client) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("airport service unavailable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("airport service unhealthy: %s", resp.Status)
	}
	return nil
}
