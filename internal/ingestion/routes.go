package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

const defaultRoutesURL = "https://api.aviationstack.com/v1/flights"

// RouteFinder lists scheduled flights between two airports using the
// aviationstack flights endpoint.
type RouteFinder struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRouteFinder creates a route finder. An empty baseURL uses the public API.
func NewRouteFinder(baseURL, apiKey string, hc *http.Client) *RouteFinder {
	if baseURL == "" {
		baseURL = defaultRoutesURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &RouteFinder{baseURL: baseURL, apiKey: apiKey, httpClient: hc}
}

type routesResponse struct {
	Data []struct {
		Flight struct {
			IATA string `json:"iata"`
		} `json:"flight"`
		Airline struct {
			Name string `json:"name"`
		} `json:"airline"`
		Departure struct {
			IATA      string `json:"iata"`
			Timezone  string `json:"timezone"`
			Scheduled string `json:"scheduled"`
		} `json:"departure"`
		Arrival struct {
			IATA string `json:"iata"`
		} `json:"arrival"`
	} `json:"data"`
}

type routeKey struct {
	flight, airline, dep, arr string
}

// Find returns one option per distinct (flight, airline, origin, destination)
// in the order the provider listed them.
func (f *RouteFinder) Find(ctx context.Context, depIATA, arrIATA string) ([]models.RouteOption, error) {
	q := url.Values{
		"access_key": {f.apiKey},
		"dep_iata":   {depIATA},
		"arr_iata":   {arrIATA},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var raw routesResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	seen := make(map[routeKey]struct{}, len(raw.Data))
	options := make([]models.RouteOption, 0, len(raw.Data))
	for _, d := range raw.Data {
		k := routeKey{d.Flight.IATA, d.Airline.Name, d.Departure.IATA, d.Arrival.IATA}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}

		options = append(options, models.RouteOption{
			FlightNumber:           k.flight,
			Airline:                k.airline,
			Timezone:               d.Departure.Timezone,
			ScheduledDepartureTime: wallClock(d.Departure.Scheduled),
			Origin:                 k.dep,
			Destination:            k.arr,
		})
	}
	return options, nil
}

// wallClock extracts "15:04" from an ISO-8601 timestamp, keeping the
// timestamp's own offset.
func wallClock(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ""
	}
	return t.Format("15:04")
}
