package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"macrolens/internal/timeseries"
)

const fredDateLayout = "2006-01-02"

// FRED fetches observation series from the St. Louis Fed API.
type FRED struct {
	host       string
	apiKey     string
	httpClient *http.Client
}

func NewFRED(httpClient *http.Client, host, apiKey string) *FRED {
	if host == "" {
		host = "https://api.stlouisfed.org"
	}
	return &FRED{
		host:       strings.TrimRight(host, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

func (f *FRED) Name() string { return "FRED" }

// Configured reports whether an API key is present. FRED rejects keyless
// requests, so sync treats an unconfigured client as a skip, not a failure.
func (f *FRED) Configured() bool { return f.apiKey != "" }

func (f *FRED) Fetch(ctx context.Context, symbol string, backfill bool) (timeseries.Series, error) {
	query := url.Values{}
	query.Set("series_id", symbol)
	query.Set("api_key", f.apiKey)
	query.Set("file_type", "json")
	query.Set("observation_start", startDate(backfill).Format(fredDateLayout))
	body, err := f.doRequest(ctx, symbol, "/fred/series/observations", query)
	if err != nil {
		return nil, err
	}
	return parseFREDObservations(symbol, body)
}

func (f *FRED) doRequest(ctx context.Context, symbol, path string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.host+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, transportError(f.Name(), symbol, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(f.Name(), symbol, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(f.Name(), symbol, resp.StatusCode, body)
	}
	return body, nil
}

// parseFREDObservations decodes the observations payload. FRED encodes
// missing values as ".", which are dropped rather than zeroed.
func parseFREDObservations(symbol string, body []byte) (timeseries.Series, error) {
	var resp struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("FRED %s: decode observations: %w", symbol, err)
	}
	out := make(timeseries.Series, 0, len(resp.Observations))
	for _, obs := range resp.Observations {
		if obs.Value == "." || obs.Value == "" {
			continue
		}
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		ts, err := time.Parse(fredDateLayout, obs.Date)
		if err != nil {
			continue
		}
		out = append(out, timeseries.Point{Timestamp: ts.UTC(), Value: v})
	}
	return timeseries.Normalize(out), nil
}
