package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"macrolens/internal/timeseries"
)

// Tiingo fetches daily EOD prices. Index and commodity indicators use
// liquid ETF proxies as symbols.
type Tiingo struct {
	host       string
	apiKey     string
	httpClient *http.Client
}

func NewTiingo(httpClient *http.Client, host, apiKey string) *Tiingo {
	if host == "" {
		host = "https://api.tiingo.com"
	}
	return &Tiingo{
		host:       strings.TrimRight(host, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

func (t *Tiingo) Name() string { return "Tiingo" }

func (t *Tiingo) Configured() bool { return t.apiKey != "" }

func (t *Tiingo) Fetch(ctx context.Context, symbol string, backfill bool) (timeseries.Series, error) {
	query := url.Values{}
	query.Set("startDate", startDate(backfill).Format("2006-01-02"))
	query.Set("token", t.apiKey)
	path := "/tiingo/daily/" + url.PathEscape(symbol) + "/prices"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.host+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, transportError(t.Name(), symbol, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(t.Name(), symbol, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(t.Name(), symbol, resp.StatusCode, body)
	}
	return parseTiingoPrices(symbol, body)
}

// parseTiingoPrices prefers the split-adjusted close and falls back to the
// raw close for symbols without adjustment data.
func parseTiingoPrices(symbol string, body []byte) (timeseries.Series, error) {
	var rows []struct {
		Date     string  `json:"date"`
		Close    float64 `json:"close"`
		AdjClose float64 `json:"adjClose"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("Tiingo %s: decode prices: %w", symbol, err)
	}
	out := make(timeseries.Series, 0, len(rows))
	for _, row := range rows {
		ts, err := time.Parse(time.RFC3339, row.Date)
		if err != nil {
			continue
		}
		v := row.AdjClose
		if v == 0 {
			v = row.Close
		}
		if v == 0 {
			continue
		}
		out = append(out, timeseries.Point{Timestamp: ts.UTC().Truncate(24 * time.Hour), Value: v})
	}
	return timeseries.Normalize(out), nil
}
