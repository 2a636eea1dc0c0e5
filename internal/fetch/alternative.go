package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"macrolens/internal/timeseries"
)

// Alternative fetches the crypto Fear & Greed index from alternative.me.
// The API is keyless and has a single series, so the symbol only selects
// the history depth.
type Alternative struct {
	host       string
	httpClient *http.Client
}

func NewAlternative(httpClient *http.Client, host string) *Alternative {
	if host == "" {
		host = "https://api.alternative.me"
	}
	return &Alternative{
		host:       strings.TrimRight(host, "/"),
		httpClient: httpClient,
	}
}

func (a *Alternative) Name() string { return "Alternative" }

func (a *Alternative) Fetch(ctx context.Context, symbol string, backfill bool) (timeseries.Series, error) {
	limit := "90"
	if backfill {
		limit = "0" // full history
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.host+"/fng/?limit="+limit+"&format=json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, transportError(a.Name(), symbol, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(a.Name(), symbol, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(a.Name(), symbol, resp.StatusCode, body)
	}
	return parseFearGreed(body)
}

func parseFearGreed(body []byte) (timeseries.Series, error) {
	var resp struct {
		Data []struct {
			Value     string `json:"value"`
			Timestamp string `json:"timestamp"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("alternative.me: decode fng: %w", err)
	}
	out := make(timeseries.Series, 0, len(resp.Data))
	for _, row := range resp.Data {
		v, err := strconv.ParseFloat(row.Value, 64)
		if err != nil {
			continue
		}
		sec, err := strconv.ParseInt(row.Timestamp, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, timeseries.Point{Timestamp: time.Unix(sec, 0).UTC(), Value: v})
	}
	return timeseries.Normalize(out), nil
}
