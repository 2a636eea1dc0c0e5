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

// Binance fetches daily close prices from the public klines endpoint. No
// API key is needed for market data.
type Binance struct {
	host       string
	httpClient *http.Client
}

func NewBinance(httpClient *http.Client, host string) *Binance {
	if host == "" {
		host = "https://api.binance.com"
	}
	return &Binance{
		host:       strings.TrimRight(host, "/"),
		httpClient: httpClient,
	}
}

func (b *Binance) Name() string { return "Binance" }

func (b *Binance) Fetch(ctx context.Context, symbol string, backfill bool) (timeseries.Series, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", "1d")
	query.Set("startTime", strconv.FormatInt(startDate(backfill).UnixMilli(), 10))
	query.Set("limit", "1000")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.host+"/api/v3/klines?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, transportError(b.Name(), symbol, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(b.Name(), symbol, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(b.Name(), symbol, resp.StatusCode, body)
	}
	return parseBinanceKlines(symbol, body)
}

// parseBinanceKlines decodes the klines response. Each kline is a
// heterogeneous array: open time at index 0 (ms), close price at index 4
// (string).
func parseBinanceKlines(symbol string, body []byte) (timeseries.Series, error) {
	var klines [][]json.RawMessage
	if err := json.Unmarshal(body, &klines); err != nil {
		return nil, fmt.Errorf("Binance %s: decode klines: %w", symbol, err)
	}
	out := make(timeseries.Series, 0, len(klines))
	for _, k := range klines {
		if len(k) < 5 {
			continue
		}
		var openMs int64
		if err := json.Unmarshal(k[0], &openMs); err != nil {
			continue
		}
		var closeStr string
		if err := json.Unmarshal(k[4], &closeStr); err != nil {
			continue
		}
		v, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			continue
		}
		out = append(out, timeseries.Point{Timestamp: time.UnixMilli(openMs).UTC(), Value: v})
	}
	return timeseries.Normalize(out), nil
}
