package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/username/fursio/src/logger"
)

// frankfurterResponse mirrors the Frankfurter time-series payload:
// {"rates": {"2024-01-02": {"USD": 1.0956}, ...}}.
type frankfurterResponse struct {
	Base      string                        `json:"base"`
	StartDate string                        `json:"start_date"`
	EndDate   string                        `json:"end_date"`
	Rates     map[string]map[string]float64 `json:"rates"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// frankfurterService implements RateService against the Frankfurter API,
// which republishes the ECB reference rates.
type frankfurterService struct {
	baseURL    string
	symbol     string
	httpClient *http.Client
}

// NewFrankfurterService creates a rate service for one foreign currency
// symbol (the statement's transaction currency, normally USD) quoted against
// EUR.
func NewFrankfurterService(baseURL, symbol string, timeout time.Duration) RateService {
	return &frankfurterService{
		baseURL: baseURL,
		symbol:  symbol,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchYear requests the full year's series in one call. The per-year
// granularity bounds request volume: resolution never issues per-date
// requests.
func (s *frankfurterService) FetchYear(ctx context.Context, year int) (map[string]float64, error) {
	url := fmt.Sprintf("%s/%d-01-01..%d-12-31?base=EUR&symbols=%s", s.baseURL, year, year, s.symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate API request failed for year %d: %w", year, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("rate API returned status %d for year %d", resp.StatusCode, year)
	}

	var payload frankfurterResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rate API response for year %d: %w", year, err)
	}

	rates := make(map[string]float64, len(payload.Rates))
	for date, bySymbol := range payload.Rates {
		if rate, ok := bySymbol[s.symbol]; ok {
			rates[date] = rate
		}
	}

	logger.L.Info("Fetched rate series", "year", year, "symbol", s.symbol, "observations", len(rates))
	return rates, nil
}
