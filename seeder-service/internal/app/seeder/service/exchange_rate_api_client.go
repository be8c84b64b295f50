package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"techdeals/seeder-service/internal/app/seeder/entity"
)

const maxRatesPayload = 1 << 20

var ErrEmptyRates = errors.New("rates API returned no rates")

// ExchangeRateAPIClientImpl talks to a {base, date, rates} JSON endpoint.
type ExchangeRateAPIClientImpl struct {
	apiURL     string
	httpClient *http.Client
}

func NewExchangeRateAPIClient(apiURL string, timeout time.Duration) *ExchangeRateAPIClientImpl {
	return &ExchangeRateAPIClientImpl{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *ExchangeRateAPIClientImpl) FetchRates(ctx context.Context) (*entity.ExchangeRatesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "techdeals-seeder")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxRatesPayload)
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(body, 512))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, snippet)
	}

	var payload entity.ExchangeRatesResponse
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rates payload: %w", err)
	}

	for currency, rate := range payload.Rates {
		if rate <= 0 {
			delete(payload.Rates, currency)
		}
	}
	if len(payload.Rates) == 0 {
		return nil, ErrEmptyRates
	}
	return &payload, nil
}
