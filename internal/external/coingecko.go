package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dvkrepak/coingecko-crud/internal/models"
)

const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient talks to the CoinGecko REST API. Every call is a
// single round trip with a bounded timeout; retrying and caching are
// the caller's business.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCoinGeckoClient(baseURL string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ListCoins retrieves the full coin directory (id/symbol/name triples).
// Any failure surfaces as models.ErrUnavailable.
func (c *CoinGeckoClient) ListCoins(ctx context.Context) ([]models.CoinListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/coins/list", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", models.ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: list coins: %v", models.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: list coins: status %d", models.ErrUnavailable, resp.StatusCode)
	}

	var coins []models.CoinListing
	if err := json.NewDecoder(resp.Body).Decode(&coins); err != nil {
		return nil, fmt.Errorf("%w: decode coins list: %v", models.ErrUnavailable, err)
	}

	return coins, nil
}

// coinResponse is the subset of the single-coin payload we consume.
type coinResponse struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	MarketData struct {
		CurrentPrice map[string]float64 `json:"current_price"`
	} `json:"market_data"`
}

// GetCoin looks a coin up by its canonical id and extracts the USD spot
// price. A provider 404 is models.ErrNotFound; transport failures, 5xx
// and unparsable payloads are models.ErrUnavailable.
func (c *CoinGeckoClient) GetCoin(ctx context.Context, id string) (*models.CoinData, error) {
	u := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&community_data=false&developer_data=false",
		c.baseURL, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", models.ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get coin %q: %v", models.ErrUnavailable, id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: coin %q", models.ErrNotFound, id)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: get coin %q: status %d", models.ErrUnavailable, id, resp.StatusCode)
	}

	var data coinResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode coin %q: %v", models.ErrUnavailable, id, err)
	}

	out := &models.CoinData{
		ID:     data.ID,
		Symbol: data.Symbol,
		Name:   data.Name,
	}
	if usd, ok := data.MarketData.CurrentPrice["usd"]; ok {
		out.PriceUSD = &usd
	}
	return out, nil
}
