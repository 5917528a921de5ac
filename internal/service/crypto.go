package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dvkrepak/coingecko-crud/internal/models"
)

// CryptoStore is the persistence contract for tracked coins.
type CryptoStore interface {
	List(ctx context.Context) ([]models.Crypto, error)
	Get(ctx context.Context, cgID string) (*models.Crypto, error)
	Insert(ctx context.Context, c models.Crypto) (*models.Crypto, error)
	UpdateFields(ctx context.Context, cgID string, upd models.CryptoUpdate) (*models.Crypto, error)
	UpdatePrice(ctx context.Context, cgID string, price float64) (*models.Crypto, error)
	Delete(ctx context.Context, cgID string) (*models.Crypto, error)
}

// MarketFetcher resolves a query and returns current market data.
type MarketFetcher interface {
	Fetch(ctx context.Context, query string) (*models.CoinData, error)
}

// CryptoService wires the store and the market data fetcher behind the
// operations the API and the dashboard share.
type CryptoService struct {
	store   CryptoStore
	fetcher MarketFetcher
}

func NewCryptoService(store CryptoStore, fetcher MarketFetcher) *CryptoService {
	return &CryptoService{
		store:   store,
		fetcher: fetcher,
	}
}

func (s *CryptoService) List(ctx context.Context) ([]models.Crypto, error) {
	return s.store.List(ctx)
}

func (s *CryptoService) Get(ctx context.Context, cgID string) (*models.Crypto, error) {
	return s.store.Get(ctx, cgID)
}

// Create resolves query against the provider, then inserts the coin
// under its lower-cased canonical id. The id is resolved exactly once,
// here; it is never re-resolved afterwards.
func (s *CryptoService) Create(ctx context.Context, query string) (*models.Crypto, error) {
	data, err := s.fetcher.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	cgID := strings.ToLower(data.ID)
	if _, err := s.store.Get(ctx, cgID); err == nil {
		return nil, fmt.Errorf("%w: crypto %q", models.ErrConflict, cgID)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	var price float64
	if data.PriceUSD != nil {
		price = *data.PriceUSD
	}

	return s.store.Insert(ctx, models.Crypto{
		CgID:   cgID,
		Symbol: strings.ToLower(data.Symbol),
		Name:   data.Name,
		Price:  price,
	})
}

func (s *CryptoService) UpdateFields(ctx context.Context, cgID string, upd models.CryptoUpdate) (*models.Crypto, error) {
	return s.store.UpdateFields(ctx, cgID, upd)
}

func (s *CryptoService) Delete(ctx context.Context, cgID string) (*models.Crypto, error) {
	return s.store.Delete(ctx, cgID)
}

// RefreshPrices snapshots the store and re-fetches market data per
// record, writing back every non-nil price it gets. One record's
// failure never aborts the run; outages and gone coins are only
// logged. The returned slice lists what actually changed.
func (s *CryptoService) RefreshPrices(ctx context.Context) ([]models.PriceUpdate, error) {
	cryptos, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var updated []models.PriceUpdate
	for _, c := range cryptos {
		data, err := s.fetcher.Fetch(ctx, c.CgID)
		if err != nil {
			if errors.Is(err, models.ErrUnavailable) {
				fmt.Printf("[REFRESH] Provider unavailable for %s: %v\n", c.CgID, err)
			} else {
				fmt.Printf("[REFRESH] Skipping %s: %v\n", c.CgID, err)
			}
			continue
		}
		if data.PriceUSD == nil {
			fmt.Printf("[REFRESH] No USD price for %s, skipping\n", c.CgID)
			continue
		}

		if _, err := s.store.UpdatePrice(ctx, c.CgID, *data.PriceUSD); err != nil {
			fmt.Printf("[REFRESH] Failed to store price for %s: %v\n", c.CgID, err)
			continue
		}
		updated = append(updated, models.PriceUpdate{CgID: c.CgID, NewPrice: *data.PriceUSD})
	}

	return updated, nil
}
