package market

import (
	"context"
	"fmt"
	"time"

	"github.com/dvkrepak/coingecko-crud/internal/models"
)

// CoinGetter is the slice of the provider client the fetcher needs.
type CoinGetter interface {
	GetCoin(ctx context.Context, id string) (*models.CoinData, error)
}

// Fetcher resolves a query to a canonical id and retrieves that coin's
// current market data in a single provider round trip.
type Fetcher struct {
	resolver *Resolver
	client   CoinGetter
}

func NewFetcher(resolver *Resolver, client CoinGetter) *Fetcher {
	return &Fetcher{
		resolver: resolver,
		client:   client,
	}
}

// Fetch propagates ErrNotFound and AmbiguousError from resolution, and
// keeps the provider's 404 (ErrNotFound) distinct from outages
// (ErrUnavailable) so callers can report them differently.
func (f *Fetcher) Fetch(ctx context.Context, query string) (*models.CoinData, error) {
	id, err := f.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := f.client.GetCoin(ctx, id)
	if err != nil {
		return nil, err
	}
	fmt.Printf("[COINGECKO] Fetched %s in %.2fs\n", id, time.Since(start).Seconds())

	return data, nil
}
