package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dvkrepak/coingecko-crud/internal/models"
)

const directoryKey = "coingecko:coins_list"

// CoinLister is the slice of the provider client the directory needs.
type CoinLister interface {
	ListCoins(ctx context.Context) ([]models.CoinListing, error)
}

// Directory is a read-through Redis cache over the provider's full
// coin list. One key, whole list replaced atomically, fixed TTL. A
// concurrent miss may fetch twice; the fetch is idempotent and the
// last writer wins.
type Directory struct {
	rdb    *redis.Client
	lister CoinLister
	ttl    time.Duration
}

func NewDirectory(rdb *redis.Client, lister CoinLister, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Directory{
		rdb:    rdb,
		lister: lister,
		ttl:    ttl,
	}
}

// Directory returns the cached coin list, fetching from the provider
// on a miss. A provider failure on a miss surfaces as
// models.ErrUnavailable; a Redis failure only costs the caching.
func (d *Directory) Directory(ctx context.Context) ([]models.CoinListing, error) {
	cached, err := d.rdb.Get(ctx, directoryKey).Bytes()
	if err == nil {
		var coins []models.CoinListing
		if jsonErr := json.Unmarshal(cached, &coins); jsonErr == nil {
			return coins, nil
		}
		fmt.Println("[CACHE] Discarding unparsable coins list entry")
	} else if !errors.Is(err, redis.Nil) {
		fmt.Printf("[CACHE] Redis read failed: %v\n", err)
	}

	coins, err := d.lister.ListCoins(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(coins); err == nil {
		if err := d.rdb.Set(ctx, directoryKey, payload, d.ttl).Err(); err != nil {
			fmt.Printf("[CACHE] Failed to store coins list: %v\n", err)
		} else {
			fmt.Printf("[CACHE] Cached %d coins (ttl %s)\n", len(coins), d.ttl)
		}
	}

	return coins, nil
}

// Ping reports Redis connectivity for the health endpoint.
func (d *Directory) Ping(ctx context.Context) error {
	return d.rdb.Ping(ctx).Err()
}
