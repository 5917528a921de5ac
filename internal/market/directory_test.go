package market_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dvkrepak/coingecko-crud/internal/market"
	"github.com/dvkrepak/coingecko-crud/internal/models"
	"github.com/dvkrepak/coingecko-crud/internal/testutil"
)

type countingLister struct {
	calls atomic.Int32
	coins []models.CoinListing
	err   error
}

func (l *countingLister) ListCoins(ctx context.Context) ([]models.CoinListing, error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return l.coins, nil
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{
		Addr: testutil.EnvOr("REDIS_ADDR", "localhost:6379"),
		DB:   1, // keep test keys away from a local dev instance
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		t.Skipf("redis not reachable: %v", err)
	}

	t.Cleanup(func() {
		rdb.Del(context.Background(), "coingecko:coins_list")
		rdb.Close()
	})
	return rdb
}

func TestDirectory_ReadThrough(t *testing.T) {
	rdb := setupRedis(t)
	lister := &countingLister{coins: []models.CoinListing{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
	}}
	dir := market.NewDirectory(rdb, lister, time.Minute)
	ctx := context.Background()

	// Miss: fetches from the provider and caches.
	coins, err := dir.Directory(ctx)
	if err != nil {
		t.Fatalf("Directory: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("expected 2 coins, got %d", len(coins))
	}
	if lister.calls.Load() != 1 {
		t.Fatalf("expected 1 provider call, got %d", lister.calls.Load())
	}

	// Hit: served from Redis, no provider call.
	coins, err = dir.Directory(ctx)
	if err != nil {
		t.Fatalf("Directory (cached): %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("expected 2 cached coins, got %d", len(coins))
	}
	if lister.calls.Load() != 1 {
		t.Fatalf("cache hit should not call the provider, got %d calls", lister.calls.Load())
	}
}

func TestDirectory_MissWithProviderDown(t *testing.T) {
	rdb := setupRedis(t)
	lister := &countingLister{err: fmt.Errorf("%w: dial tcp: refused", models.ErrUnavailable)}
	dir := market.NewDirectory(rdb, lister, time.Minute)

	_, err := dir.Directory(context.Background())
	if !errors.Is(err, models.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestDirectory_ExpiredEntryRefetches(t *testing.T) {
	rdb := setupRedis(t)
	lister := &countingLister{coins: []models.CoinListing{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
	}}
	dir := market.NewDirectory(rdb, lister, time.Second)
	ctx := context.Background()

	if _, err := dir.Directory(ctx); err != nil {
		t.Fatalf("Directory: %v", err)
	}
	time.Sleep(1100 * time.Millisecond)

	if _, err := dir.Directory(ctx); err != nil {
		t.Fatalf("Directory after expiry: %v", err)
	}
	if lister.calls.Load() != 2 {
		t.Fatalf("expected refetch after TTL, got %d calls", lister.calls.Load())
	}
}
