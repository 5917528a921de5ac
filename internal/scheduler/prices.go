package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dvkrepak/coingecko-crud/internal/models"
)

// ErrRefreshInFlight is returned when a refresh is requested while a
// previous run has not finished yet.
var ErrRefreshInFlight = errors.New("price refresh already in flight")

// PriceRefresher runs one full refresh pass and reports what changed.
type PriceRefresher interface {
	RefreshPrices(ctx context.Context) ([]models.PriceUpdate, error)
}

// Notifier posts a human-readable status line to an external channel.
type Notifier interface {
	Send(msg string)
	Enabled() bool
}

type PriceSchedulerConfig struct {
	Interval   time.Duration // default 10m
	RunTimeout time.Duration // default 5m, bounds one full pass
}

// PriceScheduler runs the refresher once at startup and then on a
// fixed interval. Runs never overlap: a tick arriving while a run is
// in flight is skipped, not queued.
type PriceScheduler struct {
	refresher PriceRefresher
	notify    Notifier
	cfg       PriceSchedulerConfig

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	inFlight atomic.Bool
}

func NewPriceScheduler(refresher PriceRefresher, notify Notifier, cfg PriceSchedulerConfig) *PriceScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	return &PriceScheduler{
		refresher: refresher,
		notify:    notify,
		cfg:       cfg,
	}
}

func (s *PriceScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		fmt.Println("[SCHEDULER] Already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	// Immediate pass on startup, then the recurring ticker.
	go func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			fmt.Printf("[SCHEDULER] Initial price refresh failed: %v\n", err)
		}
	}()

	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				if _, err := s.RunNow(context.Background()); err != nil {
					fmt.Printf("[SCHEDULER] Price refresh failed: %v\n", err)
				}
			}
		}
	}()

	fmt.Printf("[SCHEDULER] Started (every %s)\n", s.cfg.Interval)
}

func (s *PriceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
	fmt.Println("[SCHEDULER] Stopped")
}

func (s *PriceScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow triggers one refresh pass. Returns ErrRefreshInFlight when a
// previous pass is still going; the caller's turn is simply dropped.
func (s *PriceScheduler) RunNow(ctx context.Context) ([]models.PriceUpdate, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		fmt.Println("[SCHEDULER] Previous refresh still running, skipping")
		return nil, ErrRefreshInFlight
	}
	defer s.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	start := time.Now()
	updated, err := s.refresher.RefreshPrices(ctx)
	if err != nil {
		return nil, err
	}

	fmt.Printf("[SCHEDULER] Updated prices for %d cryptos in %.1fs\n",
		len(updated), time.Since(start).Seconds())

	if s.notify != nil && s.notify.Enabled() {
		s.notify.Send(fmt.Sprintf("Price refresh complete: %d coins updated", len(updated)))
	}

	return updated, nil
}
