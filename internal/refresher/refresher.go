package refresher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nileshgupta/stocklens/internal/model"
)

// StatusFetcher refreshes the market status. Implemented by the
// insights service.
type StatusFetcher interface {
	RefreshMarketStatus(ctx context.Context) (model.MarketStatus, error)
}

// Config holds refresher configuration.
type Config struct {
	Interval time.Duration // Refresh interval (default: 10m)
	Timeout  time.Duration // Per-refresh timeout (default: 2m)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 10 * time.Minute,
		Timeout:  2 * time.Minute,
	}
}

// Refresher periodically refreshes the market status in the background.
type Refresher struct {
	cfg     Config
	fetcher StatusFetcher
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Refresher.
func New(cfg Config, fetcher StatusFetcher, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Start begins the refresh loop.
func (r *Refresher) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.run()

	r.logger.Info("status refresher started", "interval", r.cfg.Interval)

	return nil
}

// Stop gracefully shuts down the refresher.
func (r *Refresher) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("status refresher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main refresh loop.
func (r *Refresher) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	// Refresh immediately on start.
	r.refresh()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.refresh()
		}
	}
}

// refresh performs a single refresh with a bounded timeout.
func (r *Refresher) refresh() {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.ctx, r.cfg.Timeout)
	defer cancel()

	status, err := r.fetcher.RefreshMarketStatus(ctx)
	if err != nil {
		r.logger.Warn("status refresh failed", "error", err)
		return
	}

	r.logger.Info("market status refreshed",
		"status", string(status.Status),
		"duration", time.Since(start),
	)
}
