/*
scheduler.go - Background report cache warmer

PURPOSE:
  Periodically re-runs every stored scenario and refreshes its cached
  report. Cached entries carry a TTL, so without warming the first
  request after expiry pays the recomputation; with many injections and
  long windows that keeps dashboard loads flat.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Walks all stored scenarios, rebuilds each configuration and
    refreshes the cache entry under its configuration key
  - Skips scenarios whose stored document no longer parses

CONFIGURATION:
  - CheckInterval: How often to warm (default: 1 hour)
  - Enabled: Whether the warmer is active (default: true)

USAGE:
  warmer := NewCacheWarmer(store, handler)
  warmer.Start()
  // ... later
  warmer.Stop()

SEE ALSO:
  - handlers.go: runCached, the read path this keeps warm
  - cache/cache.go: Key derivation
*/
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/cca-simulator/cache"
	"github.com/warp/cca-simulator/engine"
	"github.com/warp/cca-simulator/store/sqlite"
)

// CacheWarmer keeps stored scenarios' reports in the cache.
type CacheWarmer struct {
	Store         *sqlite.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	running bool
	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// NewCacheWarmer creates a warmer with the default interval.
func NewCacheWarmer(store *sqlite.Store, handler *Handler) *CacheWarmer {
	return &CacheWarmer{
		Store:         store,
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
	}
}

// Start launches the background loop. Calling Start twice is a no-op.
func (cw *CacheWarmer) Start() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.Enabled || cw.running {
		return
	}
	cw.running = true

	// The loop reads only its own ticker and stop channel, never the
	// struct fields, so Stop can tear the fields down safely.
	ticker := time.NewTicker(cw.CheckInterval)
	stop := make(chan struct{})
	cw.ticker = ticker
	cw.stop = stop
	cw.wg.Add(1)

	go func() {
		defer cw.wg.Done()
		// Warm once at startup, then on every tick
		cw.warmAll(context.Background())
		for {
			select {
			case <-ticker.C:
				cw.warmAll(context.Background())
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight pass to finish.
func (cw *CacheWarmer) Stop() {
	cw.mu.Lock()
	if !cw.running {
		cw.mu.Unlock()
		return
	}
	cw.running = false
	cw.ticker.Stop()
	close(cw.stop)
	cw.ticker = nil
	cw.stop = nil
	cw.mu.Unlock()

	cw.wg.Wait()
}

// warmAll refreshes every stored scenario's cached report.
func (cw *CacheWarmer) warmAll(ctx context.Context) {
	records, err := cw.Store.ListScenarios(ctx)
	if err != nil {
		slog.Warn("cache warm pass failed to list scenarios", "error", err)
		return
	}

	warmed := 0
	for _, rec := range records {
		cfg, err := cw.Handler.Factory.ParseScenario(rec.ConfigJSON)
		if err != nil {
			slog.Warn("skipping unparseable scenario during warm", "id", rec.ID, "error", err)
			continue
		}
		dto := toReportDTO(engine.Run(cfg))
		raw, err := json.Marshal(dto)
		if err != nil {
			continue
		}
		if err := cw.Handler.Cache.Set(ctx, cache.Key(cfg), string(raw)); err != nil {
			slog.Warn("failed to warm report cache", "id", rec.ID, "error", err)
			continue
		}
		warmed++
	}
	slog.Debug("cache warm pass complete", "scenarios", warmed)
}
