package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/frankfurter/internal/config"
	"github.com/samvad-hq/frankfurter/internal/logger"
	"github.com/samvad-hq/frankfurter/internal/storage"
	"github.com/samvad-hq/frankfurter/internal/watcher"
	"github.com/samvad-hq/frankfurter/pkg/frankfurter"
	"github.com/samvad-hq/frankfurter/pkg/httpclient"
	"github.com/samvad-hq/frankfurter/pkg/publishers"
	"github.com/samvad-hq/frankfurter/pkg/watchlist"
)

// RateWatch is the rate watcher runtime. It owns the poll loop and the resources
// the watcher service uses: API client, publishers and snapshot storage.
type RateWatch struct {
	cfg          *config.Config
	watches      *watchlist.Registry
	fanout       *publishers.Fanout
	service      *watcher.Service
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewRateWatch builds the runtime from config files.
func NewRateWatch(ctx context.Context, cfg *config.Config, log logger.Logger) (*RateWatch, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	watches, err := watchlist.LoadRegistry(cfg.WatchlistFile)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	watchIDs := make([]string, 0, len(watches.All()))
	for _, w := range watches.Enabled() {
		watchIDs = append(watchIDs, w.ID)
	}
	log.InfoObj("watchlist loaded", "watchlist_meta", map[string]any{
		"total":   len(watches.All()),
		"enabled": watchIDs,
	})

	client, err := frankfurter.Parse(cfg.FrankfurterURL)
	if err != nil {
		return nil, fmt.Errorf("init frankfurter client: %w", err)
	}
	client = client.
		WithClient(httpclient.NewRestyClient(cfg.HTTPTimeout)).
		WithLogger(log)
	log.InfoObj("frankfurter client ready", "frankfurter_meta", map[string]any{
		"base_url":        client.URL().String(),
		"timeout_seconds": int(cfg.HTTPTimeout.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		SnapshotTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"snapshot_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	processor := watcher.NewProcessor(client, fanout, store, log)

	return &RateWatch{
		cfg:          cfg,
		watches:      watches,
		fanout:       fanout,
		service:      watcher.NewService(processor, cfg.RequestDelay),
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
	}, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Run starts the poll loop until the context is cancelled.
func (r *RateWatch) Run(ctx context.Context) error {
	if r == nil || r.service == nil {
		return fmt.Errorf("rate watcher is not initialized")
	}
	defer r.close()

	watches := r.watches.Enabled()
	if len(watches) == 0 {
		r.log.WarnObj("no enabled watches; rate watcher idle", "watchlist_file", r.cfg.WatchlistFile)
		<-ctx.Done()
		return nil
	}

	r.log.InfoObj("rate watcher loop starting", "ratewatch_state", map[string]any{
		"watches_count":    len(watches),
		"publishers_count": r.fanout.Size(),
		"poll_interval":    r.pollInterval.String(),
	})

	if err := r.runOnce(ctx, watches); err != nil {
		r.log.ErrorObj("initial poll failed", "error", err)
	}

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("rate watcher loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := r.runOnce(ctx, watches); err != nil {
				r.log.ErrorObj("scheduled poll failed", "error", err)
			}
		}
	}
}

func (r *RateWatch) runOnce(ctx context.Context, watches []watchlist.Watch) error {
	start := time.Now()
	summary, err := r.service.Run(ctx, watches)
	r.log.InfoObj("poll completed", "poll_meta", map[string]any{
		"watches_count": len(watches),
		"published":     summary.Published,
		"unchanged":     summary.Unchanged,
		"failed":        summary.Failed,
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return err
}

func (r *RateWatch) close() {
	if r == nil {
		return
	}
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("publisher close failed", "error", err)
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.ErrorObj("storage close failed", "error", err)
		}
	}
}
