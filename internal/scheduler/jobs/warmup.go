package jobs

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/riskscope/internal/marketdata"
	"github.com/wonny/riskscope/pkg/logger"
)

// DefaultWarmupSchedule runs after the US close on weekdays (with seconds)
const DefaultWarmupSchedule = "0 30 22 * * 1-5"

// Invalidator drops a cached history so the next read refetches it
type Invalidator interface {
	Invalidate(ctx context.Context, assetID string) error
}

// WarmupResult summarizes one warm-up pass
type WarmupResult struct {
	Warmed int
	Failed map[string]string
}

// WarmCacheJob refreshes the price history of every known asset
// ⭐ SSOT: 가격 캐시 워밍은 이 Job에서만
type WarmCacheJob struct {
	source      marketdata.Source
	assets      []string
	schedule    string
	parallelism int
	logger      *logger.Logger
}

// NewWarmCacheJob creates a warm-up job over the given assets.
// An empty asset list means the whole metadata table.
func NewWarmCacheJob(source marketdata.Source, assets []string, schedule string, log *logger.Logger) *WarmCacheJob {
	if len(assets) == 0 {
		for _, a := range marketdata.Assets() {
			assets = append(assets, a.ID)
		}
	}
	if schedule == "" {
		schedule = DefaultWarmupSchedule
	}
	return &WarmCacheJob{
		source:      source,
		assets:      assets,
		schedule:    schedule,
		parallelism: 4,
		logger:      log.WithComponent("warmup"),
	}
}

// Name returns the job name
func (j *WarmCacheJob) Name() string {
	return "price_cache_warmup"
}

// Schedule returns the cron schedule
func (j *WarmCacheJob) Schedule() string {
	return j.schedule
}

// Run refreshes every asset. It fails only when no asset could be warmed.
func (j *WarmCacheJob) Run(ctx context.Context) error {
	res, err := j.Warm(ctx)
	if err != nil {
		return err
	}
	if res.Warmed == 0 && len(res.Failed) > 0 {
		return fmt.Errorf("warm-up failed for all %d assets", len(res.Failed))
	}
	return nil
}

// Warm invalidates and refetches each asset, collecting per-asset failures
func (j *WarmCacheJob) Warm(ctx context.Context) (WarmupResult, error) {
	j.logger.WithField("assets", len(j.assets)).Info("Starting price cache warm-up")

	inv, canInvalidate := j.source.(Invalidator)

	var mu sync.Mutex
	res := WarmupResult{Failed: make(map[string]string)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.parallelism)
	for _, id := range j.assets {
		g.Go(func() error {
			if canInvalidate {
				if err := inv.Invalidate(gctx, id); err != nil {
					j.logger.WithError(err).WithField("asset", id).Warn("cache invalidation failed")
				}
			}

			_, err := j.source.History(gctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				j.logger.WithError(err).WithField("asset", id).Warn("warm-up fetch failed")
				res.Failed[id] = err.Error()
				return nil
			}
			res.Warmed++
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return res, err
	}

	j.logger.WithFields(map[string]interface{}{
		"warmed": res.Warmed,
		"failed": len(res.Failed),
	}).Info("Price cache warm-up completed")
	return res, nil
}
