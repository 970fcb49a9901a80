package marketdata

import (
	"github.com/wonny/riskscope/pkg/config"
	"github.com/wonny/riskscope/pkg/database"
	"github.com/wonny/riskscope/pkg/httputil"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/redis"
)

// NewSource assembles the layered price source:
// Redis cache -> Postgres store (when db is set) -> Yahoo/FRED router.
func NewSource(cfg *config.Config, rdb *redis.Client, db *database.DB, log *logger.Logger) Source {
	md := cfg.MarketData
	limiter := redis.NewRateLimiter(rdb, "riskscope")

	yahooHTTP := httputil.New(log).
		WithLocalLimit(md.RequestsPerSec).
		WithRateLimiter(limiter, redis.YahooQuota)
	fredHTTP := httputil.New(log).
		WithRateLimiter(limiter, redis.FREDQuota)

	var src Source = NewRouter(
		NewYahooClient(yahooHTTP, md.YahooBaseURL, log),
		NewFREDClient(fredHTTP, md.FREDBaseURL, md.FREDAPIKey, log),
		md.HistoryStart,
	)

	if db != nil {
		src = NewPersistentSource(src, NewPriceStore(db.Pool), md.CacheTTL, log)
	}

	return NewCachedSource(src, redis.NewCache(rdb, "riskscope"), md.CacheTTL, md.HistoryStart, log)
}
