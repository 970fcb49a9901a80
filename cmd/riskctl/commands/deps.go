package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/riskscope/internal/factor"
	"github.com/wonny/riskscope/internal/marketdata"
	"github.com/wonny/riskscope/internal/portfolio"
	"github.com/wonny/riskscope/internal/risk"
	"github.com/wonny/riskscope/internal/scenario"
	"github.com/wonny/riskscope/pkg/config"
	"github.com/wonny/riskscope/pkg/database"
	"github.com/wonny/riskscope/pkg/httputil"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/redis"
)

// deps wires the engine the way every command needs it
// ⭐ SSOT: 의존성 조립은 여기서만
type deps struct {
	cfg    *config.Config
	log    *logger.Logger
	rdb    *redis.Client
	db     *database.DB
	model  *factor.Model
	source marketdata.Source
}

// buildDeps loads config and connects optional storage.
// Redis failures degrade to no cache; a configured database must connect.
func buildDeps(ctx context.Context) (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	d := &deps{cfg: cfg, log: log}

	// 1. Factor model
	if d.model, err = modelFor(cfg); err != nil {
		return nil, err
	}

	// 2. Redis (cache + rate limiter)
	d.rdb, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, running without price cache")
		d.rdb = redis.Disabled()
	}

	// 3. PostgreSQL price store (optional)
	d.db, err = database.New(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		d.db = nil
	case err != nil:
		d.close()
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		if err := d.db.Migrate(ctx); err != nil {
			d.close()
			return nil, err
		}
		log.Info("Connected to database")
	}

	// 4. Layered price source
	d.source = marketdata.NewSource(cfg, d.rdb, d.db, log)

	return d, nil
}

// close releases storage connections
func (d *deps) close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.rdb != nil {
		_ = d.rdb.Close()
	}
}

// engine builds the configured VaR/ES engine
func (d *deps) engine() (risk.VaRESEngine, error) {
	engine, err := risk.NewEngine(d.cfg.VaREngine, httputil.NewWithTimeout(d.log, d.cfg.VaREngine.Timeout))
	if err != nil {
		return nil, fmt.Errorf("build var engine: %w", err)
	}
	return engine, nil
}

// aggregator builds the portfolio risk aggregator with the configured VaR engine
func (d *deps) aggregator() (*portfolio.Aggregator, error) {
	engine, err := d.engine()
	if err != nil {
		return nil, err
	}

	pcfg := portfolio.DefaultConfig()
	pcfg.MarketIndex = d.cfg.MarketData.MarketIndexAsset

	return portfolio.NewAggregator(pcfg, d.source, risk.NewEstimator(engine, d.log), d.log), nil
}

// runner builds the scenario runner with the configured path counts
func (d *deps) runner() *scenario.Runner {
	return scenario.NewRunner(d.model, d.log,
		scenario.WithPaths(d.cfg.Simulation.Paths),
		scenario.WithDays(d.cfg.Simulation.Days),
	)
}
