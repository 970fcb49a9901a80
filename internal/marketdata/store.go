package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/riskscope/internal/returns"
	"github.com/wonny/riskscope/pkg/logger"
	"github.com/wonny/riskscope/pkg/metrics"
)

// PriceStore persists daily closes in Postgres
// ⭐ SSOT: 가격 히스토리 저장소는 여기서만
type PriceStore struct {
	pool *pgxpool.Pool
}

// NewPriceStore creates a new price store
func NewPriceStore(pool *pgxpool.Pool) *PriceStore {
	return &PriceStore{pool: pool}
}

// Load returns the stored history of an asset and when it was last fetched
func (s *PriceStore) Load(ctx context.Context, assetID string) ([]returns.Price, time.Time, error) {
	query := `
		SELECT trade_date, close, fetched_at
		FROM price_history
		WHERE asset_id = $1
		ORDER BY trade_date ASC
	`

	rows, err := s.pool.Query(ctx, query, assetID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load %s: %w", assetID, err)
	}
	defer rows.Close()

	var (
		prices  []returns.Price
		fetched time.Time
	)
	for rows.Next() {
		var p returns.Price
		var at time.Time
		if err := rows.Scan(&p.Date, &p.Close, &at); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan %s: %w", assetID, err)
		}
		p.Date = returns.Day(p.Date)
		if at.After(fetched) {
			fetched = at
		}
		prices = append(prices, p)
	}
	return prices, fetched, rows.Err()
}

// Save upserts prices of an asset in one batch
func (s *PriceStore) Save(ctx context.Context, assetID, source string, prices []returns.Price) error {
	if len(prices) == 0 {
		return nil
	}

	query := `
		INSERT INTO price_history (asset_id, trade_date, close, source, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (asset_id, trade_date) DO UPDATE SET
			close = EXCLUDED.close,
			source = EXCLUDED.source,
			fetched_at = EXCLUDED.fetched_at
	`

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(query, assetID, p.Date, p.Close, source, now)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save %s: %w", assetID, err)
	}
	return nil
}

// PersistentSource serves histories from Postgres while they are fresh
// and refreshes them from the wrapped source otherwise
type PersistentSource struct {
	next   Source
	store  *PriceStore
	maxAge time.Duration
	logger *logger.Logger
}

// NewPersistentSource wraps next with a Postgres store
func NewPersistentSource(next Source, store *PriceStore, maxAge time.Duration, log *logger.Logger) *PersistentSource {
	return &PersistentSource{
		next:   next,
		store:  store,
		maxAge: maxAge,
		logger: log.WithComponent("price-store"),
	}
}

// History implements Source
func (p *PersistentSource) History(ctx context.Context, assetID string) ([]returns.Price, error) {
	stored, fetched, err := p.store.Load(ctx, assetID)
	if err != nil {
		p.logger.WithError(err).WithField("asset", assetID).Warn("price store read failed")
	}
	if err == nil && len(stored) > 0 && time.Since(fetched) < p.maxAge {
		metrics.CacheLookups.WithLabelValues("postgres", "hit").Inc()
		return stored, nil
	}
	metrics.CacheLookups.WithLabelValues("postgres", "miss").Inc()

	prices, err := p.next.History(ctx, assetID)
	if err != nil {
		return nil, err
	}

	source := "upstream"
	if a, ok := Lookup(assetID); ok {
		source = string(a.Kind)
	}
	if err := p.store.Save(ctx, assetID, source, returns.Clean(prices)); err != nil {
		p.logger.WithError(err).WithField("asset", assetID).Warn("price store write failed")
	}
	return prices, nil
}
