package marketdata

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/riskscope/internal/returns"
)

// MemorySource serves histories from memory; used by tests and offline runs
type MemorySource struct {
	mu     sync.RWMutex
	prices map[string][]returns.Price
}

// NewMemorySource creates an empty in-memory source
func NewMemorySource() *MemorySource {
	return &MemorySource{prices: make(map[string][]returns.Price)}
}

// Put stores the history of an asset
func (m *MemorySource) Put(assetID string, prices []returns.Price) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[assetID] = append([]returns.Price(nil), prices...)
}

// History implements Source
func (m *MemorySource) History(ctx context.Context, assetID string) ([]returns.Price, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prices, ok := m.prices[assetID]
	if !ok || len(prices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, assetID)
	}
	return append([]returns.Price(nil), prices...), nil
}
