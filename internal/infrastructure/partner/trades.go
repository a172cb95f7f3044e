package partner

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
)

const DefaultMonitorInterval = time.Minute

// TradesCache keeps the latest trade list fetched from a partner.
type TradesCache struct {
	lock   sync.RWMutex
	trades []domain.Trade
}

func (c *TradesCache) Set(trades []domain.Trade) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.trades = append([]domain.Trade{}, trades...)
}

func (c *TradesCache) Get() []domain.Trade {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return append([]domain.Trade{}, c.trades...)
}

// Update replaces the cached trade with the same id, if any.
func (c *TradesCache) Update(trade domain.Trade) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for i := range c.trades {
		if c.trades[i].ID == trade.ID {
			c.trades[i] = trade
			return
		}
	}
}

// MonitorTrades calls fetch every interval while there are pending trades in
// the cache, until ctx is done.
func MonitorTrades(
	ctx context.Context, exchange string, interval time.Duration,
	cache *TradesCache, fetch func(ctx context.Context) ([]domain.Trade, error),
) error {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !hasPending(cache.Get()) {
				continue
			}
			if _, err := fetch(ctx); err != nil {
				log.WithError(err).Debugf("%s: failed to refresh pending trades", exchange)
			}
		}
	}
}

func hasPending(trades []domain.Trade) bool {
	for _, t := range trades {
		if t.IsPending() {
			return true
		}
	}
	return false
}
