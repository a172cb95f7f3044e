package application

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
)

// TickerPrice is the latest indicative price of a ticker.
type TickerPrice struct {
	BaseCurrency  string
	QuoteCurrency string
	Price         decimal.Decimal
	UpdatedAt     time.Time
}

// TickerService keeps the latest indicative prices streamed by a public
// market feed. They are shown when partner rates are not available.
type TickerService interface {
	Start() error
	Stop()
	GetTicker(base, quote string) (*TickerPrice, error)
	ListTickers() []TickerPrice
}

type tickerService struct {
	feeder ports.RateFeeder

	lock    sync.RWMutex
	prices  map[string]TickerPrice
	started bool
}

func NewTickerService(feeder ports.RateFeeder) TickerService {
	return &tickerService{
		feeder: feeder,
		prices: make(map[string]TickerPrice),
	}
}

func (s *tickerService) Start() error {
	if s.feeder == nil {
		return nil
	}

	s.lock.Lock()
	if s.started {
		s.lock.Unlock()
		return nil
	}
	s.started = true
	s.lock.Unlock()

	if err := s.feeder.SubscribeTickers(s.feeder.WellKnownTickers()); err != nil {
		return fmt.Errorf("failed to subscribe tickers: %w", err)
	}

	go func() {
		if err := s.feeder.Start(); err != nil {
			log.WithError(err).Warn("rate feeder stopped")
		}
	}()

	go func() {
		for feed := range s.feeder.FeedChan() {
			s.updatePrice(feed)
		}
		log.Debug("rate feed channel closed")
	}()

	return nil
}

func (s *tickerService) Stop() {
	if s.feeder == nil {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.started {
		s.feeder.Stop()
		s.started = false
	}
}

func (s *tickerService) GetTicker(base, quote string) (*TickerPrice, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	price, ok := s.prices[tickerKey(base, quote)]
	if !ok {
		return nil, fmt.Errorf("no price for %s-%s", base, quote)
	}
	return &price, nil
}

func (s *tickerService) ListTickers() []TickerPrice {
	s.lock.RLock()
	defer s.lock.RUnlock()

	list := make([]TickerPrice, 0, len(s.prices))
	for _, p := range s.prices {
		list = append(list, p)
	}
	return list
}

func (s *tickerService) updatePrice(feed ports.RateFeed) {
	ticker := feed.GetTicker()
	price := TickerPrice{
		BaseCurrency:  ticker.GetBaseCurrency(),
		QuoteCurrency: ticker.GetQuoteCurrency(),
		Price:         feed.GetPrice(),
		UpdatedAt:     time.Now(),
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.prices[tickerKey(price.BaseCurrency, price.QuoteCurrency)] = price
}

func tickerKey(base, quote string) string {
	return fmt.Sprintf("%s-%s", base, quote)
}
