package coinbasefeeder

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
)

const (
	// CoinbaseWebSocketURL is the url to open a WebSocket connection with
	// Coinbase.
	CoinbaseWebSocketURL = "wss://ws-feed.exchange.coinbase.com"
)

var (
	wellKnownTickers = []ports.Ticker{
		NewTicker("BTC", "USD"),
		NewTicker("BTC", "EUR"),
		NewTicker("BTC", "GBP"),
	}
)

type service struct {
	url         string
	conn        *websocket.Conn
	writeTicker *time.Ticker
	lock        *sync.RWMutex
	chLock      *sync.Mutex

	tickerByProduct     map[string]ports.Ticker
	latestFeedsByTicker map[string]ports.RateFeed
	feedChan            chan ports.RateFeed
	quitChan            chan struct{}
}

// NewCoinbaseRateFeeder returns a feeder streaming the latest prices of the
// subscribed tickers every interval. An empty url defaults to the Coinbase
// public feed.
func NewCoinbaseRateFeeder(url string, interval time.Duration) (ports.RateFeeder, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	if url == "" {
		url = CoinbaseWebSocketURL
	}

	return &service{
		url:                 url,
		writeTicker:         time.NewTicker(interval),
		lock:                &sync.RWMutex{},
		chLock:              &sync.Mutex{},
		latestFeedsByTicker: make(map[string]ports.RateFeed),
		feedChan:            make(chan ports.RateFeed),
		quitChan:            make(chan struct{}, 1),
	}, nil
}

func (s *service) WellKnownTickers() []ports.Ticker {
	return wellKnownTickers
}

func (s *service) SubscribeTickers(tickers []ports.Ticker) error {
	products := make([]string, 0, len(tickers))
	tickerByProduct := make(map[string]ports.Ticker)
	for _, t := range tickers {
		products = append(products, productID(t))
		tickerByProduct[productID(t)] = t
	}

	conn, err := connectAndSubscribe(s.url, products)
	if err != nil {
		return err
	}

	s.conn = conn
	s.tickerByProduct = tickerByProduct
	return nil
}

func (s *service) Start() error {
	if s.conn == nil {
		return fmt.Errorf("feeder must subscribe tickers before starting")
	}

	go func() {
		for range s.writeTicker.C {
			s.writeToFeedChan()
		}
	}()

	mustReconnect, err := s.start()
	for mustReconnect {
		log.WithError(err).Warn("connection dropped unexpectedly. Trying to reconnect...")

		products := make([]string, 0, len(s.tickerByProduct))
		for product := range s.tickerByProduct {
			products = append(products, product)
		}

		var conn *websocket.Conn
		conn, err = connectAndSubscribe(s.url, products)
		if err != nil {
			s.shutdown()
			return err
		}
		s.conn = conn

		log.Debug("connection and subscriptions re-established. Restarting...")
		mustReconnect, err = s.start()
	}

	return err
}

func (s *service) Stop() {
	select {
	case s.quitChan <- struct{}{}:
	default:
	}
	// Unblocks a pending read so that the quit signal is handled.
	if s.conn != nil {
		//nolint
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
	}
}

func (s *service) FeedChan() chan ports.RateFeed {
	return s.feedChan
}

func (s *service) start() (mustReconnect bool, err error) {
	for {
		select {
		case <-s.quitChan:
			return false, s.shutdown()
		default:
			msg := make(map[string]interface{})
			if err := s.conn.ReadJSON(&msg); err != nil {
				select {
				case <-s.quitChan:
					return false, s.shutdown()
				default:
				}
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure) {
					return true, err
				}
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return false, s.shutdown()
				}
				log.WithError(err).Warn("could not read message from socket")
				return true, err
			}

			feed := s.parseFeed(msg)
			if feed == nil {
				continue
			}

			s.writeRateFeed(productID(feed.GetTicker()), feed)
		}
	}
}

func (s *service) shutdown() error {
	s.writeTicker.Stop()
	s.closeChannels()
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *service) readRateFeeds() []ports.RateFeed {
	s.lock.RLock()
	defer s.lock.RUnlock()

	feeds := make([]ports.RateFeed, 0, len(s.latestFeedsByTicker))
	for _, feed := range s.latestFeedsByTicker {
		feeds = append(feeds, feed)
	}
	return feeds
}

func (s *service) writeRateFeed(product string, feed ports.RateFeed) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.latestFeedsByTicker[product] = feed
}

func (s *service) writeToFeedChan() {
	s.chLock.Lock()
	defer s.chLock.Unlock()

	if s.feedChan == nil {
		return
	}
	for _, feed := range s.readRateFeeds() {
		select {
		case s.feedChan <- feed:
		default:
		}
	}
}

func (s *service) closeChannels() {
	s.chLock.Lock()
	defer s.chLock.Unlock()

	if s.feedChan != nil {
		close(s.feedChan)
		s.feedChan = nil
	}
}

func (s *service) parseFeed(msg map[string]interface{}) ports.RateFeed {
	if e, ok := msg["type"].(string); !ok || e != "ticker" {
		return nil
	}
	product, ok := msg["product_id"].(string)
	if !ok {
		return nil
	}
	priceStr, ok := msg["price"].(string)
	if !ok {
		return nil
	}
	t, ok := s.tickerByProduct[product]
	if !ok {
		return nil
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil
	}

	return &rateFeed{
		ticker: t,
		price:  price.Round(2),
	}
}

func connectAndSubscribe(url string, products []string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	msg := map[string]interface{}{
		"type":        "subscribe",
		"product_ids": products,
		"channels": []string{
			"heartbeat", "ticker",
		},
	}

	if err := conn.WriteJSON(msg); err != nil {
		return nil, fmt.Errorf("cannot subscribe to given tickers: %s", err)
	}

	for {
		msg := make(map[string]interface{})
		if err := conn.ReadJSON(&msg); err != nil {
			return nil, fmt.Errorf(
				"cannot read response of subscription to tickers: %s", err,
			)
		}

		msgType, _ := msg["type"].(string)
		if msgType == "error" {
			reason, _ := msg["reason"].(string)
			return nil, fmt.Errorf("subscription rejected: %s", reason)
		}

		if msgType == "subscriptions" {
			break
		}
	}

	return conn, nil
}
