package ports

import "github.com/shopspring/decimal"

type Ticker interface {
	GetBaseCurrency() string
	GetQuoteCurrency() string
}

type RateFeed interface {
	GetTicker() Ticker
	GetPrice() decimal.Decimal
}

// RateFeeder streams indicative bitcoin prices from a public market feed.
type RateFeeder interface {
	WellKnownTickers() []Ticker
	SubscribeTickers([]Ticker) error

	Start() error
	Stop()

	FeedChan() chan RateFeed
}
