package coinbasefeeder

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
)

type rateFeed struct {
	ticker ports.Ticker
	price  decimal.Decimal
}

func (f *rateFeed) GetTicker() ports.Ticker {
	return f.ticker
}

func (f *rateFeed) GetPrice() decimal.Decimal {
	return f.price
}

type ticker struct {
	baseCurrency  string
	quoteCurrency string
}

// NewTicker returns a ticker for the given currency pair, ie. BTC-USD.
func NewTicker(base, quote string) ports.Ticker {
	return ticker{strings.ToUpper(base), strings.ToUpper(quote)}
}

func (t ticker) GetBaseCurrency() string {
	return t.baseCurrency
}

func (t ticker) GetQuoteCurrency() string {
	return t.quoteCurrency
}

func productID(t ports.Ticker) string {
	return fmt.Sprintf("%s-%s", t.GetBaseCurrency(), t.GetQuoteCurrency())
}
