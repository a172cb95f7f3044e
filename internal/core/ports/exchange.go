package ports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
)

const (
	ExchangeCoinify = "coinify"
	ExchangeSfox    = "sfox"
)

// ExchangeConfig holds the environment settings injected into a partner
// client when the exchange session is built.
type ExchangeConfig struct {
	Production bool
	Testnet    bool
	APIKey     string
	PartnerID  int
}

// Exchange is the client of an exchange partner.
type Exchange interface {
	Name() string
	// Configure applies environment and credentials. It's called once per
	// session before any other call is issued.
	Configure(cfg ExchangeConfig)
	Config() ExchangeConfig

	// GetBuyQuote returns a quote for the given amount, expressed in the smallest
	// unit expected by the partner. A negative amount refers to the quote
	// currency rather than the base one.
	GetBuyQuote(
		ctx context.Context, amount decimal.Decimal, baseCurrency, quoteCurrency string,
	) (*domain.Quote, error)
	// GetTrades fetches the list of trades and caches it.
	GetTrades(ctx context.Context) ([]domain.Trade, error)
	// CachedTrades returns the list fetched by the latest GetTrades call.
	CachedTrades() []domain.Trade
	RefreshTrade(ctx context.Context, tradeID string) (*domain.Trade, error)
	CancelTrade(ctx context.Context, tradeID string) error
	// FetchProfile returns the user profile. Partner errors are returned with
	// the raw response body as message.
	FetchProfile(ctx context.Context) (*domain.Profile, error)
	GetKYCs(ctx context.Context) ([]domain.KYC, error)
	TriggerKYC(ctx context.Context) (*domain.KYC, error)
	RefreshKYC(ctx context.Context, kycID string) (*domain.KYC, error)
	GetBuyCurrencies(ctx context.Context) ([]string, error)
	// ExchangeRate returns the approximate price of one unit of base in quote.
	ExchangeRate(ctx context.Context, base, quote string) (decimal.Decimal, error)
	// GetPaymentMediums returns the mediums that can pay for the quote.
	GetPaymentMediums(ctx context.Context, quote domain.Quote) ([]domain.Medium, error)
	GetAccounts(ctx context.Context, medium domain.Medium) ([]domain.BankAccount, error)
	Buy(
		ctx context.Context, quote domain.Quote, medium domain.Medium, accountID string,
	) (*domain.Trade, error)
	// MonitorPayments makes the partner client track pending trades on its side.
	MonitorPayments(ctx context.Context) error
}

// AddressWatcher waits for funds sent to a bitcoin address.
type AddressWatcher interface {
	// WatchAddress blocks until the address receives a transaction and
	// returns its hash, or until ctx is done.
	WatchAddress(ctx context.Context, address string) (string, error)
}

// PartnerError is returned by an Exchange when the partner answers with a
// non-successful status. Body is the raw response body.
type PartnerError struct {
	Exchange string
	Status   int
	Body     string
}

func (e *PartnerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Exchange, e.Status)
	}
	return e.Body
}
