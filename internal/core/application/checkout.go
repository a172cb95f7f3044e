package application

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/pkg/asyncutil"
)

const (
	FieldFiat = "fiat"
	FieldBTC  = "btc"

	msgBuyFailed          = "Error connecting to our exchange partner"
	tradeSummaryInitiated = "initiated"

	quoteRequestTimeout = 30 * time.Second
)

// CheckoutState is a snapshot of the checkout form.
type CheckoutState struct {
	Fiat          decimal.NullDecimal
	BTC           decimal.NullDecimal
	BaseCurrency  string
	QuoteCurrency string
	BaseFiat      bool
	Total         decimal.NullDecimal
	Max           decimal.Decimal
	Quote         *domain.Quote
	LoadFailed    bool
	BuyEnabled    bool
	Locked        bool
	Account       domain.BankAccount
	RefreshArmed  bool
}

// Checkout binds the SFOX buy form to live quotes. A quote is requested once
// input settles and refreshed again when it expires.
type Checkout struct {
	exchange ports.Exchange
	notifier ports.Notifier
	account  domain.BankAccount
	max      decimal.Decimal

	refreshQuote *asyncutil.Debouncer
	refreshTask  asyncutil.Task

	lock         sync.Mutex
	generation   uint64
	closed       bool
	fiat         decimal.NullDecimal
	btc          decimal.NullDecimal
	baseCurrency string
	quote        *domain.Quote
	loadFailed   bool
	buyEnabled   bool
	locked       bool
}

func newCheckout(
	exchange ports.Exchange, notifier ports.Notifier,
	account domain.BankAccount, max decimal.Decimal, debounce time.Duration,
) *Checkout {
	c := &Checkout{
		exchange:     exchange,
		notifier:     notifier,
		account:      account,
		max:          max,
		baseCurrency: domain.CurrencyUSD,
	}
	c.refreshQuote = asyncutil.NewDebouncer(c.fetchQuote, debounce)
	return c
}

// BaseFiat returns whether amounts are entered in dollars.
func (c *Checkout) BaseFiat() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.baseFiat()
}

// QuoteCurrency is bitcoin when the base is fiat, dollars otherwise.
func (c *Checkout) QuoteCurrency() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.quoteCurrency()
}

// Total is the fiat amount of the trade.
func (c *Checkout) Total() decimal.NullDecimal {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.fiat
}

func (c *Checkout) State() CheckoutState {
	c.lock.Lock()
	defer c.lock.Unlock()

	return CheckoutState{
		Fiat:          c.fiat,
		BTC:           c.btc,
		BaseCurrency:  c.baseCurrency,
		QuoteCurrency: c.quoteCurrency(),
		BaseFiat:      c.baseFiat(),
		Total:         c.fiat,
		Max:           c.max,
		Quote:         c.quote,
		LoadFailed:    c.loadFailed,
		BuyEnabled:    c.buyEnabled,
		Locked:        c.locked,
		Account:       c.account,
		RefreshArmed:  c.refreshTask.Scheduled() || c.refreshQuote.Pending(),
	}
}

// SetBaseCurrency switches the currency amounts are entered in.
func (c *Checkout) SetBaseCurrency(code string) error {
	if code != domain.CurrencyUSD && code != domain.CurrencyBTC {
		return ErrInvalidCurrency
	}
	c.lock.Lock()
	c.baseCurrency = code
	c.buyEnabled = false
	c.lock.Unlock()
	return nil
}

// SetFiat updates the fiat amount and, if it's the base amount, refreshes the
// quote.
func (c *Checkout) SetFiat(amount decimal.NullDecimal) {
	c.lock.Lock()
	c.fiat = amount
	c.buyEnabled = false
	baseFiat := c.baseFiat()
	c.lock.Unlock()

	if baseFiat {
		c.RefreshIfValid(FieldFiat)
	}
}

// SetBTC updates the bitcoin amount and, if it's the base amount, refreshes
// the quote.
func (c *Checkout) SetBTC(amount decimal.NullDecimal) {
	c.lock.Lock()
	c.btc = amount
	c.buyEnabled = false
	baseFiat := c.baseFiat()
	c.lock.Unlock()

	if !baseFiat {
		c.RefreshIfValid(FieldBTC)
	}
}

// RefreshIfValid refreshes the quote if field holds a valid amount, otherwise
// it cancels every scheduled refresh and drops in-flight quote results.
func (c *Checkout) RefreshIfValid(field string) {
	c.lock.Lock()
	valid := !c.closed && c.isValid(field)
	if valid {
		c.quote = nil
	} else {
		c.generation++
	}
	c.lock.Unlock()

	if valid {
		c.RefreshQuote()
		return
	}
	c.refreshQuote.Cancel()
	c.CancelRefresh()
}

// RefreshQuote requests a new quote once calls stop coming for the debounce
// window.
func (c *Checkout) RefreshQuote() {
	c.refreshQuote.Call()
}

// CancelRefresh cancels the refresh scheduled at quote expiration. It's
// idempotent.
func (c *Checkout) CancelRefresh() {
	c.refreshTask.Cancel()
}

func (c *Checkout) EnableBuy() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.buyEnabled = true
}

func (c *Checkout) DisableBuy() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.buyEnabled = false
}

// Buy submits an ACH trade for the current quote. The checkout stays locked
// until the call returns, whatever the outcome.
func (c *Checkout) Buy(ctx context.Context) (*domain.Trade, error) {
	if err := c.lockForBuy(); err != nil {
		return nil, err
	}
	defer c.free()

	trade, err := c.buy(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to submit buy trade")
		c.notifier.DisplayError(msgBuyFailed)
	} else {
		c.notifier.OpenTradeSummary(*trade, tradeSummaryInitiated)
	}

	c.RefreshQuote()
	c.DisableBuy()
	return trade, err
}

// Close stops every scheduled refresh and drops results of in-flight ones.
func (c *Checkout) Close() {
	c.refreshQuote.Cancel()
	c.refreshTask.Cancel()

	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = true
	c.generation++
}

func (c *Checkout) buy(ctx context.Context) (*domain.Trade, error) {
	c.lock.Lock()
	quote := c.quote
	c.lock.Unlock()

	if quote == nil {
		return nil, ErrNoQuote
	}

	mediums, err := c.exchange.GetPaymentMediums(ctx, *quote)
	if err != nil {
		return nil, err
	}
	if !containsMedium(mediums, domain.MediumACH) {
		return nil, ErrMediumUnavailable
	}
	return c.exchange.Buy(ctx, *quote, domain.MediumACH, c.account.ID)
}

func (c *Checkout) lockForBuy() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return ErrCheckoutNotOpen
	}
	if c.locked {
		return ErrCheckoutLocked
	}
	c.locked = true
	return nil
}

func (c *Checkout) free() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.locked = false
}

func (c *Checkout) fetchQuote() {
	c.CancelRefresh()

	c.lock.Lock()
	baseFiat := c.baseFiat()
	field := FieldBTC
	if baseFiat {
		field = FieldFiat
	}
	if c.closed || !c.isValid(field) {
		c.lock.Unlock()
		return
	}
	c.generation++
	generation := c.generation
	amount := c.btc.Decimal
	if baseFiat {
		amount = domain.ToCents(c.fiat.Decimal)
	}
	base, quoteCurrency := c.baseCurrency, c.quoteCurrency()
	c.lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), quoteRequestTimeout)
	defer cancel()

	quote, err := c.exchange.GetBuyQuote(ctx, amount, base, quoteCurrency)

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.generation != generation {
		return
	}
	if err != nil {
		log.WithError(err).Debug("failed to fetch quote")
		c.loadFailed = true
		return
	}

	c.quote = quote
	c.loadFailed = false
	c.refreshTask.ScheduleAt(quote.ExpiresAt, c.fetchQuote)
	if baseFiat {
		c.btc = decimal.NewNullDecimal(quote.QuoteAmount)
	} else {
		c.fiat = decimal.NewNullDecimal(domain.FromCents(quote.QuoteAmount))
	}
}

func (c *Checkout) isValid(field string) bool {
	switch field {
	case FieldFiat:
		if !c.fiat.Valid || !c.fiat.Decimal.IsPositive() {
			return false
		}
		return c.max.IsZero() || c.fiat.Decimal.LessThanOrEqual(c.max)
	case FieldBTC:
		return c.btc.Valid && c.btc.Decimal.IsPositive()
	default:
		return false
	}
}

func (c *Checkout) baseFiat() bool {
	return c.baseCurrency == domain.CurrencyUSD
}

func (c *Checkout) quoteCurrency() string {
	if c.baseFiat() {
		return domain.CurrencyBTC
	}
	return domain.CurrencyUSD
}

func containsMedium(mediums []domain.Medium, medium domain.Medium) bool {
	for _, m := range mediums {
		if m == medium {
			return true
		}
	}
	return false
}

func (s *buySellService) OpenCheckout(ctx context.Context) (*Checkout, error) {
	exchange, generation, err := s.readyExchange(ctx, ports.ExchangeSfox)
	if err != nil {
		return nil, err
	}

	profile, err := exchange.FetchProfile(ctx)
	if err != nil {
		return nil, newProfileError(err)
	}
	accounts, err := exchange.GetAccounts(ctx, domain.MediumACH)
	if err != nil {
		return nil, err
	}
	if len(accounts) <= 0 {
		return nil, ErrCheckoutNotAllowed
	}

	checkout := newCheckout(
		exchange, s.notifier, accounts[0], profile.BuyLimit, s.opts.QuoteDebounce,
	)

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.generation != generation {
		checkout.Close()
		return nil, ErrNotLoggedIn
	}
	if s.checkout != nil {
		s.checkout.Close()
	}
	s.checkout = checkout
	return checkout, nil
}

func (s *buySellService) Checkout() (*Checkout, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.checkout == nil {
		return nil, ErrCheckoutNotOpen
	}
	return s.checkout, nil
}

func (s *buySellService) CloseCheckout() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.checkout != nil {
		s.checkout.Close()
		s.checkout = nil
	}
}
