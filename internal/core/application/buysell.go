package application

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
)

const (
	DefaultMaxPollTime          = 30 * time.Second
	DefaultQuoteDebounce        = 500 * time.Millisecond
	DefaultExchangeRateInterval = time.Minute
)

// BuySellService orchestrates quotes, trades, profile and KYC of the exchange
// partners on behalf of the logged-in wallet.
type BuySellService interface {
	// Login waits for the exchange session to be initialized, then fetches the
	// profile. A session without exchanges is not an error.
	Login(ctx context.Context) error
	Logout()
	// Initialized is closed once the current session has been initialized.
	Initialized() <-chan struct{}
	Status() Status

	GetQuote(
		ctx context.Context, amount decimal.Decimal, currency, quoteCurrency string,
	) (*domain.Quote, error)
	GetRate(ctx context.Context, base, quote string) (decimal.Decimal, error)
	CalculateMax(rate decimal.Decimal, medium domain.Medium) (*domain.Limits, error)

	GetTrades(ctx context.Context) (domain.TradeBuckets, error)
	Trades() domain.TradeBuckets
	GetTxMethod(ctx context.Context, txHash string) (domain.Direction, error)
	CancelTrade(
		ctx context.Context, tradeID string, confirmer ports.Confirmer,
	) (CancelOutcome, error)
	OpenBuyView(
		ctx context.Context, trade *domain.Trade, opts ports.BuyViewOptions,
	) error

	FetchProfile(ctx context.Context, lean bool) (*domain.Profile, error)
	Profile() *domain.Profile
	GetCurrency(trade *domain.Trade) (*domain.Currency, error)

	GetKYCs(ctx context.Context) ([]domain.KYC, error)
	KYCs() []domain.KYC
	TriggerKYC(ctx context.Context) (*domain.KYC, error)
	GetOpenKYC(ctx context.Context) (*domain.KYC, error)
	PollUserLevel(kyc domain.KYC) (*Poll, error)
	PollKYC() (*Poll, error)

	OpenCheckout(ctx context.Context) (*Checkout, error)
	Checkout() (*Checkout, error)
	CloseCheckout()
	OpenQuickStart(ctx context.Context, currency string) (*QuickStart, error)
	QuickStart() (*QuickStart, error)
	CloseQuickStart()
}

// Status summarizes the state of the exchange session.
type Status struct {
	LoggedIn     bool
	HasExchanges bool
	Ready        bool
	Initialized  bool
	Generation   uint64
}

// BuySellOpts tunes timings of the service. Zero values fall back to
// defaults.
type BuySellOpts struct {
	MaxPollTime          time.Duration
	QuoteDebounce        time.Duration
	ExchangeRateInterval time.Duration
}

func (o BuySellOpts) withDefaults() BuySellOpts {
	if o.MaxPollTime <= 0 {
		o.MaxPollTime = DefaultMaxPollTime
	}
	if o.QuoteDebounce <= 0 {
		o.QuoteDebounce = DefaultQuoteDebounce
	}
	if o.ExchangeRateInterval <= 0 {
		o.ExchangeRateInterval = DefaultExchangeRateInterval
	}
	return o
}

type buySellService struct {
	sessions  *SessionManager
	wallet    ports.Wallet
	watcher   ports.AddressWatcher
	notifier  ports.Notifier
	txMethods domain.TxMethodRepository
	opts      BuySellOpts

	lock              sync.RWMutex
	generation        uint64
	initialized       chan struct{}
	trades            domain.TradeBuckets
	watching          map[string]struct{}
	watchCtx          context.Context
	stopWatching      context.CancelFunc
	profile           *domain.Profile
	kycs              []domain.KYC
	kycPoll           *Poll
	coinifyCurrencies []domain.Currency
	checkout          *Checkout
	quickStart        *QuickStart
}

func NewBuySellService(
	sessions *SessionManager,
	wallet ports.Wallet,
	watcher ports.AddressWatcher,
	notifier ports.Notifier,
	txMethods domain.TxMethodRepository,
	opts BuySellOpts,
) BuySellService {
	watchCtx, stopWatching := context.WithCancel(context.Background())
	return &buySellService{
		sessions:     sessions,
		wallet:       wallet,
		watcher:      watcher,
		notifier:     notifier,
		txMethods:    txMethods,
		opts:         opts.withDefaults(),
		initialized:  make(chan struct{}),
		watching:     make(map[string]struct{}),
		watchCtx:     watchCtx,
		stopWatching: stopWatching,
	}
}

func (s *buySellService) Login(ctx context.Context) error {
	session := s.sessions.Session()
	if session == nil {
		return ErrNotLoggedIn
	}
	s.bindSession(session)

	if err := session.WaitReady(ctx); err != nil {
		return err
	}

	exchange := session.Exchange(ports.ExchangeCoinify)
	if exchange == nil {
		log.Debug("exchange session has no partners, skipping init")
		return nil
	}

	s.init(ctx, session.Generation(), exchange)

	if _, err := s.FetchProfile(ctx, false); err != nil {
		return err
	}
	return nil
}

func (s *buySellService) Logout() {
	s.sessions.Logout()

	s.lock.Lock()
	s.resetLocked(0)
	s.lock.Unlock()
}

func (s *buySellService) Initialized() <-chan struct{} {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.initialized
}

func (s *buySellService) Status() Status {
	status := Status{}
	session := s.sessions.Session()
	if session == nil {
		return status
	}
	status.LoggedIn = true
	status.HasExchanges = session.HasExchanges()
	status.Ready = session.IsReady()
	status.Generation = session.Generation()

	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.generation == session.Generation() {
		select {
		case <-s.initialized:
			status.Initialized = true
		default:
		}
	}
	return status
}

func (s *buySellService) GetQuote(
	ctx context.Context, amount decimal.Decimal, currency, quoteCurrency string,
) (*domain.Quote, error) {
	exchange, _, err := s.readyExchange(ctx, ports.ExchangeCoinify)
	if err != nil {
		return nil, err
	}
	amt := domain.QuoteRequestAmount(amount, currency)
	return exchange.GetBuyQuote(ctx, amt, currency, quoteCurrency)
}

func (s *buySellService) GetRate(
	ctx context.Context, base, quote string,
) (decimal.Decimal, error) {
	exchange, _, err := s.readyExchange(ctx, ports.ExchangeCoinify)
	if err != nil {
		return decimal.Zero, err
	}
	return exchange.ExchangeRate(ctx, base, quote)
}

func (s *buySellService) CalculateMax(
	rate decimal.Decimal, medium domain.Medium,
) (*domain.Limits, error) {
	profile := s.Profile()
	if profile == nil {
		return nil, ErrProfileNotFetched
	}
	limits, err := profile.CalculateMax(rate, medium)
	if err != nil {
		return nil, err
	}
	return &limits, nil
}

func (s *buySellService) Profile() *domain.Profile {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.profile
}

func (s *buySellService) GetCurrency(trade *domain.Trade) (*domain.Currency, error) {
	if trade != nil && trade.InCurrency != "" {
		c, ok := domain.LookupCurrency(trade.InCurrency)
		if !ok {
			return nil, ErrCurrencyNotFound
		}
		return &c, nil
	}

	s.lock.RLock()
	coinifyCurrencies := s.coinifyCurrencies
	profile := s.profile
	s.lock.RUnlock()

	walletCode := s.wallet.Currency()
	for _, c := range coinifyCurrencies {
		if c.Code == walletCode {
			walletCurrency, ok := domain.LookupCurrency(walletCode)
			if !ok {
				break
			}
			return &walletCurrency, nil
		}
	}

	code := domain.CurrencyEUR
	if profile != nil && profile.DefaultCurrency != "" {
		code = profile.DefaultCurrency
	}
	for _, c := range coinifyCurrencies {
		if c.Code == code {
			currency := c
			return &currency, nil
		}
	}
	return nil, ErrCurrencyNotFound
}

// init seeds the trade list from the partner cache and starts the partner
// payment monitor. It runs once per session.
func (s *buySellService) init(
	ctx context.Context, generation uint64, exchange ports.Exchange,
) {
	s.lock.Lock()
	if s.generation != generation || s.isInitializedLocked() {
		s.lock.Unlock()
		return
	}
	initialized := s.initialized
	watchCtx := s.watchCtx
	s.lock.Unlock()

	if trades := exchange.CachedTrades(); len(trades) > 0 {
		s.setTrades(generation, trades)
	}

	go func() {
		if err := exchange.MonitorPayments(watchCtx); err != nil && watchCtx.Err() == nil {
			log.WithError(err).Warn("payment monitor stopped")
		}
	}()

	s.lock.Lock()
	if s.generation == generation && !s.isInitializedLocked() {
		close(initialized)
	}
	s.lock.Unlock()
}

// bindSession resets the per-session state if session is not the one the
// state belongs to.
func (s *buySellService) bindSession(session *Session) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.generation == session.Generation() {
		return
	}
	s.resetLocked(session.Generation())
}

func (s *buySellService) resetLocked(generation uint64) {
	s.stopWatching()
	if s.kycPoll != nil {
		s.kycPoll.Cancel()
	}
	if s.checkout != nil {
		s.checkout.Close()
	}
	if s.quickStart != nil {
		s.quickStart.Close()
	}

	watchCtx, stopWatching := context.WithCancel(context.Background())
	s.generation = generation
	s.initialized = make(chan struct{})
	s.trades = domain.TradeBuckets{}
	s.watching = make(map[string]struct{})
	s.watchCtx = watchCtx
	s.stopWatching = stopWatching
	s.profile = nil
	s.kycs = nil
	s.kycPoll = nil
	s.coinifyCurrencies = nil
	s.checkout = nil
	s.quickStart = nil
}

func (s *buySellService) isInitializedLocked() bool {
	select {
	case <-s.initialized:
		return true
	default:
		return false
	}
}

func (s *buySellService) isCurrent(generation uint64) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.generation == generation
}

// readyExchange returns the named partner client of the current session once
// its credentials are applied.
func (s *buySellService) readyExchange(
	ctx context.Context, name string,
) (ports.Exchange, uint64, error) {
	session := s.sessions.Session()
	if session == nil {
		return nil, 0, ErrNotLoggedIn
	}
	s.bindSession(session)

	exchange := session.Exchange(name)
	if exchange == nil {
		return nil, 0, ErrExchangeUnavailable
	}
	if err := session.WaitReady(ctx); err != nil {
		return nil, 0, err
	}
	return exchange, session.Generation(), nil
}
