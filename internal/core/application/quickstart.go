package application

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/pkg/asyncutil"
)

const msgErrorQuoteFetch = "ERROR_QUOTE_FETCH"

// QuickStartState is a snapshot of the quick start form.
type QuickStartState struct {
	Currency     string
	Fiat         decimal.NullDecimal
	BTC          decimal.NullDecimal
	LastInput    string
	ExchangeRate string
	Quote        *domain.Quote
	Busy         bool
	Disabled     bool
	ModalOpen    bool
	Days         int
}

// QuickStart is the Coinify buy form: it keeps an indicative exchange rate
// refreshed every interval and quotes the amount last edited by the user.
type QuickStart struct {
	svc      *buySellService
	interval time.Duration

	rateTask asyncutil.Task

	lock         sync.Mutex
	generation   uint64
	closed       bool
	currency     string
	fiat         decimal.NullDecimal
	btc          decimal.NullDecimal
	lastInput    string
	exchangeRate string
	quote        *domain.Quote
	busy         bool
	disabled     bool
	modalOpen    bool
}

func (q *QuickStart) State() QuickStartState {
	days := q.GetDays()

	q.lock.Lock()
	defer q.lock.Unlock()
	return QuickStartState{
		Currency:     q.currency,
		Fiat:         q.fiat,
		BTC:          q.btc,
		LastInput:    q.lastInput,
		ExchangeRate: q.exchangeRate,
		Quote:        q.quote,
		Busy:         q.busy,
		Disabled:     q.disabled,
		ModalOpen:    q.modalOpen,
		Days:         days,
	}
}

// SetFiat records a fiat amount as the last input.
func (q *QuickStart) SetFiat(amount decimal.NullDecimal) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.fiat = amount
	q.lastInput = FieldFiat
}

// SetBTC records a bitcoin amount as the last input.
func (q *QuickStart) SetBTC(amount decimal.NullDecimal) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.btc = amount
	q.lastInput = FieldBTC
}

func (q *QuickStart) SetCurrency(code string) error {
	if _, ok := domain.LookupCurrency(code); !ok || code == domain.CurrencyBTC {
		return ErrInvalidCurrency
	}
	q.lock.Lock()
	defer q.lock.Unlock()
	q.currency = code
	return nil
}

// SetModalOpen pauses the exchange rate refresh while a modal is open and
// resumes it with an immediate refresh once closed.
func (q *QuickStart) SetModalOpen(ctx context.Context, open bool) {
	q.lock.Lock()
	q.modalOpen = open
	q.lock.Unlock()

	if open {
		q.rateTask.Cancel()
		return
	}
	q.GetExchangeRate(ctx)
}

// GetExchangeRate fetches the price of one bitcoin in the selected currency,
// then requests a quote for the last input. The refresh is rearmed for the
// next interval.
func (q *QuickStart) GetExchangeRate(ctx context.Context) {
	q.rateTask.ScheduleIn(q.interval, func() {
		q.GetExchangeRate(context.Background())
	})

	q.lock.Lock()
	if q.closed {
		q.lock.Unlock()
		q.rateTask.Cancel()
		return
	}
	q.busy = true
	generation := q.generation
	currency := q.currency
	q.lock.Unlock()

	quote, err := q.svc.GetQuote(ctx, decimal.NewFromInt(-1), domain.CurrencyBTC, currency)
	if err != nil {
		q.fail(generation)
	} else {
		rate := domain.FromCents(quote.QuoteAmount.Neg()).StringFixed(2)
		q.lock.Lock()
		if q.generation == generation {
			q.exchangeRate = rate
		}
		q.lock.Unlock()
	}

	q.GetQuote(ctx)
}

// GetQuote quotes the amount last edited: bitcoin amounts are sold for fiat,
// fiat amounts buy bitcoin.
func (q *QuickStart) GetQuote(ctx context.Context) {
	q.lock.Lock()
	if q.closed {
		q.lock.Unlock()
		return
	}
	generation := q.generation
	lastInput, currency := q.lastInput, q.currency
	fiat, btc := q.fiat.Decimal, q.btc.Decimal
	q.lock.Unlock()

	var (
		quote *domain.Quote
		err   error
	)
	switch lastInput {
	case FieldBTC:
		quote, err = q.svc.GetQuote(ctx, btc.Neg(), domain.CurrencyBTC, currency)
	case FieldFiat:
		quote, err = q.svc.GetQuote(ctx, fiat, currency, domain.CurrencyBTC)
	default:
		q.lock.Lock()
		if q.generation == generation {
			q.busy = false
		}
		q.lock.Unlock()
		return
	}

	if err != nil {
		q.fail(generation)
		return
	}

	q.lock.Lock()
	if q.generation != generation {
		q.lock.Unlock()
		return
	}
	if quote.BaseCurrency == domain.CurrencyBTC {
		q.fiat = decimal.NewNullDecimal(domain.FromCents(quote.QuoteAmount.Neg()))
	} else {
		q.btc = decimal.NewNullDecimal(domain.FromSatoshis(quote.QuoteAmount))
	}
	q.quote = quote
	q.busy = false
	q.lock.Unlock()

	q.svc.notifier.Clear()
}

// CancelTrade cancels the pending trade. The form is disabled while the
// request is running.
func (q *QuickStart) CancelTrade(
	ctx context.Context, tradeID string, confirmer ports.Confirmer,
) (CancelOutcome, error) {
	q.setDisabled(true)
	defer q.setDisabled(false)

	return q.svc.CancelTrade(ctx, tradeID, confirmer)
}

// GetDays returns the days left before the user can trade.
func (q *QuickStart) GetDays() int {
	profile := q.svc.Profile()
	if profile == nil {
		return 1
	}
	return profile.DaysUntilTrading(time.Now())
}

func (q *QuickStart) Close() {
	q.rateTask.Cancel()

	q.lock.Lock()
	defer q.lock.Unlock()
	q.closed = true
	q.generation++
}

func (q *QuickStart) fail(generation uint64) {
	q.lock.Lock()
	current := q.generation == generation
	if current {
		q.busy = false
	}
	q.lock.Unlock()

	if current {
		q.svc.notifier.DisplayError(msgErrorQuoteFetch)
	}
}

func (q *QuickStart) setDisabled(disabled bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.disabled = disabled
}

func (s *buySellService) OpenQuickStart(
	ctx context.Context, currency string,
) (*QuickStart, error) {
	if _, _, err := s.readyExchange(ctx, ports.ExchangeCoinify); err != nil {
		return nil, err
	}
	if currency == "" {
		c, err := s.GetCurrency(nil)
		if err != nil {
			return nil, err
		}
		currency = c.Code
	}
	if _, ok := domain.LookupCurrency(currency); !ok || currency == domain.CurrencyBTC {
		return nil, ErrInvalidCurrency
	}

	q := &QuickStart{
		svc:      s,
		interval: s.opts.ExchangeRateInterval,
		currency: currency,
	}

	s.lock.Lock()
	if s.quickStart != nil {
		s.quickStart.Close()
	}
	s.quickStart = q
	s.lock.Unlock()

	go q.GetExchangeRate(context.Background())
	return q, nil
}

func (s *buySellService) QuickStart() (*QuickStart, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.quickStart == nil {
		return nil, ErrQuickStartNotOpen
	}
	return s.quickStart, nil
}

func (s *buySellService) CloseQuickStart() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.quickStart != nil {
		s.quickStart.Close()
		s.quickStart = nil
	}
}
