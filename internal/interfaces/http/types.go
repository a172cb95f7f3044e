package httpinterface

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/buysell-daemon/internal/core/application"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
)

type statusResponse struct {
	LoggedIn     bool   `json:"logged_in"`
	HasExchanges bool   `json:"has_exchanges"`
	Ready        bool   `json:"ready"`
	Initialized  bool   `json:"initialized"`
	Generation   uint64 `json:"generation"`
}

func newStatusResponse(s application.Status) statusResponse {
	return statusResponse{
		LoggedIn:     s.LoggedIn,
		HasExchanges: s.HasExchanges,
		Ready:        s.Ready,
		Initialized:  s.Initialized,
		Generation:   s.Generation,
	}
}

type optionsResponse struct {
	BuySellEnabled bool     `json:"buy_sell_enabled"`
	ShowBuySellTab []string `json:"show_buy_sell_tab"`
	AreaCodes      []string `json:"area_codes"`
}

type quoteRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	QuoteCurrency string          `json:"quote_currency"`
}

type quoteResponse struct {
	ID            string          `json:"id"`
	BaseAmount    decimal.Decimal `json:"base_amount"`
	BaseCurrency  string          `json:"base_currency"`
	QuoteAmount   decimal.Decimal `json:"quote_amount"`
	QuoteCurrency string          `json:"quote_currency"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

func newQuoteResponse(q *domain.Quote) *quoteResponse {
	if q == nil {
		return nil
	}
	return &quoteResponse{
		ID:            q.ID,
		BaseAmount:    q.BaseAmount,
		BaseCurrency:  q.BaseCurrency,
		QuoteAmount:   q.QuoteAmount,
		QuoteCurrency: q.QuoteCurrency,
		ExpiresAt:     q.ExpiresAt,
	}
}

type tradeResponse struct {
	ID              string          `json:"id"`
	State           string          `json:"state"`
	IsBuy           bool            `json:"is_buy"`
	Medium          string          `json:"medium,omitempty"`
	ReceiveAddress  string          `json:"receive_address,omitempty"`
	TxHash          string          `json:"tx_hash,omitempty"`
	BitcoinReceived bool            `json:"bitcoin_received"`
	InCurrency      string          `json:"in_currency"`
	OutCurrency     string          `json:"out_currency"`
	InAmount        decimal.Decimal `json:"in_amount"`
	OutAmount       decimal.Decimal `json:"out_amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

func newTradeResponse(t domain.Trade) tradeResponse {
	return tradeResponse{
		ID:              t.ID,
		State:           string(t.State),
		IsBuy:           t.IsBuy,
		Medium:          string(t.Medium),
		ReceiveAddress:  t.ReceiveAddress,
		TxHash:          t.TxHash,
		BitcoinReceived: t.BitcoinReceived,
		InCurrency:      t.InCurrency,
		OutCurrency:     t.OutCurrency,
		InAmount:        t.InAmount,
		OutAmount:       t.OutAmount,
		CreatedAt:       t.CreatedAt,
	}
}

func newTradeList(trades []domain.Trade) []tradeResponse {
	list := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		list = append(list, newTradeResponse(t))
	}
	return list
}

type tradesResponse struct {
	Pending   []tradeResponse `json:"pending"`
	Completed []tradeResponse `json:"completed"`
}

func newTradesResponse(b domain.TradeBuckets) tradesResponse {
	return tradesResponse{
		Pending:   newTradeList(b.Pending),
		Completed: newTradeList(b.Completed),
	}
}

type cancelRequest struct {
	Confirm bool `json:"confirm"`
}

type cancelResponse struct {
	Outcome string `json:"outcome"`
}

type buyViewRequest struct {
	TradeID         string `json:"trade_id"`
	BitcoinReceived bool   `json:"bitcoin_received"`
}

type profileResponse struct {
	Level           string          `json:"level"`
	Verified        bool            `json:"verified"`
	DefaultCurrency string          `json:"default_currency,omitempty"`
	CanTradeAfter   *time.Time      `json:"can_trade_after,omitempty"`
	BuyLimit        decimal.Decimal `json:"buy_limit"`
}

func newProfileResponse(p *domain.Profile) *profileResponse {
	if p == nil {
		return nil
	}
	return &profileResponse{
		Level:           p.Level.Name,
		Verified:        p.IsVerified(),
		DefaultCurrency: p.DefaultCurrency,
		CanTradeAfter:   p.CanTradeAfter,
		BuyLimit:        p.BuyLimit,
	}
}

type limitsResponse struct {
	Max       string `json:"max"`
	Available string `json:"available"`
}

type kycResponse struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

func newKYCResponse(k domain.KYC) kycResponse {
	return kycResponse{ID: k.ID, State: string(k.State), CreatedAt: k.CreatedAt}
}

func newKYCList(kycs []domain.KYC) []kycResponse {
	list := make([]kycResponse, 0, len(kycs))
	for _, k := range kycs {
		list = append(list, newKYCResponse(k))
	}
	return list
}

type pollResponse struct {
	Running bool   `json:"running"`
	Error   string `json:"error,omitempty"`
}

func newPollResponse(p *application.Poll) pollResponse {
	res := pollResponse{Running: p.IsRunning()}
	if !res.Running {
		if err := p.Err(); err != nil {
			res.Error = err.Error()
		}
	}
	return res
}

type inputRequest struct {
	Field        string `json:"field"`
	Amount       string `json:"amount"`
	BaseCurrency string `json:"base_currency"`
	Currency     string `json:"currency"`
}

type checkoutResponse struct {
	Fiat          *decimal.Decimal `json:"fiat"`
	BTC           *decimal.Decimal `json:"btc"`
	BaseCurrency  string           `json:"base_currency"`
	QuoteCurrency string           `json:"quote_currency"`
	BaseFiat      bool             `json:"base_fiat"`
	Max           decimal.Decimal  `json:"max"`
	Quote         *quoteResponse   `json:"quote"`
	LoadFailed    bool             `json:"load_failed"`
	BuyEnabled    bool             `json:"buy_enabled"`
	Locked        bool             `json:"locked"`
	AccountID     string           `json:"account_id"`
	RefreshArmed  bool             `json:"refresh_armed"`
}

func newCheckoutResponse(s application.CheckoutState) checkoutResponse {
	return checkoutResponse{
		Fiat:          nullable(s.Fiat),
		BTC:           nullable(s.BTC),
		BaseCurrency:  s.BaseCurrency,
		QuoteCurrency: s.QuoteCurrency,
		BaseFiat:      s.BaseFiat,
		Max:           s.Max,
		Quote:         newQuoteResponse(s.Quote),
		LoadFailed:    s.LoadFailed,
		BuyEnabled:    s.BuyEnabled,
		Locked:        s.Locked,
		AccountID:     s.Account.ID,
		RefreshArmed:  s.RefreshArmed,
	}
}

type quickStartResponse struct {
	Currency     string           `json:"currency"`
	Fiat         *decimal.Decimal `json:"fiat"`
	BTC          *decimal.Decimal `json:"btc"`
	LastInput    string           `json:"last_input,omitempty"`
	ExchangeRate string           `json:"exchange_rate"`
	Quote        *quoteResponse   `json:"quote"`
	Busy         bool             `json:"busy"`
	Disabled     bool             `json:"disabled"`
	ModalOpen    bool             `json:"modal_open"`
	Days         int              `json:"days"`
}

func newQuickStartResponse(s application.QuickStartState) quickStartResponse {
	return quickStartResponse{
		Currency:     s.Currency,
		Fiat:         nullable(s.Fiat),
		BTC:          nullable(s.BTC),
		LastInput:    s.LastInput,
		ExchangeRate: s.ExchangeRate,
		Quote:        newQuoteResponse(s.Quote),
		Busy:         s.Busy,
		Disabled:     s.Disabled,
		ModalOpen:    s.ModalOpen,
		Days:         s.Days,
	}
}

type modalRequest struct {
	Open bool `json:"open"`
}

type webhookRequest struct {
	Event    string `json:"event"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
}

type tickerResponse struct {
	BaseCurrency  string          `json:"base_currency"`
	QuoteCurrency string          `json:"quote_currency"`
	Price         decimal.Decimal `json:"price"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func newTickerResponse(t application.TickerPrice) tickerResponse {
	return tickerResponse{
		BaseCurrency:  t.BaseCurrency,
		QuoteCurrency: t.QuoteCurrency,
		Price:         t.Price,
		UpdatedAt:     t.UpdatedAt,
	}
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

// parseAmount parses an optional amount, the empty string being no amount.
func parseAmount(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
