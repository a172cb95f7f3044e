package sfox

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
)

var tradeStates = map[string]domain.TradeState{
	"started":    domain.TradeStatePending,
	"pending":    domain.TradeStatePending,
	"processing": domain.TradeStateProcessing,
	"reviewing":  domain.TradeStateReviewing,
	"done":       domain.TradeStateCompleted,
	"completed":  domain.TradeStateCompleted,
	"failed":     domain.TradeStateRejected,
	"rejected":   domain.TradeStateRejected,
	"cancelled":  domain.TradeStateCancelled,
	"expired":    domain.TradeStateExpired,
}

func toTradeState(status string) domain.TradeState {
	if state, ok := tradeStates[status]; ok {
		return state
	}
	return domain.TradeStatePending
}

type quoteRequest struct {
	Action         string          `json:"action"`
	BaseCurrency   string          `json:"base_currency"`
	QuoteCurrency  string          `json:"quote_currency"`
	Amount         decimal.Decimal `json:"amount"`
	AmountCurrency string          `json:"amount_currency"`
}

type quoteResponse struct {
	QuoteID       string          `json:"quote_id"`
	BaseCurrency  string          `json:"base_currency"`
	QuoteCurrency string          `json:"quote_currency"`
	BaseAmount    decimal.Decimal `json:"base_amount"`
	QuoteAmount   decimal.Decimal `json:"quote_amount"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

type verificationStatus struct {
	Level string `json:"level"`
}

type accountLimits struct {
	AvailableBuy decimal.Decimal `json:"available_buy"`
	DailyBuy     decimal.Decimal `json:"daily_buy"`
}

type accountResponse struct {
	VerificationStatus verificationStatus `json:"verification_status"`
	Limits             accountLimits      `json:"limits"`
	CanTradeAfter      *time.Time         `json:"can_trade_after"`
}

func (a accountResponse) toDomain() *domain.Profile {
	return &domain.Profile{
		CurrentLimits: map[domain.Medium]domain.MediumLimit{
			domain.MediumACH: {InRemaining: a.Limits.AvailableBuy},
		},
		Level: domain.Level{
			Name: a.VerificationStatus.Level,
			Limits: map[domain.Medium]domain.LevelLimit{
				domain.MediumACH: {InDaily: a.Limits.DailyBuy},
			},
		},
		CanTradeAfter:   a.CanTradeAfter,
		DefaultCurrency: domain.CurrencyUSD,
		BuyLimit:        a.Limits.AvailableBuy,
	}
}

type paymentMethodResponse struct {
	PaymentMethodID string `json:"payment_method_id"`
	Type            string `json:"type"`
	Name            string `json:"name"`
	Status          string `json:"status"`
}

type transactionRequest struct {
	QuoteID         string `json:"quote_id"`
	PaymentMethodID string `json:"payment_method_id"`
	Action          string `json:"action"`
	Address         string `json:"address"`
}

type transactionResponse struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	Action      string          `json:"action"`
	Amount      decimal.Decimal `json:"amount"`
	QuoteAmount decimal.Decimal `json:"quote_amount"`
	Address     string          `json:"address"`
	TxID        string          `json:"blockchain_tx_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (t transactionResponse) toDomain() domain.Trade {
	isBuy := t.Action != "sell"
	trade := domain.Trade{
		ID:             t.ID,
		State:          toTradeState(t.Status),
		IsBuy:          isBuy,
		Medium:         domain.MediumACH,
		ReceiveAddress: t.Address,
		TxHash:         t.TxID,
		InCurrency:     domain.CurrencyUSD,
		OutCurrency:    domain.CurrencyBTC,
		InAmount:       t.Amount,
		OutAmount:      t.QuoteAmount,
		CreatedAt:      t.CreatedAt,
	}
	if !isBuy {
		trade.InCurrency, trade.OutCurrency = domain.CurrencyBTC, domain.CurrencyUSD
	}
	return trade
}
