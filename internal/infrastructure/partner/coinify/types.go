package coinify

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
)

type authRequest struct {
	GrantType    string `json:"grant_type"`
	OfflineToken string `json:"offline_token"`
	PartnerID    int    `json:"partner_id,omitempty"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type quoteRequest struct {
	BaseCurrency  string          `json:"baseCurrency"`
	QuoteCurrency string          `json:"quoteCurrency"`
	BaseAmount    decimal.Decimal `json:"baseAmount"`
}

type quoteResponse struct {
	ID            int64           `json:"id"`
	BaseCurrency  string          `json:"baseCurrency"`
	QuoteCurrency string          `json:"quoteCurrency"`
	BaseAmount    decimal.Decimal `json:"baseAmount"`
	QuoteAmount   decimal.Decimal `json:"quoteAmount"`
	ExpiryTime    time.Time       `json:"expiryTime"`
}

type transferDetails struct {
	Account       string `json:"account,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

type transfer struct {
	Medium   string          `json:"medium"`
	Currency string          `json:"currency,omitempty"`
	Details  transferDetails `json:"details"`
}

type tradeResponse struct {
	ID                int64           `json:"id"`
	State             string          `json:"state"`
	InCurrency        string          `json:"inCurrency"`
	OutCurrency       string          `json:"outCurrency"`
	InAmount          decimal.Decimal `json:"inAmount"`
	OutAmountExpected decimal.Decimal `json:"outAmountExpected"`
	TransferIn        transfer        `json:"transferIn"`
	TransferOut       transfer        `json:"transferOut"`
	CreateTime        time.Time       `json:"createTime"`
}

func (t tradeResponse) toDomain() domain.Trade {
	isBuy := t.OutCurrency == domain.CurrencyBTC
	trade := domain.Trade{
		ID:          strconv.FormatInt(t.ID, 10),
		State:       domain.TradeState(t.State),
		IsBuy:       isBuy,
		Medium:      domain.Medium(t.TransferIn.Medium),
		InCurrency:  t.InCurrency,
		OutCurrency: t.OutCurrency,
		InAmount:    t.InAmount,
		OutAmount:   t.OutAmountExpected,
		CreatedAt:   t.CreateTime,
	}
	if isBuy {
		trade.ReceiveAddress = t.TransferOut.Details.Account
		trade.TxHash = t.TransferOut.Details.TransactionID
	} else {
		trade.Medium = domain.Medium(t.TransferOut.Medium)
		trade.TxHash = t.TransferIn.Details.TransactionID
	}
	return trade
}

type buyRequest struct {
	PriceQuoteID int64    `json:"priceQuoteId"`
	TransferIn   transfer `json:"transferIn"`
	TransferOut  transfer `json:"transferOut"`
}

type limit struct {
	Daily decimal.Decimal `json:"daily"`
}

type mediumLevelLimit struct {
	In limit `json:"in"`
}

type level struct {
	Name   string                      `json:"name"`
	Limits map[string]mediumLevelLimit `json:"limits"`
}

type remaining struct {
	In decimal.Decimal `json:"in"`
}

type traderResponse struct {
	DefaultCurrency string               `json:"defaultCurrency"`
	Level           level                `json:"level"`
	CurrentLimits   map[string]remaining `json:"currentLimits"`
	CanTradeAfter   *time.Time           `json:"canTradeAfter"`
}

func (t traderResponse) toDomain() *domain.Profile {
	limits := make(map[domain.Medium]domain.LevelLimit)
	for medium, l := range t.Level.Limits {
		limits[domain.Medium(medium)] = domain.LevelLimit{InDaily: l.In.Daily}
	}
	current := make(map[domain.Medium]domain.MediumLimit)
	for medium, l := range t.CurrentLimits {
		current[domain.Medium(medium)] = domain.MediumLimit{InRemaining: l.In}
	}
	return &domain.Profile{
		CurrentLimits:   current,
		Level:           domain.Level{Name: t.Level.Name, Limits: limits},
		CanTradeAfter:   t.CanTradeAfter,
		DefaultCurrency: t.DefaultCurrency,
	}
}

type kycResponse struct {
	ID         int64     `json:"id"`
	State      string    `json:"state"`
	CreateTime time.Time `json:"createTime"`
}

func (k kycResponse) toDomain() domain.KYC {
	return domain.KYC{
		ID:        strconv.FormatInt(k.ID, 10),
		State:     domain.KYCState(k.State),
		CreatedAt: k.CreateTime,
	}
}

type paymentMethod struct {
	InMedium      string   `json:"inMedium"`
	OutMedium     string   `json:"outMedium"`
	InCurrencies  []string `json:"inCurrencies"`
	OutCurrencies []string `json:"outCurrencies"`
}

type rateResponse struct {
	Rate decimal.Decimal `json:"rate"`
}

type bankAccountResponse struct {
	ID     int64  `json:"id"`
	Holder string `json:"holderName"`
	Status string `json:"status"`
}
