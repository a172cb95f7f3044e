package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	centsPerUnit       = decimal.NewFromInt(100)
	satoshisPerBitcoin = decimal.NewFromInt(100000000)
)

// Quote is a priced exchange-rate offer with an expiration time.
type Quote struct {
	ID            string
	BaseAmount    decimal.Decimal
	BaseCurrency  string
	QuoteCurrency string
	QuoteAmount   decimal.Decimal
	ExpiresAt     time.Time
}

// TimeToExpiration returns how long the quote is still valid for, 0 if it's
// already expired.
func (q Quote) TimeToExpiration(now time.Time) time.Duration {
	d := q.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

func (q Quote) IsExpired(now time.Time) bool {
	return !now.Before(q.ExpiresAt)
}

// ToCents scales a fiat amount to integer cents, truncating toward zero.
func ToCents(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(centsPerUnit).Truncate(0)
}

// FromCents scales an amount in cents back to fiat units.
func FromCents(cents decimal.Decimal) decimal.Decimal {
	return cents.Div(centsPerUnit)
}

// ToSatoshis scales a bitcoin amount to integer satoshis, truncating toward
// zero.
func ToSatoshis(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(satoshisPerBitcoin).Truncate(0)
}

// FromSatoshis scales an amount in satoshis back to bitcoin.
func FromSatoshis(sats decimal.Decimal) decimal.Decimal {
	return sats.Div(satoshisPerBitcoin)
}

// QuoteRequestAmount converts a user-entered amount into the integer amount
// expected by the quote endpoint: satoshis when the base currency is bitcoin,
// cents otherwise. The sign is preserved.
func QuoteRequestAmount(amount decimal.Decimal, baseCurrency string) decimal.Decimal {
	if baseCurrency == CurrencyBTC {
		return ToSatoshis(amount)
	}
	return ToCents(amount)
}

// BankAccount is a payment account linked with an exchange partner.
type BankAccount struct {
	ID     string
	Name   string
	Status string
}

func (a BankAccount) IsActive() bool {
	return a.Status == "active"
}
