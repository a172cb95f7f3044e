package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/buysell-daemon/internal/core/application"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
)

var achAccount = domain.BankAccount{ID: "acc-1", Name: "checking", Status: "active"}

func newCheckoutEnv(t *testing.T) (*testEnv, *application.Checkout) {
	e := newTestEnv(mainnetEnv)
	e.sfox.On("FetchProfile", mock.Anything).
		Return(&domain.Profile{BuyLimit: decimal.NewFromInt(1000)}, nil)
	e.sfox.On("GetAccounts", mock.Anything, domain.MediumACH).
		Return([]domain.BankAccount{achAccount}, nil)

	checkout, err := e.svc.OpenCheckout(context.Background())
	require.NoError(t, err)
	return e, checkout
}

func fiatQuote() *domain.Quote {
	return &domain.Quote{
		ID:            "q1",
		BaseAmount:    decimal.NewFromInt(3000),
		BaseCurrency:  domain.CurrencyUSD,
		QuoteCurrency: domain.CurrencyBTC,
		QuoteAmount:   decimal.RequireFromString("0.001"),
		ExpiresAt:     time.Now().Add(time.Hour),
	}
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestCheckoutDebouncesQuotes(t *testing.T) {
	e, checkout := newCheckoutEnv(t)
	defer checkout.Close()
	e.sfox.On(
		"GetBuyQuote", mock.Anything, "3000", domain.CurrencyUSD, domain.CurrencyBTC,
	).Return(fiatQuote(), nil)

	checkout.SetFiat(amount("10"))
	checkout.SetFiat(amount("20"))
	checkout.SetFiat(amount("30"))

	require.Eventually(t, func() bool {
		return checkout.State().Quote != nil
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	e.sfox.AssertNumberOfCalls(t, "GetBuyQuote", 1)

	state := checkout.State()
	require.True(t, state.BaseFiat)
	require.Equal(t, domain.CurrencyBTC, state.QuoteCurrency)
	require.Equal(t, "0.001", state.BTC.Decimal.String())
	require.False(t, state.LoadFailed)
	require.True(t, state.RefreshArmed)
	require.Equal(t, achAccount, state.Account)
}

func TestCheckoutInvalidAmountCancelsRefresh(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.NullDecimal
	}{
		{"empty", decimal.NullDecimal{}},
		{"zero", amount("0")},
		{"above max", amount("1000.01")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e, checkout := newCheckoutEnv(t)
			defer checkout.Close()

			checkout.SetFiat(amount("50"))
			checkout.SetFiat(tt.amount)

			time.Sleep(100 * time.Millisecond)
			e.sfox.AssertNotCalled(
				t, "GetBuyQuote", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
			)
			require.False(t, checkout.State().RefreshArmed)
		})
	}
}

func TestCheckoutInvalidAmountCancelsExpiryRefresh(t *testing.T) {
	e, checkout := newCheckoutEnv(t)
	defer checkout.Close()
	quote := fiatQuote()
	quote.ExpiresAt = time.Now().Add(300 * time.Millisecond)
	e.sfox.On(
		"GetBuyQuote", mock.Anything, "5000", domain.CurrencyUSD, domain.CurrencyBTC,
	).Return(quote, nil).Once()

	checkout.SetFiat(amount("50"))
	require.Eventually(t, func() bool {
		return checkout.State().Quote != nil
	}, time.Second, 5*time.Millisecond)
	require.True(t, checkout.State().RefreshArmed)

	checkout.SetFiat(decimal.NullDecimal{})
	require.False(t, checkout.State().RefreshArmed)

	time.Sleep(600 * time.Millisecond)
	e.sfox.AssertNotCalled(
		t, "GetBuyQuote", mock.Anything, "0", mock.Anything, mock.Anything,
	)
	e.sfox.AssertNumberOfCalls(t, "GetBuyQuote", 1)
	require.False(t, checkout.State().RefreshArmed)
}

func TestCheckoutInvalidAmountDropsInFlightQuote(t *testing.T) {
	e, checkout := newCheckoutEnv(t)
	defer checkout.Close()
	release := make(chan time.Time)
	e.sfox.On(
		"GetBuyQuote", mock.Anything, "5000", domain.CurrencyUSD, domain.CurrencyBTC,
	).WaitUntil(release).Return(fiatQuote(), nil).Once()

	checkout.SetFiat(amount("50"))
	time.Sleep(100 * time.Millisecond)
	checkout.SetFiat(decimal.NullDecimal{})
	close(release)
	time.Sleep(50 * time.Millisecond)

	state := checkout.State()
	require.Nil(t, state.Quote)
	require.False(t, state.BTC.Valid)
	require.False(t, state.RefreshArmed)
	e.sfox.AssertNumberOfCalls(t, "GetBuyQuote", 1)
}

func TestCheckoutCancelRefreshIdempotent(t *testing.T) {
	e, checkout := newCheckoutEnv(t)
	defer checkout.Close()
	e.sfox.On(
		"GetBuyQuote", mock.Anything, "3000", domain.CurrencyUSD, domain.CurrencyBTC,
	).Return(fiatQuote(), nil).Once()

	checkout.SetFiat(amount("30"))
	require.Eventually(t, func() bool {
		return checkout.State().RefreshArmed && checkout.State().Quote != nil
	}, time.Second, 5*time.Millisecond)

	checkout.CancelRefresh()
	require.False(t, checkout.State().RefreshArmed)
	checkout.CancelRefresh()

	state := checkout.State()
	require.False(t, state.RefreshArmed)
	require.NotNil(t, state.Quote)
	e.sfox.AssertNumberOfCalls(t, "GetBuyQuote", 1)
}

func TestCheckoutBTCBase(t *testing.T) {
	e, checkout := newCheckoutEnv(t)
	defer checkout.Close()
	quote := &domain.Quote{
		ID:            "q2",
		BaseCurrency:  domain.CurrencyBTC,
		QuoteCurrency: domain.CurrencyUSD,
		QuoteAmount:   decimal.NewFromInt(2700012),
		ExpiresAt:     time.Now().Add(time.Hour),
	}
	e.sfox.On(
		"GetBuyQuote", mock.Anything, "1", domain.CurrencyBTC, domain.CurrencyUSD,
	).Return(quote, nil)

	require.ErrorIs(t, checkout.SetBaseCurrency("EUR"), application.ErrInvalidCurrency)
	require.NoError(t, checkout.SetBaseCurrency(domain.CurrencyBTC))

	checkout.SetFiat(amount("10"))
	checkout.SetBTC(amount("1"))

	require.Eventually(t, func() bool {
		return checkout.State().Quote != nil
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, "27000.12", checkout.Total().Decimal.StringFixed(2))
}

func TestCheckoutBuy(t *testing.T) {
	t.Run("without quote", func(t *testing.T) {
		_, checkout := newCheckoutEnv(t)
		defer checkout.Close()

		_, err := checkout.Buy(context.Background())
		require.ErrorIs(t, err, application.ErrNoQuote)
		require.False(t, checkout.State().Locked)
	})

	t.Run("success", func(t *testing.T) {
		e, checkout := newCheckoutEnv(t)
		defer checkout.Close()
		trade := &domain.Trade{ID: "t1", State: domain.TradeStatePending, IsBuy: true}
		e.sfox.On("GetBuyQuote", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(fiatQuote(), nil)
		e.sfox.On("GetPaymentMediums", mock.Anything, mock.Anything).
			Return([]domain.Medium{domain.MediumACH}, nil)
		e.sfox.On("Buy", mock.Anything, mock.Anything, domain.MediumACH, achAccount.ID).
			Return(trade, nil)

		checkout.SetFiat(amount("30"))
		require.Eventually(t, func() bool {
			return checkout.State().Quote != nil
		}, time.Second, 5*time.Millisecond)
		checkout.EnableBuy()

		got, err := checkout.Buy(context.Background())
		require.NoError(t, err)
		require.Equal(t, trade, got)

		state := checkout.State()
		require.False(t, state.Locked)
		require.False(t, state.BuyEnabled)

		summaries := e.notifier.list("summary")
		require.Len(t, summaries, 1)
		require.Equal(t, "initiated", summaries[0].msg)
		require.Equal(t, "t1", summaries[0].trade.ID)
	})

	t.Run("medium unavailable", func(t *testing.T) {
		e, checkout := newCheckoutEnv(t)
		defer checkout.Close()
		e.sfox.On("GetBuyQuote", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(fiatQuote(), nil)
		e.sfox.On("GetPaymentMediums", mock.Anything, mock.Anything).
			Return([]domain.Medium{domain.MediumCard}, nil)

		checkout.SetFiat(amount("30"))
		require.Eventually(t, func() bool {
			return checkout.State().Quote != nil
		}, time.Second, 5*time.Millisecond)

		_, err := checkout.Buy(context.Background())
		require.ErrorIs(t, err, application.ErrMediumUnavailable)
		require.False(t, checkout.State().Locked)

		errs := e.notifier.list("error")
		require.Len(t, errs, 1)
		require.Equal(t, "Error connecting to our exchange partner", errs[0].msg)
	})

	t.Run("closed", func(t *testing.T) {
		_, checkout := newCheckoutEnv(t)
		checkout.Close()
		checkout.Close()

		_, err := checkout.Buy(context.Background())
		require.ErrorIs(t, err, application.ErrCheckoutNotOpen)
	})
}

func TestOpenCheckout(t *testing.T) {
	t.Run("no linked account", func(t *testing.T) {
		e := newTestEnv(mainnetEnv)
		e.sfox.On("FetchProfile", mock.Anything).Return(&domain.Profile{}, nil)
		e.sfox.On("GetAccounts", mock.Anything, domain.MediumACH).
			Return([]domain.BankAccount{}, nil)

		_, err := e.svc.OpenCheckout(context.Background())
		require.ErrorIs(t, err, application.ErrCheckoutNotAllowed)

		_, err = e.svc.Checkout()
		require.ErrorIs(t, err, application.ErrCheckoutNotOpen)
	})

	t.Run("reopen closes previous", func(t *testing.T) {
		e, first := newCheckoutEnv(t)

		second, err := e.svc.OpenCheckout(context.Background())
		require.NoError(t, err)
		require.False(t, first == second)

		_, err = first.Buy(context.Background())
		require.ErrorIs(t, err, application.ErrCheckoutNotOpen)

		current, err := e.svc.Checkout()
		require.NoError(t, err)
		require.True(t, current == second)

		e.svc.CloseCheckout()
		_, err = e.svc.Checkout()
		require.ErrorIs(t, err, application.ErrCheckoutNotOpen)
	})
}
