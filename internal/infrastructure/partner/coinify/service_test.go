package coinify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/partner/coinify"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/wallet"
)

const (
	offlineToken   = "offline-token"
	accessToken    = "access-token"
	receiveAddress = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"
)

type mockedCoinify struct {
	authCalls int32
	lastQuote map[string]interface{}
	lastBuy   map[string]interface{}
}

func (m *mockedCoinify) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.authCalls, 1)
		req := map[string]interface{}{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["offline_token"] != offlineToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]interface{}{
			"access_token": accessToken, "expires_in": 1200,
		})
	})
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+accessToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h(w, r)
		}
	}
	mux.HandleFunc("/trades/quote", authed(func(w http.ResponseWriter, r *http.Request) {
		m.lastQuote = map[string]interface{}{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m.lastQuote))
		writeJSON(w, map[string]interface{}{
			"id":            42,
			"baseCurrency":  m.lastQuote["baseCurrency"],
			"quoteCurrency": m.lastQuote["quoteCurrency"],
			"baseAmount":    m.lastQuote["baseAmount"],
			"quoteAmount":   "-27000.12",
			"expiryTime":    "2099-01-01T00:00:00Z",
		})
	}))
	mux.HandleFunc("/trades", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			m.lastBuy = map[string]interface{}{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&m.lastBuy))
			writeJSON(w, testTrades()[0])
			return
		}
		writeJSON(w, testTrades())
	}))
	mux.HandleFunc("/trades/1/cancel", authed(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		trade := testTrades()[0]
		trade["state"] = "cancelled"
		writeJSON(w, trade)
	}))
	mux.HandleFunc("/trades/404", authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		//nolint
		w.Write([]byte(`{"error":"trade_not_found"}`))
	}))
	mux.HandleFunc("/traders/me", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"defaultCurrency": "EUR",
			"level": map[string]interface{}{
				"name": "2",
				"limits": map[string]interface{}{
					"bank": map[string]interface{}{"in": map[string]interface{}{"daily": 1000}},
					"card": map[string]interface{}{"in": map[string]interface{}{"daily": 300}},
				},
			},
			"currentLimits": map[string]interface{}{
				"bank": map[string]interface{}{"in": 500},
				"card": map[string]interface{}{"in": 150},
			},
		})
	}))
	mux.HandleFunc("/kyc", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, map[string]interface{}{
				"id": 3, "state": "pending", "createTime": "2023-01-03T00:00:00Z",
			})
			return
		}
		writeJSON(w, []map[string]interface{}{
			{"id": 1, "state": "rejected", "createTime": "2023-01-01T00:00:00Z"},
			{"id": 2, "state": "pending", "createTime": "2023-01-02T00:00:00Z"},
		})
	}))
	mux.HandleFunc("/trades/payment-methods", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{
			{"inMedium": "card", "outMedium": "blockchain", "inCurrencies": []string{"EUR", "USD"}},
			{"inMedium": "bank", "outMedium": "blockchain", "inCurrencies": []string{"EUR", "DKK"}},
			{"inMedium": "blockchain", "outMedium": "bank", "inCurrencies": []string{"BTC"}},
		})
	}))
	return mux
}

func testTrades() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"id": 1, "state": "awaiting_transfer_in",
			"inCurrency": "EUR", "outCurrency": "BTC",
			"inAmount": 100, "outAmountExpected": 0.0037,
			"transferIn":  map[string]interface{}{"medium": "bank"},
			"transferOut": map[string]interface{}{"medium": "blockchain", "details": map[string]interface{}{"account": receiveAddress}},
			"createTime":  "2023-01-01T00:00:00Z",
		},
		{
			"id": 2, "state": "completed",
			"inCurrency": "EUR", "outCurrency": "BTC",
			"inAmount": 50, "outAmountExpected": 0.0018,
			"transferIn":  map[string]interface{}{"medium": "card"},
			"transferOut": map[string]interface{}{"medium": "blockchain", "details": map[string]interface{}{"account": receiveAddress, "transactionId": "abcd"}},
			"createTime":  "2023-01-02T00:00:00Z",
		},
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	//nolint
	json.NewEncoder(w).Encode(v)
}

func newTestService(t *testing.T) (ports.Exchange, *mockedCoinify) {
	mock := &mockedCoinify{}
	server := httptest.NewServer(mock.handler(t))
	t.Cleanup(server.Close)

	w := wallet.NewService("mainnet")
	require.NoError(t, w.Login(wallet.LoginInfo{
		Accounts:      []wallet.Account{{Index: 0, ReceiveAddress: receiveAddress}},
		Currency:      "EUR",
		ExternalData:  true,
		PartnerTokens: map[string]string{ports.ExchangeCoinify: offlineToken},
	}))

	svc := coinify.NewService(coinify.Opts{
		Wallet:         w,
		RequestTimeout: time.Second,
		RateLimit:      100,
		BaseURL:        server.URL,
	})
	svc.Configure(ports.ExchangeConfig{Testnet: true, PartnerID: 18})
	return svc, mock
}

func TestGetBuyQuote(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	// One bitcoin, expressed in satoshis, sold for euros.
	amount := decimal.NewFromInt(-100000000)
	quote, err := svc.GetBuyQuote(ctx, amount, "BTC", "EUR")
	require.NoError(t, err)
	require.Equal(t, "42", quote.ID)
	require.True(t, amount.Equal(quote.BaseAmount))
	require.Equal(t, "-2700012", quote.QuoteAmount.String())
	require.Equal(t, "-1", mock.lastQuote["baseAmount"])
	require.False(t, quote.IsExpired(time.Now()))

	// Access token is reused.
	_, err = svc.GetBuyQuote(ctx, decimal.NewFromInt(1234), "EUR", "BTC")
	require.NoError(t, err)
	require.Equal(t, "12.34", mock.lastQuote["baseAmount"])
	require.Equal(t, int32(1), atomic.LoadInt32(&mock.authCalls))
}

func TestTrades(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.Empty(t, svc.CachedTrades())

	trades, err := svc.GetTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	require.Equal(t, "1", trades[0].ID)
	require.True(t, trades[0].IsBuy)
	require.Equal(t, domain.MediumBank, trades[0].Medium)
	require.Equal(t, receiveAddress, trades[0].ReceiveAddress)
	require.Equal(t, "abcd", trades[1].TxHash)
	require.Len(t, svc.CachedTrades(), 2)

	err = svc.CancelTrade(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, domain.TradeStateCancelled, svc.CachedTrades()[0].State)

	_, err = svc.RefreshTrade(ctx, "404")
	var partnerErr *ports.PartnerError
	require.True(t, errors.As(err, &partnerErr))
	require.Equal(t, http.StatusNotFound, partnerErr.Status)
}

func TestBuy(t *testing.T) {
	svc, mock := newTestService(t)

	quote := domain.Quote{ID: "42", BaseCurrency: "EUR", QuoteCurrency: "BTC"}
	trade, err := svc.Buy(context.Background(), quote, domain.MediumBank, "")
	require.NoError(t, err)
	require.NotNil(t, trade)
	require.Equal(t, float64(42), mock.lastBuy["priceQuoteId"])

	transferOut := mock.lastBuy["transferOut"].(map[string]interface{})
	details := transferOut["details"].(map[string]interface{})
	require.Equal(t, receiveAddress, details["account"])
}

func TestProfileAndKYCs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.FetchProfile(ctx)
	require.NoError(t, err)
	require.True(t, profile.IsVerified())
	require.Equal(t, "EUR", profile.DefaultCurrency)

	limits, err := profile.CalculateMax(decimal.NewFromInt(1), domain.MediumCard)
	require.NoError(t, err)
	require.Equal(t, "300.00", limits.Max)
	require.Equal(t, "150.00", limits.Available)

	kycs, err := svc.GetKYCs(ctx)
	require.NoError(t, err)
	require.Len(t, kycs, 2)

	kyc, err := svc.TriggerKYC(ctx)
	require.NoError(t, err)
	require.True(t, kyc.IsPending())

	codes, err := svc.GetBuyCurrencies(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"EUR", "USD", "DKK"}, codes)

	mediums, err := svc.GetPaymentMediums(ctx, domain.Quote{BaseCurrency: "EUR", QuoteCurrency: "BTC"})
	require.NoError(t, err)
	require.Contains(t, mediums, domain.MediumBank)
}

func TestMissingOfflineToken(t *testing.T) {
	w := wallet.NewService("mainnet")
	svc := coinify.NewService(coinify.Opts{Wallet: w, BaseURL: "http://localhost:0"})
	svc.Configure(ports.ExchangeConfig{})

	_, err := svc.GetTrades(context.Background())
	require.Error(t, err)
}
