package httpinterface_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/buysell-daemon/internal/core/application"
	"github.com/tdex-network/buysell-daemon/internal/core/application/pubsub"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/wallet"
	httpinterface "github.com/tdex-network/buysell-daemon/internal/interfaces/http"
)

// stubBuySell overrides the service methods exercised by the tests. Calling
// any other method panics.
type stubBuySell struct {
	application.BuySellService

	loginErr  error
	confirmed *bool
	txMethods map[string]domain.Direction
	profile   *domain.Profile
	profErr   error
}

func (s *stubBuySell) Status() application.Status {
	return application.Status{LoggedIn: true, HasExchanges: true, Generation: 3}
}

func (s *stubBuySell) Login(context.Context) error { return s.loginErr }

func (s *stubBuySell) Logout() {}

func (s *stubBuySell) CancelTrade(
	ctx context.Context, _ string, confirmer ports.Confirmer,
) (application.CancelOutcome, error) {
	ok, err := confirmer.Confirm(ctx, "CONFIRM_CANCEL_TRADE", ports.ConfirmOptions{})
	if err != nil {
		return application.CancelFailed, err
	}
	s.confirmed = &ok
	if !ok {
		return application.CancelDeclined, nil
	}
	return application.CancelDone, nil
}

func (s *stubBuySell) GetTxMethod(
	_ context.Context, txHash string,
) (domain.Direction, error) {
	d, ok := s.txMethods[txHash]
	if !ok {
		return "", domain.ErrTxMethodNotFound
	}
	return d, nil
}

func (s *stubBuySell) FetchProfile(context.Context, bool) (*domain.Profile, error) {
	return s.profile, s.profErr
}

func (s *stubBuySell) Checkout() (*application.Checkout, error) {
	return nil, application.ErrCheckoutNotOpen
}

type stubOptions struct{}

func (stubOptions) Fetch(context.Context) (*ports.Options, error) {
	return &ports.Options{ShowBuySellTab: []string{"US"}}, nil
}

func (stubOptions) Cached() (*ports.Options, bool) { return nil, false }

type testServer struct {
	svc    *stubBuySell
	pubsub *pubsub.Service
	h      http.Handler
}

func newTestServer(t *testing.T) *testServer {
	svc := &stubBuySell{txMethods: map[string]domain.Direction{"tx1": domain.DirectionSell}}
	pubsubSvc := pubsub.NewService(nil)
	h, err := httpinterface.NewHandler(httpinterface.HandlerOpts{
		BuySellSvc: svc,
		WalletSvc:  wallet.NewService(application.NetworkMainnet),
		PubSubSvc:  pubsubSvc,
		TickerSvc:  application.NewTickerService(nil),
		OptionsSvc: stubOptions{},
	})
	require.NoError(t, err)
	return &testServer{svc, pubsubSvc, h}
}

func (s *testServer) do(
	t *testing.T, method, path string, body interface{},
) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)

	var res map[string]interface{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	}
	return rec, res
}

func TestNewHandlerInvalidOpts(t *testing.T) {
	_, err := httpinterface.NewHandler(httpinterface.HandlerOpts{})
	require.Error(t, err)
}

func TestStatus(t *testing.T) {
	s := newTestServer(t)

	rec, res := s.do(t, http.MethodGet, "/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, res["logged_in"])
	require.Equal(t, float64(3), res["generation"])
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		loginErr   error
		wantStatus int
	}{
		{
			name:       "no accounts",
			body:       wallet.LoginInfo{Currency: domain.CurrencyUSD},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "invalid address",
			body: wallet.LoginInfo{
				Accounts: []wallet.Account{{Index: 0, ReceiveAddress: "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"}},
				Currency: domain.CurrencyUSD,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "profile failure",
			body: wallet.LoginInfo{
				Accounts: []wallet.Account{{Index: 0}},
				Currency: domain.CurrencyUSD,
			},
			loginErr: &application.ProfileError{
				Code: "EMAIL_NOT_VERIFIED", Err: errors.New("partner"),
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "ok",
			body: wallet.LoginInfo{
				Accounts: []wallet.Account{{Index: 0}},
				Currency: domain.CurrencyUSD,
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.svc.loginErr = tt.loginErr

			rec, res := s.do(t, http.MethodPost, "/v1/login", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.loginErr != nil {
				require.Equal(t, "EMAIL_NOT_VERIFIED", res["code"])
			}
		})
	}
}

func TestLoginMalformedBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/login", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelTradeConfirmation(t *testing.T) {
	s := newTestServer(t)

	rec, res := s.do(t, http.MethodPost, "/v1/trades/t1/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "DECLINED", res["outcome"])
	require.False(t, *s.svc.confirmed)

	rec, res = s.do(t, http.MethodPost, "/v1/trades/t1/cancel", map[string]bool{"confirm": true})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "CANCELLED", res["outcome"])
	require.True(t, *s.svc.confirmed)
}

func TestGetTxMethod(t *testing.T) {
	s := newTestServer(t)

	rec, res := s.do(t, http.MethodGet, "/v1/txs/tx1/method", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "sell", res["direction"])

	rec, res = s.do(t, http.MethodGet, "/v1/txs/unknown/method", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotEmpty(t, res["error"])
}

func TestFetchProfile(t *testing.T) {
	s := newTestServer(t)
	s.svc.profErr = &application.ProfileError{
		Code: "INVALID_REQUEST", Err: errors.New("boom"),
	}

	rec, res := s.do(t, http.MethodGet, "/v1/profile?lean=true", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "INVALID_REQUEST", res["code"])

	s.svc.profErr = nil
	s.svc.profile = &domain.Profile{Level: domain.Level{Name: "2"}}
	rec, res = s.do(t, http.MethodGet, "/v1/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, res["verified"])
}

func TestCheckoutNotOpen(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/v1/checkout", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/v1/checkout/refresh", map[string]string{"field": "eur"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvents(t *testing.T) {
	s := newTestServer(t)
	s.pubsub.DisplayError("ERROR_QUOTE_FETCH")
	s.pubsub.GoToBuySell()

	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events?since=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var events []pubsub.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	require.Equal(t, pubsub.EventNavigate, events[0].Event)

	rec, _ = s.do(t, http.MethodGet, "/v1/events?since=abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhooksDisabled(t *testing.T) {
	s := newTestServer(t)

	rec, res := s.do(t, http.MethodPost, "/v1/webhooks", map[string]string{
		"event":    pubsub.EventBuyView,
		"endpoint": "http://localhost:8080/hook",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "webhooks are not enabled", res["error"])
}

func TestOptionsAndTickers(t *testing.T) {
	s := newTestServer(t)

	rec, res := s.do(t, http.MethodGet, "/v1/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, res["buy_sell_enabled"])

	rec, _ = s.do(t, http.MethodGet, "/v1/tickers/btc/usd", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
