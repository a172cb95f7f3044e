package httpinterface

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/application"
	"github.com/tdex-network/buysell-daemon/internal/core/application/pubsub"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/wallet"
)

// WalletService is the wallet state the daemon is running for.
type WalletService interface {
	Login(info wallet.LoginInfo) error
	Logout()
}

type HandlerOpts struct {
	BuySellSvc application.BuySellService
	WalletSvc  WalletService
	PubSubSvc  *pubsub.Service
	TickerSvc  application.TickerService
	OptionsSvc ports.OptionsService
	// BuySellDebug enables the buy-sell flow regardless of the options
	// document.
	BuySellDebug bool
}

func (o HandlerOpts) validate() error {
	if o.BuySellSvc == nil {
		return fmt.Errorf("buy-sell app service must not be null")
	}
	if o.WalletSvc == nil {
		return fmt.Errorf("wallet service must not be null")
	}
	if o.PubSubSvc == nil {
		return fmt.Errorf("pubsub app service must not be null")
	}
	if o.TickerSvc == nil {
		return fmt.Errorf("ticker app service must not be null")
	}
	if o.OptionsSvc == nil {
		return fmt.Errorf("options service must not be null")
	}
	return nil
}

type handler struct {
	opts HandlerOpts

	lock    sync.Mutex
	kycPoll *application.Poll
}

// NewHandler returns the HTTP/JSON operator API.
func NewHandler(opts HandlerOpts) (http.Handler, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}
	h := &handler{opts: opts}

	mux := http.NewServeMux()

	// Session
	mux.HandleFunc("GET /v1/status", h.status)
	mux.HandleFunc("POST /v1/login", h.login)
	mux.HandleFunc("POST /v1/logout", h.logout)
	mux.HandleFunc("GET /v1/options", h.options)

	// Quotes and trades
	mux.HandleFunc("POST /v1/quote", h.getQuote)
	mux.HandleFunc("GET /v1/rate", h.getRate)
	mux.HandleFunc("GET /v1/limits", h.calculateMax)
	mux.HandleFunc("GET /v1/currency", h.getCurrency)
	mux.HandleFunc("GET /v1/trades", h.getTrades)
	mux.HandleFunc("POST /v1/trades/{id}/cancel", h.cancelTrade)
	mux.HandleFunc("POST /v1/buy-view", h.openBuyView)
	mux.HandleFunc("GET /v1/txs/{hash}/method", h.getTxMethod)

	// Profile and KYC
	mux.HandleFunc("GET /v1/profile", h.fetchProfile)
	mux.HandleFunc("GET /v1/kycs", h.getKYCs)
	mux.HandleFunc("POST /v1/kycs", h.triggerKYC)
	mux.HandleFunc("GET /v1/kycs/open", h.getOpenKYC)
	mux.HandleFunc("POST /v1/kycs/poll", h.pollKYC)
	mux.HandleFunc("GET /v1/kycs/poll", h.kycPollStatus)
	mux.HandleFunc("POST /v1/kycs/{id}/poll-level", h.pollUserLevel)

	// SFOX checkout
	mux.HandleFunc("POST /v1/checkout", h.openCheckout)
	mux.HandleFunc("GET /v1/checkout", h.checkoutState)
	mux.HandleFunc("POST /v1/checkout/input", h.checkoutInput)
	mux.HandleFunc("POST /v1/checkout/refresh", h.checkoutRefresh)
	mux.HandleFunc("POST /v1/checkout/buy", h.checkoutBuy)
	mux.HandleFunc("DELETE /v1/checkout", h.closeCheckout)

	// Coinify quick start
	mux.HandleFunc("POST /v1/quickstart", h.openQuickStart)
	mux.HandleFunc("GET /v1/quickstart", h.quickStartState)
	mux.HandleFunc("POST /v1/quickstart/input", h.quickStartInput)
	mux.HandleFunc("POST /v1/quickstart/quote", h.quickStartQuote)
	mux.HandleFunc("POST /v1/quickstart/rate", h.quickStartRate)
	mux.HandleFunc("POST /v1/quickstart/modal", h.quickStartModal)
	mux.HandleFunc("POST /v1/quickstart/trades/{id}/cancel", h.quickStartCancelTrade)
	mux.HandleFunc("DELETE /v1/quickstart", h.closeQuickStart)

	// Events
	mux.HandleFunc("GET /v1/webhooks", h.listWebhooks)
	mux.HandleFunc("POST /v1/webhooks", h.addWebhook)
	mux.HandleFunc("DELETE /v1/webhooks/{id}", h.removeWebhook)
	mux.HandleFunc("GET /v1/events", h.listEvents)

	// Market
	mux.HandleFunc("GET /v1/tickers", h.listTickers)
	mux.HandleFunc("GET /v1/tickers/{base}/{quote}", h.getTicker)

	mux.Handle("GET /metrics", promhttp.Handler())

	return logger(mux), nil
}

func logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debugf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// staticConfirmer answers every confirmation prompt with the choice sent
// along with the request.
type staticConfirmer bool

func (c staticConfirmer) Confirm(
	_ context.Context, _ string, _ ports.ConfirmOptions,
) (bool, error) {
	return bool(c), nil
}
