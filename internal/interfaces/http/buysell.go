package httpinterface

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/buysell-daemon/internal/core/application"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
)

func (h *handler) getQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Currency == "" || req.QuoteCurrency == "" {
		writeError(w, errBadRequest)
		return
	}

	quote, err := h.opts.BuySellSvc.GetQuote(
		r.Context(), req.Amount, req.Currency, req.QuoteCurrency,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuoteResponse(quote))
}

func (h *handler) getRate(w http.ResponseWriter, r *http.Request) {
	base, quote := r.URL.Query().Get("base"), r.URL.Query().Get("quote")
	if base == "" || quote == "" {
		writeError(w, errBadRequest)
		return
	}

	rate, err := h.opts.BuySellSvc.GetRate(r.Context(), base, quote)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"rate": rate})
}

func (h *handler) calculateMax(w http.ResponseWriter, r *http.Request) {
	rate, err := decimal.NewFromString(r.URL.Query().Get("rate"))
	if err != nil {
		writeError(w, errBadRequest)
		return
	}
	medium := domain.Medium(r.URL.Query().Get("medium"))

	limits, err := h.opts.BuySellSvc.CalculateMax(rate, medium)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, limitsResponse{
		Max:       limits.Max,
		Available: limits.Available,
	})
}

func (h *handler) getCurrency(w http.ResponseWriter, r *http.Request) {
	var trade *domain.Trade
	if id := r.URL.Query().Get("trade_id"); id != "" {
		trade = h.findTrade(id)
		if trade == nil {
			writeError(w, application.ErrTradeNotFound)
			return
		}
	}

	currency, err := h.opts.BuySellSvc.GetCurrency(trade)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, currency)
}

// getTrades returns the cached trade list, fetched again if refresh is set.
func (h *handler) getTrades(w http.ResponseWriter, r *http.Request) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	if !refresh {
		writeJSON(w, http.StatusOK, newTradesResponse(h.opts.BuySellSvc.Trades()))
		return
	}

	trades, err := h.opts.BuySellSvc.GetTrades(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTradesResponse(trades))
}

func (h *handler) cancelTrade(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.opts.BuySellSvc.CancelTrade(
		r.Context(), r.PathValue("id"), staticConfirmer(req.Confirm),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelResponse{Outcome: outcome.String()})
}

func (h *handler) openBuyView(w http.ResponseWriter, r *http.Request) {
	var req buyViewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var trade *domain.Trade
	if req.TradeID != "" {
		trade = &domain.Trade{ID: req.TradeID}
	}
	opts := ports.BuyViewOptions{BitcoinReceived: req.BitcoinReceived}
	if err := h.opts.BuySellSvc.OpenBuyView(r.Context(), trade, opts); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, nil)
}

func (h *handler) getTxMethod(w http.ResponseWriter, r *http.Request) {
	direction, err := h.opts.BuySellSvc.GetTxMethod(r.Context(), r.PathValue("hash"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"direction": string(direction)})
}

func (h *handler) fetchProfile(w http.ResponseWriter, r *http.Request) {
	lean, _ := strconv.ParseBool(r.URL.Query().Get("lean"))

	profile, err := h.opts.BuySellSvc.FetchProfile(r.Context(), lean)
	if err != nil && profile == nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(profile))
}

func (h *handler) findTrade(id string) *domain.Trade {
	buckets := h.opts.BuySellSvc.Trades()
	for _, list := range [][]domain.Trade{buckets.Pending, buckets.Completed} {
		for i := range list {
			if list[i].ID == id {
				trade := list[i]
				return &trade
			}
		}
	}
	return nil
}
