package httpinterface

import (
	"net/http"

	"github.com/tdex-network/buysell-daemon/internal/core/application"
)

func (h *handler) openCheckout(w http.ResponseWriter, r *http.Request) {
	checkout, err := h.opts.BuySellSvc.OpenCheckout(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCheckoutResponse(checkout.State()))
}

func (h *handler) checkoutState(w http.ResponseWriter, r *http.Request) {
	checkout, err := h.opts.BuySellSvc.Checkout()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCheckoutResponse(checkout.State()))
}

// checkoutInput switches the base currency and/or updates one of the amounts.
// A quote refresh is scheduled if the base amount is valid.
func (h *handler) checkoutInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	checkout, err := h.opts.BuySellSvc.Checkout()
	if err != nil {
		writeError(w, err)
		return
	}

	if req.BaseCurrency != "" {
		if err := checkout.SetBaseCurrency(req.BaseCurrency); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Field != "" {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			writeError(w, errBadRequest)
			return
		}
		switch req.Field {
		case application.FieldFiat:
			checkout.SetFiat(amount)
		case application.FieldBTC:
			checkout.SetBTC(amount)
		default:
			writeError(w, application.ErrInvalidField)
			return
		}
	}
	writeJSON(w, http.StatusOK, newCheckoutResponse(checkout.State()))
}

func (h *handler) checkoutRefresh(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Field != application.FieldFiat && req.Field != application.FieldBTC {
		writeError(w, application.ErrInvalidField)
		return
	}
	checkout, err := h.opts.BuySellSvc.Checkout()
	if err != nil {
		writeError(w, err)
		return
	}

	checkout.RefreshIfValid(req.Field)
	writeJSON(w, http.StatusOK, newCheckoutResponse(checkout.State()))
}

func (h *handler) checkoutBuy(w http.ResponseWriter, r *http.Request) {
	checkout, err := h.opts.BuySellSvc.Checkout()
	if err != nil {
		writeError(w, err)
		return
	}

	checkout.EnableBuy()
	trade, err := checkout.Buy(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTradeResponse(*trade))
}

func (h *handler) closeCheckout(w http.ResponseWriter, r *http.Request) {
	h.opts.BuySellSvc.CloseCheckout()
	writeJSON(w, http.StatusNoContent, nil)
}
