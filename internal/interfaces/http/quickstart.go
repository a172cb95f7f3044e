package httpinterface

import (
	"net/http"

	"github.com/tdex-network/buysell-daemon/internal/core/application"
)

type quickStartRequest struct {
	Currency string `json:"currency"`
}

func (h *handler) openQuickStart(w http.ResponseWriter, r *http.Request) {
	var req quickStartRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	q, err := h.opts.BuySellSvc.OpenQuickStart(r.Context(), req.Currency)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newQuickStartResponse(q.State()))
}

func (h *handler) quickStartState(w http.ResponseWriter, r *http.Request) {
	q, err := h.opts.BuySellSvc.QuickStart()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuickStartResponse(q.State()))
}

// quickStartInput records the amount last edited and/or changes the currency.
// The quote is requested separately.
func (h *handler) quickStartInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	q, err := h.opts.BuySellSvc.QuickStart()
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Currency != "" {
		if err := q.SetCurrency(req.Currency); err != nil {
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
			q.SetFiat(amount)
		case application.FieldBTC:
			q.SetBTC(amount)
		default:
			writeError(w, application.ErrInvalidField)
			return
		}
	}
	writeJSON(w, http.StatusOK, newQuickStartResponse(q.State()))
}

func (h *handler) quickStartQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.opts.BuySellSvc.QuickStart()
	if err != nil {
		writeError(w, err)
		return
	}
	q.GetQuote(r.Context())
	writeJSON(w, http.StatusOK, newQuickStartResponse(q.State()))
}

func (h *handler) quickStartRate(w http.ResponseWriter, r *http.Request) {
	q, err := h.opts.BuySellSvc.QuickStart()
	if err != nil {
		writeError(w, err)
		return
	}
	q.GetExchangeRate(r.Context())
	writeJSON(w, http.StatusOK, newQuickStartResponse(q.State()))
}

func (h *handler) quickStartModal(w http.ResponseWriter, r *http.Request) {
	var req modalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	q, err := h.opts.BuySellSvc.QuickStart()
	if err != nil {
		writeError(w, err)
		return
	}
	q.SetModalOpen(r.Context(), req.Open)
	writeJSON(w, http.StatusOK, newQuickStartResponse(q.State()))
}

func (h *handler) quickStartCancelTrade(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	q, err := h.opts.BuySellSvc.QuickStart()
	if err != nil {
		writeError(w, err)
		return
	}

	outcome, err := q.CancelTrade(
		r.Context(), r.PathValue("id"), staticConfirmer(req.Confirm),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelResponse{Outcome: outcome.String()})
}

func (h *handler) closeQuickStart(w http.ResponseWriter, r *http.Request) {
	h.opts.BuySellSvc.CloseQuickStart()
	writeJSON(w, http.StatusNoContent, nil)
}
