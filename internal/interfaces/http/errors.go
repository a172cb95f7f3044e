package httpinterface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/application"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/partner"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/wallet"
)

var (
	errBadRequest  = errors.New("malformed request body")
	errKYCNotFound = errors.New("kyc not found")
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

var statusByError = []struct {
	err    error
	status int
}{
	{errBadRequest, http.StatusBadRequest},
	{application.ErrInvalidField, http.StatusBadRequest},
	{application.ErrInvalidCurrency, http.StatusBadRequest},
	{domain.ErrUnknownMedium, http.StatusBadRequest},
	{domain.ErrInvalidRate, http.StatusBadRequest},
	{wallet.ErrNoAccounts, http.StatusBadRequest},
	{wallet.ErrInvalidDefaultIndex, http.StatusBadRequest},
	{wallet.ErrInvalidCurrency, http.StatusBadRequest},
	{wallet.ErrInvalidAddress, http.StatusBadRequest},
	{application.ErrNotLoggedIn, http.StatusUnauthorized},
	{application.ErrTradeNotFound, http.StatusNotFound},
	{application.ErrCurrencyNotFound, http.StatusNotFound},
	{domain.ErrTxMethodNotFound, http.StatusNotFound},
	{errKYCNotFound, http.StatusNotFound},
	{application.ErrExchangeUnavailable, http.StatusConflict},
	{application.ErrProfileNotFetched, http.StatusConflict},
	{application.ErrNoPendingKYC, http.StatusConflict},
	{application.ErrCheckoutLocked, http.StatusConflict},
	{application.ErrCheckoutNotOpen, http.StatusConflict},
	{application.ErrCheckoutNotAllowed, http.StatusConflict},
	{application.ErrQuickStartNotOpen, http.StatusConflict},
	{application.ErrNoQuote, http.StatusConflict},
	{application.ErrMediumUnavailable, http.StatusConflict},
	{application.ErrPollCanceled, http.StatusConflict},
	{partner.ErrNotSupported, http.StatusNotImplemented},
	{application.ErrPollTimeout, http.StatusGatewayTimeout},
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
}

func statusFromError(err error) int {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}

	var profileErr *application.ProfileError
	if errors.As(err, &profileErr) {
		return http.StatusBadGateway
	}
	var partnerErr *ports.PartnerError
	if errors.As(err, &partnerErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Warn("request failed")
	}

	res := errorResponse{Error: err.Error()}
	var profileErr *application.ProfileError
	if errors.As(err, &profileErr) {
		res.Code = profileErr.Code
	}
	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Debug("failed to write response")
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}
