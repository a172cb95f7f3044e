package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/buysell-daemon/internal/core/application"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/partner"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/wallet"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errBadRequest, http.StatusBadRequest},
		{fmt.Errorf("%w bc1q for account 0", wallet.ErrInvalidAddress), http.StatusBadRequest},
		{application.ErrNotLoggedIn, http.StatusUnauthorized},
		{application.ErrTradeNotFound, http.StatusNotFound},
		{application.ErrCheckoutLocked, http.StatusConflict},
		{partner.ErrNotSupported, http.StatusNotImplemented},
		{fmt.Errorf("kyc k1: %w", application.ErrPollTimeout), http.StatusGatewayTimeout},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{&application.ProfileError{Code: "X", Err: errors.New("x")}, http.StatusBadGateway},
		{&ports.PartnerError{Status: http.StatusTeapot}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.want, statusFromError(tt.err))
		})
	}
}

func TestParseAmount(t *testing.T) {
	amount, err := parseAmount("")
	require.NoError(t, err)
	require.False(t, amount.Valid)

	amount, err = parseAmount("12.5")
	require.NoError(t, err)
	require.True(t, amount.Valid)
	require.Equal(t, "12.5", amount.Decimal.String())

	_, err = parseAmount("abc")
	require.Error(t, err)
}
