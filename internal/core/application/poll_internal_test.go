package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/pkg/asyncutil"
)

func TestPollCanceledBeforeStart(t *testing.T) {
	var calls int32

	p := newPoll()
	p.Cancel()
	p.start(func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	err := p.Wait(context.Background())
	require.ErrorIs(t, err, ErrPollCanceled)
	require.Zero(t, atomic.LoadInt32(&calls))
	require.False(t, p.IsRunning())
}

func TestPollError(t *testing.T) {
	other := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"success", nil, nil},
		{"canceled", fmt.Errorf("kyc 1: %w", context.Canceled), ErrPollCanceled},
		{"timeout", fmt.Errorf("kyc 1: %w", asyncutil.ErrMaxElapsedTime), ErrPollTimeout},
		{"other", other, other},
	}

	for _, tt := range tests {
		err := pollError(tt.err)
		if tt.want == nil {
			require.NoError(t, err, tt.name)
			continue
		}
		require.ErrorIs(t, err, tt.want, tt.name)
	}
}

func TestNewProfileError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "partner error code",
			err: &ports.PartnerError{
				Exchange: ports.ExchangeCoinify,
				Status:   400,
				Body:     `{"error": "email_not_verified"}`,
			},
			want: "EMAIL_NOT_VERIFIED",
		},
		{
			name: "json message",
			err:  errors.New(`{"error": "unauthorized"}`),
			want: "UNAUTHORIZED",
		},
		{
			name: "not json",
			err:  errors.New("connection refused"),
			want: defaultProfileErrorCode,
		},
		{
			name: "json without code",
			err:  errors.New(`{"message": "oops"}`),
			want: defaultProfileErrorCode,
		},
	}

	for _, tt := range tests {
		profileErr := newProfileError(tt.err)
		require.Equal(t, tt.want, profileErr.Code, tt.name)
		require.ErrorIs(t, profileErr, tt.err, tt.name)
	}
}
