package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/buysell-daemon/internal/core/application"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
)

func TestSessionIsMemoized(t *testing.T) {
	e := newTestEnv(application.Environment{
		IsProduction: true,
		Network:      application.NetworkMainnet,
	})

	s1 := e.sessions.Session()
	s2 := e.sessions.Session()
	require.NotNil(t, s1)
	require.True(t, s1 == s2)
	require.True(t, s1.HasExchanges())
	require.True(t, s1.IsReady())
	require.NoError(t, s1.WaitReady(context.Background()))
	require.Equal(t, 1, e.factoryCalls())

	e.coinify.AssertCalled(t, "Configure", ports.ExchangeConfig{
		Production: true,
		PartnerID:  18,
	})
	e.sfox.AssertCalled(t, "Configure", ports.ExchangeConfig{
		Production: true,
		APIKey:     "sfox-key",
	})
}

func TestSessionNotLoggedIn(t *testing.T) {
	e := newTestEnv(application.Environment{Network: application.NetworkMainnet})
	e.wallet.setLoggedIn(false)

	require.Nil(t, e.sessions.Session())
	require.Zero(t, e.factoryCalls())
}

func TestSessionWithoutExternalData(t *testing.T) {
	e := newTestEnv(application.Environment{Network: application.NetworkMainnet})
	e.wallet.setExternalData(false)

	s := e.sessions.Session()
	require.NotNil(t, s)
	require.False(t, s.HasExchanges())
	require.Nil(t, s.Exchange(ports.ExchangeCoinify))
	require.True(t, s.IsReady())
	require.Zero(t, e.factoryCalls())
}

func TestSessionEnvironment(t *testing.T) {
	staging := true

	tests := []struct {
		name        string
		env         application.Environment
		wantSfox    ports.ExchangeConfig
		wantCoinify ports.ExchangeConfig
	}{
		{
			name: "testnet",
			env: application.Environment{
				Network: application.NetworkTestnet,
			},
			wantSfox:    ports.ExchangeConfig{APIKey: "sfox-key"},
			wantCoinify: ports.ExchangeConfig{Testnet: true, PartnerID: 18},
		},
		{
			name: "overrides",
			env: application.Environment{
				IsProduction:     true,
				SfoxUseStaging:   &staging,
				Network:          application.NetworkMainnet,
				SfoxAPIKey:       "override",
				CoinifyPartnerID: 24,
			},
			wantSfox:    ports.ExchangeConfig{APIKey: "override"},
			wantCoinify: ports.ExchangeConfig{Production: true, PartnerID: 24},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(tt.env)

			s := e.sessions.Session()
			require.NotNil(t, s)
			e.sfox.AssertCalled(t, "Configure", tt.wantSfox)
			e.coinify.AssertCalled(t, "Configure", tt.wantCoinify)
		})
	}
}

func TestSessionFetchesOptions(t *testing.T) {
	release := make(chan struct{})
	options := &mockOptions{}
	options.On("Cached").Return(nil, false)
	options.On("Fetch", mock.Anything).Run(func(mock.Arguments) {
		<-release
	}).Return(&ports.Options{SfoxAPIKey: "fetched"}, nil)

	e := newTestEnvWithOptions(
		application.Environment{Network: application.NetworkMainnet}, options,
	)

	s := e.sessions.Session()
	require.NotNil(t, s)
	require.False(t, s.IsReady())

	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.WaitReady(ctx))
	e.sfox.AssertCalled(t, "Configure", ports.ExchangeConfig{
		Production: false,
		APIKey:     "fetched",
	})
}

func TestSessionOptionsFailure(t *testing.T) {
	fetchErr := errors.New("options unavailable")
	options := &mockOptions{}
	options.On("Cached").Return(nil, false)
	options.On("Fetch", mock.Anything).Return(nil, fetchErr)

	e := newTestEnvWithOptions(
		application.Environment{Network: application.NetworkMainnet}, options,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := e.sessions.Session().WaitReady(ctx)
	require.ErrorIs(t, err, fetchErr)
}

func TestSessionStaleOptions(t *testing.T) {
	release := make(chan struct{})
	options := &mockOptions{}
	options.On("Cached").Return(nil, false)
	options.On("Fetch", mock.Anything).Run(func(mock.Arguments) {
		<-release
	}).Return(&ports.Options{SfoxAPIKey: "late"}, nil)

	e := newTestEnvWithOptions(
		application.Environment{Network: application.NetworkMainnet}, options,
	)

	stale := e.sessions.Session()
	e.sessions.Logout()
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := stale.WaitReady(ctx)
	require.ErrorIs(t, err, application.ErrNotLoggedIn)

	fresh := e.sessions.Session()
	require.False(t, stale == fresh)
	require.Greater(t, fresh.Generation(), stale.Generation())
}
