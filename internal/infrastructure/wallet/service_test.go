package wallet_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/wallet"
)

const (
	mainnetAddress = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"
	testnetAddress = "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"
)

func TestLogin(t *testing.T) {
	svc := wallet.NewService("mainnet")
	require.False(t, svc.IsLoggedIn())

	err := svc.Login(wallet.LoginInfo{
		Accounts: []wallet.Account{
			{Index: 0, Label: "Main", ReceiveAddress: mainnetAddress},
			{Index: 1, Label: "Savings"},
		},
		DefaultAccountIndex: 0,
		Currency:            "EUR",
		ExternalData:        true,
		PartnerTokens:       map[string]string{"coinify": "offline-token"},
	})
	require.NoError(t, err)
	require.True(t, svc.IsLoggedIn())
	require.True(t, svc.HasExternalData())
	require.Len(t, svc.Accounts(), 2)
	require.Equal(t, "EUR", svc.Currency())
	require.Equal(t, "offline-token", svc.PartnerToken("coinify"))
	require.Empty(t, svc.PartnerToken("sfox"))

	svc.Logout()
	require.False(t, svc.IsLoggedIn())
	require.Empty(t, svc.Accounts())
	require.Empty(t, svc.PartnerToken("coinify"))
}

func TestLoginInvalid(t *testing.T) {
	tests := []struct {
		name    string
		network string
		info    wallet.LoginInfo
	}{
		{
			name:    "no accounts",
			network: "mainnet",
			info:    wallet.LoginInfo{Currency: "EUR"},
		},
		{
			name:    "unknown currency",
			network: "mainnet",
			info: wallet.LoginInfo{
				Accounts: []wallet.Account{{Index: 0}},
				Currency: "XYZ",
			},
		},
		{
			name:    "default index mismatch",
			network: "mainnet",
			info: wallet.LoginInfo{
				Accounts:            []wallet.Account{{Index: 0}},
				DefaultAccountIndex: 3,
				Currency:            "EUR",
			},
		},
		{
			name:    "address for another network",
			network: "mainnet",
			info: wallet.LoginInfo{
				Accounts: []wallet.Account{{Index: 0, ReceiveAddress: testnetAddress}},
				Currency: "EUR",
			},
		},
		{
			name:    "malformed address",
			network: "testnet",
			info: wallet.LoginInfo{
				Accounts: []wallet.Account{{Index: 0, ReceiveAddress: "not-an-address"}},
				Currency: "USD",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := wallet.NewService(tt.network)
			err := svc.Login(tt.info)
			require.Error(t, err)
			require.False(t, svc.IsLoggedIn())
		})
	}
}
