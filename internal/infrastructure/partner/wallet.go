package partner

import "github.com/tdex-network/buysell-daemon/internal/core/ports"

// Wallet is the wallet a partner client trades for. PartnerToken returns the
// credentials of the user's account at the given exchange, empty if the user
// has none.
type Wallet interface {
	ports.Wallet
	PartnerToken(exchange string) string
}

// ReceiveAddress returns the address of the default account.
func ReceiveAddress(w ports.Wallet) string {
	index := w.DefaultAccountIndex()
	for _, a := range w.Accounts() {
		if a.GetIndex() == index {
			return a.GetReceiveAddress()
		}
	}
	return ""
}
