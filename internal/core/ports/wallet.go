package ports

// Account is a wallet account able to receive bitcoins from a trade.
type Account interface {
	GetIndex() int
	GetLabel() string
	GetReceiveAddress() string
}

// Wallet exposes what the buy/sell flow needs to know about the wallet it's
// running for.
type Wallet interface {
	IsLoggedIn() bool
	// HasExternalData is false when account metadata is protected by a second
	// password, in which case partner clients are not available.
	HasExternalData() bool
	Accounts() []Account
	DefaultAccountIndex() int
	// Currency is the fiat currency chosen by the user.
	Currency() string
}
