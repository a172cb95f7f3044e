package ports

import "context"

// Options is the remote wallet-options document.
type Options struct {
	SfoxAPIKey       string
	CoinifyPartnerID int
	ShowBuySellTab   []string
	AreaCodes        []string
}

// OptionsService fetches the remote options document once and caches it.
type OptionsService interface {
	Fetch(ctx context.Context) (*Options, error)
	// Cached returns the document if already fetched.
	Cached() (*Options, bool)
}
