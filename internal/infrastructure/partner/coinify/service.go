package coinify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/partner"
)

const (
	ProductionURL = "https://app-api.coinify.com"
	SandboxURL    = "https://app-api.sandbox.coinify.com"

	mediumBlockchain = "blockchain"
	// tokens are renewed this long before they expire.
	tokenExpiryMargin = 30 * time.Second
)

var (
	centsPerUnit       = decimal.NewFromInt(100)
	satoshisPerBitcoin = decimal.NewFromInt(100000000)
)

type Opts struct {
	Wallet          partner.Wallet
	RequestTimeout  time.Duration
	RateLimit       int
	MonitorInterval time.Duration
	// BaseURL overrides the url derived from the environment.
	BaseURL string
}

type service struct {
	wallet          partner.Wallet
	client          *partner.Client
	monitorInterval time.Duration
	baseURL         string
	trades          *partner.TradesCache

	lock        sync.RWMutex
	cfg         ports.ExchangeConfig
	accessToken string
	tokenExpiry time.Time
}

// NewService returns a Coinify client. It must be configured before use.
func NewService(opts Opts) ports.Exchange {
	return &service{
		wallet: opts.Wallet,
		client: partner.NewClient(
			ports.ExchangeCoinify, opts.RequestTimeout, opts.RateLimit,
		),
		monitorInterval: opts.MonitorInterval,
		baseURL:         opts.BaseURL,
		trades:          &partner.TradesCache{},
	}
}

func (s *service) Name() string {
	return ports.ExchangeCoinify
}

func (s *service) Configure(cfg ports.ExchangeConfig) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.cfg = cfg
	s.accessToken = ""
}

func (s *service) Config() ports.ExchangeConfig {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.cfg
}

func (s *service) GetBuyQuote(
	ctx context.Context, amount decimal.Decimal, baseCurrency, quoteCurrency string,
) (*domain.Quote, error) {
	req := quoteRequest{
		BaseCurrency:  baseCurrency,
		QuoteCurrency: quoteCurrency,
		BaseAmount:    toUnits(amount, baseCurrency),
	}
	var resp quoteResponse
	if err := s.do(ctx, http.MethodPost, "/trades/quote", req, &resp); err != nil {
		return nil, err
	}
	return &domain.Quote{
		ID:            strconv.FormatInt(resp.ID, 10),
		BaseAmount:    amount,
		BaseCurrency:  resp.BaseCurrency,
		QuoteCurrency: resp.QuoteCurrency,
		QuoteAmount:   fromUnits(resp.QuoteAmount, resp.QuoteCurrency),
		ExpiresAt:     resp.ExpiryTime,
	}, nil
}

func (s *service) GetTrades(ctx context.Context) ([]domain.Trade, error) {
	var resp []tradeResponse
	if err := s.do(ctx, http.MethodGet, "/trades", nil, &resp); err != nil {
		return nil, err
	}
	trades := make([]domain.Trade, 0, len(resp))
	for _, t := range resp {
		trades = append(trades, t.toDomain())
	}
	s.trades.Set(trades)
	return trades, nil
}

func (s *service) CachedTrades() []domain.Trade {
	return s.trades.Get()
}

func (s *service) RefreshTrade(
	ctx context.Context, tradeID string,
) (*domain.Trade, error) {
	var resp tradeResponse
	path := fmt.Sprintf("/trades/%s", url.PathEscape(tradeID))
	if err := s.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	trade := resp.toDomain()
	s.trades.Update(trade)
	return &trade, nil
}

func (s *service) CancelTrade(ctx context.Context, tradeID string) error {
	var resp tradeResponse
	path := fmt.Sprintf("/trades/%s/cancel", url.PathEscape(tradeID))
	if err := s.do(ctx, http.MethodPatch, path, nil, &resp); err != nil {
		return err
	}
	s.trades.Update(resp.toDomain())
	return nil
}

func (s *service) FetchProfile(ctx context.Context) (*domain.Profile, error) {
	var resp traderResponse
	if err := s.do(ctx, http.MethodGet, "/traders/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

func (s *service) GetKYCs(ctx context.Context) ([]domain.KYC, error) {
	var resp []kycResponse
	if err := s.do(ctx, http.MethodGet, "/kyc", nil, &resp); err != nil {
		return nil, err
	}
	kycs := make([]domain.KYC, 0, len(resp))
	for _, k := range resp {
		kycs = append(kycs, k.toDomain())
	}
	return kycs, nil
}

func (s *service) TriggerKYC(ctx context.Context) (*domain.KYC, error) {
	var resp kycResponse
	if err := s.do(ctx, http.MethodPost, "/kyc", struct{}{}, &resp); err != nil {
		return nil, err
	}
	kyc := resp.toDomain()
	return &kyc, nil
}

func (s *service) RefreshKYC(ctx context.Context, kycID string) (*domain.KYC, error) {
	var resp kycResponse
	path := fmt.Sprintf("/kyc/%s", url.PathEscape(kycID))
	if err := s.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	kyc := resp.toDomain()
	return &kyc, nil
}

// GetBuyCurrencies returns the fiat currencies that can be used to buy
// bitcoin with any medium.
func (s *service) GetBuyCurrencies(ctx context.Context) ([]string, error) {
	methods, err := s.paymentMethods(ctx, url.Values{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	codes := make([]string, 0)
	for _, m := range methods {
		if m.OutMedium != mediumBlockchain {
			continue
		}
		for _, c := range m.InCurrencies {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			codes = append(codes, c)
		}
	}
	return codes, nil
}

func (s *service) ExchangeRate(
	ctx context.Context, base, quote string,
) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("baseCurrency", base)
	query.Set("quoteCurrency", quote)

	var resp rateResponse
	path := "/rates/approximate?" + query.Encode()
	if err := s.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.Rate, nil
}

func (s *service) GetPaymentMediums(
	ctx context.Context, quote domain.Quote,
) ([]domain.Medium, error) {
	query := url.Values{}
	query.Set("inCurrency", quote.BaseCurrency)
	query.Set("outCurrency", quote.QuoteCurrency)
	methods, err := s.paymentMethods(ctx, query)
	if err != nil {
		return nil, err
	}

	mediums := make([]domain.Medium, 0, len(methods))
	for _, m := range methods {
		mediums = append(mediums, domain.Medium(m.InMedium))
	}
	return mediums, nil
}

func (s *service) GetAccounts(
	ctx context.Context, medium domain.Medium,
) ([]domain.BankAccount, error) {
	if medium != domain.MediumBank {
		return nil, partner.ErrNotSupported
	}
	var resp []bankAccountResponse
	if err := s.do(ctx, http.MethodGet, "/bank-accounts", nil, &resp); err != nil {
		return nil, err
	}
	accounts := make([]domain.BankAccount, 0, len(resp))
	for _, a := range resp {
		accounts = append(accounts, domain.BankAccount{
			ID:     strconv.FormatInt(a.ID, 10),
			Name:   a.Holder,
			Status: a.Status,
		})
	}
	return accounts, nil
}

// Buy creates a trade for the quote, with bitcoins sent to the receive
// address of the default wallet account.
func (s *service) Buy(
	ctx context.Context, quote domain.Quote, medium domain.Medium, _ string,
) (*domain.Trade, error) {
	quoteID, err := strconv.ParseInt(quote.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid quote id %s", quote.ID)
	}
	address := partner.ReceiveAddress(s.wallet)
	if address == "" {
		return nil, fmt.Errorf("missing receive address")
	}

	req := buyRequest{
		PriceQuoteID: quoteID,
		TransferIn:   transfer{Medium: string(medium)},
		TransferOut: transfer{
			Medium:  mediumBlockchain,
			Details: transferDetails{Account: address},
		},
	}
	var resp tradeResponse
	if err := s.do(ctx, http.MethodPost, "/trades", req, &resp); err != nil {
		return nil, err
	}
	trade := resp.toDomain()
	return &trade, nil
}

func (s *service) MonitorPayments(ctx context.Context) error {
	return partner.MonitorTrades(
		ctx, s.Name(), s.monitorInterval, s.trades, s.GetTrades,
	)
}

func (s *service) paymentMethods(
	ctx context.Context, query url.Values,
) ([]paymentMethod, error) {
	path := "/trades/payment-methods"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var resp []paymentMethod
	if err := s.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *service) do(
	ctx context.Context, method, path string, body, out interface{},
) error {
	token, err := s.getAccessToken(ctx)
	if err != nil {
		return err
	}
	headers := map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
	return s.client.Do(ctx, method, s.url(path), headers, body, out)
}

// getAccessToken exchanges the offline token of the user for a short-lived
// access token, cached until it expires.
func (s *service) getAccessToken(ctx context.Context) (string, error) {
	s.lock.RLock()
	token, expiry, partnerID := s.accessToken, s.tokenExpiry, s.cfg.PartnerID
	s.lock.RUnlock()

	if token != "" && time.Now().Add(tokenExpiryMargin).Before(expiry) {
		return token, nil
	}

	offlineToken := s.wallet.PartnerToken(ports.ExchangeCoinify)
	if offlineToken == "" {
		return "", fmt.Errorf("missing coinify offline token")
	}

	req := authRequest{
		GrantType:    "offline_token",
		OfflineToken: offlineToken,
		PartnerID:    partnerID,
	}
	var resp authResponse
	if err := s.client.Do(
		ctx, http.MethodPost, s.url("/auth"), nil, req, &resp,
	); err != nil {
		return "", err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.accessToken = resp.AccessToken
	s.tokenExpiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	return s.accessToken, nil
}

func (s *service) url(path string) string {
	if s.baseURL != "" {
		return s.baseURL + path
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.cfg.Testnet {
		return SandboxURL + path
	}
	return ProductionURL + path
}

// toUnits converts an amount in satoshis or cents to whole units as expected
// by the API.
func toUnits(amount decimal.Decimal, currency string) decimal.Decimal {
	if currency == domain.CurrencyBTC {
		return amount.Div(satoshisPerBitcoin)
	}
	return amount.Div(centsPerUnit)
}

func fromUnits(amount decimal.Decimal, currency string) decimal.Decimal {
	if currency == domain.CurrencyBTC {
		return domain.ToSatoshis(amount)
	}
	return domain.ToCents(amount)
}
