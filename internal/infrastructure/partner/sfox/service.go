package sfox

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/partner"
)

const (
	ProductionAPIURL    = "https://api.sfox.com"
	StagingAPIURL       = "https://api.staging.sfox.com"
	ProductionQuotesURL = "https://quotes.sfox.com"
	StagingQuotesURL    = "https://quotes.staging.sfox.com"

	actionBuy = "buy"
)

var centsPerDollar = decimal.NewFromInt(100)

type Opts struct {
	Wallet          partner.Wallet
	RequestTimeout  time.Duration
	RateLimit       int
	MonitorInterval time.Duration
	// APIURL and QuotesURL override the urls derived from the environment.
	APIURL    string
	QuotesURL string
}

type service struct {
	wallet          partner.Wallet
	client          *partner.Client
	monitorInterval time.Duration
	apiURL          string
	quotesURL       string
	trades          *partner.TradesCache

	lock sync.RWMutex
	cfg  ports.ExchangeConfig
}

// NewService returns a SFOX client. It must be configured before use.
func NewService(opts Opts) ports.Exchange {
	return &service{
		wallet: opts.Wallet,
		client: partner.NewClient(
			ports.ExchangeSfox, opts.RequestTimeout, opts.RateLimit,
		),
		monitorInterval: opts.MonitorInterval,
		apiURL:          opts.APIURL,
		quotesURL:       opts.QuotesURL,
		trades:          &partner.TradesCache{},
	}
}

func (s *service) Name() string {
	return ports.ExchangeSfox
}

func (s *service) Configure(cfg ports.ExchangeConfig) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.cfg = cfg
}

func (s *service) Config() ports.ExchangeConfig {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.cfg
}

// GetBuyQuote expects dollar amounts in cents and bitcoin amounts in
// bitcoins. The quote amount is returned with the same convention.
func (s *service) GetBuyQuote(
	ctx context.Context, amount decimal.Decimal, baseCurrency, quoteCurrency string,
) (*domain.Quote, error) {
	req := quoteRequest{
		Action:         actionBuy,
		BaseCurrency:   strings.ToLower(baseCurrency),
		QuoteCurrency:  strings.ToLower(quoteCurrency),
		Amount:         toUnits(amount.Abs(), baseCurrency),
		AmountCurrency: strings.ToLower(baseCurrency),
	}
	var resp quoteResponse
	if err := s.do(
		ctx, http.MethodPost, s.quotesEndpoint("/v1/quote"), req, &resp,
	); err != nil {
		return nil, err
	}
	return &domain.Quote{
		ID:            resp.QuoteID,
		BaseAmount:    amount,
		BaseCurrency:  strings.ToUpper(resp.BaseCurrency),
		QuoteCurrency: strings.ToUpper(resp.QuoteCurrency),
		QuoteAmount:   fromUnits(resp.QuoteAmount, resp.QuoteCurrency),
		ExpiresAt:     resp.ExpiresAt,
	}, nil
}

func (s *service) GetTrades(ctx context.Context) ([]domain.Trade, error) {
	var resp []transactionResponse
	if err := s.do(
		ctx, http.MethodGet, s.apiEndpoint("/v2/partner/transaction"), nil, &resp,
	); err != nil {
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
	var resp transactionResponse
	path := fmt.Sprintf("/v2/partner/transaction/%s", url.PathEscape(tradeID))
	if err := s.do(ctx, http.MethodGet, s.apiEndpoint(path), nil, &resp); err != nil {
		return nil, err
	}
	trade := resp.toDomain()
	s.trades.Update(trade)
	return &trade, nil
}

func (s *service) CancelTrade(context.Context, string) error {
	return partner.ErrNotSupported
}

func (s *service) FetchProfile(ctx context.Context) (*domain.Profile, error) {
	var resp accountResponse
	if err := s.do(
		ctx, http.MethodGet, s.apiEndpoint("/v2/partner/account"), nil, &resp,
	); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

func (s *service) GetKYCs(context.Context) ([]domain.KYC, error) {
	return nil, partner.ErrNotSupported
}

func (s *service) TriggerKYC(context.Context) (*domain.KYC, error) {
	return nil, partner.ErrNotSupported
}

func (s *service) RefreshKYC(context.Context, string) (*domain.KYC, error) {
	return nil, partner.ErrNotSupported
}

func (s *service) GetBuyCurrencies(context.Context) ([]string, error) {
	return []string{domain.CurrencyUSD}, nil
}

func (s *service) ExchangeRate(
	ctx context.Context, base, quote string,
) (decimal.Decimal, error) {
	q, err := s.GetBuyQuote(ctx, domain.ToCents(decimal.NewFromInt(1)), quote, base)
	if err != nil {
		return decimal.Zero, err
	}
	if q.QuoteAmount.IsZero() {
		return decimal.Zero, fmt.Errorf("invalid zero quote amount")
	}
	return decimal.NewFromInt(1).Div(q.QuoteAmount), nil
}

// GetPaymentMediums returns the types of the active payment methods linked
// to the account.
func (s *service) GetPaymentMediums(
	ctx context.Context, _ domain.Quote,
) ([]domain.Medium, error) {
	methods, err := s.paymentMethods(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[domain.Medium]struct{})
	mediums := make([]domain.Medium, 0, len(methods))
	for _, m := range methods {
		medium := domain.Medium(m.Type)
		if _, ok := seen[medium]; ok || m.Status != "active" {
			continue
		}
		seen[medium] = struct{}{}
		mediums = append(mediums, medium)
	}
	return mediums, nil
}

func (s *service) GetAccounts(
	ctx context.Context, medium domain.Medium,
) ([]domain.BankAccount, error) {
	methods, err := s.paymentMethods(ctx)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.BankAccount, 0, len(methods))
	for _, m := range methods {
		if domain.Medium(m.Type) != medium {
			continue
		}
		accounts = append(accounts, domain.BankAccount{
			ID:     m.PaymentMethodID,
			Name:   m.Name,
			Status: m.Status,
		})
	}
	return accounts, nil
}

func (s *service) Buy(
	ctx context.Context, quote domain.Quote, _ domain.Medium, accountID string,
) (*domain.Trade, error) {
	address := partner.ReceiveAddress(s.wallet)
	if address == "" {
		return nil, fmt.Errorf("missing receive address")
	}

	req := transactionRequest{
		QuoteID:         quote.ID,
		PaymentMethodID: accountID,
		Action:          actionBuy,
		Address:         address,
	}
	var resp transactionResponse
	if err := s.do(
		ctx, http.MethodPost, s.apiEndpoint("/v2/partner/transaction"), req, &resp,
	); err != nil {
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
	ctx context.Context,
) ([]paymentMethodResponse, error) {
	var resp []paymentMethodResponse
	if err := s.do(
		ctx, http.MethodGet, s.apiEndpoint("/v2/partner/payment-methods"), nil, &resp,
	); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *service) do(
	ctx context.Context, method, endpoint string, body, out interface{},
) error {
	cfg := s.Config()
	if cfg.APIKey == "" {
		return fmt.Errorf("missing sfox api key")
	}
	headers := map[string]string{
		"X-SFOX-PARTNER-ID": cfg.APIKey,
	}
	if token := s.wallet.PartnerToken(ports.ExchangeSfox); token != "" {
		headers["Authorization"] = fmt.Sprintf("Bearer %s", token)
	}
	return s.client.Do(ctx, method, endpoint, headers, body, out)
}

func (s *service) apiEndpoint(path string) string {
	if s.apiURL != "" {
		return s.apiURL + path
	}
	if s.Config().Production {
		return ProductionAPIURL + path
	}
	return StagingAPIURL + path
}

func (s *service) quotesEndpoint(path string) string {
	if s.quotesURL != "" {
		return s.quotesURL + path
	}
	if s.Config().Production {
		return ProductionQuotesURL + path
	}
	return StagingQuotesURL + path
}

func toUnits(amount decimal.Decimal, currency string) decimal.Decimal {
	if strings.EqualFold(currency, domain.CurrencyBTC) {
		return amount
	}
	return amount.Div(centsPerDollar)
}

func fromUnits(amount decimal.Decimal, currency string) decimal.Decimal {
	if strings.EqualFold(currency, domain.CurrencyBTC) {
		return amount
	}
	return domain.ToCents(amount)
}
