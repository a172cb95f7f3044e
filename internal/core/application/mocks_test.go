package application_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/buysell-daemon/internal/core/application"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/storage/db/inmemory"
)

// **** Exchange ****

type mockExchange struct {
	mock.Mock
	name string
}

func newMockExchange(name string) *mockExchange {
	m := &mockExchange{name: name}
	m.On("Configure", mock.Anything).Maybe()
	m.On("MonitorPayments", mock.Anything).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(context.Canceled).Maybe()
	return m
}

func (m *mockExchange) Name() string {
	return m.name
}

func (m *mockExchange) Configure(cfg ports.ExchangeConfig) {
	m.Called(cfg)
}

func (m *mockExchange) Config() ports.ExchangeConfig {
	args := m.Called()
	return args.Get(0).(ports.ExchangeConfig)
}

func (m *mockExchange) GetBuyQuote(
	ctx context.Context, amount decimal.Decimal, base, quote string,
) (*domain.Quote, error) {
	args := m.Called(ctx, amount.String(), base, quote)
	var res *domain.Quote
	if a := args.Get(0); a != nil {
		res = a.(*domain.Quote)
	}
	return res, args.Error(1)
}

func (m *mockExchange) GetTrades(ctx context.Context) ([]domain.Trade, error) {
	args := m.Called(ctx)
	var res []domain.Trade
	if a := args.Get(0); a != nil {
		res = a.([]domain.Trade)
	}
	return res, args.Error(1)
}

func (m *mockExchange) CachedTrades() []domain.Trade {
	args := m.Called()
	var res []domain.Trade
	if a := args.Get(0); a != nil {
		res = a.([]domain.Trade)
	}
	return res
}

func (m *mockExchange) RefreshTrade(
	ctx context.Context, tradeID string,
) (*domain.Trade, error) {
	args := m.Called(ctx, tradeID)
	var res *domain.Trade
	if a := args.Get(0); a != nil {
		res = a.(*domain.Trade)
	}
	return res, args.Error(1)
}

func (m *mockExchange) CancelTrade(ctx context.Context, tradeID string) error {
	args := m.Called(ctx, tradeID)
	return args.Error(0)
}

func (m *mockExchange) FetchProfile(ctx context.Context) (*domain.Profile, error) {
	args := m.Called(ctx)
	var res *domain.Profile
	if a := args.Get(0); a != nil {
		res = a.(*domain.Profile)
	}
	return res, args.Error(1)
}

func (m *mockExchange) GetKYCs(ctx context.Context) ([]domain.KYC, error) {
	args := m.Called(ctx)
	var res []domain.KYC
	if a := args.Get(0); a != nil {
		res = a.([]domain.KYC)
	}
	return res, args.Error(1)
}

func (m *mockExchange) TriggerKYC(ctx context.Context) (*domain.KYC, error) {
	args := m.Called(ctx)
	var res *domain.KYC
	if a := args.Get(0); a != nil {
		res = a.(*domain.KYC)
	}
	return res, args.Error(1)
}

func (m *mockExchange) RefreshKYC(
	ctx context.Context, kycID string,
) (*domain.KYC, error) {
	args := m.Called(ctx, kycID)
	var res *domain.KYC
	if a := args.Get(0); a != nil {
		res = a.(*domain.KYC)
	}
	return res, args.Error(1)
}

func (m *mockExchange) GetBuyCurrencies(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var res []string
	if a := args.Get(0); a != nil {
		res = a.([]string)
	}
	return res, args.Error(1)
}

func (m *mockExchange) ExchangeRate(
	ctx context.Context, base, quote string,
) (decimal.Decimal, error) {
	args := m.Called(ctx, base, quote)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockExchange) GetPaymentMediums(
	ctx context.Context, quote domain.Quote,
) ([]domain.Medium, error) {
	args := m.Called(ctx, quote)
	var res []domain.Medium
	if a := args.Get(0); a != nil {
		res = a.([]domain.Medium)
	}
	return res, args.Error(1)
}

func (m *mockExchange) GetAccounts(
	ctx context.Context, medium domain.Medium,
) ([]domain.BankAccount, error) {
	args := m.Called(ctx, medium)
	var res []domain.BankAccount
	if a := args.Get(0); a != nil {
		res = a.([]domain.BankAccount)
	}
	return res, args.Error(1)
}

func (m *mockExchange) Buy(
	ctx context.Context, quote domain.Quote, medium domain.Medium, accountID string,
) (*domain.Trade, error) {
	args := m.Called(ctx, quote, medium, accountID)
	var res *domain.Trade
	if a := args.Get(0); a != nil {
		res = a.(*domain.Trade)
	}
	return res, args.Error(1)
}

func (m *mockExchange) MonitorPayments(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// **** Options ****

type mockOptions struct {
	mock.Mock
}

func (m *mockOptions) Fetch(ctx context.Context) (*ports.Options, error) {
	args := m.Called(ctx)
	var res *ports.Options
	if a := args.Get(0); a != nil {
		res = a.(*ports.Options)
	}
	return res, args.Error(1)
}

func (m *mockOptions) Cached() (*ports.Options, bool) {
	args := m.Called()
	var res *ports.Options
	if a := args.Get(0); a != nil {
		res = a.(*ports.Options)
	}
	return res, args.Bool(1)
}

// **** Address watcher ****

type mockWatcher struct {
	mock.Mock
}

func (m *mockWatcher) WatchAddress(ctx context.Context, address string) (string, error) {
	args := m.Called(ctx, address)
	return args.String(0), args.Error(1)
}

// **** Confirmer ****

type mockConfirmer struct {
	mock.Mock
}

func (m *mockConfirmer) Confirm(
	ctx context.Context, msg string, opts ports.ConfirmOptions,
) (bool, error) {
	args := m.Called(ctx, msg, opts)
	return args.Bool(0), args.Error(1)
}

// **** Wallet ****

type account struct {
	index   int
	address string
}

func (a account) GetIndex() int             { return a.index }
func (a account) GetLabel() string          { return "" }
func (a account) GetReceiveAddress() string { return a.address }

type fakeWallet struct {
	loggedIn     int32
	externalData int32
	currency     string
}

func newFakeWallet(currency string) *fakeWallet {
	return &fakeWallet{loggedIn: 1, externalData: 1, currency: currency}
}

func (w *fakeWallet) setLoggedIn(v bool) {
	atomic.StoreInt32(&w.loggedIn, boolToInt(v))
}

func (w *fakeWallet) setExternalData(v bool) {
	atomic.StoreInt32(&w.externalData, boolToInt(v))
}

func (w *fakeWallet) IsLoggedIn() bool {
	return atomic.LoadInt32(&w.loggedIn) == 1
}

func (w *fakeWallet) HasExternalData() bool {
	return atomic.LoadInt32(&w.externalData) == 1
}

func (w *fakeWallet) Accounts() []ports.Account {
	return []ports.Account{account{0, "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"}}
}

func (w *fakeWallet) DefaultAccountIndex() int {
	return 0
}

func (w *fakeWallet) Currency() string {
	return w.currency
}

func boolToInt(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

// **** Notifier ****

type notification struct {
	event string
	msg   string
	trade *domain.Trade
	opts  ports.BuyViewOptions
}

type recordingNotifier struct {
	lock          sync.Mutex
	notifications []notification
}

func (n *recordingNotifier) record(nt notification) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.notifications = append(n.notifications, nt)
}

func (n *recordingNotifier) DisplayError(msg string) {
	n.record(notification{event: "error", msg: msg})
}

func (n *recordingNotifier) DisplaySuccess(msg string) {
	n.record(notification{event: "success", msg: msg})
}

func (n *recordingNotifier) Clear() {
	n.record(notification{event: "clear"})
}

func (n *recordingNotifier) OpenTradeSummary(trade domain.Trade, state string) {
	n.record(notification{event: "summary", msg: state, trade: &trade})
}

func (n *recordingNotifier) OpenBuyView(trade *domain.Trade, opts ports.BuyViewOptions) {
	n.record(notification{event: "buyview", trade: trade, opts: opts})
}

func (n *recordingNotifier) GoToBuySell() {
	n.record(notification{event: "navigate"})
}

func (n *recordingNotifier) list(event string) []notification {
	n.lock.Lock()
	defer n.lock.Unlock()

	list := make([]notification, 0)
	for _, nt := range n.notifications {
		if nt.event == event {
			list = append(list, nt)
		}
	}
	return list
}

// **** Test env ****

var testOpts = application.BuySellOpts{
	MaxPollTime:          300 * time.Millisecond,
	QuoteDebounce:        20 * time.Millisecond,
	ExchangeRateInterval: time.Hour,
}

type testEnv struct {
	wallet    *fakeWallet
	options   *mockOptions
	coinify   *mockExchange
	sfox      *mockExchange
	watcher   *mockWatcher
	notifier  *recordingNotifier
	txMethods domain.TxMethodRepository
	factory   int32
	sessions  *application.SessionManager
	svc       application.BuySellService
}

// newTestEnv returns a logged-in env whose options document is already
// cached.
func newTestEnv(env application.Environment) *testEnv {
	options := &mockOptions{}
	options.On("Cached").Return(&ports.Options{
		SfoxAPIKey:       "sfox-key",
		CoinifyPartnerID: 18,
	}, true)
	return newTestEnvWithOptions(env, options)
}

func newTestEnvWithOptions(
	env application.Environment, options *mockOptions,
) *testEnv {
	e := &testEnv{
		wallet:    newFakeWallet(domain.CurrencyUSD),
		options:   options,
		coinify:   newMockExchange(ports.ExchangeCoinify),
		sfox:      newMockExchange(ports.ExchangeSfox),
		watcher:   &mockWatcher{},
		notifier:  &recordingNotifier{},
		txMethods: inmemory.NewTxMethodRepository(),
	}
	factory := func() application.Exchanges {
		atomic.AddInt32(&e.factory, 1)
		return application.Exchanges{Coinify: e.coinify, Sfox: e.sfox}
	}
	e.sessions = application.NewSessionManager(e.wallet, options, factory, env)
	e.svc = application.NewBuySellService(
		e.sessions, e.wallet, e.watcher, e.notifier, e.txMethods, testOpts,
	)
	return e
}

func (e *testEnv) factoryCalls() int {
	return int(atomic.LoadInt32(&e.factory))
}

// mockProfileFetch sets up the calls issued by a full profile fetch.
func (e *testEnv) mockProfileFetch(profile *domain.Profile, trades []domain.Trade) {
	e.coinify.On("FetchProfile", mock.Anything).Return(profile, nil)
	e.coinify.On("GetTrades", mock.Anything).Return(trades, nil)
	e.coinify.On("GetKYCs", mock.Anything).Return([]domain.KYC{}, nil)
	e.coinify.On("GetBuyCurrencies", mock.Anything).
		Return([]string{domain.CurrencyEUR, domain.CurrencyUSD}, nil)
}

type silentT struct{}

func (silentT) Logf(string, ...interface{})   {}
func (silentT) Errorf(string, ...interface{}) {}
func (silentT) FailNow()                      {}

// calledTimes reports whether method of m was called exactly n times, without
// failing the test. It's meant to be polled with require.Eventually.
func calledTimes(m *mock.Mock, method string, n int) bool {
	return m.AssertNumberOfCalls(silentT{}, method, n)
}
