package application

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"

	optionsFetchTimeout = 30 * time.Second
)

// Exchanges groups the clients of the supported exchange partners.
type Exchanges struct {
	Coinify ports.Exchange
	Sfox    ports.Exchange
}

func (e Exchanges) byName() map[string]ports.Exchange {
	return map[string]ports.Exchange{
		ports.ExchangeCoinify: e.Coinify,
		ports.ExchangeSfox:    e.Sfox,
	}
}

// ExchangesFactory builds a fresh set of partner clients for a new session.
type ExchangesFactory func() Exchanges

// Environment is the static part of the partner configuration.
type Environment struct {
	IsProduction bool
	// SfoxUseStaging overrides IsProduction for SFOX when not nil.
	SfoxUseStaging *bool
	Network        string
	// SfoxAPIKey takes precedence over the one of the options document.
	SfoxAPIKey string
	// CoinifyPartnerID takes precedence over the one of the options document.
	CoinifyPartnerID int
}

func (e Environment) sfoxProduction() bool {
	if e.SfoxUseStaging == nil {
		return e.IsProduction
	}
	return !*e.SfoxUseStaging
}

func (e Environment) testnet() bool {
	return e.Network == NetworkTestnet
}

// Session is the exchange session of a logged-in wallet. It's built once per
// login and dropped on logout.
type Session struct {
	generation uint64
	exchanges  *Exchanges

	ready     chan struct{}
	readyOnce sync.Once
	lock      sync.RWMutex
	err       error
}

func newSession(generation uint64, exchanges *Exchanges) *Session {
	return &Session{
		generation: generation,
		exchanges:  exchanges,
		ready:      make(chan struct{}),
	}
}

func (s *Session) Generation() uint64 {
	return s.generation
}

// HasExchanges returns false when the wallet has no access to partner clients.
func (s *Session) HasExchanges() bool {
	return s.exchanges != nil
}

// Exchange returns the partner client for the given name, nil if the session
// has no exchanges.
func (s *Session) Exchange(name string) ports.Exchange {
	if s.exchanges == nil {
		return nil
	}
	return s.exchanges.byName()[name]
}

// Ready is closed once partner credentials have been applied.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

func (s *Session) IsReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// WaitReady blocks until credentials are applied and returns the error that
// occurred while fetching them, if any.
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ready:
		s.lock.RLock()
		defer s.lock.RUnlock()
		return s.err
	}
}

func (s *Session) markReady(err error) {
	s.readyOnce.Do(func() {
		s.lock.Lock()
		s.err = err
		s.lock.Unlock()
		close(s.ready)
	})
}

// SessionManager owns the exchange session for the whole login lifetime of
// the wallet.
type SessionManager struct {
	wallet  ports.Wallet
	options ports.OptionsService
	factory ExchangesFactory
	env     Environment

	lock       sync.Mutex
	session    *Session
	generation uint64
}

func NewSessionManager(
	wallet ports.Wallet, options ports.OptionsService,
	factory ExchangesFactory, env Environment,
) *SessionManager {
	return &SessionManager{
		wallet:  wallet,
		options: options,
		factory: factory,
		env:     env,
	}
}

// Session returns the memoized session, building it on first access. It
// returns nil if the wallet is not logged in.
func (m *SessionManager) Session() *Session {
	if !m.wallet.IsLoggedIn() {
		return nil
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if m.session == nil {
		m.generation++
		m.session = m.buildSession(m.generation)
	}
	return m.session
}

// Logout drops the current session. Late async callbacks bound to it are
// ignored.
func (m *SessionManager) Logout() {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.session != nil {
		log.Debugf("dropping exchange session %d", m.session.generation)
	}
	m.session = nil
	m.generation++
}

func (m *SessionManager) isCurrent(generation uint64) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.session != nil && m.session.generation == generation
}

func (m *SessionManager) buildSession(generation uint64) *Session {
	if !m.wallet.HasExternalData() {
		s := newSession(generation, nil)
		s.markReady(nil)
		return s
	}

	exchanges := m.factory()
	s := newSession(generation, &exchanges)

	sfoxCfg := ports.ExchangeConfig{Production: m.env.sfoxProduction()}
	coinifyCfg := ports.ExchangeConfig{
		Production: !m.env.testnet(),
		Testnet:    m.env.testnet(),
	}
	exchanges.Sfox.Configure(sfoxCfg)
	exchanges.Coinify.Configure(coinifyCfg)

	applyOptions := func(opts *ports.Options) {
		sfoxCfg.APIKey = m.env.SfoxAPIKey
		if sfoxCfg.APIKey == "" {
			sfoxCfg.APIKey = opts.SfoxAPIKey
		}
		coinifyCfg.PartnerID = m.env.CoinifyPartnerID
		if coinifyCfg.PartnerID == 0 {
			coinifyCfg.PartnerID = opts.CoinifyPartnerID
		}
		exchanges.Sfox.Configure(sfoxCfg)
		exchanges.Coinify.Configure(coinifyCfg)
	}

	if opts, ok := m.options.Cached(); ok {
		applyOptions(opts)
		s.markReady(nil)
		return s
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), optionsFetchTimeout)
		defer cancel()

		opts, err := m.options.Fetch(ctx)
		if !m.isCurrent(generation) {
			log.Debugf("ignoring options for stale session %d", generation)
			s.markReady(ErrNotLoggedIn)
			return
		}
		if err != nil {
			log.WithError(err).Warn("failed to fetch wallet options")
			s.markReady(err)
			return
		}
		applyOptions(opts)
		s.markReady(nil)
	}()

	return s
}
