package application

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/application/pubsub"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	dbbadger "github.com/tdex-network/buysell-daemon/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/storage/db/inmemory"
)

const (
	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var (
	SupportedDBType = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
)

type Config struct {
	DBType   string
	DBConfig interface{}

	Wallet           ports.Wallet
	OptionsSvc       ports.OptionsService
	AddressWatcher   ports.AddressWatcher
	ExchangesFactory ExchangesFactory
	SecurePubSub     ports.SecurePubSub
	RateFeeder       ports.RateFeeder
	Environment      Environment
	BuySellOpts      BuySellOpts

	txMethods domain.TxMethodRepository
	pubsub    *pubsub.Service
	sessions  *SessionManager
	buySell   BuySellService
	ticker    TickerService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("unsupported db type %s", c.DBType)
	}
	if c.Wallet == nil {
		return fmt.Errorf("missing wallet")
	}
	if c.OptionsSvc == nil {
		return fmt.Errorf("missing options service")
	}
	if c.AddressWatcher == nil {
		return fmt.Errorf("missing address watcher")
	}
	if c.ExchangesFactory == nil {
		return fmt.Errorf("missing exchanges factory")
	}
	if c.Environment.Network != NetworkMainnet &&
		c.Environment.Network != NetworkTestnet {
		return fmt.Errorf("unknown network %s", c.Environment.Network)
	}
	if _, err := c.txMethodRepository(); err != nil {
		return err
	}
	return nil
}

func (c *Config) TxMethodRepository() domain.TxMethodRepository {
	repo, _ := c.txMethodRepository()
	return repo
}

func (c *Config) PubSubService() *pubsub.Service {
	if c.pubsub == nil {
		c.pubsub = pubsub.NewService(c.SecurePubSub)
	}
	return c.pubsub
}

func (c *Config) SessionManager() *SessionManager {
	if c.sessions == nil {
		c.sessions = NewSessionManager(
			c.Wallet, c.OptionsSvc, c.ExchangesFactory, c.Environment,
		)
	}
	return c.sessions
}

func (c *Config) BuySellService() BuySellService {
	if c.buySell == nil {
		c.buySell = NewBuySellService(
			c.SessionManager(),
			c.Wallet,
			c.AddressWatcher,
			c.PubSubService(),
			c.TxMethodRepository(),
			c.BuySellOpts,
		)
	}
	return c.buySell
}

func (c *Config) TickerService() TickerService {
	if c.ticker == nil {
		c.ticker = NewTickerService(c.RateFeeder)
	}
	return c.ticker
}

// Close stops the running services and closes the db.
func (c *Config) Close() {
	if c.buySell != nil {
		c.buySell.Logout()
	}
	if c.ticker != nil {
		c.ticker.Stop()
	}
	if c.pubsub != nil {
		c.pubsub.Close()
	}
	if c.txMethods != nil {
		if err := c.txMethods.Close(); err != nil {
			log.WithError(err).Warn("failed to close tx method repository")
		}
	}
}

func (c *Config) txMethodRepository() (domain.TxMethodRepository, error) {
	if c.txMethods == nil {
		switch c.DBType {
		case DBBadger:
			datadir, _ := c.DBConfig.(string)
			repo, err := dbbadger.NewTxMethodRepository(datadir, log.New())
			if err != nil {
				return nil, err
			}
			c.txMethods = repo
		default:
			c.txMethods = inmemory.NewTxMethodRepository()
		}
	}
	return c.txMethods, nil
}
