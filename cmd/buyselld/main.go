package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/config"
	"github.com/tdex-network/buysell-daemon/internal/core/application"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/explorer/esplora"
	coinbasefeeder "github.com/tdex-network/buysell-daemon/internal/infrastructure/feeder/coinbase"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/options"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/partner/coinify"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/partner/sfox"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/pubsub"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/wallet"
	grpcinterface "github.com/tdex-network/buysell-daemon/internal/interfaces/grpc"
	httpinterface "github.com/tdex-network/buysell-daemon/internal/interfaces/http"
	"github.com/tdex-network/buysell-daemon/pkg/stats"
)

const (
	rateFeedInterval   = 5 * time.Second
	readyCheckInterval = 2 * time.Second
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to init config")
	}

	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	datadir := config.GetDatadir()
	dbDir := filepath.Join(datadir, config.DbLocation)
	profilerDir := filepath.Join(datadir, config.ProfilerLocation)
	dbType := config.GetString(config.DBTypeKey)
	network := config.GetString(config.NetworkKey)
	address := fmt.Sprintf(":%d", config.GetInt(config.ListeningPortKey))

	if config.GetBool(config.EnableProfilerKey) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		stats.EnableMemoryStatistics(
			ctx, config.GetSeconds(config.StatsIntervalKey), profilerDir,
		)
	}

	walletSvc := wallet.NewService(network)

	var secureDbDir string
	if dbType == application.DBBadger {
		secureDbDir = dbDir
	}
	pubsubSvc, err := pubsub.NewService(secureDbDir, log.New())
	if err != nil {
		log.WithError(err).Fatal("failed to init webhook service")
	}

	var rateFeeder ports.RateFeeder
	if config.GetBool(config.RateFeedEnabledKey) {
		rateFeeder, err = coinbasefeeder.NewCoinbaseRateFeeder(
			config.GetString(config.RateFeedURLKey), rateFeedInterval,
		)
		if err != nil {
			log.WithError(err).Fatal("failed to init rate feeder")
		}
	}

	appConfig := &application.Config{
		DBType:     dbType,
		DBConfig:   secureDbDir,
		Wallet:     walletSvc,
		OptionsSvc: options.NewService(
			config.GetString(config.OptionsURLKey),
			config.GetSeconds(config.PartnerRequestTimeoutKey),
		),
		AddressWatcher: esplora.NewService(esplora.Opts{
			URL:            config.GetExplorerURL(),
			Network:        network,
			RequestTimeout: config.GetSeconds(config.ExplorerRequestTimeoutKey),
			RateLimit:      config.GetFloat(config.ExplorerRateLimitKey),
		}),
		ExchangesFactory: exchangesFactory(walletSvc),
		SecurePubSub:     pubsubSvc,
		RateFeeder:       rateFeeder,
		Environment:      config.GetEnvironment(),
		BuySellOpts:      config.GetBuySellOpts(),
	}
	if err := appConfig.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	defer appConfig.Close()

	buySellSvc := appConfig.BuySellService()
	tickerSvc := appConfig.TickerService()
	if err := tickerSvc.Start(); err != nil {
		log.WithError(err).Warn("failed to start rate feed, tickers disabled")
	}

	handler, err := httpinterface.NewHandler(httpinterface.HandlerOpts{
		BuySellSvc:   buySellSvc,
		WalletSvc:    walletSvc,
		PubSubSvc:    appConfig.PubSubService(),
		TickerSvc:    tickerSvc,
		OptionsSvc:   appConfig.OptionsSvc,
		BuySellDebug: config.GetBool(config.BuySellDebugKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init http interface")
	}

	svc, err := grpcinterface.NewService(grpcinterface.ServiceOpts{
		Address: address,
		Handler: handler,
		ReadyFn: func() bool {
			status := buySellSvc.Status()
			return status.LoggedIn && status.Ready
		},
		ReadyInterval: readyCheckInterval,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init interface")
	}

	log.Info("starting daemon")
	defer log.Info("shutdown")

	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start daemon")
	}
	defer svc.Stop()

	log.RegisterExitHandler(svc.Stop)
	log.RegisterExitHandler(appConfig.Close)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	<-sigChan

	log.Info("shutting down daemon")
}

// exchangesFactory returns a fresh pair of partner clients bound to the
// wallet every time a session is built.
func exchangesFactory(w *wallet.Service) application.ExchangesFactory {
	requestTimeout := config.GetSeconds(config.PartnerRequestTimeoutKey)
	rateLimit := config.GetInt(config.PartnerRateLimitKey)

	return func() application.Exchanges {
		return application.Exchanges{
			Coinify: coinify.NewService(coinify.Opts{
				Wallet:         w,
				RequestTimeout: requestTimeout,
				RateLimit:      rateLimit,
			}),
			Sfox: sfox.NewService(sfox.Opts{
				Wallet:         w,
				RequestTimeout: requestTimeout,
				RateLimit:      rateLimit,
			}),
		}
	}
}
