package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tdex-network/buysell-daemon/internal/core/application"
)

const (
	// ListeningPortKey is the port where the HTTP and gRPC interfaces listen on
	ListeningPortKey = "LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// NetworkKey is the bitcoin network the wallet runs on, either mainnet or testnet
	NetworkKey = "NETWORK"
	// RootURLKey is the root url of the wallet backend. Exchange partners are
	// used in production only when it's the production one.
	RootURLKey = "ROOT_URL"
	// SfoxUseStagingKey forces the SFOX staging endpoints regardless of the root url
	SfoxUseStagingKey = "SFOX_USE_STAGING"
	// SfoxAPIKeyKey overrides the SFOX partner key of the options document
	SfoxAPIKeyKey = "SFOX_API_KEY"
	// CoinifyPartnerIDKey overrides the Coinify partner id of the options document
	CoinifyPartnerIDKey = "COINIFY_PARTNER_ID"
	// OptionsURLKey is the url of the wallet-options document
	OptionsURLKey = "OPTIONS_URL"
	// ExplorerURLKey is the url of the esplora explorer used to watch receive addresses
	ExplorerURLKey = "EXPLORER_URL"
	// ExplorerRequestTimeoutKey is the timeout in seconds for every explorer request
	ExplorerRequestTimeoutKey = "EXPLORER_REQUEST_TIMEOUT"
	// ExplorerRateLimitKey is the max number of explorer requests per second
	ExplorerRateLimitKey = "EXPLORER_RATE_LIMIT"
	// PartnerRateLimitKey is the max number of requests per second to every exchange partner
	PartnerRateLimitKey = "PARTNER_RATE_LIMIT"
	// PartnerRequestTimeoutKey is the timeout in seconds for every partner request
	PartnerRequestTimeoutKey = "PARTNER_REQUEST_TIMEOUT"
	// QuoteDebounceKey is the time in milliseconds the checkout waits for input to settle before quoting
	QuoteDebounceKey = "QUOTE_DEBOUNCE"
	// MaxPollTimeKey is the time in seconds a KYC or profile poll gives up after
	MaxPollTimeKey = "MAX_POLL_TIME"
	// StatsIntervalKey defines interval for printing basic daemon statistics
	StatsIntervalKey = "STATS_INTERVAL"
	// EnableProfilerKey enables profiler that can be used to investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// RateFeedEnabledKey enables the Coinbase ticker feed
	RateFeedEnabledKey = "RATE_FEED_ENABLED"
	// RateFeedURLKey is the websocket endpoint of the ticker feed
	RateFeedURLKey = "RATE_FEED_URL"
	// BuySellDebugKey shows the buy-sell tab regardless of the options document
	BuySellDebugKey = "BUY_SELL_DEBUG"

	DbLocation       = "db"
	ProfilerLocation = "stats"

	productionRootURL = "https://blockchain.info"
	defaultOptionsURL = productionRootURL + "/Resources/wallet-options.json"
	defaultMainnetURL = "https://blockstream.info/api"
	defaultTestnetURL = "https://blockstream.info/testnet/api"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("buysell-daemon", false)

func InitConfig() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error while loading .env file: %s", err)
	}

	vip = viper.New()
	vip.SetEnvPrefix("BUYSELL")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, 9070)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, int(log.InfoLevel))
	vip.SetDefault(NetworkKey, application.NetworkMainnet)
	vip.SetDefault(RootURLKey, productionRootURL)
	vip.SetDefault(OptionsURLKey, defaultOptionsURL)
	vip.SetDefault(ExplorerRequestTimeoutKey, 15)
	vip.SetDefault(ExplorerRateLimitKey, 2)
	vip.SetDefault(PartnerRateLimitKey, 10)
	vip.SetDefault(PartnerRequestTimeoutKey, 30)
	vip.SetDefault(QuoteDebounceKey, 500)
	vip.SetDefault(MaxPollTimeKey, 30)
	vip.SetDefault(StatsIntervalKey, 600)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(RateFeedEnabledKey, true)
	vip.SetDefault(BuySellDebugKey, false)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetFloat(key string) float64 {
	return vip.GetFloat64(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func IsSet(key string) bool {
	return vip.IsSet(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetSeconds returns the value of key as a number of seconds.
func GetSeconds(key string) time.Duration {
	return time.Duration(GetInt(key)) * time.Second
}

// GetMilliseconds returns the value of key as a number of milliseconds.
func GetMilliseconds(key string) time.Duration {
	return time.Duration(GetInt(key)) * time.Millisecond
}

// IsProduction returns whether the root url is the production one.
func IsProduction() bool {
	return strings.TrimSuffix(GetString(RootURLKey), "/") == productionRootURL
}

// GetExplorerURL returns the configured explorer url, or the public one for
// the configured network.
func GetExplorerURL() string {
	if url := GetString(ExplorerURLKey); url != "" {
		return url
	}
	if GetString(NetworkKey) == application.NetworkTestnet {
		return defaultTestnetURL
	}
	return defaultMainnetURL
}

// GetEnvironment returns the static partner configuration.
func GetEnvironment() application.Environment {
	env := application.Environment{
		IsProduction:     IsProduction(),
		Network:          GetString(NetworkKey),
		SfoxAPIKey:       GetString(SfoxAPIKeyKey),
		CoinifyPartnerID: GetInt(CoinifyPartnerIDKey),
	}
	if IsSet(SfoxUseStagingKey) {
		staging := GetBool(SfoxUseStagingKey)
		env.SfoxUseStaging = &staging
	}
	return env
}

// GetBuySellOpts returns the timings of the buy-sell service.
func GetBuySellOpts() application.BuySellOpts {
	return application.BuySellOpts{
		MaxPollTime:   GetSeconds(MaxPollTimeKey),
		QuoteDebounce: GetMilliseconds(QuoteDebounceKey),
	}
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	network := GetString(NetworkKey)
	if network != application.NetworkMainnet && network != application.NetworkTestnet {
		return fmt.Errorf(
			"%s must be either %s or %s",
			NetworkKey, application.NetworkMainnet, application.NetworkTestnet,
		)
	}

	dbType := GetString(DBTypeKey)
	if _, ok := application.SupportedDBType[dbType]; !ok {
		return fmt.Errorf("unsupported db type %s", dbType)
	}

	if GetString(OptionsURLKey) == "" {
		return fmt.Errorf("missing options url")
	}

	for _, key := range []string{
		ExplorerRequestTimeoutKey, PartnerRequestTimeoutKey, MaxPollTimeKey,
	} {
		if GetInt(key) <= 0 {
			return fmt.Errorf("%s must be a positive number of seconds", key)
		}
	}
	if GetInt(QuoteDebounceKey) < 0 {
		return fmt.Errorf("%s must not be negative", QuoteDebounceKey)
	}
	if GetInt(PartnerRateLimitKey) <= 0 || GetFloat(ExplorerRateLimitKey) <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}

	lvl := GetInt(LogLevelKey)
	if lvl < int(log.PanicLevel) || lvl > int(log.TraceLevel) {
		return fmt.Errorf("invalid log level %d", lvl)
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if GetString(DBTypeKey) == application.DBBadger {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
			return err
		}
	}

	profilerEnabled := GetBool(EnableProfilerKey)
	if profilerEnabled {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
