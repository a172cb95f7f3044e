package esplora

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"golang.org/x/time/rate"
)

const (
	MainnetURL = "https://blockstream.info/api"
	TestnetURL = "https://blockstream.info/testnet/api"

	DefaultRequestTimeout = 15 * time.Second
	DefaultPollInterval   = 30 * time.Second
	DefaultRateLimit      = 1
)

type Opts struct {
	URL            string
	Network        string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	// RateLimit is the max number of requests per second shared by all
	// watchers.
	RateLimit float64
}

type tx struct {
	Txid string `json:"txid"`
}

type service struct {
	apiURL       string
	params       *chaincfg.Params
	httpClient   *http.Client
	pollInterval time.Duration
	rateLimiter  *rate.Limiter
}

// NewService returns an address watcher polling an esplora REST API.
func NewService(opts Opts) ports.AddressWatcher {
	params := &chaincfg.MainNetParams
	apiURL := MainnetURL
	if opts.Network == "testnet" {
		params = &chaincfg.TestNet3Params
		apiURL = TestnetURL
	}
	if opts.URL != "" {
		apiURL = opts.URL
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}

	return &service{
		apiURL:       apiURL,
		params:       params,
		httpClient:   &http.Client{Timeout: opts.RequestTimeout},
		pollInterval: opts.PollInterval,
		rateLimiter:  rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}
}

func (s *service) WatchAddress(ctx context.Context, address string) (string, error) {
	addr, err := btcutil.DecodeAddress(address, s.params)
	if err != nil || !addr.IsForNet(s.params) {
		return "", fmt.Errorf("invalid address %s for network %s", address, s.params.Name)
	}

	for {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return "", err
		}

		txs, err := s.getAddressTxs(ctx, address)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.WithError(err).Debugf("failed to fetch txs of address %s", address)
		}
		if len(txs) > 0 {
			return txs[0].Txid, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}

func (s *service) getAddressTxs(ctx context.Context, address string) ([]tx, error) {
	url := fmt.Sprintf("%s/address/%s/txs", s.apiURL, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s", body)
	}

	var txs []tx
	if err := json.Unmarshal(body, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
