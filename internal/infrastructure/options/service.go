package options

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultURL            = "https://blockchain.info/Resources/wallet-options.json"
	DefaultRequestTimeout = 30 * time.Second
)

type document struct {
	Partners struct {
		Sfox struct {
			APIKey string `json:"apiKey"`
		} `json:"sfox"`
		Coinify struct {
			PartnerID int `json:"partnerId"`
		} `json:"coinify"`
	} `json:"partners"`
	ShowBuySellTab []string `json:"showBuySellTab"`
	AreaCodes      []string `json:"areaCodes"`
}

func (d document) toPortable() *ports.Options {
	return &ports.Options{
		SfoxAPIKey:       d.Partners.Sfox.APIKey,
		CoinifyPartnerID: d.Partners.Coinify.PartnerID,
		ShowBuySellTab:   d.ShowBuySellTab,
		AreaCodes:        d.AreaCodes,
	}
}

type service struct {
	url        string
	httpClient *http.Client
	group      singleflight.Group

	lock    sync.RWMutex
	options *ports.Options
}

// NewService returns a fetcher of the remote wallet-options document.
// Concurrent fetches are collapsed into one request and the first successful
// result is cached for the lifetime of the service.
func NewService(url string, requestTimeout time.Duration) ports.OptionsService {
	if url == "" {
		url = DefaultURL
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	return &service{
		url:        url,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (s *service) Cached() (*ports.Options, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.options, s.options != nil
}

func (s *service) Fetch(ctx context.Context) (*ports.Options, error) {
	if opts, ok := s.Cached(); ok {
		return opts, nil
	}

	ch := s.group.DoChan(s.url, func() (interface{}, error) {
		if opts, ok := s.Cached(); ok {
			return opts, nil
		}
		opts, err := s.fetch(context.Background())
		if err != nil {
			return nil, err
		}
		s.lock.Lock()
		s.options = opts
		s.lock.Unlock()
		log.Debug("wallet options fetched")
		return opts, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ports.Options), nil
	}
}

func (s *service) fetch(ctx context.Context) (*ports.Options, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
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
		return nil, fmt.Errorf(
			"failed to fetch wallet options: status %d", resp.StatusCode,
		)
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse wallet options: %w", err)
	}
	return doc.toPortable(), nil
}
