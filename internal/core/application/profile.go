package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// FetchProfile fetches the profile of the user. Unless lean, it then fetches
// trades, KYCs and supported buy currencies concurrently.
func (s *buySellService) FetchProfile(
	ctx context.Context, lean bool,
) (*domain.Profile, error) {
	exchange, generation, err := s.readyExchange(ctx, ports.ExchangeCoinify)
	if err != nil {
		return nil, err
	}

	profile, err := exchange.FetchProfile(ctx)
	if err != nil {
		return nil, newProfileError(err)
	}
	s.setProfile(generation, profile)

	if lean {
		return profile, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		_, err := s.GetTrades(egCtx)
		return err
	})
	eg.Go(func() error {
		_, err := s.GetKYCs(egCtx)
		return err
	})
	eg.Go(func() error {
		codes, err := exchange.GetBuyCurrencies(egCtx)
		if err != nil {
			return err
		}
		s.setCoinifyCurrencies(generation, codes)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return profile, err
	}
	return profile, nil
}

func (s *buySellService) setProfile(generation uint64, profile *domain.Profile) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.generation == generation {
		s.profile = profile
	}
}

func (s *buySellService) setCoinifyCurrencies(generation uint64, codes []string) {
	currencies := domain.CurrenciesByCode(codes)

	s.lock.Lock()
	defer s.lock.Unlock()
	if s.generation == generation {
		s.coinifyCurrencies = currencies
	}
}

// newProfileError extracts the error code from a partner response like
// {"error": "email_not_verified"}, falling back to INVALID_REQUEST.
func newProfileError(err error) *ProfileError {
	body := err.Error()
	var partnerErr *ports.PartnerError
	if errors.As(err, &partnerErr) {
		body = partnerErr.Body
	}

	code := defaultProfileErrorCode
	payload := struct {
		Error *string `json:"error"`
	}{}
	if jsonErr := json.Unmarshal([]byte(body), &payload); jsonErr == nil {
		if payload.Error != nil {
			code = strings.ToUpper(*payload.Error)
		}
	}
	return &ProfileError{Code: code, Err: err}
}
