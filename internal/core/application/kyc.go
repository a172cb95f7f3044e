package application

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/pkg/asyncutil"
)

const msgKYCApproved = "KYC_APPROVED"

func (s *buySellService) GetKYCs(ctx context.Context) ([]domain.KYC, error) {
	exchange, generation, err := s.readyExchange(ctx, ports.ExchangeCoinify)
	if err != nil {
		return nil, err
	}

	kycs, err := exchange.GetKYCs(ctx)
	if err != nil {
		return nil, err
	}
	kycs = domain.SortKYCs(kycs)

	s.lock.Lock()
	if s.generation == generation {
		s.kycs = kycs
	}
	s.lock.Unlock()

	return kycs, nil
}

func (s *buySellService) KYCs() []domain.KYC {
	s.lock.RLock()
	defer s.lock.RUnlock()

	kycs := make([]domain.KYC, len(s.kycs))
	copy(kycs, s.kycs)
	return kycs
}

// TriggerKYC opens a new KYC case and puts it on top of the list.
func (s *buySellService) TriggerKYC(ctx context.Context) (*domain.KYC, error) {
	exchange, generation, err := s.readyExchange(ctx, ports.ExchangeCoinify)
	if err != nil {
		return nil, err
	}

	kyc, err := exchange.TriggerKYC(ctx)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	if s.generation == generation {
		s.kycs = append([]domain.KYC{*kyc}, s.kycs...)
	}
	s.lock.Unlock()

	return kyc, nil
}

// GetOpenKYC returns the newest KYC case, or triggers a new one if there's
// none.
func (s *buySellService) GetOpenKYC(ctx context.Context) (*domain.KYC, error) {
	if kycs := s.KYCs(); len(kycs) > 0 {
		kyc := kycs[0]
		return &kyc, nil
	}
	return s.TriggerKYC(ctx)
}

// PollUserLevel polls the KYC case until completed and then the profile until
// the user is verified. Each phase gives up after the max poll time.
func (s *buySellService) PollUserLevel(kyc domain.KYC) (*Poll, error) {
	exchange, generation, err := s.readyExchange(context.Background(), ports.ExchangeCoinify)
	if err != nil {
		return nil, err
	}

	p := newPoll()
	p.start(s.pollUserLevel(exchange, generation, kyc))
	return p, nil
}

func (s *buySellService) pollUserLevel(
	exchange ports.Exchange, generation uint64, kyc domain.KYC,
) func(ctx context.Context) error {
	opts := asyncutil.DefaultBackoffOpts(s.opts.MaxPollTime)

	return func(ctx context.Context) error {
		pollKYC := func(ctx context.Context) (bool, error) {
			refreshed, err := exchange.RefreshKYC(ctx, kyc.ID)
			if err != nil {
				log.WithError(err).Debugf("failed to refresh kyc %s", kyc.ID)
				return false, err
			}
			s.updateKYC(generation, *refreshed)
			return refreshed.IsCompleted(), nil
		}
		if err := asyncutil.PollUntil(ctx, opts, pollKYC); err != nil {
			return fmt.Errorf("kyc %s: %w", kyc.ID, err)
		}

		pollProfile := func(ctx context.Context) (bool, error) {
			profile, err := exchange.FetchProfile(ctx)
			if err != nil {
				log.WithError(err).Debug("failed to fetch profile")
				return false, err
			}
			s.setProfile(generation, profile)
			return profile.IsVerified(), nil
		}
		if err := asyncutil.PollUntil(ctx, opts, pollProfile); err != nil {
			return fmt.Errorf("profile level: %w", err)
		}
		return nil
	}
}

// PollKYC polls the newest KYC case if it's pending, unless a poll is already
// running in which case that one is returned. Once approved, the user is
// notified and brought back to the buy-sell view.
func (s *buySellService) PollKYC() (*Poll, error) {
	exchange, generation, err := s.readyExchange(context.Background(), ports.ExchangeCoinify)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	if s.kycPoll != nil && s.kycPoll.IsRunning() {
		p := s.kycPoll
		s.lock.Unlock()
		return p, nil
	}
	if len(s.kycs) <= 0 || !s.kycs[0].IsPending() {
		s.lock.Unlock()
		return nil, ErrNoPendingKYC
	}
	kyc := s.kycs[0]
	p := newPoll()
	s.kycPoll = p
	s.lock.Unlock()

	p.start(s.pollUserLevel(exchange, generation, kyc))

	go func() {
		<-p.Done()
		if err := p.Err(); err != nil {
			log.WithError(err).Debugf("kyc poll for %s ended", kyc.ID)
			return
		}
		if !s.isCurrent(generation) {
			return
		}
		s.notifier.DisplaySuccess(msgKYCApproved)
		s.notifier.GoToBuySell()
	}()

	return p, nil
}

func (s *buySellService) updateKYC(generation uint64, kyc domain.KYC) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.generation != generation {
		return
	}
	for i := range s.kycs {
		if s.kycs[i].ID == kyc.ID {
			s.kycs[i] = kyc
			return
		}
	}
}
