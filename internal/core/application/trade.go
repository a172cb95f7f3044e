package application

import (
	"context"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/pkg/stats"
)

const (
	CancelDeclined CancelOutcome = iota
	CancelDone
	CancelFailed
)

const (
	msgConfirmCancelTrade     = "CONFIRM_CANCEL_TRADE"
	msgConfirmCancelBankTrade = "CONFIRM_CANCEL_BANK_TRADE"
	msgErrorTradeCancel       = "ERROR_TRADE_CANCEL"
)

var cancelConfirmOpts = ports.ConfirmOptions{
	Action: "CANCEL_TRADE",
	Cancel: "GO_BACK",
}

// CancelOutcome tells a declined cancellation apart from a failed one.
type CancelOutcome int

func (o CancelOutcome) String() string {
	switch o {
	case CancelDeclined:
		return "DECLINED"
	case CancelDone:
		return "CANCELLED"
	case CancelFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

func (s *buySellService) GetTrades(ctx context.Context) (domain.TradeBuckets, error) {
	exchange, generation, err := s.readyExchange(ctx, ports.ExchangeCoinify)
	if err != nil {
		return domain.TradeBuckets{}, err
	}

	trades, err := exchange.GetTrades(ctx)
	if err != nil {
		return domain.TradeBuckets{}, err
	}
	return s.setTrades(generation, trades), nil
}

func (s *buySellService) Trades() domain.TradeBuckets {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.trades
}

func (s *buySellService) GetTxMethod(
	ctx context.Context, txHash string,
) (domain.Direction, error) {
	txMethod, err := s.txMethods.GetTxMethod(ctx, txHash)
	if err != nil {
		return "", err
	}
	return txMethod.Direction, nil
}

func (s *buySellService) CancelTrade(
	ctx context.Context, tradeID string, confirmer ports.Confirmer,
) (CancelOutcome, error) {
	exchange, _, err := s.readyExchange(ctx, ports.ExchangeCoinify)
	if err != nil {
		return CancelFailed, err
	}

	trade, err := s.findTrade(ctx, exchange, tradeID)
	if err != nil {
		return CancelFailed, err
	}

	msg := msgConfirmCancelTrade
	if trade.Medium == domain.MediumBank {
		msg = msgConfirmCancelBankTrade
	}

	confirmed, err := confirmer.Confirm(ctx, msg, cancelConfirmOpts)
	if err != nil {
		s.notifier.DisplayError(msgErrorTradeCancel)
		return CancelFailed, err
	}
	if !confirmed {
		return CancelDeclined, nil
	}

	if err := exchange.CancelTrade(ctx, trade.ID); err != nil {
		s.notifier.DisplayError(msgErrorTradeCancel)
		return CancelFailed, err
	}
	if _, err := s.FetchProfile(ctx, false); err != nil {
		s.notifier.DisplayError(msgErrorTradeCancel)
		return CancelFailed, err
	}
	return CancelDone, nil
}

func (s *buySellService) OpenBuyView(
	ctx context.Context, trade *domain.Trade, opts ports.BuyViewOptions,
) error {
	if trade == nil {
		s.notifier.OpenBuyView(nil, opts)
		return nil
	}

	exchange, _, err := s.readyExchange(ctx, ports.ExchangeCoinify)
	if err != nil {
		return err
	}
	refreshed, err := exchange.RefreshTrade(ctx, trade.ID)
	if err != nil {
		return err
	}
	s.notifier.OpenBuyView(refreshed, opts)
	return nil
}

// setTrades classifies the trade list, starts watching the receive address of
// every settled buy still waiting for its bitcoins and records the direction
// of every completed trade with a tx hash.
func (s *buySellService) setTrades(
	generation uint64, trades []domain.Trade,
) domain.TradeBuckets {
	buckets := domain.ClassifyTrades(trades)

	s.lock.Lock()
	if s.generation != generation {
		s.lock.Unlock()
		return buckets
	}
	s.trades = buckets

	toWatch := make([]domain.Trade, 0)
	for _, t := range buckets.Success() {
		if !t.IsBuy || !t.IsAwaitingPayment() {
			continue
		}
		if _, ok := s.watching[t.ReceiveAddress]; ok {
			continue
		}
		s.watching[t.ReceiveAddress] = struct{}{}
		toWatch = append(toWatch, t)
	}
	watchCtx := s.watchCtx
	s.lock.Unlock()

	for _, t := range buckets.Completed {
		if t.TxHash == "" {
			continue
		}
		s.recordTxMethod(watchCtx, t.TxHash, t.ID, t.Direction())
	}

	for _, t := range toWatch {
		go s.watchAddress(watchCtx, generation, t)
	}

	return buckets
}

func (s *buySellService) watchAddress(
	ctx context.Context, generation uint64, trade domain.Trade,
) {
	log.Debugf("watching address %s for trade %s", trade.ReceiveAddress, trade.ID)
	stats.AddressWatchStarted()
	defer stats.AddressWatchStopped()

	txHash, err := s.watcher.WatchAddress(ctx, trade.ReceiveAddress)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.WithError(err).Warnf("failed to watch address %s", trade.ReceiveAddress)
		s.lock.Lock()
		if s.generation == generation {
			delete(s.watching, trade.ReceiveAddress)
		}
		s.lock.Unlock()
		return
	}

	if !s.isCurrent(generation) {
		return
	}

	if trade.TxHash == "" {
		trade.TxHash = txHash
	}
	if trade.TxHash != "" {
		s.recordTxMethod(ctx, trade.TxHash, trade.ID, domain.DirectionBuy)
	}

	opts := ports.BuyViewOptions{BitcoinReceived: true}
	if err := s.OpenBuyView(ctx, &trade, opts); err != nil {
		log.WithError(err).Warnf("failed to open buy view for trade %s", trade.ID)
	}
}

func (s *buySellService) recordTxMethod(
	ctx context.Context, txHash, tradeID string, direction domain.Direction,
) {
	txMethod := domain.NewTxMethod(txHash, tradeID, direction)
	if err := s.txMethods.AddTxMethod(ctx, txMethod); err != nil {
		log.WithError(err).Warnf("failed to record direction of tx %s", txHash)
	}
}

func (s *buySellService) findTrade(
	ctx context.Context, exchange ports.Exchange, tradeID string,
) (*domain.Trade, error) {
	buckets := s.Trades()
	for _, list := range [][]domain.Trade{buckets.Pending, buckets.Completed} {
		for i := range list {
			if list[i].ID == tradeID {
				trade := list[i]
				return &trade, nil
			}
		}
	}

	trade, err := exchange.RefreshTrade(ctx, tradeID)
	if err != nil {
		var partnerErr *ports.PartnerError
		if errors.As(err, &partnerErr) && partnerErr.Status == http.StatusNotFound {
			return nil, ErrTradeNotFound
		}
		return nil, err
	}
	return trade, nil
}
