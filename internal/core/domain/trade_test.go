package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
)

var allStates = []domain.TradeState{
	domain.TradeStateAwaitingTransferIn,
	domain.TradeStateReviewing,
	domain.TradeStateProcessing,
	domain.TradeStatePending,
	domain.TradeStateExpired,
	domain.TradeStateRejected,
	domain.TradeStateCancelled,
	domain.TradeStateCompleted,
	domain.TradeStateCompletedTest,
}

func TestTradeStateTaxonomy(t *testing.T) {
	t.Parallel()

	for _, st := range allStates {
		pending := domain.PendingStates.Contains(st)
		completed := domain.CompletedStates.Contains(st)
		require.True(t, pending != completed, string(st))

		if completed {
			isErr := domain.ErrorStates.Contains(st)
			isSuccess := domain.SuccessStates.Contains(st)
			require.True(t, isErr != isSuccess, string(st))
		}
	}

	require.Len(t, domain.CompletedStates, len(domain.ErrorStates)+len(domain.SuccessStates))
}

func TestClassifyTrades(t *testing.T) {
	t.Parallel()

	trades := make([]domain.Trade, 0, len(allStates)*2)
	for i := 0; i < 2; i++ {
		for _, st := range allStates {
			trades = append(trades, domain.Trade{ID: string(st), State: st, IsBuy: i == 0})
		}
	}

	buckets := domain.ClassifyTrades(trades)
	require.Len(t, buckets.Pending, 8)
	require.Len(t, buckets.Completed, 10)
	require.Equal(t, len(trades), len(buckets.Pending)+len(buckets.Completed))

	seen := make(map[string]int)
	for _, tr := range append(buckets.Pending, buckets.Completed...) {
		seen[string(tr.State)]++
	}
	for _, st := range allStates {
		require.Equal(t, 2, seen[string(st)], string(st))
	}

	require.Len(t, buckets.Success(), 4)
	require.Len(t, buckets.Errored(), 6)
	for _, tr := range buckets.Success() {
		require.True(t, tr.IsSuccess())
		require.False(t, tr.IsError())
	}
}

func TestFilterTradesKeepsOrder(t *testing.T) {
	t.Parallel()

	trades := []domain.Trade{
		{ID: "a", State: domain.TradeStateCompleted},
		{ID: "b", State: domain.TradeStatePending},
		{ID: "c", State: domain.TradeStateCompletedTest},
	}
	filtered := domain.FilterTrades(trades, domain.SuccessStates)
	require.Equal(t, []string{"a", "c"}, []string{filtered[0].ID, filtered[1].ID})

	require.Empty(t, domain.FilterTrades(nil, domain.PendingStates))
	require.Empty(t, domain.ClassifyTrades([]domain.Trade{{State: "unknown"}}).Pending)
}

func TestTradeIsAwaitingPayment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		trade    domain.Trade
		expected bool
	}{
		{
			name:     "completed_not_received",
			trade:    domain.Trade{State: domain.TradeStateCompleted, IsBuy: true, ReceiveAddress: "addr"},
			expected: true,
		},
		{
			name:     "already_received",
			trade:    domain.Trade{State: domain.TradeStateCompleted, ReceiveAddress: "addr", BitcoinReceived: true},
			expected: false,
		},
		{
			name:     "rejected",
			trade:    domain.Trade{State: domain.TradeStateRejected, ReceiveAddress: "addr"},
			expected: false,
		},
		{
			name:     "missing_address",
			trade:    domain.Trade{State: domain.TradeStateCompletedTest},
			expected: false,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.trade.IsAwaitingPayment())
		})
	}
}
