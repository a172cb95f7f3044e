package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TradeStateAwaitingTransferIn TradeState = "awaiting_transfer_in"
	TradeStateReviewing          TradeState = "reviewing"
	TradeStateProcessing         TradeState = "processing"
	TradeStatePending            TradeState = "pending"
	TradeStateExpired            TradeState = "expired"
	TradeStateRejected           TradeState = "rejected"
	TradeStateCancelled          TradeState = "cancelled"
	TradeStateCompleted          TradeState = "completed"
	TradeStateCompletedTest      TradeState = "completed_test"

	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"

	MediumBank Medium = "bank"
	MediumCard Medium = "card"
	MediumACH  Medium = "ach"
)

var (
	// ErrorStates are the terminal states of a trade that did not go through.
	ErrorStates = NewTradeStateSet(
		TradeStateExpired, TradeStateRejected, TradeStateCancelled,
	)
	// SuccessStates are the terminal states of a settled trade.
	SuccessStates = NewTradeStateSet(
		TradeStateCompleted, TradeStateCompletedTest,
	)
	// PendingStates are the states of a trade still in progress.
	PendingStates = NewTradeStateSet(
		TradeStateAwaitingTransferIn, TradeStateReviewing,
		TradeStateProcessing, TradeStatePending,
	)
	// CompletedStates is the union of ErrorStates and SuccessStates, that is
	// every terminal state.
	CompletedStates = ErrorStates.Union(SuccessStates)
)

// TradeState is the state of a trade as reported by the exchange partner.
type TradeState string

// Direction is either buy or sell.
type Direction string

// Medium is a payment method, each one with its own limits.
type Medium string

// TradeStateSet is an immutable set of trade states.
type TradeStateSet map[TradeState]struct{}

func NewTradeStateSet(states ...TradeState) TradeStateSet {
	set := make(TradeStateSet, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	return set
}

func (s TradeStateSet) Contains(state TradeState) bool {
	_, ok := s[state]
	return ok
}

func (s TradeStateSet) Union(other TradeStateSet) TradeStateSet {
	set := make(TradeStateSet, len(s)+len(other))
	for st := range s {
		set[st] = struct{}{}
	}
	for st := range other {
		set[st] = struct{}{}
	}
	return set
}

// Trade is a single buy or sell record held by an exchange partner.
type Trade struct {
	ID              string
	State           TradeState
	IsBuy           bool
	Medium          Medium
	ReceiveAddress  string
	TxHash          string
	BitcoinReceived bool
	InCurrency      string
	OutCurrency     string
	InAmount        decimal.Decimal
	OutAmount       decimal.Decimal
	CreatedAt       time.Time
}

func (t Trade) Direction() Direction {
	if t.IsBuy {
		return DirectionBuy
	}
	return DirectionSell
}

func (t Trade) IsPending() bool {
	return PendingStates.Contains(t.State)
}

func (t Trade) IsCompleted() bool {
	return CompletedStates.Contains(t.State)
}

func (t Trade) IsSuccess() bool {
	return SuccessStates.Contains(t.State)
}

func (t Trade) IsError() bool {
	return ErrorStates.Contains(t.State)
}

// IsAwaitingPayment returns whether the trade settled on the partner side but
// the bitcoins have not reached the receive address yet.
func (t Trade) IsAwaitingPayment() bool {
	return t.IsSuccess() && !t.BitcoinReceived && t.ReceiveAddress != ""
}

// TradeStateIn returns a predicate matching trades whose state is in set.
func TradeStateIn(set TradeStateSet) func(Trade) bool {
	return func(t Trade) bool {
		return set.Contains(t.State)
	}
}

// FilterTrades returns the trades whose state belongs to set, preserving
// their order.
func FilterTrades(trades []Trade, set TradeStateSet) []Trade {
	in := TradeStateIn(set)
	filtered := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if in(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// TradeBuckets holds a trade list partitioned into pending and completed.
type TradeBuckets struct {
	Pending   []Trade
	Completed []Trade
}

// ClassifyTrades partitions trades into pending and completed buckets.
// Trades in a state unknown to the taxonomy end up in neither.
func ClassifyTrades(trades []Trade) TradeBuckets {
	return TradeBuckets{
		Pending:   FilterTrades(trades, PendingStates),
		Completed: FilterTrades(trades, CompletedStates),
	}
}

// Success returns the completed trades that settled.
func (b TradeBuckets) Success() []Trade {
	return FilterTrades(b.Completed, SuccessStates)
}

// Errored returns the completed trades that did not go through.
func (b TradeBuckets) Errored() []Trade {
	return FilterTrades(b.Completed, ErrorStates)
}
