package domain

import (
	"context"
	"time"
)

// TxMethod records whether the bitcoin transaction identified by TxHash was
// part of a buy or a sell trade.
type TxMethod struct {
	TxHash    string
	TradeID   string
	Direction Direction
	CreatedAt int64
}

func NewTxMethod(txHash, tradeID string, direction Direction) TxMethod {
	return TxMethod{
		TxHash:    txHash,
		TradeID:   tradeID,
		Direction: direction,
		CreatedAt: time.Now().Unix(),
	}
}

// TxMethodRepository is the abstraction for any kind of database intended to
// persist TxMethods.
type TxMethodRepository interface {
	// AddTxMethod stores the record, overwriting any previous one for the same
	// tx hash.
	AddTxMethod(ctx context.Context, txMethod TxMethod) error
	// GetTxMethod returns the record for the given tx hash or
	// ErrTxMethodNotFound.
	GetTxMethod(ctx context.Context, txHash string) (*TxMethod, error)
	// GetAllTxMethods returns every record, newest first.
	GetAllTxMethods(ctx context.Context) ([]TxMethod, error)
	Close() error
}
