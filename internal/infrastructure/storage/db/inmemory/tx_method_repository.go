package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/buysell-daemon/internal/core/domain"
)

type txMethodRepository struct {
	lock      sync.RWMutex
	txMethods map[string]domain.TxMethod
}

// NewTxMethodRepository returns an in-memory implementation of the
// domain.TxMethodRepository.
func NewTxMethodRepository() domain.TxMethodRepository {
	return &txMethodRepository{
		txMethods: make(map[string]domain.TxMethod),
	}
}

func (r *txMethodRepository) AddTxMethod(
	_ context.Context, txMethod domain.TxMethod,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.txMethods[txMethod.TxHash] = txMethod
	return nil
}

func (r *txMethodRepository) GetTxMethod(
	_ context.Context, txHash string,
) (*domain.TxMethod, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	txMethod, ok := r.txMethods[txHash]
	if !ok {
		return nil, domain.ErrTxMethodNotFound
	}
	return &txMethod, nil
}

func (r *txMethodRepository) GetAllTxMethods(
	_ context.Context,
) ([]domain.TxMethod, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	txMethods := make([]domain.TxMethod, 0, len(r.txMethods))
	for _, m := range r.txMethods {
		txMethods = append(txMethods, m)
	}
	sort.SliceStable(txMethods, func(i, j int) bool {
		return txMethods[i].CreatedAt > txMethods[j].CreatedAt
	})
	return txMethods, nil
}

func (r *txMethodRepository) Close() error {
	return nil
}
