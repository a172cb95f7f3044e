package dbbadger

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const txMethodsDir = "txmethods"

type txMethodRepository struct {
	store *badgerhold.Store
}

// NewTxMethodRepository returns a badger implementation of the
// domain.TxMethodRepository storing data in a subfolder of baseDbDir.
func NewTxMethodRepository(
	baseDbDir string, logger badger.Logger,
) (domain.TxMethodRepository, error) {
	var dir string
	if len(baseDbDir) > 0 {
		dir = filepath.Join(baseDbDir, txMethodsDir)
	}

	store, err := NewStore(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening tx methods db: %w", err)
	}
	return &txMethodRepository{store}, nil
}

func (r *txMethodRepository) AddTxMethod(
	_ context.Context, txMethod domain.TxMethod,
) error {
	return r.store.Upsert(txMethod.TxHash, &txMethod)
}

func (r *txMethodRepository) GetTxMethod(
	_ context.Context, txHash string,
) (*domain.TxMethod, error) {
	var txMethod domain.TxMethod
	if err := r.store.Get(txHash, &txMethod); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrTxMethodNotFound
		}
		return nil, err
	}
	return &txMethod, nil
}

func (r *txMethodRepository) GetAllTxMethods(
	_ context.Context,
) ([]domain.TxMethod, error) {
	var txMethods []domain.TxMethod
	if err := r.store.Find(&txMethods, nil); err != nil {
		return nil, err
	}
	sort.SliceStable(txMethods, func(i, j int) bool {
		return txMethods[i].CreatedAt > txMethods[j].CreatedAt
	})
	return txMethods, nil
}

func (r *txMethodRepository) Close() error {
	return r.store.Close()
}
