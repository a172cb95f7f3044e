package pubsub

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dgraph-io/badger/v3"
	dbbadger "github.com/tdex-network/buysell-daemon/internal/infrastructure/storage/db/badger"
	"github.com/timshannon/badgerhold/v4"
)

const subscriptionsDir = "pubsub"

type store struct {
	db *badgerhold.Store
}

func newStore(baseDbDir string, logger badger.Logger) (*store, error) {
	var dir string
	if len(baseDbDir) > 0 {
		dir = filepath.Join(baseDbDir, subscriptionsDir)
	}
	db, err := dbbadger.NewStore(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening subscriptions db: %w", err)
	}
	return &store{db}, nil
}

func (s *store) add(sub Subscription) (bool, error) {
	if err := s.db.Insert(sub.ID, &sub); err != nil {
		if err == badgerhold.ErrKeyExists {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *store) remove(id string) error {
	if err := s.db.Delete(id, Subscription{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("webhook not found")
		}
		return err
	}
	return nil
}

func (s *store) getByTopic(topic string) subscriptions {
	var query *badgerhold.Query
	if len(topic) > 0 {
		query = badgerhold.Where("Event").Eq(topic).Index("Event")
	}

	var subs subscriptions
	//nolint
	s.db.Find(&subs, query)
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs
}

func (s *store) close() error {
	return s.db.Close()
}
