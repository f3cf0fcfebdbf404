package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialfeed/feed"
	"socialfeed/logger"

	"github.com/dgraph-io/badger/v4"
)

const badgerDeleteBatch = 1000

// BadgerFeedCache - встроенный кеш на badger для одиночного инстанса.
// Пустой путь - хранение только в памяти
type BadgerFeedCache struct {
	db *badger.DB
}

func NewBadgerFeedCache(path string) (*BadgerFeedCache, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(logger.Log).
		WithLoggingLevel(badger.WARNING)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerFeedCache{db: db}, nil
}

func (c *BadgerFeedCache) Close() error {
	return c.db.Close()
}

func (c *BadgerFeedCache) Get(_ context.Context, key string) ([]byte, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return feed.ErrCacheMiss
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *BadgerFeedCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (c *BadgerFeedCache) Delete(_ context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// DeleteByPrefix сначала собирает ключи, затем удаляет их отдельными транзакциями
func (c *BadgerFeedCache) DeleteByPrefix(_ context.Context, prefix string) error {
	var keys [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	for start := 0; start < len(keys); start += badgerDeleteBatch {
		end := min(start+badgerDeleteBatch, len(keys))
		err := c.db.Update(func(txn *badger.Txn) error {
			for _, k := range keys[start:end] {
				if err := txn.Delete(k); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
