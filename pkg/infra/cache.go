package infra

import (
	"time"

	"github.com/dgraph-io/badger/v4"
	gocache "github.com/patrickmn/go-cache"
)

// Cache is the response-cache port. Absence and internal errors are both
// reported as a miss; the caller never distinguishes them.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
	Close() error
}

// MemoryCache is an in-process TTL cache.
type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryCache) Get(key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	data, ok := v.([]byte)
	return data, ok
}

func (m *MemoryCache) Set(key string, value []byte, ttl time.Duration) {
	m.c.Set(key, value, ttl)
}

func (m *MemoryCache) Delete(key string) { m.c.Delete(key) }

func (m *MemoryCache) Close() error {
	m.c.Flush()
	return nil
}

// BadgerCache persists cached responses on disk with per-entry TTL.
type BadgerCache struct {
	db     *badger.DB
	prefix string
}

func NewBadgerCache(path string, prefix string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerCache{db: db, prefix: prefix}, nil
}

func (b *BadgerCache) fullKey(k string) []byte {
	if b.prefix != "" {
		return []byte(b.prefix + "/" + k)
	}
	return []byte(k)
}

func (b *BadgerCache) Get(key string) ([]byte, bool) {
	var valCopy []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.fullKey(key))
		if err != nil {
			return err
		}
		valCopy, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}
	return valCopy, true
}

func (b *BadgerCache) Set(key string, value []byte, ttl time.Duration) {
	_ = b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(b.fullKey(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (b *BadgerCache) Delete(key string) {
	_ = b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.fullKey(key))
	})
}

func (b *BadgerCache) Close() error {
	return b.db.Close()
}
