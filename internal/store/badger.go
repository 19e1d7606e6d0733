package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/Zachkp/termfolio/internal/terminal"
)

// Badger keeps session entries in a badger key/value directory, keyed
// "session/<id>/<key>".
type Badger struct {
	db *badger.DB
}

func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *Badger) Session(id string) terminal.Storage {
	return &badgerSession{db: b.db, prefix: "session/" + id + "/"}
}

type badgerSession struct {
	db     *badger.DB
	prefix string
}

func (s *badgerSession) key(k string) []byte {
	return []byte(s.prefix + k)
}

func (s *badgerSession) Get(key string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(value), true, nil
}

func (s *badgerSession) Set(key, value string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(key), []byte(value))
	})
}

func (s *badgerSession) Delete(keys ...string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(s.key(k)); err != nil {
				return err
			}
		}
		return nil
	})
}
