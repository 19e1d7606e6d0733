// Package store persists terminal sessions and the command usage log.
package store

import (
	"fmt"

	"github.com/Zachkp/termfolio/internal/terminal"
)

// Backend hands out per-session storage.
type Backend interface {
	Session(id string) terminal.Storage
	Close() error
}

const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Open returns the session backend named by kind. The sqlite backend
// shares db; the badger backend opens its own directory.
func Open(kind string, db *SQLite, badgerDir string) (Backend, error) {
	switch kind {
	case "", BackendSQLite:
		return db, nil
	case BackendBadger:
		return OpenBadger(badgerDir)
	}
	return nil, fmt.Errorf("unknown store backend %q", kind)
}
