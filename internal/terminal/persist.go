package terminal

import (
	"encoding/json"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Storage keys, one independent entry each.
const (
	KeyLines   = "terminal-lines"
	KeyHistory = "terminal-history"
	KeyCounter = "terminal-counter"
)

// Storage is a session-scoped string key/value store.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// RestoreSession rebuilds a session from st. Each key is read on its own;
// unreadable or malformed entries are logged and skipped, so a broken
// entry only loses that part of the state.
func RestoreSession(st Storage, log *zap.Logger) *Session {
	s := NewSession()
	if st == nil {
		return s
	}

	if raw, ok := load(st, KeyLines, log); ok {
		var lines []Line
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			log.Warn("Failed to parse saved terminal lines", zap.Error(err))
		} else {
			for i := range lines {
				lines[i].Restored = true
			}
			s.Lines = lines
		}
	}

	if raw, ok := load(st, KeyHistory, log); ok {
		var history []string
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			log.Warn("Failed to parse saved command history", zap.Error(err))
		} else {
			s.History = history
		}
	}

	if raw, ok := load(st, KeyCounter, log); ok {
		var counter int
		if err := json.Unmarshal([]byte(raw), &counter); err != nil {
			log.Warn("Failed to parse saved line counter", zap.Error(err))
		} else {
			s.Counter = counter
		}
	}

	return s
}

func load(st Storage, key string, log *zap.Logger) (string, bool) {
	raw, ok, err := st.Get(key)
	if err != nil {
		log.Warn("Failed to read session storage", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return raw, ok
}

// persister mirrors session parts to storage. Write failures are logged;
// the terminal keeps working without persistence.
type persister struct {
	st  Storage
	log *zap.Logger
}

func (p persister) lines(lines []Line) {
	p.write(KeyLines, lines)
}

func (p persister) history(history []string) {
	if history == nil {
		history = []string{}
	}
	p.write(KeyHistory, history)
}

func (p persister) counter(n int) {
	p.set(KeyCounter, strconv.Itoa(n))
}

func (p persister) clear() {
	if p.st == nil {
		return
	}
	if err := p.st.Delete(KeyLines, KeyHistory, KeyCounter); err != nil {
		p.log.Warn("Failed to clear session storage", zap.Error(err))
	}
}

func (p persister) write(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		p.log.Warn("Failed to encode session state", zap.String("key", key), zap.Error(err))
		return
	}
	p.set(key, string(data))
}

func (p persister) set(key, value string) {
	if p.st == nil {
		return
	}
	if err := p.st.Set(key, value); err != nil {
		p.log.Warn("Failed to write session storage", zap.String("key", key), zap.Error(err))
	}
}

// MemoryStorage keeps entries in a map. It backs tests and sessions that
// run without a database.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryStorage) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}
