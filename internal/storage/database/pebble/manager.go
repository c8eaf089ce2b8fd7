package pebble

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/opendeed/deedd/internal/storage/database"
	"github.com/cockroachdb/pebble"
)

// Manager keeps one pebble handle open per named database under a shared
// root directory without each caller tracking its own open/close lifecycle.
// internal/cli opens the audit-index "events" database
// (internal/storage/auditindex) through a Manager rooted at
// storage.history_path; the settlement-state snapshot store is opened
// separately, not through a Manager.
type Manager struct {
	dbs  map[string]*pebble.DB
	path string
	mu   sync.Mutex
}

// NewManager returns a Manager rooted at path. path is created lazily: the
// first OpenDB for a given name creates path/name.db if it does not exist.
func NewManager(path string) *Manager {
	return &Manager{
		dbs:  make(map[string]*pebble.DB),
		path: path,
	}
}

// OpenDB opens (or returns the already-open handle for) path/name.db.
// Callers share the returned database.DB freely; Manager owns the
// underlying *pebble.DB and only releases it via CloseDB or Close.
func (m *Manager) OpenDB(name string) (database.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return NewDB(db), nil
	}

	dbPath := filepath.Join(m.path, name+".db")
	opts := &pebble.Options{}

	db, err := pebble.Open(dbPath, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}

	m.dbs[name] = db

	return NewDB(db), nil
}

// CloseDB closes and forgets the handle for name. A later OpenDB for the
// same name reopens it from disk.
func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, exists := m.dbs[name]
	if !exists {
		return fmt.Errorf("database %s not found", name)
	}

	err := db.Close()
	if err != nil {
		return err
	}

	delete(m.dbs, name)
	return nil
}

// Close closes every database the Manager currently has open, continuing
// past individual failures and returning the last one encountered.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for name, db := range m.dbs {
		if err := db.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close database %s: %w", name, err)
		}
		delete(m.dbs, name)
	}
	return lastErr
}
