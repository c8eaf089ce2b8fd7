// Package sqlite is an audit Sink backed by an embedded SQLite database,
// the zero-dependency default for single-node deployments and tests.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/logging"
	"github.com/opendeed/deedd/internal/settlement"
)

const schema = `
CREATE TABLE IF NOT EXISTS settlement_events (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	kind        TEXT NOT NULL,
	listing_id  INTEGER NOT NULL,
	asset_id    INTEGER NOT NULL,
	accounts    TEXT NOT NULL,
	amount      INTEGER NOT NULL,
	price       TEXT NOT NULL,
	asset       INTEGER NOT NULL,
	recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Sink persists every committed settlement.Event as a row.
type Sink struct {
	db  *sql.DB
	log *logging.Logger
}

// Open opens (creating if absent) the sqlite file at path and ensures the
// schema exists.
func Open(path string) (*Sink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit/sqlite: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("audit/sqlite: migrate: %w", err)
	}
	return &Sink{db: db, log: logging.New("audit.sqlite")}, nil
}

// Close releases the underlying connection.
func (s *Sink) Close() error { return s.db.Close() }

// Publish implements settlement.Sink.
func (s *Sink) Publish(e settlement.Event) {
	_, err := s.db.Exec(
		`INSERT INTO settlement_events (kind, listing_id, asset_id, accounts, amount, price, asset) VALUES (?,?,?,?,?,?,?)`,
		string(e.Kind), e.ListingID, e.AssetID, encodeAccounts(e.Accounts), e.Amount, e.Price.String(), uint8(e.Asset),
	)
	if err != nil {
		s.log.Error(fmt.Sprintf("insert event: %v", err))
	}
}

func encodeAccounts(accounts []ledgercore.AccountID) string {
	out := make([]byte, 0, len(accounts)*41)
	for i, a := range accounts {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, []byte(a.String())...)
	}
	return string(out)
}
