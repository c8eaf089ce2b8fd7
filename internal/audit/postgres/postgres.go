// Package postgres is an audit Sink backed by PostgreSQL, for deployments
// that already run a relational store alongside deedd and want the
// settlement event log queryable with SQL.
package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/logging"
	"github.com/opendeed/deedd/internal/settlement"
)

const schema = `
CREATE TABLE IF NOT EXISTS settlement_events (
	seq        BIGSERIAL PRIMARY KEY,
	kind       TEXT NOT NULL,
	listing_id BIGINT NOT NULL,
	asset_id   BIGINT NOT NULL,
	accounts   TEXT NOT NULL,
	amount     BIGINT NOT NULL,
	price      TEXT NOT NULL,
	asset      SMALLINT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Sink persists every committed settlement.Event as a row.
type Sink struct {
	db  *sql.DB
	log *logging.Logger
}

// Open connects to dsn, ensures the schema exists, and returns a ready Sink.
func Open(dsn string) (*Sink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit/postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("audit/postgres: ping: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("audit/postgres: migrate: %w", err)
	}
	return &Sink{db: db, log: logging.New("audit.postgres")}, nil
}

// Close releases the underlying connection pool.
func (s *Sink) Close() error { return s.db.Close() }

// Publish implements settlement.Sink. Publish is best-effort: a write
// failure is logged, not propagated, since the event has already committed
// against the live engine state by the time Publish runs.
func (s *Sink) Publish(e settlement.Event) {
	_, err := s.db.Exec(
		`INSERT INTO settlement_events (kind, listing_id, asset_id, accounts, amount, price, asset) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
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
