package sink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/linecap/internal/core"
	"github.com/JonMunkholm/linecap/internal/logging"
)

// DefaultTable is the table records are upserted into.
const DefaultTable = "extracted_records"

// DBTX is the subset of *pgxpool.Pool the Postgres sink uses.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres upserts every record in one transaction, keyed by layout and
// record key. A record seen again in a later run replaces the stored one.
type Postgres struct {
	DB    DBTX
	Table string
}

// NewPostgres creates a Postgres sink writing to table, or DefaultTable.
func NewPostgres(db DBTX, table string) *Postgres {
	if table == "" {
		table = DefaultTable
	}
	return &Postgres{DB: db, Table: table}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) table() string {
	return pgx.Identifier{p.Table}.Sanitize()
}

// EnsureSchema creates the records table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.DB.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	layout       TEXT        NOT NULL,
	record_key   TEXT        NOT NULL,
	run_id       TEXT        NOT NULL,
	fields       JSONB       NOT NULL,
	extracted_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (layout, record_key)
)`, p.table()))
	if err != nil {
		return sinkError(p.Name(), fmt.Errorf("ensure schema: %w", err))
	}
	return nil
}

func (p *Postgres) upsertSQL() string {
	return fmt.Sprintf(`INSERT INTO %s (layout, record_key, run_id, fields, extracted_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (layout, record_key) DO UPDATE
SET run_id = EXCLUDED.run_id, fields = EXCLUDED.fields, extracted_at = EXCLUDED.extracted_at`, p.table())
}

func (p *Postgres) Write(ctx context.Context, res *core.Result) error {
	tx, err := p.DB.Begin(ctx)
	if err != nil {
		return sinkError(p.Name(), fmt.Errorf("begin transaction: %w", err))
	}

	query := p.upsertSQL()
	for _, rec := range res.Store.Records() {
		fields, err := rec.MarshalJSON()
		if err != nil {
			_ = tx.Rollback(ctx)
			return sinkError(p.Name(), fmt.Errorf("encode record %s: %w", rec.Key, err))
		}
		if _, err := tx.Exec(ctx, query, res.Layout.Key, rec.Key, res.RunID, string(fields), res.StartedAt); err != nil {
			_ = tx.Rollback(ctx)
			return sinkError(p.Name(), fmt.Errorf("upsert record %s: %w", rec.Key, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return sinkError(p.Name(), fmt.Errorf("commit: %w", err))
	}

	logging.WithFields(ctx, "run_id", res.RunID).Info("output written",
		"sink", p.Name(),
		"table", p.Table,
		"records", res.Store.Len(),
	)
	return nil
}
