package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"

	"PublicationIngest/internal/domain"
	"PublicationIngest/internal/ports"
)

// PostgresWarehouse persists assembled publication records. Each insert is a
// single atomic row write; the pool hands one connection per in-flight call.
type PostgresWarehouse struct {
	db *sql.DB
}

var _ ports.Warehouse = (*PostgresWarehouse)(nil)

// NewPostgresWarehouse opens a pgx-backed pool for the given DSN.
func NewPostgresWarehouse(dsn string) (*PostgresWarehouse, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}
	return &PostgresWarehouse{db: db}, nil
}

// Insert upserts one record keyed on title, so re-running a batch against an
// unchanged listing updates rows instead of duplicating them.
func (w *PostgresWarehouse) Insert(ctx context.Context, record domain.PublicationRecord) error {
	if w.db == nil {
		return fmt.Errorf("warehouse is not connected")
	}

	query, args, err := sq.Insert("publication_records").
		Columns("title", "brief_summary", "image_uri", "pdf_uri").
		Values(
			nullable(record.Title),
			nullable(record.BriefSummary),
			nullable(record.ImageURI),
			nullable(record.PDFURI),
		).
		Suffix(`ON CONFLICT (title) DO UPDATE
            SET brief_summary = EXCLUDED.brief_summary,
                image_uri = EXCLUDED.image_uri,
                pdf_uri = EXCLUDED.pdf_uri,
                updated_at = NOW()`).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := w.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	return nil
}

// Close releases the connection pool.
func (w *PostgresWarehouse) Close() error {
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}

// nullable maps empty optional fields to NULL columns.
func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
