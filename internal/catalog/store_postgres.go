package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"lifeledger/pkg/platform/sentinel"
	txcontext "lifeledger/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) runner(ctx context.Context) dbRunner {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, entry *Entry) error {
	_, err := s.runner(ctx).ExecContext(ctx, `
		INSERT INTO catalog_entries
			(name, category, purchasable, mortgageable, rentable, price, price_band, image_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.Name, entry.Category, entry.Purchasable, entry.Mortgageable,
		entry.Rentable, entry.Price, string(entry.PriceBand), entry.ImageRef,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert catalog entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, name string) (*Entry, error) {
	entry := Entry{}
	var band string
	err := s.runner(ctx).QueryRowContext(ctx, `
		SELECT name, category, purchasable, mortgageable, rentable, price, price_band, image_ref
		FROM catalog_entries WHERE name = $1`, name,
	).Scan(&entry.Name, &entry.Category, &entry.Purchasable, &entry.Mortgageable,
		&entry.Rentable, &entry.Price, &band, &entry.ImageRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select catalog entry: %w", err)
	}
	entry.PriceBand = PriceBand(band)
	return &entry, nil
}

func (s *PostgresStore) Update(ctx context.Context, entry *Entry) error {
	result, err := s.runner(ctx).ExecContext(ctx, `
		UPDATE catalog_entries SET
			category = $2, purchasable = $3, mortgageable = $4,
			rentable = $5, price = $6, price_band = $7, image_ref = $8
		WHERE name = $1`,
		entry.Name, entry.Category, entry.Purchasable, entry.Mortgageable,
		entry.Rentable, entry.Price, string(entry.PriceBand), entry.ImageRef,
	)
	if err != nil {
		return fmt.Errorf("update catalog entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Entry, error) {
	rows, err := s.runner(ctx).QueryContext(ctx, `
		SELECT name, category, purchasable, mortgageable, rentable, price, price_band, image_ref
		FROM catalog_entries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list catalog entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry := Entry{}
		var band string
		if err := rows.Scan(&entry.Name, &entry.Category, &entry.Purchasable,
			&entry.Mortgageable, &entry.Rentable, &entry.Price, &band, &entry.ImageRef); err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		entry.PriceBand = PriceBand(band)
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
