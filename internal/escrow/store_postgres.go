package escrow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lifeledger/internal/domain"
	"lifeledger/pkg/platform/sentinel"
	txcontext "lifeledger/pkg/platform/tx"
)

// PostgresStore keeps receipts and listing state in two tables. Receipt ids
// come from the escrow_receipts BIGSERIAL, which is the dedicated receipt
// sequence.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) runner(ctx context.Context) dbRunner {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) CreateReceipt(ctx context.Context, receipt *Receipt) error {
	err := s.runner(ctx).QueryRowContext(ctx, `
		INSERT INTO escrow_receipts (kind, asset_id, price, image_ref)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		string(receipt.Kind), receipt.AssetID, receipt.Price, receipt.ImageRef,
	).Scan(&receipt.ID)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetReceipt(ctx context.Context, kind domain.RegistryKind, id uint64) (*Receipt, error) {
	receipt := Receipt{ID: id, Kind: kind}
	err := s.runner(ctx).QueryRowContext(ctx, `
		SELECT asset_id, price, image_ref
		FROM escrow_receipts WHERE kind = $1 AND id = $2`,
		string(kind), id,
	).Scan(&receipt.AssetID, &receipt.Price, &receipt.ImageRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select receipt: %w", err)
	}
	return &receipt, nil
}

func (s *PostgresStore) DeleteReceipt(ctx context.Context, kind domain.RegistryKind, id uint64) error {
	result, err := s.runner(ctx).ExecContext(ctx, `
		DELETE FROM escrow_receipts WHERE kind = $1 AND id = $2`,
		string(kind), id,
	)
	if err != nil {
		return fmt.Errorf("delete receipt: %w", err)
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

func (s *PostgresStore) LatestReceiptByAsset(ctx context.Context, kind domain.RegistryKind, assetID uint64) (*Receipt, error) {
	receipt := Receipt{Kind: kind, AssetID: assetID}
	err := s.runner(ctx).QueryRowContext(ctx, `
		SELECT id, price, image_ref
		FROM escrow_receipts WHERE kind = $1 AND asset_id = $2
		ORDER BY id DESC LIMIT 1`,
		string(kind), assetID,
	).Scan(&receipt.ID, &receipt.Price, &receipt.ImageRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest receipt: %w", err)
	}
	return &receipt, nil
}

func (s *PostgresStore) ListingState(ctx context.Context, kind domain.RegistryKind, assetID uint64) (ListingState, error) {
	var state string
	err := s.runner(ctx).QueryRowContext(ctx, `
		SELECT state FROM escrow_listings WHERE kind = $1 AND asset_id = $2`,
		string(kind), assetID,
	).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return StateNotListed, nil
	}
	if err != nil {
		return "", fmt.Errorf("select listing state: %w", err)
	}
	return ListingState(state), nil
}

func (s *PostgresStore) SetListingState(ctx context.Context, kind domain.RegistryKind, assetID uint64, state ListingState) error {
	if state == StateNotListed {
		_, err := s.runner(ctx).ExecContext(ctx, `
			DELETE FROM escrow_listings WHERE kind = $1 AND asset_id = $2`,
			string(kind), assetID,
		)
		if err != nil {
			return fmt.Errorf("clear listing state: %w", err)
		}
		return nil
	}
	_, err := s.runner(ctx).ExecContext(ctx, `
		INSERT INTO escrow_listings (kind, asset_id, state)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, asset_id) DO UPDATE SET state = EXCLUDED.state`,
		string(kind), assetID, string(state),
	)
	if err != nil {
		return fmt.Errorf("set listing state: %w", err)
	}
	return nil
}
