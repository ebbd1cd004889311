//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers Postgres instance with the full
// schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	URL       string
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container, connects and applies the
// schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("lifeledger"),
		tcpostgres.WithUsername("lifeledger"),
		tcpostgres.WithPassword("lifeledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	return &PostgresContainer{Container: container, URL: url, DB: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS people (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	birth_date TIMESTAMPTZ NOT NULL,
	father_id BIGINT NOT NULL DEFAULT 0,
	mother_id BIGINT NOT NULL DEFAULT 0,
	gender TEXT NOT NULL,
	occupation TEXT NOT NULL,
	partner_id BIGINT NOT NULL DEFAULT 0,
	mood_status TEXT NOT NULL,
	health_status TEXT NOT NULL,
	schooling TEXT NOT NULL,
	image_ref TEXT NOT NULL DEFAULT '',
	holder_account TEXT NOT NULL DEFAULT '',
	custody_generation BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS objects (
	id BIGSERIAL PRIMARY KEY,
	type_name TEXT NOT NULL,
	mortgaged BOOLEAN NOT NULL DEFAULT FALSE,
	rent_allowed BOOLEAN NOT NULL DEFAULT FALSE,
	daily_rent_price BIGINT NOT NULL DEFAULT 0,
	rent_occupant_id BIGINT NOT NULL DEFAULT 0,
	image_ref TEXT NOT NULL DEFAULT '',
	holder_account TEXT NOT NULL DEFAULT '',
	custody_generation BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS catalog_entries (
	name TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	purchasable BOOLEAN NOT NULL,
	mortgageable BOOLEAN NOT NULL,
	rentable BOOLEAN NOT NULL,
	price BIGINT NOT NULL,
	price_band TEXT NOT NULL,
	image_ref TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS escrow_receipts (
	id BIGSERIAL PRIMARY KEY,
	kind TEXT NOT NULL,
	asset_id BIGINT NOT NULL,
	price BIGINT NOT NULL,
	image_ref TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS escrow_receipts_asset_idx ON escrow_receipts (kind, asset_id, id DESC);

CREATE TABLE IF NOT EXISTS escrow_listings (
	kind TEXT NOT NULL,
	asset_id BIGINT NOT NULL,
	state TEXT NOT NULL,
	PRIMARY KEY (kind, asset_id)
);

CREATE TABLE IF NOT EXISTS audit_outbox (
	id UUID PRIMARY KEY,
	action TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	published_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS audit_outbox_unpublished_idx ON audit_outbox (created_at) WHERE published_at IS NULL;
`
