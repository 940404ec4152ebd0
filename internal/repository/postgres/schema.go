package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied on startup; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id         UUID PRIMARY KEY,
		email      TEXT NOT NULL,
		name       TEXT NOT NULL,
		mobile     TEXT NOT NULL,
		address    TEXT NOT NULL,
		zipcode    TEXT NOT NULL,
		ip_address TEXT NOT NULL,
		orders     JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS customers_email_key ON customers (lower(email))`,
	`CREATE TABLE IF NOT EXISTS products (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price       TEXT NOT NULL,
		image       TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS services (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL,
		price       TEXT NOT NULL,
		images      JSONB NOT NULL DEFAULT '[]'::jsonb,
		offers      JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id           UUID PRIMARY KEY,
		product_id   TEXT NOT NULL DEFAULT '',
		service_id   TEXT NOT NULL DEFAULT '',
		name         TEXT NOT NULL,
		email        TEXT NOT NULL,
		phone        TEXT NOT NULL,
		address      TEXT NOT NULL,
		zipcode      TEXT NOT NULL,
		total_amount DOUBLE PRECISION NOT NULL CHECK (total_amount >= 0),
		order_status TEXT NOT NULL DEFAULT 'Pending',
		order_date   TIMESTAMPTZ NOT NULL,
		order_type   TEXT NOT NULL
	)`,
}

// Migrate creates the tables when they do not exist yet
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
