package repopostgre

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/bospay/bosledger/ledger"
)

const uniqueViolation = "23505"

// DataBase provides relational store access for read, write and delete of
// ledger entities.
type DataBase struct {
	inner *sql.DB
}

// Connect opens a new connection pool to the repository and returns a
// pointer to the DataBase.
func Connect(_ context.Context, conn, database string) (*DataBase, error) {
	db, err := sql.Open("postgres", fmt.Sprintf("%s/%s?sslmode=disable", conn, database))
	if err != nil {
		return nil, err
	}
	return &DataBase{inner: db}, nil
}

// Disconnect closes the connection pool.
func (db DataBase) Disconnect(_ context.Context) error {
	return db.inner.Close()
}

// Ping checks if the connection to the database is still alive.
func (db DataBase) Ping(ctx context.Context) error {
	return db.inner.PingContext(ctx)
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		transaction_hash TEXT NOT NULL,
		from_address TEXT NOT NULL,
		to_address TEXT NOT NULL,
		value NUMERIC NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		block_timestamp TIMESTAMPTZ NOT NULL,
		block_number BIGINT NOT NULL,
		account_id TEXT NOT NULL,
		product_id TEXT,
		product_name TEXT,
		product_description TEXT,
		product_price NUMERIC,
		product_quantity BIGINT,
		created_at TIMESTAMPTZ NOT NULL,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS transactions_hash_live_idx
		ON transactions(transaction_hash) WHERE NOT deleted`,
	`CREATE INDEX IF NOT EXISTS transactions_account_block_idx
		ON transactions(account_id, block_timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS balances (
		account_id TEXT PRIMARY KEY,
		balance NUMERIC NOT NULL DEFAULT 0,
		last_updated TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS balance_history (
		id BIGSERIAL PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES balances(account_id),
		change NUMERIC NOT NULL,
		reason TEXT,
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		price NUMERIC NOT NULL,
		category TEXT,
		stock BIGINT NOT NULL DEFAULT 0,
		image_url TEXT,
		account_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		id BIGSERIAL PRIMARY KEY,
		token TEXT NOT NULL UNIQUE,
		account_id TEXT NOT NULL,
		valid BOOLEAN NOT NULL,
		expiration_date BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS logs (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		level TEXT NOT NULL,
		msg TEXT NOT NULL
	)`,
}

// RunMigration creates all missing tables and indexes.
func (db DataBase) RunMigration(ctx context.Context) error {
	for _, stmt := range tables {
		if _, err := db.inner.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// remapError translates driver failures into the stable ledger error kinds.
func remapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ledger.ErrNotFound
	default:
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ledger.ErrConflict, err)
		}
		return fmt.Errorf("%w: %s", ledger.ErrStoreUnavailable, err)
	}
}
