package repopostgre

import (
	"context"
	"database/sql"

	"github.com/bospay/bosledger/balance"
)

// ReadBalanceByAccount reads the balance row with its full ordered history.
func (db DataBase) ReadBalanceByAccount(ctx context.Context, accountID string) (balance.Balance, error) {
	var b balance.Balance
	err := db.inner.QueryRowContext(ctx,
		`SELECT account_id, balance, last_updated FROM balances WHERE account_id = $1`,
		accountID).Scan(&b.AccountID, &b.Balance, &b.LastUpdated)
	if err != nil {
		return balance.Balance{}, remapError(err)
	}

	history, err := db.readHistory(ctx, db.inner, accountID)
	if err != nil {
		return balance.Balance{}, err
	}
	b.History = history
	return b, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (db DataBase) readHistory(ctx context.Context, q querier, accountID string) ([]balance.HistoryEntry, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT change, reason, timestamp FROM balance_history WHERE account_id = $1 ORDER BY id`,
		accountID)
	if err != nil {
		return nil, remapError(err)
	}
	defer rows.Close()

	history := make([]balance.HistoryEntry, 0)
	for rows.Next() {
		var (
			entry  balance.HistoryEntry
			reason sql.NullString
		)
		if err := rows.Scan(&entry.Change, &reason, &entry.Timestamp); err != nil {
			return nil, remapError(err)
		}
		entry.Reason = reason.String
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, remapError(err)
	}
	return history, nil
}

// UpsertBalanceAdjustment increments the aggregate and appends the history
// entry inside one SQL transaction, creating the row on the first
// adjustment. The row lock taken by the upsert serializes concurrent
// adjustments of the same account, none is lost.
func (db DataBase) UpsertBalanceAdjustment(ctx context.Context, accountID string, entry balance.HistoryEntry) (balance.Balance, error) {
	tx, err := db.inner.BeginTx(ctx, nil)
	if err != nil {
		return balance.Balance{}, remapError(err)
	}
	defer tx.Rollback()

	var b balance.Balance
	err = tx.QueryRowContext(ctx,
		`INSERT INTO balances(account_id, balance, last_updated)
		VALUES($1, $2, $3)
		ON CONFLICT(account_id) DO UPDATE
			SET balance = balances.balance + EXCLUDED.balance, last_updated = EXCLUDED.last_updated
		RETURNING account_id, balance, last_updated`,
		accountID, entry.Change, entry.Timestamp).Scan(&b.AccountID, &b.Balance, &b.LastUpdated)
	if err != nil {
		return balance.Balance{}, remapError(err)
	}

	var reason any
	if entry.Reason != "" {
		reason = entry.Reason
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO balance_history(account_id, change, reason, timestamp) VALUES($1, $2, $3, $4)`,
		accountID, entry.Change, reason, entry.Timestamp)
	if err != nil {
		return balance.Balance{}, remapError(err)
	}

	history, err := db.readHistory(ctx, tx, accountID)
	if err != nil {
		return balance.Balance{}, err
	}
	b.History = history

	if err := tx.Commit(); err != nil {
		return balance.Balance{}, remapError(err)
	}
	return b, nil
}
