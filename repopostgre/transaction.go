package repopostgre

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bospay/bosledger/ledger"
	"github.com/bospay/bosledger/transaction"
)

const trxColumns = `id, transaction_hash, from_address, to_address, value, currency, status,
	block_timestamp, block_number, account_id, product_id,
	product_name, product_description, product_price, product_quantity, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (transaction.Transaction, error) {
	var (
		trx       transaction.Transaction
		id        int64
		productID sql.NullString
		prodName  sql.NullString
		prodDesc  sql.NullString
		prodPrice decimal.NullDecimal
		prodQty   sql.NullInt64
	)
	err := row.Scan(
		&id, &trx.TransactionHash, &trx.FromAddress, &trx.ToAddress, &trx.Value,
		&trx.Currency, &trx.Status, &trx.BlockTimestamp, &trx.BlockNumber,
		&trx.AccountID, &productID, &prodName, &prodDesc, &prodPrice, &prodQty,
		&trx.CreatedAt)
	if err != nil {
		return transaction.Transaction{}, err
	}
	trx.ID = strconv.FormatInt(id, 10)
	if productID.Valid {
		trx.ProductID = productID.String
		trx.ProductDetails = &transaction.ProductDetails{
			Name:        prodName.String,
			Description: prodDesc.String,
			Price:       prodPrice.Decimal,
			Quantity:    prodQty.Int64,
		}
	}
	return trx, nil
}

func productColumns(trx *transaction.Transaction) (productID, name, description any, price, quantity any) {
	if trx.ProductDetails == nil {
		return nil, nil, nil, nil, nil
	}
	return trx.ProductID, trx.ProductDetails.Name, trx.ProductDetails.Description,
		trx.ProductDetails.Price, trx.ProductDetails.Quantity
}

// WriteTransaction inserts the transaction under the unique hash index over
// live rows. A concurrent duplicate loses with ledger.ErrConflict. The
// generated row id is written back to the given transaction.
func (db DataBase) WriteTransaction(ctx context.Context, trx *transaction.Transaction) error {
	productID, name, description, price, quantity := productColumns(trx)
	var id int64
	err := db.inner.QueryRowContext(ctx,
		`INSERT INTO transactions(
			transaction_hash, from_address, to_address, value, currency, status,
			block_timestamp, block_number, account_id, product_id,
			product_name, product_description, product_price, product_quantity, created_at
		) VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		trx.TransactionHash, trx.FromAddress, trx.ToAddress, trx.Value,
		trx.Currency, trx.Status, trx.BlockTimestamp, trx.BlockNumber,
		trx.AccountID, productID, name, description, price, quantity,
		trx.CreatedAt).Scan(&id)
	if err != nil {
		return remapError(err)
	}
	trx.ID = strconv.FormatInt(id, 10)
	return nil
}

// ReadTransactionByID reads a single not tombstoned transaction by its id.
func (db DataBase) ReadTransactionByID(ctx context.Context, id string) (transaction.Transaction, error) {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return transaction.Transaction{}, ledger.ErrNotFound
	}
	trx, err := scanTransaction(db.inner.QueryRowContext(ctx,
		`SELECT `+trxColumns+` FROM transactions WHERE id = $1 AND deleted = FALSE`, rowID))
	if err != nil {
		return transaction.Transaction{}, remapError(err)
	}
	return trx, nil
}

// ReadTransactionByHash reads a single not tombstoned transaction by its
// natural deduplication key.
func (db DataBase) ReadTransactionByHash(ctx context.Context, hash string) (transaction.Transaction, error) {
	trx, err := scanTransaction(db.inner.QueryRowContext(ctx,
		`SELECT `+trxColumns+` FROM transactions WHERE transaction_hash = $1 AND deleted = FALSE`, hash))
	if err != nil {
		return transaction.Transaction{}, remapError(err)
	}
	return trx, nil
}

// ReadTransactionsByAccount reads all not tombstoned transactions owned by
// the account, most recent block timestamp first.
func (db DataBase) ReadTransactionsByAccount(ctx context.Context, accountID string) ([]transaction.Transaction, error) {
	rows, err := db.inner.QueryContext(ctx,
		`SELECT `+trxColumns+` FROM transactions
		WHERE account_id = $1 AND deleted = FALSE
		ORDER BY block_timestamp DESC`, accountID)
	if err != nil {
		return nil, remapError(err)
	}
	defer rows.Close()

	trxs := make([]transaction.Transaction, 0)
	for rows.Next() {
		trx, err := scanTransaction(rows)
		if err != nil {
			return nil, remapError(err)
		}
		trxs = append(trxs, trx)
	}
	if err := rows.Err(); err != nil {
		return nil, remapError(err)
	}
	return trxs, nil
}

// ReplaceTransaction replaces all stored fields of the transaction keeping
// its row id.
func (db DataBase) ReplaceTransaction(ctx context.Context, trx *transaction.Transaction) error {
	rowID, err := strconv.ParseInt(trx.ID, 10, 64)
	if err != nil {
		return ledger.ErrNotFound
	}
	productID, name, description, price, quantity := productColumns(trx)
	res, err := db.inner.ExecContext(ctx,
		`UPDATE transactions SET
			transaction_hash = $1, from_address = $2, to_address = $3, value = $4,
			currency = $5, status = $6, block_timestamp = $7, block_number = $8,
			product_id = $9, product_name = $10, product_description = $11,
			product_price = $12, product_quantity = $13
		WHERE id = $14 AND deleted = FALSE`,
		trx.TransactionHash, trx.FromAddress, trx.ToAddress, trx.Value,
		trx.Currency, trx.Status, trx.BlockTimestamp, trx.BlockNumber,
		productID, name, description, price, quantity, rowID)
	if err != nil {
		return remapError(err)
	}
	return requireRow(res)
}

// TombstoneTransaction flags the transaction as deleted. The row stays in
// the table for audit, reads no longer return the record.
func (db DataBase) TombstoneTransaction(ctx context.Context, id string, when time.Time) error {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ledger.ErrNotFound
	}
	res, err := db.inner.ExecContext(ctx,
		`UPDATE transactions SET deleted = TRUE, deleted_at = $1 WHERE id = $2 AND deleted = FALSE`,
		when, rowID)
	if err != nil {
		return remapError(err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	count, err := res.RowsAffected()
	if err != nil {
		return remapError(err)
	}
	if count == 0 {
		return ledger.ErrNotFound
	}
	return nil
}
