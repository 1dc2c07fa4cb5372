package repopostgre

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/bospay/bosledger/ledger"
	"github.com/bospay/bosledger/product"
)

// ReadProductByID reads a catalog record for the product linked variant of
// recording a transaction.
func (db DataBase) ReadProductByID(ctx context.Context, id string) (product.Product, error) {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return product.Product{}, ledger.ErrNotFound
	}
	var (
		p        product.Product
		pid      int64
		category sql.NullString
		imageURL sql.NullString
	)
	err = db.inner.QueryRowContext(ctx,
		`SELECT id, name, description, price, category, stock, image_url, account_id, created_at
		FROM products WHERE id = $1`, rowID).
		Scan(&pid, &p.Name, &p.Description, &p.Price, &category, &p.Stock, &imageURL, &p.AccountID, &p.CreatedAt)
	if err != nil {
		return product.Product{}, remapError(err)
	}
	p.ID = strconv.FormatInt(pid, 10)
	p.Category = category.String
	p.ImageURL = imageURL.String
	return p, nil
}

// WriteProduct inserts a catalog record. The catalog is managed by an
// external collaborator, this write exists for provisioning and tests.
func (db DataBase) WriteProduct(ctx context.Context, p *product.Product) error {
	var id int64
	err := db.inner.QueryRowContext(ctx,
		`INSERT INTO products(name, description, price, category, stock, image_url, account_id, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		p.Name, p.Description, p.Price, p.Category, p.Stock, p.ImageURL, p.AccountID, p.CreatedAt).
		Scan(&id)
	if err != nil {
		return remapError(err)
	}
	p.ID = strconv.FormatInt(id, 10)
	return nil
}
