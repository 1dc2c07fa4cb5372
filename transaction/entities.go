package transaction

import "github.com/shopspring/decimal"

// ProductDetails is a point-in-time snapshot of the purchased product taken
// when the transaction is recorded. Later edits of the live product record
// never alter this copy.
type ProductDetails struct {
	Name        string          `json:"name"        db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price"       db:"price"`
	Quantity    int64           `json:"quantity"    db:"quantity"`
}
