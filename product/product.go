package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog record consulted read-only when a recorded
// transaction is linked to a purchase. The catalog itself is managed
// outside of this service.
type Product struct {
	ID          string          `json:"id"                  db:"id"`
	Name        string          `json:"name"                db:"name"`
	Description string          `json:"description"         db:"description"`
	Price       decimal.Decimal `json:"price"               db:"price"`
	Category    string          `json:"category,omitempty"  db:"category"`
	Stock       int64           `json:"stock"               db:"stock"`
	ImageURL    string          `json:"image_url,omitempty" db:"image_url"`
	AccountID   string          `json:"account_id"          db:"account_id"`
	CreatedAt   time.Time       `json:"created_at"          db:"created_at"`
}
