package balance

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryEntry is a single signed adjustment of an account balance.
// Entries are append only, none is ever mutated or removed.
type HistoryEntry struct {
	Change    decimal.Decimal `json:"change"           db:"change"`
	Reason    string          `json:"reason,omitempty" db:"reason"`
	Timestamp time.Time       `json:"timestamp"        db:"timestamp"`
}

// Balance holds the current aggregate for an account together with the
// ordered history of adjustments it was derived from.
type Balance struct {
	AccountID   string          `json:"account_id"   db:"account_id"`
	Balance     decimal.Decimal `json:"balance"      db:"balance"`
	LastUpdated time.Time       `json:"last_updated" db:"last_updated"`
	History     []HistoryEntry  `json:"history"      db:"-"`
}

// Consistent reports whether the aggregate equals the sum of all history
// changes over a zero initial state.
func (b *Balance) Consistent() bool {
	sum := decimal.Zero
	for _, h := range b.History {
		sum = sum.Add(h.Change)
	}
	return b.Balance.Equal(sum)
}
