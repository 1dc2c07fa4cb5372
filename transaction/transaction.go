package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the chain-level currency a transaction was settled in.
type Currency string

const (
	CurrencyETH  Currency = "ETH"
	CurrencyUSDC Currency = "USDC"
	CurrencyDAI  Currency = "DAI"
)

// Status describes the external chain-confirmation state of a transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

var (
	ErrMissingField      = errors.New("missing required field")
	ErrUnknownCurrency   = errors.New("unknown currency")
	ErrUnknownStatus     = errors.New("unknown status")
	ErrValueNotPositive  = errors.New("value must be greater than zero")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// Transaction is an immutable record of an externally observed chain payment.
// Financial fields never change after the record is accepted, only the status
// may move along its transition graph by an authorized update.
type Transaction struct {
	ID              string          `json:"id"                        db:"id"`
	TransactionHash string          `json:"transaction_hash"          db:"transaction_hash"`
	FromAddress     string          `json:"from_address"              db:"from_address"`
	ToAddress       string          `json:"to_address"                db:"to_address"`
	Value           decimal.Decimal `json:"value"                     db:"value"`
	Currency        Currency        `json:"currency"                  db:"currency"`
	Status          Status          `json:"status"                    db:"status"`
	BlockTimestamp  time.Time       `json:"block_timestamp"           db:"block_timestamp"`
	BlockNumber     int64           `json:"block_number"              db:"block_number"`
	AccountID       string          `json:"account_id"                db:"account_id"`
	ProductID       string          `json:"product_id,omitempty"      db:"product_id"`
	ProductDetails  *ProductDetails `json:"product_details,omitempty" db:"-"`
	CreatedAt       time.Time       `json:"created_at"                db:"created_at"`
}

// IsValid checks the currency against the enumerated set.
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyETH, CurrencyUSDC, CurrencyDAI:
		return true
	}
	return false
}

// IsValid checks the status against the enumerated set.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is expected from s.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// CanTransition reports whether moving from s to next is allowed.
// Pending may move to confirmed or failed, both terminal. Re-writing the
// current value is allowed so that full-replace updates stay idempotent.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	return s == StatusPending && next.IsTerminal()
}

// Validate checks all required fields of the transaction.
// It does not inspect ID or CreatedAt, both are assigned by the ledger.
// The value must be strictly positive, also when it was derived from a
// catalog price, so a purchase of a zero priced item is rejected.
func (t *Transaction) Validate() error {
	switch {
	case t.TransactionHash == "":
		return fmt.Errorf("%w: transaction_hash", ErrMissingField)
	case t.FromAddress == "":
		return fmt.Errorf("%w: from_address", ErrMissingField)
	case t.ToAddress == "":
		return fmt.Errorf("%w: to_address", ErrMissingField)
	case t.AccountID == "":
		return fmt.Errorf("%w: account_id", ErrMissingField)
	case t.BlockTimestamp.IsZero():
		return fmt.Errorf("%w: block_timestamp", ErrMissingField)
	case t.BlockNumber <= 0:
		return fmt.Errorf("%w: block_number", ErrMissingField)
	}
	if !t.Currency.IsValid() {
		return fmt.Errorf("%w: %s", ErrUnknownCurrency, t.Currency)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %s", ErrUnknownStatus, t.Status)
	}
	if !t.Value.IsPositive() {
		return ErrValueNotPositive
	}
	return nil
}
