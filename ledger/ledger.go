package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/bospay/bosledger/balance"
	"github.com/bospay/bosledger/product"
	"github.com/bospay/bosledger/transaction"
)

// Stable error kinds surfaced to callers. Store adapters translate driver
// failures into these so a caller can tell "fix your input" from "not yours"
// from "retry later" with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Telemetry histogram names observed by both ledgers.
const (
	recordTrxTelemetryHistogram     = "record_trx_request_duration"
	updateTrxTelemetryHistogram     = "update_trx_request_duration"
	deleteTrxTelemetryHistogram     = "delete_trx_request_duration"
	adjustBalanceTelemetryHistogram = "adjust_balance_request_duration"
)

// TransactionStore abstracts transaction persistence. WriteTransaction runs
// under a unique constraint on the transaction hash and reports a duplicate
// with ErrConflict. Reads never return tombstoned records.
type TransactionStore interface {
	WriteTransaction(ctx context.Context, trx *transaction.Transaction) error
	ReadTransactionByID(ctx context.Context, id string) (transaction.Transaction, error)
	ReadTransactionByHash(ctx context.Context, hash string) (transaction.Transaction, error)
	ReadTransactionsByAccount(ctx context.Context, accountID string) ([]transaction.Transaction, error)
	ReplaceTransaction(ctx context.Context, trx *transaction.Transaction) error
	TombstoneTransaction(ctx context.Context, id string, when time.Time) error
}

// BalanceStore abstracts balance persistence. UpsertBalanceAdjustment must
// apply the increment and the history append as a single atomic operation
// per account document, creating the document on first adjustment.
type BalanceStore interface {
	ReadBalanceByAccount(ctx context.Context, accountID string) (balance.Balance, error)
	UpsertBalanceAdjustment(ctx context.Context, accountID string, entry balance.HistoryEntry) (balance.Balance, error)
}

// ProductReader is the read-only catalog boundary consulted when a recorded
// transaction is linked to a purchase.
type ProductReader interface {
	ReadProductByID(ctx context.Context, id string) (product.Product, error)
}

// HistogramProvider records operation latency histograms.
type HistogramProvider interface {
	CreateUpdateObservableHistogtram(name, description string)
	RecordHistogramTime(name string, t time.Duration) bool
}

// Publisher pushes ledger events to the pub/sub queue. Publishing is best
// effort, a failed publish never fails the committed operation.
type Publisher interface {
	PublishTransactionRecorded(trx *transaction.Transaction) error
	PublishBalanceAdjusted(accountID string, entry balance.HistoryEntry) error
}

// NoopPublisher drops all events. Used when no pub/sub queue is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishTransactionRecorded(_ *transaction.Transaction) error { return nil }

func (NoopPublisher) PublishBalanceAdjusted(_ string, _ balance.HistoryEntry) error { return nil }
