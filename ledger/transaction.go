package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bospay/bosledger/logger"
	"github.com/bospay/bosledger/transaction"
)

// RecordRequest carries caller supplied transaction fields. The account
// identity comes from the verified session, never from the request itself.
type RecordRequest struct {
	TransactionHash string               `json:"transaction_hash"`
	FromAddress     string               `json:"from_address"`
	ToAddress       string               `json:"to_address"`
	Value           decimal.Decimal      `json:"value"`
	Currency        transaction.Currency `json:"currency"`
	Status          transaction.Status   `json:"status"`
	BlockTimestamp  time.Time            `json:"block_timestamp"`
	BlockNumber     int64                `json:"block_number"`
	ProductID       string               `json:"product_id,omitempty"`
	Quantity        int64                `json:"quantity,omitempty"`
}

// Ledger records payment transactions idempotently and keeps them readable
// by their owning account only. It holds no state between calls, every
// operation reads authoritative state from the store before mutating.
type Ledger struct {
	store    TransactionStore
	products ProductReader
	pub      Publisher
	log      logger.Logger
	tele     HistogramProvider
}

// NewLedger creates the transaction ledger over the given store and catalog
// boundary.
func NewLedger(store TransactionStore, products ProductReader, pub Publisher, log logger.Logger, tele HistogramProvider) *Ledger {
	tele.CreateUpdateObservableHistogtram(recordTrxTelemetryHistogram, "Duration of recording a transaction.")
	tele.CreateUpdateObservableHistogtram(updateTrxTelemetryHistogram, "Duration of updating a transaction.")
	tele.CreateUpdateObservableHistogtram(deleteTrxTelemetryHistogram, "Duration of deleting a transaction.")
	return &Ledger{store: store, products: products, pub: pub, log: log, tele: tele}
}

// Record accepts a transaction fact and persists it exactly once per
// distinct transaction hash. A repeated submission with a known hash is a
// no-op returning the stored record, so callers may retry safely on network
// uncertainty. The returned flag tells whether a new record was created.
func (l *Ledger) Record(ctx context.Context, accountID string, req RecordRequest) (transaction.Transaction, bool, error) {
	t := time.Now()
	defer l.tele.RecordHistogramTime(recordTrxTelemetryHistogram, time.Since(t))

	trx, err := l.buildTransaction(ctx, accountID, req)
	if err != nil {
		return transaction.Transaction{}, false, err
	}

	existing, err := l.store.ReadTransactionByHash(ctx, trx.TransactionHash)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, ErrNotFound):
		return transaction.Transaction{}, false, err
	}

	trx.CreatedAt = time.Now()
	if err := l.store.WriteTransaction(ctx, &trx); err != nil {
		if errors.Is(err, ErrConflict) {
			// Lost the race against a concurrent identical submission,
			// the winner's record is the result.
			winner, errR := l.store.ReadTransactionByHash(ctx, trx.TransactionHash)
			if errR != nil {
				return transaction.Transaction{}, false, errR
			}
			return winner, false, nil
		}
		return transaction.Transaction{}, false, err
	}

	if err := l.pub.PublishTransactionRecorded(&trx); err != nil {
		l.log.Error(fmt.Sprintf("publishing recorded transaction [ %s ] failed: %s", trx.TransactionHash, err))
	}

	return trx, true, nil
}

// Read returns the transaction with the given id if it is owned by the
// requesting account.
func (l *Ledger) Read(ctx context.Context, id, accountID string) (transaction.Transaction, error) {
	trx, err := l.store.ReadTransactionByID(ctx, id)
	if err != nil {
		return transaction.Transaction{}, err
	}
	if trx.AccountID != accountID {
		return transaction.Transaction{}, fmt.Errorf("%w: transaction [ %s ] belongs to another account", ErrForbidden, id)
	}
	return trx, nil
}

// Update replaces the stored transaction with the re-supplied full field
// set. Only the owning account may update, and the status may only move
// along its transition graph.
func (l *Ledger) Update(ctx context.Context, id, accountID string, req RecordRequest) (transaction.Transaction, error) {
	t := time.Now()
	defer l.tele.RecordHistogramTime(updateTrxTelemetryHistogram, time.Since(t))

	stored, err := l.Read(ctx, id, accountID)
	if err != nil {
		return transaction.Transaction{}, err
	}

	next, err := l.buildTransaction(ctx, accountID, req)
	if err != nil {
		return transaction.Transaction{}, err
	}

	if !stored.Status.CanTransition(next.Status) {
		return transaction.Transaction{}, fmt.Errorf(
			"%w: %s: %s to %s", ErrValidation, transaction.ErrInvalidTransition, stored.Status, next.Status)
	}

	next.ID = stored.ID
	next.CreatedAt = stored.CreatedAt
	if err := l.store.ReplaceTransaction(ctx, &next); err != nil {
		return transaction.Transaction{}, err
	}
	return next, nil
}

// Delete removes the transaction from the owning account's view. The record
// is tombstoned, not destroyed, so the financial history stays auditable.
func (l *Ledger) Delete(ctx context.Context, id, accountID string) error {
	t := time.Now()
	defer l.tele.RecordHistogramTime(deleteTrxTelemetryHistogram, time.Since(t))

	if _, err := l.Read(ctx, id, accountID); err != nil {
		return err
	}
	return l.store.TombstoneTransaction(ctx, id, time.Now())
}

// List returns all transactions owned by the account, most recent chain
// activity first.
func (l *Ledger) List(ctx context.Context, accountID string) ([]transaction.Transaction, error) {
	return l.store.ReadTransactionsByAccount(ctx, accountID)
}

func (l *Ledger) buildTransaction(ctx context.Context, accountID string, req RecordRequest) (transaction.Transaction, error) {
	trx := transaction.Transaction{
		TransactionHash: req.TransactionHash,
		FromAddress:     req.FromAddress,
		ToAddress:       req.ToAddress,
		Value:           req.Value,
		Currency:        req.Currency,
		Status:          req.Status,
		BlockTimestamp:  req.BlockTimestamp,
		BlockNumber:     req.BlockNumber,
		AccountID:       accountID,
	}

	if req.ProductID != "" {
		if req.Quantity <= 0 {
			return transaction.Transaction{}, fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
		}
		p, err := l.products.ReadProductByID(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return transaction.Transaction{}, fmt.Errorf("%w: product [ %s ]", ErrNotFound, req.ProductID)
			}
			return transaction.Transaction{}, err
		}
		// Caller supplied value is not trusted for purchases, the ledger
		// derives it from the catalog price.
		trx.Value = p.Price.Mul(decimal.NewFromInt(req.Quantity))
		trx.ProductID = p.ID
		trx.ProductDetails = &transaction.ProductDetails{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Quantity:    req.Quantity,
		}
	}

	if err := trx.Validate(); err != nil {
		return transaction.Transaction{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return trx, nil
}
