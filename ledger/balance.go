package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bospay/bosledger/balance"
	"github.com/bospay/bosledger/logger"
)

// AdjustRequest carries a single signed balance adjustment.
// Change is required, reason is free text.
type AdjustRequest struct {
	Change *decimal.Decimal `json:"change"`
	Reason string           `json:"reason,omitempty"`
}

// Balances maintains per account running balances as append-only histories
// of signed adjustments.
type Balances struct {
	store BalanceStore
	pub   Publisher
	log   logger.Logger
	tele  HistogramProvider
}

// NewBalances creates the balance ledger over the given store.
func NewBalances(store BalanceStore, pub Publisher, log logger.Logger, tele HistogramProvider) *Balances {
	tele.CreateUpdateObservableHistogtram(adjustBalanceTelemetryHistogram, "Duration of a balance adjustment.")
	return &Balances{store: store, pub: pub, log: log, tele: tele}
}

// Read returns the current balance document with its full history.
// Accounts that were never adjusted have no balance document.
func (b *Balances) Read(ctx context.Context, accountID string) (balance.Balance, error) {
	return b.store.ReadBalanceByAccount(ctx, accountID)
}

// Adjust applies a signed change to the account balance and appends the
// matching history entry in one atomic store operation. The balance
// document is created lazily on the first adjustment. Concurrent
// adjustments of the same account serialize in the store, none is lost.
func (b *Balances) Adjust(ctx context.Context, accountID string, req AdjustRequest) (balance.Balance, error) {
	t := time.Now()
	defer b.tele.RecordHistogramTime(adjustBalanceTelemetryHistogram, time.Since(t))

	if req.Change == nil {
		return balance.Balance{}, fmt.Errorf("%w: missing change", ErrValidation)
	}

	entry := balance.HistoryEntry{
		Change:    *req.Change,
		Reason:    req.Reason,
		Timestamp: time.Now(),
	}
	updated, err := b.store.UpsertBalanceAdjustment(ctx, accountID, entry)
	if err != nil {
		return balance.Balance{}, err
	}

	if err := b.pub.PublishBalanceAdjusted(accountID, entry); err != nil {
		b.log.Error(fmt.Sprintf("publishing balance adjustment for account [ %s ] failed: %s", accountID, err))
	}

	return updated, nil
}
