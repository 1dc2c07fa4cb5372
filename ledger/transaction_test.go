package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bospay/bosledger/product"
	"github.com/bospay/bosledger/transaction"
)

func newTestLedger(store *trxStoreMock, products map[string]product.Product) (*Ledger, *publisherMock) {
	pub := &publisherMock{}
	l := NewLedger(store, productReaderMock{products: products}, pub, discardLogger{}, noopTele{})
	return l, pub
}

func validRequest() RecordRequest {
	return RecordRequest{
		TransactionHash: "0xabc",
		FromAddress:     "0xfrom",
		ToAddress:       "0xto",
		Value:           decimal.NewFromInt(10),
		Currency:        transaction.CurrencyETH,
		Status:          transaction.StatusPending,
		BlockTimestamp:  time.Now(),
		BlockNumber:     100,
	}
}

func TestRecordTransaction(t *testing.T) {
	l, pub := newTestLedger(newTrxStoreMock(), nil)

	trx, created, err := l.Record(context.TODO(), "acc_a", validRequest())
	assert.Nil(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, trx.ID)
	assert.Equal(t, "acc_a", trx.AccountID)
	assert.False(t, trx.CreatedAt.IsZero())
	assert.Equal(t, []string{"0xabc"}, pub.recorded)
}

func TestRecordTransactionIdempotent(t *testing.T) {
	l, pub := newTestLedger(newTrxStoreMock(), nil)

	first, created, err := l.Record(context.TODO(), "acc_a", validRequest())
	assert.Nil(t, err)
	assert.True(t, created)

	second, created, err := l.Record(context.TODO(), "acc_a", validRequest())
	assert.Nil(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	trxs, err := l.List(context.TODO(), "acc_a")
	assert.Nil(t, err)
	assert.Len(t, trxs, 1)
	assert.Len(t, pub.recorded, 1)
}

func TestRecordTransactionConcurrentDuplicates(t *testing.T) {
	l, _ := newTestLedger(newTrxStoreMock(), nil)

	const workers = 50
	var wg sync.WaitGroup
	ids := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			trx, _, err := l.Record(context.TODO(), "acc_a", validRequest())
			assert.Nil(t, err)
			ids <- trx.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1)

	trxs, err := l.List(context.TODO(), "acc_a")
	assert.Nil(t, err)
	assert.Len(t, trxs, 1)
}

func TestRecordTransactionValidation(t *testing.T) {
	l, _ := newTestLedger(newTrxStoreMock(), nil)

	req := validRequest()
	req.TransactionHash = ""
	_, _, err := l.Record(context.TODO(), "acc_a", req)
	assert.ErrorIs(t, err, ErrValidation)

	req = validRequest()
	req.Currency = transaction.Currency("BTC")
	_, _, err = l.Record(context.TODO(), "acc_a", req)
	assert.ErrorIs(t, err, ErrValidation)

	req = validRequest()
	req.Value = decimal.Zero
	_, _, err = l.Record(context.TODO(), "acc_a", req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordTransactionProductLinked(t *testing.T) {
	products := map[string]product.Product{
		"prd_1": {
			ID:        "prd_1",
			Name:      "Widget",
			Price:     decimal.NewFromInt(25),
			AccountID: "acc_a",
		},
	}
	l, _ := newTestLedger(newTrxStoreMock(), products)

	req := validRequest()
	req.ProductID = "prd_1"
	req.Quantity = 4
	req.Value = decimal.NewFromInt(999) // not trusted in purchase mode

	trx, created, err := l.Record(context.TODO(), "acc_a", req)
	assert.Nil(t, err)
	assert.True(t, created)
	assert.True(t, trx.Value.Equal(decimal.NewFromInt(100)))
	assert.NotNil(t, trx.ProductDetails)
	assert.Equal(t, "Widget", trx.ProductDetails.Name)
	assert.Equal(t, int64(4), trx.ProductDetails.Quantity)
	assert.True(t, trx.ProductDetails.Price.Equal(decimal.NewFromInt(25)))
}

func TestRecordTransactionProductZeroPriced(t *testing.T) {
	products := map[string]product.Product{
		"prd_free": {
			ID:        "prd_free",
			Name:      "Giveaway",
			Price:     decimal.Zero,
			AccountID: "acc_a",
		},
	}
	l, _ := newTestLedger(newTrxStoreMock(), products)

	req := validRequest()
	req.ProductID = "prd_free"
	req.Quantity = 1
	_, _, err := l.Record(context.TODO(), "acc_a", req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordTransactionProductMissing(t *testing.T) {
	l, _ := newTestLedger(newTrxStoreMock(), nil)

	req := validRequest()
	req.ProductID = "prd_missing"
	req.Quantity = 1
	_, _, err := l.Record(context.TODO(), "acc_a", req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordTransactionProductBadQuantity(t *testing.T) {
	l, _ := newTestLedger(newTrxStoreMock(), nil)

	req := validRequest()
	req.ProductID = "prd_1"
	req.Quantity = 0
	_, _, err := l.Record(context.TODO(), "acc_a", req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReadOwnershipIsolation(t *testing.T) {
	l, _ := newTestLedger(newTrxStoreMock(), nil)

	trx, _, err := l.Record(context.TODO(), "acc_a", validRequest())
	assert.Nil(t, err)

	_, err = l.Read(context.TODO(), trx.ID, "acc_b")
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := l.Read(context.TODO(), trx.ID, "acc_a")
	assert.Nil(t, err)
	assert.Equal(t, trx.ID, got.ID)
}

func TestReadNotFound(t *testing.T) {
	l, _ := newTestLedger(newTrxStoreMock(), nil)
	_, err := l.Read(context.TODO(), "trx_404", "acc_a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTransaction(t *testing.T) {
	l, _ := newTestLedger(newTrxStoreMock(), nil)

	trx, _, err := l.Record(context.TODO(), "acc_a", validRequest())
	assert.Nil(t, err)

	req := validRequest()
	req.Status = transaction.StatusConfirmed
	updated, err := l.Update(context.TODO(), trx.ID, "acc_a", req)
	assert.Nil(t, err)
	assert.Equal(t, transaction.StatusConfirmed, updated.Status)
	assert.Equal(t, trx.ID, updated.ID)
	assert.Equal(t, trx.CreatedAt, updated.CreatedAt)
}

func TestUpdateTransactionForbidden(t *testing.T) {
	l, _ := newTestLedger(newTrxStoreMock(), nil)

	trx, _, err := l.Record(context.TODO(), "acc_a", validRequest())
	assert.Nil(t, err)

	req := validRequest()
	req.Status = transaction.StatusConfirmed
	_, err = l.Update(context.TODO(), trx.ID, "acc_b", req)
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := l.Read(context.TODO(), trx.ID, "acc_a")
	assert.Nil(t, err)
	assert.Equal(t, transaction.StatusPending, stored.Status)
}

func TestUpdateTransactionTerminalStatus(t *testing.T) {
	l, _ := newTestLedger(newTrxStoreMock(), nil)

	trx, _, err := l.Record(context.TODO(), "acc_a", validRequest())
	assert.Nil(t, err)

	req := validRequest()
	req.Status = transaction.StatusConfirmed
	_, err = l.Update(context.TODO(), trx.ID, "acc_a", req)
	assert.Nil(t, err)

	req.Status = transaction.StatusPending
	_, err = l.Update(context.TODO(), trx.ID, "acc_a", req)
	assert.ErrorIs(t, err, ErrValidation)

	req.Status = transaction.StatusFailed
	_, err = l.Update(context.TODO(), trx.ID, "acc_a", req)
	assert.ErrorIs(t, err, ErrValidation)

	// Re-writing the terminal status is an idempotent full replace.
	req.Status = transaction.StatusConfirmed
	_, err = l.Update(context.TODO(), trx.ID, "acc_a", req)
	assert.Nil(t, err)
}

func TestDeleteTransaction(t *testing.T) {
	l, _ := newTestLedger(newTrxStoreMock(), nil)

	trx, _, err := l.Record(context.TODO(), "acc_a", validRequest())
	assert.Nil(t, err)

	err = l.Delete(context.TODO(), trx.ID, "acc_b")
	assert.ErrorIs(t, err, ErrForbidden)

	err = l.Delete(context.TODO(), trx.ID, "acc_a")
	assert.Nil(t, err)

	_, err = l.Read(context.TODO(), trx.ID, "acc_a")
	assert.ErrorIs(t, err, ErrNotFound)

	trxs, err := l.List(context.TODO(), "acc_a")
	assert.Nil(t, err)
	assert.Empty(t, trxs)
}

func TestRecordTransactionAfterDelete(t *testing.T) {
	l, pub := newTestLedger(newTrxStoreMock(), nil)

	first, created, err := l.Record(context.TODO(), "acc_a", validRequest())
	assert.Nil(t, err)
	assert.True(t, created)

	err = l.Delete(context.TODO(), first.ID, "acc_a")
	assert.Nil(t, err)

	// The tombstone no longer claims the hash, a fresh submission with the
	// same hash creates a new record.
	second, created, err := l.Record(context.TODO(), "acc_a", validRequest())
	assert.Nil(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)

	trxs, err := l.List(context.TODO(), "acc_a")
	assert.Nil(t, err)
	assert.Len(t, trxs, 1)
	assert.Equal(t, second.ID, trxs[0].ID)
	assert.Len(t, pub.recorded, 2)
}

func TestListTransactionsNewestFirst(t *testing.T) {
	l, _ := newTestLedger(newTrxStoreMock(), nil)

	base := time.Now()
	for i, hash := range []string{"0xt1", "0xt2", "0xt3"} {
		req := validRequest()
		req.TransactionHash = hash
		req.BlockTimestamp = base.Add(time.Duration(i) * time.Hour)
		_, _, err := l.Record(context.TODO(), "acc_a", req)
		assert.Nil(t, err)
	}

	trxs, err := l.List(context.TODO(), "acc_a")
	assert.Nil(t, err)
	assert.Len(t, trxs, 3)
	assert.Equal(t, "0xt3", trxs[0].TransactionHash)
	assert.Equal(t, "0xt2", trxs[1].TransactionHash)
	assert.Equal(t, "0xt1", trxs[2].TransactionHash)
}

func TestListTransactionsScopedToAccount(t *testing.T) {
	l, _ := newTestLedger(newTrxStoreMock(), nil)

	_, _, err := l.Record(context.TODO(), "acc_a", validRequest())
	assert.Nil(t, err)

	req := validRequest()
	req.TransactionHash = "0xdef"
	_, _, err = l.Record(context.TODO(), "acc_b", req)
	assert.Nil(t, err)

	trxs, err := l.List(context.TODO(), "acc_a")
	assert.Nil(t, err)
	assert.Len(t, trxs, 1)
	assert.Equal(t, "0xabc", trxs[0].TransactionHash)
}
