package repopostgre

// Tests in this package run against a live PostgreSQL instance described by
// ../.env (POSTGRES_CONN, POSTGRES_DB_NAME).

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bospay/bosledger/balance"
	"github.com/bospay/bosledger/ledger"
	"github.com/bospay/bosledger/transaction"
)

func connectTestDB(t *testing.T, ctx context.Context) *DataBase {
	t.Helper()
	godotenv.Load("../.env")
	conn := os.Getenv("POSTGRES_CONN")
	dbName := os.Getenv("POSTGRES_DB_NAME")
	if conn == "" || dbName == "" {
		t.Skip("postgres test environment not configured")
	}

	db, err := Connect(ctx, conn, dbName)
	assert.Nil(t, err)

	err = db.Ping(ctx)
	assert.Nil(t, err)

	err = db.RunMigration(ctx)
	assert.Nil(t, err)
	return db
}

func testTrx(hash, accountID string) transaction.Transaction {
	return transaction.Transaction{
		TransactionHash: hash,
		FromAddress:     "0xfrom",
		ToAddress:       "0xto",
		Value:           decimal.NewFromInt(10),
		Currency:        transaction.CurrencyUSDC,
		Status:          transaction.StatusPending,
		BlockTimestamp:  time.Now().UTC(),
		BlockNumber:     100,
		AccountID:       accountID,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestTransactionUniqueHash(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	db := connectTestDB(t, ctx)
	defer db.Disconnect(ctx)

	hash := fmt.Sprintf("0x%d", time.Now().UnixNano())
	trx := testTrx(hash, "acc_test")

	err := db.WriteTransaction(ctx, &trx)
	assert.Nil(t, err)
	assert.NotEmpty(t, trx.ID)

	dup := testTrx(hash, "acc_test")
	err = db.WriteTransaction(ctx, &dup)
	assert.ErrorIs(t, err, ledger.ErrConflict)

	got, err := db.ReadTransactionByHash(ctx, hash)
	assert.Nil(t, err)
	assert.Equal(t, trx.ID, got.ID)
	assert.True(t, got.Value.Equal(trx.Value))
}

func TestTransactionTombstone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	db := connectTestDB(t, ctx)
	defer db.Disconnect(ctx)

	trx := testTrx(fmt.Sprintf("0x%d", time.Now().UnixNano()), "acc_test")
	err := db.WriteTransaction(ctx, &trx)
	assert.Nil(t, err)

	err = db.TombstoneTransaction(ctx, trx.ID, time.Now())
	assert.Nil(t, err)

	_, err = db.ReadTransactionByID(ctx, trx.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	// The tombstone released the hash, a fresh write reclaims it.
	fresh := testTrx(trx.TransactionHash, "acc_test")
	err = db.WriteTransaction(ctx, &fresh)
	assert.Nil(t, err)
	assert.NotEqual(t, trx.ID, fresh.ID)

	got, err := db.ReadTransactionByHash(ctx, trx.TransactionHash)
	assert.Nil(t, err)
	assert.Equal(t, fresh.ID, got.ID)
}

func TestBalanceUpsertConcurrent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	db := connectTestDB(t, ctx)
	defer db.Disconnect(ctx)

	accountID := fmt.Sprintf("acc_%d", time.Now().UnixNano())

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.UpsertBalanceAdjustment(ctx, accountID, balance.HistoryEntry{
				Change:    decimal.NewFromInt(1),
				Timestamp: time.Now().UTC(),
			})
			assert.Nil(t, err)
		}()
	}
	wg.Wait()

	b, err := db.ReadBalanceByAccount(ctx, accountID)
	assert.Nil(t, err)
	assert.True(t, b.Balance.Equal(decimal.NewFromInt(workers)))
	assert.Len(t, b.History, workers)
	assert.True(t, b.Consistent())
}
