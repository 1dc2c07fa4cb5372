package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bospay/bosledger/balance"
	"github.com/bospay/bosledger/product"
	"github.com/bospay/bosledger/transaction"
)

type discardLogger struct{}

func (discardLogger) Debug(_ string) {}
func (discardLogger) Info(_ string)  {}
func (discardLogger) Warn(_ string)  {}
func (discardLogger) Error(_ string) {}
func (discardLogger) Fatal(_ string) {}

type noopTele struct{}

func (noopTele) CreateUpdateObservableHistogtram(_, _ string) {}

func (noopTele) RecordHistogramTime(_ string, _ time.Duration) bool { return true }

// trxStoreMock keeps transactions in memory under the same constraints the
// real adapters enforce: unique hash among live records, tombstones excluded
// from reads.
type trxStoreMock struct {
	mux    sync.Mutex
	nextID int
	byID   map[string]transaction.Transaction
	byHash map[string]string
	gone   map[string]bool
}

func newTrxStoreMock() *trxStoreMock {
	return &trxStoreMock{
		byID:   make(map[string]transaction.Transaction),
		byHash: make(map[string]string),
		gone:   make(map[string]bool),
	}
}

func (m *trxStoreMock) WriteTransaction(_ context.Context, trx *transaction.Transaction) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	if id, ok := m.byHash[trx.TransactionHash]; ok && !m.gone[id] {
		return fmt.Errorf("%w: duplicated transaction hash", ErrConflict)
	}
	m.nextID++
	trx.ID = fmt.Sprintf("trx_%d", m.nextID)
	m.byID[trx.ID] = *trx
	m.byHash[trx.TransactionHash] = trx.ID
	return nil
}

func (m *trxStoreMock) ReadTransactionByID(_ context.Context, id string) (transaction.Transaction, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	trx, ok := m.byID[id]
	if !ok || m.gone[id] {
		return transaction.Transaction{}, fmt.Errorf("%w: transaction", ErrNotFound)
	}
	return trx, nil
}

func (m *trxStoreMock) ReadTransactionByHash(_ context.Context, hash string) (transaction.Transaction, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	id, ok := m.byHash[hash]
	if !ok || m.gone[id] {
		return transaction.Transaction{}, fmt.Errorf("%w: transaction", ErrNotFound)
	}
	return m.byID[id], nil
}

func (m *trxStoreMock) ReadTransactionsByAccount(_ context.Context, accountID string) ([]transaction.Transaction, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	var trxs []transaction.Transaction
	for id, trx := range m.byID {
		if trx.AccountID == accountID && !m.gone[id] {
			trxs = append(trxs, trx)
		}
	}
	sort.Slice(trxs, func(i, j int) bool { return trxs[i].BlockTimestamp.After(trxs[j].BlockTimestamp) })
	return trxs, nil
}

func (m *trxStoreMock) ReplaceTransaction(_ context.Context, trx *transaction.Transaction) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	old, ok := m.byID[trx.ID]
	if !ok || m.gone[trx.ID] {
		return fmt.Errorf("%w: transaction", ErrNotFound)
	}
	delete(m.byHash, old.TransactionHash)
	m.byID[trx.ID] = *trx
	m.byHash[trx.TransactionHash] = trx.ID
	return nil
}

func (m *trxStoreMock) TombstoneTransaction(_ context.Context, id string, _ time.Time) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	if _, ok := m.byID[id]; !ok || m.gone[id] {
		return fmt.Errorf("%w: transaction", ErrNotFound)
	}
	m.gone[id] = true
	return nil
}

// balanceStoreMock applies each adjustment under a single lock, matching
// the per document atomicity the real adapters provide.
type balanceStoreMock struct {
	mux      sync.Mutex
	balances map[string]balance.Balance
}

func newBalanceStoreMock() *balanceStoreMock {
	return &balanceStoreMock{balances: make(map[string]balance.Balance)}
}

func (m *balanceStoreMock) ReadBalanceByAccount(_ context.Context, accountID string) (balance.Balance, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	b, ok := m.balances[accountID]
	if !ok {
		return balance.Balance{}, fmt.Errorf("%w: balance", ErrNotFound)
	}
	return b, nil
}

func (m *balanceStoreMock) UpsertBalanceAdjustment(_ context.Context, accountID string, entry balance.HistoryEntry) (balance.Balance, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	b, ok := m.balances[accountID]
	if !ok {
		b = balance.Balance{AccountID: accountID, Balance: decimal.Zero}
	}
	b.Balance = b.Balance.Add(entry.Change)
	b.LastUpdated = entry.Timestamp
	b.History = append(b.History, entry)
	m.balances[accountID] = b
	return b, nil
}

type productReaderMock struct {
	products map[string]product.Product
}

func (m productReaderMock) ReadProductByID(_ context.Context, id string) (product.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return product.Product{}, fmt.Errorf("%w: product", ErrNotFound)
	}
	return p, nil
}

type publisherMock struct {
	mux      sync.Mutex
	recorded []string
	adjusted []string
}

func (m *publisherMock) PublishTransactionRecorded(trx *transaction.Transaction) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.recorded = append(m.recorded, trx.TransactionHash)
	return nil
}

func (m *publisherMock) PublishBalanceAdjusted(accountID string, _ balance.HistoryEntry) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.adjusted = append(m.adjusted, accountID)
	return nil
}
