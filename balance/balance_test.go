package balance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConsistentEmptyHistory(t *testing.T) {
	b := Balance{AccountID: "acc_1", Balance: decimal.Zero}
	assert.True(t, b.Consistent())
}

func TestConsistentSignedHistory(t *testing.T) {
	now := time.Now()
	b := Balance{
		AccountID: "acc_1",
		Balance:   decimal.NewFromInt(30),
		History: []HistoryEntry{
			{Change: decimal.NewFromInt(50), Reason: "deposit", Timestamp: now},
			{Change: decimal.NewFromInt(-20), Reason: "fee", Timestamp: now},
		},
	}
	assert.True(t, b.Consistent())

	b.Balance = decimal.NewFromInt(31)
	assert.False(t, b.Consistent())
}

func TestConsistentFractionalChanges(t *testing.T) {
	now := time.Now()
	b := Balance{
		AccountID: "acc_1",
		Balance:   decimal.RequireFromString("0.3"),
		History: []HistoryEntry{
			{Change: decimal.RequireFromString("0.1"), Timestamp: now},
			{Change: decimal.RequireFromString("0.2"), Timestamp: now},
		},
	}
	assert.True(t, b.Consistent())
}
