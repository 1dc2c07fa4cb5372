package repomongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bospay/bosledger/balance"
)

type historyEntryDoc struct {
	Change    primitive.Decimal128 `bson:"change"`
	Reason    string               `bson:"reason,omitempty"`
	Timestamp time.Time            `bson:"timestamp"`
}

type balanceDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	AccountID   string               `bson:"account_id"`
	Balance     primitive.Decimal128 `bson:"balance"`
	LastUpdated time.Time            `bson:"last_updated"`
	History     []historyEntryDoc    `bson:"history"`
}

func decodeBalance(doc *balanceDoc) (balance.Balance, error) {
	total, err := fromDecimal128(doc.Balance)
	if err != nil {
		return balance.Balance{}, err
	}
	b := balance.Balance{
		AccountID:   doc.AccountID,
		Balance:     total,
		LastUpdated: doc.LastUpdated,
		History:     make([]balance.HistoryEntry, 0, len(doc.History)),
	}
	for _, h := range doc.History {
		change, err := fromDecimal128(h.Change)
		if err != nil {
			return balance.Balance{}, err
		}
		b.History = append(b.History, balance.HistoryEntry{
			Change:    change,
			Reason:    h.Reason,
			Timestamp: h.Timestamp,
		})
	}
	return b, nil
}

// ReadBalanceByAccount reads the balance document with its full history.
func (db DataBase) ReadBalanceByAccount(ctx context.Context, accountID string) (balance.Balance, error) {
	var doc balanceDoc
	err := db.inner.Collection(balancesCollection).
		FindOne(ctx, bson.M{"account_id": accountID}).
		Decode(&doc)
	if err != nil {
		return balance.Balance{}, remapError(err)
	}
	return decodeBalance(&doc)
}

// UpsertBalanceAdjustment increments the aggregate and appends the history
// entry in a single find-and-modify command, creating the document on the
// first adjustment. Server side Decimal128 arithmetic keeps the increment
// exact, concurrent adjustments of the same account serialize on the
// document, none is lost.
func (db DataBase) UpsertBalanceAdjustment(ctx context.Context, accountID string, entry balance.HistoryEntry) (balance.Balance, error) {
	change, err := toDecimal128(entry.Change)
	if err != nil {
		return balance.Balance{}, remapError(err)
	}
	update := bson.M{
		"$inc": bson.M{"balance": change},
		"$set": bson.M{"last_updated": entry.Timestamp},
		"$push": bson.M{"history": historyEntryDoc{
			Change:    change,
			Reason:    entry.Reason,
			Timestamp: entry.Timestamp,
		}},
		"$setOnInsert": bson.M{"account_id": accountID},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc balanceDoc
	err = db.inner.Collection(balancesCollection).
		FindOneAndUpdate(ctx, bson.M{"account_id": accountID}, update, opts).
		Decode(&doc)
	if err != nil {
		return balance.Balance{}, remapError(err)
	}
	return decodeBalance(&doc)
}
