package repomongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bospay/bosledger/ledger"
	"github.com/bospay/bosledger/transaction"
)

type productDetailsDoc struct {
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Quantity    int64                `bson:"quantity"`
}

// transactionDoc is the stored shape of a transaction. Monetary fields are
// kept as Decimal128 so values stay exact inside the store.
type transactionDoc struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	TransactionHash string               `bson:"transaction_hash"`
	FromAddress     string               `bson:"from_address"`
	ToAddress       string               `bson:"to_address"`
	Value           primitive.Decimal128 `bson:"value"`
	Currency        string               `bson:"currency"`
	Status          string               `bson:"status"`
	BlockTimestamp  time.Time            `bson:"block_timestamp"`
	BlockNumber     int64                `bson:"block_number"`
	AccountID       string               `bson:"account_id"`
	ProductID       string               `bson:"product_id,omitempty"`
	ProductDetails  *productDetailsDoc   `bson:"product_details,omitempty"`
	CreatedAt       time.Time            `bson:"created_at"`
	Deleted         bool                 `bson:"deleted"`
	DeletedAt       time.Time            `bson:"deleted_at,omitempty"`
}

func encodeTransaction(trx *transaction.Transaction) (transactionDoc, error) {
	value, err := toDecimal128(trx.Value)
	if err != nil {
		return transactionDoc{}, err
	}
	doc := transactionDoc{
		TransactionHash: trx.TransactionHash,
		FromAddress:     trx.FromAddress,
		ToAddress:       trx.ToAddress,
		Value:           value,
		Currency:        string(trx.Currency),
		Status:          string(trx.Status),
		BlockTimestamp:  trx.BlockTimestamp,
		BlockNumber:     trx.BlockNumber,
		AccountID:       trx.AccountID,
		ProductID:       trx.ProductID,
		CreatedAt:       trx.CreatedAt,
	}
	if trx.ID != "" {
		id, err := primitive.ObjectIDFromHex(trx.ID)
		if err != nil {
			return transactionDoc{}, err
		}
		doc.ID = id
	}
	if trx.ProductDetails != nil {
		price, err := toDecimal128(trx.ProductDetails.Price)
		if err != nil {
			return transactionDoc{}, err
		}
		doc.ProductDetails = &productDetailsDoc{
			Name:        trx.ProductDetails.Name,
			Description: trx.ProductDetails.Description,
			Price:       price,
			Quantity:    trx.ProductDetails.Quantity,
		}
	}
	return doc, nil
}

func decodeTransaction(doc *transactionDoc) (transaction.Transaction, error) {
	value, err := fromDecimal128(doc.Value)
	if err != nil {
		return transaction.Transaction{}, err
	}
	trx := transaction.Transaction{
		ID:              doc.ID.Hex(),
		TransactionHash: doc.TransactionHash,
		FromAddress:     doc.FromAddress,
		ToAddress:       doc.ToAddress,
		Value:           value,
		Currency:        transaction.Currency(doc.Currency),
		Status:          transaction.Status(doc.Status),
		BlockTimestamp:  doc.BlockTimestamp,
		BlockNumber:     doc.BlockNumber,
		AccountID:       doc.AccountID,
		ProductID:       doc.ProductID,
		CreatedAt:       doc.CreatedAt,
	}
	if doc.ProductDetails != nil {
		price, err := fromDecimal128(doc.ProductDetails.Price)
		if err != nil {
			return transaction.Transaction{}, err
		}
		trx.ProductDetails = &transaction.ProductDetails{
			Name:        doc.ProductDetails.Name,
			Description: doc.ProductDetails.Description,
			Price:       price,
			Quantity:    doc.ProductDetails.Quantity,
		}
	}
	return trx, nil
}

// WriteTransaction inserts the transaction under the unique hash index over
// live documents. A concurrent duplicate loses with ledger.ErrConflict. The
// generated document id is written back to the given transaction.
func (db DataBase) WriteTransaction(ctx context.Context, trx *transaction.Transaction) error {
	doc, err := encodeTransaction(trx)
	if err != nil {
		return remapError(err)
	}
	doc.ID = primitive.NewObjectID()
	if _, err := db.inner.Collection(transactionsCollection).InsertOne(ctx, doc); err != nil {
		return remapError(err)
	}
	trx.ID = doc.ID.Hex()
	return nil
}

// ReadTransactionByID reads a single not tombstoned transaction by its id.
func (db DataBase) ReadTransactionByID(ctx context.Context, id string) (transaction.Transaction, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return transaction.Transaction{}, ledger.ErrNotFound
	}
	var doc transactionDoc
	err = db.inner.Collection(transactionsCollection).
		FindOne(ctx, bson.M{"_id": objID, "deleted": false}).
		Decode(&doc)
	if err != nil {
		return transaction.Transaction{}, remapError(err)
	}
	return decodeTransaction(&doc)
}

// ReadTransactionByHash reads a single not tombstoned transaction by its
// natural deduplication key.
func (db DataBase) ReadTransactionByHash(ctx context.Context, hash string) (transaction.Transaction, error) {
	var doc transactionDoc
	err := db.inner.Collection(transactionsCollection).
		FindOne(ctx, bson.M{"transaction_hash": hash, "deleted": false}).
		Decode(&doc)
	if err != nil {
		return transaction.Transaction{}, remapError(err)
	}
	return decodeTransaction(&doc)
}

// ReadTransactionsByAccount reads all not tombstoned transactions owned by
// the account, most recent block timestamp first.
func (db DataBase) ReadTransactionsByAccount(ctx context.Context, accountID string) ([]transaction.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "block_timestamp", Value: -1}})
	curs, err := db.inner.Collection(transactionsCollection).
		Find(ctx, bson.M{"account_id": accountID, "deleted": false}, opts)
	if err != nil {
		return nil, remapError(err)
	}
	var docs []transactionDoc
	if err := curs.All(ctx, &docs); err != nil {
		return nil, remapError(err)
	}
	trxs := make([]transaction.Transaction, 0, len(docs))
	for i := range docs {
		trx, err := decodeTransaction(&docs[i])
		if err != nil {
			return nil, err
		}
		trxs = append(trxs, trx)
	}
	return trxs, nil
}

// ReplaceTransaction replaces all stored fields of the transaction keeping
// its id.
func (db DataBase) ReplaceTransaction(ctx context.Context, trx *transaction.Transaction) error {
	doc, err := encodeTransaction(trx)
	if err != nil {
		return remapError(err)
	}
	res, err := db.inner.Collection(transactionsCollection).
		ReplaceOne(ctx, bson.M{"_id": doc.ID, "deleted": false}, doc)
	if err != nil {
		return remapError(err)
	}
	if res.MatchedCount == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// TombstoneTransaction flags the transaction as deleted. The bytes stay in
// the collection for audit, reads no longer return the record.
func (db DataBase) TombstoneTransaction(ctx context.Context, id string, when time.Time) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ledger.ErrNotFound
	}
	res, err := db.inner.Collection(transactionsCollection).
		UpdateOne(ctx, bson.M{"_id": objID, "deleted": false},
			bson.M{"$set": bson.M{"deleted": true, "deleted_at": when}})
	if err != nil {
		return remapError(err)
	}
	if res.MatchedCount == 0 {
		return ledger.ErrNotFound
	}
	return nil
}
