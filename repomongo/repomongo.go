package repomongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/bospay/bosledger/ledger"
)

const (
	migrationsCollection   = "migrations"
	transactionsCollection = "transactions"
	balancesCollection     = "balances"
	productsCollection     = "products"
	tokensCollection       = "tokens"
	logsCollection         = "logs"
)

// DataBase provides document store access for read, write and delete of
// ledger entities.
type DataBase struct {
	inner mongo.Database
}

// Connect creates a new connection to the document store and returns a
// pointer to the DataBase.
func Connect(ctx context.Context, conn, database string) (*DataBase, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(conn))
	if err != nil {
		return nil, err
	}

	ctxx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	if err := cli.Ping(ctxx, readpref.Primary()); err != nil {
		return nil, err
	}

	return &DataBase{*cli.Database(database)}, nil
}

// Disconnect disconnects from the document store.
func (db DataBase) Disconnect(ctx context.Context) error {
	return db.inner.Client().Disconnect(ctx)
}

// Ping checks if the connection to the document store is still alive.
func (db DataBase) Ping(ctx context.Context) error {
	return db.inner.Client().Ping(ctx, readpref.Primary())
}

// remapError translates driver failures into the stable ledger error kinds.
func remapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ledger.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %s", ledger.ErrConflict, err)
	default:
		return fmt.Errorf("%w: %s", ledger.ErrStoreUnavailable, err)
	}
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}
