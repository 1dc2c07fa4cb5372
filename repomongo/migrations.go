package repomongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type migration struct {
	run  func(ctx context.Context, db *mongo.Database) error
	name string
}

// Migration describes a migration that was applied to the store.
type Migration struct {
	Name string `json:"name" bson:"name"`
}

var migrations = []migration{
	{
		name: "index_name_migrations",
		run: func(ctx context.Context, db *mongo.Database) error {
			_, err := db.Collection(migrationsCollection).
				Indexes().
				CreateOne(ctx, mongo.IndexModel{
					Keys: bson.M{
						"name": 1,
					},
					Options: options.Index().SetUnique(true),
				})
			return err
		},
	},
	{
		name: "index_hash_transactions",
		run: func(ctx context.Context, db *mongo.Database) error {
			// Uniqueness holds among live records only. A tombstoned
			// record releases its hash for a fresh submission.
			_, err := db.Collection(transactionsCollection).
				Indexes().
				CreateOne(ctx, mongo.IndexModel{
					Keys: bson.M{
						"transaction_hash": 1,
					},
					Options: options.Index().
						SetUnique(true).
						SetPartialFilterExpression(bson.M{"deleted": false}),
				})
			if err != nil {
				return err
			}
			_, err = db.Collection(transactionsCollection).
				Indexes().
				CreateOne(ctx, mongo.IndexModel{
					Keys: bson.D{
						{Key: "account_id", Value: 1},
						{Key: "block_timestamp", Value: -1},
					},
				})
			return err
		},
	},
	{
		name: "index_account_id_balances",
		run: func(ctx context.Context, db *mongo.Database) error {
			_, err := db.Collection(balancesCollection).
				Indexes().
				CreateOne(ctx, mongo.IndexModel{
					Keys: bson.M{
						"account_id": 1,
					},
					Options: options.Index().SetUnique(true),
				})
			return err
		},
	},
	{
		name: "index_account_id_products",
		run: func(ctx context.Context, db *mongo.Database) error {
			_, err := db.Collection(productsCollection).
				Indexes().
				CreateOne(ctx, mongo.IndexModel{
					Keys: bson.M{
						"account_id": 1,
					},
				})
			return err
		},
	},
	{
		name: "index_token_tokens",
		run: func(ctx context.Context, db *mongo.Database) error {
			_, err := db.Collection(tokensCollection).
				Indexes().
				CreateOne(ctx, mongo.IndexModel{
					Keys: bson.M{
						"token": 1,
					},
					Options: options.Index().SetUnique(true),
				})
			return err
		},
	},
}

// RunMigration applies all not yet applied migrations to the store.
// Applied migrations are tracked in their own collection so each one runs
// exactly once per database.
func (db DataBase) RunMigration(ctx context.Context) error {
	for _, m := range migrations {
		res := db.inner.Collection(migrationsCollection).FindOne(ctx, bson.M{"name": m.name})
		if res.Err() == nil {
			continue
		}
		if !errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return res.Err()
		}
		if err := m.run(ctx, &db.inner); err != nil {
			return err
		}
		if _, err := db.inner.Collection(migrationsCollection).InsertOne(ctx, Migration{Name: m.name}); err != nil {
			return err
		}
	}
	return nil
}
