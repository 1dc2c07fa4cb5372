package repomongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bospay/bosledger/token"
)

// ReadToken reads a token from the store. The caller decides about validity
// and expiration.
func (db DataBase) ReadToken(ctx context.Context, tkn string) (token.Token, error) {
	var t token.Token
	if err := db.inner.Collection(tokensCollection).FindOne(ctx, bson.M{"token": tkn}).Decode(&t); err != nil {
		return token.Token{}, remapError(err)
	}
	return t, nil
}

// WriteToken writes a unique account bound token to the store.
func (db DataBase) WriteToken(ctx context.Context, t *token.Token) error {
	t.ID = primitive.NewObjectID()
	if _, err := db.inner.Collection(tokensCollection).InsertOne(ctx, t); err != nil {
		return remapError(err)
	}
	return nil
}

// InvalidateToken invalidates the token.
func (db DataBase) InvalidateToken(ctx context.Context, tkn string) error {
	err := db.inner.Collection(tokensCollection).
		FindOneAndUpdate(ctx, bson.M{"token": tkn}, bson.M{"$set": bson.M{"valid": false}}).Err()
	return remapError(err)
}
