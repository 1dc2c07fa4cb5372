package repomongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bospay/bosledger/ledger"
	"github.com/bospay/bosledger/product"
)

type productDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Category    string               `bson:"category,omitempty"`
	Stock       int64                `bson:"stock"`
	ImageURL    string               `bson:"image_url,omitempty"`
	AccountID   string               `bson:"account_id"`
	CreatedAt   time.Time            `bson:"created_at"`
}

// ReadProductByID reads a catalog record for the product linked variant of
// recording a transaction.
func (db DataBase) ReadProductByID(ctx context.Context, id string) (product.Product, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return product.Product{}, ledger.ErrNotFound
	}
	var doc productDoc
	err = db.inner.Collection(productsCollection).
		FindOne(ctx, bson.M{"_id": objID}).
		Decode(&doc)
	if err != nil {
		return product.Product{}, remapError(err)
	}
	price, err := fromDecimal128(doc.Price)
	if err != nil {
		return product.Product{}, err
	}
	return product.Product{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Description: doc.Description,
		Price:       price,
		Category:    doc.Category,
		Stock:       doc.Stock,
		ImageURL:    doc.ImageURL,
		AccountID:   doc.AccountID,
		CreatedAt:   doc.CreatedAt,
	}, nil
}

// WriteProduct inserts a catalog record. The catalog is managed by an
// external collaborator, this write exists for provisioning and tests.
func (db DataBase) WriteProduct(ctx context.Context, p *product.Product) error {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return remapError(err)
	}
	doc := productDoc{
		ID:          primitive.NewObjectID(),
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Category:    p.Category,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		AccountID:   p.AccountID,
		CreatedAt:   p.CreatedAt,
	}
	if _, err := db.inner.Collection(productsCollection).InsertOne(ctx, doc); err != nil {
		return remapError(err)
	}
	p.ID = doc.ID.Hex()
	return nil
}
