package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"studentmart/models"
)

// Directory is the identity lookup consumed by the message store. The users
// collection is owned by the account handlers; messaging only reads it.
type Directory interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Catalog is the product lookup used to enrich messages that reference a
// listing.
type Catalog interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

type UserDirectory struct {
	coll *mongo.Collection
}

func NewUserDirectory(coll *mongo.Collection) *UserDirectory {
	return &UserDirectory{coll: coll}
}

func (d *UserDirectory) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := d.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, upstream("find user", err)
	}
	return &user, nil
}

func (d *UserDirectory) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := d.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, upstream("count users", err)
	}
	return count > 0, nil
}

type ProductCatalog struct {
	coll *mongo.Collection
}

func NewProductCatalog(coll *mongo.Collection) *ProductCatalog {
	return &ProductCatalog{coll: coll}
}

func (c *ProductCatalog) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, upstream("find product", err)
	}
	return &product, nil
}
