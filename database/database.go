package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studentmart/logger"
)

var Client *mongo.Client
var Users *mongo.Collection
var Products *mongo.Collection
var Orders *mongo.Collection
var Messages *mongo.Collection
var PushSubs *mongo.Collection

func ConnectMongo(uri, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	Client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}

	// Ping MongoDB
	if err := Client.Ping(ctx, nil); err != nil {
		return err
	}

	db := Client.Database(dbName)
	Users = db.Collection("users")
	Products = db.Collection("products")
	Orders = db.Collection("orders")
	Messages = db.Collection("messages")
	PushSubs = db.Collection("push_subscriptions")

	logger.Log.Infow("connected to MongoDB", "database", dbName)
	return nil
}

func DisconnectMongo() error {
	if Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := Client.Disconnect(ctx); err != nil {
		return err
	}

	logger.Log.Info("disconnected from MongoDB")
	return nil
}
