package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared with the original deployment.
const (
	UsersCollection    = "users"
	MenuCollection     = "menu"
	ReviewsCollection  = "reviews"
	CartsCollection    = "carts"
	PaymentsCollection = "payments"
)

// Mongo holds the client and the application database.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewMongo connects, pings and returns the database handle.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Mongo{Client: client, DB: client.Database(database)}, nil
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// email index makes user upsert safe under concurrent sign-ins.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CartsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		PaymentsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		MenuCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
	}
	for coll, models := range specs {
		if _, err := m.DB.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// WithTransaction runs fn inside a multi-document transaction. The ctx
// passed to fn carries the session; repositories must use it for their
// operations to join the transaction. Requires a replica set.
func (m *Mongo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.Client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
