package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"bistro/internal/db"
	"bistro/internal/model"
)

// CartRepository is the cart store.
type CartRepository interface {
	Create(ctx context.Context, line *model.CartLine) (primitive.ObjectID, error)
	ListByEmail(ctx context.Context, email string) ([]model.CartLine, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	// DeleteMany removes every line whose id is in ids. A non-empty owner
	// further restricts the delete to lines belonging to that email.
	// Zero matches is not an error.
	DeleteMany(ctx context.Context, ids []primitive.ObjectID, owner string) (int64, error)
}

type cartRepository struct {
	coll *mongo.Collection
}

// NewCartRepository creates a new cart repository.
func NewCartRepository(database *mongo.Database) CartRepository {
	return &cartRepository{coll: database.Collection(db.CartsCollection)}
}

func (r *cartRepository) Create(ctx context.Context, line *model.CartLine) (primitive.ObjectID, error) {
	line.ID = primitive.NilObjectID
	res, err := r.coll.InsertOne(ctx, line)
	if err != nil {
		return primitive.NilObjectID, storeErr("insert cart line", err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	line.ID = id
	return id, nil
}

func (r *cartRepository) ListByEmail(ctx context.Context, email string) ([]model.CartLine, error) {
	cur, err := r.coll.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, storeErr("list cart", err)
	}
	lines := make([]model.CartLine, 0)
	if err := cur.All(ctx, &lines); err != nil {
		return nil, storeErr("decode cart", err)
	}
	return lines, nil
}

func (r *cartRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, storeErr("delete cart line", err)
	}
	return res.DeletedCount, nil
}

func (r *cartRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID, owner string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}}
	if owner != "" {
		filter["email"] = owner
	}
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, storeErr("retire cart lines", err)
	}
	return res.DeletedCount, nil
}
