package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"bistro/internal/db"
	"bistro/internal/model"
)

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	List(ctx context.Context) ([]model.Review, error)
	InsertMany(ctx context.Context, reviews []model.Review) (int, error)
}

type reviewRepository struct {
	coll *mongo.Collection
}

// NewReviewRepository creates a new review repository.
func NewReviewRepository(database *mongo.Database) ReviewRepository {
	return &reviewRepository{coll: database.Collection(db.ReviewsCollection)}
}

func (r *reviewRepository) List(ctx context.Context) ([]model.Review, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, storeErr("list reviews", err)
	}
	reviews := make([]model.Review, 0)
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, storeErr("decode reviews", err)
	}
	return reviews, nil
}

func (r *reviewRepository) InsertMany(ctx context.Context, reviews []model.Review) (int, error) {
	if len(reviews) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(reviews))
	for i := range reviews {
		docs[i] = reviews[i]
	}
	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, storeErr("insert reviews", err)
	}
	return len(res.InsertedIDs), nil
}
