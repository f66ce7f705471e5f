package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bistro/internal/db"
	"bistro/internal/model"
)

// UserRepository is the identity store.
type UserRepository interface {
	// Upsert inserts user if no record has its email. It returns the stored
	// record and whether it was created; an existing record is returned unchanged.
	Upsert(ctx context.Context, user *model.User) (*model.User, bool, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role string) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	EstimatedCount(ctx context.Context) (int64, error)
}

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository builds a Mongo-backed repository.
func NewUserRepository(database *mongo.Database) UserRepository {
	return &userRepository{coll: database.Collection(db.UsersCollection)}
}

func (r *userRepository) Upsert(ctx context.Context, user *model.User) (*model.User, bool, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	id := primitive.NewObjectID()
	onInsert := bson.M{
		"_id":       id,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	}
	if user.PhotoURL != "" {
		onInsert["photoURL"] = user.PhotoURL
	}

	// ReturnDocument Before yields no document exactly when this call inserted.
	var existing model.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"email": user.Email},
		bson.M{"$setOnInsert": onInsert},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before),
	).Decode(&existing)
	switch {
	case err == nil:
		return &existing, false, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		user.ID = id
		return user, true, nil
	case mongo.IsDuplicateKeyError(err):
		// lost a concurrent insert race on the unique email index
		found, err := r.FindByEmail(ctx, user.Email)
		if err != nil {
			return nil, false, err
		}
		return found, false, nil
	default:
		return nil, false, storeErr("upsert user", err)
	}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, storeErr("find user", err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, storeErr("list users", err)
	}
	users := make([]model.User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, storeErr("decode users", err)
	}
	return users, nil
}

func (r *userRepository) SetRole(ctx context.Context, id primitive.ObjectID, role string) (int64, error) {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return 0, storeErr("set role", err)
	}
	return res.ModifiedCount, nil
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, storeErr("delete user", err)
	}
	return res.DeletedCount, nil
}

func (r *userRepository) EstimatedCount(ctx context.Context) (int64, error) {
	n, err := r.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, storeErr("count users", err)
	}
	return n, nil
}
