package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"bistro/internal/db"
	"bistro/internal/model"
)

// MenuRepository defines catalog persistence operations.
type MenuRepository interface {
	Create(ctx context.Context, item *model.MenuItem) (primitive.ObjectID, error)
	InsertMany(ctx context.Context, items []model.MenuItem) (int, error)
	List(ctx context.Context) ([]model.MenuItem, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.MenuItem, error)
	Update(ctx context.Context, id primitive.ObjectID, item *model.MenuItem) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	EstimatedCount(ctx context.Context) (int64, error)
}

type menuRepository struct {
	coll *mongo.Collection
}

// NewMenuRepository creates a new menu repository.
func NewMenuRepository(database *mongo.Database) MenuRepository {
	return &menuRepository{coll: database.Collection(db.MenuCollection)}
}

func (r *menuRepository) Create(ctx context.Context, item *model.MenuItem) (primitive.ObjectID, error) {
	item.ID = primitive.NilObjectID
	res, err := r.coll.InsertOne(ctx, item)
	if err != nil {
		return primitive.NilObjectID, storeErr("insert menu item", err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	item.ID = id
	return id, nil
}

func (r *menuRepository) InsertMany(ctx context.Context, items []model.MenuItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, storeErr("insert menu items", err)
	}
	return len(res.InsertedIDs), nil
}

func (r *menuRepository) List(ctx context.Context) ([]model.MenuItem, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, storeErr("list menu", err)
	}
	items := make([]model.MenuItem, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, storeErr("decode menu", err)
	}
	return items, nil
}

func (r *menuRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.MenuItem, error) {
	var item model.MenuItem
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, storeErr("find menu item", err)
	}
	return &item, nil
}

func (r *menuRepository) Update(ctx context.Context, id primitive.ObjectID, item *model.MenuItem) (int64, error) {
	set := bson.M{
		"name":   item.Name,
		"price":  item.Price,
		"recipe": item.Recipe,
		"image":  item.Image,
	}
	if item.Category != "" {
		set["category"] = item.Category
	}
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return 0, storeErr("update menu item", err)
	}
	return res.ModifiedCount, nil
}

func (r *menuRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, storeErr("delete menu item", err)
	}
	return res.DeletedCount, nil
}

func (r *menuRepository) EstimatedCount(ctx context.Context) (int64, error) {
	n, err := r.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, storeErr("count menu", err)
	}
	return n, nil
}
