package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"bistro/internal/db"
	"bistro/internal/model"
)

// PaymentRepository is the payment ledger plus its aggregate queries.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) (primitive.ObjectID, error)
	ListByEmail(ctx context.Context, email string) ([]model.Payment, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Payment, error)
	EstimatedCount(ctx context.Context) (int64, error)
	// TotalRevenue sums amount over all payments, falling back to price on
	// legacy documents; zero when there are none.
	TotalRevenue(ctx context.Context) (model.Money, error)
	// CategoryBreakdown joins each menu item reference of every payment
	// against the current catalog and groups by category. References to
	// deleted items are dropped.
	CategoryBreakdown(ctx context.Context) ([]model.CategoryStat, error)
}

type paymentRepository struct {
	coll *mongo.Collection
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(database *mongo.Database) PaymentRepository {
	return &paymentRepository{coll: database.Collection(db.PaymentsCollection)}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) (primitive.ObjectID, error) {
	payment.ID = primitive.NilObjectID
	res, err := r.coll.InsertOne(ctx, payment)
	if err != nil {
		return primitive.NilObjectID, storeErr("insert payment", err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	payment.ID = id
	return id, nil
}

func (r *paymentRepository) ListByEmail(ctx context.Context, email string) ([]model.Payment, error) {
	cur, err := r.coll.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, storeErr("list payments", err)
	}
	payments := make([]model.Payment, 0)
	if err := cur.All(ctx, &payments); err != nil {
		return nil, storeErr("decode payments", err)
	}
	return payments, nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Payment, error) {
	var payment model.Payment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&payment); err != nil {
		return nil, storeErr("find payment", err)
	}
	return &payment, nil
}

func (r *paymentRepository) EstimatedCount(ctx context.Context) (int64, error) {
	n, err := r.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, storeErr("count payments", err)
	}
	return n, nil
}

func (r *paymentRepository) TotalRevenue(ctx context.Context) (model.Money, error) {
	cur, err := r.coll.Aggregate(ctx, revenuePipeline())
	if err != nil {
		return model.Money{}, storeErr("aggregate revenue", err)
	}

	var rows []struct {
		TotalRevenue model.Money `bson:"totalRevenue"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return model.Money{}, storeErr("decode revenue", err)
	}
	if len(rows) == 0 {
		return model.Money{}, nil
	}
	return rows[0].TotalRevenue, nil
}

func (r *paymentRepository) CategoryBreakdown(ctx context.Context) ([]model.CategoryStat, error) {
	cur, err := r.coll.Aggregate(ctx, categoryBreakdownPipeline())
	if err != nil {
		return nil, storeErr("aggregate order stats", err)
	}
	stats := make([]model.CategoryStat, 0)
	if err := cur.All(ctx, &stats); err != nil {
		return nil, storeErr("decode order stats", err)
	}
	return stats, nil
}

func revenuePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			// payments written by older clients carry the total as price
			{Key: "totalRevenue", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$ifNull", Value: bson.A{"$amount", "$price"}},
			}}}},
		}}},
	}
}

// categoryBreakdownPipeline flattens menuItemIds to one row per reference,
// inner-joins the menu, then groups by category. A menu item referenced
// twice in one payment contributes twice.
func categoryBreakdownPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$menuItemIds"}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: db.MenuCollection},
			{Key: "localField", Value: "menuItemIds"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "menuItems"},
		}}},
		{{Key: "$unwind", Value: "$menuItems"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$menuItems.category"},
			{Key: "quantity", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$menuItems.price"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "category", Value: "$_id"},
			{Key: "quantity", Value: 1},
			{Key: "revenue", Value: 1},
		}}},
	}
}
