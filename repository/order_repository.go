package repository

import (
	"context"
	"time"

	"github.com/kevinleven52/Ac.Connect/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// OrderRepository defines data access for confirmed orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	Totals(ctx context.Context) (totalSales int64, totalRevenue float64, err error)
	DailySales(ctx context.Context, start, end time.Time) (map[string]models.DailySales, error)
}

// MongoOrderRepository implements OrderRepository on the orders collection.
// The collection carries a unique index on stripeSessionId, so a concurrent
// duplicate insert fails with a duplicate key error.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a new MongoOrderRepository.
func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &MongoOrderRepository{collection: db.Collection("orders")}
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	order.CreatedAt = time.Now().UTC()
	res, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

func (r *MongoOrderRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"stripeSessionId": sessionID}).Decode(&order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Totals aggregates order count and summed revenue over the whole
// collection. An empty collection yields zeros, not an error.
func (r *MongoOrderRepository) Totals(ctx context.Context) (int64, float64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalSales", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalRevenue", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		TotalSales   int64   `bson:"totalSales"`
		TotalRevenue float64 `bson:"totalRevenue"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].TotalSales, results[0].TotalRevenue, nil
}

// DailySales buckets orders by calendar day within [start, end], keyed by
// YYYY-MM-DD. Days without orders are simply absent; the service zero-fills.
func (r *MongoOrderRepository) DailySales(ctx context.Context, start, end time.Time) (map[string]models.DailySales, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "createdAt", Value: bson.D{
				{Key: "$gte", Value: start},
				{Key: "$lte", Value: end},
			}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$createdAt"},
			}}}},
			{Key: "sales", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Date    string  `bson:"_id"`
		Sales   int64   `bson:"sales"`
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	byDay := make(map[string]models.DailySales, len(rows))
	for _, row := range rows {
		byDay[row.Date] = models.DailySales{Date: row.Date, Sales: row.Sales, Revenue: row.Revenue}
	}
	return byDay, nil
}
