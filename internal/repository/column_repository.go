package repository

import (
	"context"

	"planets-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ColumnRepository handles planet column persistence
type ColumnRepository struct {
	collection *mongo.Collection
}

func NewColumnRepository(db *mongo.Database) *ColumnRepository {
	r := &ColumnRepository{
		collection: db.Collection("planet_columns"),
	}

	// Ensure indexes
	ctx := context.Background()
	_, _ = r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "planetId", Value: 1}},
		Options: options.Index().SetName("idx_planet_id"),
	})

	return r
}

func (r *ColumnRepository) Create(ctx context.Context, column *models.Column) error {
	if column.ID.IsZero() {
		column.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, column)
	return err
}

func (r *ColumnRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Column, error) {
	var column models.Column
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&column); err != nil {
		return nil, err
	}
	return &column, nil
}

// ListByPlanet returns a planet's columns in creation order
func (r *ColumnRepository) ListByPlanet(ctx context.Context, planetID primitive.ObjectID) ([]models.Column, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"planetId": planetID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	columns := make([]models.Column, 0)
	if err = cursor.All(ctx, &columns); err != nil {
		return nil, err
	}
	return columns, nil
}

func (r *ColumnRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
