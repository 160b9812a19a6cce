package repository

import (
	"context"

	"planets-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PlanetRepository struct {
	collection *mongo.Collection
}

func NewPlanetRepository(db *mongo.Database) *PlanetRepository {
	return &PlanetRepository{
		collection: db.Collection("planets"),
	}
}

func (r *PlanetRepository) Create(ctx context.Context, planet *models.Planet) error {
	if planet.ID.IsZero() {
		planet.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, planet)
	return err
}

func (r *PlanetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Planet, error) {
	var planet models.Planet
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&planet); err != nil {
		return nil, err
	}
	return &planet, nil
}

func (r *PlanetRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Planet, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	planets := make([]models.Planet, 0)
	if err = cursor.All(ctx, &planets); err != nil {
		return nil, err
	}
	return planets, nil
}

// Update writes the editable fields. createdAt is never rewritten.
func (r *PlanetRepository) Update(ctx context.Context, planet *models.Planet) error {
	update := bson.M{
		"$set": bson.M{
			"name":        planet.Name,
			"description": planet.Description,
			"color":       planet.Color,
			"theme":       planet.Theme,
			"updatedAt":   planet.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": planet.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *PlanetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
