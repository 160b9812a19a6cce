package repository

import (
	"context"
	"time"

	"planets-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollaboratorRepository stores planet membership links
type CollaboratorRepository struct {
	collection *mongo.Collection
}

func NewCollaboratorRepository(db *mongo.Database) *CollaboratorRepository {
	r := &CollaboratorRepository{
		collection: db.Collection("planet_collaborators"),
	}

	// Ensure indexes
	ctx := context.Background()
	idxView := r.collection.Indexes()
	_, _ = idxView.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "planetId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetName("idx_planet_user").SetUnique(true),
	})
	_, _ = idxView.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "role", Value: 1}},
		Options: options.Index().SetName("idx_user_role"),
	})

	return r
}

func (r *CollaboratorRepository) Create(ctx context.Context, link *models.Collaborator) error {
	if link.ID.IsZero() {
		link.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, link)
	return err
}

func (r *CollaboratorRepository) Find(ctx context.Context, planetID, userID primitive.ObjectID) (*models.Collaborator, error) {
	return r.findOne(ctx, bson.M{"planetId": planetID, "userId": userID})
}

func (r *CollaboratorRepository) FindOwner(ctx context.Context, planetID primitive.ObjectID) (*models.Collaborator, error) {
	return r.findOne(ctx, bson.M{"planetId": planetID, "role": models.PlanetOwner})
}

func (r *CollaboratorRepository) findOne(ctx context.Context, filter bson.M) (*models.Collaborator, error) {
	var link models.Collaborator
	if err := r.collection.FindOne(ctx, filter).Decode(&link); err != nil {
		return nil, err
	}
	return &link, nil
}

// ListByPlanet returns every link of a planet, oldest first
func (r *CollaboratorRepository) ListByPlanet(ctx context.Context, planetID primitive.ObjectID) ([]models.Collaborator, error) {
	return r.list(ctx, bson.M{"planetId": planetID})
}

func (r *CollaboratorRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, role models.PlanetRole) ([]models.Collaborator, error) {
	return r.list(ctx, bson.M{"userId": userID, "role": role})
}

func (r *CollaboratorRepository) list(ctx context.Context, filter bson.M) ([]models.Collaborator, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	links := make([]models.Collaborator, 0)
	if err = cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *CollaboratorRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role models.PlanetRole) error {
	update := bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *CollaboratorRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *CollaboratorRepository) DeleteByPlanet(ctx context.Context, planetID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planetId": planetID})
	return err
}
