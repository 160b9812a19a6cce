package repository

import (
	"context"

	"planets-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type InviteRepository struct {
	collection *mongo.Collection
}

func NewInviteRepository(db *mongo.Database) *InviteRepository {
	r := &InviteRepository{
		collection: db.Collection("planet_invites"),
	}

	// Ensure indexes. At most one pending invite per (planet, user).
	ctx := context.Background()
	idxView := r.collection.Indexes()
	_, _ = idxView.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "planetId", Value: 1}, {Key: "invitedUserId", Value: 1}},
		Options: options.Index().SetName("idx_planet_invited").SetUnique(true),
	})
	_, _ = idxView.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "invitedUserId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_invited_created"),
	})

	return r
}

func (r *InviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	if invite.ID.IsZero() {
		invite.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, invite)
	return err
}

func (r *InviteRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Invite, error) {
	var invite models.Invite
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&invite); err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *InviteRepository) Exists(ctx context.Context, planetID, userID primitive.ObjectID) (bool, error) {
	filter := bson.M{"planetId": planetID, "invitedUserId": userID}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser returns a user's pending invites, newest first
func (r *InviteRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Invite, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"invitedUserId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	invites := make([]models.Invite, 0)
	if err = cursor.All(ctx, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *InviteRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *InviteRepository) DeleteByPlanet(ctx context.Context, planetID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planetId": planetID})
	return err
}
