package services

import (
	"context"
	"errors"

	"planets-be/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID primitive.ObjectID
	Email  string
	Role   models.GlobalRole
}

// IsAdmin reports the global admin capability. Only Gate and self-or-admin
// checks consult it.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanActAs reports whether the actor may read or manage userID's own records.
func (a Actor) CanActAs(userID primitive.ObjectID) bool {
	return a.UserID == userID || a.IsAdmin()
}

// Gate answers the two planet-scoped authorization questions.
type Gate struct {
	collaborators CollaboratorStore
}

func NewGate(collaborators CollaboratorStore) *Gate {
	return &Gate{collaborators: collaborators}
}

// Authorize succeeds for admins and for any member of the planet.
func (g *Gate) Authorize(ctx context.Context, actor Actor, planetID primitive.ObjectID, denial string) error {
	if actor.IsAdmin() {
		return nil
	}
	_, err := g.collaborators.Find(ctx, planetID, actor.UserID)
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.NewForbidden(denial)
	}
	return models.NewInternal(err)
}

// AuthorizeOwner succeeds for admins and for the planet's owner.
func (g *Gate) AuthorizeOwner(ctx context.Context, actor Actor, planetID primitive.ObjectID, denial string) error {
	if actor.IsAdmin() {
		return nil
	}
	link, err := g.collaborators.Find(ctx, planetID, actor.UserID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.NewForbidden(denial)
		}
		return models.NewInternal(err)
	}
	if link.Role != models.PlanetOwner {
		return models.NewForbidden(denial)
	}
	return nil
}

// IsMember reports whether userID holds any link to the planet.
func (g *Gate) IsMember(ctx context.Context, planetID, userID primitive.ObjectID) (bool, error) {
	_, err := g.collaborators.Find(ctx, planetID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// notFoundOr converts a missing-document error to NotFound and anything else to Internal.
func notFoundOr(err error, message string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.NewNotFound(message)
	}
	return models.NewInternal(err)
}

// conflictOr converts a duplicate-key write error to Conflict and anything else to Internal.
func conflictOr(err error, message string) error {
	if mongo.IsDuplicateKeyError(err) {
		return models.NewConflict(message)
	}
	return models.NewInternal(err)
}
