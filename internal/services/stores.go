package services

import (
	"context"

	"planets-be/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces are satisfied by the Mongo repositories. Lookups that find
// nothing return mongo.ErrNoDocuments.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByLogin(ctx context.Context, login string) ([]models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	UpdateRefreshToken(ctx context.Context, id primitive.ObjectID, refreshToken string) error
}

type PlanetStore interface {
	Create(ctx context.Context, planet *models.Planet) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Planet, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Planet, error)
	Update(ctx context.Context, planet *models.Planet) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CollaboratorStore interface {
	Create(ctx context.Context, link *models.Collaborator) error
	Find(ctx context.Context, planetID, userID primitive.ObjectID) (*models.Collaborator, error)
	FindOwner(ctx context.Context, planetID primitive.ObjectID) (*models.Collaborator, error)
	ListByPlanet(ctx context.Context, planetID primitive.ObjectID) ([]models.Collaborator, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, role models.PlanetRole) ([]models.Collaborator, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, role models.PlanetRole) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPlanet(ctx context.Context, planetID primitive.ObjectID) error
}

type ColumnStore interface {
	Create(ctx context.Context, column *models.Column) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Column, error)
	ListByPlanet(ctx context.Context, planetID primitive.ObjectID) ([]models.Column, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	// ListByColumn returns the column's tasks sorted by ascending order.
	ListByColumn(ctx context.Context, columnID primitive.ObjectID) ([]models.Task, error)
	ListByColumns(ctx context.Context, columnIDs []primitive.ObjectID) ([]models.Task, error)
	MaxOrder(ctx context.Context, columnID primitive.ObjectID) (int, error)
	// ApplyRanks writes column and order for each change, in slice order,
	// stopping at the first failure.
	ApplyRanks(ctx context.Context, changes []models.RankChange) error
	// UpdateDetails writes only the fields present in details and returns the
	// stored task.
	UpdateDetails(ctx context.Context, taskID primitive.ObjectID, details models.TaskDetails) (*models.Task, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByColumn(ctx context.Context, columnID primitive.ObjectID) error
}

type InviteStore interface {
	Create(ctx context.Context, invite *models.Invite) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Invite, error)
	Exists(ctx context.Context, planetID, userID primitive.ObjectID) (bool, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Invite, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPlanet(ctx context.Context, planetID primitive.ObjectID) error
}

type StatisticsStore interface {
	TasksByColumn(ctx context.Context, columnIDs []primitive.ObjectID) ([]models.ColumnTaskCount, error)
	TasksByPriority(ctx context.Context, columnIDs []primitive.ObjectID) ([]models.PriorityCount, error)
	CreatedTrend(ctx context.Context, columnIDs []primitive.ObjectID, days int) ([]models.TaskTrendPoint, error)
	AssignmentCounts(ctx context.Context, columnIDs []primitive.ObjectID) (total int, assigned int, err error)
}
