package services

import (
	"context"
	"fmt"
	"time"

	"planets-be/internal/logger"
	"planets-be/internal/models"
	"planets-be/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanetService struct {
	planets       PlanetStore
	collaborators CollaboratorStore
	columns       ColumnStore
	invites       InviteStore
	users         UserStore
	gate          *Gate
	ordered       *OrderedTasks
	now           func() time.Time
}

func NewPlanetService(
	planets PlanetStore,
	collaborators CollaboratorStore,
	columns ColumnStore,
	invites InviteStore,
	users UserStore,
	gate *Gate,
	ordered *OrderedTasks,
) *PlanetService {
	return &PlanetService{
		planets:       planets,
		collaborators: collaborators,
		columns:       columns,
		invites:       invites,
		users:         users,
		gate:          gate,
		ordered:       ordered,
		now:           time.Now,
	}
}

// Get returns a planet and its members, owner first.
func (s *PlanetService) Get(ctx context.Context, actor Actor, planetID primitive.ObjectID) (*models.PlanetDetail, error) {
	planet, err := s.planets.FindByID(ctx, planetID)
	if err != nil {
		return nil, notFoundOr(err, "Cannot retrieve non-existent planet.")
	}
	if err := s.gate.Authorize(ctx, actor, planetID, "You do not have permission to access this planet."); err != nil {
		return nil, err
	}

	links, err := s.collaborators.ListByPlanet(ctx, planetID)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	userIDs := make([]primitive.ObjectID, len(links))
	for i, l := range links {
		userIDs[i] = l.UserID
	}
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	detail := &models.PlanetDetail{Planet: planet, Collaborators: make([]models.PublicUser, 0, len(links))}
	for _, l := range links {
		if l.UserID == actor.UserID {
			detail.Role = l.Role
		}
		u, ok := byID[l.UserID]
		if !ok {
			logger.FromContext(ctx).WithFields(logger.Fields{
				"planet_id": planetID.Hex(),
				"user_id":   l.UserID.Hex(),
			}).Warn("Collaborator link references a missing user")
			continue
		}
		member := models.PublicUser{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			PfpLink:   u.PfpLink,
			Role:      l.Role,
		}
		if l.Role == models.PlanetOwner {
			detail.Collaborators = append([]models.PublicUser{member}, detail.Collaborators...)
		} else {
			detail.Collaborators = append(detail.Collaborators, member)
		}
	}
	return detail, nil
}

// Create stores a planet and makes the requested user its owner.
func (s *PlanetService) Create(ctx context.Context, actor Actor, req models.CreatePlanetRequest) (*models.Planet, error) {
	ownerID, err := primitive.ObjectIDFromHex(req.OwnerID)
	if err != nil {
		return nil, models.NewInvalidInput("Invalid ownerId.")
	}
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, notFoundOr(err, "User (owner) not found.")
	}
	if !actor.CanActAs(ownerID) {
		return nil, models.NewForbidden("You do not have permission to create a planet on behalf of this user.")
	}

	now := s.now()
	planet := &models.Planet{
		Name:        utils.SanitizeText(req.Name),
		Description: utils.SanitizeText(req.Description),
		Color:       models.DefaultPlanetColor,
		Theme:       models.DefaultTheme(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Color != "" {
		planet.Color = req.Color
	}
	if req.Theme != nil {
		planet.Theme = req.Theme
	}
	if err := planet.Validate(); err != nil {
		return nil, models.NewValidation(err)
	}
	if err := s.planets.Create(ctx, planet); err != nil {
		return nil, models.NewInternal(err)
	}

	owner := &models.Collaborator{
		PlanetID:  planet.ID,
		UserID:    ownerID,
		Role:      models.PlanetOwner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.collaborators.Create(ctx, owner); err != nil {
		if delErr := s.planets.Delete(ctx, planet.ID); delErr != nil {
			logger.FromContext(ctx).WithError(delErr).WithField("planet_id", planet.ID.Hex()).
				Error("Failed to remove planet after owner link creation failed")
		}
		return nil, models.NewInternal(fmt.Errorf("create owner link: %w", err))
	}
	return planet, nil
}

// Update edits a planet's name, description, color and theme.
func (s *PlanetService) Update(ctx context.Context, actor Actor, planetID primitive.ObjectID, req models.UpdatePlanetRequest) (*models.Planet, error) {
	planet, err := s.planets.FindByID(ctx, planetID)
	if err != nil {
		return nil, notFoundOr(err, "Cannot edit non-existent planet.")
	}
	if err := s.gate.AuthorizeOwner(ctx, actor, planetID, "You do not have permission to edit this planet."); err != nil {
		return nil, err
	}

	if req.Name != nil {
		planet.Name = utils.SanitizeText(*req.Name)
	}
	if req.Description != nil {
		planet.Description = utils.SanitizeText(*req.Description)
	}
	if req.Color != nil {
		planet.Color = *req.Color
	}
	if req.Theme != nil {
		planet.Theme = req.Theme
	}
	if err := planet.Validate(); err != nil {
		return nil, models.NewValidation(err)
	}
	planet.UpdatedAt = s.now()
	if err := s.planets.Update(ctx, planet); err != nil {
		return nil, notFoundOr(err, "Cannot edit non-existent planet.")
	}
	return planet, nil
}

// Delete removes a planet with its columns, tasks, members and pending invites.
func (s *PlanetService) Delete(ctx context.Context, actor Actor, planetID primitive.ObjectID) error {
	if _, err := s.planets.FindByID(ctx, planetID); err != nil {
		return notFoundOr(err, "Cannot delete non-existent planet.")
	}
	if err := s.gate.AuthorizeOwner(ctx, actor, planetID, "Only the planet owner can delete the planet."); err != nil {
		return err
	}

	columns, err := s.columns.ListByPlanet(ctx, planetID)
	if err != nil {
		return models.NewInternal(err)
	}
	for _, c := range columns {
		if err := s.ordered.DropColumn(ctx, c.ID); err != nil {
			return err
		}
	}
	if err := s.invites.DeleteByPlanet(ctx, planetID); err != nil {
		return models.NewInternal(err)
	}
	if err := s.collaborators.DeleteByPlanet(ctx, planetID); err != nil {
		return models.NewInternal(err)
	}
	if err := s.planets.Delete(ctx, planetID); err != nil {
		return models.NewInternal(err)
	}
	return nil
}

// Promote makes userID the planet's owner and demotes the previous owner.
func (s *PlanetService) Promote(ctx context.Context, actor Actor, planetID, userID primitive.ObjectID) error {
	if _, err := s.planets.FindByID(ctx, planetID); err != nil {
		return notFoundOr(err, "Planet not found.")
	}
	if err := s.gate.AuthorizeOwner(ctx, actor, planetID, "You do not have permission to promote users in this planet."); err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return notFoundOr(err, "User not found.")
	}
	target, err := s.collaborators.Find(ctx, planetID, userID)
	if err != nil {
		return notFoundOr(err, "User is not a member of this planet.")
	}
	if target.Role == models.PlanetOwner {
		return models.NewConflict("User is already the owner of this planet.")
	}

	current, err := s.collaborators.FindOwner(ctx, planetID)
	if err != nil {
		return notFoundOr(err, "Planet has no owner.")
	}
	if err := s.collaborators.UpdateRole(ctx, target.ID, models.PlanetOwner); err != nil {
		return models.NewInternal(err)
	}
	if err := s.collaborators.UpdateRole(ctx, current.ID, models.PlanetCollaborator); err != nil {
		if undoErr := s.collaborators.UpdateRole(ctx, target.ID, models.PlanetCollaborator); undoErr != nil {
			logger.FromContext(ctx).WithError(undoErr).WithField("planet_id", planetID.Hex()).
				Error("Failed to revert promotion after demotion failed")
		}
		return models.NewInternal(fmt.Errorf("demote previous owner: %w", err))
	}
	return nil
}

// RemoveUser deletes a member's link. The owner cannot be removed.
func (s *PlanetService) RemoveUser(ctx context.Context, actor Actor, planetID, userID primitive.ObjectID) error {
	if _, err := s.planets.FindByID(ctx, planetID); err != nil {
		return notFoundOr(err, "Planet not found.")
	}
	if err := s.gate.AuthorizeOwner(ctx, actor, planetID, "You do not have permission to remove users from this planet."); err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return notFoundOr(err, "User not found.")
	}
	link, err := s.collaborators.Find(ctx, planetID, userID)
	if err != nil {
		return notFoundOr(err, "User is not a member of this planet.")
	}
	if link.Role == models.PlanetOwner {
		return models.NewConflict("The planet owner cannot be removed. Promote another member first.")
	}
	if err := s.collaborators.Delete(ctx, link.ID); err != nil {
		return models.NewInternal(err)
	}
	return nil
}

// ListForUser groups the planets of userID by the user's role in each.
func (s *PlanetService) ListForUser(ctx context.Context, actor Actor, userID primitive.ObjectID) (*models.UserPlanets, error) {
	if !actor.CanActAs(userID) {
		return nil, models.NewForbidden("You do not have permission to view this user's planets.")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, "User not found.")
	}

	owned, err := s.planetsWithRole(ctx, userID, models.PlanetOwner)
	if err != nil {
		return nil, err
	}
	collaborated, err := s.planetsWithRole(ctx, userID, models.PlanetCollaborator)
	if err != nil {
		return nil, err
	}
	return &models.UserPlanets{Owned: owned, Collaborated: collaborated}, nil
}

func (s *PlanetService) planetsWithRole(ctx context.Context, userID primitive.ObjectID, role models.PlanetRole) ([]models.Planet, error) {
	links, err := s.collaborators.ListByUser(ctx, userID, role)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	if len(links) == 0 {
		return []models.Planet{}, nil
	}
	ids := make([]primitive.ObjectID, len(links))
	for i, l := range links {
		ids[i] = l.PlanetID
	}
	planets, err := s.planets.FindByIDs(ctx, ids)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	return planets, nil
}
