package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"planets-be/internal/models"
	"planets-be/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InviteService drives the pending -> accepted | declined invite lifecycle.
type InviteService struct {
	invites       InviteStore
	planets       PlanetStore
	users         UserStore
	collaborators CollaboratorStore
	gate          *Gate
	reservedEmail string
	now           func() time.Time
}

func NewInviteService(
	invites InviteStore,
	planets PlanetStore,
	users UserStore,
	collaborators CollaboratorStore,
	gate *Gate,
	reservedEmail string,
) *InviteService {
	return &InviteService{
		invites:       invites,
		planets:       planets,
		users:         users,
		collaborators: collaborators,
		gate:          gate,
		reservedEmail: strings.ToLower(reservedEmail),
		now:           time.Now,
	}
}

// Send invites the user registered under req.UserEmail to a planet.
func (s *InviteService) Send(ctx context.Context, actor Actor, planetID primitive.ObjectID, req models.SendInviteRequest) (*models.Invite, error) {
	email := strings.ToLower(strings.TrimSpace(req.UserEmail))
	if email == "" {
		return nil, models.NewInvalidInput("Invite must contain user email.")
	}
	if s.reservedEmail != "" && email == s.reservedEmail {
		return nil, models.NewInvalidInput(fmt.Sprintf("Cannot invite user with email %s to planet.", email))
	}

	planet, err := s.planets.FindByID(ctx, planetID)
	if err != nil {
		return nil, notFoundOr(err, "Cannot send invite for non-existent planet.")
	}
	if err := s.gate.AuthorizeOwner(ctx, actor, planetID, "Only the planet owner has permission to send invites for this planet."); err != nil {
		return nil, err
	}

	invited, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr(err, "Cannot send invite to non-existent user.")
	}
	member, err := s.gate.IsMember(ctx, planetID, invited.ID)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	if member {
		return nil, models.NewConflict("User is already a member of this planet.")
	}
	pending, err := s.invites.Exists(ctx, planetID, invited.ID)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	if pending {
		return nil, models.NewConflict("User has already been invited to this planet.")
	}

	message := utils.SanitizePtr(req.Message)
	if message != nil && *message == "" {
		message = nil
	}
	now := s.now()
	invite := &models.Invite{
		PlanetID:          planetID,
		PlanetName:        planet.Name,
		InvitedUserID:     invited.ID,
		InvitingUserEmail: actor.Email,
		Message:           message,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := invite.Validate(); err != nil {
		return nil, models.NewValidation(err)
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, conflictOr(err, "User has already been invited to this planet.")
	}
	return invite, nil
}

// ListForUser returns the pending invites addressed to userID.
func (s *InviteService) ListForUser(ctx context.Context, actor Actor, userID primitive.ObjectID) ([]models.Invite, error) {
	if !actor.CanActAs(userID) {
		return nil, models.NewForbidden("You do not have permission to access this user's invites.")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, "Cannot retrieve invites for non-existent user.")
	}
	invites, err := s.invites.ListByUser(ctx, userID)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	if invites == nil {
		invites = []models.Invite{}
	}
	return invites, nil
}

// Accept turns an invite into a collaborator link and deletes the invite.
func (s *InviteService) Accept(ctx context.Context, actor Actor, inviteID primitive.ObjectID) error {
	invite, err := s.resolve(ctx, actor, inviteID, "You do not have permission to accept this invite.")
	if err != nil {
		return err
	}

	now := s.now()
	link := &models.Collaborator{
		PlanetID:  invite.PlanetID,
		UserID:    invite.InvitedUserID,
		Role:      models.PlanetCollaborator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.collaborators.Create(ctx, link); err != nil {
		return conflictOr(err, "User is already a member of this planet.")
	}
	if err := s.invites.Delete(ctx, invite.ID); err != nil {
		return models.NewInternal(err)
	}
	return nil
}

// Decline deletes an invite without creating a link.
func (s *InviteService) Decline(ctx context.Context, actor Actor, inviteID primitive.ObjectID) error {
	invite, err := s.resolve(ctx, actor, inviteID, "You do not have permission to decline this invite.")
	if err != nil {
		return err
	}
	if err := s.invites.Delete(ctx, invite.ID); err != nil {
		return models.NewInternal(err)
	}
	return nil
}

// resolve loads an invite the actor may answer and checks its planet and user still exist.
func (s *InviteService) resolve(ctx context.Context, actor Actor, inviteID primitive.ObjectID, denial string) (*models.Invite, error) {
	invite, err := s.invites.FindByID(ctx, inviteID)
	if err != nil {
		return nil, notFoundOr(err, "Cannot answer non-existent invite.")
	}
	if !actor.CanActAs(invite.InvitedUserID) {
		return nil, models.NewForbidden(denial)
	}
	if _, err := s.planets.FindByID(ctx, invite.PlanetID); err != nil {
		return nil, notFoundOr(err, "Planet has been deleted.")
	}
	if _, err := s.users.FindByID(ctx, invite.InvitedUserID); err != nil {
		return nil, notFoundOr(err, "User has been deleted.")
	}
	return invite, nil
}
