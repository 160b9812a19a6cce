package handlers

import (
	"context"
	"net/http"

	"planets-be/internal/models"
	"planets-be/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanetOperations interface {
	Get(ctx context.Context, actor services.Actor, planetID primitive.ObjectID) (*models.PlanetDetail, error)
	Create(ctx context.Context, actor services.Actor, req models.CreatePlanetRequest) (*models.Planet, error)
	Update(ctx context.Context, actor services.Actor, planetID primitive.ObjectID, req models.UpdatePlanetRequest) (*models.Planet, error)
	Delete(ctx context.Context, actor services.Actor, planetID primitive.ObjectID) error
	Promote(ctx context.Context, actor services.Actor, planetID, userID primitive.ObjectID) error
	RemoveUser(ctx context.Context, actor services.Actor, planetID, userID primitive.ObjectID) error
	ListForUser(ctx context.Context, actor services.Actor, userID primitive.ObjectID) (*models.UserPlanets, error)
}

type InviteOperations interface {
	Send(ctx context.Context, actor services.Actor, planetID primitive.ObjectID, req models.SendInviteRequest) (*models.Invite, error)
	ListForUser(ctx context.Context, actor services.Actor, userID primitive.ObjectID) ([]models.Invite, error)
	Accept(ctx context.Context, actor services.Actor, inviteID primitive.ObjectID) error
	Decline(ctx context.Context, actor services.Actor, inviteID primitive.ObjectID) error
}

type PlanetHandler struct {
	planets PlanetOperations
	invites InviteOperations
}

func NewPlanetHandler(planets PlanetOperations, invites InviteOperations) *PlanetHandler {
	return &PlanetHandler{planets: planets, invites: invites}
}

// PlanetResponse is a planet with its members and the caller's role.
type PlanetResponse struct {
	Message string `json:"message"`
	models.PlanetDetail
}

// GetPlanet godoc
// @Summary Get a planet with its members, owner first
// @Tags planets
// @Security ApiKeyAuth
// @Param planetId path string true "Planet ID"
// @Success 200 {object} PlanetResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /planets/{planetId} [get]
func (h *PlanetHandler) GetPlanet(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	planetID, ok := objectIDParam(c, "planetId")
	if !ok {
		return
	}

	detail, err := h.planets.Get(c.Request.Context(), actor, planetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PlanetResponse{Message: "Successfully retrieved planet.", PlanetDetail: *detail})
}

// CreatePlanet godoc
// @Summary Create a planet owned by ownerId
// @Tags planets
// @Security ApiKeyAuth
// @Param payload body models.CreatePlanetRequest true "Planet"
// @Success 201 {object} models.Planet
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /planets [post]
func (h *PlanetHandler) CreatePlanet(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req models.CreatePlanetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	planet, err := h.planets.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Planet successfully created.", "planet": planet})
}

// UpdatePlanet godoc
// @Summary Edit a planet's name, description, color or theme
// @Tags planets
// @Security ApiKeyAuth
// @Param planetId path string true "Planet ID"
// @Param payload body models.UpdatePlanetRequest true "Fields to change"
// @Success 200 {object} models.Planet
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /planets/{planetId} [put]
func (h *PlanetHandler) UpdatePlanet(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	planetID, ok := objectIDParam(c, "planetId")
	if !ok {
		return
	}
	var req models.UpdatePlanetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	planet, err := h.planets.Update(c.Request.Context(), actor, planetID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Planet updated successfully.", "planet": planet})
}

// DeletePlanet godoc
// @Summary Delete a planet with its columns, tasks, members and invites
// @Tags planets
// @Security ApiKeyAuth
// @Param planetId path string true "Planet ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /planets/{planetId} [delete]
func (h *PlanetHandler) DeletePlanet(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	planetID, ok := objectIDParam(c, "planetId")
	if !ok {
		return
	}

	if err := h.planets.Delete(c.Request.Context(), actor, planetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Planet deleted successfully."})
}

// PromoteUser godoc
// @Summary Transfer planet ownership to a collaborator
// @Tags planets
// @Security ApiKeyAuth
// @Param planetId path string true "Planet ID"
// @Param userId path string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /planets/{planetId}/users/{userId}/promote [put]
func (h *PlanetHandler) PromoteUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	planetID, ok := objectIDParam(c, "planetId")
	if !ok {
		return
	}
	userID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.planets.Promote(c.Request.Context(), actor, planetID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "User promoted to owner successfully."})
}

// RemoveUser godoc
// @Summary Remove a collaborator from a planet
// @Tags planets
// @Security ApiKeyAuth
// @Param planetId path string true "Planet ID"
// @Param userId path string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /planets/{planetId}/users/{userId} [delete]
func (h *PlanetHandler) RemoveUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	planetID, ok := objectIDParam(c, "planetId")
	if !ok {
		return
	}
	userID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.planets.RemoveUser(c.Request.Context(), actor, planetID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "User removed from planet successfully."})
}

// SendInvite godoc
// @Summary Invite a user to a planet by email
// @Tags planets
// @Security ApiKeyAuth
// @Param planetId path string true "Planet ID"
// @Param payload body models.SendInviteRequest true "Invite"
// @Success 201 {object} models.Invite
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /planets/{planetId}/invite [post]
func (h *PlanetHandler) SendInvite(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	planetID, ok := objectIDParam(c, "planetId")
	if !ok {
		return
	}
	var req models.SendInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	invite, err := h.invites.Send(c.Request.Context(), actor, planetID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Invite sent successfully.", "newInvite": invite})
}
