package handlers

import (
	"context"
	"net/http"

	"planets-be/internal/models"
	"planets-be/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserOperations interface {
	Get(ctx context.Context, actor services.Actor, userID primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, actor services.Actor, userID primitive.ObjectID, req models.UpdateUserRequest) (*models.User, error)
}

type UserHandler struct {
	users   UserOperations
	planets PlanetOperations
	invites InviteOperations
}

func NewUserHandler(users UserOperations, planets PlanetOperations, invites InviteOperations) *UserHandler {
	return &UserHandler{users: users, planets: planets, invites: invites}
}

// GetUser godoc
// @Summary Get a user's profile
// @Tags users
// @Security ApiKeyAuth
// @Param userId path string true "User ID"
// @Success 200 {object} models.User
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{userId} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully retrieved user data.", "user": user})
}

// UpdateUser godoc
// @Summary Edit the caller's own profile
// @Tags users
// @Security ApiKeyAuth
// @Param userId path string true "User ID"
// @Param payload body models.UpdateUserRequest true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{userId} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), actor, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully.", "user": user})
}

// GetUserPlanets godoc
// @Summary List the planets a user owns and collaborates on
// @Tags users
// @Security ApiKeyAuth
// @Param userId path string true "User ID"
// @Success 200 {object} models.UserPlanets
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{userId}/planets [get]
func (h *UserHandler) GetUserPlanets(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}

	planets, err := h.planets.ListForUser(c.Request.Context(), actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Successfully retrieved user's planets."
	if len(planets.Owned) == 0 && len(planets.Collaborated) == 0 {
		message = "User has no planets."
	}
	c.JSON(http.StatusOK, gin.H{
		"message":             message,
		"ownedPlanets":        planets.Owned,
		"collaboratedPlanets": planets.Collaborated,
	})
}

// GetUserInvites godoc
// @Summary List a user's pending invites, newest first
// @Tags users
// @Security ApiKeyAuth
// @Param userId path string true "User ID"
// @Success 200 {array} models.Invite
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{userId}/invites [get]
func (h *UserHandler) GetUserInvites(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	userID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}

	invites, err := h.invites.ListForUser(c.Request.Context(), actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Successfully retrieved invites."
	if len(invites) == 0 {
		message = "No invites found."
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "invites": invites})
}

// AcceptInvite godoc
// @Summary Accept an invite and join the planet
// @Tags users
// @Security ApiKeyAuth
// @Param inviteId path string true "Invite ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/invites/{inviteId}/accept [post]
func (h *UserHandler) AcceptInvite(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	inviteID, ok := objectIDParam(c, "inviteId")
	if !ok {
		return
	}

	if err := h.invites.Accept(c.Request.Context(), actor, inviteID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Invite accepted successfully."})
}

// DeclineInvite godoc
// @Summary Decline an invite
// @Tags users
// @Security ApiKeyAuth
// @Param inviteId path string true "Invite ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/invites/{inviteId}/decline [post]
func (h *UserHandler) DeclineInvite(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	inviteID, ok := objectIDParam(c, "inviteId")
	if !ok {
		return
	}

	if err := h.invites.Decline(c.Request.Context(), actor, inviteID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Invite declined successfully."})
}
