package handlers

import (
	"errors"
	"net/http"

	"planets-be/internal/logger"
	"planets-be/internal/middleware"
	"planets-be/internal/models"
	"planets-be/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindForbidden:
		return http.StatusForbidden
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	case models.KindConflict:
		return http.StatusConflict
	case models.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Internal failures are logged
// here and nowhere else.
func respondError(c *gin.Context, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternal(err)
	}

	if appErr.Kind == models.KindInternal {
		logger.FromContext(c.Request.Context()).WithError(err).Error("Request failed")
	}

	c.AbortWithStatusJSON(statusFor(appErr.Kind), models.ErrorResponse{
		Error:   string(appErr.Kind),
		Message: appErr.Message,
	})
}

func respondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: models.ValidationMessage(err),
	})
}

// objectIDParam parses a path parameter, answering 400 when it is malformed.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   string(models.KindInvalidInput),
			Message: "Invalid " + name + ".",
		})
		return primitive.NilObjectID, false
	}
	return id, true
}

func currentActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   string(models.KindUnauthorized),
			Message: "User not authenticated",
		})
	}
	return actor, ok
}
