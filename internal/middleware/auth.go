package middleware

import (
	"net/http"
	"strings"

	"planets-be/config"
	"planets-be/internal/models"
	"planets-be/internal/services"
	"planets-be/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const actorKey = "actor"

// Auth requires a Bearer access token and stores the caller as a
// services.Actor on the gin context.
func Auth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   string(models.KindUnauthorized),
				Message: "Access denied, no token found.",
			})
			return
		}

		actor, ok := actorFromToken(strings.TrimSpace(token), cfg.JWTSecret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Error:   string(models.KindForbidden),
				Message: "Access denied, invalid token.",
			})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

func actorFromToken(token, secret string) (services.Actor, bool) {
	claims, err := utils.ValidateToken(token, secret)
	if err != nil || claims.TokenType != utils.TokenTypeAccess {
		return services.Actor{}, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return services.Actor{}, false
	}
	return services.Actor{
		UserID: userID,
		Email:  claims.Email,
		Role:   models.GlobalRole(claims.Role),
	}, true
}

// ActorFrom returns the caller stored by Auth.
func ActorFrom(c *gin.Context) (services.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok
}
