package handlers

import (
	"context"
	"net/http"

	"planets-be/internal/models"
	"planets-be/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type StatisticsOperations interface {
	ForPlanet(ctx context.Context, actor services.Actor, planetID primitive.ObjectID, period string) (*models.PlanetStatistics, error)
}

type StatisticsHandler struct {
	stats StatisticsOperations
}

func NewStatisticsHandler(stats StatisticsOperations) *StatisticsHandler {
	return &StatisticsHandler{stats: stats}
}

// GetStatistics godoc
// @Summary Get task statistics for a planet dashboard
// @Description Returns task totals, assignment counts, per-column and per-priority distribution, and the creation trend
// @Tags statistics
// @Security ApiKeyAuth
// @Param planetId path string true "Planet ID"
// @Param period query string false "Time period: 7d, 30d, 90d" default(30d)
// @Success 200 {object} models.PlanetStatistics
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /planets/{planetId}/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	planetID, ok := objectIDParam(c, "planetId")
	if !ok {
		return
	}

	stats, err := h.stats.ForPlanet(c.Request.Context(), actor, planetID, c.DefaultQuery("period", "30d"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
