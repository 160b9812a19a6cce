package handlers

import (
	"net/http"

	"planets-be/internal/models"

	"github.com/gin-gonic/gin"
)

// GetColumns godoc
// @Summary List a planet's columns with their tasks in rank order
// @Tags board
// @Security ApiKeyAuth
// @Param planetId path string true "Planet ID"
// @Success 200 {object} ColumnsResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /planets/{planetId}/columns [get]
func (h *KanbanHandler) GetColumns(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	planetID, ok := objectIDParam(c, "planetId")
	if !ok {
		return
	}

	columns, err := h.columns.ListWithTasks(c.Request.Context(), actor, planetID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Planet columns retrieved successfully."
	if len(columns) == 0 {
		message = "Planet has no columns."
	}
	c.JSON(http.StatusOK, ColumnsResponse{Message: message, Columns: columns})
}

type ColumnsResponse struct {
	Message string                   `json:"message"`
	Columns []models.ColumnWithTasks `json:"columns"`
}

// CreateColumn godoc
// @Summary Add a column to a planet
// @Tags board
// @Security ApiKeyAuth
// @Param planetId path string true "Planet ID"
// @Param payload body models.CreateColumnRequest true "Column"
// @Success 201 {object} models.Column
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /planets/{planetId}/columns [post]
func (h *KanbanHandler) CreateColumn(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	planetID, ok := objectIDParam(c, "planetId")
	if !ok {
		return
	}
	var req models.CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	column, err := h.columns.Create(c.Request.Context(), actor, planetID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Column created successfully.", "newColumn": column})
}

// DeleteColumn godoc
// @Summary Delete a column and its tasks
// @Tags board
// @Security ApiKeyAuth
// @Param columnId path string true "Column ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /planets/columns/{columnId} [delete]
func (h *KanbanHandler) DeleteColumn(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	columnID, ok := objectIDParam(c, "columnId")
	if !ok {
		return
	}

	if err := h.columns.Delete(c.Request.Context(), actor, columnID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Column deleted successfully."})
}
