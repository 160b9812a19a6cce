package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"planets-be/internal/models"
	"planets-be/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ColumnOperations interface {
	Create(ctx context.Context, actor services.Actor, planetID primitive.ObjectID, name string) (*models.Column, error)
	ListWithTasks(ctx context.Context, actor services.Actor, planetID primitive.ObjectID) ([]models.ColumnWithTasks, error)
	Delete(ctx context.Context, actor services.Actor, columnID primitive.ObjectID) error
}

type TaskOperations interface {
	Create(ctx context.Context, actor services.Actor, columnID primitive.ObjectID, content string) (*models.Task, error)
	Update(ctx context.Context, actor services.Actor, taskID primitive.ObjectID, changes services.TaskChanges) (*models.Task, error)
	Delete(ctx context.Context, actor services.Actor, taskID primitive.ObjectID) error
	Search(ctx context.Context, actor services.Actor, planetID primitive.ObjectID, query string) ([]models.TaskSearchResult, error)
}

// KanbanHandler serves a planet's board: its columns and their ordered tasks.
type KanbanHandler struct {
	columns ColumnOperations
	tasks   TaskOperations
}

func NewKanbanHandler(columns ColumnOperations, tasks TaskOperations) *KanbanHandler {
	return &KanbanHandler{columns: columns, tasks: tasks}
}

// CreateTask godoc
// @Summary Append a task to the bottom of a column
// @Tags board
// @Security ApiKeyAuth
// @Param columnId path string true "Column ID"
// @Param payload body models.CreateTaskRequest true "Task"
// @Success 201 {object} models.Task
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /planets/columns/{columnId}/task [post]
func (h *KanbanHandler) CreateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	columnID, ok := objectIDParam(c, "columnId")
	if !ok {
		return
	}
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), actor, columnID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Task created successfully.", "newTask": task})
}

// UpdateTask godoc
// @Summary Edit, reorder or move a task
// @Description Accepts any of order, columnId, content, description, priority, assignedUserId. Answers 204 when none is present.
// @Tags board
// @Security ApiKeyAuth
// @Param taskId path string true "Task ID"
// @Success 200 {object} models.Task
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /planets/tasks/{taskId} [put]
func (h *KanbanHandler) UpdateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := objectIDParam(c, "taskId")
	if !ok {
		return
	}

	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	changes, err := parseTaskChanges(body)
	if err != nil {
		respondError(c, models.NewInvalidInput(err.Error()))
		return
	}
	if changes.Empty() {
		c.Status(http.StatusNoContent)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), actor, taskID, changes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully.", "task": task})
}

// DeleteTask godoc
// @Summary Delete a task and close the gap in its column
// @Tags board
// @Security ApiKeyAuth
// @Param taskId path string true "Task ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /planets/tasks/{taskId} [delete]
func (h *KanbanHandler) DeleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := objectIDParam(c, "taskId")
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), actor, taskID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully."})
}

var jsonNull = []byte("null")

// parseTaskChanges reads the recognised update fields. Unknown keys are
// ignored; null clears description, priority and assignee.
func parseTaskChanges(body map[string]json.RawMessage) (services.TaskChanges, error) {
	var changes services.TaskChanges

	if raw, ok := body["order"]; ok && !isNull(raw) {
		order, err := looseInt(raw)
		if err != nil {
			return changes, errors.New("order must be an integer")
		}
		changes.Order = &order
	}
	if raw, ok := body["columnId"]; ok && !isNull(raw) {
		id, err := rawObjectID(raw)
		if err != nil {
			return changes, errors.New("columnId is invalid")
		}
		changes.ColumnID = &id
	}
	if raw, ok := body["content"]; ok && !isNull(raw) {
		s, err := looseString(raw)
		if err != nil {
			return changes, errors.New("content must be a string")
		}
		changes.Content = &s
	}
	for key, dst := range map[string]**string{"description": &changes.Description, "priority": &changes.Priority} {
		raw, ok := body[key]
		if !ok {
			continue
		}
		s := ""
		if !isNull(raw) {
			var err error
			if s, err = looseString(raw); err != nil {
				return changes, errors.New(key + " must be a string")
			}
		}
		*dst = &s
	}
	if raw, ok := body["assignedUserId"]; ok {
		changes.SetAssignee = true
		if !isNull(raw) && string(raw) != `""` {
			id, err := rawObjectID(raw)
			if err != nil {
				return changes, errors.New("assignedUserId is invalid")
			}
			changes.AssignedUserID = &id
		}
	}
	return changes, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// looseInt accepts a JSON number or a numeric string.
func looseInt(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

// looseString accepts a JSON string or number; priorities arrive as either.
func looseString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func rawObjectID(raw json.RawMessage) (primitive.ObjectID, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(s)
}
