package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Task struct {
	ID             primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	ColumnID       primitive.ObjectID  `json:"columnId" bson:"columnId"`
	AssignedUserID *primitive.ObjectID `json:"assignedUserId" bson:"assignedUserId"`
	Content        string              `json:"content" bson:"content" validate:"required,min=1,max=30"`
	Description    string              `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	Priority       string              `json:"priority,omitempty" bson:"priority,omitempty" validate:"omitempty,oneof=1 2 3 4"`
	Order          int                 `json:"order" bson:"order" validate:"gte=1"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

func (t *Task) Validate() error {
	return validate.Struct(t)
}

// RankChange moves one task to a rank, optionally in another column.
// TaskDetails carries the editable fields one update writes. Nil fields keep
// their stored value; an empty description or priority clears it.
type TaskDetails struct {
	Content        *string
	Description    *string
	Priority       *string
	SetAssignee    bool
	AssignedUserID *primitive.ObjectID
	UpdatedAt      time.Time
}

type RankChange struct {
	TaskID   primitive.ObjectID
	ColumnID primitive.ObjectID
	Order    int
}

type CreateTaskRequest struct {
	Content string `json:"content" binding:"required"`
}

// TaskSearchResult is one fuzzy match within a planet.
type TaskSearchResult struct {
	Task     Task   `json:"task"`
	ColumnID string `json:"columnId"`
	Score    int    `json:"score"`
}
