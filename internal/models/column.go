package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Column struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	PlanetID  primitive.ObjectID `json:"planetId" bson:"planetId"`
	Name      string             `json:"name" bson:"name" validate:"required,min=1,max=15"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (c *Column) Validate() error {
	return validate.Struct(c)
}

// ColumnWithTasks is a column and its tasks in ascending order.
type ColumnWithTasks struct {
	Column
	Tasks []Task `json:"tasks"`
}

type CreateColumnRequest struct {
	Name string `json:"name" binding:"required"`
}
