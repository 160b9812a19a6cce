package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ColumnTaskCount represents the number of tasks in one column
type ColumnTaskCount struct {
	ColumnID primitive.ObjectID `json:"columnId" bson:"_id"`
	Name     string             `json:"name" bson:"-"`
	Count    int                `json:"count" bson:"count"`
}

// PriorityCount represents the number of tasks at one priority
type PriorityCount struct {
	Priority string `json:"priority" bson:"_id"`
	Count    int    `json:"count" bson:"count"`
}

// TaskTrendPoint represents tasks created on a single day
type TaskTrendPoint struct {
	Date  string `json:"date" bson:"_id"`
	Count int    `json:"count" bson:"count"`
}

// PlanetStatistics is the dashboard payload for one planet
type PlanetStatistics struct {
	Period       string            `json:"period"`
	TotalTasks   int               `json:"totalTasks"`
	Assigned     int               `json:"assigned"`
	Unassigned   int               `json:"unassigned"`
	ByColumn     []ColumnTaskCount `json:"byColumn"`
	ByPriority   []PriorityCount   `json:"byPriority"`
	CreatedTrend []TaskTrendPoint  `json:"createdTrend"`
}
