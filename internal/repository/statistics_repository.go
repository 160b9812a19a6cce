package repository

import (
	"context"
	"time"

	"planets-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// StatisticsRepository aggregates task counts over a set of columns.
type StatisticsRepository struct {
	taskCollection *mongo.Collection
}

func NewStatisticsRepository(db *mongo.Database) *StatisticsRepository {
	return &StatisticsRepository{
		taskCollection: db.Collection("planet_tasks"),
	}
}

// TasksByColumn counts tasks per column
func (r *StatisticsRepository) TasksByColumn(ctx context.Context, columnIDs []primitive.ObjectID) ([]models.ColumnTaskCount, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"columnId": bson.M{"$in": columnIDs}}},
		{"$group": bson.M{
			"_id":   "$columnId",
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"count": -1}},
	}

	results := make([]models.ColumnTaskCount, 0)
	if err := r.aggregate(ctx, pipeline, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// TasksByPriority counts tasks per priority. Tasks without one are grouped under "none".
func (r *StatisticsRepository) TasksByPriority(ctx context.Context, columnIDs []primitive.ObjectID) ([]models.PriorityCount, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"columnId": bson.M{"$in": columnIDs}}},
		{"$group": bson.M{
			"_id":   bson.M{"$ifNull": []interface{}{"$priority", "none"}},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	results := make([]models.PriorityCount, 0)
	if err := r.aggregate(ctx, pipeline, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// CreatedTrend counts tasks created per day over the last N days
func (r *StatisticsRepository) CreatedTrend(ctx context.Context, columnIDs []primitive.ObjectID, days int) ([]models.TaskTrendPoint, error) {
	startDate := time.Now().AddDate(0, 0, -days)

	pipeline := []bson.M{
		{"$match": bson.M{
			"columnId":  bson.M{"$in": columnIDs},
			"createdAt": bson.M{"$gte": startDate},
		}},
		{"$group": bson.M{
			"_id": bson.M{
				"$dateToString": bson.M{
					"format": "%Y-%m-%d",
					"date":   "$createdAt",
				},
			},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	results := make([]models.TaskTrendPoint, 0)
	if err := r.aggregate(ctx, pipeline, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// AssignmentCounts returns total and assigned task counts
func (r *StatisticsRepository) AssignmentCounts(ctx context.Context, columnIDs []primitive.ObjectID) (total int, assigned int, err error) {
	baseFilter := bson.M{"columnId": bson.M{"$in": columnIDs}}
	totalCount, err := r.taskCollection.CountDocuments(ctx, baseFilter)
	if err != nil {
		return 0, 0, err
	}

	assignedFilter := bson.M{
		"columnId":       bson.M{"$in": columnIDs},
		"assignedUserId": bson.M{"$ne": nil},
	}
	assignedCount, err := r.taskCollection.CountDocuments(ctx, assignedFilter)
	if err != nil {
		return 0, 0, err
	}

	return int(totalCount), int(assignedCount), nil
}

func (r *StatisticsRepository) aggregate(ctx context.Context, pipeline []bson.M, out interface{}) error {
	cursor, err := r.taskCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}
