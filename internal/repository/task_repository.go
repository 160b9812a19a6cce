package repository

import (
	"context"
	"time"

	"planets-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository handles task persistence. Rank bookkeeping lives in
// services.OrderedTasks; this type only reads and writes what it is given.
type TaskRepository struct {
	collection *mongo.Collection
}

// NewTaskRepository creates a new repository
func NewTaskRepository(db *mongo.Database) *TaskRepository {
	r := &TaskRepository{
		collection: db.Collection("planet_tasks"),
	}

	// Ensure indexes. (columnId, order) is not unique: a rank batch passes
	// through transient duplicates while it is applied.
	ctx := context.Background()
	_, _ = r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "columnId", Value: 1}, {Key: "order", Value: 1}},
		Options: options.Index().SetName("idx_column_order"),
	})

	return r
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, task)
	return err
}

func (r *TaskRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByColumn returns all tasks of a column, ordered by 'order' field
func (r *TaskRepository) ListByColumn(ctx context.Context, columnID primitive.ObjectID) ([]models.Task, error) {
	return r.list(ctx, bson.M{"columnId": columnID})
}

func (r *TaskRepository) ListByColumns(ctx context.Context, columnIDs []primitive.ObjectID) ([]models.Task, error) {
	return r.list(ctx, bson.M{"columnId": bson.M{"$in": columnIDs}})
}

func (r *TaskRepository) list(ctx context.Context, filter bson.M) ([]models.Task, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "columnId", Value: 1},
		{Key: "order", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := make([]models.Task, 0)
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// MaxOrder returns the highest order in a column, 0 when it is empty
func (r *TaskRepository) MaxOrder(ctx context.Context, columnID primitive.ObjectID) (int, error) {
	findOptions := options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}})

	var task models.Task
	err := r.collection.FindOne(ctx, bson.M{"columnId": columnID}, findOptions).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}
	return task.Order, nil
}

// ApplyRanks writes column and order for each change in one ordered bulk
// write, so a failure stops every later write in the batch.
func (r *TaskRepository) ApplyRanks(ctx context.Context, changes []models.RankChange) error {
	if len(changes) == 0 {
		return nil
	}

	now := time.Now()
	operations := make([]mongo.WriteModel, 0, len(changes))
	for _, c := range changes {
		operation := mongo.NewUpdateOneModel()
		operation.SetFilter(bson.M{"_id": c.TaskID})
		operation.SetUpdate(bson.M{"$set": bson.M{
			"columnId":  c.ColumnID,
			"order":     c.Order,
			"updatedAt": now,
		}})
		operations = append(operations, operation)
	}

	_, err := r.collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(true))
	return err
}

// UpdateDetails sets the fields present in details and leaves the rest as
// stored. It never touches columnId or order, so it cannot undo a concurrent
// rank change.
func (r *TaskRepository) UpdateDetails(ctx context.Context, taskID primitive.ObjectID, details models.TaskDetails) (*models.Task, error) {
	set := bson.M{"updatedAt": details.UpdatedAt}
	unset := bson.M{}
	if details.Content != nil {
		set["content"] = *details.Content
	}
	setOrUnset(set, unset, "description", details.Description)
	setOrUnset(set, unset, "priority", details.Priority)
	if details.SetAssignee {
		set["assignedUserId"] = details.AssignedUserID
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var task models.Task
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": taskID}, update, opts).Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

func setOrUnset(set, unset bson.M, field string, value *string) {
	switch {
	case value == nil:
	case *value == "":
		unset[field] = ""
	default:
		set[field] = *value
	}
}

func (r *TaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *TaskRepository) DeleteByColumn(ctx context.Context, columnID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"columnId": columnID})
	return err
}

// UnevenColumns returns the ids of columns whose orders are not exactly 1..N:
// a gap, a duplicate, or a first rank other than 1.
func (r *TaskRepository) UnevenColumns(ctx context.Context) ([]primitive.ObjectID, error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":    "$columnId",
			"n":      bson.M{"$sum": 1},
			"lo":     bson.M{"$min": "$order"},
			"hi":     bson.M{"$max": "$order"},
			"orders": bson.M{"$addToSet": "$order"},
		}},
		{"$match": bson.M{"$expr": bson.M{"$or": []bson.M{
			{"$ne": []interface{}{"$lo", 1}},
			{"$ne": []interface{}{"$hi", "$n"}},
			{"$ne": []interface{}{bson.M{"$size": "$orders"}, "$n"}},
		}}}},
		{"$project": bson.M{"_id": 1}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}
