package services

import (
	"context"
	"fmt"
	"time"

	"planets-be/internal/lock"
	"planets-be/internal/metrics"
	"planets-be/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxLockAttempts bounds retries when a task changes column between the
// unlocked read and lock acquisition.
const maxLockAttempts = 3

// OrderedTasks keeps the order values of every column dense (1..N).
//
// Each operation holds the lock of every column it touches, re-reads those
// columns, computes the target layout in memory and writes only the ranks that
// changed. The moved task is always written last.
type OrderedTasks struct {
	tasks   TaskStore
	columns ColumnStore
	locker  lock.Locker
	now     func() time.Time
}

func NewOrderedTasks(tasks TaskStore, columns ColumnStore, locker lock.Locker) *OrderedTasks {
	return &OrderedTasks{
		tasks:   tasks,
		columns: columns,
		locker:  locker,
		now:     time.Now,
	}
}

func columnKey(id primitive.ObjectID) string {
	return "column:" + id.Hex()
}

func (o *OrderedTasks) lockColumns(ctx context.Context, ids ...primitive.ObjectID) (func(), error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = columnKey(id)
	}
	start := time.Now()
	unlock, err := o.locker.Lock(ctx, keys...)
	metrics.ColumnLockWait.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, models.NewInternal(fmt.Errorf("acquire column lock: %w", err))
	}
	return unlock, nil
}

// lockTask locks the task's current column plus extra, returning the task as
// read under the lock.
func (o *OrderedTasks) lockTask(ctx context.Context, taskID primitive.ObjectID, extra ...primitive.ObjectID) (*models.Task, func(), error) {
	for attempt := 0; attempt < maxLockAttempts; attempt++ {
		seen, err := o.tasks.FindByID(ctx, taskID)
		if err != nil {
			return nil, nil, notFoundOr(err, "Task not found.")
		}
		unlock, err := o.lockColumns(ctx, append([]primitive.ObjectID{seen.ColumnID}, extra...)...)
		if err != nil {
			return nil, nil, err
		}
		task, err := o.tasks.FindByID(ctx, taskID)
		if err != nil {
			unlock()
			return nil, nil, notFoundOr(err, "Task not found.")
		}
		if task.ColumnID == seen.ColumnID {
			return task, unlock, nil
		}
		unlock()
	}
	return nil, nil, models.NewConflict("Task was moved by another request, try again.")
}

// Append places task at the bottom of its column.
func (o *OrderedTasks) Append(ctx context.Context, task *models.Task) error {
	unlock, err := o.lockColumns(ctx, task.ColumnID)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := o.columns.FindByID(ctx, task.ColumnID); err != nil {
		return notFoundOr(err, "Cannot add task to non-existent column.")
	}

	maxOrder, err := o.tasks.MaxOrder(ctx, task.ColumnID)
	if err != nil {
		return o.fail("append", err)
	}

	now := o.now()
	task.Order = maxOrder + 1
	task.CreatedAt = now
	task.UpdatedAt = now
	if err := task.Validate(); err != nil {
		return models.NewValidation(err)
	}
	if err := o.tasks.Create(ctx, task); err != nil {
		return o.fail("append", err)
	}
	metrics.TaskRankWrites.WithLabelValues("append", "ok").Inc()
	return nil
}

// Reposition moves a task to newOrder, in newColumnID when given. A nil
// newOrder keeps the current rank within the same column and means "bottom"
// when changing column. Ranks are clamped to [1, N] within a column and to
// [1, N'+1] when entering a column holding N' tasks.
func (o *OrderedTasks) Reposition(ctx context.Context, taskID primitive.ObjectID, newOrder *int, newColumnID *primitive.ObjectID) (*models.Task, error) {
	var extra []primitive.ObjectID
	if newColumnID != nil {
		extra = append(extra, *newColumnID)
	}
	task, unlock, err := o.lockTask(ctx, taskID, extra...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	source := task.ColumnID
	target := source
	if newColumnID != nil {
		target = *newColumnID
	}

	sourceTasks, err := o.tasks.ListByColumn(ctx, source)
	if err != nil {
		return nil, o.fail("reposition", err)
	}
	idx := indexOfTask(sourceTasks, taskID)
	if idx < 0 {
		return nil, models.NewNotFound("Task not found.")
	}
	moving := sourceTasks[idx]
	rest := removeAt(sourceTasks, idx)

	var changes []models.RankChange
	var pos int
	if target == source {
		pos = moving.Order
		if newOrder != nil {
			pos = *newOrder
		}
		pos = clamp(pos, 1, len(sourceTasks))
		changes = rankChanges(insertAt(rest, moving, pos-1), source)
	} else {
		if _, err := o.columns.FindByID(ctx, target); err != nil {
			return nil, notFoundOr(err, "New column not found.")
		}
		destTasks, err := o.tasks.ListByColumn(ctx, target)
		if err != nil {
			return nil, o.fail("reposition", err)
		}
		pos = len(destTasks) + 1
		if newOrder != nil {
			pos = *newOrder
		}
		pos = clamp(pos, 1, len(destTasks)+1)
		changes = append(rankChanges(rest, source), rankChanges(insertAt(destTasks, moving, pos-1), target)...)
	}

	changes = movedLast(changes, taskID)
	if len(changes) == 0 {
		metrics.TaskRankWrites.WithLabelValues("reposition", "noop").Inc()
		return &moving, nil
	}
	if err := o.tasks.ApplyRanks(ctx, changes); err != nil {
		return nil, o.fail("reposition", err)
	}

	moving.ColumnID = target
	moving.Order = pos
	metrics.TaskRankWrites.WithLabelValues("reposition", "ok").Inc()
	return &moving, nil
}

// Remove deletes a task and closes the gap it leaves.
func (o *OrderedTasks) Remove(ctx context.Context, taskID primitive.ObjectID) error {
	task, unlock, err := o.lockTask(ctx, taskID)
	if err != nil {
		return err
	}
	defer unlock()

	siblings, err := o.tasks.ListByColumn(ctx, task.ColumnID)
	if err != nil {
		return o.fail("remove", err)
	}
	if err := o.tasks.Delete(ctx, taskID); err != nil {
		return o.fail("remove", err)
	}
	if idx := indexOfTask(siblings, taskID); idx >= 0 {
		siblings = removeAt(siblings, idx)
	}
	if changes := rankChanges(siblings, task.ColumnID); len(changes) > 0 {
		if err := o.tasks.ApplyRanks(ctx, changes); err != nil {
			return o.fail("remove", err)
		}
	}
	metrics.TaskRankWrites.WithLabelValues("remove", "ok").Inc()
	return nil
}

// DropColumn deletes a column's tasks, then the column.
func (o *OrderedTasks) DropColumn(ctx context.Context, columnID primitive.ObjectID) error {
	unlock, err := o.lockColumns(ctx, columnID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := o.tasks.DeleteByColumn(ctx, columnID); err != nil {
		return models.NewInternal(err)
	}
	if err := o.columns.Delete(ctx, columnID); err != nil {
		return models.NewInternal(err)
	}
	return nil
}

// Compact renumbers a column to 1..N keeping its current relative order, ties
// broken by id. It returns the number of tasks rewritten.
func (o *OrderedTasks) Compact(ctx context.Context, columnID primitive.ObjectID) (int, error) {
	unlock, err := o.lockColumns(ctx, columnID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	tasks, err := o.tasks.ListByColumn(ctx, columnID)
	if err != nil {
		return 0, o.fail("compact", err)
	}
	changes := rankChanges(tasks, columnID)
	if len(changes) == 0 {
		metrics.TaskRankWrites.WithLabelValues("compact", "noop").Inc()
		return 0, nil
	}
	if err := o.tasks.ApplyRanks(ctx, changes); err != nil {
		return 0, o.fail("compact", err)
	}
	metrics.TaskRankWrites.WithLabelValues("compact", "ok").Inc()
	return len(changes), nil
}

func (o *OrderedTasks) fail(operation string, err error) error {
	metrics.TaskRankWrites.WithLabelValues(operation, "error").Inc()
	return models.NewInternal(fmt.Errorf("%s: %w", operation, err))
}

// rankChanges lists the writes needed for layout to hold ranks 1..len(layout)
// inside columnID.
func rankChanges(layout []models.Task, columnID primitive.ObjectID) []models.RankChange {
	var changes []models.RankChange
	for i, t := range layout {
		if want := i + 1; t.Order != want || t.ColumnID != columnID {
			changes = append(changes, models.RankChange{TaskID: t.ID, ColumnID: columnID, Order: want})
		}
	}
	return changes
}

// movedLast reorders changes so the moved task's write comes after every sibling's.
func movedLast(changes []models.RankChange, movedID primitive.ObjectID) []models.RankChange {
	out := make([]models.RankChange, 0, len(changes))
	var moved *models.RankChange
	for i := range changes {
		if changes[i].TaskID == movedID {
			moved = &changes[i]
			continue
		}
		out = append(out, changes[i])
	}
	if moved != nil {
		out = append(out, *moved)
	}
	return out
}

func indexOfTask(tasks []models.Task, id primitive.ObjectID) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func removeAt(tasks []models.Task, i int) []models.Task {
	out := make([]models.Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...)
}

func insertAt(tasks []models.Task, t models.Task, i int) []models.Task {
	out := make([]models.Task, 0, len(tasks)+1)
	out = append(out, tasks[:i]...)
	out = append(out, t)
	return append(out, tasks[i:]...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
