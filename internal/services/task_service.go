package services

import (
	"context"
	"time"

	"planets-be/internal/models"
	"planets-be/internal/utils"

	"github.com/sahilm/fuzzy"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskChanges carries the fields of a task update. Nil fields are left alone.
type TaskChanges struct {
	Order       *int
	ColumnID    *primitive.ObjectID
	Content     *string
	Description *string
	Priority    *string
	// AssignedUserID is applied only when SetAssignee is true; nil unassigns.
	SetAssignee    bool
	AssignedUserID *primitive.ObjectID
}

// Empty reports whether no recognised field was supplied.
func (c TaskChanges) Empty() bool {
	return c.Order == nil && c.ColumnID == nil && c.Content == nil &&
		c.Description == nil && c.Priority == nil && !c.SetAssignee
}

func (c TaskChanges) moves() bool {
	return c.Order != nil || c.ColumnID != nil
}

func (c TaskChanges) edits() bool {
	return c.Content != nil || c.Description != nil || c.Priority != nil || c.SetAssignee
}

type TaskService struct {
	tasks   TaskStore
	columns ColumnStore
	planets PlanetStore
	users   UserStore
	gate    *Gate
	ordered *OrderedTasks
	now     func() time.Time
}

func NewTaskService(tasks TaskStore, columns ColumnStore, planets PlanetStore, users UserStore, gate *Gate, ordered *OrderedTasks) *TaskService {
	return &TaskService{
		tasks:   tasks,
		columns: columns,
		planets: planets,
		users:   users,
		gate:    gate,
		ordered: ordered,
		now:     time.Now,
	}
}

// Create appends a new task to the bottom of a column.
func (s *TaskService) Create(ctx context.Context, actor Actor, columnID primitive.ObjectID, content string) (*models.Task, error) {
	content = utils.SanitizeText(content)
	if content == "" {
		return nil, models.NewInvalidInput("Task content is required.")
	}

	column, err := s.columns.FindByID(ctx, columnID)
	if err != nil {
		return nil, notFoundOr(err, "Cannot add task to non-existent column.")
	}
	if err := s.gate.Authorize(ctx, actor, column.PlanetID, "User does not have permission to create a task in this planet."); err != nil {
		return nil, err
	}

	task := &models.Task{
		ColumnID: columnID,
		Content:  content,
	}
	if err := s.ordered.Append(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies changes to a task. Field edits and moves are validated
// before anything is written; moves go through the ordered store.
func (s *TaskService) Update(ctx context.Context, actor Actor, taskID primitive.ObjectID, changes TaskChanges) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(err, "Task not found.")
	}
	column, err := s.columns.FindByID(ctx, task.ColumnID)
	if err != nil {
		return nil, notFoundOr(err, "Task's column not found.")
	}
	if err := s.gate.Authorize(ctx, actor, column.PlanetID, "You do not have permission to edit this task."); err != nil {
		return nil, err
	}
	if changes.Empty() {
		return task, nil
	}

	edited := *task
	if changes.Content != nil {
		edited.Content = utils.SanitizeText(*changes.Content)
	}
	if changes.Description != nil {
		edited.Description = utils.SanitizeText(*changes.Description)
	}
	if changes.Priority != nil {
		edited.Priority = *changes.Priority
	}
	if changes.SetAssignee {
		if err := s.checkAssignee(ctx, column.PlanetID, changes.AssignedUserID); err != nil {
			return nil, err
		}
		edited.AssignedUserID = changes.AssignedUserID
	}
	if err := edited.Validate(); err != nil {
		return nil, models.NewValidation(err)
	}

	if changes.ColumnID != nil && *changes.ColumnID != task.ColumnID {
		target, err := s.columns.FindByID(ctx, *changes.ColumnID)
		if err != nil {
			return nil, notFoundOr(err, "New column not found.")
		}
		if target.PlanetID != column.PlanetID {
			return nil, models.NewInvalidInput("Tasks cannot be moved to a column of another planet.")
		}
	}

	if changes.moves() {
		moved, err := s.ordered.Reposition(ctx, taskID, changes.Order, changes.ColumnID)
		if err != nil {
			return nil, err
		}
		edited.ColumnID = moved.ColumnID
		edited.Order = moved.Order
	}

	if changes.edits() {
		details := models.TaskDetails{UpdatedAt: s.now()}
		if changes.Content != nil {
			details.Content = &edited.Content
		}
		if changes.Description != nil {
			details.Description = &edited.Description
		}
		if changes.Priority != nil {
			details.Priority = &edited.Priority
		}
		if changes.SetAssignee {
			details.SetAssignee = true
			details.AssignedUserID = edited.AssignedUserID
		}
		stored, err := s.tasks.UpdateDetails(ctx, taskID, details)
		if err != nil {
			return nil, notFoundOr(err, "Task not found.")
		}
		return stored, nil
	}
	return &edited, nil
}

func (s *TaskService) checkAssignee(ctx context.Context, planetID primitive.ObjectID, userID *primitive.ObjectID) error {
	if userID == nil {
		return nil
	}
	if _, err := s.users.FindByID(ctx, *userID); err != nil {
		return notFoundOr(err, "New assigned user not found.")
	}
	member, err := s.gate.IsMember(ctx, planetID, *userID)
	if err != nil {
		return models.NewInternal(err)
	}
	if !member {
		return models.NewInvalidInput("New assigned user does not have permission to work on this task.")
	}
	return nil
}

// Delete removes a task and closes the gap in its column.
func (s *TaskService) Delete(ctx context.Context, actor Actor, taskID primitive.ObjectID) error {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return notFoundOr(err, "Cannot delete non-existent task.")
	}
	column, err := s.columns.FindByID(ctx, task.ColumnID)
	if err != nil {
		return notFoundOr(err, "Task's column not found, task was NOT deleted.")
	}
	if err := s.gate.Authorize(ctx, actor, column.PlanetID, "You do not have permission to delete this task."); err != nil {
		return err
	}
	return s.ordered.Remove(ctx, taskID)
}

// Search fuzzy-matches query against the content and description of every
// task in a planet, best match first.
func (s *TaskService) Search(ctx context.Context, actor Actor, planetID primitive.ObjectID, query string) ([]models.TaskSearchResult, error) {
	pattern := utils.FoldForSearch(utils.SanitizeText(query))
	if pattern == "" {
		return nil, models.NewInvalidInput("Search query is required.")
	}
	if _, err := s.planets.FindByID(ctx, planetID); err != nil {
		return nil, notFoundOr(err, "Planet not found.")
	}
	if err := s.gate.Authorize(ctx, actor, planetID, "You do not have permission to search this planet."); err != nil {
		return nil, err
	}

	columns, err := s.columns.ListByPlanet(ctx, planetID)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	if len(columns) == 0 {
		return []models.TaskSearchResult{}, nil
	}
	columnIDs := make([]primitive.ObjectID, len(columns))
	for i, c := range columns {
		columnIDs[i] = c.ID
	}
	tasks, err := s.tasks.ListByColumns(ctx, columnIDs)
	if err != nil {
		return nil, models.NewInternal(err)
	}

	haystack := make([]string, len(tasks))
	for i, t := range tasks {
		haystack[i] = utils.FoldForSearch(t.Content + " " + t.Description)
	}
	matches := fuzzy.Find(pattern, haystack)

	results := make([]models.TaskSearchResult, 0, len(matches))
	for _, m := range matches {
		t := tasks[m.Index]
		results = append(results, models.TaskSearchResult{
			Task:     t,
			ColumnID: t.ColumnID.Hex(),
			Score:    m.Score,
		})
	}
	return results, nil
}
