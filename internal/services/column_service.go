package services

import (
	"context"
	"sort"
	"time"

	"planets-be/internal/models"
	"planets-be/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ColumnService struct {
	columns ColumnStore
	tasks   TaskStore
	planets PlanetStore
	gate    *Gate
	ordered *OrderedTasks
	now     func() time.Time
}

func NewColumnService(columns ColumnStore, tasks TaskStore, planets PlanetStore, gate *Gate, ordered *OrderedTasks) *ColumnService {
	return &ColumnService{
		columns: columns,
		tasks:   tasks,
		planets: planets,
		gate:    gate,
		ordered: ordered,
		now:     time.Now,
	}
}

func (s *ColumnService) Create(ctx context.Context, actor Actor, planetID primitive.ObjectID, name string) (*models.Column, error) {
	name = utils.SanitizeText(name)
	if name == "" {
		return nil, models.NewInvalidInput("Missing information. Cannot create column without name.")
	}
	if _, err := s.planets.FindByID(ctx, planetID); err != nil {
		return nil, notFoundOr(err, "Cannot create column for non-existent planet.")
	}
	if err := s.gate.Authorize(ctx, actor, planetID, "You do not have permission to create a column in this planet."); err != nil {
		return nil, err
	}

	now := s.now()
	column := &models.Column{
		PlanetID:  planetID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := column.Validate(); err != nil {
		return nil, models.NewValidation(err)
	}
	if err := s.columns.Create(ctx, column); err != nil {
		return nil, models.NewInternal(err)
	}
	return column, nil
}

// ListWithTasks returns a planet's columns, each with its tasks in ascending order.
func (s *ColumnService) ListWithTasks(ctx context.Context, actor Actor, planetID primitive.ObjectID) ([]models.ColumnWithTasks, error) {
	if _, err := s.planets.FindByID(ctx, planetID); err != nil {
		return nil, notFoundOr(err, "Planet not found.")
	}
	if err := s.gate.Authorize(ctx, actor, planetID, "You do not have permission to access the columns of this planet."); err != nil {
		return nil, err
	}

	columns, err := s.columns.ListByPlanet(ctx, planetID)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	result := make([]models.ColumnWithTasks, len(columns))
	if len(columns) == 0 {
		return result, nil
	}

	ids := make([]primitive.ObjectID, len(columns))
	byColumn := make(map[primitive.ObjectID]int, len(columns))
	for i, c := range columns {
		ids[i] = c.ID
		byColumn[c.ID] = i
		result[i] = models.ColumnWithTasks{Column: c, Tasks: []models.Task{}}
	}

	tasks, err := s.tasks.ListByColumns(ctx, ids)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	for _, t := range tasks {
		if i, ok := byColumn[t.ColumnID]; ok {
			result[i].Tasks = append(result[i].Tasks, t)
		}
	}
	for i := range result {
		sort.SliceStable(result[i].Tasks, func(a, b int) bool {
			return result[i].Tasks[a].Order < result[i].Tasks[b].Order
		})
	}
	return result, nil
}

// Delete removes a column together with all of its tasks.
func (s *ColumnService) Delete(ctx context.Context, actor Actor, columnID primitive.ObjectID) error {
	column, err := s.columns.FindByID(ctx, columnID)
	if err != nil {
		return notFoundOr(err, "Cannot delete non-existent column.")
	}
	if err := s.gate.Authorize(ctx, actor, column.PlanetID, "You do not have permission to delete this column."); err != nil {
		return err
	}
	return s.ordered.DropColumn(ctx, columnID)
}
