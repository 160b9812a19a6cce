package services

import (
	"context"

	"planets-be/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type StatisticsService struct {
	stats   StatisticsStore
	planets PlanetStore
	columns ColumnStore
	gate    *Gate
}

func NewStatisticsService(stats StatisticsStore, planets PlanetStore, columns ColumnStore, gate *Gate) *StatisticsService {
	return &StatisticsService{stats: stats, planets: planets, columns: columns, gate: gate}
}

// PeriodDays maps a period parameter to a day count, defaulting to 30d.
func PeriodDays(period string) (string, int) {
	switch period {
	case "7d":
		return period, 7
	case "90d":
		return period, 90
	default:
		return "30d", 30
	}
}

// ForPlanet summarises the tasks of a planet for its members.
func (s *StatisticsService) ForPlanet(ctx context.Context, actor Actor, planetID primitive.ObjectID, period string) (*models.PlanetStatistics, error) {
	if _, err := s.planets.FindByID(ctx, planetID); err != nil {
		return nil, notFoundOr(err, "Planet not found.")
	}
	if err := s.gate.Authorize(ctx, actor, planetID, "You do not have permission to access this planet."); err != nil {
		return nil, err
	}

	period, days := PeriodDays(period)
	result := &models.PlanetStatistics{
		Period:       period,
		ByColumn:     []models.ColumnTaskCount{},
		ByPriority:   []models.PriorityCount{},
		CreatedTrend: []models.TaskTrendPoint{},
	}

	columns, err := s.columns.ListByPlanet(ctx, planetID)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	if len(columns) == 0 {
		return result, nil
	}
	ids := make([]primitive.ObjectID, len(columns))
	for i, c := range columns {
		ids[i] = c.ID
	}

	counts, err := s.stats.TasksByColumn(ctx, ids)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	byID := make(map[primitive.ObjectID]int, len(counts))
	for _, c := range counts {
		byID[c.ColumnID] = c.Count
	}
	// Empty columns have no aggregate row; report them with a zero count.
	for _, c := range columns {
		result.ByColumn = append(result.ByColumn, models.ColumnTaskCount{ColumnID: c.ID, Name: c.Name, Count: byID[c.ID]})
	}

	if result.ByPriority, err = s.stats.TasksByPriority(ctx, ids); err != nil {
		return nil, models.NewInternal(err)
	}
	if result.CreatedTrend, err = s.stats.CreatedTrend(ctx, ids, days); err != nil {
		return nil, models.NewInternal(err)
	}
	total, assigned, err := s.stats.AssignmentCounts(ctx, ids)
	if err != nil {
		return nil, models.NewInternal(err)
	}
	result.TotalTasks = total
	result.Assigned = assigned
	result.Unassigned = total - assigned
	return result, nil
}
