package services

import (
	"context"
	"testing"

	"planets-be/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }

func TestTaskCreate(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleUser)
	col := f.addColumn(t, f.addPlanet(t, owner))
	f.addTasks(t, col, "A")

	task, err := f.tasks.Create(context.Background(), actorOf(owner), col.ID, "  <b>ship</b> it ")
	require.NoError(t, err)
	assert.Equal(t, "ship it", task.Content)
	assert.Equal(t, 2, task.Order)

	_, err = f.tasks.Create(context.Background(), actorOf(owner), col.ID, "   ")
	assertKind(t, err, models.KindInvalidInput)

	_, err = f.tasks.Create(context.Background(), actorOf(owner), primitive.NewObjectID(), "x")
	assertKind(t, err, models.KindNotFound)
}

func TestTaskMutationsRequireMembership(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleUser)
	stranger := f.addUser(t, "stranger", models.RoleUser)
	planet := f.addPlanet(t, owner)
	col := f.addColumn(t, planet)
	other := f.addColumn(t, planet)
	ids := f.addTasks(t, col, "A", "B")
	ctx := context.Background()
	as := actorOf(stranger)

	_, err := f.tasks.Create(ctx, as, col.ID, "x")
	assertKind(t, err, models.KindForbidden)

	_, err = f.tasks.Update(ctx, as, ids["A"], TaskChanges{Order: intPtr(2), Content: strPtr("hacked")})
	assertKind(t, err, models.KindForbidden)

	_, err = f.tasks.Update(ctx, as, ids["A"], TaskChanges{ColumnID: &other.ID})
	assertKind(t, err, models.KindForbidden)

	assertKind(t, f.tasks.Delete(ctx, as, ids["B"]), models.KindForbidden)
	assertKind(t, f.columns.Delete(ctx, as, col.ID), models.KindForbidden)

	assert.Equal(t, []string{"A:1", "B:2"}, f.layout(col))
	assert.Empty(t, f.layout(other))
}

func TestTaskAdminBypassesMembership(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleUser)
	admin := f.addUser(t, "admin", models.RoleAdmin)
	col := f.addColumn(t, f.addPlanet(t, owner))
	ids := f.addTasks(t, col, "A", "B", "C")

	_, err := f.tasks.Update(context.Background(), actorOf(admin), ids["A"], TaskChanges{Order: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, []string{"B:1", "C:2", "A:3"}, f.layout(col))
}

func TestTaskUpdateEditsAndMoves(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleUser)
	member := f.addUser(t, "member", models.RoleUser)
	planet := f.addPlanet(t, owner)
	f.addMember(t, planet, member, models.PlanetCollaborator)
	c1 := f.addColumn(t, planet)
	c2 := f.addColumn(t, planet)
	ids := f.addTasks(t, c1, "A", "B")
	f.addTasks(t, c2, "X")

	updated, err := f.tasks.Update(context.Background(), actorOf(member), ids["A"], TaskChanges{
		Order:          intPtr(1),
		ColumnID:       &c2.ID,
		Content:        strPtr("A2"),
		Priority:       strPtr("3"),
		SetAssignee:    true,
		AssignedUserID: &member.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, c2.ID, updated.ColumnID)
	assert.Equal(t, 1, updated.Order)
	assert.Equal(t, []string{"B:1"}, f.layout(c1))
	assert.Equal(t, []string{"A2:1", "X:2"}, f.layout(c2))

	stored := f.db.tasks[ids["A"]]
	assert.Equal(t, "3", stored.Priority)
	require.NotNil(t, stored.AssignedUserID)
	assert.Equal(t, member.ID, *stored.AssignedUserID)

	// Unassign.
	_, err = f.tasks.Update(context.Background(), actorOf(member), ids["A"], TaskChanges{SetAssignee: true})
	require.NoError(t, err)
	assert.Nil(t, f.db.tasks[ids["A"]].AssignedUserID)
}

// interleavedTasks runs before ahead of each details write, standing in for a
// request that committed after the task was read.
type interleavedTasks struct {
	memTasks
	before func()
}

func (s interleavedTasks) UpdateDetails(ctx context.Context, id primitive.ObjectID, d models.TaskDetails) (*models.Task, error) {
	s.before()
	return s.memTasks.UpdateDetails(ctx, id, d)
}

func TestTaskUpdateKeepsConcurrentFieldEdits(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleUser)
	planet := f.addPlanet(t, owner)
	col := f.addColumn(t, planet)
	id := f.addTasks(t, col, "A")["A"]

	tasks := interleavedTasks{memTasks: memTasks{f.db}, before: func() {
		f.db.mu.Lock()
		defer f.db.mu.Unlock()
		task := f.db.tasks[id]
		task.Description = "written elsewhere"
		task.Priority = "2"
		f.db.tasks[id] = task
	}}
	service := NewTaskService(tasks, memColumns{f.db}, memPlanets{f.db}, memUsers{f.db}, f.gate, f.ordered)

	updated, err := service.Update(context.Background(), actorOf(owner), id, TaskChanges{Content: strPtr("A2")})
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Content)
	assert.Equal(t, "written elsewhere", updated.Description)
	assert.Equal(t, "2", updated.Priority)

	stored := f.db.tasks[id]
	assert.Equal(t, "A2", stored.Content)
	assert.Equal(t, "written elsewhere", stored.Description)
	assert.Equal(t, "2", stored.Priority)

	// Clearing one field leaves the others alone.
	updated, err = service.Update(context.Background(), actorOf(owner), id, TaskChanges{Priority: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, updated.Priority)
	assert.Equal(t, "A2", updated.Content)
	assert.Equal(t, "written elsewhere", updated.Description)
}

func TestTaskUpdateRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleUser)
	outsider := f.addUser(t, "outsider", models.RoleUser)
	planet := f.addPlanet(t, owner)
	col := f.addColumn(t, planet)
	foreign := f.addColumn(t, f.addPlanet(t, outsider))
	ids := f.addTasks(t, col, "A", "B")
	ctx := context.Background()
	as := actorOf(owner)
	unknown := primitive.NewObjectID()

	tests := []struct {
		name    string
		changes TaskChanges
		kind    models.ErrorKind
	}{
		{"assignee not a member", TaskChanges{SetAssignee: true, AssignedUserID: &outsider.ID}, models.KindInvalidInput},
		{"assignee unknown", TaskChanges{SetAssignee: true, AssignedUserID: &unknown}, models.KindNotFound},
		{"bad priority", TaskChanges{Priority: strPtr("9")}, models.KindInvalidInput},
		{"content too long", TaskChanges{Content: strPtr("this content is far too long to fit")}, models.KindInvalidInput},
		{"column of another planet", TaskChanges{ColumnID: &foreign.ID}, models.KindInvalidInput},
		{"unknown column", TaskChanges{ColumnID: &unknown}, models.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tasks.Update(ctx, as, ids["A"], tt.changes)
			assertKind(t, err, tt.kind)
			assert.Equal(t, []string{"A:1", "B:2"}, f.layout(col))
		})
	}

	_, err := f.tasks.Update(ctx, as, unknown, TaskChanges{Content: strPtr("x")})
	assertKind(t, err, models.KindNotFound)
}

func TestTaskUpdateEmptyChanges(t *testing.T) {
	assert.True(t, TaskChanges{}.Empty())
	assert.False(t, TaskChanges{SetAssignee: true}.Empty())
	assert.False(t, TaskChanges{Order: intPtr(1)}.Empty())
}

func TestTaskDeleteClosesGap(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleUser)
	col := f.addColumn(t, f.addPlanet(t, owner))
	ids := f.addTasks(t, col, "A", "B", "C")

	require.NoError(t, f.tasks.Delete(context.Background(), actorOf(owner), ids["B"]))
	assert.Equal(t, []string{"A:1", "C:2"}, f.layout(col))
}

func TestTaskSearch(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleUser)
	stranger := f.addUser(t, "stranger", models.RoleUser)
	planet := f.addPlanet(t, owner)
	col := f.addColumn(t, planet)
	f.addTasks(t, col, "Café menu", "Deploy api", "Fix login")
	ctx := context.Background()

	results, err := f.tasks.Search(ctx, actorOf(owner), planet.ID, "cafe")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Café menu", results[0].Task.Content)
	assert.Equal(t, col.ID.Hex(), results[0].ColumnID)

	results, err = f.tasks.Search(ctx, actorOf(owner), planet.ID, "zzzz")
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = f.tasks.Search(ctx, actorOf(owner), planet.ID, " ")
	assertKind(t, err, models.KindInvalidInput)

	_, err = f.tasks.Search(ctx, actorOf(stranger), planet.ID, "cafe")
	assertKind(t, err, models.KindForbidden)
}
