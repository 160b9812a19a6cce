package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"planets-be/config"
	"planets-be/internal/lock"
	"planets-be/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	db      *memDB
	links   *memLinks
	gate    *Gate
	ordered *OrderedTasks
	tasks   *TaskService
	columns *ColumnService
	planets *PlanetService
	invites *InviteService
	users   *UserService
	auth    *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newMemDB()
	users := memUsers{db}
	planets := memPlanets{db}
	links := &memLinks{db: db}
	columns := memColumns{db}
	tasks := memTasks{db}
	invites := memInvites{db}

	gate := NewGate(links)
	ordered := NewOrderedTasks(tasks, columns, lock.NewLocalLocker())
	cfg := &config.Config{
		JWTSecret:            "test-secret",
		JWTAccessExpiration:  time.Minute,
		JWTRefreshExpiration: time.Hour,
	}

	return &fixture{
		db:      db,
		links:   links,
		gate:    gate,
		ordered: ordered,
		tasks:   NewTaskService(tasks, columns, planets, users, gate, ordered),
		columns: NewColumnService(columns, tasks, planets, gate, ordered),
		planets: NewPlanetService(planets, links, columns, invites, users, gate, ordered),
		invites: NewInviteService(invites, planets, users, links, gate, "admin@admin.com"),
		users:   NewUserService(users),
		auth:    NewAuthService(cfg, users),
	}
}

func (f *fixture) addUser(t *testing.T, username string, role models.GlobalRole) models.User {
	t.Helper()
	u := models.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	}
	require.NoError(t, memUsers{f.db}.Create(context.Background(), &u))
	return u
}

func actorOf(u models.User) Actor {
	return Actor{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (f *fixture) addPlanet(t *testing.T, owner models.User) models.Planet {
	t.Helper()
	p := models.Planet{Name: "Mars", Description: "Red", Color: models.DefaultPlanetColor, Theme: models.DefaultTheme()}
	require.NoError(t, memPlanets{f.db}.Create(context.Background(), &p))
	f.addMember(t, p, owner, models.PlanetOwner)
	return p
}

func (f *fixture) addMember(t *testing.T, p models.Planet, u models.User, role models.PlanetRole) {
	t.Helper()
	require.NoError(t, f.links.Create(context.Background(), &models.Collaborator{PlanetID: p.ID, UserID: u.ID, Role: role}))
}

func (f *fixture) addColumn(t *testing.T, p models.Planet) models.Column {
	t.Helper()
	c := models.Column{PlanetID: p.ID, Name: "Todo"}
	require.NoError(t, memColumns{f.db}.Create(context.Background(), &c))
	return c
}

// addTasks creates one task per name at ranks 1..len(names).
func (f *fixture) addTasks(t *testing.T, c models.Column, names ...string) map[string]primitive.ObjectID {
	t.Helper()
	ids := make(map[string]primitive.ObjectID, len(names))
	for i, name := range names {
		task := models.Task{ColumnID: c.ID, Content: name, Order: i + 1}
		require.NoError(t, memTasks{f.db}.Create(context.Background(), &task))
		ids[name] = task.ID
	}
	return ids
}

// layout renders a column as "content:order" entries in ascending order.
func (f *fixture) layout(c models.Column) []string {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []string{}
	for _, task := range f.db.columnTasks(c.ID) {
		out = append(out, fmt.Sprintf("%s:%d", task.Content, task.Order))
	}
	return out
}

func assertKind(t *testing.T, err error, kind models.ErrorKind) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Equal(t, kind, models.KindOf(err), err.Error())
	}
}
