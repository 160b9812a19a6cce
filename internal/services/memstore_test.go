package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"planets-be/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memDB backs the in-memory store fakes used by the service tests.
type memDB struct {
	mu      sync.Mutex
	users   map[primitive.ObjectID]models.User
	planets map[primitive.ObjectID]models.Planet
	links   map[primitive.ObjectID]models.Collaborator
	columns map[primitive.ObjectID]models.Column
	tasks   map[primitive.ObjectID]models.Task
	invites map[primitive.ObjectID]models.Invite

	applyErr  error
	rankBatch [][]models.RankChange
}

func newMemDB() *memDB {
	return &memDB{
		users:   map[primitive.ObjectID]models.User{},
		planets: map[primitive.ObjectID]models.Planet{},
		links:   map[primitive.ObjectID]models.Collaborator{},
		columns: map[primitive.ObjectID]models.Column{},
		tasks:   map[primitive.ObjectID]models.Task{},
		invites: map[primitive.ObjectID]models.Invite{},
	}
}

var errDuplicate = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key"}}}

func newID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

type memUsers struct{ db *memDB }

func (s memUsers) Create(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return errDuplicate
		}
	}
	newID(&u.ID)
	s.db.users[u.ID] = *u
	return nil
}

func (s memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func (s memUsers) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := s.db.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s memUsers) FindByLogin(_ context.Context, login string) ([]models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.User
	for _, u := range s.db.users {
		if u.Email == strings.ToLower(login) || u.Username == login {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s memUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(context.Background(), email)
	return err == nil, nil
}

func (s memUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s memUsers) Update(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[u.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	s.db.users[u.ID] = *u
	return nil
}

func (s memUsers) UpdateRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.RefreshToken = token
	s.db.users[id] = u
	return nil
}

type memPlanets struct{ db *memDB }

func (s memPlanets) Create(_ context.Context, p *models.Planet) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	newID(&p.ID)
	s.db.planets[p.ID] = *p
	return nil
}

func (s memPlanets) FindByID(_ context.Context, id primitive.ObjectID) (*models.Planet, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.planets[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &p, nil
}

func (s memPlanets) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Planet, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []models.Planet{}
	for _, id := range ids {
		if p, ok := s.db.planets[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s memPlanets) Update(_ context.Context, p *models.Planet) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.planets[p.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	s.db.planets[p.ID] = *p
	return nil
}

func (s memPlanets) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.planets, id)
	return nil
}

type memLinks struct {
	db        *memDB
	createErr error
}

func (s memLinks) Create(_ context.Context, l *models.Collaborator) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.links {
		if existing.PlanetID == l.PlanetID && existing.UserID == l.UserID {
			return errDuplicate
		}
	}
	newID(&l.ID)
	s.db.links[l.ID] = *l
	return nil
}

func (s memLinks) Find(_ context.Context, planetID, userID primitive.ObjectID) (*models.Collaborator, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, l := range s.db.links {
		if l.PlanetID == planetID && l.UserID == userID {
			return &l, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s memLinks) FindOwner(_ context.Context, planetID primitive.ObjectID) (*models.Collaborator, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, l := range s.db.links {
		if l.PlanetID == planetID && l.Role == models.PlanetOwner {
			return &l, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s memLinks) ListByPlanet(_ context.Context, planetID primitive.ObjectID) ([]models.Collaborator, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Collaborator
	for _, l := range s.db.links {
		if l.PlanetID == planetID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (s memLinks) ListByUser(_ context.Context, userID primitive.ObjectID, role models.PlanetRole) ([]models.Collaborator, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Collaborator
	for _, l := range s.db.links {
		if l.UserID == userID && l.Role == role {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s memLinks) UpdateRole(_ context.Context, id primitive.ObjectID, role models.PlanetRole) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	l, ok := s.db.links[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	l.Role = role
	s.db.links[id] = l
	return nil
}

func (s memLinks) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.links, id)
	return nil
}

func (s memLinks) DeleteByPlanet(_ context.Context, planetID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, l := range s.db.links {
		if l.PlanetID == planetID {
			delete(s.db.links, id)
		}
	}
	return nil
}

type memColumns struct{ db *memDB }

func (s memColumns) Create(_ context.Context, c *models.Column) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	newID(&c.ID)
	s.db.columns[c.ID] = *c
	return nil
}

func (s memColumns) FindByID(_ context.Context, id primitive.ObjectID) (*models.Column, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.columns[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &c, nil
}

func (s memColumns) ListByPlanet(_ context.Context, planetID primitive.ObjectID) ([]models.Column, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Column
	for _, c := range s.db.columns {
		if c.PlanetID == planetID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (s memColumns) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.columns, id)
	return nil
}

type memTasks struct{ db *memDB }

func (s memTasks) Create(_ context.Context, t *models.Task) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	newID(&t.ID)
	s.db.tasks[t.ID] = *t
	return nil
}

func (s memTasks) FindByID(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tasks[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &t, nil
}

func (s memTasks) ListByColumn(_ context.Context, columnID primitive.ObjectID) ([]models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.columnTasks(columnID), nil
}

func (db *memDB) columnTasks(columnID primitive.ObjectID) []models.Task {
	var out []models.Task
	for _, t := range db.tasks {
		if t.ColumnID == columnID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out
}

func (s memTasks) ListByColumns(_ context.Context, columnIDs []primitive.ObjectID) ([]models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Task
	for _, id := range columnIDs {
		out = append(out, s.db.columnTasks(id)...)
	}
	return out, nil
}

func (s memTasks) MaxOrder(_ context.Context, columnID primitive.ObjectID) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	maxOrder := 0
	for _, t := range s.db.tasks {
		if t.ColumnID == columnID && t.Order > maxOrder {
			maxOrder = t.Order
		}
	}
	return maxOrder, nil
}

func (s memTasks) ApplyRanks(_ context.Context, changes []models.RankChange) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.applyErr != nil {
		return s.db.applyErr
	}
	s.db.rankBatch = append(s.db.rankBatch, append([]models.RankChange(nil), changes...))
	for _, c := range changes {
		t, ok := s.db.tasks[c.TaskID]
		if !ok {
			continue
		}
		t.ColumnID = c.ColumnID
		t.Order = c.Order
		s.db.tasks[c.TaskID] = t
	}
	return nil
}

func (s memTasks) UpdateDetails(_ context.Context, id primitive.ObjectID, d models.TaskDetails) (*models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored, ok := s.db.tasks[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if d.Content != nil {
		stored.Content = *d.Content
	}
	if d.Description != nil {
		stored.Description = *d.Description
	}
	if d.Priority != nil {
		stored.Priority = *d.Priority
	}
	if d.SetAssignee {
		stored.AssignedUserID = d.AssignedUserID
	}
	stored.UpdatedAt = d.UpdatedAt
	s.db.tasks[id] = stored
	return &stored, nil
}

func (s memTasks) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.tasks, id)
	return nil
}

func (s memTasks) DeleteByColumn(_ context.Context, columnID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, t := range s.db.tasks {
		if t.ColumnID == columnID {
			delete(s.db.tasks, id)
		}
	}
	return nil
}

type memInvites struct{ db *memDB }

func (s memInvites) Create(_ context.Context, i *models.Invite) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.invites {
		if existing.PlanetID == i.PlanetID && existing.InvitedUserID == i.InvitedUserID {
			return errDuplicate
		}
	}
	newID(&i.ID)
	s.db.invites[i.ID] = *i
	return nil
}

func (s memInvites) FindByID(_ context.Context, id primitive.ObjectID) (*models.Invite, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i, ok := s.db.invites[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &i, nil
}

func (s memInvites) Exists(_ context.Context, planetID, userID primitive.ObjectID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, i := range s.db.invites {
		if i.PlanetID == planetID && i.InvitedUserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s memInvites) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Invite, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Invite
	for _, i := range s.db.invites {
		if i.InvitedUserID == userID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s memInvites) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.invites, id)
	return nil
}

func (s memInvites) DeleteByPlanet(_ context.Context, planetID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, i := range s.db.invites {
		if i.PlanetID == planetID {
			delete(s.db.invites, id)
		}
	}
	return nil
}
