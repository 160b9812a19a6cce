package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"planets-be/config"
	"planets-be/internal/middleware"
	"planets-be/internal/models"
	"planets-be/internal/services"
	"planets-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testCfg = &config.Config{JWTSecret: "test-secret"}

type stubTasks struct {
	created    string
	changes    *services.TaskChanges
	updateErr  error
	results    []models.TaskSearchResult
	searchedBy services.Actor
}

func (s *stubTasks) Create(_ context.Context, _ services.Actor, columnID primitive.ObjectID, content string) (*models.Task, error) {
	s.created = content
	return &models.Task{ID: primitive.NewObjectID(), ColumnID: columnID, Content: content, Order: 1}, nil
}

func (s *stubTasks) Update(_ context.Context, _ services.Actor, taskID primitive.ObjectID, changes services.TaskChanges) (*models.Task, error) {
	s.changes = &changes
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &models.Task{ID: taskID, Content: "task", Order: 1}, nil
}

func (s *stubTasks) Delete(context.Context, services.Actor, primitive.ObjectID) error {
	return nil
}

func (s *stubTasks) Search(_ context.Context, actor services.Actor, _ primitive.ObjectID, _ string) ([]models.TaskSearchResult, error) {
	s.searchedBy = actor
	return s.results, nil
}

type stubColumns struct {
	columns []models.ColumnWithTasks
	err     error
}

func (s *stubColumns) Create(_ context.Context, _ services.Actor, planetID primitive.ObjectID, name string) (*models.Column, error) {
	return &models.Column{ID: primitive.NewObjectID(), PlanetID: planetID, Name: name}, nil
}

func (s *stubColumns) ListWithTasks(context.Context, services.Actor, primitive.ObjectID) ([]models.ColumnWithTasks, error) {
	return s.columns, s.err
}

func (s *stubColumns) Delete(context.Context, services.Actor, primitive.ObjectID) error {
	return s.err
}

type stubStats struct {
	period string
}

func (s *stubStats) ForPlanet(_ context.Context, _ services.Actor, _ primitive.ObjectID, period string) (*models.PlanetStatistics, error) {
	s.period = period
	return &models.PlanetStatistics{Period: period}, nil
}

type stubAuth struct {
	err error
}

func (s *stubAuth) Register(_ context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	return &models.AuthResponse{Token: "t", RefreshToken: "r", Message: req.Username}, s.err
}

func (s *stubAuth) Login(context.Context, models.LoginRequest) (*models.AuthResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.AuthResponse{Token: "t", RefreshToken: "r"}, nil
}

func (s *stubAuth) Refresh(context.Context, string) (*models.AuthResponse, error) {
	return &models.AuthResponse{Token: "t2", RefreshToken: "r2"}, nil
}

func (s *stubAuth) Logout(context.Context, services.Actor) error {
	return nil
}

func (s *stubAuth) Me(_ context.Context, actor services.Actor) (*models.User, error) {
	return &models.User{ID: actor.UserID, Email: actor.Email, Password: "hash"}, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testServer struct {
	router  *gin.Engine
	token   string
	actorID primitive.ObjectID
	tasks   *stubTasks
	columns *stubColumns
	stats   *stubStats
	auth    *stubAuth
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		actorID: primitive.NewObjectID(),
		tasks:   &stubTasks{},
		columns: &stubColumns{},
		stats:   &stubStats{},
		auth:    &stubAuth{},
	}
	token, err := utils.GenerateAccessToken(s.actorID.Hex(), "me@example.com", "user", testCfg.JWTSecret, time.Minute)
	require.NoError(t, err)
	s.token = token

	kanban := NewKanbanHandler(s.columns, s.tasks)
	search := NewSearchHandler(s.tasks)
	stats := NewStatisticsHandler(s.stats)
	auth := NewAuthHandler(s.auth)

	r := gin.New()
	r.GET("/health", Health(stubPinger{}))
	r.POST("/auth/register", auth.Register)
	r.POST("/auth/login", auth.Login)
	p := r.Group("/", middleware.Auth(testCfg))
	p.GET("/auth/me", auth.GetMe)
	p.GET("/planets/:planetId/columns", kanban.GetColumns)
	p.GET("/planets/:planetId/tasks/search", search.SearchTasks)
	p.GET("/planets/:planetId/statistics", stats.GetStatistics)
	p.POST("/planets/columns/:columnId/task", kanban.CreateTask)
	p.PUT("/planets/tasks/:taskId", kanban.UpdateTask)
	p.DELETE("/planets/columns/:columnId", kanban.DeleteColumn)
	s.router = r
	return s
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestStatusFor(t *testing.T) {
	cases := map[models.ErrorKind]int{
		models.KindNotFound:     http.StatusNotFound,
		models.KindForbidden:    http.StatusForbidden,
		models.KindUnauthorized: http.StatusUnauthorized,
		models.KindConflict:     http.StatusConflict,
		models.KindInvalidInput: http.StatusBadRequest,
		models.KindInternal:     http.StatusInternalServerError,
		"something-else":        http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, statusFor(kind), string(kind))
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	s := newTestServer(t)
	s.columns.err = errors.New("connection reset by peer")

	w := s.do(http.MethodGet, "/planets/"+primitive.NewObjectID().Hex()+"/columns", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, string(models.KindInternal), body["error"])
	assert.NotContains(t, body["message"], "connection reset")
}

func TestInvalidObjectIDParam(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/planets/not-an-id/columns", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid planetId.", decode(t, w)["message"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetColumns(t *testing.T) {
	s := newTestServer(t)
	path := "/planets/" + primitive.NewObjectID().Hex() + "/columns"

	w := s.do(http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Planet has no columns.", body["message"])

	s.columns.columns = []models.ColumnWithTasks{{Column: models.Column{Name: "Todo"}, Tasks: []models.Task{}}}
	w = s.do(http.MethodGet, path, "")
	body = decode(t, w)
	assert.Equal(t, "Planet columns retrieved successfully.", body["message"])
	assert.Len(t, body["columns"], 1)
}

func TestDeleteColumnNotFound(t *testing.T) {
	s := newTestServer(t)
	s.columns.err = models.NewNotFound("Column not found.")

	w := s.do(http.MethodDelete, "/planets/columns/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Column not found.", decode(t, w)["message"])
}

func TestCreateTask(t *testing.T) {
	s := newTestServer(t)
	path := "/planets/columns/" + primitive.NewObjectID().Hex() + "/task"

	w := s.do(http.MethodPost, path, `{"content":"write tests"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "write tests", s.tasks.created)
	assert.Contains(t, decode(t, w), "newTask")

	w = s.do(http.MethodPost, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTaskWithoutRecognisedFields(t *testing.T) {
	s := newTestServer(t)
	path := "/planets/tasks/" + primitive.NewObjectID().Hex()

	for _, body := range []string{`{}`, `{"colour":"red"}`} {
		w := s.do(http.MethodPut, path, body)
		assert.Equal(t, http.StatusNoContent, w.Code, body)
	}
	assert.Nil(t, s.tasks.changes)
}

func TestUpdateTask(t *testing.T) {
	s := newTestServer(t)
	path := "/planets/tasks/" + primitive.NewObjectID().Hex()
	columnID := primitive.NewObjectID()

	w := s.do(http.MethodPut, path, `{"order":"2","columnId":"`+columnID.Hex()+`","priority":3,"assignedUserId":null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, s.tasks.changes)
	changes := *s.tasks.changes
	require.NotNil(t, changes.Order)
	assert.Equal(t, 2, *changes.Order)
	assert.Equal(t, columnID, *changes.ColumnID)
	assert.Equal(t, "3", *changes.Priority)
	assert.True(t, changes.SetAssignee)
	assert.Nil(t, changes.AssignedUserID)
	assert.Nil(t, changes.Content)
	assert.Equal(t, "Task updated successfully.", decode(t, w)["message"])
}

func TestUpdateTaskErrors(t *testing.T) {
	s := newTestServer(t)
	path := "/planets/tasks/" + primitive.NewObjectID().Hex()

	w := s.do(http.MethodPut, path, `{"columnId":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, s.tasks.changes)

	w = s.do(http.MethodPut, path, `{"order":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.tasks.updateErr = models.NewForbidden("You do not have permission to edit this task.")
	w = s.do(http.MethodPut, path, `{"content":"x"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestParseTaskChanges(t *testing.T) {
	assignee := primitive.NewObjectID()
	raw := func(s string) map[string]json.RawMessage {
		var m map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(s), &m))
		return m
	}

	changes, err := parseTaskChanges(raw(`{"order":4,"content":"a","description":null,"assignedUserId":"` + assignee.Hex() + `"}`))
	require.NoError(t, err)
	assert.Equal(t, 4, *changes.Order)
	assert.Equal(t, "a", *changes.Content)
	require.NotNil(t, changes.Description)
	assert.Equal(t, "", *changes.Description)
	assert.Nil(t, changes.Priority)
	assert.Equal(t, assignee, *changes.AssignedUserID)

	changes, err = parseTaskChanges(raw(`{"order":null,"columnId":null}`))
	require.NoError(t, err)
	assert.True(t, changes.Empty())

	changes, err = parseTaskChanges(raw(`{"assignedUserId":""}`))
	require.NoError(t, err)
	assert.True(t, changes.SetAssignee)
	assert.Nil(t, changes.AssignedUserID)

	_, err = parseTaskChanges(raw(`{"order":"two"}`))
	assert.Error(t, err)
	_, err = parseTaskChanges(raw(`{"assignedUserId":"zzz"}`))
	assert.Error(t, err)
	_, err = parseTaskChanges(raw(`{"content":{"x":1}}`))
	assert.Error(t, err)
}

func TestSearchTasks(t *testing.T) {
	s := newTestServer(t)
	path := "/planets/" + primitive.NewObjectID().Hex() + "/tasks/search"

	w := s.do(http.MethodGet, path+"?q=%20", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for i := 0; i < 15; i++ {
		s.tasks.results = append(s.tasks.results, models.TaskSearchResult{Score: 15 - i})
	}
	w = s.do(http.MethodGet, path+"?q=plan", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Results, defaultSearchLimit)
	assert.Equal(t, 15, resp.Total)
	assert.Equal(t, "plan", resp.Query)
	assert.Equal(t, s.actorID, s.tasks.searchedBy.UserID)

	w = s.do(http.MethodGet, path+"?q=plan&limit=3", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Results, 3)
}

func TestGetStatistics(t *testing.T) {
	s := newTestServer(t)
	path := "/planets/" + primitive.NewObjectID().Hex() + "/statistics"

	w := s.do(http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "30d", s.stats.period)

	s.do(http.MethodGet, path+"?period=7d", "")
	assert.Equal(t, "7d", s.stats.period)
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/auth/register", `{"firstName":"A","lastName":"B","username":"ab","email":"not-an-email","password":"secret"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/auth/register", `{"firstName":"A","lastName":"B","username":"ab","email":"ab@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/auth/login", `{"email":"ab","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t", decode(t, w)["token"])

	s.auth.err = models.NewUnauthorized("Incorrect password.")
	w = s.do(http.MethodPost, "/auth/login", `{"email":"ab","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/auth/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "hash")
	assert.Contains(t, w.Body.String(), s.actorID.Hex())
}

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/up", Health(stubPinger{}))
	r.GET("/down", Health(stubPinger{err: errors.New("no servers")}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/up", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
