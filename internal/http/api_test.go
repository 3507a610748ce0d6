package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quest-tracker/internal/domain"
	"quest-tracker/internal/repository/sqlite"
	"quest-tracker/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	router, _ := newTestRouterWithDB(t)
	return router
}

func newTestRouterWithDB(t *testing.T) (*gin.Engine, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "quests.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := sqlite.NewUserRepository(db)
	tasks := sqlite.NewTaskRepository(db)
	require.NoError(t, service.InitStore(context.Background(), users, tasks))

	logger, _ := test.NewNullLogger()
	opts := service.Options{Logger: logger}
	handler := NewHandler(
		service.NewUserService(users, opts),
		service.NewTaskService(tasks, opts),
		service.NewProgressionService(tasks, opts),
		service.NewLeaderboardService(users, opts),
		logger,
	)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterUserReportsCreation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/users", gin.H{"id": 7, "username": "alice"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = doJSON(t, router, http.MethodPost, "/api/users", gin.H{"id": 7, "username": "other"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"created":false}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/users/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 1, user.Level)
}

func TestRegisterUserRequiresID(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/users", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskLifecycle(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/users", gin.H{"id": 1}).Code)

	rec := doJSON(t, router, http.MethodPost, "/api/users/1/tasks", gin.H{"title": "Read book", "xp": 120})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodGet, "/api/users/1/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Read book", tasks[0].Title)
	assert.False(t, tasks[0].IsDone)

	path := "/api/users/1/tasks/" + jsonNumber(created.ID) + "/complete"
	rec = doJSON(t, router, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var completion domain.Completion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &completion))
	assert.Equal(t, 120, completion.XPGained)
	assert.True(t, completion.LeveledUp)
	assert.Equal(t, 2, completion.NewLevel)

	rec = doJSON(t, router, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/leaderboard?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var top []domain.LeaderboardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &top))
	require.Len(t, top, 1)
	assert.Equal(t, domain.DefaultUsername, top[0].Username)
	assert.Equal(t, 2, top[0].Level)
}

func TestCreateTaskErrors(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/users/99/tasks", gin.H{"title": "Orphan"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/users", gin.H{"id": 1}).Code)
	rec = doJSON(t, router, http.MethodPost, "/api/users/1/tasks", gin.H{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/users/abc/tasks", gin.H{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTaskReportsRemoval(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/users", gin.H{"id": 1}).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/users/1/tasks", gin.H{"title": "Walk"}).Code)

	rec := doJSON(t, router, http.MethodDelete, "/api/users/1/tasks/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":true}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodDelete, "/api/users/1/tasks/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":false}`, rec.Body.String())
}

func TestCompleteUnknownTask(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/users", gin.H{"id": 1}).Code)

	rec := doJSON(t, router, http.MethodPost, "/api/users/1/tasks/42/complete", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLeaderboardRejectsBadLimit(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodGet, "/api/leaderboard?limit=0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodGet, "/api/leaderboard?limit=x", nil).Code)

	rec := doJSON(t, router, http.MethodGet, "/api/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestStorageFailureIsServiceUnavailable(t *testing.T) {
	router, db := newTestRouterWithDB(t)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/users", gin.H{"id": 1}).Code)
	require.NoError(t, db.Close())

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/users/1", nil},
		{http.MethodGet, "/api/users/1/tasks", nil},
		{http.MethodPost, "/api/users/1/tasks", gin.H{"title": "Scout"}},
		{http.MethodPost, "/api/users/1/tasks/1/complete", nil},
		{http.MethodGet, "/api/leaderboard", nil},
	} {
		rec := doJSON(t, router, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, tc.path)
		assert.JSONEq(t, `{"error":"storage unavailable"}`, rec.Body.String(), tc.path)
	}
}

func jsonNumber(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
