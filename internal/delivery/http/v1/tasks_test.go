package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mek0124/TrackMasterPro/internal/models"
	"github.com/mek0124/TrackMasterPro/internal/realtime"
	"github.com/mek0124/TrackMasterPro/internal/services"
)

const testToken = "test-token"

var testUser = &models.User{ID: 5, Email: "alice@example.com", IsActive: true}

type fakeAuthService struct{}

func (fakeAuthService) Register(context.Context, services.RegisterParams) (*models.User, error) {
	return nil, services.ErrUserAlreadyExists
}

func (fakeAuthService) Login(context.Context, services.LoginParams) (*services.LoginResult, error) {
	return nil, services.ErrUserNotFound
}

func (fakeAuthService) ParseToken(string) (*jwt.RegisteredClaims, error) {
	return nil, jwt.ErrTokenMalformed
}

func (fakeAuthService) VerifyToken(_ context.Context, token string) (*models.User, error) {
	if token != testToken {
		return nil, jwt.ErrTokenMalformed
	}
	return testUser, nil
}

type fakeTaskService struct {
	listFn   func(ctx context.Context, requesterID, ownerID int64) ([]*models.Task, error)
	createFn func(ctx context.Context, requesterID int64, params services.CreateTaskParams) (*models.Task, error)
	updateFn func(ctx context.Context, requesterID, taskID int64, patch services.TaskPatch) (*models.Task, error)
	deleteFn func(ctx context.Context, requesterID, taskID int64) error
}

func (f *fakeTaskService) ListTasks(ctx context.Context, requesterID, ownerID int64) ([]*models.Task, error) {
	return f.listFn(ctx, requesterID, ownerID)
}

func (f *fakeTaskService) CreateTask(ctx context.Context, requesterID int64, params services.CreateTaskParams) (*models.Task, error) {
	return f.createFn(ctx, requesterID, params)
}

func (f *fakeTaskService) UpdateTask(ctx context.Context, requesterID, taskID int64, patch services.TaskPatch) (*models.Task, error) {
	return f.updateFn(ctx, requesterID, taskID, patch)
}

func (f *fakeTaskService) DeleteTask(ctx context.Context, requesterID, taskID int64) error {
	return f.deleteFn(ctx, requesterID, taskID)
}

type stubSender struct {
	sent []any
}

func (s *stubSender) Send(v any) error {
	s.sent = append(s.sent, v)
	return nil
}

func (s *stubSender) Close() error { return nil }

func newTestRouter(tasks services.TaskService, registry *realtime.Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(zerolog.Nop(), fakeAuthService{}, tasks, registry, nil)

	router := gin.New()
	api := router.Group("/api/v1")
	taskRouter := api.Group("/tasks", h.HandleAuthMiddleware)
	taskRouter.POST("", h.HandleCreateTask)
	taskRouter.POST("/:userId/all", h.HandleListTasks)
	taskRouter.PUT("/:taskId", h.HandleUpdateTask)
	taskRouter.DELETE("/:taskId", h.HandleDeleteTask)
	return router
}

func doRequest(router *gin.Engine, method, path, body string, authenticated bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(&fakeTaskService{}, realtime.NewRegistry(zerolog.Nop()))

	t.Run("missing header", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/v1/tasks/5/all", "", false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Not authenticated", decodeBody(t, w)["detail"])
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/5/all", strings.NewReader(""))
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/5/all", strings.NewReader(""))
		req.Header.Set("Authorization", "Bearer wrong")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Could not validate credentials", decodeBody(t, w)["detail"])
	})
}

func TestHandleListTasks(t *testing.T) {
	t.Run("forbidden for another user's list", func(t *testing.T) {
		svc := &fakeTaskService{
			listFn: func(_ context.Context, requesterID, ownerID int64) ([]*models.Task, error) {
				assert.Equal(t, testUser.ID, requesterID)
				assert.Equal(t, int64(6), ownerID)
				return nil, services.ErrForbidden
			},
		}
		router := newTestRouter(svc, realtime.NewRegistry(zerolog.Nop()))

		w := doRequest(router, http.MethodPost, "/api/v1/tasks/6/all", "", true)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Not authorized to access these tasks", decodeBody(t, w)["detail"])
	})

	t.Run("returns the owner's tasks", func(t *testing.T) {
		svc := &fakeTaskService{
			listFn: func(context.Context, int64, int64) ([]*models.Task, error) {
				return []*models.Task{
					{ID: 1, UserID: 5, Title: "Buy milk", Priority: models.PriorityLow},
				}, nil
			},
		}
		router := newTestRouter(svc, realtime.NewRegistry(zerolog.Nop()))

		w := doRequest(router, http.MethodPost, "/api/v1/tasks/5/all", "", true)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "Tasks retrieved successfully", body["message"])
		tasks, ok := body["tasks"].([]any)
		require.True(t, ok)
		require.Len(t, tasks, 1)
		task := tasks[0].(map[string]any)
		assert.Equal(t, "Buy milk", task["title"])
		assert.Equal(t, float64(5), task["user_id"])
	})

	t.Run("invalid user id", func(t *testing.T) {
		router := newTestRouter(&fakeTaskService{}, realtime.NewRegistry(zerolog.Nop()))
		w := doRequest(router, http.MethodPost, "/api/v1/tasks/abc/all", "", true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleCreateTask(t *testing.T) {
	const createBody = `{
		"title": "Buy milk",
		"detail": "two liters",
		"date": "2024-01-01",
		"time": "09:00",
		"priority": "low",
		"userId": 5
	}`

	t.Run("created task is returned and announced", func(t *testing.T) {
		svc := &fakeTaskService{
			createFn: func(_ context.Context, requesterID int64, params services.CreateTaskParams) (*models.Task, error) {
				assert.Equal(t, testUser.ID, requesterID)
				assert.Equal(t, int64(5), params.UserID)
				assert.False(t, params.Completed)
				return &models.Task{
					ID:        1,
					UserID:    params.UserID,
					Title:     params.Title,
					Detail:    params.Detail,
					Date:      params.Date,
					Time:      params.Time,
					Priority:  params.Priority,
					Completed: params.Completed,
				}, nil
			},
		}
		registry := realtime.NewRegistry(zerolog.Nop())
		listener := &stubSender{}
		registry.Register(5, listener)

		router := newTestRouter(svc, registry)
		w := doRequest(router, http.MethodPost, "/api/v1/tasks", createBody, true)
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "Task created successfully", body["message"])
		task := body["task"].(map[string]any)
		assert.Equal(t, "Buy milk", task["title"])
		assert.Equal(t, "low", task["priority"])
		assert.Equal(t, false, task["completed"])

		// Index 0 is the registration ack.
		require.Len(t, listener.sent, 2)
		event, ok := listener.sent[1].(taskEvent)
		require.True(t, ok)
		assert.Equal(t, realtime.TypeTaskCreated, event.Type)
		assert.Equal(t, int64(1), event.Task.ID)
	})

	t.Run("declared owner mismatch is forbidden", func(t *testing.T) {
		svc := &fakeTaskService{
			createFn: func(context.Context, int64, services.CreateTaskParams) (*models.Task, error) {
				return nil, services.ErrForbidden
			},
		}
		router := newTestRouter(svc, realtime.NewRegistry(zerolog.Nop()))

		w := doRequest(router, http.MethodPost, "/api/v1/tasks", createBody, true)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Not authorized to create task for this user", decodeBody(t, w)["detail"])
	})

	t.Run("invalid priority is rejected", func(t *testing.T) {
		router := newTestRouter(&fakeTaskService{}, realtime.NewRegistry(zerolog.Nop()))
		const body = `{"title":"x","detail":"y","date":"2024-01-01","time":"09:00","priority":"urgent","userId":5}`
		w := doRequest(router, http.MethodPost, "/api/v1/tasks", body, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleUpdateTask(t *testing.T) {
	t.Run("merge-patch is forwarded", func(t *testing.T) {
		svc := &fakeTaskService{
			updateFn: func(_ context.Context, requesterID, taskID int64, patch services.TaskPatch) (*models.Task, error) {
				assert.Equal(t, testUser.ID, requesterID)
				assert.Equal(t, int64(3), taskID)
				require.NotNil(t, patch.Completed)
				assert.True(t, *patch.Completed)
				assert.Nil(t, patch.Title)
				assert.Nil(t, patch.Detail)
				return &models.Task{ID: 3, UserID: 5, Title: "Buy milk", Completed: true}, nil
			},
		}
		router := newTestRouter(svc, realtime.NewRegistry(zerolog.Nop()))

		w := doRequest(router, http.MethodPut, "/api/v1/tasks/3", `{"completed":true}`, true)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "Task updated successfully", body["message"])
		task := body["task"].(map[string]any)
		assert.Equal(t, true, task["completed"])
	})

	t.Run("unknown task", func(t *testing.T) {
		svc := &fakeTaskService{
			updateFn: func(context.Context, int64, int64, services.TaskPatch) (*models.Task, error) {
				return nil, services.ErrTaskNotFound
			},
		}
		router := newTestRouter(svc, realtime.NewRegistry(zerolog.Nop()))

		w := doRequest(router, http.MethodPut, "/api/v1/tasks/99", `{}`, true)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Task not found", decodeBody(t, w)["detail"])
	})

	t.Run("not the owner", func(t *testing.T) {
		svc := &fakeTaskService{
			updateFn: func(context.Context, int64, int64, services.TaskPatch) (*models.Task, error) {
				return nil, services.ErrForbidden
			},
		}
		router := newTestRouter(svc, realtime.NewRegistry(zerolog.Nop()))

		w := doRequest(router, http.MethodPut, "/api/v1/tasks/3", `{}`, true)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Not authorized to update this task", decodeBody(t, w)["detail"])
	})
}

func TestHandleDeleteTask(t *testing.T) {
	t.Run("deletes and announces", func(t *testing.T) {
		svc := &fakeTaskService{
			deleteFn: func(_ context.Context, requesterID, taskID int64) error {
				assert.Equal(t, testUser.ID, requesterID)
				assert.Equal(t, int64(3), taskID)
				return nil
			},
		}
		registry := realtime.NewRegistry(zerolog.Nop())
		listener := &stubSender{}
		registry.Register(5, listener)

		router := newTestRouter(svc, registry)
		w := doRequest(router, http.MethodDelete, "/api/v1/tasks/3", "", true)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Task deleted successfully", decodeBody(t, w)["message"])

		require.Len(t, listener.sent, 2)
		event, ok := listener.sent[1].(taskDeletedEvent)
		require.True(t, ok)
		assert.Equal(t, realtime.TypeTaskDeleted, event.Type)
		assert.Equal(t, int64(3), event.TaskID)
	})

	t.Run("unknown task", func(t *testing.T) {
		svc := &fakeTaskService{
			deleteFn: func(context.Context, int64, int64) error {
				return services.ErrTaskNotFound
			},
		}
		router := newTestRouter(svc, realtime.NewRegistry(zerolog.Nop()))

		w := doRequest(router, http.MethodDelete, "/api/v1/tasks/99", "", true)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("not the owner", func(t *testing.T) {
		svc := &fakeTaskService{
			deleteFn: func(context.Context, int64, int64) error {
				return services.ErrForbidden
			},
		}
		router := newTestRouter(svc, realtime.NewRegistry(zerolog.Nop()))

		w := doRequest(router, http.MethodDelete, "/api/v1/tasks/3", "", true)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Not authorized to delete this task", decodeBody(t, w)["detail"])
	})
}
