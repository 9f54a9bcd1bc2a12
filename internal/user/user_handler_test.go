package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/user"
	usererrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/user/errors"
	mock_user "github.com/Mermas-CC/Gestion-sigead-sub000/internal/user/mock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (*mock_user.MockService, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	svc := mock_user.NewMockService(ctrl)
	h := user.NewHandler(svc, zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "admin-1")
		c.Set("role", "admin")
		c.Next()
	})
	r.GET("/users", h.GetAll)
	r.GET("/users/:id", h.GetByID)
	r.POST("/users", h.Create)
	r.PATCH("/users/:id/status", h.ToggleStatus)
	r.DELETE("/users/:id", h.Delete)
	return svc, r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserHandler_GetAll_Paginates(t *testing.T) {
	svc, r := newRouter(t)

	users := make([]user.UserResponse, 12)
	for i := range users {
		users[i] = user.UserResponse{ID: string(rune('a' + i))}
	}
	svc.EXPECT().GetAll(gomock.Any(), user.ListFilter{Query: "ana", Role: "admin"}).Return(users, nil)

	w := doJSON(r, http.MethodGet, "/users?q=ana&role=ADMIN&page=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []user.UserResponse `json:"data"`
		Meta struct {
			Total int `json:"total"`
			Page  int `json:"page"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 12, resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
}

func TestUserHandler_GetByID_NotFound(t *testing.T) {
	svc, r := newRouter(t)
	svc.EXPECT().GetByID(gomock.Any(), "u-9").Return(user.UserResponse{}, usererrors.ErrUserNotFound)

	w := doJSON(r, http.MethodGet, "/users/u-9", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
}

func TestUserHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, r := newRouter(t)
		body := user.CreateUserRequest{Name: "Ana", Email: "ana@mail.com", Password: "password123"}
		svc.EXPECT().Create(gomock.Any(), body).Return(user.UserResponse{ID: "u-1", Email: "ana@mail.com"}, nil)

		w := doJSON(r, http.MethodPost, "/users", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"u-1"`)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, r := newRouter(t)

		w := doJSON(r, http.MethodPost, "/users", map[string]string{"name": "Ana"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "MISSING_FIELDS")
	})

	t.Run("duplicate", func(t *testing.T) {
		svc, r := newRouter(t)
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(user.UserResponse{}, usererrors.ErrUserAlreadyExists)

		w := doJSON(r, http.MethodPost, "/users", user.CreateUserRequest{Name: "Ana", Email: "ana@mail.com", Password: "password123"})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestUserHandler_ToggleStatus(t *testing.T) {
	t.Run("passes actor id", func(t *testing.T) {
		svc, r := newRouter(t)
		svc.EXPECT().ToggleStatus(gomock.Any(), "admin-1", "u-2", false).Return(nil)

		w := doJSON(r, http.MethodPatch, "/users/u-2/status", map[string]bool{"is_active": false})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing flag", func(t *testing.T) {
		_, r := newRouter(t)

		w := doJSON(r, http.MethodPatch, "/users/u-2/status", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_Delete(t *testing.T) {
	svc, r := newRouter(t)
	svc.EXPECT().Delete(gomock.Any(), "admin-1", "u-2").DoAndReturn(func(ctx context.Context, actorID, id string) error {
		return nil
	})

	w := doJSON(r, http.MethodDelete, "/users/u-2", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
