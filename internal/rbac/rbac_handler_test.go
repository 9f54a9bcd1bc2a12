package rbac

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =========================================
// Fake Service
// =========================================

type fakeService struct {
	enforceFn func(role, resource, action string) (bool, error)
}

func (f *fakeService) LoadPolicy(ctx context.Context) error { return nil }

func (f *fakeService) Enforce(ctx context.Context, role, resource, action string) (bool, error) {
	return f.enforceFn(role, resource, action)
}

func (f *fakeService) Permissions(ctx context.Context, role string) ([]PermissionResponse, error) {
	return []PermissionResponse{{Role: role, Resource: "solicitud", Action: "read"}}, nil
}

func newTestRouter(svc Service, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(svc)

	r := gin.New()
	auth := func(c *gin.Context) {
		c.Set("role", role)
		c.Next()
	}
	RegisterRoutes(r.Group(""), handler, auth)
	return r
}

func doEnforce(r *gin.Engine, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// =========================================
// TEST: Handler Enforce
// =========================================

func TestHandler_Enforce_UsesCallerRole(t *testing.T) {
	var gotRole string
	svc := &fakeService{enforceFn: func(role, resource, action string) (bool, error) {
		gotRole = role
		return resource == "solicitud" && action == "approve", nil
	}}

	w := doEnforce(newTestRouter(svc, "admin"), EnforceRequest{Resource: "solicitud", Action: "approve"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", gotRole)

	var resp struct {
		Ok   bool            `json:"ok"`
		Data EnforceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Ok)
	assert.True(t, resp.Data.Allowed)
}

func TestHandler_Enforce_MissingFields(t *testing.T) {
	svc := &fakeService{enforceFn: func(role, resource, action string) (bool, error) {
		t.Fatal("service should not be called")
		return false, nil
	}}

	w := doEnforce(newTestRouter(svc, "user"), map[string]string{"resource": "solicitud"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Enforce_ServiceError(t *testing.T) {
	svc := &fakeService{enforceFn: func(role, resource, action string) (bool, error) {
		return false, errors.New("boom")
	}}

	w := doEnforce(newTestRouter(svc, "user"), EnforceRequest{Resource: "solicitud", Action: "read"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_Permissions(t *testing.T) {
	r := newTestRouter(&fakeService{}, "user")

	req := httptest.NewRequest(http.MethodGet, "/rbac/permissions", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"resource":"solicitud"`)
}
