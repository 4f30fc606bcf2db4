package employee_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-fieldtrack/internal/employee"
	"go-fieldtrack/internal/evidence"
	"go-fieldtrack/internal/identity"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	ensureExistsFn func(ctx context.Context, ident identity.Identity) error
	createFn       func(ctx context.Context, req employee.CreateEmployeeRequest, photo *evidence.Upload) (employee.EmployeeResponse, error)
	getAllFn       func(ctx context.Context) ([]employee.EmployeeResponse, error)
	getOptionsFn   func(ctx context.Context) ([]employee.EmployeeOption, error)
	getByIDFn      func(ctx context.Context, id string) (employee.EmployeeResponse, error)
	updateNameFn   func(ctx context.Context, employeeID, newName string) error
}

func (f *fakeService) EnsureExists(ctx context.Context, ident identity.Identity) error {
	return f.ensureExistsFn(ctx, ident)
}
func (f *fakeService) Create(ctx context.Context, req employee.CreateEmployeeRequest, photo *evidence.Upload) (employee.EmployeeResponse, error) {
	return f.createFn(ctx, req, photo)
}
func (f *fakeService) GetAll(ctx context.Context) ([]employee.EmployeeResponse, error) {
	return f.getAllFn(ctx)
}
func (f *fakeService) GetOptions(ctx context.Context) ([]employee.EmployeeOption, error) {
	return f.getOptionsFn(ctx)
}
func (f *fakeService) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeService) UpdateName(ctx context.Context, employeeID, newName string) error {
	return f.updateNameFn(ctx, employeeID, newName)
}

func authedContext(w *httptest.ResponseRecorder, ident identity.Identity) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Set("identity", ident)
	c.Set("employee_id", ident.ID)
	c.Set("role", ident.Role)
	return c
}

func TestHandler_Create_WithPhoto(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		createFn: func(ctx context.Context, req employee.CreateEmployeeRequest, photo *evidence.Upload) (employee.EmployeeResponse, error) {
			assert.Equal(t, "new@example.com", req.Email)
			if assert.NotNil(t, photo) {
				assert.Equal(t, "profile.jpg", photo.FileName)
			}
			return employee.EmployeeResponse{ID: uuid.New().String(), Email: req.Email, Name: req.Name}, nil
		},
	}

	h := employee.NewHandler(svc)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	assert.NoError(t, writer.WriteField("email", "new@example.com"))
	assert.NoError(t, writer.WriteField("name", "New Hire"))
	assert.NoError(t, writer.WriteField("department", "Sales"))
	assert.NoError(t, writer.WriteField("position", "Field Executive"))
	part, err := writer.CreateFormFile("photo", "profile.jpg")
	assert.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c := authedContext(w, identity.Identity{ID: uuid.New().String(), Role: identity.RoleAdmin})
	c.Request = httptest.NewRequest(http.MethodPost, "/employees", &body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	h.Create(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "new@example.com")
}

func TestHandler_Me(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ident := identity.Identity{ID: uuid.New().String(), Role: identity.RoleEmployee}

	svc := &fakeService{
		getByIDFn: func(ctx context.Context, id string) (employee.EmployeeResponse, error) {
			assert.Equal(t, ident.ID, id)
			return employee.EmployeeResponse{ID: id, Name: "Field Agent"}, nil
		},
	}

	h := employee.NewHandler(svc)

	w := httptest.NewRecorder()
	c := authedContext(w, ident)
	c.Request = httptest.NewRequest(http.MethodGet, "/employees/me", nil)
	h.Me(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Field Agent")
}

func TestHandler_Me_NoIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := employee.NewHandler(&fakeService{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/employees/me", nil)
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_UpdateName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ident := identity.Identity{ID: uuid.New().String(), Role: identity.RoleEmployee}

	var gotName string
	svc := &fakeService{
		updateNameFn: func(ctx context.Context, employeeID, newName string) error {
			assert.Equal(t, ident.ID, employeeID)
			gotName = newName
			return nil
		},
	}

	h := employee.NewHandler(svc)

	w := httptest.NewRecorder()
	c := authedContext(w, ident)
	c.Request = httptest.NewRequest(http.MethodPatch, "/employees/me/name", strings.NewReader(`{"name":"Renamed Agent"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.UpdateName(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed Agent", gotName)
}

func TestHandler_GetAll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		getAllFn: func(ctx context.Context) ([]employee.EmployeeResponse, error) {
			return []employee.EmployeeResponse{{ID: uuid.New().String()}, {ID: uuid.New().String()}}, nil
		},
	}

	h := employee.NewHandler(svc)

	w := httptest.NewRecorder()
	c := authedContext(w, identity.Identity{ID: uuid.New().String(), Role: identity.RoleAdmin})
	c.Request = httptest.NewRequest(http.MethodGet, "/employees", nil)
	h.GetAll(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"ok\":true")
}
