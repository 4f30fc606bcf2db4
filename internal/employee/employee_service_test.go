package employee

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	employeeerrors "go-fieldtrack/internal/employee/errors"
	"go-fieldtrack/internal/evidence"
	evidencemock "go-fieldtrack/internal/evidence/mock"
	"go-fieldtrack/internal/identity"
	"go-fieldtrack/internal/shared/apperror"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn      func(ctx context.Context, empl *Employee) error
	findByIDFn    func(ctx context.Context, id string) (*Employee, error)
	findAllFn     func(ctx context.Context) ([]Employee, error)
	findOptionsFn func(ctx context.Context) ([]Employee, error)
	updateNameFn  func(ctx context.Context, id string, name string) error
}

func (f *fakeRepo) Create(ctx context.Context, empl *Employee) error { return f.createFn(ctx, empl) }
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*Employee, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeRepo) FindAll(ctx context.Context) ([]Employee, error)     { return f.findAllFn(ctx) }
func (f *fakeRepo) FindOptions(ctx context.Context) ([]Employee, error) { return f.findOptionsFn(ctx) }
func (f *fakeRepo) UpdateName(ctx context.Context, id string, name string) error {
	return f.updateNameFn(ctx, id, name)
}

type fakeCounter struct {
	next int64
	err  error
}

func (f *fakeCounter) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	return f.next, f.err
}

func notFoundRepo() *fakeRepo {
	return &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*Employee, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
}

func TestService_EnsureExists_ProvisionsWithDefaults(t *testing.T) {
	ident := identity.Identity{
		ID:    uuid.New().String(),
		Email: "field@example.com",
		Name:  "  ",
		Role:  identity.RoleEmployee,
	}

	var saved Employee
	repo := notFoundRepo()
	repo.createFn = func(ctx context.Context, empl *Employee) error { saved = *empl; return nil }

	svc := NewService(repo, nil, &fakeCounter{}, nil)
	err := svc.EnsureExists(context.Background(), ident)

	assert.NoError(t, err)
	assert.Equal(t, ident.ID, saved.ID.String())
	assert.Equal(t, ident.Email, saved.Email)
	assert.Equal(t, fallbackName, saved.Name)
	assert.Equal(t, defaultDepartment, saved.Department)
	assert.Equal(t, defaultPosition, saved.Position)
	assert.Equal(t, identity.RoleEmployee, saved.Role)
}

func TestService_EnsureExists_ExistingRowIsNoop(t *testing.T) {
	ident := identity.Identity{ID: uuid.New().String(), Email: "field@example.com"}

	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*Employee, error) {
			return &Employee{ID: uuid.MustParse(ident.ID)}, nil
		},
		createFn: func(ctx context.Context, empl *Employee) error {
			t.Fatal("existing employee must not be re-inserted")
			return nil
		},
	}

	svc := NewService(repo, nil, &fakeCounter{}, nil)
	assert.NoError(t, svc.EnsureExists(context.Background(), ident))
}

func TestService_EnsureExists_LostRaceIsBenign(t *testing.T) {
	repo := notFoundRepo()
	repo.createFn = func(ctx context.Context, empl *Employee) error {
		return &pgconn.PgError{Code: "23505", ConstraintName: "employees_pkey"}
	}

	svc := NewService(repo, nil, &fakeCounter{}, nil)
	err := svc.EnsureExists(context.Background(), identity.Identity{ID: uuid.New().String(), Email: "x@example.com"})
	assert.NoError(t, err)
}

func TestService_EnsureExists_Unauthenticated(t *testing.T) {
	svc := NewService(notFoundRepo(), nil, &fakeCounter{}, nil)
	err := svc.EnsureExists(context.Background(), identity.Identity{})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestService_EnsureExists_InvalidID(t *testing.T) {
	svc := NewService(notFoundRepo(), nil, &fakeCounter{}, nil)
	err := svc.EnsureExists(context.Background(), identity.Identity{ID: "not-a-uuid"})
	assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
}

func TestService_Create_AssignsBadgeFromCounter(t *testing.T) {
	var saved Employee
	repo := &fakeRepo{
		createFn: func(ctx context.Context, empl *Employee) error { saved = *empl; return nil },
	}

	svc := NewService(repo, nil, &fakeCounter{next: 7}, nil)
	resp, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Email:      "new@example.com",
		Name:       "New Hire",
		Department: "Sales",
		Position:   "Field Executive",
	}, nil)

	assert.NoError(t, err)
	if assert.NotNil(t, saved.BadgeNumber) {
		assert.Equal(t, "FLD-000007", *saved.BadgeNumber)
	}
	if assert.NotNil(t, resp.BadgeNumber) {
		assert.Equal(t, "FLD-000007", *resp.BadgeNumber)
	}
}

func TestService_Create_UploadsPhotoBeforePersist(t *testing.T) {
	ctrl := gomock.NewController(t)

	store := evidencemock.NewMockStore(ctrl)
	store.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("", errors.New("upstream 502"))

	repo := &fakeRepo{
		createFn: func(ctx context.Context, empl *Employee) error {
			t.Fatal("no row may reference evidence that was never stored")
			return nil
		},
	}

	svc := NewService(repo, store, &fakeCounter{next: 1}, nil)
	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Email: "new@example.com",
		Name:  "New Hire",
	}, &evidence.Upload{
		FileName:    "profile.jpg",
		ContentType: "image/jpeg",
		Content:     strings.NewReader("jpeg-bytes"),
	})
	assert.ErrorIs(t, err, employeeerrors.ErrPhotoUploadFailed)
}

func TestService_Create_RejectsUnknownRole(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, &fakeCounter{}, nil)
	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Email: "new@example.com",
		Name:  "New Hire",
		Role:  "superuser",
	}, nil)
	assert.Error(t, err)
}

func TestService_UpdateName_EmptyIsNoop(t *testing.T) {
	repo := &fakeRepo{
		updateNameFn: func(ctx context.Context, id string, name string) error {
			t.Fatal("blank name must not reach the store")
			return nil
		},
	}

	svc := NewService(repo, nil, &fakeCounter{}, nil)
	assert.NoError(t, svc.UpdateName(context.Background(), uuid.New().String(), "   "))
}

func TestService_GetOptions_CacheHitSkipsStore(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	cached := []EmployeeOption{{ID: uuid.New().String(), Name: "Field Agent"}}
	payload, _ := json.Marshal(cached)
	mock.ExpectGet(employeeOptionsKey).SetVal(string(payload))

	repo := &fakeRepo{
		findOptionsFn: func(ctx context.Context) ([]Employee, error) {
			t.Fatal("cache hit must not touch the store")
			return nil, nil
		},
	}

	svc := NewService(repo, nil, &fakeCounter{}, rdb)
	opts, err := svc.GetOptions(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, cached, opts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetOptions_CacheMissFillsCache(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	emplID := uuid.New()
	expected := []EmployeeOption{{ID: emplID.String(), Name: "Field Agent"}}
	payload, _ := json.Marshal(expected)

	mock.ExpectGet(employeeOptionsKey).RedisNil()
	mock.ExpectSet(employeeOptionsKey, payload, 1*time.Hour).SetVal("OK")

	repo := &fakeRepo{
		findOptionsFn: func(ctx context.Context) ([]Employee, error) {
			return []Employee{{ID: emplID, Name: "Field Agent"}}, nil
		},
	}

	svc := NewService(repo, nil, &fakeCounter{}, rdb)
	opts, err := svc.GetOptions(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, expected, opts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
