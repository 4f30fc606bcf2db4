package employee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	employeeerrors "go-fieldtrack/internal/employee/errors"
	"go-fieldtrack/internal/evidence"
	"go-fieldtrack/internal/identity"
	"go-fieldtrack/internal/shared/apperror"
	"go-fieldtrack/internal/shared/contextutil"
	"go-fieldtrack/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	// placeholder values for rows provisioned from a bare identity; admins
	// fill in the real department/position later
	defaultDepartment = "Unknown"
	defaultPosition   = "Field Executive"
	fallbackName      = "Unnamed"

	employeeOptionsKey = "employees:options"
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	EnsureExists(ctx context.Context, ident identity.Identity) error
	Create(ctx context.Context, req CreateEmployeeRequest, photo *evidence.Upload) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context) ([]EmployeeOption, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	UpdateName(ctx context.Context, employeeID, newName string) error
}

type service struct {
	repo    Repository
	store   evidence.Store
	counter counter.Repository
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
}

func NewService(repo Repository, store evidence.Store, counterRepo counter.Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		repo:    repo,
		store:   store,
		counter: counterRepo,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l,
	}
}

// EnsureExists guarantees a directory row for the authenticated identity
// before any attendance or visit row may reference it. Losing the insert
// race against a concurrent first-time check-in is fine: the store's
// primary-key constraint rejects the second insert and the employee exists
// either way.
func (s *service) EnsureExists(ctx context.Context, ident identity.Identity) error {
	if ident.IsZero() {
		return apperror.ErrUnauthorized
	}

	id, err := uuid.Parse(ident.ID)
	if err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	_, err = s.repo.FindByID(ctx, ident.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("employee lookup failed during provisioning",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("employee_id", ident.ID),
			zap.Error(err),
		)
		return mapRepositoryError(err)
	}

	name := strings.TrimSpace(ident.Name)
	if name == "" {
		name = fallbackName
	}

	empl := &Employee{
		ID:         id,
		Email:      ident.Email,
		Name:       name,
		Role:       identity.RoleEmployee,
		Department: defaultDepartment,
		Position:   defaultPosition,
	}

	if err := s.repo.Create(ctx, empl); err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, employeeerrors.ErrEmployeeAlreadyExists) ||
			errors.Is(mapped, employeeerrors.ErrEmployeeEmailTaken) {
			// lost the race; the row exists now, which is all we wanted
			return nil
		}
		s.logger.Warn("employee provisioning insert failed",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("employee_id", ident.ID),
			zap.Error(err),
		)
		return mapped
	}

	s.invalidateOptionsCache(ctx)
	s.logger.Info("employee provisioned",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("employee_id", ident.ID),
	)
	return nil
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest, photo *evidence.Upload) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
	)

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = identity.RoleEmployee
	}
	if role != identity.RoleEmployee && role != identity.RoleAdmin {
		return EmployeeResponse{}, apperror.InvalidField("Role")
	}

	// Photo first: an employee row must never reference an evidence URL
	// that was not durably stored.
	var photoURL *string
	if photo != nil && photo.Content != nil {
		url, err := s.store.Upload(ctx, *photo)
		if err != nil {
			s.logger.Error("employee photo upload failed", zap.String("request_id", rid), zap.Error(err))
			return EmployeeResponse{}, employeeerrors.ErrPhotoUploadFailed
		}
		photoURL = &url
	}

	nextVal, err := s.counter.GetNextValue(ctx, "employee_badge")
	if err != nil {
		s.logger.Error("create employee badge number failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	badgeNumber := fmt.Sprintf("FLD-%06d", nextVal)

	empl := &Employee{
		ID:          uuid.New(),
		Email:       req.Email,
		Name:        req.Name,
		Role:        role,
		Department:  req.Department,
		Position:    req.Position,
		BadgeNumber: &badgeNumber,
		PhotoURL:    photoURL,
	}

	if err := s.repo.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.invalidateOptionsCache(ctx)
	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	empls, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetOptions(ctx context.Context) ([]EmployeeOption, error) {
	// 1. Redis cache
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, employeeOptionsKey).Result(); err == nil {
			var resp []EmployeeOption
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// 2. singleflight collapses the stampede when admins open the form
	v, err, _ := s.sf.Do(employeeOptionsKey, func() (interface{}, error) {
		empls, err := s.repo.FindOptions(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]EmployeeOption, len(empls))
		for i, e := range empls {
			resp[i] = EmployeeOption{ID: e.ID.String(), Name: e.Name}
		}

		// 3. directory data moves slowly; an hour of staleness is fine
		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, employeeOptionsKey, jsonData, 1*time.Hour)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]EmployeeOption), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("get employee by id failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

// UpdateName applies the profile name change. An empty name is a no-op, and
// re-applying the same name is harmless.
func (s *service) UpdateName(ctx context.Context, employeeID, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return nil
	}

	if err := s.repo.UpdateName(ctx, employeeID, newName); err != nil {
		s.logger.Error("update employee name failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return mapRepositoryError(err)
	}

	s.invalidateOptionsCache(ctx)
	s.logger.Info("update employee name success", zap.String("employee_id", employeeID))
	return nil
}

func (s *service) invalidateOptionsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, employeeOptionsKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", employeeOptionsKey),
		)
	}
}

func mapToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          empl.ID.String(),
		Email:       empl.Email,
		Name:        empl.Name,
		Role:        empl.Role,
		Department:  empl.Department,
		Position:    empl.Position,
		BadgeNumber: empl.BadgeNumber,
		PhotoURL:    empl.PhotoURL,
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
