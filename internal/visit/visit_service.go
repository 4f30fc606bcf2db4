package visit

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	employeeerrors "go-fieldtrack/internal/employee/errors"
	"go-fieldtrack/internal/events"
	"go-fieldtrack/internal/evidence"
	"go-fieldtrack/internal/identity"
	"go-fieldtrack/internal/messaging/kafka"
	"go-fieldtrack/internal/shared/apperror"
	"go-fieldtrack/internal/shared/contextutil"
	visiterrors "go-fieldtrack/internal/visit/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sentinel shown in the log when the device sent no reverse-geocoded name.
const unknownLocation = "Unknown"

// Provisioner guarantees a directory row for the identity before the visit
// references it. Declared here so the recorder does not depend on the
// employee package directly.
type Provisioner interface {
	EnsureExists(ctx context.Context, ident identity.Identity) error
}

//go:generate mockgen -source=visit_service.go -destination=mock/visit_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, ident identity.Identity, req SubmitVisitRequest, photo evidence.Upload) (VisitResponse, error)
	GetAll(ctx context.Context, actor identity.Identity) ([]VisitResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	store       evidence.Store
	provisioner Provisioner
	outbox      kafka.OutboxRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(db *sql.DB, repo Repository, store evidence.Store, provisioner Provisioner, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("visit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("visit.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		store:       store,
		provisioner: provisioner,
		outbox:      outbox,
		logger:      l,
		now:         time.Now,
	}
}

// Submit uploads the photo evidence first and only then persists the visit
// row. A record must never exist without retrievable evidence; the reverse,
// an uploaded photo whose record failed to persist, is tolerated as an
// orphan and merely logged.
func (s *service) Submit(ctx context.Context, ident identity.Identity, req SubmitVisitRequest, photo evidence.Upload) (VisitResponse, error) {
	if ident.IsZero() {
		return VisitResponse{}, apperror.ErrUnauthorized
	}

	empID, err := uuid.Parse(ident.ID)
	if err != nil {
		return VisitResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	if photo.Content == nil {
		return VisitResponse{}, visiterrors.ErrPhotoRequired
	}

	rid := contextutil.GetRequestID(ctx)

	// Best effort; the foreign key still protects the insert.
	if err := s.provisioner.EnsureExists(ctx, ident); err != nil {
		s.logger.Warn("employee provisioning failed before visit",
			zap.String("request_id", rid),
			zap.String("employee_id", ident.ID),
			zap.Error(err),
		)
	}

	photoURL, err := s.store.Upload(ctx, photo)
	if err != nil {
		s.logger.Error("visit photo upload failed",
			zap.String("request_id", rid),
			zap.String("employee_id", ident.ID),
			zap.Error(err),
		)
		return VisitResponse{}, visiterrors.ErrUploadFailed
	}

	now := s.now()

	locationName := strings.TrimSpace(req.LocationName)
	if locationName == "" {
		locationName = unknownLocation
	}

	var notes *string
	if trimmed := strings.TrimSpace(req.Notes); trimmed != "" {
		notes = &trimmed
	}

	row := &Visit{
		ID:           uuid.New(),
		EmployeeID:   empID,
		VisitDate:    time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		VisitTime:    now.Format("15:04:05"),
		PhotoURL:     photoURL,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		LocationName: locationName,
		Notes:        notes,
	}

	if err := s.persist(ctx, row, rid, now); err != nil {
		// The uploaded photo is now an orphan; leave it, storage is cheap
		// and the URL was never handed out.
		s.logger.Error("visit persist failed after upload",
			zap.String("request_id", rid),
			zap.String("employee_id", ident.ID),
			zap.String("photo_url", photoURL),
			zap.Error(err),
		)
		return VisitResponse{}, err
	}

	s.logger.Info("visit recorded",
		zap.String("request_id", rid),
		zap.String("employee_id", ident.ID),
		zap.String("visit_id", row.ID.String()),
	)

	return mapToResponse(*row), nil
}

func (s *service) persist(ctx context.Context, row *Visit, rid string, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.CodePersistFailed, "Could not save visit record", http.StatusInternalServerError)
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
		mapped := mapStoreError(err)
		if mapped != err {
			return mapped
		}
		return apperror.Wrap(err, apperror.CodePersistFailed, "Could not save visit record", http.StatusInternalServerError)
	}

	if s.outbox != nil {
		payload, err := json.Marshal(events.VisitRecordedEvent{
			EventType:  "visit.recorded",
			RequestID:  rid,
			VisitID:    row.ID.String(),
			EmployeeID: row.EmployeeID.String(),
			Date:       row.VisitDate.Format("2006-01-02"),
			PhotoURL:   row.PhotoURL,
			OccurredAt: now,
		})
		if err != nil {
			return apperror.Wrap(err, apperror.CodePersistFailed, "Could not save visit record", http.StatusInternalServerError)
		}

		err = s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.New().String(),
			RequestID:     rid,
			AggregateType: "visit",
			AggregateID:   row.ID.String(),
			EventType:     "visit.recorded",
			Topic:         events.VisitRecordedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		})
		if err != nil {
			return apperror.Wrap(err, apperror.CodePersistFailed, "Could not save visit record", http.StatusInternalServerError)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.CodePersistFailed, "Could not save visit record", http.StatusInternalServerError)
	}
	return nil
}

// GetAll returns the visit log: admins see every employee, everyone else
// only their own rows.
func (s *service) GetAll(ctx context.Context, actor identity.Identity) ([]VisitResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}

	var (
		rows []Visit
		err  error
	)
	if actor.IsAdmin() {
		rows, err = s.repo.FindAll(ctx)
	} else {
		rows, err = s.repo.FindAllByEmployee(ctx, actor.ID)
	}
	if err != nil {
		s.logger.Error("get visit log failed",
			zap.String("employee_id", actor.ID),
			zap.Error(err),
		)
		return nil, mapStoreError(err)
	}

	res := make([]VisitResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func mapToResponse(v Visit) VisitResponse {
	resp := VisitResponse{
		ID:           v.ID.String(),
		EmployeeID:   v.EmployeeID.String(),
		VisitDate:    v.VisitDate.Format("2006-01-02"),
		VisitTime:    v.VisitTime,
		PhotoURL:     v.PhotoURL,
		Latitude:     v.Latitude,
		Longitude:    v.Longitude,
		LocationName: v.LocationName,
		Notes:        v.Notes,
	}
	if v.Employee != nil {
		resp.EmployeeName = v.Employee.Name
	}
	return resp
}
