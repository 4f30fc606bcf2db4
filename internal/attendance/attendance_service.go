package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	attendanceerrors "go-fieldtrack/internal/attendance/errors"
	employeeerrors "go-fieldtrack/internal/employee/errors"
	"go-fieldtrack/internal/events"
	"go-fieldtrack/internal/identity"
	"go-fieldtrack/internal/messaging/kafka"
	"go-fieldtrack/internal/shared/apperror"
	"go-fieldtrack/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Check-ins up to and including this local hour count as present. The cutoff
// is deliberately hour-granular: 09:59 is still present, 10:00 is late.
const presentHourCutoff = 9

const (
	StatusPresent = "present"
	StatusLate    = "late"
)

// Provisioner guarantees a directory row for the identity before the
// check-in references it. Declared here so the recorder does not depend on
// the employee package directly.
type Provisioner interface {
	EnsureExists(ctx context.Context, ident identity.Identity) error
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	CheckIn(ctx context.Context, ident identity.Identity) (AttendanceResponse, error)
	GetAll(ctx context.Context, actor identity.Identity) ([]AttendanceResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	provisioner Provisioner
	outbox      kafka.OutboxRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(db *sql.DB, repo Repository, provisioner Provisioner, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		provisioner: provisioner,
		outbox:      outbox,
		logger:      l,
		now:         time.Now,
	}
}

// CheckIn records today's attendance for the authenticated identity. At most
// one row per employee per day: a repeat attempt, whether sequential or a
// concurrent race, comes back as ErrAlreadyCheckedIn.
func (s *service) CheckIn(ctx context.Context, ident identity.Identity) (AttendanceResponse, error) {
	if ident.IsZero() {
		return AttendanceResponse{}, apperror.ErrUnauthorized
	}

	empID, err := uuid.Parse(ident.ID)
	if err != nil {
		return AttendanceResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	rid := contextutil.GetRequestID(ctx)

	// Best effort: a provisioning hiccup should not block the check-in, the
	// foreign key still protects the insert.
	if err := s.provisioner.EnsureExists(ctx, ident); err != nil {
		s.logger.Warn("employee provisioning failed before check-in",
			zap.String("request_id", rid),
			zap.String("employee_id", ident.ID),
			zap.Error(err),
		)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Cheap pre-check; the unique constraint remains the real guarantee.
	_, err = s.repo.FindByEmployeeAndDate(ctx, ident.ID, today)
	if err == nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("attendance lookup failed",
			zap.String("request_id", rid),
			zap.String("employee_id", ident.ID),
			zap.Error(err),
		)
		return AttendanceResponse{}, mapStoreError(err)
	}

	status := StatusLate
	if now.Hour() <= presentHourCutoff {
		status = StatusPresent
	}

	row := &Attendance{
		ID:             uuid.New(),
		EmployeeID:     empID,
		AttendanceDate: today,
		CheckInTime:    now,
		Status:         status,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("check-in begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, apperror.Wrap(err, apperror.CodePersistFailed, "Could not save attendance record", http.StatusInternalServerError)
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
		mapped := mapStoreError(err)
		if errors.Is(mapped, attendanceerrors.ErrAlreadyCheckedIn) {
			return AttendanceResponse{}, mapped
		}
		s.logger.Error("check-in persist failed",
			zap.String("request_id", rid),
			zap.String("employee_id", ident.ID),
			zap.Error(err),
		)
		if errors.Is(mapped, attendanceerrors.ErrPersistFailed) {
			return AttendanceResponse{}, mapped
		}
		return AttendanceResponse{}, apperror.Wrap(err, apperror.CodePersistFailed, "Could not save attendance record", http.StatusInternalServerError)
	}

	if err := s.enqueueMarkedEvent(ctx, tx, row, rid); err != nil {
		s.logger.Error("check-in outbox write failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, apperror.Wrap(err, apperror.CodePersistFailed, "Could not save attendance record", http.StatusInternalServerError)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("check-in commit failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, apperror.Wrap(err, apperror.CodePersistFailed, "Could not save attendance record", http.StatusInternalServerError)
	}

	s.logger.Info("check-in recorded",
		zap.String("request_id", rid),
		zap.String("employee_id", ident.ID),
		zap.String("status", status),
	)

	return mapToResponse(*row), nil
}

func (s *service) enqueueMarkedEvent(ctx context.Context, tx *sql.Tx, row *Attendance, rid string) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.AttendanceMarkedEvent{
		EventType:    "attendance.marked",
		RequestID:    rid,
		AttendanceID: row.ID.String(),
		EmployeeID:   row.EmployeeID.String(),
		Date:         row.AttendanceDate.Format("2006-01-02"),
		Status:       row.Status,
		OccurredAt:   row.CheckInTime,
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     rid,
		AggregateType: "attendance",
		AggregateID:   row.ID.String(),
		EventType:     "attendance.marked",
		Topic:         events.AttendanceMarkedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// GetAll returns the attendance log: admins see every employee, everyone
// else only their own rows.
func (s *service) GetAll(ctx context.Context, actor identity.Identity) ([]AttendanceResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}

	var (
		rows []Attendance
		err  error
	)
	if actor.IsAdmin() {
		rows, err = s.repo.FindAll(ctx)
	} else {
		rows, err = s.repo.FindAllByEmployee(ctx, actor.ID)
	}
	if err != nil {
		s.logger.Error("get attendance log failed",
			zap.String("employee_id", actor.ID),
			zap.Error(err),
		)
		return nil, mapStoreError(err)
	}

	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID.String(),
		EmployeeID:     a.EmployeeID.String(),
		AttendanceDate: a.AttendanceDate.Format("2006-01-02"),
		CheckInTime:    a.CheckInTime.Format(time.RFC3339),
		Status:         a.Status,
	}
	if a.Employee != nil {
		resp.EmployeeName = a.Employee.Name
	}
	return resp
}
