package attendance

import (
	"errors"
	"strings"

	attendanceerrors "go-fieldtrack/internal/attendance/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// mapStoreError folds store-level failures into domain outcomes. The unique
// violation on the per-day constraint is the race-loser path of check-in; a
// foreign-key violation means the referenced employee row is missing, which
// provisioning should have prevented.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return attendanceerrors.ErrAlreadyCheckedIn
		case "23503":
			return attendanceerrors.ErrPersistFailed
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") {
		return attendanceerrors.ErrAlreadyCheckedIn
	}
	if strings.Contains(errMsg, "violates foreign key constraint") {
		return attendanceerrors.ErrPersistFailed
	}

	return err
}
