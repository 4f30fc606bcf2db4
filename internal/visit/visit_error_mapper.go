package visit

import (
	"errors"
	"strings"

	visiterrors "go-fieldtrack/internal/visit/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// mapStoreError folds store-level failures into domain outcomes. Visits have
// no uniqueness contract; a foreign-key violation means the referenced
// employee row is missing.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23503" {
			return visiterrors.ErrPersistFailed
		}
	}

	if strings.Contains(strings.ToLower(err.Error()), "violates foreign key constraint") {
		return visiterrors.ErrPersistFailed
	}

	return err
}
