package visit

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=visit_repo.go -destination=mock/visit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, v *Visit) error
	FindAll(ctx context.Context) ([]Visit, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]Visit, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// Create inserts through the raw executor so it can join the service-owned
// transaction alongside the outbox write.
func (r *repository) Create(ctx context.Context, v *Visit) error {
	query := `
        INSERT INTO visits (
            id, employee_id, visit_date, visit_time, photo_url,
            latitude, longitude, location_name, notes
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		v.ID, v.EmployeeID, v.VisitDate.Format("2006-01-02"), v.VisitTime, v.PhotoURL,
		v.Latitude, v.Longitude, v.LocationName, v.Notes,
	)
	return err
}

func (r *repository) FindAll(ctx context.Context) ([]Visit, error) {
	var rows []Visit
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Order("visit_date DESC, visit_time DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]Visit, error) {
	var rows []Visit
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("visit_date DESC, visit_time DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db.ConnPool
}
