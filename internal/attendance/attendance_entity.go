package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Attendance is one check-in per employee per calendar day. The composite
// unique index is the idempotency contract: when two devices race, the store
// rejects the second insert and the recorder reports it as already checked
// in. Rows are never updated or deleted.
type Attendance struct {
	ID             uuid.UUID    `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID     uuid.UUID    `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_attendance_employee_date"`
	AttendanceDate time.Time    `gorm:"column:attendance_date;type:date;not null;uniqueIndex:uq_attendance_employee_date"`
	CheckInTime    time.Time    `gorm:"column:check_in_time;type:timestamptz;not null"`
	Status         string       `gorm:"column:status;type:varchar(10);not null"`
	CreatedAt      time.Time    `gorm:"column:created_at"`
	Employee       *EmployeeRef `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (Attendance) TableName() string {
	return "attendance"
}

type EmployeeRef struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name  string    `gorm:"column:name"`
	Email string    `gorm:"column:email"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}
