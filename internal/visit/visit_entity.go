package visit

import (
	"time"

	"github.com/google/uuid"
)

// Visit is a proof-of-visit record: photo evidence plus where and when it
// was captured. Date and time-of-day are split from a single capture
// timestamp so the log can be grouped per day and ordered within it.
type Visit struct {
	ID           uuid.UUID    `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID   uuid.UUID    `gorm:"column:employee_id;type:uuid;not null;index"`
	VisitDate    time.Time    `gorm:"column:visit_date;type:date;not null"`
	VisitTime    string       `gorm:"column:visit_time;type:time;not null"`
	PhotoURL     string       `gorm:"column:photo_url;not null"`
	Latitude     *float64     `gorm:"column:latitude"`
	Longitude    *float64     `gorm:"column:longitude"`
	LocationName string       `gorm:"column:location_name;default:Unknown"`
	Notes        *string      `gorm:"column:notes"`
	CreatedAt    time.Time    `gorm:"column:created_at"`
	Employee     *EmployeeRef `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (Visit) TableName() string {
	return "visits"
}

type EmployeeRef struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name  string    `gorm:"column:name"`
	Email string    `gorm:"column:email"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}
