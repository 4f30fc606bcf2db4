package employee

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the directory record for a staff member. The id is issued by
// the identity provider for self-provisioned rows and generated by the store
// for admin-created ones; it is immutable either way. Rows are never deleted.
type Employee struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Email      string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uq_employee_email"`
	Name       string    `gorm:"column:name;type:varchar(255);not null"`
	Role       string    `gorm:"column:role;type:varchar(20);not null;default:employee"`
	Department string    `gorm:"column:department;type:varchar(100);not null"`
	Position   string    `gorm:"column:position;type:varchar(100);not null"`
	// assigned to admin-created staff only; self-provisioned rows get one
	// when an admin completes the profile
	BadgeNumber *string   `gorm:"column:badge_number;type:varchar(20);uniqueIndex:uq_employee_badge"`
	PhotoURL    *string   `gorm:"column:photo_url;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}
