package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // UUID primary keys
	"gorm.io/gorm"           // GORM hooks
)

// Roles a user can hold
const (
	RoleTraveler  = "traveler"
	RoleHRManager = "hr_manager"
	RoleAdmin     = "admin"
)

// ValidRole reports whether r is one of the known roles
func ValidRole(r string) bool {
	return r == RoleTraveler || r == RoleHRManager || r == RoleAdmin
}

// User Model
type User struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`         // UUID primary key
	Username    string    `gorm:"uniqueIndex;size:150;not null" json:"username"` // Unique username
	Email       string    `gorm:"uniqueIndex;size:254;not null" json:"email"`    // Unique email
	Password    string    `gorm:"not null" json:"-"`                             // Hashed password, never serialised
	Role        string    `gorm:"size:20;not null;default:traveler" json:"role"` // traveler, hr_manager or admin
	DateOfBirth *Date     `gorm:"type:date" json:"date_of_birth"`                // Optional date of birth
	Gender      *string   `gorm:"size:20" json:"gender"`                         // Optional gender
	Nationality *string   `gorm:"size:120" json:"nationality"`                   // Optional nationality
	Department  *string   `gorm:"size:120" json:"department"`                    // Organisation department
	JobTitle    *string   `gorm:"size:120" json:"job_title"`                     // Organisation job title
	EmployeeID  *string   `gorm:"uniqueIndex;size:50" json:"employee_id"`        // Unique when set
	Timezone    string    `gorm:"size:50;not null;default:UTC" json:"timezone"`  // Preferred timezone
	CreatedAt   time.Time `json:"date_joined"`                                   // Registration time
}

// BeforeCreate assigns a UUID when none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
