package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"jane@example.org"`
	Password    string     `json:"-" db:"password"`
	FirstName   string     `json:"firstName" db:"first_name" example:"Jane"`
	LastName    string     `json:"lastName" db:"last_name" example:"Doe"`
	Phone       *string    `json:"phone,omitempty" db:"phone"`
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"VOLUNTEER"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
