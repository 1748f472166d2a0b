// Package models contains the persistent and transport data structures of the application.
package models

import "time"

// RoleAdmin is the only role allowed to review visit requests.
const RoleAdmin = "admin"

// User is a staff account that can sign in to the admin panel.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:20;not null;default:'admin'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user may use admin routes.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
