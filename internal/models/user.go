package models

import "gorm.io/gorm"

// Roles assignable to a back-office user.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User represents a back-office user (admin or employee).
type User struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role       string `json:"role" gorm:"type:varchar(20);default:employee" validate:"omitempty,oneof=admin employee"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
