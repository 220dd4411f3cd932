package models

import (
	"strings"
	"time"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "Admin"
	RoleManager UserRole = "Manager"
	RoleStudent UserRole = "Student"
	RoleTutor   UserRole = "Tutor"
)

// Roles lists every role in display order.
var Roles = []UserRole{RoleAdmin, RoleManager, RoleStudent, RoleTutor}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Role         UserRole   `db:"role" json:"role"`
	StudentID    *string    `db:"student_id" json:"student_id,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// UserDetail augments a user with the optional student profile.
type UserDetail struct {
	User
	Student *Student `json:"student,omitempty"`
}

// CreateUserRequest is the admin payload for creating an account.
type CreateUserRequest struct {
	Email           string   `json:"email" validate:"required,email"`
	FirstName       string   `json:"first_name" validate:"required,notblank,max=150"`
	LastName        string   `json:"last_name" validate:"required,notblank,max=150"`
	Role            UserRole `json:"role" validate:"required,oneof=Admin Manager Student Tutor"`
	StudentID       string   `json:"student_id" validate:"omitempty,max=20"`
	ProgramID       string   `json:"program_id"`
	YearID          string   `json:"year_id"`
	Password        string   `json:"password" validate:"required,min=8"`
	ConfirmPassword string   `json:"confirm_password" validate:"required,eqfield=Password"`
}

// UpdateUserRequest is the admin payload for editing an account.
type UpdateUserRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	FirstName string   `json:"first_name" validate:"required,notblank,max=150"`
	LastName  string   `json:"last_name" validate:"required,notblank,max=150"`
	Role      UserRole `json:"role" validate:"required,oneof=Admin Manager Student Tutor"`
	StudentID string   `json:"student_id" validate:"omitempty,max=20"`
	Active    *bool    `json:"active"`
	ProgramID string   `json:"program_id"`
	YearID    string   `json:"year_id"`
}
