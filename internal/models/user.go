package models

import "github.com/google/uuid"

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// User is the shared identity core. The role discriminator selects what the
// account owns: admins own courses, categories and files, students hold
// course subscriptions.
type User struct {
	ID       uuid.UUID
	Username string
	Password string
	Email    string
	Role     string
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}
