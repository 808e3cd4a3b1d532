package domain

import (
	"context"
	"time"
)

// UserRole represents the platform role of a user
type UserRole string

const (
	UserRoleClient     UserRole = "client"
	UserRoleAdmin      UserRole = "admin"
	UserRoleTeamMember UserRole = "team_member"
)

// User represents a platform user
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsStaff reports whether the user works on requests (admin or team member)
func (u *User) IsStaff() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleTeamMember
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
}
