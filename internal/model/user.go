package model

import (
	"context"
	"time"
)

// UserStore defines persistence operations for users. Implementations
// must enforce username/email uniqueness as a backstop constraint and
// surface violations as ErrUsernameTaken / ErrEmailTaken.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	List(ctx context.Context) ([]User, error)
	Save(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id int64) error
}

// User represents a stored user identity.
//
// ID is the database key, assigned on first save. UserID is the
// external-facing opaque identifier, assigned at creation and never
// changed. Authorities are always derived from Role, never edited
// independently.
type User struct {
	ID                   int64      `json:"id"`
	UserID               string     `json:"userId"`
	FirstName            string     `json:"firstName"`
	LastName             string     `json:"lastName"`
	Username             string     `json:"username"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	ProfileImageURL      string     `json:"profileImageUrl"`
	LastLoginDate        *time.Time `json:"lastLoginDate"`
	LastLoginDateDisplay *time.Time `json:"lastLoginDateDisplay"`
	JoinDate             time.Time  `json:"joinDate"`
	Role                 Role       `json:"role"`
	Authorities          []string   `json:"authorities"`
	Active               bool       `json:"active"`
	NotLocked            bool       `json:"notLocked"`
}
