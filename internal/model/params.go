package model

import "io"

// NewUserParams carries the administrative add-user request. Role and
// flags are explicit, unlike self-service registration.
type NewUserParams struct {
	FirstName    string
	LastName     string
	Username     string
	Email        string
	Role         string
	Active       bool
	NotLocked    bool
	ProfileImage io.Reader
}

// UpdateUserParams carries a full identity update keyed by the
// current username.
type UpdateUserParams struct {
	CurrentUsername string
	FirstName       string
	LastName        string
	Username        string
	Email           string
	Role            string
	Active          bool
	NotLocked       bool
	ProfileImage    io.Reader
}
