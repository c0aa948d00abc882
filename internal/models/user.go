package models

import (
	"time"

	"github.com/lib/pq"
)

// User represents an application user stored in the users table. A user can
// hold multiple roles; the effective permission set is derived from them.
type User struct {
	ID           string         `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	FullName     string         `db:"full_name" json:"full_name"`
	Roles        pq.StringArray `db:"roles" json:"roles"`
	Active       bool           `db:"active" json:"active"`
	LastLogin    *time.Time     `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// RoleList converts the stored role names into typed roles.
func (u *User) RoleList() []Role {
	roles := make([]Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, Role(r))
	}
	return roles
}

// SessionUser is the persisted "current user" record audit attribution reads.
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AnonymousUser is the sentinel identity used when no session is present.
// Logging must never fail or block merely because nobody is logged in.
var AnonymousUser = SessionUser{
	ID:    "anonymous",
	Name:  "Anonymous User",
	Email: "anonymous@example.com",
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
