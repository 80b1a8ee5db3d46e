package models

import (
	"database/sql"
	"time"
)

// ==============================================
// USER MODEL (Database mapping)
// ==============================================

// User represents a back-office account
type User struct {
	ID           int            `db:"id"`
	Name         string         `db:"name"`
	Username     sql.NullString `db:"username"` // Optional login alias
	Email        string         `db:"email"`    // Canonical address, stored lowercase
	PasswordHash string         `db:"password_hash"`
	IsActive     bool           `db:"is_active"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// PublicUser is the safe version to return to clients (no sensitive fields)
type PublicUser struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Username  *string   `json:"username,omitempty"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts User to PublicUser (removes sensitive fields)
func (u *User) ToPublic() *PublicUser {
	pu := &PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}

	if u.Username.Valid {
		pu.Username = &u.Username.String
	}

	return pu
}

// HasUsername checks if user has set a username
func (u *User) HasUsername() bool {
	return u.Username.Valid && u.Username.String != ""
}
