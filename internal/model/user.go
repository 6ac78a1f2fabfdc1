package model

import "time"

// User is an account that can sign in and be nominated on dossier teams.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	RoleID       int        `json:"role_id"`
	RoleName     string     `json:"role_name"`
	Capability   Capability `json:"capability"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Viewer identifies the authenticated caller of a request.
type Viewer struct {
	UserID     int64
	Capability Capability
}
